package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// Dictionary names stored in the cache.
const (
	DictionaryHeroes    = "heroes"
	DictionaryGameModes = "game_modes"
)

// DictionaryCache stores id-to-name dictionaries (heroes, game modes) as
// Redis hashes. The refresh job fills them from the API; presenters read
// them when rendering cards and reports.
type DictionaryCache struct {
	cache *Cache
}

// NewDictionaryCache creates a new DictionaryCache.
func NewDictionaryCache(cache *Cache) *DictionaryCache {
	return &DictionaryCache{
		cache: cache,
	}
}

// Put replaces a dictionary with the given entries.
func (d *DictionaryCache) Put(ctx context.Context, name string, entries map[int]string) error {
	if len(entries) == 0 {
		return nil
	}

	key := DictionaryKey(name)
	pipe := d.cache.Client().Pipeline()
	pipe.Del(ctx, key)
	for id, value := range entries {
		pipe.HSet(ctx, key, strconv.Itoa(id), value)
	}
	pipe.Expire(ctx, key, TTLDictionaryCache)

	_, err := pipe.Exec(ctx)
	return err
}

// GetAll returns the whole dictionary. A missing dictionary is not an
// error: callers fall back to built-in names.
func (d *DictionaryCache) GetAll(ctx context.Context, name string) (map[int]string, error) {
	raw, err := d.cache.HGetAll(ctx, DictionaryKey(name))
	if err != nil {
		return nil, err
	}

	entries := make(map[int]string, len(raw))
	for idStr, value := range raw {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			continue
		}
		entries[id] = value
	}
	return entries, nil
}

// Lookup returns one name from a dictionary.
func (d *DictionaryCache) Lookup(ctx context.Context, name string, id int) (string, error) {
	value, err := d.cache.Client().HGet(ctx, DictionaryKey(name), strconv.Itoa(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrCacheMiss
		}
		return "", err
	}
	return value, nil
}

// Age returns how long until the dictionary expires. Used by the refresh
// job to log staleness.
func (d *DictionaryCache) Age(ctx context.Context, name string) (time.Duration, error) {
	return d.cache.TTL(ctx, DictionaryKey(name))
}
