package account

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// REPOSITORY INTERFACES
// Эти интерфейсы определяют контракт для работы с хранилищем данных.
// Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// Repository определяет операции хранения привязанных аккаунтов.
type Repository interface {
	// ─────────────────────────────────────────────────────────────────────────
	// CRUD Operations
	// ─────────────────────────────────────────────────────────────────────────

	// Upsert создаёт привязку или заменяет существующую для этого Telegram ID.
	// Повторная привязка - штатная операция, а не ошибка.
	Upsert(ctx context.Context, acc *Account) error

	// GetByTelegramID возвращает привязку по Telegram ID.
	// Возвращает ErrAccountNotFound, если привязки нет.
	GetByTelegramID(ctx context.Context, telegramID TelegramID) (*Account, error)

	// GetBySteamID возвращает привязку по игровому аккаунту.
	// Возвращает ErrAccountNotFound, если привязки нет.
	GetBySteamID(ctx context.Context, steamID SteamID) (*Account, error)

	// Update обновляет состояние существующей привязки.
	// Возвращает ErrAccountNotFound, если привязки нет.
	Update(ctx context.Context, acc *Account) error

	// Delete удаляет привязку.
	// Возвращает ErrAccountNotFound, если привязки нет.
	Delete(ctx context.Context, telegramID TelegramID) error

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll возвращает все привязанные аккаунты.
	// Именно по этому списку цикл опроса обходит игроков.
	GetAll(ctx context.Context) ([]*Account, error)

	// Count возвращает количество привязок.
	Count(ctx context.Context) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Existence Checks
	// ─────────────────────────────────────────────────────────────────────────

	// ExistsByTelegramID проверяет наличие привязки по Telegram ID.
	ExistsByTelegramID(ctx context.Context, telegramID TelegramID) (bool, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// CACHE INTERFACE
// Кеш аккаунтов отделён от репозитория, чтобы хранилище и кеш можно было
// подменять независимо (в тестах кеш заменяется детерминированной заглушкой).
// ══════════════════════════════════════════════════════════════════════════════

// Cache определяет операции кеширования привязанных аккаунтов.
type Cache interface {
	// Get получает аккаунт из кеша.
	Get(ctx context.Context, telegramID TelegramID) (*Account, error)

	// Set сохраняет аккаунт в кеш на указанный срок.
	Set(ctx context.Context, acc *Account, ttl time.Duration) error

	// Delete удаляет аккаунт из кеша.
	Delete(ctx context.Context, telegramID TelegramID) error

	// InvalidateAll очищает весь кеш аккаунтов.
	InvalidateAll(ctx context.Context) error
}
