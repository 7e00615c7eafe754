package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dotapulse/dota-pulse-bot/internal/domain/shared"
)

func newTestServer(t *testing.T, config Config, deps Dependencies) *Server {
	t.Helper()
	if config.Port == 0 {
		config = mergeDefaults(config)
	}
	return NewServer(config, deps)
}

func mergeDefaults(config Config) Config {
	def := DefaultConfig()
	def.AdminTokenHash = config.AdminTokenHash
	def.Version = config.Version
	def.Logger = config.Logger
	return def
}

func doRequest(s *Server, method, path string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) JSONResponse {
	t.Helper()
	var resp JSONResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestServer_Health(t *testing.T) {
	s := newTestServer(t, Config{}, Dependencies{})

	rec := doRequest(s, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestServer_Ready_AllStoresUp(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	s := newTestServer(t, Config{}, Dependencies{Postgres: ok, Redis: ok})

	rec := doRequest(s, http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)
}

func TestServer_Ready_StoreDown(t *testing.T) {
	ok := PingerFunc(func(context.Context) error { return nil })
	down := PingerFunc(func(context.Context) error { return errors.New("connection refused") })
	s := newTestServer(t, Config{}, Dependencies{Postgres: ok, Redis: down})

	rec := doRequest(s, http.MethodGet, "/ready", nil)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestServer_Ready_NoPingersConfigured(t *testing.T) {
	s := newTestServer(t, Config{}, Dependencies{})

	rec := doRequest(s, http.MethodGet, "/ready", nil)

	// Nothing to check means nothing is broken.
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServer_RootUnknownPath(t *testing.T) {
	s := newTestServer(t, Config{}, Dependencies{})

	rec := doRequest(s, http.MethodGet, "/no/such/endpoint", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

// ─────────────────────────────────────────────────────────────────────────────
// Admin auth
// ─────────────────────────────────────────────────────────────────────────────

func adminConfig(t *testing.T, token string) Config {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(token), bcrypt.MinCost)
	require.NoError(t, err)

	config := DefaultConfig()
	config.AdminTokenHash = string(hash)
	return config
}

type fakeAudit struct {
	counts map[shared.EventType]int64
}

func (f *fakeAudit) Counts() map[shared.EventType]int64 { return f.counts }

func TestServer_Admin_MissingToken(t *testing.T) {
	s := newTestServer(t, adminConfig(t, "s3cret"), Dependencies{})

	rec := doRequest(s, http.MethodGet, "/admin/stats", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("WWW-Authenticate"))
}

func TestServer_Admin_WrongToken(t *testing.T) {
	s := newTestServer(t, adminConfig(t, "s3cret"), Dependencies{})

	rec := doRequest(s, http.MethodGet, "/admin/stats", map[string]string{
		"Authorization": "Bearer wrong",
	})

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestServer_Admin_DisabledWithoutHash(t *testing.T) {
	s := newTestServer(t, Config{}, Dependencies{})

	rec := doRequest(s, http.MethodGet, "/admin/stats", map[string]string{
		"Authorization": "Bearer anything",
	})

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestServer_Admin_Events(t *testing.T) {
	audit := &fakeAudit{counts: map[shared.EventType]int64{
		"account.linked": 3,
	}}
	s := newTestServer(t, adminConfig(t, "s3cret"), Dependencies{Events: audit})

	rec := doRequest(s, http.MethodGet, "/admin/events", map[string]string{
		"Authorization": "Bearer s3cret",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.EqualValues(t, 3, data["account.linked"])
}

func TestServer_Admin_UnwiredDependency(t *testing.T) {
	s := newTestServer(t, adminConfig(t, "s3cret"), Dependencies{})

	rec := doRequest(s, http.MethodGet, "/admin/jobs", map[string]string{
		"Authorization": "Bearer s3cret",
	})

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
