package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avykov/authkeeper/internal/server/handlers"
)

func testJWTConfig() handlers.JWTConfig {
	return handlers.JWTConfig{
		Secret:          []byte("test-secret"),
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	cfg := testJWTConfig()
	token, err := handlers.GenerateAccessToken(cfg, "user-1", "alice@example.com", []string{"CUSTOMER"})
	require.NoError(t, err)

	var gotUserID, gotEmail string
	var gotRoles []string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserID, _ = r.Context().Value(handlers.UserIDKey).(string)
		gotEmail, _ = r.Context().Value(handlers.EmailKey).(string)
		gotRoles, _ = r.Context().Value(handlers.RolesKey).([]string)
		w.WriteHeader(http.StatusOK)
	})

	handler := AuthMiddleware(slog.New(slog.DiscardHandler), cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", gotUserID)
	assert.Equal(t, "alice@example.com", gotEmail)
	assert.Equal(t, []string{"CUSTOMER"}, gotRoles)
}

func TestAuthMiddleware_Rejects(t *testing.T) {
	cfg := testJWTConfig()

	// Токен, подписанный другим секретом
	otherCfg := testJWTConfig()
	otherCfg.Secret = []byte("other-secret")
	forged, err := handlers.GenerateAccessToken(otherCfg, "user-1", "alice@example.com", nil)
	require.NoError(t, err)

	tests := []struct {
		name   string
		header string
	}{
		{name: "missing header", header: ""},
		{name: "not bearer", header: "Basic abc123"},
		{name: "garbage token", header: "Bearer not-a-jwt"},
		{name: "wrong signature", header: "Bearer " + forged},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				t.Error("next handler must not be called")
			})
			handler := AuthMiddleware(slog.New(slog.DiscardHandler), cfg)(next)

			req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	cfg := testJWTConfig()
	expiredCfg := cfg
	expiredCfg.AccessTokenTTL = -time.Minute
	token, err := handlers.GenerateAccessToken(expiredCfg, "user-1", "alice@example.com", nil)
	require.NoError(t, err)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler must not be called")
	})
	handler := AuthMiddleware(slog.New(slog.DiscardHandler), cfg)(next)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
