package middleware

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(rate.Limit(1), 2, slog.New(slog.DiscardHandler))
	defer rl.Stop()

	// Burst из 2 запросов проходит, третий отклоняется
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.True(t, rl.Allow("10.0.0.1"))
	assert.False(t, rl.Allow("10.0.0.1"))

	// У другого клиента свой лимитер
	assert.True(t, rl.Allow("10.0.0.2"))
}

func TestRateLimitMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(rate.Limit(1), 1, slog.New(slog.DiscardHandler))(next)

	do := func(remoteAddr string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/sign-in", nil)
		req.RemoteAddr = remoteAddr
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	require.Equal(t, http.StatusOK, do("10.0.0.1:1234").Code)

	w := do("10.0.0.1:1234")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.JSONEq(t, rateLimitBody, w.Body.String())

	// Другой клиент не задет
	assert.Equal(t, http.StatusOK, do("10.0.0.2:1234").Code)
}

func TestRateLimitMiddleware_XForwardedFor(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := RateLimitMiddleware(rate.Limit(1), 1, slog.New(slog.DiscardHandler))(next)

	do := func(xff string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/v1/auth/sign-in", nil)
		req.RemoteAddr = "127.0.0.1:9999"
		req.Header.Set("X-Forwarded-For", xff)
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w
	}

	// Ключ - первый адрес из X-Forwarded-For, а не адрес прокси
	require.Equal(t, http.StatusOK, do("203.0.113.5, 10.0.0.1").Code)
	assert.Equal(t, http.StatusTooManyRequests, do("203.0.113.5, 10.0.0.2").Code)
	assert.Equal(t, http.StatusOK, do("203.0.113.6").Code)
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name       string
		xff        string
		xRealIP    string
		remoteAddr string
		want       string
	}{
		{name: "x-forwarded-for single", xff: "203.0.113.5", want: "203.0.113.5"},
		{name: "x-forwarded-for chain", xff: "203.0.113.5, 10.0.0.1, 10.0.0.2", want: "203.0.113.5"},
		{name: "x-real-ip", xRealIP: "203.0.113.7", want: "203.0.113.7"},
		{name: "remote addr fallback", remoteAddr: "192.168.1.1:5555", want: "192.168.1.1:5555"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.remoteAddr != "" {
				req.RemoteAddr = tt.remoteAddr
			}
			if tt.xff != "" {
				req.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.xRealIP != "" {
				req.Header.Set("X-Real-IP", tt.xRealIP)
			}
			assert.Equal(t, tt.want, getClientIP(req))
		})
	}
}
