package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avykov/authkeeper/internal/models"
	"github.com/avykov/authkeeper/pkg/api"
)

func TestMe_Success(t *testing.T) {
	users := newMockUserStorage()
	users.users["alice@example.com"] = &models.User{
		ID:          "user-1",
		Email:       "alice@example.com",
		DisplayName: "Alice",
		Roles:       []string{"ADMIN", "CUSTOMER"},
		Verified:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	handler := NewUserHandler(slog.New(slog.DiscardHandler), users)

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "user-1"))
	w := httptest.NewRecorder()
	handler.Me(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var profile api.UserProfile
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &profile))
	assert.Equal(t, "user-1", profile.ID)
	assert.Equal(t, "alice@example.com", profile.Email)
	assert.Equal(t, "Alice", profile.DisplayName)
	assert.Equal(t, []api.RoleName{api.RoleAdmin, api.RoleCustomer}, profile.Roles)
}

func TestMe_DeletedAccount(t *testing.T) {
	handler := NewUserHandler(slog.New(slog.DiscardHandler), newMockUserStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	req = req.WithContext(context.WithValue(req.Context(), UserIDKey, "gone-user"))
	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_NoUserInContext(t *testing.T) {
	handler := NewUserHandler(slog.New(slog.DiscardHandler), newMockUserStorage())

	req := httptest.NewRequest(http.MethodGet, "/v1/users/me", nil)
	w := httptest.NewRecorder()
	handler.Me(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
