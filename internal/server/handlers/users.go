package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/avykov/authkeeper/internal/server/storage"
	"github.com/avykov/authkeeper/pkg/api"
)

// UserHandler обрабатывает запросы профиля пользователя
type UserHandler struct {
	logger      *slog.Logger
	userStorage storage.UserStorage
}

// NewUserHandler создает новый handler для профилей
func NewUserHandler(logger *slog.Logger, userStorage storage.UserStorage) *UserHandler {
	return &UserHandler{
		logger:      logger,
		userStorage: userStorage,
	}
}

// Me обрабатывает GET /v1/users/me
// Профиль текущего пользователя; user ID берется из claims,
// которые положил auth middleware
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	userID, ok := ctx.Value(UserIDKey).(string)
	if !ok || userID == "" {
		sendError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			// Токен валиден, но аккаунт уже удален
			sendError(h.logger, w, r, http.StatusUnauthorized, "unauthorized")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	roles := make([]api.RoleName, 0, len(user.Roles))
	for _, role := range user.Roles {
		roles = append(roles, api.RoleName(role))
	}

	resp := api.UserProfile{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Roles:       roles,
	}

	sendJSON(h.logger, w, resp, http.StatusOK)
}
