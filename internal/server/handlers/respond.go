package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/avykov/authkeeper/pkg/api"
)

// sendJSON отправляет JSON ответ
func sendJSON(logger *slog.Logger, w http.ResponseWriter, data any, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", slog.Any("error", err))
	}
}

// sendError отправляет ошибку в едином формате envelope,
// который клиент разбирает без дополнительной нормализации
func sendError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, statusCode int, messages ...string) {
	resp := api.NewError(statusCode, r.Method, r.URL.Path, messages...)
	sendJSON(logger, w, resp, statusCode)
}
