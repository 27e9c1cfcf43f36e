// Package server собирает HTTP сервер из обработчиков и middleware
package server

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"golang.org/x/time/rate"

	"github.com/avykov/authkeeper/internal/server/handlers"
	"github.com/avykov/authkeeper/internal/server/middleware"
	"github.com/avykov/authkeeper/internal/server/storage"
)

// Deps содержит зависимости HTTP сервера
type Deps struct {
	Logger       *slog.Logger
	UserStorage  storage.UserStorage
	TokenStorage storage.TokenStorage
	OTPStorage   storage.OTPStorage
	JWTConfig    handlers.JWTConfig
	Version      string

	// RateLimit - запросов в секунду per-IP, RateBurst - размер bucket
	RateLimit rate.Limit
	RateBurst int
}

// NewRouter собирает все маршруты и middleware
func NewRouter(deps Deps) chi.Router {
	authHandler := handlers.NewAuthHandler(deps.Logger, deps.UserStorage, deps.TokenStorage, deps.OTPStorage, deps.JWTConfig)
	userHandler := handlers.NewUserHandler(deps.Logger, deps.UserStorage)
	healthHandler := handlers.NewHealthHandler(deps.Logger, deps.Version)

	r := chi.NewRouter()

	r.Use(middleware.RecoveryMiddleware(deps.Logger))
	r.Use(middleware.LoggingMiddleware(deps.Logger, "/v1/health"))
	r.Use(middleware.RateLimitMiddleware(deps.RateLimit, deps.RateBurst, deps.Logger))

	r.Get("/v1/health", healthHandler.Health)

	r.Route("/v1/auth", func(r chi.Router) {
		r.Post("/sign-in", authHandler.SignIn)
		r.Post("/sign-up", authHandler.SignUp)
		r.Post("/sign-up/verify", authHandler.SignUpVerify)
		r.Post("/sign-up/resend", authHandler.SignUpResend)
		r.Post("/password-reset/request", authHandler.ResetRequest)
		r.Post("/password-reset/verify", authHandler.ResetVerify)
		r.Post("/password-reset/resend", authHandler.ResetResend)
		r.Post("/password-reset", authHandler.ResetSubmit)
		r.Post("/refresh", authHandler.Refresh)
		r.Post("/logout", authHandler.Logout)
	})

	r.With(middleware.AuthMiddleware(deps.Logger, deps.JWTConfig)).
		Get("/v1/users/me", userHandler.Me)

	return r
}
