package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/avykov/authkeeper/internal/models"
	"github.com/avykov/authkeeper/internal/server/storage"
	"github.com/avykov/authkeeper/internal/validation"
	"github.com/avykov/authkeeper/pkg/api"
)

const (
	// otpTTL - срок жизни одноразового кода
	otpTTL = 10 * time.Minute

	// resetTokenTTL - срок жизни reset token после проверки OTP
	resetTokenTTL = 15 * time.Minute

	// resendCooldown - минимальный интервал между повторными отправками кода
	resendCooldown = 60 * time.Second
)

// AuthHandler обрабатывает запросы авторизации
type AuthHandler struct {
	logger       *slog.Logger
	userStorage  storage.UserStorage
	tokenStorage storage.TokenStorage
	otpStorage   storage.OTPStorage
	jwtConfig    JWTConfig
}

// NewAuthHandler создает новый handler для авторизации
func NewAuthHandler(logger *slog.Logger, userStorage storage.UserStorage, tokenStorage storage.TokenStorage, otpStorage storage.OTPStorage, jwtConfig JWTConfig) *AuthHandler {
	return &AuthHandler{
		logger:       logger,
		userStorage:  userStorage,
		tokenStorage: tokenStorage,
		otpStorage:   otpStorage,
		jwtConfig:    jwtConfig,
	}
}

// SignUp обрабатывает POST /v1/auth/sign-up
// Регистрация нового пользователя с подтверждением email по OTP коду
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.ErrorContext(ctx, "failed to decode sign-up request", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	// Собираем все ошибки валидации в один ответ
	var problems []string
	if err := validation.ValidateEmail(req.Email); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validation.ValidatePassword(req.Password); err != nil {
		problems = append(problems, err.Error())
	}
	if err := validation.ValidateDisplayName(req.DisplayName); err != nil {
		problems = append(problems, err.Error())
	}
	if len(problems) > 0 {
		sendError(h.logger, w, r, http.StatusBadRequest, problems...)
		return
	}

	existing, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	switch {
	case err == nil && existing.Verified:
		h.logger.WarnContext(ctx, "sign-up for registered email", slog.String("email", req.Email))
		sendError(h.logger, w, r, http.StatusConflict, "email already registered")
		return

	case err == nil:
		// Незавершенная регистрация: выдаем новый код для того же аккаунта
		if err := h.issueOTP(ctx, req.Email, models.OTPPurposeSignUp); err != nil {
			h.logger.ErrorContext(ctx, "failed to issue otp", slog.Any("error", err))
			sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
			return
		}
		sendJSON(h.logger, w, api.SignUpResponse{Step: api.StepEmailOTPVerification}, http.StatusOK)
		return

	case !errors.Is(err, storage.ErrUserNotFound):
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	now := time.Now()
	user := &models.User{
		ID:           uuid.New().String(),
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: string(passwordHash),
		Roles:        []string{string(api.RoleCustomer)},
		Verified:     false,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := h.userStorage.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrUserAlreadyExists) {
			sendError(h.logger, w, r, http.StatusConflict, "email already registered")
			return
		}
		h.logger.ErrorContext(ctx, "failed to create user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.issueOTP(ctx, req.Email, models.OTPPurposeSignUp); err != nil {
		h.logger.ErrorContext(ctx, "failed to issue otp", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user registered, awaiting email verification",
		slog.String("email", req.Email),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.SignUpResponse{Step: api.StepEmailOTPVerification}, http.StatusCreated)
}

// SignUpVerify обрабатывает POST /v1/auth/sign-up/verify
// Проверка email OTP кода; успех завершает регистрацию и выдает токены
func (h *AuthHandler) SignUpVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.checkOTP(w, r, req.Email, models.OTPPurposeSignUp, req.Code) {
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.userStorage.MarkVerified(ctx, user.ID); err != nil {
		h.logger.ErrorContext(ctx, "failed to mark user verified", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// Код одноразовый: удаляем сразу после успешной проверки
	if err := h.otpStorage.DeleteOTP(ctx, req.Email, models.OTPPurposeSignUp); err != nil {
		h.logger.WarnContext(ctx, "failed to delete otp code", slog.Any("error", err))
	}

	pair, err := h.issuePair(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token pair", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "email verified, registration completed",
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, pair, http.StatusOK)
}

// SignUpResend обрабатывает POST /v1/auth/sign-up/resend
// Повторная отправка OTP кода с server-side cooldown
func (h *AuthHandler) SignUpResend(w http.ResponseWriter, r *http.Request) {
	h.resendOTP(w, r, models.OTPPurposeSignUp)
}

// SignIn обрабатывает POST /v1/auth/sign-in
func (h *AuthHandler) SignIn(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.SignInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.WarnContext(ctx, "sign-in failed: user not found", slog.String("email", req.Email))
			sendError(h.logger, w, r, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		h.logger.WarnContext(ctx, "sign-in failed: wrong password", slog.String("email", req.Email))
		sendError(h.logger, w, r, http.StatusUnauthorized, "invalid credentials")
		return
	}

	if !user.Verified {
		sendError(h.logger, w, r, http.StatusForbidden, "email not verified")
		return
	}

	pair, err := h.issuePair(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token pair", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user signed in",
		slog.String("email", req.Email),
		slog.String("user_id", user.ID))

	sendJSON(h.logger, w, pair, http.StatusOK)
}

// Refresh обрабатывает POST /v1/auth/refresh
// Обменивает refresh token на новую пару с ротацией
func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.RefreshToken == "" {
		sendError(h.logger, w, r, http.StatusUnauthorized, "refresh token is required")
		return
	}

	storedToken, err := h.tokenStorage.GetRefreshToken(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, storage.ErrTokenNotFound) {
			h.logger.WarnContext(ctx, "refresh token not found")
			sendError(h.logger, w, r, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get refresh token", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if time.Now().After(storedToken.ExpiresAt) {
		h.logger.WarnContext(ctx, "refresh token expired", slog.String("user_id", storedToken.UserID))
		sendError(h.logger, w, r, http.StatusUnauthorized, "refresh token expired")
		return
	}

	user, err := h.userStorage.GetUserByID(ctx, storedToken.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	// Ротация: старый токен перестает действовать
	if err := h.tokenStorage.DeleteRefreshToken(ctx, req.RefreshToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete old refresh token", slog.Any("error", err))
	}

	pair, err := h.issuePair(ctx, user)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to issue token pair", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "tokens refreshed", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, pair, http.StatusOK)
}

// Logout обрабатывает POST /v1/auth/logout
// Удаляет все refresh tokens пользователя
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	accessToken, ok := bearerToken(r)
	if !ok {
		sendError(h.logger, w, r, http.StatusUnauthorized, "Authorization header is required")
		return
	}

	claims, err := ValidateAccessToken(h.jwtConfig, accessToken)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid access token", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusUnauthorized, "invalid or expired access token")
		return
	}

	deletedCount, err := h.tokenStorage.DeleteUserTokens(ctx, claims.UserID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to delete user tokens", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "user logged out",
		slog.String("user_id", claims.UserID),
		slog.Int("tokens_deleted", deletedCount))

	w.WriteHeader(http.StatusNoContent)
}

// ResetRequest обрабатывает POST /v1/auth/password-reset/request
// Начинает flow сброса пароля; ответ одинаков для любого email,
// чтобы не раскрывать наличие аккаунта
func (h *AuthHandler) ResetRequest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PasswordResetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.userStorage.GetUserByEmail(ctx, req.Email); err != nil {
		if errors.Is(err, storage.ErrUserNotFound) {
			h.logger.InfoContext(ctx, "password reset for unknown email", slog.String("email", req.Email))
			sendJSON(h.logger, w, api.MessageResponse{Message: "verification code sent"}, http.StatusOK)
			return
		}
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.issueOTP(ctx, req.Email, models.OTPPurposePasswordReset); err != nil {
		h.logger.ErrorContext(ctx, "failed to issue otp", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "verification code sent"}, http.StatusOK)
}

// ResetVerify обрабатывает POST /v1/auth/password-reset/verify
// Проверка OTP кода; успех выдает одноразовый reset token
func (h *AuthHandler) ResetVerify(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if !h.checkOTP(w, r, req.Email, models.OTPPurposePasswordReset, req.Code) {
		return
	}

	if err := h.otpStorage.DeleteOTP(ctx, req.Email, models.OTPPurposePasswordReset); err != nil {
		h.logger.WarnContext(ctx, "failed to delete otp code", slog.Any("error", err))
	}

	token, err := randomToken()
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to generate reset token", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	resetToken := &models.ResetToken{
		Token:     token,
		Email:     req.Email,
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := h.otpStorage.SaveResetToken(ctx, resetToken); err != nil {
		h.logger.ErrorContext(ctx, "failed to save reset token", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	h.logger.InfoContext(ctx, "reset code verified", slog.String("email", req.Email))

	sendJSON(h.logger, w, api.PasswordResetVerifyResponse{ResetToken: token}, http.StatusOK)
}

// ResetResend обрабатывает POST /v1/auth/password-reset/resend
func (h *AuthHandler) ResetResend(w http.ResponseWriter, r *http.Request) {
	h.resendOTP(w, r, models.OTPPurposePasswordReset)
}

// ResetSubmit обрабатывает POST /v1/auth/password-reset
// Завершает flow: устанавливает новый пароль по reset token
// и инвалидирует все сессии пользователя
func (h *AuthHandler) ResetSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req api.PasswordResetSubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidatePassword(req.NewPassword); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	resetToken, err := h.otpStorage.GetResetToken(ctx, req.ResetToken)
	if err != nil {
		if errors.Is(err, storage.ErrResetTokenNotFound) {
			sendError(h.logger, w, r, http.StatusBadRequest, "invalid or expired reset token")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get reset token", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if time.Now().After(resetToken.ExpiresAt) {
		if err := h.otpStorage.DeleteResetToken(ctx, req.ResetToken); err != nil {
			h.logger.WarnContext(ctx, "failed to delete reset token", slog.Any("error", err))
		}
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid or expired reset token")
		return
	}

	user, err := h.userStorage.GetUserByEmail(ctx, resetToken.Email)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to get user", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to hash password", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.userStorage.UpdatePassword(ctx, user.ID, string(passwordHash)); err != nil {
		h.logger.ErrorContext(ctx, "failed to update password", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if err := h.otpStorage.DeleteResetToken(ctx, req.ResetToken); err != nil {
		h.logger.WarnContext(ctx, "failed to delete reset token", slog.Any("error", err))
	}

	// Смена пароля разлогинивает все устройства
	if _, err := h.tokenStorage.DeleteUserTokens(ctx, user.ID); err != nil {
		h.logger.WarnContext(ctx, "failed to delete user tokens", slog.Any("error", err))
	}

	h.logger.InfoContext(ctx, "password reset completed", slog.String("user_id", user.ID))

	sendJSON(h.logger, w, api.MessageResponse{Message: "password has been reset"}, http.StatusOK)
}

// issuePair генерирует access + refresh токены и сохраняет refresh в БД
func (h *AuthHandler) issuePair(ctx context.Context, user *models.User) (*api.TokenPair, error) {
	accessToken, err := GenerateAccessToken(h.jwtConfig, user.ID, user.Email, user.Roles)
	if err != nil {
		return nil, err
	}

	refreshToken, expiresAt, err := GenerateRefreshToken(h.jwtConfig)
	if err != nil {
		return nil, err
	}

	token := &models.RefreshToken{
		Token:     refreshToken,
		UserID:    user.ID,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := h.tokenStorage.SaveRefreshToken(ctx, token); err != nil {
		return nil, err
	}

	return &api.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
	}, nil
}

// issueOTP генерирует код, сохраняет его и "доставляет" через лог.
// Dev сервер не отправляет почту: код читают из журнала.
func (h *AuthHandler) issueOTP(ctx context.Context, email string, purpose models.OTPPurpose) error {
	code, err := GenerateOTPCode()
	if err != nil {
		return err
	}

	now := time.Now()
	otp := &models.OTPCode{
		Email:     email,
		Purpose:   purpose,
		Code:      code,
		ExpiresAt: now.Add(otpTTL),
		CreatedAt: now,
	}
	if err := h.otpStorage.SaveOTP(ctx, otp); err != nil {
		return err
	}

	h.logger.InfoContext(ctx, "otp code issued",
		slog.String("email", email),
		slog.String("purpose", string(purpose)),
		slog.String("code", code))

	return nil
}

// checkOTP проверяет код и пишет ошибку в ответ при неудаче.
// Возвращает true если код действителен.
func (h *AuthHandler) checkOTP(w http.ResponseWriter, r *http.Request, email string, purpose models.OTPPurpose, code string) bool {
	ctx := r.Context()

	if err := validation.ValidateEmail(email); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return false
	}
	if err := validation.ValidateOTP(code); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return false
	}

	stored, err := h.otpStorage.GetOTP(ctx, email, purpose)
	if err != nil {
		if errors.Is(err, storage.ErrOTPNotFound) {
			sendError(h.logger, w, r, http.StatusBadRequest, "no verification pending for this email")
			return false
		}
		h.logger.ErrorContext(ctx, "failed to get otp code", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return false
	}

	if time.Now().After(stored.ExpiresAt) {
		if err := h.otpStorage.DeleteOTP(ctx, email, purpose); err != nil {
			h.logger.WarnContext(ctx, "failed to delete otp code", slog.Any("error", err))
		}
		sendError(h.logger, w, r, http.StatusBadRequest, "verification code expired")
		return false
	}

	if stored.Code != code {
		h.logger.WarnContext(ctx, "wrong otp code", slog.String("email", email))
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid verification code")
		return false
	}

	return true
}

// resendOTP повторно выдает код для активного flow с учетом cooldown
func (h *AuthHandler) resendOTP(w http.ResponseWriter, r *http.Request, purpose models.OTPPurpose) {
	ctx := r.Context()

	var req api.ResendOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := validation.ValidateEmail(req.Email); err != nil {
		sendError(h.logger, w, r, http.StatusBadRequest, err.Error())
		return
	}

	existing, err := h.otpStorage.GetOTP(ctx, req.Email, purpose)
	if err != nil {
		if errors.Is(err, storage.ErrOTPNotFound) {
			sendError(h.logger, w, r, http.StatusBadRequest, "no verification pending for this email")
			return
		}
		h.logger.ErrorContext(ctx, "failed to get otp code", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	if time.Since(existing.CreatedAt) < resendCooldown {
		sendError(h.logger, w, r, http.StatusTooManyRequests, "please wait before requesting a new code")
		return
	}

	if err := h.issueOTP(ctx, req.Email, purpose); err != nil {
		h.logger.ErrorContext(ctx, "failed to issue otp", slog.Any("error", err))
		sendError(h.logger, w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	sendJSON(h.logger, w, api.MessageResponse{Message: "verification code sent"}, http.StatusOK)
}

// bearerToken извлекает bearer токен из Authorization header
func bearerToken(r *http.Request) (string, bool) {
	authHeader := r.Header.Get("Authorization")

	const bearerPrefix = "Bearer "
	if len(authHeader) <= len(bearerPrefix) || authHeader[:len(bearerPrefix)] != bearerPrefix {
		return "", false
	}

	return authHeader[len(bearerPrefix):], true
}
