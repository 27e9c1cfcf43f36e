package auth

import (
	"context"
	"fmt"

	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/validation"
	"github.com/avykov/authkeeper/pkg/api"
)

// SignIn выполняет аутентификацию пользователя
func (s *service) SignIn(ctx context.Context, email, password string) error {
	defer s.track()()

	// Валидация входных данных
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// 1. Отправляем запрос на логин
	pair, err := s.apiClient.SignIn(ctx, api.SignInRequest{
		Email:    email,
		Password: password,
	})
	if err != nil {
		// Ошибка пробрасывается без изменений, отображение решает UI
		return err
	}

	// 2. Сохраняем токены, загружаем профиль, инвалидируем зависимый кеш
	return s.completeAuthentication(ctx, pair)
}

// SignUp отправляет регистрацию и возвращает требуемый следующий шаг
func (s *service) SignUp(ctx context.Context, email, password, displayName string) (api.RegistrationStep, error) {
	defer s.track()()

	if err := validation.ValidateEmail(email); err != nil {
		return "", fmt.Errorf("invalid email: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", fmt.Errorf("invalid password: %w", err)
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return "", fmt.Errorf("invalid display name: %w", err)
	}

	resp, err := s.apiClient.SignUp(ctx, api.SignUpRequest{
		Email:       email,
		Password:    password,
		DisplayName: displayName,
	})
	if err != nil {
		return "", err
	}

	switch resp.Step {
	case api.StepEmailOTPVerification:
		// Запись переживает перезапуск приложения: экран верификации
		// должен знать, какой email подтверждается
		reg := &storage.PendingRegistration{Email: email, DisplayName: displayName}
		if err := s.flows.SaveRegistration(ctx, reg); err != nil {
			return "", fmt.Errorf("failed to save pending registration: %w", err)
		}

	case api.StepCompleted:
		// Сервер может выдать токены сразу, а может потребовать отдельный sign-in
		if resp.Tokens != nil {
			if err := s.completeAuthentication(ctx, resp.Tokens); err != nil {
				return resp.Step, err
			}
		}

	default:
		return "", fmt.Errorf("unknown registration step: %q", resp.Step)
	}

	return resp.Step, nil
}

// SignUpVerify подтверждает email OTP кодом
func (s *service) SignUpVerify(ctx context.Context, code string) error {
	defer s.track()()

	if err := validation.ValidateOTP(code); err != nil {
		return fmt.Errorf("invalid code: %w", err)
	}

	// Без записи незавершенной регистрации верифицировать нечего:
	// сервер не вызывается, вызывающий возвращает пользователя на sign-up
	reg, err := s.flows.Registration(ctx)
	if err != nil {
		return err
	}

	pair, err := s.apiClient.SignUpVerify(ctx, api.VerifyOTPRequest{
		Email: reg.Email,
		Code:  code,
	})
	if err != nil {
		return err
	}

	// completeAuthentication очистит запись незавершенной регистрации
	return s.completeAuthentication(ctx, pair)
}

// SignUpResend повторно отправляет OTP код регистрации
func (s *service) SignUpResend(ctx context.Context) error {
	defer s.track()()

	reg, err := s.flows.Registration(ctx)
	if err != nil {
		return err
	}

	// Запись flow не изменяется и не очищается
	return s.apiClient.SignUpResend(ctx, api.ResendOTPRequest{Email: reg.Email})
}

// Registration возвращает запись незавершенной регистрации
func (s *service) Registration(ctx context.Context) (*storage.PendingRegistration, error) {
	return s.flows.Registration(ctx)
}

// ResetRequest начинает flow сброса пароля
func (s *service) ResetRequest(ctx context.Context, email string) error {
	defer s.track()()

	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("invalid email: %w", err)
	}

	if err := s.apiClient.PasswordResetRequest(ctx, api.PasswordResetRequest{Email: email}); err != nil {
		return err
	}

	if err := s.flows.SaveReset(ctx, &storage.PendingReset{Email: email}); err != nil {
		return fmt.Errorf("failed to save pending reset: %w", err)
	}

	return nil
}

// ResetVerify проверяет OTP код и расширяет запись flow полученным reset token
func (s *service) ResetVerify(ctx context.Context, code string) error {
	defer s.track()()

	if err := validation.ValidateOTP(code); err != nil {
		return fmt.Errorf("invalid code: %w", err)
	}

	reset, err := s.flows.Reset(ctx)
	if err != nil {
		return err
	}

	resp, err := s.apiClient.PasswordResetVerify(ctx, api.VerifyOTPRequest{
		Email: reset.Email,
		Code:  code,
	})
	if err != nil {
		return err
	}

	// Одноразовый reset token нужен финальному шагу установки пароля
	reset.ResetToken = resp.ResetToken
	if err := s.flows.SaveReset(ctx, reset); err != nil {
		return fmt.Errorf("failed to save reset token: %w", err)
	}

	return nil
}

// ResetResend повторно отправляет OTP код сброса пароля
func (s *service) ResetResend(ctx context.Context) error {
	defer s.track()()

	reset, err := s.flows.Reset(ctx)
	if err != nil {
		return err
	}

	return s.apiClient.PasswordResetResend(ctx, api.ResendOTPRequest{Email: reset.Email})
}

// ResetPassword завершает flow сброса пароля
func (s *service) ResetPassword(ctx context.Context, newPassword string) error {
	defer s.track()()

	if err := validation.ValidatePassword(newPassword); err != nil {
		return fmt.Errorf("invalid password: %w", err)
	}

	// Без проверенного OTP (нет reset token) шаг невыполним:
	// fail fast, сервер не вызывается
	reset, err := s.flows.Reset(ctx)
	if err != nil {
		return ErrResetTokenMissing
	}
	if reset.ResetToken == "" {
		return ErrResetTokenMissing
	}

	if err := s.apiClient.PasswordReset(ctx, api.PasswordResetSubmitRequest{
		ResetToken:  reset.ResetToken,
		NewPassword: newPassword,
	}); err != nil {
		return err
	}

	if err := s.flows.ClearReset(ctx); err != nil {
		return fmt.Errorf("failed to clear pending reset: %w", err)
	}

	return nil
}

// PendingReset возвращает запись незавершенного сброса пароля
func (s *service) PendingReset(ctx context.Context) (*storage.PendingReset, error) {
	return s.flows.Reset(ctx)
}

// SignOut инвалидирует сессию на сервере и локально.
// Локальная очистка безусловна: logout должен сработать на клиенте,
// даже если серверный вызов не удался. Ошибка сервера при этом
// все равно возвращается вызывающему.
func (s *service) SignOut(ctx context.Context) error {
	defer s.track()()

	serverErr := s.apiClient.Logout(ctx)
	if serverErr != nil {
		s.logger.WarnContext(ctx, "server logout failed, clearing local session anyway",
			"error", serverErr)
	}

	s.clearSession(ctx)

	return serverErr
}
