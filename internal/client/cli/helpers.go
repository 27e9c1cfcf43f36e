package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avykov/authkeeper/internal/client/timer"
	"github.com/avykov/authkeeper/internal/validation"
	"github.com/avykov/authkeeper/pkg/api"
)

var errCancelled = errors.New("cancelled by user")

// otpLoop запускает интерактивный ввод кода подтверждения.
// Команда 'resend' запрашивает новый код с учетом cooldown таймера,
// 'cancel' прерывает flow без потери сохраненного состояния.
func (c *Cli) otpLoop(ctx context.Context, t *timer.Timer, verify func(context.Context, string) error, resend func(context.Context) error) error {
	for {
		input, err := c.io.ReadInput("Verification code (or 'resend' / 'cancel'): ")
		if err != nil {
			return fmt.Errorf("failed to read code: %w", err)
		}

		switch strings.ToLower(input) {
		case "cancel":
			return errCancelled

		case "resend":
			if !t.CanResend() {
				c.io.Printf("Please wait %s before requesting a new code\n", timer.FormatTime(t.Remaining()))
				continue
			}
			if err := resend(ctx); err != nil {
				c.io.Printf("Resend failed: %v\n", err)
				continue
			}
			if err := t.Start(ctx); err != nil {
				return err
			}
			c.io.Println("A new code has been sent to your email.")

		default:
			if err := validation.ValidateOTP(input); err != nil {
				c.io.Printf("Invalid code: %v\n", err)
				continue
			}
			if err := verify(ctx, input); err != nil {
				// Неверный код дает еще одну попытку; остальные
				// ошибки прерывают loop
				var apiErr *api.Error
				if errors.As(err, &apiErr) && !apiErr.IsNetwork() && !apiErr.IsServerError() {
					c.io.Printf("Verification failed: %v\n", err)
					continue
				}
				return err
			}
			_ = t.Stop(ctx)
			return nil
		}
	}
}

// readNewPassword запрашивает пароль с подтверждением
func (c *Cli) readNewPassword(prompt string) (string, error) {
	password, err := c.io.ReadPassword(prompt)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return "", err
	}

	confirm, err := c.io.ReadPassword("Confirm password: ")
	if err != nil {
		return "", fmt.Errorf("failed to read confirmation: %w", err)
	}
	if password != confirm {
		return "", fmt.Errorf("passwords do not match")
	}
	return password, nil
}

// maskEmail маскирует локальную часть адреса для вывода на экран
func maskEmail(email string) string {
	at := strings.IndexByte(email, '@')
	if at <= 1 {
		return email
	}
	return email[:1] + strings.Repeat("*", at-1) + email[at:]
}
