package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avykov/authkeeper/internal/client/auth"
	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/client/timer"
	"github.com/avykov/authkeeper/internal/validation"
)

func (c *Cli) runResetPassword(ctx context.Context) error {
	c.io.Println("=== Password Reset ===")
	c.io.Println()

	// Незавершенный сброс возобновляется с того шага, где остановился:
	// с ввода кода или сразу с нового пароля, если код уже проверен
	reset, err := c.auth.PendingReset(ctx)
	switch {
	case err == nil:
		c.io.Printf("Found an unfinished password reset for %s\n", maskEmail(reset.Email))
		resume, err := c.io.Confirm("Resume it?")
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if resume {
			if reset.ResetToken != "" {
				return c.submitNewPassword(ctx)
			}
			return c.verifyReset(ctx, false)
		}
		// Пользователь начинает заново; запись перезапишет новый запрос
	case errors.Is(err, auth.ErrNoPendingFlow):
		// Нет незавершенного flow, обычный сброс
	default:
		return fmt.Errorf("failed to check pending reset: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Requesting password reset...")

	if err := c.auth.ResetRequest(ctx, email); err != nil {
		return err
	}

	c.io.Printf("A verification code has been sent to %s\n", maskEmail(email))
	c.io.Println()

	return c.verifyReset(ctx, true)
}

// verifyReset проводит пользователя через ввод OTP кода сброса пароля
func (c *Cli) verifyReset(ctx context.Context, fresh bool) error {
	t := timer.New(c.timers, storage.KeyResetResendTimer, timer.DefaultDuration, nil, c.logger)
	if fresh {
		if err := t.Start(ctx); err != nil {
			return err
		}
	} else if err := t.Resume(ctx, false); err != nil {
		return err
	}

	if err := c.otpLoop(ctx, t, c.auth.ResetVerify, c.auth.ResetResend); err != nil {
		if errors.Is(err, errCancelled) {
			c.io.Println("Reset cancelled. Run 'authkeeper reset-password' to resume.")
			return nil
		}
		if errors.Is(err, auth.ErrNoPendingFlow) {
			return fmt.Errorf("reset session expired, please run 'authkeeper reset-password' again")
		}
		return err
	}

	c.io.Println()
	c.io.Println("✓ Code verified.")
	return c.submitNewPassword(ctx)
}

// submitNewPassword завершает сброс, устанавливая новый пароль
func (c *Cli) submitNewPassword(ctx context.Context) error {
	password, err := c.readNewPassword("New password (min 8 chars): ")
	if err != nil {
		return err
	}

	if err := c.auth.ResetPassword(ctx, password); err != nil {
		if errors.Is(err, auth.ErrResetTokenMissing) {
			return fmt.Errorf("reset session expired, please run 'authkeeper reset-password' again")
		}
		return err
	}

	c.io.Println()
	c.io.Println("✓ Password has been reset!")
	c.io.Println("Please run 'authkeeper login' with your new password.")

	return nil
}
