package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avykov/authkeeper/internal/client/auth"
	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/client/timer"
	"github.com/avykov/authkeeper/internal/validation"
	"github.com/avykov/authkeeper/pkg/api"
)

func (c *Cli) runRegister(ctx context.Context) error {
	c.io.Println("=== Registration ===")
	c.io.Println()

	// Незавершенная регистрация возобновляется с шага верификации
	reg, err := c.auth.Registration(ctx)
	switch {
	case err == nil:
		c.io.Printf("Found an unfinished registration for %s\n", maskEmail(reg.Email))
		resume, err := c.io.Confirm("Resume email verification?")
		if err != nil {
			return fmt.Errorf("failed to read answer: %w", err)
		}
		if resume {
			return c.verifyRegistration(ctx, false)
		}
		// Пользователь начинает заново; запись перезапишет новый sign-up
	case errors.Is(err, auth.ErrNoPendingFlow):
		// Нет незавершенного flow, обычная регистрация
	default:
		return fmt.Errorf("failed to check pending registration: %w", err)
	}

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	displayName, err := c.io.ReadInput("Display name: ")
	if err != nil {
		return fmt.Errorf("failed to read display name: %w", err)
	}
	if err := validation.ValidateDisplayName(displayName); err != nil {
		return err
	}

	password, err := c.readNewPassword("Password (min 8 chars): ")
	if err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("Registering...")

	step, err := c.auth.SignUp(ctx, email, password, displayName)
	if err != nil {
		return err
	}

	switch step {
	case api.StepEmailOTPVerification:
		c.io.Printf("A verification code has been sent to %s\n", maskEmail(email))
		c.io.Println()
		return c.verifyRegistration(ctx, true)

	case api.StepCompleted:
		c.io.Println()
		c.io.Println("✓ Registration successful!")
		if u := c.auth.CurrentUser(); u != nil {
			c.io.Printf("Signed in as %s\n", u.Email)
		} else {
			c.io.Println("Please run 'authkeeper login' to sign in.")
		}
		return nil

	default:
		return fmt.Errorf("unexpected registration step: %s", step)
	}
}

// verifyRegistration проводит пользователя через ввод email OTP кода.
// fresh = true запускает новый resend cooldown, false восстанавливает
// сохраненный после перезапуска приложения.
func (c *Cli) verifyRegistration(ctx context.Context, fresh bool) error {
	t := timer.New(c.timers, storage.KeySignUpResendTimer, timer.DefaultDuration, nil, c.logger)
	if fresh {
		if err := t.Start(ctx); err != nil {
			return err
		}
	} else if err := t.Resume(ctx, false); err != nil {
		return err
	}

	if err := c.otpLoop(ctx, t, c.auth.SignUpVerify, c.auth.SignUpResend); err != nil {
		if errors.Is(err, errCancelled) {
			c.io.Println("Verification cancelled. Run 'authkeeper register' to resume.")
			return nil
		}
		if errors.Is(err, auth.ErrNoPendingFlow) {
			return fmt.Errorf("registration session expired, please run 'authkeeper register' again")
		}
		return err
	}

	c.io.Println()
	c.io.Println("✓ Email verified, registration complete!")
	if u := c.auth.CurrentUser(); u != nil {
		c.io.Printf("Signed in as %s\n", u.Email)
	}
	return nil
}
