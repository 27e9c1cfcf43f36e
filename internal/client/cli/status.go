package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/avykov/authkeeper/internal/client/auth"
	"github.com/avykov/authkeeper/pkg/api"
)

func (c *Cli) runStatus(ctx context.Context) error {
	c.io.Println("=== Authentication Status ===")
	c.io.Println()

	// Профиль грузим с сервера: только так видно, что сессия еще жива
	err := c.auth.RefreshProfile(ctx)
	switch {
	case err == nil:
		u := c.auth.CurrentUser()
		c.io.Println("Status: Authenticated")
		c.io.Printf("Email: %s\n", u.Email)
		c.io.Printf("Display name: %s\n", u.DisplayName)

	default:
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			c.io.Println("Status: Not authenticated")
			c.io.Println()
			c.io.Println("Run 'authkeeper login' to authenticate.")
		} else {
			return fmt.Errorf("failed to check session: %w", err)
		}
	}

	// Незавершенные flow показываем отдельно от статуса сессии
	if reg, err := c.auth.Registration(ctx); err == nil {
		c.io.Println()
		c.io.Printf("Pending registration: %s (run 'authkeeper register' to resume)\n", maskEmail(reg.Email))
	} else if !errors.Is(err, auth.ErrNoPendingFlow) {
		return fmt.Errorf("failed to check pending registration: %w", err)
	}

	if reset, err := c.auth.PendingReset(ctx); err == nil {
		c.io.Println()
		c.io.Printf("Pending password reset: %s (run 'authkeeper reset-password' to resume)\n", maskEmail(reset.Email))
	} else if !errors.Is(err, auth.ErrNoPendingFlow) {
		return fmt.Errorf("failed to check pending reset: %w", err)
	}

	return nil
}
