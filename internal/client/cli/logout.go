package cli

import (
	"context"
)

func (c *Cli) runLogout(ctx context.Context) error {
	c.io.Println("=== Logout ===")

	// Локальная сессия очищается всегда, серверная ошибка только сообщается
	if err := c.auth.SignOut(ctx); err != nil {
		c.io.Printf("Warning: server logout failed: %v\n", err)
	}

	c.io.Println("✓ Your local session has been deleted.")
	return nil
}
