package cli

import (
	"context"
	"fmt"

	"github.com/avykov/authkeeper/internal/validation"
)

func (c *Cli) runLogin(ctx context.Context) error {
	c.io.Println("=== Login ===")
	c.io.Println()

	email, err := c.io.ReadInput("Email: ")
	if err != nil {
		return fmt.Errorf("failed to read email: %w", err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return err
	}

	password, err := c.io.ReadPassword("Password: ")
	if err != nil {
		return fmt.Errorf("failed to read password: %w", err)
	}

	c.io.Println()
	c.io.Println("Authenticating...")

	if err := c.auth.SignIn(ctx, email, password); err != nil {
		return err
	}

	c.io.Println()
	c.io.Println("✓ Login successful!")
	if u := c.auth.CurrentUser(); u != nil {
		c.io.Printf("Signed in as %s (%s)\n", u.DisplayName, u.Email)
	}

	return nil
}
