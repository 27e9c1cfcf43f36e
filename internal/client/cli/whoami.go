package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/avykov/authkeeper/pkg/api"
)

func (c *Cli) runWhoami(ctx context.Context) error {
	if err := c.auth.RefreshProfile(ctx); err != nil {
		var apiErr *api.Error
		if errors.As(err, &apiErr) && apiErr.IsUnauthorized() {
			return fmt.Errorf("not authenticated, run 'authkeeper login' first")
		}
		return err
	}

	u := c.auth.CurrentUser()

	c.io.Printf("ID:           %s\n", u.ID)
	c.io.Printf("Email:        %s\n", u.Email)
	c.io.Printf("Display name: %s\n", u.DisplayName)

	roles := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		roles = append(roles, string(r))
	}
	c.io.Printf("Roles:        %s\n", strings.Join(roles, ", "))

	return nil
}
