package cli

import (
	"context"
	"fmt"
)

// Run выполняет одну команду. Вызывающий печатает ошибку и
// выставляет код выхода.
func (c *Cli) Run(ctx context.Context, command string, args []string) error {
	switch command {
	case "register":
		return c.runRegister(ctx)
	case "login":
		return c.runLogin(ctx)
	case "logout":
		return c.runLogout(ctx)
	case "status":
		return c.runStatus(ctx)
	case "whoami":
		return c.runWhoami(ctx)
	case "reset-password":
		return c.runResetPassword(ctx)
	case "settings":
		return c.runSettings(ctx, args)
	default:
		PrintUsage()
		return fmt.Errorf("unknown command: %s", command)
	}
}
