package cli

import (
	"fmt"
	"log/slog"

	"github.com/avykov/authkeeper/internal/client/auth"
	"github.com/avykov/authkeeper/internal/client/iocli"
	"github.com/avykov/authkeeper/internal/client/storage"
)

type Cli struct {
	io     iocli.IO
	auth   auth.Service
	timers *storage.TimerStore
	prefs  *storage.PrefStore
	logger *slog.Logger
}

func New(io iocli.IO, authService auth.Service, timers *storage.TimerStore, prefs *storage.PrefStore, logger *slog.Logger) *Cli {
	return &Cli{
		io:     io,
		auth:   authService,
		timers: timers,
		prefs:  prefs,
		logger: logger,
	}
}

func PrintUsage() {
	fmt.Println("AuthKeeper Client")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  authkeeper [OPTIONS] COMMAND")
	fmt.Println()
	fmt.Println("Options:")
	fmt.Println("  --version      Show version information")
	fmt.Println("  --server URL   Server URL (default: http://localhost:8080)")
	fmt.Println("  --db PATH      Path to local database (default: authkeeper-client.db)")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  register            Register new account (email OTP verification)")
	fmt.Println("  login               Sign in with email and password")
	fmt.Println("  logout              Sign out and clear the local session")
	fmt.Println("  status              Show authentication status")
	fmt.Println("  whoami              Show the current user profile")
	fmt.Println("  reset-password      Reset a forgotten password (email OTP verification)")
	fmt.Println("  settings            Show or change app settings (theme, language)")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  authkeeper register")
	fmt.Println("  authkeeper login")
	fmt.Println("  authkeeper whoami")
	fmt.Println("  authkeeper settings theme dark")
	fmt.Println("  authkeeper --server https://example.com login")
}
