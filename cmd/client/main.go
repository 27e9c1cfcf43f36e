package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"

	"github.com/avykov/authkeeper/internal/client/api"
	"github.com/avykov/authkeeper/internal/client/auth"
	"github.com/avykov/authkeeper/internal/client/cli"
	"github.com/avykov/authkeeper/internal/client/iocli"
	"github.com/avykov/authkeeper/internal/client/storage"
	"github.com/avykov/authkeeper/internal/client/storage/boltdb"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func main() {
	// Глобальные флаги
	showVersion := flag.Bool("version", false, "Show version information")
	serverURL := flag.String("server", "http://localhost:8080", "Server URL")
	dbPath := flag.String("db", "authkeeper-client.db", "Path to local database")

	flag.Parse()

	if *showVersion {
		printVersion()
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) == 0 {
		cli.PrintUsage()
		os.Exit(1)
	}
	command := args[0]

	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))

	// Открываем BoltDB storage
	boltStorage, err := boltdb.New(ctx, *dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := boltStorage.Close(); err != nil {
			logger.Error("failed to close database", "error", err)
		}
	}()

	// Собираем слои: хранилища поверх KV, API клиент, координатор сессии
	tokens := storage.NewTokenStore(boltStorage)
	flows := storage.NewFlowStore(boltStorage)
	timers := storage.NewTimerStore(boltStorage)
	prefs := storage.NewPrefStore(boltStorage)

	apiClient := api.NewClient(*serverURL, tokens, logger)
	authService := auth.NewService(apiClient, tokens, flows, logger)

	c := cli.New(iocli.NewStdio(), authService, timers, prefs, logger)
	if err := c.Run(ctx, command, args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printVersion() {
	fmt.Printf("AuthKeeper Client\n")
	fmt.Printf("Version:    %s\n", Version)
	fmt.Printf("Build Date: %s\n", BuildDate)
	fmt.Printf("Git Commit: %s\n", GitCommit)
}
