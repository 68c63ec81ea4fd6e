// Package main is the entry point for the ctf-migrate CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/satishbabariya/ctf-migrate/cmd/ctf-migrate/commands"
	"github.com/satishbabariya/ctf-migrate/internal/config"
)

func main() {
	if err := run(); err != nil {
		commands.PrintError(err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config.LoadDotEnv()
	rootCmd := commands.NewRootCommand(config.New())
	return rootCmd.ExecuteContext(ctx)
}
