package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/riskibarqy/prediction-league/internal/app"
	"github.com/riskibarqy/prediction-league/internal/config"
	"github.com/riskibarqy/prediction-league/internal/interfaces/cli"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	application, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "build app: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application.Start(ctx)

	ui, err := cli.New(cli.Config{
		Input:       os.Stdin,
		Output:      os.Stdout,
		Workflow:    application.Workflow,
		Leaderboard: application.Leaderboard,
		History:     application.History,
		Auth:        application.Auth,
		Profile:     application.Profile,
		Admin:       application.Admin,
		Logger:      application.Logger,
	})
	if err != nil {
		application.Logger.Error("build ui", "error", err)
		os.Exit(1)
	}

	if err := ui.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		application.Logger.Error("ui stopped", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	application.Shutdown(shutdownCtx)
}
