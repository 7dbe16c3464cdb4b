package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/portfolio/internal/app"
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	slog.Info("starting portfolio",
		slog.String("env", cfg.Env),
		slog.Int("port", cfg.Port),
	)

	st, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	slog.Info("content loaded",
		slog.String("projects", cfg.Storage.ProjectsFile),
		slog.String("uploads", cfg.Storage.UploadsDir),
	)

	application := app.New(cfg, st)
	application.RegisterRoutes()

	// Drain in-flight requests on SIGINT/SIGTERM so a container restart
	// never cuts a save short.
	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit

		slog.Info("shutting down server...")

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := application.Echo.Shutdown(ctx); err != nil {
			slog.Error("server forced shutdown", slog.Any("error", err))
		}
	}()

	if err := application.Start(); err != nil {
		// Echo returns http.ErrServerClosed on graceful shutdown, which is expected.
		slog.Info("server stopped", slog.Any("reason", err))
	}
	return nil
}
