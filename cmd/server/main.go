// Package main is the entry point for the portfolio server. The default
// command loads configuration and the content store, wires together all
// plugins, and starts the HTTP server; subcommands run media maintenance
// and credential tasks against the same data files.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/keyxmakerx/portfolio/internal/config"
	"github.com/keyxmakerx/portfolio/internal/password"
	"github.com/keyxmakerx/portfolio/internal/store"
	"github.com/keyxmakerx/portfolio/internal/uploads"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Portfolio content server",
		Long: `portfolio serves the site's JSON content API, the uploads tree and the
built front end. Without a subcommand it starts the server.`,
		SilenceUsage: true,
		RunE:         runServe,
	}
	root.AddCommand(newServeCmd(), newMediaCmd(), newHashPasswordCmd())
	return root
}

// loadConfig reads the environment configuration and installs the global
// logger. Every subcommand starts here.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	setupLogging(cfg)
	return cfg, nil
}

// openStore builds the content store from cfg and loads it from disk.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	st := store.New(store.Options{
		ProjectsFile:         cfg.Storage.ProjectsFile,
		StoriesFile:          cfg.Storage.StoriesFile,
		DBFile:               cfg.Storage.DBFile,
		Uploads:              uploads.NewResolver(cfg.Storage.UploadsDir),
		DefaultAdminPassword: cfg.Auth.DefaultAdminPassword,
		HashPassword:         password.Hash,
	})
	if err := st.Initialize(ctx); err != nil {
		return nil, fmt.Errorf("loading content: %w", err)
	}
	return st, nil
}

// setupLogging configures the global slog logger. Development uses text
// format for readability; everything else uses JSON for log aggregation.
func setupLogging(cfg *config.Config) {
	var handler slog.Handler

	if cfg.IsDevelopment() {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		})
	} else {
		handler = slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}

	slog.SetDefault(slog.New(handler))
}
