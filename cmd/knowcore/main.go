// Package main implements the knowcore CLI - the ingestion and retrieval
// core's command-line driver.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/c360studio/knowcore/config"
)

// Build information (set via ldflags)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var natsURL string

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	rootCmd := &cobra.Command{
		Use:     "knowcore",
		Short:   "Semantic ingestion and graph-first retrieval core",
		Version: fmt.Sprintf("%s (built %s)", Version, BuildTime),
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&natsURL, "nats-url", "", "NATS server URL (default: embedded)")

	loadApp := func(ctx context.Context) (*App, func(), error) {
		loader := config.NewLoader(logger)
		cfg, err := loader.Load()
		if err != nil {
			return nil, nil, fmt.Errorf("load config: %w", err)
		}
		if configPath != "" {
			fileCfg, err := config.LoadFromFile(configPath)
			if err != nil {
				return nil, nil, fmt.Errorf("load config file: %w", err)
			}
			cfg.Merge(fileCfg)
		}
		if natsURL != "" {
			cfg.NATS.URL = natsURL
			cfg.NATS.Embedded = false
		}
		if err := cfg.Validate(); err != nil {
			return nil, nil, fmt.Errorf("invalid config: %w", err)
		}
		app, err := NewApp(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("initialize app: %w", err)
		}
		if err := app.Start(ctx); err != nil {
			return nil, nil, fmt.Errorf("start app: %w", err)
		}
		return app, func() { app.Shutdown(5 * time.Second) }, nil
	}

	ingestCmd := &cobra.Command{
		Use:   "ingest [path]",
		Short: "Ingest a document or corpus directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			result, err := app.RunIngest(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Println(result.Summary)
			return nil
		},
	}

	var searchTenant string
	searchCmd := &cobra.Command{
		Use:   "search [question]",
		Short: "Plan a graph-first retrieval and synthesize an answer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			result, err := app.RunSearch(cmd.Context(), searchTenant, args[0])
			if err != nil {
				return err
			}
			fmt.Println(result.Summary)
			return nil
		},
	}
	searchCmd.Flags().StringVar(&searchTenant, "tenant", "default", "Tenant scope for context-id filtering")

	lintCmd := &cobra.Command{
		Use:   "lint",
		Short: "Check navigation/semantic edge separation invariants",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			result, err := app.RunLint(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Println(result.Summary)
			if result.ViolationCount > 0 {
				os.Exit(1)
			}
			return nil
		},
	}

	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Print the model capability registry and validate it",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, closeApp, err := loadApp(cmd.Context())
			if err != nil {
				return err
			}
			defer closeApp()
			return app.PrintRegistry(os.Stdout)
		},
	}

	rootCmd.AddCommand(ingestCmd, searchCmd, lintCmd, registryCmd)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	return rootCmd.ExecuteContext(ctx)
}
