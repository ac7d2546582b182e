package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/govlk/citizenport/internal/app"
	"github.com/govlk/citizenport/internal/config"
	"github.com/govlk/citizenport/internal/log"
	"github.com/govlk/citizenport/internal/seed"
)

var seedSkipKnowledge bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the starter catalogue, admin account and knowledge base",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSeed()
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedSkipKnowledge, "skip-knowledge", false,
		"seed only services and admin, skip embedding the knowledge base")
	rootCmd.AddCommand(seedCmd)
}

func runSeed() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := log.New(log.Config{Level: slog.LevelInfo})

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := app.Setup(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("initializing application: %w", err)
	}
	defer func() {
		if closeErr := a.Close(); closeErr != nil {
			logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	count, err := seed.ApplyServices(ctx, a.Portal, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Seeded %d services\n", count)

	if cfg.AdminUser != "" && cfg.AdminPassword != "" {
		if err := seed.ApplyAdmin(ctx, a.Portal, cfg.AdminUser, cfg.AdminPassword); err != nil {
			return err
		}
		fmt.Printf("Seeded admin account %q\n", cfg.AdminUser)
	}

	if seedSkipKnowledge {
		return nil
	}

	docs, err := seed.ApplyKnowledge(ctx, a.Knowledge, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Indexed %d knowledge documents\n", docs)
	return nil
}
