package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/govlk/citizenport/internal/api"
	"github.com/govlk/citizenport/internal/app"
	"github.com/govlk/citizenport/internal/config"
	"github.com/govlk/citizenport/internal/log"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the portal HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.ValidateServe(); err != nil {
		return fmt.Errorf("validating config: %w", err)
	}

	logger := log.New(log.Config{Level: slog.LevelInfo, JSON: true})

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

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	server := api.NewServer(api.Config{
		Addr:          addr,
		CORSOrigins:   cfg.CORSOrigins,
		TrustProxy:    cfg.TrustProxy,
		RateBurst:     cfg.RateBurst,
		DefaultTopK:   cfg.TopK,
		SessionSecret: []byte(cfg.SessionSecret),
		SecureCookies: cfg.PostgresSSLMode != "disable",
	}, api.Deps{
		Portal:  a.Portal,
		Answers: a.RAG,
		Chatter: a.Generator,
	}, logger)

	logger.Info("portal ready",
		"addr", addr,
		"vector_backend", cfg.VectorBackend,
		"model", cfg.ModelName,
	)
	return server.Run(ctx)
}
