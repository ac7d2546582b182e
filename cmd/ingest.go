package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/govlk/citizenport/internal/app"
	"github.com/govlk/citizenport/internal/config"
	"github.com/govlk/citizenport/internal/log"
	"github.com/govlk/citizenport/internal/scrape"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest URL...",
	Short: "Scrape pages or PDFs and index them into the knowledge base",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(args)
	},
}

func init() {
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(urls []string) error {
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

	scraper := scrape.New(scrape.Config{
		UserAgent:    cfg.Scraper.UserAgent,
		Timeout:      time.Duration(cfg.Scraper.TimeoutMS) * time.Millisecond,
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
	}, logger)

	var total int
	for _, url := range urls {
		page, err := scraper.Scrape(ctx, url)
		if err != nil {
			logger.Error("scraping failed", "url", url, "error", err)
			continue
		}

		docs, err := scraper.Documents(page)
		if err != nil {
			logger.Error("chunking failed", "url", url, "error", err)
			continue
		}

		count, err := a.Knowledge.Upsert(ctx, docs)
		if err != nil {
			logger.Warn("partial indexing", "url", url, "indexed", count, "error", err)
		}
		fmt.Printf("%s: indexed %d chunks\n", url, count)
		total += count
	}

	fmt.Printf("Done: %d chunks indexed from %d sources\n", total, len(urls))
	return nil
}
