package seed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/portal"
)

// ApplyServices upserts the starter catalogue into the portal store and
// returns how many services were written.
func ApplyServices(ctx context.Context, store *portal.Store, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	services, err := Services()
	if err != nil {
		return 0, err
	}

	var written int
	for _, payload := range services {
		id, err := store.UpsertService(ctx, payload)
		if err != nil {
			return written, fmt.Errorf("seeding services: %w", err)
		}
		logger.Debug("seeded service", "id", id)
		written++
	}
	return written, nil
}

// ApplyKnowledge indexes the starter knowledge documents into the vector
// store and returns the count successfully embedded.
func ApplyKnowledge(ctx context.Context, store knowledge.Store, logger *slog.Logger) (int, error) {
	if logger == nil {
		logger = slog.Default()
	}

	count, err := store.Upsert(ctx, Documents())
	if err != nil {
		return count, fmt.Errorf("seeding knowledge base: %w", err)
	}
	logger.Info("seeded knowledge base", "documents", count)
	return count, nil
}

// ApplyAdmin creates or resets the bootstrap admin account.
func ApplyAdmin(ctx context.Context, store *portal.Store, username, password string) error {
	if username == "" || password == "" {
		return fmt.Errorf("admin username and password required")
	}
	if err := store.UpsertAdmin(ctx, username, password); err != nil {
		return fmt.Errorf("seeding admin: %w", err)
	}
	return nil
}
