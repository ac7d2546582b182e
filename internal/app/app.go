// Package app wires configuration, storage, the AI stack and the knowledge
// store into one ready-to-run application value.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/firebase/genkit/go/ai"
	"github.com/firebase/genkit/go/genkit"
	"github.com/firebase/genkit/go/plugins/googlegenai"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/govlk/citizenport/db"
	"github.com/govlk/citizenport/internal/config"
	"github.com/govlk/citizenport/internal/knowledge"
	"github.com/govlk/citizenport/internal/portal"
	"github.com/govlk/citizenport/internal/rag"
)

// App holds every long-lived component. Construct with Setup, release with
// Close.
type App struct {
	Config    *config.Config
	Logger    *slog.Logger
	Pool      *pgxpool.Pool
	Genkit    *genkit.Genkit
	Embedder  ai.Embedder
	Knowledge knowledge.Store
	Portal    *portal.Store
	Generator *rag.GeminiGenerator
	RAG       *rag.System

	// memory is set when the in-process vector backend is active, so Close
	// can persist a snapshot.
	memory *knowledge.MemoryStore
}

// Setup runs migrations, connects the pool, initializes Genkit and builds
// the knowledge store and answering pipeline.
func Setup(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := db.Migrate(cfg.PostgresURL()); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	pool, err := newPool(ctx, cfg)
	if err != nil {
		return nil, err
	}

	g := genkit.Init(ctx, genkit.WithPlugins(&googlegenai.GoogleAI{}))
	if g == nil {
		pool.Close()
		return nil, fmt.Errorf("initializing genkit failed")
	}
	embedder := googlegenai.GoogleAIEmbedder(g, cfg.EmbedderModel)

	a := &App{
		Config:   cfg,
		Logger:   logger,
		Pool:     pool,
		Genkit:   g,
		Embedder: embedder,
		Portal:   portal.NewStore(pool, logger),
	}

	switch cfg.VectorBackend {
	case config.VectorBackendMemory:
		mem := knowledge.NewMemoryStore(embedder, cfg.EmbedderDimension, logger)
		if err := mem.Load(cfg.SnapshotDir, cfg.CollectionName); err != nil {
			pool.Close()
			return nil, fmt.Errorf("loading index snapshot: %w", err)
		}
		a.memory = mem
		a.Knowledge = mem
	default:
		a.Knowledge = knowledge.NewPostgresStore(pool, embedder, cfg.EmbedderDimension, logger)
	}

	a.Generator = rag.NewGeminiGenerator(g, cfg.ModelName, logger)
	a.RAG = rag.NewSystem(a.Knowledge, a.Generator, cfg.CollectionName, cfg.ModelName, logger)

	return a, nil
}

// Close persists the in-process index snapshot (if active) and releases the
// connection pool.
func (a *App) Close() error {
	var firstErr error
	if a.memory != nil {
		if err := a.memory.Save(a.Config.SnapshotDir, a.Config.CollectionName); err != nil {
			firstErr = fmt.Errorf("saving index snapshot: %w", err)
		}
	}
	if a.Pool != nil {
		a.Pool.Close()
	}
	return firstErr
}

func newPool(ctx context.Context, cfg *config.Config) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("parsing connection config: %w", err)
	}

	poolCfg.MaxConns = 10
	poolCfg.MinConns = 2
	poolCfg.MaxConnLifetime = 30 * time.Minute
	poolCfg.MaxConnIdleTime = 5 * time.Minute
	poolCfg.HealthCheckPeriod = 1 * time.Minute

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return pool, nil
}
