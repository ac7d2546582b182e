package config

import (
	"fmt"
	"os"
	"strings"
)

// Validate performs fail-fast validation on the configuration.
// Returns the first violated constraint wrapped around its sentinel error so
// callers can match with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	if strings.TrimSpace(c.ModelName) == "" {
		return fmt.Errorf("%w: model_name must not be empty", ErrInvalidModelName)
	}

	if strings.TrimSpace(c.EmbedderModel) == "" {
		return fmt.Errorf("%w: embedder_model must not be empty", ErrInvalidEmbedderModel)
	}

	if c.EmbedderDimension < 1 || c.EmbedderDimension > 8192 {
		return fmt.Errorf("%w: embedder_dimension must be in [1, 8192], got %d",
			ErrInvalidEmbedderDimension, c.EmbedderDimension)
	}

	switch c.VectorBackend {
	case VectorBackendPostgres, VectorBackendMemory:
	default:
		return fmt.Errorf("%w: %q (must be %q or %q)",
			ErrInvalidVectorBackend, c.VectorBackend, VectorBackendPostgres, VectorBackendMemory)
	}

	if c.ChunkSize <= 0 || c.ChunkOverlap < 0 || c.ChunkOverlap >= c.ChunkSize {
		return fmt.Errorf("%w: require chunk_size > chunk_overlap >= 0, got size=%d overlap=%d",
			ErrInvalidChunking, c.ChunkSize, c.ChunkOverlap)
	}

	if strings.TrimSpace(c.PostgresHost) == "" {
		return fmt.Errorf("%w: postgres_host must not be empty", ErrInvalidPostgresHost)
	}

	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: postgres_port must be in [1, 65535], got %d",
			ErrInvalidPostgresPort, c.PostgresPort)
	}

	if strings.TrimSpace(c.PostgresDBName) == "" {
		return fmt.Errorf("%w: postgres_db_name must not be empty", ErrInvalidPostgresDBName)
	}

	return nil
}

// ValidateServe performs additional validation required before starting the
// HTTP server: the provider API key and the admin session secret must be set.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}

	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return fmt.Errorf("%w: GEMINI_API_KEY (or GOOGLE_API_KEY) is required", ErrMissingAPIKey)
	}

	if c.SessionSecret == "" {
		return fmt.Errorf("%w: set ADMIN_SESSION_SECRET", ErrMissingSessionSecret)
	}
	if len(c.SessionSecret) < MinSessionSecretLen {
		return fmt.Errorf("%w: must be at least %d bytes, got %d",
			ErrInvalidSessionSecret, MinSessionSecretLen, len(c.SessionSecret))
	}

	return nil
}
