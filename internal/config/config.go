// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.citizenport/config.yaml or ./config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - AI: generation model, embedder model and dimension
//   - Storage: PostgreSQL connection, vector backend selection
//   - RAG: chunking and retrieval parameters
//   - Server: listen address, CORS, rate limiting, admin session secret
//   - Scraper: ingestion fetch behaviour
//
// Sensitive values (password, session secret) are masked in MarshalJSON and
// String. Validation runs at load time and fails fast with sentinel errors
// checkable via errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required provider API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates the generation model name is invalid.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidEmbedderModel indicates the embedder model is invalid.
	ErrInvalidEmbedderModel = errors.New("invalid embedder model")

	// ErrInvalidEmbedderDimension indicates the embedder dimension is out of range.
	ErrInvalidEmbedderDimension = errors.New("invalid embedder dimension")

	// ErrInvalidVectorBackend indicates an unknown vector store backend.
	ErrInvalidVectorBackend = errors.New("invalid vector backend")

	// ErrInvalidChunking indicates chunk size/overlap violate size > overlap >= 0.
	ErrInvalidChunking = errors.New("invalid chunking configuration")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrMissingSessionSecret indicates the admin session secret is not set.
	ErrMissingSessionSecret = errors.New("missing admin session secret")

	// ErrInvalidSessionSecret indicates the admin session secret is too short.
	ErrInvalidSessionSecret = errors.New("invalid admin session secret")
)

// Vector store backend identifiers used in Config.VectorBackend.
const (
	VectorBackendPostgres = "postgres"
	VectorBackendMemory   = "memory"
)

const (
	// DefaultEmbedderModel is the default Gemini embedder model.
	// gemini-embedding-001 supports truncation to 768 dimensions via
	// OutputDimensionality; our pgvector schema uses 768.
	DefaultEmbedderModel = "gemini-embedding-001"

	// DefaultEmbedderDimension matches the documents table vector column.
	DefaultEmbedderDimension = 768

	// MinSessionSecretLen is the minimum admin session secret length in bytes.
	MinSessionSecretLen = 32
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// AI generation configuration
	ModelName string `mapstructure:"model_name" json:"model_name"` // e.g. "googleai/gemini-2.5-flash"

	// RAG configuration
	EmbedderModel     string `mapstructure:"embedder_model" json:"embedder_model"`
	EmbedderDimension int    `mapstructure:"embedder_dimension" json:"embedder_dimension"`
	VectorBackend     string `mapstructure:"vector_backend" json:"vector_backend"` // "postgres" (default) or "memory"
	CollectionName    string `mapstructure:"collection_name" json:"collection_name"`
	SnapshotDir       string `mapstructure:"snapshot_dir" json:"snapshot_dir"` // memory backend persistence
	ChunkSize         int    `mapstructure:"chunk_size" json:"chunk_size"`
	ChunkOverlap      int    `mapstructure:"chunk_overlap" json:"chunk_overlap"`
	TopK              int    `mapstructure:"top_k" json:"top_k"`

	// Storage configuration
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Server configuration
	ListenAddr    string   `mapstructure:"listen_addr" json:"listen_addr"`
	CORSOrigins   []string `mapstructure:"cors_origins" json:"cors_origins"`
	TrustProxy    bool     `mapstructure:"trust_proxy" json:"trust_proxy"`
	RateBurst     int      `mapstructure:"rate_burst" json:"rate_burst"`
	SessionSecret string   `mapstructure:"session_secret" json:"session_secret"` // SENSITIVE: masked in MarshalJSON
	AdminUser     string   `mapstructure:"admin_user" json:"admin_user"`
	AdminPassword string   `mapstructure:"admin_password" json:"admin_password"` // SENSITIVE: masked in MarshalJSON

	// Scraper configuration
	Scraper ScraperConfig `mapstructure:"scraper" json:"scraper"`
}

// ScraperConfig holds ingestion fetch configuration.
type ScraperConfig struct {
	// UserAgent sent with scrape requests.
	UserAgent string `mapstructure:"user_agent" json:"user_agent"`

	// TimeoutMS is the per-request timeout in milliseconds (default: 30000).
	TimeoutMS int `mapstructure:"timeout_ms" json:"timeout_ms"`

	// Parallelism is max concurrent requests per domain (default: 2).
	Parallelism int `mapstructure:"parallelism" json:"parallelism"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".citizenport")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(configDir)
	viper.AddConfigPath(".")

	setDefaults()
	bindEnvVariables()

	if err := viper.ReadInConfig(); err != nil {
		// Missing config file is fine, defaults apply
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults() {
	// AI defaults
	viper.SetDefault("model_name", "googleai/gemini-2.5-flash")

	// RAG defaults
	viper.SetDefault("embedder_model", DefaultEmbedderModel)
	viper.SetDefault("embedder_dimension", DefaultEmbedderDimension)
	viper.SetDefault("vector_backend", VectorBackendPostgres)
	viper.SetDefault("collection_name", "citizen_portal_docs")
	viper.SetDefault("snapshot_dir", "data")
	viper.SetDefault("chunk_size", 500)
	viper.SetDefault("chunk_overlap", 50)
	viper.SetDefault("top_k", 5)

	// PostgreSQL defaults (matching docker-compose.yml)
	viper.SetDefault("postgres_host", "localhost")
	viper.SetDefault("postgres_port", 5432)
	viper.SetDefault("postgres_user", "citizenport")
	viper.SetDefault("postgres_password", "citizenport_dev_password")
	viper.SetDefault("postgres_db_name", "citizen_portal")
	viper.SetDefault("postgres_ssl_mode", "disable")

	// Server defaults
	viper.SetDefault("listen_addr", ":8080")
	viper.SetDefault("cors_origins", []string{"http://localhost:5173"})
	viper.SetDefault("trust_proxy", false)
	viper.SetDefault("rate_burst", 60)
	viper.SetDefault("admin_user", "admin")

	// Scraper defaults
	viper.SetDefault("scraper.user_agent", "citizenport-ingest/1.0")
	viper.SetDefault("scraper.timeout_ms", 30000)
	viper.SetDefault("scraper.parallelism", 2)
}

// bindEnvVariables binds sensitive environment variables explicitly.
// GEMINI_API_KEY is read directly by Genkit, not via Viper; its presence is
// checked in ValidateServe.
func bindEnvVariables() {
	mustBind := func(key, envVar string) {
		if err := viper.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("session_secret", "ADMIN_SESSION_SECRET")
	mustBind("admin_user", "ADMIN_USER")
	mustBind("admin_password", "ADMIN_PWD")
	mustBind("cors_origins", "PORTAL_CORS_ORIGINS")
	mustBind("trust_proxy", "PORTAL_TRUST_PROXY")
	mustBind("listen_addr", "PORTAL_LISTEN_ADDR")
	mustBind("model_name", "PORTAL_MODEL_NAME")
	mustBind("vector_backend", "PORTAL_VECTOR_BACKEND")
}

// parseDatabaseURL overrides the PostgreSQL fields from DATABASE_URL when set.
// Takes highest priority so hosted environments need a single variable.
func (c *Config) parseDatabaseURL() error {
	raw := os.Getenv("DATABASE_URL")
	if raw == "" {
		return nil
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}
	if u.Scheme != "postgres" && u.Scheme != "postgresql" {
		return fmt.Errorf("unsupported scheme %q", u.Scheme)
	}

	c.PostgresHost = u.Hostname()
	if p := u.Port(); p != "" {
		if _, err := fmt.Sscanf(p, "%d", &c.PostgresPort); err != nil {
			return fmt.Errorf("invalid port %q: %w", p, err)
		}
	}
	if u.User != nil {
		c.PostgresUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.PostgresPassword = pw
		}
	}
	if db := u.Path; len(db) > 1 {
		c.PostgresDBName = db[1:]
	}
	if mode := u.Query().Get("sslmode"); mode != "" {
		c.PostgresSSLMode = mode
	}
	return nil
}

// PostgresURL returns the postgres:// URL form of the connection settings.
func (c *Config) PostgresURL() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.PostgresUser, c.PostgresPassword),
		Host:   fmt.Sprintf("%s:%d", c.PostgresHost, c.PostgresPort),
		Path:   "/" + c.PostgresDBName,
	}
	q := url.Values{}
	q.Set("sslmode", c.PostgresSSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret string for safe logging. Secrets of 8 bytes or
// fewer are fully masked to prevent substring matching; longer secrets keep
// the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + "<" + maskedValue + ">" + s[len(s)-2:]
}

// MarshalJSON implements json.Marshaler with explicit sensitive field masking.
// When adding new sensitive fields, update this method.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config
	a := alias(c)
	a.PostgresPassword = maskSecret(a.PostgresPassword)
	a.SessionSecret = maskSecret(a.SessionSecret)
	a.AdminPassword = maskSecret(a.AdminPassword)
	data, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

// String implements Stringer to prevent accidental printing of secrets.
func (c Config) String() string {
	data, err := c.MarshalJSON()
	if err != nil {
		return fmt.Sprintf("Config{error: %v}", err)
	}
	return string(data)
}
