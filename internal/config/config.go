package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
	StoreRedis    = "redis"
	StoreSupabase = "supabase"

	ArchiveNone     = "none"
	ArchiveLocal    = "local"
	ArchiveS3       = "s3"
	ArchiveSupabase = "supabase"
)

type Config struct {
	// Generation
	DeepAIAPIKey       string        `env:"DEEPAI_API_KEY"`
	DeepAIBaseURL      string        `env:"DEEPAI_BASE_URL" envDefault:"https://api.deepai.org"`
	GenerationTimeout  time.Duration `env:"GENERATION_TIMEOUT" envDefault:"60s"`
	PlaceholderBaseURL string        `env:"PLACEHOLDER_BASE_URL" envDefault:"https://picsum.photos/512/512"`

	// Entity store
	StoreBackend string `env:"STORE_BACKEND" envDefault:"file"`
	StorePrefix  string `env:"STORE_PREFIX" envDefault:"genr8_"`
	StoreDir     string `env:"STORE_DIR" envDefault:"./data"`
	DatabaseURL  string `env:"DATABASE_URL"`
	RedisURL     string `env:"REDIS_URL"`

	// Supabase
	SupabaseURL           string `env:"SUPABASE_URL"`
	SupabaseKey           string `env:"SUPABASE_KEY"`
	SupabaseStorageBucket string `env:"SUPABASE_STORAGE_BUCKET" envDefault:"genr8-exports"`

	// Export archive
	ArchiveBackend     string `env:"ARCHIVE_BACKEND" envDefault:"none"`
	ArchiveDir         string `env:"ARCHIVE_DIR" envDefault:"./exports"`
	ArchiveBaseURL     string `env:"ARCHIVE_BASE_URL" envDefault:"http://localhost:8080"`
	ExportRetries      int    `env:"EXPORT_DOWNLOAD_RETRIES" envDefault:"3"`
	S3Bucket           string `env:"S3_BUCKET"`
	S3Region           string `env:"S3_REGION" envDefault:"us-east-1"`
	AWSAccessKeyID     string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY"`

	// Server
	AuthJWTSecret string `env:"AUTH_JWT_SECRET"`
	Port          string `env:"PORT" envDefault:"8080"`
	Environment   string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel      string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat     string `env:"LOG_FORMAT" envDefault:"json"`
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	// a missing .env is normal outside local development
	_ = godotenv.Load()
	return Parse()
}

func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	cfg.StoreBackend = strings.ToLower(strings.TrimSpace(cfg.StoreBackend))
	cfg.ArchiveBackend = strings.ToLower(strings.TrimSpace(cfg.ArchiveBackend))
	cfg.DeepAIAPIKey = strings.TrimSpace(cfg.DeepAIAPIKey)
	if cfg.StoreBackend == "" {
		cfg.StoreBackend = StoreFile
	}
	if cfg.ArchiveBackend == "" {
		cfg.ArchiveBackend = ArchiveNone
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreBackend {
	case StoreMemory, StoreFile, StoreSQLite:
	case StorePostgres, StoreMySQL:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for STORE_BACKEND=%s", c.StoreBackend)
		}
	case StoreRedis:
		if c.RedisURL == "" {
			return errors.New("REDIS_URL is required for STORE_BACKEND=redis")
		}
	case StoreSupabase:
		if err := c.requireSupabase(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown STORE_BACKEND %q", c.StoreBackend)
	}

	switch c.ArchiveBackend {
	case "", ArchiveNone, ArchiveLocal:
	case ArchiveS3:
		if c.S3Bucket == "" {
			return errors.New("S3_BUCKET is required for ARCHIVE_BACKEND=s3")
		}
	case ArchiveSupabase:
		if err := c.requireSupabase(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown ARCHIVE_BACKEND %q", c.ArchiveBackend)
	}

	if c.GenerationTimeout <= 0 {
		return errors.New("GENERATION_TIMEOUT must be positive")
	}
	return nil
}

func (c *Config) requireSupabase() error {
	if c.SupabaseURL == "" {
		return errors.New("SUPABASE_URL is required")
	}
	if c.SupabaseKey == "" {
		return errors.New("SUPABASE_KEY is required")
	}
	return nil
}

// Warnings lists settings that are accepted but degrade behaviour.
func (c *Config) Warnings() []string {
	var out []string
	if c.DeepAIAPIKey == "" {
		out = append(out, "DEEPAI_API_KEY is not set, every generation returns a placeholder image")
	}
	if c.StoreBackend == StoreMemory {
		out = append(out, "STORE_BACKEND=memory keeps nothing across restarts")
	}
	return out
}

// SQLiteDSN is the database used for STORE_BACKEND=sqlite when DATABASE_URL is empty.
func (c *Config) SQLiteDSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return strings.TrimSuffix(c.StoreDir, "/") + "/genr8.db"
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}
