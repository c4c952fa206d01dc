// Package app assembles the store, generator and studio from configuration.
package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"genr8-backend/internal/archive"
	"genr8-backend/internal/config"
	"genr8-backend/internal/database"
	"genr8-backend/internal/deepai"
	"genr8-backend/internal/entity"
	"genr8-backend/internal/generation"
	"genr8-backend/internal/handlers"
	"genr8-backend/internal/kv"
	"genr8-backend/internal/metrics"
	"genr8-backend/internal/middleware"
	"genr8-backend/internal/services"
	"genr8-backend/internal/supabase"
)

type App struct {
	Config     *config.Config
	Log        zerolog.Logger
	Metrics    *metrics.Metrics
	Backend    kv.Backend
	Store      *entity.Store
	DeepAI     *deepai.Client
	Dispatcher *generation.Dispatcher
	Studio     *services.Studio
}

// New opens the configured backends. reg receives the application metrics;
// pass prometheus.DefaultRegisterer to expose them on /metrics.
func New(ctx context.Context, cfg *config.Config, log zerolog.Logger, reg prometheus.Registerer) (*App, error) {
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	backend, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return nil, err
	}

	m := metrics.New(reg)
	store := entity.NewStore(backend,
		entity.WithPrefix(cfg.StorePrefix),
		entity.WithLogger(log),
	)

	client := deepai.NewClient(cfg.DeepAIBaseURL, cfg.DeepAIAPIKey, cfg.GenerationTimeout,
		deepai.WithBackoffs(Backoffs(cfg.ExportRetries)...))

	dispatcher := generation.NewDispatcher(client, entity.NewID,
		generation.WithPlaceholderBaseURL(cfg.PlaceholderBaseURL),
		generation.WithMetrics(m),
		generation.WithLogger(log),
	)

	opts := []services.Option{
		services.WithMetrics(m),
		services.WithLogger(log),
	}
	arch, err := OpenArchive(ctx, cfg, log)
	if err != nil {
		backend.Close()
		return nil, err
	}
	if arch != nil {
		opts = append(opts, services.WithArchive(arch, client))
	}

	log.Info().
		Str("store_backend", cfg.StoreBackend).
		Str("archive_backend", cfg.ArchiveBackend).
		Bool("deepai_configured", client.Configured()).
		Msg("application initialized")

	return &App{
		Config:     cfg,
		Log:        log,
		Metrics:    m,
		Backend:    backend,
		Store:      store,
		DeepAI:     client,
		Dispatcher: dispatcher,
		Studio:     services.NewStudio(store, dispatcher, opts...),
	}, nil
}

// OpenBackend connects the key-value backend named by STORE_BACKEND. SQL
// backends are migrated before they are returned.
func OpenBackend(ctx context.Context, cfg *config.Config, log zerolog.Logger) (kv.Backend, error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return kv.NewMemoryBackend(), nil
	case config.StoreFile:
		backend, err := kv.NewFileBackend(cfg.StoreDir)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.StoreSQLite, config.StorePostgres, config.StoreMySQL:
		dialect, err := database.ParseDialect(cfg.StoreBackend)
		if err != nil {
			return nil, err
		}
		dsn := cfg.DatabaseURL
		if dialect == database.DialectSQLite {
			dsn = cfg.SQLiteDSN()
			// sqlite creates the database file but not its directory
			if cfg.DatabaseURL == "" {
				if err := os.MkdirAll(cfg.StoreDir, 0o755); err != nil {
					return nil, fmt.Errorf("failed to create store directory: %w", err)
				}
			}
		}
		backend, err := kv.OpenSQL(ctx, dialect, dsn, log)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.StoreRedis:
		backend, err := kv.NewRedisBackend(ctx, cfg.RedisURL)
		if err != nil {
			return nil, err
		}
		return backend, nil
	case config.StoreSupabase:
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey)
		if err != nil {
			return nil, err
		}
		return supabase.NewRESTBackend(client), nil
	default:
		return nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

// OpenArchive returns nil when exports are not archived.
func OpenArchive(ctx context.Context, cfg *config.Config, log zerolog.Logger) (archive.Archiver, error) {
	switch cfg.ArchiveBackend {
	case "", config.ArchiveNone:
		return nil, nil
	case config.ArchiveLocal:
		local, err := archive.NewLocalArchive(cfg.ArchiveDir, cfg.ArchiveBaseURL, log)
		if err != nil {
			return nil, err
		}
		return local, nil
	case config.ArchiveS3:
		s3, err := archive.NewS3Archive(ctx, cfg.S3Bucket, cfg.S3Region, cfg.AWSAccessKeyID, cfg.AWSSecretAccessKey)
		if err != nil {
			return nil, err
		}
		return s3, nil
	case config.ArchiveSupabase:
		return supabase.NewStorageArchive(cfg.SupabaseURL, cfg.SupabaseKey, cfg.SupabaseStorageBucket), nil
	default:
		return nil, fmt.Errorf("unknown archive backend %q", cfg.ArchiveBackend)
	}
}

// Backoffs doubles from one second, once per retry.
func Backoffs(retries int) []time.Duration {
	out := make([]time.Duration, 0, max(retries, 0))
	wait := time.Second
	for i := 0; i < retries; i++ {
		out = append(out, wait)
		wait *= 2
	}
	return out
}

// Router builds the HTTP surface with logging, metrics and optional JWT auth.
func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(a.Log))
	router.Use(middleware.RequestMetrics(a.Metrics))

	if a.Config.ArchiveBackend == config.ArchiveLocal {
		// the local archive writes key exports/<id>.<format> under ArchiveDir
		router.StaticFS("/"+services.ExportPrefix, gin.Dir(filepath.Join(a.Config.ArchiveDir, services.ExportPrefix), false))
	}

	handlers.RegisterRoutes(router, handlers.RouterDeps{
		Store:      a.Store,
		Dispatcher: a.Dispatcher,
		Studio:     a.Studio,
		Backend:    a.Config.StoreBackend,
		Middleware: []gin.HandlerFunc{middleware.AuthMiddleware(a.Config.AuthJWTSecret)},
	})
	return router
}

func (a *App) Close() error {
	if a.Backend == nil {
		return nil
	}
	if err := a.Backend.Close(); err != nil {
		return fmt.Errorf("failed to close store backend: %w", err)
	}
	return nil
}

// ErrNotSQL is returned by Migrate for backends without a schema.
var ErrNotSQL = errors.New("store backend has no schema to migrate")

// Migrate applies pending migrations for the configured SQL backend and
// closes the connection.
func Migrate(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	switch cfg.StoreBackend {
	case config.StoreSQLite, config.StorePostgres, config.StoreMySQL:
	default:
		return fmt.Errorf("%w: %s", ErrNotSQL, cfg.StoreBackend)
	}
	backend, err := OpenBackend(ctx, cfg, log)
	if err != nil {
		return err
	}
	return backend.Close()
}
