// Package server assembles the application from its configuration: database,
// object store, cache, classifier, services and the HTTP API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Luisrodriguezm11/identificador-plantas/internal/logging"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/observability"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/auth"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/blob"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/cache"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/classifier"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/config"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/repositories/repomanager"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/rest"
	"github.com/Luisrodriguezm11/identificador-plantas/internal/server/services"
	"github.com/redis/go-redis/v9"
)

const serviceName = "identificador-plantas"

// Version is set at build time with -ldflags "-X ...server.Version=...".
var Version = "dev"

type App struct {
	config          *config.Config
	logger          logging.Logger
	db              *sql.DB
	redis           *redis.Client
	shutdownTracing func(context.Context) error

	users    *services.UserService
	analyses *services.AnalysisService
	catalog  *services.CatalogService
	storage  *services.StorageService
}

// NewLogger builds the process logger for the configured environment.
func NewLogger(c *config.Config) logging.Logger {
	level := slog.LevelInfo
	if c.Env == "development" {
		level = slog.LevelDebug
	}
	return logging.New(os.Stdout, c.Env, level)
}

// NewApp connects every backing service and builds the service layer.
// Redis is optional: without it the catalog is read straight from the
// database and rate limits are not enforced.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    serviceName,
		ServiceVersion: Version,
		Environment:    c.Env,
		Exporter:       c.TracingExporter,
		OTLPEndpoint:   c.OTLPEndpoint,
		SamplerRatio:   1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	db, err := repomanager.Open(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := blob.NewStore(ctx, blob.StoreConfig{
		Backend:   c.BlobBackend,
		Endpoint:  c.S3BaseEndpoint,
		Region:    c.S3Region,
		AccessKey: c.S3RootUser,
		SecretKey: c.S3RootPassword,
		Bucket:    c.S3Bucket,
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("blob store init error: %w", err)
	}

	var rdb *redis.Client
	if c.RedisURL != "" {
		rdb, err = cache.NewClient(ctx, c.RedisURL)
		if err != nil {
			logger.Warn(ctx, "redis unavailable, running without cache", "error", err)
			rdb = nil
		}
	}

	resolver := blob.NewResolver(c.BlobURLMarker)
	cleaner := blob.NewCleaner(store, resolver, c.BlobTimeout, logger)

	gateway := classifier.NewRoboflowClient(classifier.Config{
		BaseURL: c.ClassifierBaseURL,
		APIKey:  c.ClassifierAPIKey,
		ModelID: c.ClassifierModelID,
		Timeout: c.ClassifierTimeout,
	})

	return &App{
		config:          c,
		logger:          logger,
		db:              db,
		redis:           rdb,
		shutdownTracing: shutdownTracing,
		users:           services.NewUserService(db, rm, cleaner, c, logger),
		analyses:        services.NewAnalysisService(db, rm, gateway, cleaner, logger),
		catalog:         services.NewCatalogService(db, rm, cache.New(rdb, "catalog:"), c.CatalogCacheTTL, logger),
		storage:         services.NewStorageService(store, resolver, cleaner, c.BlobURLBase, logger),
	}, nil
}

func (app *App) Users() *services.UserService {
	return app.users
}

func (app *App) Analyses() *services.AnalysisService {
	return app.analyses
}

// Close releases the connections opened by NewApp and flushes spans.
func (app *App) Close(ctx context.Context) {
	if err := app.shutdownTracing(ctx); err != nil {
		app.logger.Error(ctx, "tracing shutdown error", "error", err)
	}
	if app.redis != nil {
		app.redis.Close()
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}
}

// InitSignalHandler cancels ctx on SIGINT, SIGTERM or SIGQUIT.
func InitSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the HTTP API until ctx is cancelled or a signal arrives.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "version", Version, "env", app.config.Env)

	InitSignalHandler(cancelFunc)

	s := rest.NewServer(app.config.HTTPAddress, app.config.AllowedOrigins, app.logger,
		auth.NewVerifier(app.config.SecretKey),
		rest.Deps{
			DB:       app.db,
			Redis:    app.redis,
			Users:    app.users,
			Analyses: app.analyses,
			Catalog:  app.catalog,
			Storage:  app.storage,
		})

	if err := s.Run(ctx); err != nil {
		app.logger.Error(ctx, err.Error())
		return err
	}

	return nil
}
