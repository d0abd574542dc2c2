// Package server wires the report-sharing backend together: configuration,
// database and migrations, services, and the HTTP and gRPC servers with
// graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/auth"
	"github.com/dmitrijs2005/rms/internal/server/config"
	"github.com/dmitrijs2005/rms/internal/server/httpapi"
	"github.com/dmitrijs2005/rms/internal/server/metrics"
	"github.com/dmitrijs2005/rms/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/rms/internal/server/services"
	"github.com/dmitrijs2005/rms/internal/server/storage"

	gs "github.com/dmitrijs2005/rms/internal/server/grpc"
)

// Seams for tests.
var (
	openDB           = repomanager.OpenDB
	newObjectStorage = func(ctx context.Context, c storage.S3Config) (storage.Gateway, error) {
		return storage.NewS3Gateway(ctx, c)
	}
)

type App struct {
	config     *config.Config
	logger     logging.Logger
	db         *sql.DB
	httpServer *httpapi.Server
	grpcServer *gs.GRPCServer
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	logger := logging.New(c.LogBackend, os.Stdout)

	db, err := openDB(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	gw, err := newObjectStorage(ctx, storage.S3Config{
		AccessKeyID:     c.S3AccessKeyID,
		SecretAccessKey: c.S3SecretAccessKey,
		Region:          c.S3Region,
		Bucket:          c.S3Bucket,
		BaseEndpoint:    c.S3BaseEndpoint,
	})
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	issuer := auth.NewTokenIssuer(auth.IssuerConfig{
		AccessSecret:       c.AccessTokenSecret,
		RefreshSecret:      c.RefreshTokenSecret,
		AccessTTL:          c.AccessTokenValidityDuration,
		RefreshedAccessTTL: c.RefreshedAccessTokenValidityDuration,
		RefreshTTL:         c.RefreshTokenValidityDuration,
	})
	hasher := auth.NewPasswordHasher(c.BcryptCost)

	as := services.NewAuthService(db, rm, issuer, hasher, logger)
	us := services.NewUserService(db, rm, hasher, logger)
	ups := services.NewUploadService(db, rm, gw, c.UploadURLValidityDuration, logger)

	httpServer := httpapi.NewServer(httpapi.Options{
		Addr:           c.HTTPAddr,
		AllowedOrigins: c.AllowedOrigins,
		CookieSecure:   c.CookieSecure,
		RefreshTTL:     issuer.RefreshTTL(),
	}, as, us, ups, db, metrics.New(), logger)

	grpcServer := gs.NewGRPCServer(c.GRPCAddr, as, logger)

	return &App{
		config:     c,
		logger:     logger,
		db:         db,
		httpServer: httpServer,
		grpcServer: grpcServer,
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	// Channel to catch OS signals.
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// serve runs one server; a failure stops the whole app.
func (app *App) serve(ctx context.Context, cancelFunc context.CancelFunc, name string, run func(context.Context) error) {
	if err := run(ctx); err != nil {
		app.logger.Error(ctx, "server stopped with error", "server", name, "error", err)
		cancelFunc()
	}
}

// Run serves HTTP and gRPC until ctx is cancelled or a signal arrives, then
// waits for both servers to stop and closes the database.
func (app *App) Run(ctx context.Context) {

	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "http", app.httpServer.Run)
	}()
	go func() {
		defer wg.Done()
		app.serve(ctx, cancelFunc, "grpc", app.grpcServer.Run)
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, "db close error", "error", err)
	}

	app.logger.Info(ctx, "App stopped")
}
