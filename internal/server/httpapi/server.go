// Package httpapi exposes the session lifecycle, identity administration and
// upload endpoints over HTTP using fiber.
package httpapi

import (
	"context"
	"strings"
	"time"

	"github.com/dmitrijs2005/rms/internal/logging"
	"github.com/dmitrijs2005/rms/internal/server/metrics"
	"github.com/dmitrijs2005/rms/internal/server/services"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberrecover "github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/oklog/ulid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const shutdownTimeout = 10 * time.Second

// Pinger reports database reachability for the readiness probe.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Options struct {
	Addr           string
	AllowedOrigins []string
	CookieSecure   bool
	RefreshTTL     time.Duration
}

type Server struct {
	app     *fiber.App
	opts    Options
	auth    *services.AuthService
	users   *services.UserService
	uploads *services.UploadService
	db      Pinger
	metrics *metrics.Metrics
	logger  logging.Logger
}

func NewServer(opts Options, as *services.AuthService, us *services.UserService, ups *services.UploadService, db Pinger, m *metrics.Metrics, l logging.Logger) *Server {
	s := &Server{
		opts:    opts,
		auth:    as,
		users:   us,
		uploads: ups,
		db:      db,
		metrics: m,
		logger:  l.With("module", "http_server"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "rms",
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.routes()

	return s
}

// App returns the underlying fiber application.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) routes() {
	s.app.Use(requestid.New(requestid.Config{
		Generator: func() string { return ulid.Make().String() },
	}))
	s.app.Use(s.observe)
	s.app.Use(fiberrecover.New())
	s.app.Use(cors.New(cors.Config{
		AllowOrigins:     strings.Join(s.opts.AllowedOrigins, ","),
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Content-Type,Authorization,X-Requested-With",
		AllowCredentials: len(s.opts.AllowedOrigins) > 0,
	}))

	s.app.Get("/healthz", s.healthz)
	s.app.Get("/readyz", s.readyz)
	s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))

	a := s.app.Group("/auth")
	a.Post("/user", s.register)
	a.Post("/login", s.login)
	a.Get("/refresh", s.refresh)
	a.Get("/login/persist", s.persistentLogin)
	a.Post("/logout", s.logout)
	a.Post("/reset", s.guard, s.resetPassword)
	a.Post("/admin/reset-password", s.guard, s.adminResetPassword)

	u := s.app.Group("/users", s.guard)
	u.Get("/", s.listUsers)
	u.Put("/:userId", s.updateUser)
	u.Patch("/:userId/disable", s.disableUser)

	up := s.app.Group("/uploads", s.guard)
	up.Post("/get-url", s.uploadURL)
	up.Post("/delete", s.deleteUpload)
}

// Run serves until ctx is cancelled, then shuts the app down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		s.logger.Info(ctx, "Starting HTTP server", "address", s.opts.Addr)
		errCh <- s.app.Listen(s.opts.Addr)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info(ctx, "Stopping HTTP server...")
		return s.app.ShutdownWithTimeout(shutdownTimeout)
	case err := <-errCh:
		return err
	}
}
