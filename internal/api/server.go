// Package api provides the HTTP API for gridpulse.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/alert"
	"github.com/fyrsmithlabs/gridpulse/internal/auth"
	"github.com/fyrsmithlabs/gridpulse/internal/energy"
	"github.com/fyrsmithlabs/gridpulse/internal/globalenergy"
)

// AuthService handles accounts and sessions.
type AuthService interface {
	Register(ctx context.Context, email, firstName, lastName, password string) (*auth.User, error)
	Login(ctx context.Context, email, password string) (*auth.Session, error)
	EditUser(ctx context.Context, p auth.EditParams) error
}

// TokenParser validates bearer tokens for protected routes.
type TokenParser interface {
	Parse(token string) (string, error)
}

// EnergyStore handles CRUD over the energy collection.
type EnergyStore interface {
	List(ctx context.Context, f energy.ListFilter, page, limit int) (energy.ListResult, error)
	Create(ctx context.Context, r energy.Record) (string, error)
	Update(ctx context.Context, id string, r energy.Record) error
	Delete(ctx context.Context, id string) error
	Seed(ctx context.Context, records []energy.Record) (int, error)
}

// GlobalDataset serves the static per-country/year analytics table.
type GlobalDataset interface {
	Query(q globalenergy.Query) []globalenergy.Row
	FilterOptions() globalenergy.FilterOptions
}

// InsightService aggregates the dataset and answers questions about it.
type InsightService interface {
	GenerateAggregate(ctx context.Context) (int, error)
	Ask(ctx context.Context, question string) (string, error)
}

// AlertService persists alerts and sends their notification emails.
type AlertService interface {
	Create(ctx context.Context, p alert.CreateParams) error
}

// Config holds HTTP server configuration.
type Config struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	// SeedSource is the CSV the seed endpoint imports from.
	SeedSource string
}

// Deps collects the adapters the server dispatches to.
type Deps struct {
	Auth    AuthService
	Tokens  TokenParser
	Energy  EnergyStore
	Global  GlobalDataset
	Insight InsightService
	Alerts  AlertService
}

// Server provides HTTP endpoints for gridpulse.
type Server struct {
	echo   *echo.Echo
	deps   Deps
	logger *zap.Logger
	config Config
}

// NewServer creates the HTTP server and registers all routes.
func NewServer(deps Deps, logger *zap.Logger, cfg Config) (*Server, error) {
	if deps.Auth == nil || deps.Tokens == nil || deps.Energy == nil ||
		deps.Global == nil || deps.Insight == nil || deps.Alerts == nil {
		return nil, fmt.Errorf("all adapters are required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(metricsMiddleware())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			duration := time.Since(start)

			logger.Info("http request",
				zap.String("method", c.Request().Method),
				zap.String("uri", c.Request().RequestURI),
				zap.Int("status", c.Response().Status),
				zap.Duration("duration", duration),
				zap.String("request_id", c.Response().Header().Get(echo.HeaderXRequestID)),
			)

			return err
		}
	})

	s := &Server{
		echo:   e,
		deps:   deps,
		logger: logger,
		config: cfg,
	}

	s.registerRoutes()

	return s, nil
}

// registerRoutes sets up the HTTP endpoints. Mutating routes require a
// bearer token; reads and the login flow stay open.
func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/register", s.handleRegister)
	s.echo.POST("/login", s.handleLogin)

	s.echo.GET("/energy", s.handleListEnergy)
	s.echo.GET("/energy/global", s.handleGlobalQuery)
	s.echo.GET("/energy/global/filters", s.handleGlobalFilters)
	s.echo.GET("/generate-predictions", s.handleGeneratePredictions)
	s.echo.POST("/ai-insight", s.handleInsight)

	protected := s.echo.Group("", s.requireAuth)
	protected.PUT("/edit-user", s.handleEditUser)
	protected.POST("/energy", s.handleCreateEnergy)
	protected.PUT("/energy/:id", s.handleUpdateEnergy)
	protected.DELETE("/energy/:id", s.handleDeleteEnergy)
	protected.POST("/energy/seed", s.handleSeedEnergy)
	protected.POST("/alerts", s.handleCreateAlert)
}

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok"})
}

// Echo exposes the underlying router for tests.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}

// Start runs the server until ctx is cancelled, then shuts down
// gracefully within the configured timeout.
func (s *Server) Start(ctx context.Context) error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.logger.Info("starting http server", zap.String("addr", addr))

	errCh := make(chan error, 1)
	go func() {
		if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.config.ShutdownTimeout)
	defer cancel()
	return s.echo.Shutdown(shutdownCtx)
}
