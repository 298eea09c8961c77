// Gridpulse is the energy dashboard backend daemon.
//
// It serves user accounts, energy record CRUD, CSV-backed analytics,
// email alerts and the AI insight endpoint over HTTP.
//
// Configuration is loaded from an optional YAML file and environment
// variables. See internal/config for the full key list.
//
// Usage:
//
//	# Start with defaults (MONGO_URI is required)
//	MONGO_URI=mongodb://localhost:27017 gridpulse
//
//	# Configure via file plus environment
//	SERVER_PORT=9000 gridpulse --config gridpulse.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fyrsmithlabs/gridpulse/internal/alert"
	"github.com/fyrsmithlabs/gridpulse/internal/api"
	"github.com/fyrsmithlabs/gridpulse/internal/auth"
	"github.com/fyrsmithlabs/gridpulse/internal/config"
	"github.com/fyrsmithlabs/gridpulse/internal/energy"
	"github.com/fyrsmithlabs/gridpulse/internal/globalenergy"
	"github.com/fyrsmithlabs/gridpulse/internal/insight"
	"github.com/fyrsmithlabs/gridpulse/internal/logging"
	"github.com/fyrsmithlabs/gridpulse/internal/mail"
	"github.com/fyrsmithlabs/gridpulse/internal/mongodb"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("gridpulse\nVersion:    %s\nCommit:     %s\nBuild Date: %s\n",
			version, gitCommit, buildDate)
		return
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Printf("Received signal %v, shutting down gracefully...", sig)
		cancel()
	}()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}

	log.Println("Server shutdown complete")
}

// run starts the daemon and blocks until the context is cancelled.
//
// Initialization order: config, logger, Mongo, static dataset, business
// services, HTTP server. Every adapter gets its dependencies injected
// here; nothing reaches for globals.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting gridpulse",
		zap.String("version", version),
		zap.Int("port", cfg.Server.Port),
		zap.Duration("shutdown_timeout", cfg.Server.ShutdownTimeout))

	mongoClient, err := mongodb.Connect(ctx, cfg.Mongo, logger)
	if err != nil {
		return fmt.Errorf("failed to connect to mongodb: %w", err)
	}
	defer func() {
		if err := mongoClient.Close(context.Background()); err != nil {
			logger.Warn("mongodb close failed", zap.Error(err))
		}
	}()
	db := mongoClient.Database()

	sourcePath := filepath.Join(cfg.Data.Dir, cfg.Data.SourceFile)
	aggregatePath := filepath.Join(cfg.Data.Dir, cfg.Data.AggregateFile)

	// The analytics dataset is optional at startup: without the file the
	// global endpoints serve an empty table instead of failing the boot.
	dataset, err := globalenergy.Load(sourcePath)
	if err != nil {
		logger.Warn("analytics dataset unavailable",
			zap.String("path", sourcePath),
			zap.Error(err))
		dataset = &globalenergy.Dataset{}
	} else {
		logger.Info("analytics dataset loaded",
			zap.String("path", sourcePath),
			zap.Int("rows", dataset.Len()))
	}

	secret := cfg.Auth.Secret
	if secret == "" {
		secret = uuid.New().String()
		logger.Warn("auth.secret not set, using a random per-process secret; sessions will not survive restarts")
	}
	tokens := auth.NewTokenIssuer([]byte(secret), cfg.Auth.TokenTTL)
	authSvc := auth.NewService(auth.NewMongoUserStore(db), tokens, logger)

	energyStore := energy.NewStore(db, logger)

	completer, err := insight.NewCompleter(cfg.LLM)
	if err != nil {
		return fmt.Errorf("failed to create llm client: %w", err)
	}
	insightSvc := insight.NewService(sourcePath, aggregatePath, completer, logger)

	mailer := mail.NewSMTPMailer(cfg.Mail, logger)
	alertSvc := alert.NewService(alert.NewMongoStore(db), mailer, logger)

	srv, err := api.NewServer(api.Deps{
		Auth:    authSvc,
		Tokens:  tokens,
		Energy:  energyStore,
		Global:  dataset,
		Insight: insightSvc,
		Alerts:  alertSvc,
	}, logger, api.Config{
		Host:            cfg.Server.Host,
		Port:            cfg.Server.Port,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
		SeedSource:      sourcePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info("Server configured",
		zap.String("health_endpoint", fmt.Sprintf("http://localhost:%d/health", cfg.Server.Port)),
		zap.String("metrics_endpoint", "/metrics"))

	return srv.Start(ctx)
}
