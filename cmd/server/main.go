package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/amirasaad/fxpay/infra/initializer"
	"github.com/amirasaad/fxpay/pkg/app"
	"github.com/amirasaad/fxpay/pkg/config"
	"github.com/amirasaad/fxpay/webapi"
	log "github.com/charmbracelet/log"
)

const shutdownTimeout = 10 * time.Second

// @title FX Payment API
// @version 1.0.0
// @description Exchange payment intents, wallet funding and beneficiaries
// @host localhost:3000
// @BasePath /
//
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description "Enter your Bearer token in the format: Bearer {token}"
func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load(config.GetEnv("ENV_FILE", ".env"))
	if err != nil {
		return fmt.Errorf("failed to load application configuration: %w", err)
	}

	// Initialize all dependencies
	deps, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize dependencies: %w", err)
	}
	logger := deps.Logger

	application, err := app.New(deps, cfg)
	if err != nil {
		return fmt.Errorf("failed to build application: %w", err)
	}
	fiberApp := webapi.SetupApp(application)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			"env", cfg.Env,
			"address", addr,
			"scheme", cfg.Server.Scheme,
		)
		errCh <- fiberApp.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("Graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
