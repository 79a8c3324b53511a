package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	catalogapp "github.com/charro/storefront/internal/application/catalog"
	identityapp "github.com/charro/storefront/internal/application/identity"
	orderapp "github.com/charro/storefront/internal/application/order"
	reportapp "github.com/charro/storefront/internal/application/report"
	"github.com/charro/storefront/internal/infrastructure/auth"
	"github.com/charro/storefront/internal/infrastructure/config"
	"github.com/charro/storefront/internal/infrastructure/logger"
	"github.com/charro/storefront/internal/infrastructure/persistence"
	"github.com/charro/storefront/internal/infrastructure/storage"
	"github.com/charro/storefront/internal/infrastructure/telemetry"
	"github.com/charro/storefront/internal/interfaces/http/handler"
	"github.com/charro/storefront/internal/interfaces/http/router"
	"go.uber.org/zap"
)

//	@title			Storefront API
//	@version		1.0
//	@description	Catalog, accounts and orders for the storefront
//	@BasePath		/api/v1

//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization

var version = "dev"

const shutdownTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(logger.FromAppConfig(cfg.Log))
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	if err := run(cfg, log); err != nil {
		log.Fatal("Server stopped with error", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger) error {
	if err := cfg.RequireJWTSecret(); err != nil {
		return err
	}

	log.Info("Starting storefront API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
		zap.String("version", version),
	)

	tp, err := telemetry.NewTracerProvider(context.Background(), cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down tracing", zap.Error(err))
		}
	}()

	mp, err := telemetry.NewMeterProvider(context.Background(), cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := mp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down metrics", zap.Error(err))
		}
	}()

	lp, err := telemetry.NewLoggerProvider(context.Background(), cfg.Telemetry, version, log)
	if err != nil {
		return err
	}
	defer func() {
		if err := lp.Shutdown(context.Background()); err != nil {
			log.Error("Error shutting down log export", zap.Error(err))
		}
	}()
	log = logger.Tee(log, lp.Core())

	db, err := persistence.NewDatabase(&cfg.Database, log, cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected")

	if err := telemetry.RegisterDBTracing(db.DB, telemetry.DBTracingConfig{
		Enabled:       cfg.Telemetry.Enabled && cfg.Telemetry.DBTracing,
		DBSystem:      "postgresql",
		SlowThreshold: cfg.Telemetry.SlowQueryThreshold,
		WithVariables: !cfg.IsProduction(),
	}, log); err != nil {
		return err
	}

	if err := telemetry.RegisterDBMetrics(db.DB, telemetry.DBMetricsConfig{
		Enabled:       cfg.Telemetry.Enabled,
		SlowThreshold: cfg.Telemetry.SlowQueryThreshold,
		Meter:         mp.Meter("storefront/db"),
	}, log); err != nil {
		return err
	}

	if !cfg.IsProduction() {
		if err := db.AutoMigrate(); err != nil {
			return err
		}
	}

	images, err := storage.NewImageStorage(&cfg.Storage, log)
	if err != nil {
		return err
	}

	productRepo := persistence.NewGormProductRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)

	tokens := auth.NewTokenService(cfg.JWT)

	productService := catalogapp.NewProductService(productRepo, images, cfg.Storage.PublicBaseURL, log)
	authService := identityapp.NewAuthService(userRepo, tokens, log)
	userService := identityapp.NewUserService(userRepo, log)
	orderService := orderapp.NewOrderService(orderRepo, productRepo, cfg.Checkout.TaxRate, log)
	dashboardService := reportapp.NewDashboardService(orderRepo, userRepo, productRepo, cfg.Checkout.LowStockThreshold, log)

	engine, stop, err := router.NewEngine(
		router.Dependencies{
			Config: cfg,
			Logger: log,
			Tokens: tokens,
			Users:  userRepo,
			Meter:  mp.Meter("storefront/http"),
		},
		router.Handlers{
			Product: handler.NewProductHandler(productService),
			Auth:    handler.NewAuthHandler(authService),
			Order:   handler.NewOrderHandler(orderService),
			Admin:   handler.NewAdminHandler(dashboardService, productService, userService, orderService),
			System:  handler.NewSystemHandler(cfg.App.Name, version, db),
		},
	)
	if err != nil {
		return err
	}
	defer stop()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		log.Info("Shutting down server", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return err
	}

	log.Info("Server exited gracefully")
	return nil
}
