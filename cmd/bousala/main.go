package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bousala/bousala/internal/analytics"
	"github.com/bousala/bousala/internal/app"
	"github.com/bousala/bousala/internal/auth"
	"github.com/bousala/bousala/internal/cashflow"
	"github.com/bousala/bousala/internal/insights"
	"github.com/bousala/bousala/internal/manufacturing"
	"github.com/bousala/bousala/internal/masterdata"
	"github.com/bousala/bousala/internal/masterdata/accounts"
	"github.com/bousala/bousala/internal/masterdata/clients"
	"github.com/bousala/bousala/internal/masterdata/employees"
	"github.com/bousala/bousala/internal/masterdata/products"
	"github.com/bousala/bousala/internal/masterdata/suppliers"
	"github.com/bousala/bousala/internal/platform/cache"
	"github.com/bousala/bousala/internal/platform/db"
	"github.com/bousala/bousala/internal/purchasing"
	"github.com/bousala/bousala/internal/sales"
	"github.com/bousala/bousala/internal/statements"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	reportCache := analytics.NewCache(redisClient, cfg.AnalyticsCacheTTL)
	analyticsService := analytics.NewService(analytics.NewRepository(pool), reportCache, cfg.LowStockThreshold)

	authService := auth.NewService(auth.NewRepository(pool), redisClient, cfg.SessionTTL)
	authHandler := auth.NewHandler(logger, authService)

	productsService := products.NewService(products.NewRepository(pool))
	productsHandler := products.NewHandler(logger, productsService)
	masterDataHandler := masterdata.NewHandler(logger,
		clients.NewService(clients.NewRepository(pool)),
		suppliers.NewService(suppliers.NewRepository(pool)),
		employees.NewService(employees.NewRepository(pool)),
		accounts.NewService(accounts.NewRepository(pool)),
	)

	salesService := sales.NewService(sales.NewRepository(pool), analyticsService)
	salesHandler := sales.NewHandler(logger, salesService)

	purchasingService := purchasing.NewService(purchasing.NewRepository(pool), analyticsService)
	purchasingHandler := purchasing.NewHandler(logger, purchasingService)

	manufacturingService := manufacturing.NewService(manufacturing.NewRepository(pool), analyticsService)
	manufacturingHandler := manufacturing.NewHandler(logger, manufacturingService)

	cashflowService := cashflow.NewService(cashflow.NewRepository(pool), analyticsService)
	cashflowHandler := cashflow.NewHandler(logger, cashflowService)

	statementsHandler := statements.NewHandler(logger, statements.NewService(statements.NewRepository(pool)))
	analyticsHandler := analytics.NewHandler(logger, analyticsService)

	var generator insights.Generator
	if cfg.AIBaseURL != "" {
		generator = insights.NewClient(cfg.AIBaseURL, cfg.AIAPIKey, cfg.AIModel)
	}
	insightsHandler := insights.NewHandler(insights.NewService(logger, generator, analyticsService))

	router := app.NewRouter(app.RouterParams{
		Logger:               logger,
		Config:               cfg,
		AuthService:          authService,
		AuthHandler:          authHandler,
		ProductsHandler:      productsHandler,
		MasterDataHandler:    masterDataHandler,
		SalesHandler:         salesHandler,
		PurchasingHandler:    purchasingHandler,
		ManufacturingHandler: manufacturingHandler,
		CashflowHandler:      cashflowHandler,
		StatementsHandler:    statementsHandler,
		AnalyticsHandler:     analyticsHandler,
		InsightsHandler:      insightsHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", slog.String("addr", cfg.AppAddr))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown", slog.Any("error", err))
		}
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("serve", slog.Any("error", err))
			os.Exit(1)
		}
	}
}
