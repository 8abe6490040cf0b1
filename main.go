package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	"pos-api/config"
	"pos-api/controllers"
	"pos-api/logger"
	"pos-api/middlewares"
	"pos-api/repositories"
	"pos-api/routes"
	"pos-api/seeders"
	"pos-api/services"
	"pos-api/utils"
)

func main() {
	cfg := config.Load()
	log := logger.New(logger.Options{Service: "pos-api", Env: cfg.AppEnv, Level: cfg.LogLevel})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// connect db
	db, err := config.ConnectDatabase(cfg)
	if err != nil {
		log.Error("database connection failed", "error", err)
		os.Exit(1)
	}
	rdb := config.ConnectRedis(ctx, cfg.RedisAddr)

	store := repositories.NewStore(db)
	cache := services.NewReportCache(rdb, cfg.ReportCacheTTL)
	tokens := utils.NewTokenManager(cfg.JWTSecret, cfg.JWTTTL)

	authService := services.NewAuthService(store.Users, tokens)
	catalog := services.NewCatalogService(store, cache, log)
	checkout := services.NewCheckoutService(store, cache, log)
	reports := services.NewReportService(store, cache, cfg.LowStockThreshold, log)

	var notifier utils.Notifier
	if cfg.FonnteToken != "" {
		notifier = utils.NewFonnteNotifier(cfg.FonnteToken)
	}
	alerts := services.NewStockAlertService(store.Products, notifier, cfg.AlertPhone, cfg.LowStockThreshold, log)

	// seed data
	if cfg.Seed {
		if err := seeders.Seed(ctx, store, checkout, log); err != nil {
			log.Error("seeding failed", "error", err)
			os.Exit(1)
		}
	}

	// init router
	if cfg.AppEnv != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestID(), middlewares.RequestLogger(log))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middlewares.RequestIDHeader},
		ExposeHeaders:    []string{middlewares.RequestIDHeader},
		AllowCredentials: true,
	}))

	routes.RegisterRoutes(r, routes.Handlers{
		Auth:         controllers.NewAuthController(authService),
		Products:     controllers.NewProductController(catalog),
		Transactions: controllers.NewTransactionController(checkout),
		Reports:      controllers.NewReportController(reports),
		Gate:         authService,
		DB:           store,
	})

	scheduler := cron.New(cron.WithSeconds())
	if _, err := alerts.Schedule(scheduler, cfg.LowStockCron, time.Minute); err != nil {
		log.Error("invalid LOW_STOCK_CRON, stock alerts disabled", "error", err, "spec", cfg.LowStockCron)
	} else {
		scheduler.Start()
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		log.Info("http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "error", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	select {
	case <-scheduler.Stop().Done():
	case <-shutdownCtx.Done():
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	if rdb != nil {
		_ = rdb.Close()
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Info("server stopped")
}
