package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-stock-watchlist/internal/watcher/config"
	delivery "golang-stock-watchlist/internal/watcher/delivery/http"
	"golang-stock-watchlist/internal/watcher/repository"
	"golang-stock-watchlist/internal/watcher/service"
	"golang-stock-watchlist/pkg/logger"
	"golang-stock-watchlist/pkg/postgres"
	"golang-stock-watchlist/pkg/redis"
	"golang-stock-watchlist/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
)

var configPath string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the watcher service",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	// Create a context that is canceled on interrupt signals
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	appLogger.Info("Starting Watcher Service", logger.Field("name", cfg.App.Name))

	// Initialize database
	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	// Initialize Redis
	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	// Initialize repositories
	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	dailyPriceRepo := repository.NewDailyPriceRepository(db.DB)
	runRepo := repository.NewDailyCheckRunRepository(db.DB)
	kiwoomRepo := repository.NewKiwoomRepository(cfg, appLogger)
	directory, err := repository.NewStockDirectory(appLogger, cfg.Watcher.StockListPaths...)
	if err != nil {
		appLogger.Fatal("Failed to load stock directory", logger.ErrorField(err))
	}

	// Initialize telegram notifier. Missing credentials disable delivery.
	var telegramClient telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		chatIDs, err := telegram.ParseChatIDs(cfg.Telegram.ChatIDs)
		if err != nil {
			appLogger.Fatal("Invalid telegram chat IDs", logger.ErrorField(err))
		}
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, chatIDs)
		if err != nil {
			appLogger.Fatal("Failed to initialize telegram client", logger.ErrorField(err))
		}
	} else {
		appLogger.Warn("Telegram bot token not set, notifications disabled")
	}
	notifier := service.NewTelegramNotifier(appLogger, telegramClient)

	// Initialize services
	dailyCheckSvc := service.NewDailyCheckService(appLogger, watchlistRepo, kiwoomRepo, notifier, redisClient, cfg.Watcher.TargetRate, cfg.Watcher.WatchDays)
	watchlistSvc := service.NewWatchlistService(appLogger, watchlistRepo, dailyPriceRepo, kiwoomRepo, directory, notifier, redisClient, cfg.Watcher.TargetRate, cfg.Watcher.WatchDays)
	schedulerSvc, err := service.NewSchedulerService(appLogger, dailyCheckSvc, runRepo, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}

	// Start scheduler
	if err := schedulerSvc.Start(); err != nil {
		appLogger.Fatal("Failed to start scheduler", logger.ErrorField(err))
	}
	defer schedulerSvc.Stop()

	// Initialize Echo server
	e := echo.New()
	e.HideBanner = true

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	// Initialize handlers and routes
	apiV1 := e.Group("/api/v1")

	watchlistHandler := delivery.NewWatchlistHandler(watchlistSvc, appLogger)
	watchlistGroup := apiV1.Group("/watchlist")
	watchlistHandler.RegisterRoutes(watchlistGroup)

	dashboardHandler := delivery.NewDashboardHandler(watchlistSvc, runRepo, appLogger)
	dashboardHandler.RegisterRoutes(apiV1)

	// Start server
	go func() {
		addr := fmt.Sprintf(":%d", cfg.API.Port)
		appLogger.Info("HTTP server starting", logger.Field("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			appLogger.Error("HTTP server failed to start", logger.ErrorField(err))
			stop() // trigger shutdown
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	appLogger.Info("Shutting down server...")

	// Gracefully shutdown the server
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		appLogger.Fatal("Server forced to shutdown", logger.ErrorField(err))
	}

	appLogger.Info("Server exiting")
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Runs a single daily check immediately and exits",
	Run:   runOnce,
}

func runOnce(cmd *cobra.Command, args []string) {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = appLogger.Sync() }()

	postgresCfg := postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}
	db, err := postgres.NewDB(postgresCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize database", logger.ErrorField(err))
	}
	if sqlDB, err := db.DB.DB(); err == nil {
		defer sqlDB.Close()
	}

	redisCfg := redis.Config{
		Host:     cfg.Redis.Host,
		Port:     cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	}
	redisClient, err := redis.NewClient(redisCfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize Redis", logger.ErrorField(err))
	}
	defer redisClient.Close()

	watchlistRepo := repository.NewWatchlistRepository(db.DB)
	runRepo := repository.NewDailyCheckRunRepository(db.DB)
	kiwoomRepo := repository.NewKiwoomRepository(cfg, appLogger)

	var telegramClient telegram.Notifier
	if cfg.Telegram.BotToken != "" {
		chatIDs, err := telegram.ParseChatIDs(cfg.Telegram.ChatIDs)
		if err != nil {
			appLogger.Fatal("Invalid telegram chat IDs", logger.ErrorField(err))
		}
		telegramClient, err = telegram.NewClient(cfg.Telegram.BotToken, chatIDs)
		if err != nil {
			appLogger.Fatal("Failed to initialize telegram client", logger.ErrorField(err))
		}
	}
	notifier := service.NewTelegramNotifier(appLogger, telegramClient)

	dailyCheckSvc := service.NewDailyCheckService(appLogger, watchlistRepo, kiwoomRepo, notifier, redisClient, cfg.Watcher.TargetRate, cfg.Watcher.WatchDays)
	schedulerSvc, err := service.NewSchedulerService(appLogger, dailyCheckSvc, runRepo, cfg)
	if err != nil {
		appLogger.Fatal("Failed to initialize scheduler", logger.ErrorField(err))
	}

	schedulerSvc.RunOnce(context.Background())
}

func main() {
	rootCmd := &cobra.Command{Use: "watcher-service"}

	serveCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-watcher.yaml", "Path to the configuration file")
	runCmd.Flags().StringVarP(&configPath, "config", "c", "configs/config-watcher.yaml", "Path to the configuration file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(runCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing watcher-service CLI: %s\n", err)
		os.Exit(1)
	}
}
