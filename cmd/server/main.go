package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tradezone/marketplace/internal/application/commands"
	"github.com/tradezone/marketplace/internal/application/use_cases"
	"github.com/tradezone/marketplace/internal/config"
	"github.com/tradezone/marketplace/internal/domain/stock"
	"github.com/tradezone/marketplace/internal/infrastructure/http/handlers"
	"github.com/tradezone/marketplace/internal/infrastructure/http/server"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/infrastructure/notification"
	"github.com/tradezone/marketplace/internal/infrastructure/payment"
	"github.com/tradezone/marketplace/internal/infrastructure/persistence/mongodb"
	"github.com/tradezone/marketplace/internal/infrastructure/persistence/postgres"
	"github.com/tradezone/marketplace/internal/infrastructure/persistence/redis"
	"github.com/tradezone/marketplace/internal/infrastructure/scheduler"
	"github.com/tradezone/marketplace/internal/pkg/clock"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

func main() {
	configPath := flag.String("config", "config.json", "Path to configuration file")
	flag.Parse()

	log := logger.NewLogger()
	log.Info("Starting Marketplace Service")

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal("Failed to load configuration", "error", err)
	}

	sqlDB, err := monitoring.OpenInstrumented(cfg.Database.GetDSN())
	if err != nil {
		log.Fatal("Failed to open database", "error", err)
	}
	if err := sqlDB.Ping(); err != nil {
		log.Fatal("Failed to connect to database", "error", err)
	}
	sqlDB.SetMaxOpenConns(50)
	sqlDB.SetMaxIdleConns(25)
	sqlDB.SetConnMaxLifetime(time.Hour)
	defer sqlDB.Close()

	if err := postgres.RunMigrations(cfg.Database, log); err != nil {
		log.Fatal("Failed to run migrations", "error", err)
	}

	mongoConn, err := mongodb.NewConnection(context.Background(), cfg.Mongo)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", "error", err)
	}
	defer mongoConn.Close(context.Background())

	redisConn, err := redis.NewConnection(cfg.Redis)
	if err != nil {
		log.Fatal("Failed to connect to Redis", "error", err)
	}
	defer redisConn.Close()

	dbMetricsCollector := monitoring.NewDBMetricsCollector(sqlDB)
	dbMetricsCollector.StartCollecting(context.Background(), 30*time.Second)

	pgConn := postgres.NewConnectionFromDB(sqlDB)
	productRepo := postgres.NewProductRepository(pgConn)
	userRepo := postgres.NewUserRepository(pgConn)
	cartRepo := mongodb.NewCartRepository(mongoConn)
	cache := redis.NewCache(redisConn, log)

	ledger := stock.NewLedger(productRepo)
	clk := clock.NewRealClock()

	paymentProvider := payment.NewProvider(cfg.Payment, log)
	notifier := notification.NewNotifier(cfg.Notification, log)

	cartCommands := commands.NewCartCommands(cartRepo, productRepo, userRepo, cache, log)
	checkoutUC := use_cases.NewCheckoutUseCase(
		cartRepo, productRepo, userRepo, ledger,
		paymentProvider, notifier, clk, log,
		func(ctx context.Context, userID int64) error {
			_, err := cartCommands.CreateNewCart(ctx, userID)
			return err
		},
	)
	salesUC := use_cases.NewSalesUseCase(cartRepo, productRepo, userRepo, ledger, log)
	cleanupUC := use_cases.NewCleanupUseCase(cartRepo, ledger, clk, log)

	httpServer := server.NewServer(cfg.Server.Host, cfg.Server.Port, server.Deps{
		Health:   handlers.NewHealthHandler(sqlDB, mongoConn.Collection(), redisConn.GetClient(), log),
		Cart:     handlers.NewCartHandler(cartCommands, log),
		Checkout: handlers.NewCheckoutHandler(checkoutUC, log),
		Sales:    handlers.NewSalesHandler(salesUC, log),
		Admin:    handlers.NewAdminHandler(checkoutUC, cleanupUC, cfg.Sweeper.GracePeriod(), log),
	}, log)

	sweeper := scheduler.NewCartSweeper(cleanupUC, cache, cfg.Sweeper.Interval(), cfg.Sweeper.GracePeriod(), log)

	serverCtx, serverStopCtx := context.WithCancel(context.Background())

	go sweeper.Start(serverCtx)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigChan
		shutdownCtx, cancel := context.WithTimeout(serverCtx, 30*time.Second)
		defer cancel()

		log.Info("Shutting down server...")
		sweeper.Stop()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("Server shutdown error", "error", err)
		}

		serverStopCtx()
	}()

	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("Server failed", "error", err)
	}

	<-serverCtx.Done()
	log.Info("Server stopped")
}
