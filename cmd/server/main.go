package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	receivingapp "github.com/retailcore/backend/internal/application/receiving"
	stockapp "github.com/retailcore/backend/internal/application/stock"
	transferapp "github.com/retailcore/backend/internal/application/transfer"
	"github.com/retailcore/backend/internal/infrastructure/config"
	"github.com/retailcore/backend/internal/infrastructure/event"
	"github.com/retailcore/backend/internal/infrastructure/logger"
	"github.com/retailcore/backend/internal/infrastructure/persistence"
	"github.com/retailcore/backend/internal/interfaces/http/handler"
	"github.com/retailcore/backend/internal/interfaces/http/middleware"
	"github.com/retailcore/backend/internal/interfaces/http/router"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting RetailCore Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	if err := persistence.AutoMigrate(db.DB); err != nil {
		log.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Initialize event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Initialize application services around a shared transaction scope
	scope := persistence.NewGormTransactionScope(db.DB)
	ledgerService := stockapp.NewLedgerService(scope)
	ledgerService.SetEventPublisher(eventBus)
	adjustmentService := stockapp.NewAdjustmentService(scope, ledgerService)
	receivingService := receivingapp.NewReceivingService(scope, ledgerService, log)
	transferService := transferapp.NewTransferService(scope, ledgerService, log)
	transferService.SetEventPublisher(eventBus)

	// Completed transfers with shrinkage get flagged for review
	discrepancyHandler := transferapp.NewDiscrepancyHandler(log)
	eventBus.Subscribe(discrepancyHandler)
	log.Info("Event handlers registered",
		zap.Strings("transfer_completed_events", discrepancyHandler.EventTypes()),
	)

	// Initialize HTTP handlers
	stockHandler := handler.NewStockHandler(ledgerService)
	adjustmentHandler := handler.NewAdjustmentHandler(adjustmentService)
	transferHandler := handler.NewTransferHandler(transferService)
	purchaseHandler := handler.NewPurchaseHandler(receivingService)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	middleware.SetupValidator()

	engine := gin.New()
	engine.Use(logger.GinMiddleware(log))
	engine.Use(logger.Recovery(log))

	engine.GET("/health", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(stockHandler).
		Register(adjustmentHandler).
		Register(transferHandler).
		Register(purchaseHandler)
	r.Setup()

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	log.Info("Server exited")
}
