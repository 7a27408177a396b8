package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/jfimbett/student-questions/internal/api/handlers"
	cache "github.com/jfimbett/student-questions/internal/cache/redis"
	"github.com/jfimbett/student-questions/internal/llm"
	"github.com/jfimbett/student-questions/internal/metrics"
	"github.com/jfimbett/student-questions/internal/middleware/ratelimit"
	"github.com/jfimbett/student-questions/internal/middleware/security"
	"github.com/jfimbett/student-questions/internal/middleware/validation"
	"github.com/jfimbett/student-questions/internal/query"
	"github.com/jfimbett/student-questions/internal/store/sqlite"
	"github.com/jfimbett/student-questions/pkg/config"
	appLogger "github.com/jfimbett/student-questions/pkg/logger"
	"github.com/jfimbett/student-questions/pkg/retry"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting student questions API server")

	metrics.Init()

	store, err := sqlite.NewClient(cfg.Store.Path)
	if err != nil {
		appLogger.Fatal("Failed to create response store", zap.Error(err))
	}
	defer store.Close()

	err = store.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var counter *cache.Client
	if cfg.Redis.Enabled {
		retryCfg := retry.DefaultConfig()
		retryCfg.Logger = appLogger.GetLogger()
		err = retry.Do(context.Background(), retryCfg, func() error {
			var connErr error
			counter, connErr = cache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
			return connErr
		})
		if err != nil {
			appLogger.Warn("Redis unavailable, session counters disabled", zap.Error(err))
			counter = nil
		} else {
			defer counter.Close()
		}
	}

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
		cfg.LLM.TimeoutSec,
	)

	engine := query.NewEngine(store, llmClient)
	hub := handlers.NewWatchHub()

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{
		MaxRequestsPerMinute: cfg.RateLimit.MaxRequestsPerMinute,
		Logger:               appLogger.GetLogger(),
	})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{
		Logger: appLogger.GetLogger(),
	}))

	responseHandler := handlers.NewResponseHandler(store, counter, hub)
	sessionHandler := handlers.NewSessionHandler(store, counter)
	queryHandler := handlers.NewQueryHandler(engine, counter)
	watchHandler := handlers.NewWatchHandler(hub)

	api := app.Group("/api/v1")

	api.Post("/responses", responseHandler.SubmitResponse)
	api.Get("/sessions/:date", sessionHandler.GetSession)
	api.Get("/sessions/:date/responses", responseHandler.ListResponses)
	api.Post("/sessions/:date/query", queryHandler.HandleQuery)
	api.Get("/sessions/:date/query/history", sessionHandler.GetQueryHistory)

	api.Use("/sessions/:date/watch", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	api.Get("/sessions/:date/watch", websocket.New(watchHandler.HandleConnection))

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
