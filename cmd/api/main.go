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
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/portalgenie/backend/internal/api/handlers"
	rediscache "github.com/portalgenie/backend/internal/cache/redis"
	"github.com/portalgenie/backend/internal/embedding"
	"github.com/portalgenie/backend/internal/extract"
	"github.com/portalgenie/backend/internal/intent"
	"github.com/portalgenie/backend/internal/metrics"
	"github.com/portalgenie/backend/internal/middleware/ratelimit"
	"github.com/portalgenie/backend/internal/middleware/security"
	"github.com/portalgenie/backend/internal/middleware/validation"
	"github.com/portalgenie/backend/internal/pos"
	"github.com/portalgenie/backend/internal/query"
	"github.com/portalgenie/backend/internal/ranking"
	"github.com/portalgenie/backend/internal/storage/catalog"
	"github.com/portalgenie/backend/internal/storage/feedback"
	"github.com/portalgenie/backend/internal/storage/sqlite"
	"github.com/portalgenie/backend/internal/vector"
	"github.com/portalgenie/backend/pkg/config"
	appLogger "github.com/portalgenie/backend/pkg/logger"
	"github.com/portalgenie/backend/pkg/retry"
)

func main() {
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

	appLogger.Info("Starting Portal Genie API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	if err := sqliteClient.InitSchema(); err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	var cacheClient *rediscache.Client
	if cfg.Redis.Enabled {
		cacheClient, err = rediscache.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Redis unavailable, running without cache", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	cacheTTL := time.Duration(cfg.Redis.TTLSec) * time.Second

	reportStore, err := catalog.LoadReports(cfg.Datasets.ReportsPath)
	if err != nil {
		appLogger.Fatal("Failed to load report catalog", zap.Error(err))
	}

	posStore, err := catalog.LoadPOS(cfg.Datasets.POSPath)
	if err != nil {
		appLogger.Fatal("Failed to load POS catalog", zap.Error(err))
	}

	feedbackStore := feedback.Load(cfg.Datasets.FeedbackPath)

	embedClient := embedding.NewClient(cfg.Embedding.APIKey, cfg.Embedding.Model, cfg.Embedding.TimeoutSec, cacheClient, cacheTTL)

	startupRetry := retry.DefaultConfig()
	startupRetry.Logger = appLogger.GetLogger()

	// Embed the report corpus and build the in-memory index.
	index := vector.NewIndex(cfg.Embedding.Dim)
	reports := reportStore.All()
	texts := make([]string, len(reports))
	for i := range reports {
		texts[i] = catalog.CorpusText(&reports[i])
	}

	ctx := context.Background()
	var corpusVectors [][]float32
	err = retry.Do(ctx, startupRetry, func() error {
		var embedErr error
		corpusVectors, embedErr = embedClient.EmbedBatch(ctx, texts)
		return embedErr
	})
	if err != nil {
		appLogger.Fatal("Failed to embed report corpus", zap.Error(err))
	}
	for i := range reports {
		if err := index.Add(reports[i].ReportID, corpusVectors[i]); err != nil {
			appLogger.Fatal("Failed to index report embedding", zap.Error(err))
		}
	}
	appLogger.Info("Report corpus indexed", zap.Int("reports", index.Size()))

	var classifier *intent.Classifier
	err = retry.Do(ctx, startupRetry, func() error {
		var buildErr error
		classifier, buildErr = intent.NewClassifier(ctx, embedClient, cfg.Intent.ConfidenceThreshold, cfg.Intent.KeywordBonus)
		return buildErr
	})
	if err != nil {
		appLogger.Fatal("Failed to build intent classifier", zap.Error(err))
	}

	filterExtractor := extract.NewFilterExtractor(cfg.Filters.LocationKeywords)

	rankingEngine := ranking.NewEngine(reportStore, embedClient, index, feedbackStore, filterExtractor, ranking.Config{
		DefaultTopK:    cfg.Ranking.DefaultTopK,
		BoostThreshold: cfg.Ranking.BoostThreshold,
		FeedbackWeight: cfg.Ranking.FeedbackWeight,
	})

	posService := pos.NewService(posStore)

	queryEngine := query.NewEngine(classifier, rankingEngine, posService, sqliteClient, cacheClient, cacheTTL)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		AllowMethods: "GET, POST, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{
		IsDevelopment: cfg.Logging.Level == "debug",
	}))

	rateLimiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer rateLimiter.Stop()

	searchHandler := handlers.NewSearchHandler(queryEngine)
	assistantHandler := handlers.NewAssistantHandler(queryEngine)
	feedbackHandler := handlers.NewFeedbackHandler(feedbackStore, sqliteClient, queryEngine)
	wsHandler := handlers.NewWebSocketHandler(queryEngine)

	api := app.Group("/api/v1")
	api.Use(rateLimiter.Middleware())
	api.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	api.Post("/search", searchHandler.HandleSearch)
	api.Post("/assistant", assistantHandler.HandleAssistant)
	api.Post("/feedback", feedbackHandler.HandleFeedback)
	api.Get("/history", searchHandler.GetHistory)

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	api.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ready",
			"reports": reportStore.Len(),
		})
	})

	app.Get("/metrics", metrics.MetricsHandler())

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/assistant", websocket.New(wsHandler.HandleConnection))

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
