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
	"go.uber.org/zap"

	"areetampo/circular-economy/internal/config"
	"areetampo/circular-economy/internal/handlers"
	"areetampo/circular-economy/internal/logger"
	"areetampo/circular-economy/internal/repositories"
	"areetampo/circular-economy/internal/services"
	"areetampo/circular-economy/internal/telemetry"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer func() { _ = log.Sync() }()
	log.Info("✅ Config loaded successfully", zap.String("env", cfg.Server.Env))

	ctx := context.Background()

	shutdownTracing, err := telemetry.InitTracing(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPEndpoint)
	if err != nil {
		log.Fatal("❌ Failed to initialize tracing", zap.Error(err))
	}

	// Initialize database
	db, err := config.InitDatabase(cfg, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize database", zap.Error(err))
	}

	assessmentRepo := repositories.NewAssessmentRepository(db)
	log.Info("✅ Repositories initialized successfully")

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatal("❌ Failed to create upload directory", zap.Error(err))
	}
	pdfParser := services.NewPDFParserService()

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(ctx, cfg.Gemini, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Gemini AI", zap.Error(err))
	}
	log.Info("✅ Gemini AI initialized successfully", zap.String("embedding_model", cfg.Gemini.EmbeddingModel))

	var embedder services.Embedder = geminiService
	rdb, err := config.InitRedis(ctx, cfg.Redis, log)
	if err != nil {
		log.Warn("⚠️ Redis unavailable, embedding cache disabled", zap.Error(err))
	}
	if rdb != nil {
		embedder = services.NewCachedEmbedder(geminiService, rdb, cfg.Gemini.EmbeddingModel, cfg.Redis.CacheTTL, log)
	}

	var reasoner services.ReasoningService = geminiService
	if cfg.Generator.Provider == config.ProviderAnthropic {
		reasoner, err = services.NewAnthropicService(cfg.Anthropic, log)
		if err != nil {
			log.Fatal("❌ Failed to initialize Anthropic", zap.Error(err))
		}
	}
	log.Info("✅ Reasoning service selected", zap.String("provider", cfg.Generator.Provider))

	// Initialize Qdrant
	qdrantService, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection, log)
	if err != nil {
		log.Fatal("❌ Failed to initialize Qdrant", zap.Error(err))
	}

	checkCtx, cancel := context.WithTimeout(ctx, cfg.Pipeline.VectorTimeout)
	if err := qdrantService.CheckCollection(checkCtx); err != nil {
		// retrieval degrades to no matches, so the API can still serve
		log.Warn("⚠️ Qdrant collection check failed", zap.Error(err))
	}
	cancel()

	pipeline := services.NewPipeline(
		services.NewInputValidator(cfg.Validation.MinSubmissionLength, cfg.Validation.StrictRange),
		services.NewRetriever(embedder, qdrantService, cfg.Pipeline.EmbeddingTimeout, cfg.Pipeline.VectorTimeout, log),
		services.NewAuditGenerator(reasoner, cfg.Pipeline.GenerationTimeout, log),
		cfg.Pipeline.TopK,
		log,
	)
	log.Info("✅ Pipeline initialized", zap.Int("top_k", cfg.Pipeline.TopK))

	// Initialize worker
	worker := services.NewWorker(
		assessmentRepo,
		pipeline,
		cfg.Worker.Concurrency,
		cfg.Worker.QueueSize,
		cfg.Worker.PollInterval,
		cfg.Worker.JobLease,
		log,
	)
	worker.Start(ctx)

	// Initialize Handlers
	scoreHandler := handlers.NewScoreHandler(pipeline, assessmentRepo, log)
	assessmentHandler := handlers.NewAssessmentHandler(pipeline, assessmentRepo, worker, log)
	uploadHandler := handlers.NewUploadHandler(scoreHandler, storageService, pdfParser, log)
	log.Info("✅ Handlers initialized")

	app := fiber.New(fiber.Config{
		AppName:      "Circular Economy Idea Auditor API",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 2 * cfg.Pipeline.GenerationTimeout,
		BodyLimit:    int(storageService.MaxFileSize()) + 1<<20,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(fiberlogger.New(fiberlogger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	handlers.SetupRoutes(app, scoreHandler, assessmentHandler, uploadHandler)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Info("🛑 Shutting down server...")
		worker.Stop()
		if err := app.Shutdown(); err != nil {
			log.Error("❌ Server forced to shutdown", zap.Error(err))
		}
		if err := qdrantService.Close(); err != nil {
			log.Warn("⚠️ Failed to close Qdrant client", zap.Error(err))
		}
		if rdb != nil {
			_ = rdb.Close()
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			log.Warn("⚠️ Failed to flush traces", zap.Error(err))
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info("🚀 Server starting", zap.String("addr", addr))

	if err := app.Listen(addr); err != nil {
		log.Fatal("❌ Failed to start server", zap.Error(err))
	}
}
