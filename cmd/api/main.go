package main

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"

	"claimsapi/internal/config"
	"claimsapi/internal/database"
	"claimsapi/internal/database/migration"
	"claimsapi/internal/embed"
	handlers "claimsapi/internal/http/handler"
	"claimsapi/internal/http/middleware"
	"claimsapi/internal/ocr"
	"claimsapi/internal/otel"
	"claimsapi/internal/pdf"
	"claimsapi/internal/pipeline"
	"claimsapi/internal/repository/postgres"
	"claimsapi/internal/service"
	"claimsapi/internal/storage"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()

	ctx := context.Background()

	shutdownTracing, err := otel.Init(ctx, logger)
	if err != nil {
		logger.Error("main.tracing.init", "error", err)
		os.Exit(1)
	}
	defer shutdownTracing(context.Background())

	// PostgreSQL connection with pooling via database/sql
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logger.Error("main.database.connect", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(ctx, db, time.UTC, cfg.Database.Host); err != nil {
		logger.Error("main.database.migrate", "error", err)
		os.Exit(1)
	}

	// S3-compatible object storage client for raw packets
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		logger.Error("main.storage.init", "error", err)
		os.Exit(1)
	}

	embedder := embed.New(embed.Config{
		Endpoint:  cfg.Embedding.Endpoint,
		Model:     cfg.Embedding.Model,
		Dimension: cfg.Embedding.Dimension,
		Timeout:   time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
		Logger:    logger,
	})

	ocrTool := ocr.New(ocr.Config{
		Tesseract: cfg.OCR.TesseractPath,
		Pdftotext: cfg.OCR.PdftotextPath,
		Language:  cfg.OCR.Language,
		Timeout:   time.Duration(cfg.OCR.TimeoutSec) * time.Second,
	})

	provider := pdf.NewProvider(embedder, ocrTool, logger)

	processor := pipeline.NewProcessor(logger, pipeline.Config{
		SimilarityThreshold: cfg.Pipeline.SimilarityThreshold,
		ConsecutiveLowPages: cfg.Pipeline.ConsecutiveLowPages,
		MaxParallel:         cfg.Pipeline.MaxParallel,
	}, ocrTool)

	registry := prometheus.NewRegistry()

	metrics, err := service.NewMetrics(registry)
	if err != nil {
		logger.Error("main.metrics.init", "error", err)
		os.Exit(1)
	}

	packetRepo := postgres.NewPacketPostgres(db)
	packetSvc := service.NewPacketService(objStore, packetRepo, provider, processor, metrics)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    64 * 1024 * 1024,
	})

	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())

	promMW, err := middleware.NewPrometheusMiddleware(registry)
	if err != nil {
		logger.Error("main.metrics.middleware", "error", err)
		os.Exit(1)
	}
	app.Use(promMW.Handler())

	handlers.RegisterRoutes(app, db, packetSvc, registry)

	addr := ":" + cfg.Port

	logger.Info("main.listen", "addr", addr)
	if err := app.Listen(addr); err != nil {
		logger.Error("main.listen", "error", err)
		os.Exit(1)
	}
}
