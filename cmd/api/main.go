package main

import (
	"context"
	"log"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/contrib/otelfiber"
	"github.com/gofiber/fiber/v2"
	_ "github.com/joho/godotenv/autoload"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"receiptguard/internal/config"
	"receiptguard/internal/database"
	"receiptguard/internal/database/migration"
	"receiptguard/internal/fraud"
	handlers "receiptguard/internal/http/handler"
	"receiptguard/internal/http/middleware"
	"receiptguard/internal/imaging"
	"receiptguard/internal/otel"
	"receiptguard/internal/repository/postgres"
	"receiptguard/internal/service"
	"receiptguard/internal/storage"
)

func main() {
	// Load configuration from environment variables (.env auto-loaded if present)
	cfg := config.Load()
	loc := time.Local

	// Initialize tracing (degrades to noop when the exporter is unavailable)
	shutdownTracing, err := otel.Init(context.Background(), loc)
	if err != nil {
		log.Fatalf("failed to initialize tracing: %v", err)
	}
	defer shutdownTracing(context.Background())

	// Initialize PostgreSQL connection (with pooling via database/sql)
	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := migration.EnsureMigrated(context.Background(), db, loc, cfg.Database.Host); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	// Initialize reusable S3-compatible object storage client (MinIO-supported)
	objStore, err := storage.NewMinIO(cfg.MinIO)
	if err != nil {
		log.Fatalf("failed to initialize object storage: %v", err)
	}

	// Initialize repositories
	receiptRepo := postgres.NewReceiptPostgres(db)
	metadataRepo := postgres.NewMetadataPostgres(db)
	requestRepo := postgres.NewRequestPostgres(db)
	studentRepo := postgres.NewStudentPostgres(db)

	// Wire the fraud pipeline: digest lookups hit the receipts table, image
	// inspection runs through EXIF decoding and Tesseract OCR.
	pipeline := fraud.NewPipeline(
		service.NewDigestIndex(receiptRepo),
		imaging.NewExifTagReader(),
		imaging.NewTesseractRecognizer(cfg.Pipeline.TessdataPrefix, cfg.Pipeline.OCRLanguage),
		fraud.Thresholds{
			ActionReject:   cfg.Thresholds.ActionReject,
			ActionReview:   cfg.Thresholds.ActionReview,
			CategoryHigh:   cfg.Thresholds.CategoryHigh,
			CategoryMedium: cfg.Thresholds.CategoryMedium,
		},
		time.Duration(cfg.Pipeline.TimeoutSec)*time.Second,
	)

	receiptSvc := service.NewReceiptService(objStore, receiptRepo, metadataRepo, requestRepo, pipeline, cfg.Pipeline.MaxFileSize)
	requestSvc := service.NewRequestService(requestRepo, studentRepo)

	app := fiber.New(fiber.Config{
		ErrorHandler: handlers.ErrorHandler(),
		BodyLimit:    int(cfg.Pipeline.MaxFileSize) + 1024*1024,
	})

	// Register global middleware
	// RequestID middleware adds/propagates X-Request-ID and stores it in context
	app.Use(middleware.RequestID())
	// JSON Logger middleware for structured request logs
	app.Use(middleware.Logger())
	app.Use(otelfiber.Middleware())

	promMiddleware, err := middleware.NewPrometheusMiddleware(prometheus.DefaultRegisterer)
	if err != nil {
		log.Fatalf("failed to initialize prometheus middleware: %v", err)
	}
	app.Use(promMiddleware.Handler())
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// Register HTTP routes with injected services
	handlers.RegisterRoutes(app, db, receiptSvc, requestSvc)

	addr := ":" + cfg.Port

	if err := app.Listen(addr); err != nil {
		log.Fatalf("failed to start server: %v", err)
	}
}
