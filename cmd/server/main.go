package main

import (
	"context"
	"log"

	"github.com/rakapradana/receipt-expense-service/internal/config"
	"github.com/rakapradana/receipt-expense-service/internal/database"
	"github.com/rakapradana/receipt-expense-service/internal/handler"
	"github.com/rakapradana/receipt-expense-service/internal/middleware"
	"github.com/rakapradana/receipt-expense-service/internal/ocr"
	"github.com/rakapradana/receipt-expense-service/internal/parser"
	"github.com/rakapradana/receipt-expense-service/internal/repository"
	"github.com/rakapradana/receipt-expense-service/internal/server"
	"github.com/rakapradana/receipt-expense-service/internal/service"
	"github.com/rakapradana/receipt-expense-service/internal/storage"
)

// @title Receipt Expense Service API
// @version 1.0
// @description Receipt ingestion and expense extraction service
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	ctx := context.Background()

	log.Println("Loading configuration...")
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Println("Connecting to database...")
	db, err := database.NewPostgresDB(ctx, cfg.PostgresURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	receiptRepo := repository.NewPostgresReceiptRepository(db.Pool())
	userRepo := repository.NewPostgresUserRepository(db.Pool())

	// The AI provider is optional. When the API key is missing or the client
	// cannot be constructed, extraction runs on the deterministic fallback.
	var aiProvider ocr.Provider
	geminiProvider, err := ocr.NewGeminiProvider(ctx, cfg.GeminiAPIKey, cfg.GeminiModelID)
	if err != nil {
		log.Printf("AI extraction unavailable, using fallback only: %v", err)
	} else {
		aiProvider = geminiProvider
		defer geminiProvider.Close()
	}

	extractor := ocr.NewCoordinator(aiProvider, ocr.NewFallbackProvider(), cfg.OCRTimeout)

	// Image storage is optional as well. Receipts are persisted without an
	// image URL when no S3-compatible store is configured.
	var uploader service.ImageUploader
	if cfg.S3Endpoint != "" {
		s3Uploader, err := storage.NewS3Uploader(&storage.Config{
			Endpoint:        cfg.S3Endpoint,
			AccessKeyID:     cfg.S3AccessKeyID,
			AccessKeySecret: cfg.S3AccessKeySecret,
			Bucket:          cfg.S3Bucket,
			Region:          cfg.S3Region,
		})
		if err != nil {
			log.Printf("Image storage unavailable: %v", err)
		} else {
			uploader = s3Uploader
		}
	}

	receiptService := service.NewReceiptService(
		receiptRepo,
		extractor,
		parser.NewLineParser(),
		uploader,
		cfg.MaxUploadSizeBytes,
		cfg.AcceptedImageTypes,
	)
	analyticsService := service.NewAnalyticsService(receiptRepo)
	authService := service.NewAuthService(service.AuthServiceConfig{
		UserRepo:             userRepo,
		JWTSecret:            cfg.JWTSecret,
		JWTAccessExpiration:  cfg.JWTAccessExpiration,
		JWTRefreshExpiration: cfg.JWTRefreshExpiration,
	})

	log.Println("Configuring server...")
	appServer := server.NewServer(cfg)

	authMiddleware := middleware.AuthMiddleware(authService)
	handler.NewAuthHandler(authService).RegisterRoutes(appServer.Router())
	handler.NewReceiptHandler(receiptService).RegisterRoutes(appServer.Router(), authMiddleware)
	handler.NewAnalyticsHandler(analyticsService).RegisterRoutes(appServer.Router(), authMiddleware)

	if err := appServer.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
