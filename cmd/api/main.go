package main

import (
	"context"
	"log"

	"github.com/tastebox/backend/config"
	"github.com/tastebox/backend/internal/api"
	"github.com/tastebox/backend/internal/database"
	"github.com/tastebox/backend/internal/middleware"
	"github.com/tastebox/backend/internal/server"
	"github.com/tastebox/backend/internal/service"
)

func main() {
	ctx := context.Background()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	db, err := database.Open(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	// Redis backs drafts and the import rate limiter; both are off without it
	redisClient, err := database.NewRedisClient(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	extractor, err := service.NewExtractor(service.LLMConfig{
		APIKey:          cfg.LLMAPIKey,
		APIURL:          cfg.LLMAPIURL,
		Model:           cfg.LLMModel,
		MaxTokens:       cfg.LLMMaxTokens,
		ReasoningEffort: cfg.LLMReasoningEffort,
	}, cfg.FetchProfilesFile)
	if err != nil {
		log.Fatalf("Failed to create extractor: %v", err)
	}

	// Initialize services
	deps := api.Dependencies{
		DB:            db,
		Auth:          service.NewAuthService(db, cfg.JWTSecret),
		Recipes:       service.NewRecipeService(db, service.NewHashEmbeddingService()),
		Extractor:     extractor,
		Documents:     service.NewDocumentService(),
		Exporter:      service.NewPDFExporter(),
		ImportLimiter: middleware.NewImportRateLimiter(redisClient, cfg.ImportRateLimit, cfg.ImportRateWindow),
	}
	if redisClient != nil {
		defer redisClient.Close()
		deps.Drafts = service.NewDraftService(redisClient)
	} else {
		log.Println("Redis not configured; drafts and import rate limiting are disabled")
	}

	if cfg.S3BucketName != "" {
		s3Cfg, err := config.NewS3Config(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3: %v", err)
		}
		deps.Images = service.NewImageService(s3Cfg.Client, s3Cfg.BucketName)
	} else {
		log.Println("S3_BUCKET_NAME not set; image mirroring is disabled")
		deps.Images = service.NewImageService(nil, "")
	}

	// Create and start server
	srv := server.NewServer(cfg, deps)
	if err := srv.Start(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server stopped")
}
