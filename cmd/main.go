package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/events"
	"catalog-sync-service/internal/handlers"
	"catalog-sync-service/internal/middleware"
	"catalog-sync-service/internal/repository"

	gosharedmw "github.com/Tesseract-Nexus/go-shared/middleware"
	"github.com/Tesseract-Nexus/go-shared/secrets"
	"github.com/Tesseract-Nexus/go-shared/tracing"
)

// @title Catalog Sync API
// @version 1.0.0
// @description Synchronizes a remote supplier catalog into the product store

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8094
// @BasePath /api/v1

// @securityDefinitions.bearer BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Initialize configuration
	cfg := config.Load()

	// Initialize database
	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Initialize logger
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	if cfg.Environment == "production" {
		logger.SetLevel(logrus.InfoLevel)
	} else {
		logger.SetLevel(logrus.DebugLevel)
	}

	// Initialize Redis client
	redisOpts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		log.Printf("WARNING: Failed to parse Redis URL: %v (continuing without Redis)", err)
		redisOpts = &redis.Options{
			Addr: "localhost:6379",
		}
	}
	// Set Redis password from GCP Secret Manager
	redisOpts.Password = secrets.GetRedisPassword()
	redisClient := redis.NewClient(redisOpts)

	// Test Redis connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("WARNING: Failed to connect to Redis: %v (caching will be disabled)", err)
	} else {
		log.Println("✓ Redis connected successfully")
	}
	cancel()

	// Initialize repository
	storeRepo := repository.NewStoreRepository(db, redisClient)

	// Ensure the media directory exists before the first image download
	if err := os.MkdirAll(cfg.MediaDir, 0o755); err != nil {
		log.Fatal("Failed to create media directory:", err)
	}

	// Initialize event publisher only if NATS_URL is set
	var eventsPublisher *events.Publisher
	natsURL := os.Getenv("NATS_URL")
	if natsURL != "" {
		var err error
		eventsPublisher, err = events.NewPublisher(logger)
		if err != nil {
			log.Printf("WARNING: Failed to initialize events publisher: %v (continuing without event publishing)", err)
		} else {
			log.Println("✓ Events publisher initialized (NATS connected)")
		}
	} else {
		log.Println("NATS_URL not set, skipping event publishing initialization")
	}
	defer func() {
		if eventsPublisher != nil {
			eventsPublisher.Close()
		}
	}()

	// Initialize the catalog sync pipeline. The token stored as a setting wins
	// over the environment fallback, so operators can rotate it at runtime.
	tokenSource := func() string {
		return storeRepo.CatalogToken(cfg.CatalogToken)
	}
	fetcher := catalog.NewHTTPFetcher(cfg.CatalogURL, tokenSource, time.Duration(cfg.FetchTimeoutSec)*time.Second, logger)
	mediaService := catalog.NewHTTPMediaService(storeRepo, cfg.MediaDir, logger)
	engine := catalog.NewEngine(fetcher, storeRepo, mediaService, eventsPublisher, logger)
	purger := catalog.NewPurger(storeRepo, cfg.MediaDir, eventsPublisher, logger)

	// Initialize handlers
	syncHandler := handlers.NewSyncHandler(engine, purger, storeRepo, cfg, logger)
	catalogHandler := handlers.NewCatalogHandler(storeRepo, cfg, logger)

	// Initialize OpenTelemetry tracing
	var tracerProvider *tracing.TracerProvider
	if cfg.Environment == "production" {
		tracerProvider, err = tracing.InitTracer(tracing.ProductionConfig("catalog-sync-service"))
	} else {
		tracerProvider, err = tracing.InitTracer(tracing.DefaultConfig("catalog-sync-service"))
	}
	if err != nil {
		log.Printf("WARNING: Failed to initialize tracing: %v (continuing without tracing)", err)
	} else {
		log.Println("✓ OpenTelemetry tracing initialized")
	}

	// Initialize Prometheus metrics
	metrics := gosharedmw.InitGlobalMetrics("tesseract", "catalog_sync_service")
	log.Println("✓ Prometheus metrics initialized")

	// Initialize Gin router
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	// Add observability middleware (metrics + tracing)
	router.Use(metrics.Middleware())
	router.Use(tracing.GinMiddleware("catalog-sync-service"))
	router.Use(gosharedmw.CompressionMiddleware())

	// Add CORS middleware
	router.Use(middleware.CORS())

	// Health check endpoints (no auth required)
	router.GET("/health", handlers.HealthCheck)
	router.GET("/ready", handlers.HealthCheck)
	router.GET("/metrics", gosharedmw.Handler())

	// Protected API routes
	api := router.Group("/api/v1")

	// Authentication middleware
	// In development: use DevelopmentAuthMiddleware for local testing
	// In production: validate bearer tokens issued by the admin gateway
	if cfg.Environment == "development" {
		api.Use(middleware.DevelopmentAuthMiddleware())
	} else {
		api.Use(middleware.Auth(cfg.JWTSecret))
	}

	manageCatalog := middleware.RequireCapability(middleware.CapabilityCatalogManage)

	// API routes
	v1 := api.Group("")
	{
		sync := v1.Group("/catalog")
		{
			// All sync operations mutate the store and require the manage capability
			sync.POST("/sync/batch", manageCatalog, syncHandler.RunBatchSync)
			sync.POST("/sync", manageCatalog, syncHandler.RunFullSync)
			sync.POST("/reset", manageCatalog, syncHandler.Reset)
			sync.POST("/credentials/test", manageCatalog, syncHandler.TestCredentials)
			sync.GET("/stats", syncHandler.GetStats)
		}

		products := v1.Group("/products")
		{
			products.GET("", catalogHandler.GetProducts)
			products.GET("/:id", catalogHandler.GetProduct)
			products.GET("/stock-code/:stockCode", catalogHandler.GetProductByStockCode)
			products.POST("/export", manageCatalog, catalogHandler.ExportProducts)
		}

		categories := v1.Group("/categories")
		{
			categories.GET("", catalogHandler.GetCategories)
		}
	}

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	// Graceful shutdown handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("Catalog sync service starting on port %s", port)
		if err := router.Run(":" + port); err != nil {
			log.Fatal("Failed to start server:", err)
		}
	}()

	// Wait for interrupt signal
	<-quit
	log.Println("Shutting down catalog-sync-service...")

	// Shutdown tracer provider
	if tracerProvider != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tracerProvider.Shutdown(ctx); err != nil {
			log.Printf("Error shutting down tracer provider: %v", err)
		} else {
			log.Println("✓ Tracer provider shut down")
		}
	}

	log.Println("Catalog sync service stopped")
}
