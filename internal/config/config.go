package config

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/Tesseract-Nexus/go-shared/secrets"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"catalog-sync-service/internal/models"
)

type Config struct {
	// Database
	DBHost     string
	DBPort     int
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	// Redis
	RedisURL string

	// Server
	Port        string
	Environment string

	// JWT
	JWTSecret string

	// Remote catalog
	CatalogURL      string
	CatalogToken    string // fallback when no token setting is stored
	FetchTimeoutSec int

	// Media storage
	MediaDir string

	// Batch limits
	DefaultWindowSize int
	MaxWindowSize     int

	// Pagination
	DefaultPageSize int
	MaxPageSize     int
}

func Load() *Config {
	dbPort, _ := strconv.Atoi(getEnv("DB_PORT", "5432"))
	fetchTimeout, _ := strconv.Atoi(getEnv("CATALOG_FETCH_TIMEOUT", "30"))
	defaultWindow, _ := strconv.Atoi(getEnv("DEFAULT_WINDOW_SIZE", "20"))
	maxWindow, _ := strconv.Atoi(getEnv("MAX_WINDOW_SIZE", "200"))
	defaultPageSize, _ := strconv.Atoi(getEnv("DEFAULT_PAGE_SIZE", "20"))
	maxPageSize, _ := strconv.Atoi(getEnv("MAX_PAGE_SIZE", "100"))

	return &Config{
		// Database - fetch password from GCP Secret Manager if enabled
		DBHost:     getEnv("DB_HOST", "localhost"),
		DBPort:     dbPort,
		DBUser:     getEnv("DB_USER", "postgres"),
		DBPassword: secrets.GetDBPassword(),
		DBName:     getEnv("DB_NAME", "catalog_sync_db"),
		DBSSLMode:  getEnv("DB_SSLMODE", "disable"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		Port:        getEnv("PORT", "8094"),
		Environment: getEnv("ENVIRONMENT", "development"),

		JWTSecret: getEnv("JWT_SECRET", "your-secret-key"),

		CatalogURL:      getEnv("CATALOG_URL", "https://catalog.supplier.example/v3/products.csv"),
		CatalogToken:    getEnv("CATALOG_TOKEN", ""),
		FetchTimeoutSec: fetchTimeout,

		MediaDir: getEnv("MEDIA_DIR", "/var/lib/catalog-sync/media"),

		DefaultWindowSize: defaultWindow,
		MaxWindowSize:     maxWindow,

		DefaultPageSize: defaultPageSize,
		MaxPageSize:     maxPageSize,
	}
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBSSLMode)

	var logLevel logger.LogLevel
	if cfg.Environment == "production" {
		logLevel = logger.Error
	} else {
		logLevel = logger.Info
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logLevel),
	})

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Println("Running auto-migrations...")
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Category{},
		&models.MediaAsset{},
		&models.Setting{},
	); err != nil {
		return nil, fmt.Errorf("failed to run auto-migrations: %w", err)
	}
	log.Println("Auto-migrations completed successfully")

	return db, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
