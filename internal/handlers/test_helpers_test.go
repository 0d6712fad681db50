package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

var (
	testDB       *gorm.DB
	testMediaDir string
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)

	var err error
	testMediaDir, err = os.MkdirTemp("", "media")
	if err != nil {
		panic("failed to create media dir: " + err.Error())
	}

	testDB, err = gorm.Open(sqlite.Open("file:handlers_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect to test database: " + err.Error())
	}
	// Limit to 1 open connection to prevent SQLite concurrent access issues
	// with in-memory databases.
	sqlDB, _ := testDB.DB()
	sqlDB.SetMaxOpenConns(1)

	if err := createSQLiteTables(testDB); err != nil {
		panic("failed to migrate test database: " + err.Error())
	}

	code := m.Run()
	os.RemoveAll(testMediaDir)
	os.Exit(code)
}

// freshDB returns a clean database for each test by deleting all rows.
func freshDB() *gorm.DB {
	testDB.Exec("DELETE FROM product_categories")
	testDB.Exec("DELETE FROM media_assets")
	testDB.Exec("DELETE FROM products")
	testDB.Exec("DELETE FROM categories")
	testDB.Exec("DELETE FROM settings")
	return testDB
}

// createSQLiteTables creates all tables with SQLite-compatible DDL, since the
// GORM model tags use PostgreSQL-specific defaults like gen_random_uuid().
func createSQLiteTables(db *gorm.DB) error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS "products" (
			"id" TEXT PRIMARY KEY,
			"stock_code" TEXT NOT NULL UNIQUE,
			"name" TEXT NOT NULL,
			"description" TEXT,
			"short_description" TEXT,
			"price" TEXT NOT NULL,
			"status" TEXT DEFAULT 'ACTIVE',
			"visible" INTEGER DEFAULT 1,
			"inventory_status" TEXT DEFAULT 'IN_STOCK',
			"stock_managed" INTEGER DEFAULT 0,
			"featured_image_id" TEXT,
			"metadata" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "categories" (
			"id" TEXT PRIMARY KEY,
			"name" TEXT NOT NULL UNIQUE,
			"slug" TEXT NOT NULL,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "product_categories" (
			"product_id" TEXT NOT NULL,
			"category_id" TEXT NOT NULL,
			PRIMARY KEY ("product_id", "category_id")
		)`,
		`CREATE TABLE IF NOT EXISTS "media_assets" (
			"id" TEXT PRIMARY KEY,
			"product_id" TEXT NOT NULL,
			"file_name" TEXT NOT NULL,
			"file_path" TEXT NOT NULL,
			"source_url" TEXT,
			"content_type" TEXT,
			"size_bytes" INTEGER,
			"metadata" TEXT,
			"created_at" DATETIME,
			"updated_at" DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS "settings" (
			"name" TEXT PRIMARY KEY,
			"value" TEXT,
			"updated_at" DATETIME
		)`,
	}

	for _, sql := range tables {
		if err := db.Exec(sql).Error; err != nil {
			return err
		}
	}
	return nil
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.PanicLevel)
	return logger
}

func testConfig() *config.Config {
	return &config.Config{
		DefaultWindowSize: 10,
		MaxWindowSize:     50,
		DefaultPageSize:   20,
		MaxPageSize:       100,
	}
}

// fetcherFunc adapts a function to the catalog.Fetcher interface.
type fetcherFunc func(ctx context.Context) (string, error)

func (f fetcherFunc) Fetch(ctx context.Context) (string, error) { return f(ctx) }

// mediaFunc adapts a function to the catalog.MediaService interface.
type mediaFunc func(ctx context.Context, sourceURL string, ownerID uuid.UUID) (*models.MediaAsset, error)

func (f mediaFunc) Acquire(ctx context.Context, sourceURL string, ownerID uuid.UUID) (*models.MediaAsset, error) {
	return f(ctx, sourceURL, ownerID)
}

func noMedia() mediaFunc {
	return func(ctx context.Context, sourceURL string, ownerID uuid.UUID) (*models.MediaAsset, error) {
		return nil, &catalog.MediaError{URL: sourceURL, Message: "media disabled in tests"}
	}
}

const catalogHeader = "stock_code,product_name,wholesale_price,retail_price,profit,image_url,image_preview_url,category,form,count,description,ingredients,benefits,directions,warnings,external_sku"

// buildCatalog returns a header plus n complete rows.
func buildCatalog(n int) string {
	rows := []string{catalogHeader}
	for i := 1; i <= n; i++ {
		rows = append(rows, fmt.Sprintf("PN-%04d,Product %d,10.00,24.99,14.99,,,Joint Health,Capsule,60,Desc %d,Ing,Ben,Dir,Warn,EXT-%04d", i, i, i, i))
	}
	return strings.Join(rows, "\n") + "\n"
}

func fixedCatalog(n int) fetcherFunc {
	body := buildCatalog(n)
	return func(ctx context.Context) (string, error) { return body, nil }
}

// setupRouter wires the full API surface against a fresh store.
func setupRouter(fetcher catalog.Fetcher) (*gin.Engine, *repository.StoreRepository) {
	repo := repository.NewStoreRepository(freshDB(), nil)
	logger := testLogger()
	cfg := testConfig()

	engine := catalog.NewEngine(fetcher, repo, noMedia(), nil, logger)
	purger := catalog.NewPurger(repo, testMediaDir, nil, logger)

	syncHandler := NewSyncHandler(engine, purger, repo, cfg, logger)
	catalogHandler := NewCatalogHandler(repo, cfg, logger)

	r := gin.New()
	api := r.Group("/api/v1")
	api.POST("/catalog/sync/batch", syncHandler.RunBatchSync)
	api.POST("/catalog/sync", syncHandler.RunFullSync)
	api.GET("/catalog/stats", syncHandler.GetStats)
	api.POST("/catalog/reset", syncHandler.Reset)
	api.POST("/catalog/credentials/test", syncHandler.TestCredentials)
	api.GET("/products", catalogHandler.GetProducts)
	api.GET("/products/:id", catalogHandler.GetProduct)
	api.GET("/products/stock-code/:stockCode", catalogHandler.GetProductByStockCode)
	api.GET("/categories", catalogHandler.GetCategories)
	api.POST("/products/export", catalogHandler.ExportProducts)
	return r, repo
}

// jsonRequest creates an HTTP request with JSON body.
func jsonRequest(method, url string, body interface{}) *http.Request {
	var buf bytes.Buffer
	if body != nil {
		json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	return req
}

// parseResponse reads the response body into a map.
func parseResponse(w *httptest.ResponseRecorder) map[string]interface{} {
	var result map[string]interface{}
	json.Unmarshal(w.Body.Bytes(), &result)
	return result
}
