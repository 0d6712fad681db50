package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/Tesseract-Nexus/go-shared/cache"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"catalog-sync-service/internal/models"
)

// Cache TTL constants
const (
	ProductCacheTTL  = 5 * time.Minute
	CategoryCacheTTL = 30 * time.Minute // Categories rarely change
)

// Setting names for the persisted import state
const (
	SettingProductsImported    = "catalog_products_imported"
	SettingImagesImported      = "catalog_images_imported"
	SettingLastImportTimestamp = "catalog_last_import_timestamp"
	SettingCatalogToken        = "catalog_api_token"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrAssetNotFound    = errors.New("media asset not found")
)

type StoreRepository struct {
	db    *gorm.DB
	redis *redis.Client
	cache *cache.CacheLayer
}

func NewStoreRepository(db *gorm.DB, redisClient *redis.Client) *StoreRepository {
	repo := &StoreRepository{
		db:    db,
		redis: redisClient,
	}

	if redisClient != nil {
		cacheConfig := cache.CacheConfig{
			L1Enabled:  true,
			L1MaxItems: 5000,
			L1TTL:      30 * time.Second,
			DefaultTTL: ProductCacheTTL,
			KeyPrefix:  "catalog-sync:",
		}
		repo.cache = cache.NewCacheLayerFromClient(redisClient, cacheConfig)
	}

	return repo
}

// DB exposes the underlying handle for test setup code.
func (r *StoreRepository) DB() *gorm.DB {
	return r.db
}

func (r *StoreRepository) invalidateProductCaches(ctx context.Context, stockCode string) {
	if r.cache == nil {
		return
	}
	_ = r.cache.Delete(ctx, fmt.Sprintf("product:sku:%s", stockCode))
	_ = r.cache.DeletePattern(ctx, "products:list:*")
}

func (r *StoreRepository) invalidateCategoryCaches(ctx context.Context) {
	if r.cache == nil {
		return
	}
	_ = r.cache.DeletePattern(ctx, "categories:*")
}

// Product operations

// GetProductByStockCode is the existence lookup the synchronizer relies on.
// Reads through the cache; a miss falls back to the database.
func (r *StoreRepository) GetProductByStockCode(stockCode string) (*models.Product, error) {
	ctx := context.Background()
	cacheKey := fmt.Sprintf("product:sku:%s", stockCode)

	if r.redis != nil {
		val, err := r.redis.Get(ctx, "catalog-sync:"+cacheKey).Result()
		if err == nil {
			var product models.Product
			if err := json.Unmarshal([]byte(val), &product); err == nil {
				return &product, nil
			}
		}
	}

	var product models.Product
	err := r.db.Preload("Categories").Where("stock_code = ?", stockCode).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(product); err == nil {
			r.redis.Set(ctx, "catalog-sync:"+cacheKey, data, ProductCacheTTL)
		}
	}

	return &product, nil
}

// GetProductByID retrieves a product by primary key
func (r *StoreRepository) GetProductByID(id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.Preload("Categories").Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

// CreateProduct creates a new product
func (r *StoreRepository) CreateProduct(product *models.Product) error {
	if product.ID == uuid.Nil {
		product.ID = uuid.New()
	}
	product.CreatedAt = time.Now()
	product.UpdatedAt = time.Now()

	err := r.db.Create(product).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.StockCode)
	}
	return err
}

// SaveProduct persists a full product row, overwriting all columns
func (r *StoreRepository) SaveProduct(product *models.Product) error {
	product.UpdatedAt = time.Now()
	err := r.db.Omit("Categories").Save(product).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.StockCode)
	}
	return err
}

// ReplaceProductCategories overwrites the product's category set (full
// replace, not merge)
func (r *StoreRepository) ReplaceProductCategories(product *models.Product, categories []models.Category) error {
	err := r.db.Model(product).Association("Categories").Replace(categories)
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.StockCode)
	}
	return err
}

// SetFeaturedImage links a media asset as the product's primary image
func (r *StoreRepository) SetFeaturedImage(productID, assetID uuid.UUID) error {
	var product models.Product
	if err := r.db.Where("id = ?", productID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	err := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Updates(map[string]interface{}{
			"featured_image_id": assetID,
			"updated_at":        time.Now(),
		}).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.StockCode)
	}
	return err
}

// GetProducts retrieves products with pagination
func (r *StoreRepository) GetProducts(page, limit int) ([]models.Product, int64, error) {
	var products []models.Product
	var total int64

	query := r.db.Model(&models.Product{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Preload("Categories").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// ListAllProducts returns every product row. Used by the purge pass, which is
// deliberately unscoped: it walks the entire store.
func (r *StoreRepository) ListAllProducts() ([]models.Product, error) {
	var products []models.Product
	err := r.db.Preload("Categories").Order("created_at ASC").Find(&products).Error
	return products, err
}

// HardDeleteProduct removes a product row and its category links permanently
func (r *StoreRepository) HardDeleteProduct(id uuid.UUID) error {
	var product models.Product
	if err := r.db.Where("id = ?", id).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProductNotFound
		}
		return err
	}

	if err := r.db.Model(&product).Association("Categories").Clear(); err != nil {
		return err
	}
	err := r.db.Unscoped().Delete(&product).Error
	if err == nil {
		r.invalidateProductCaches(context.Background(), product.StockCode)
	}
	return err
}

// CountProducts returns the total number of product rows
func (r *StoreRepository) CountProducts() (int64, error) {
	var count int64
	err := r.db.Model(&models.Product{}).Count(&count).Error
	return count, err
}

// Category operations

// GetCategoryByName looks a category up by exact name match
func (r *StoreRepository) GetCategoryByName(name string) (*models.Category, error) {
	var category models.Category
	err := r.db.Where("name = ?", name).First(&category).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

// CreateCategory creates a new category
func (r *StoreRepository) CreateCategory(category *models.Category) error {
	if category.ID == uuid.Nil {
		category.ID = uuid.New()
	}
	category.CreatedAt = time.Now()
	category.UpdatedAt = time.Now()

	err := r.db.Create(category).Error
	if err == nil {
		r.invalidateCategoryCaches(context.Background())
	}
	return err
}

// ListCategories returns all categories, with caching
func (r *StoreRepository) ListCategories() ([]models.Category, error) {
	ctx := context.Background()
	cacheKey := "catalog-sync:categories:all"

	if r.redis != nil {
		val, err := r.redis.Get(ctx, cacheKey).Result()
		if err == nil {
			var categories []models.Category
			if err := json.Unmarshal([]byte(val), &categories); err == nil {
				return categories, nil
			}
		}
	}

	var categories []models.Category
	if err := r.db.Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}

	if r.redis != nil {
		if data, err := json.Marshal(categories); err == nil {
			r.redis.Set(ctx, cacheKey, data, CategoryCacheTTL)
		}
	}

	return categories, nil
}

// Media asset operations

// CreateMediaAsset creates a media asset row
func (r *StoreRepository) CreateMediaAsset(asset *models.MediaAsset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	asset.CreatedAt = time.Now()
	asset.UpdatedAt = time.Now()
	return r.db.Create(asset).Error
}

// GetMediaAssetByID retrieves a media asset by primary key
func (r *StoreRepository) GetMediaAssetByID(id uuid.UUID) (*models.MediaAsset, error) {
	var asset models.MediaAsset
	err := r.db.Where("id = ?", id).First(&asset).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAssetNotFound
		}
		return nil, err
	}
	return &asset, nil
}

// HardDeleteMediaAsset removes a media asset row permanently
func (r *StoreRepository) HardDeleteMediaAsset(id uuid.UUID) error {
	result := r.db.Unscoped().Where("id = ?", id).Delete(&models.MediaAsset{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrAssetNotFound
	}
	return nil
}

// ListMediaAssetsByPrefix returns assets whose file name matches the import
// naming convention. The purge sweep uses this to find orphans from prior runs.
func (r *StoreRepository) ListMediaAssetsByPrefix(prefix string) ([]models.MediaAsset, error) {
	var assets []models.MediaAsset
	err := r.db.Where("file_name LIKE ?", prefix+"%").Find(&assets).Error
	return assets, err
}

// Settings operations

// GetSetting returns the value for a name, or "" when absent
func (r *StoreRepository) GetSetting(name string) (string, error) {
	var setting models.Setting
	err := r.db.Where("name = ?", name).First(&setting).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", nil
		}
		return "", err
	}
	return setting.Value, nil
}

// SetSetting upserts a name/value row
func (r *StoreRepository) SetSetting(name, value string) error {
	setting := models.Setting{Name: name, Value: value, UpdatedAt: time.Now()}
	return r.db.Save(&setting).Error
}

// GetImportStats reads the persisted counters. Missing or malformed rows read
// as zero.
func (r *StoreRepository) GetImportStats() (*models.ImportStats, error) {
	stats := &models.ImportStats{}

	products, err := r.GetSetting(SettingProductsImported)
	if err != nil {
		return nil, err
	}
	stats.ProductsImported, _ = strconv.Atoi(products)

	images, err := r.GetSetting(SettingImagesImported)
	if err != nil {
		return nil, err
	}
	stats.ImagesImported, _ = strconv.Atoi(images)

	ts, err := r.GetSetting(SettingLastImportTimestamp)
	if err != nil {
		return nil, err
	}
	stats.LastImportTimestamp, _ = strconv.ParseInt(ts, 10, 64)

	return stats, nil
}

// SetImportStats overwrites the persisted counters
func (r *StoreRepository) SetImportStats(stats *models.ImportStats) error {
	if err := r.SetSetting(SettingProductsImported, strconv.Itoa(stats.ProductsImported)); err != nil {
		return err
	}
	if err := r.SetSetting(SettingImagesImported, strconv.Itoa(stats.ImagesImported)); err != nil {
		return err
	}
	return r.SetSetting(SettingLastImportTimestamp, strconv.FormatInt(stats.LastImportTimestamp, 10))
}

// ResetImportStats zeroes the persisted counters
func (r *StoreRepository) ResetImportStats() error {
	return r.SetImportStats(&models.ImportStats{})
}

// CatalogToken returns the stored API token, falling back to the provided
// default when no setting row exists. An empty result means the catalog fetch
// goes out unauthenticated.
func (r *StoreRepository) CatalogToken(fallback string) string {
	token, err := r.GetSetting(SettingCatalogToken)
	if err != nil || token == "" {
		return fallback
	}
	return token
}
