package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// SyncResult reports the outcome of syncing one catalog record.
type SyncResult struct {
	ProductID     uuid.UUID
	Created       bool
	ImageAttached bool
}

// Synchronizer performs the idempotent upsert of one catalog record into one
// product entity.
type Synchronizer struct {
	repo     *repository.StoreRepository
	resolver *CategoryResolver
	media    MediaService
	logger   *logrus.Entry
}

func NewSynchronizer(repo *repository.StoreRepository, resolver *CategoryResolver, media MediaService, logger *logrus.Logger) *Synchronizer {
	return &Synchronizer{
		repo:     repo,
		resolver: resolver,
		media:    media,
		logger:   logger.WithField("component", "synchronizer"),
	}
}

// Sync upserts one record. Existence is always checked by stock code before
// creation, so the same record synced twice updates the one product rather
// than duplicating it. Entity load/save failures abort the record with a
// *SyncError; a media failure only degrades it to ImageAttached=false.
func (s *Synchronizer) Sync(ctx context.Context, record models.CatalogRecord) (*SyncResult, error) {
	product, err := s.repo.GetProductByStockCode(record.StockCode)
	created := false
	if err != nil {
		if err != repository.ErrProductNotFound {
			return nil, &SyncError{StockCode: record.StockCode, Message: err.Error()}
		}
		product = &models.Product{StockCode: record.StockCode}
		created = true
	}

	// Fields are overwritten wholesale; the remote catalog is the source of
	// truth for everything it carries.
	product.Name = record.ProductName
	product.Price = record.RetailPrice
	product.Description = record.Description
	product.ShortDescription = record.Benefits
	product.Status = models.ProductStatusActive
	product.Visible = true
	product.InventoryStatus = models.InventoryStatusInStock
	product.StockManaged = false
	product.Metadata = models.JSON{
		"wholesale_price": record.WholesalePrice,
		"profit":          record.Profit,
		"external_sku":    record.ExternalSKU,
		"form":            record.Form,
		"count":           record.Count,
		"ingredients":     record.Ingredients,
		"directions":      record.Directions,
		"warnings":        record.Warnings,
	}

	var categories []models.Category
	if record.Category != "" {
		categories = s.resolver.Resolve(record.Category)
	}

	if created {
		product.Categories = categories
		if err := s.repo.CreateProduct(product); err != nil {
			return nil, &SyncError{StockCode: record.StockCode, Message: err.Error()}
		}
	} else {
		if err := s.repo.SaveProduct(product); err != nil {
			return nil, &SyncError{StockCode: record.StockCode, Message: err.Error()}
		}
		if record.Category != "" {
			if err := s.repo.ReplaceProductCategories(product, categories); err != nil {
				return nil, &SyncError{StockCode: record.StockCode, Message: err.Error()}
			}
		}
	}

	result := &SyncResult{ProductID: product.ID, Created: created}

	if record.ImageURL != "" {
		asset, err := s.media.Acquire(ctx, record.ImageURL, product.ID)
		if err != nil {
			// Image failure never fails the whole record
			s.logger.WithError(err).WithFields(logrus.Fields{
				"stock_code": record.StockCode,
				"image_url":  record.ImageURL,
			}).Warn("Image acquisition failed, product kept without image")
		} else if err := s.repo.SetFeaturedImage(product.ID, asset.ID); err != nil {
			s.logger.WithError(err).WithField("stock_code", record.StockCode).Warn("Failed to link image, product kept without image")
		} else {
			result.ImageAttached = true
		}
	}

	return result, nil
}
