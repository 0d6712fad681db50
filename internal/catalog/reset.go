package catalog

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/events"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// Purger tears the catalog down. It scans the product store directly and is
// independent of the sync engine.
type Purger struct {
	repo      *repository.StoreRepository
	mediaDir  string
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewPurger(repo *repository.StoreRepository, mediaDir string, publisher *events.Publisher, logger *logrus.Logger) *Purger {
	return &Purger{
		repo:      repo,
		mediaDir:  mediaDir,
		publisher: publisher,
		logger:    logger.WithField("component", "purger"),
	}
}

// PurgeAll hard-deletes every product in the store along with its primary
// image asset, sweeps orphaned import media, and zeroes the import stats.
// It is unscoped: imported products are not distinguished from anything
// else in the store.
func (p *Purger) PurgeAll(ctx context.Context) (*models.PurgeResult, error) {
	start := time.Now()
	p.logger.Warn("Purging entire product catalog")

	products, err := p.repo.ListAllProducts()
	if err != nil {
		return nil, err
	}

	result := &models.PurgeResult{}

	for _, product := range products {
		if product.FeaturedImageID != nil {
			if p.deleteAsset(*product.FeaturedImageID) {
				result.DeletedMedia++
			}
		}
		if err := p.repo.HardDeleteProduct(product.ID); err != nil {
			p.logger.WithError(err).WithField("stock_code", product.StockCode).Error("Failed to delete product")
			continue
		}
		result.DeletedProducts++
	}

	// Sweep media rows left behind by prior imports whose products are gone
	orphans, err := p.repo.ListMediaAssetsByPrefix(MediaFilePrefix)
	if err != nil {
		p.logger.WithError(err).Error("Orphan sweep query failed")
	} else {
		for _, orphan := range orphans {
			if p.deleteAsset(orphan.ID) {
				result.DeletedMedia++
			}
		}
	}

	// Stray files under the media dir that match the import naming convention
	// but have no row left
	p.sweepStrayFiles()

	if err := p.repo.ResetImportStats(); err != nil {
		p.logger.WithError(err).Error("Failed to reset import stats")
	}

	p.logger.WithFields(logrus.Fields{
		"deleted_products": result.DeletedProducts,
		"deleted_media":    result.DeletedMedia,
		"elapsed":          time.Since(start).String(),
	}).Warn("Purge completed")

	if p.publisher != nil {
		p.publisher.PublishCatalogPurged(ctx, result)
	}

	return result, nil
}

// deleteAsset removes an asset row and its backing file. Returns true when
// the row was deleted.
func (p *Purger) deleteAsset(id uuid.UUID) bool {
	asset, err := p.repo.GetMediaAssetByID(id)
	if err != nil {
		return false
	}

	if asset.FilePath != "" {
		if err := os.Remove(asset.FilePath); err != nil && !os.IsNotExist(err) {
			p.logger.WithError(err).WithField("file", asset.FilePath).Warn("Failed to remove media file")
		}
	}

	if err := p.repo.HardDeleteMediaAsset(asset.ID); err != nil {
		p.logger.WithError(err).WithField("asset", asset.ID).Warn("Failed to delete media asset")
		return false
	}
	return true
}

func (p *Purger) sweepStrayFiles() {
	matches, err := filepath.Glob(filepath.Join(p.mediaDir, MediaFilePrefix+"*"))
	if err != nil {
		return
	}
	for _, match := range matches {
		if err := os.Remove(match); err != nil && !os.IsNotExist(err) {
			p.logger.WithError(err).WithField("file", match).Warn("Failed to remove stray media file")
		}
	}
}
