package catalog

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/events"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// Engine drives catalog synchronization. It is stateless with respect to
// batch position: every batch call re-fetches and re-parses the full catalog
// and slices it by the caller's offset, so the caller owns resumption.
type Engine struct {
	fetcher   Fetcher
	repo      *repository.StoreRepository
	sync      *Synchronizer
	publisher *events.Publisher
	logger    *logrus.Entry
}

func NewEngine(fetcher Fetcher, repo *repository.StoreRepository, media MediaService, publisher *events.Publisher, logger *logrus.Logger) *Engine {
	resolver := NewCategoryResolver(repo, logger)
	return &Engine{
		fetcher:   fetcher,
		repo:      repo,
		sync:      NewSynchronizer(repo, resolver, media, logger),
		publisher: publisher,
		logger:    logger.WithField("component", "sync-engine"),
	}
}

// RunBatch processes records[offset : offset+windowSize] sequentially.
// Per-record failures are collected and returned with the counts; only a
// fetch failure aborts the call.
func (e *Engine) RunBatch(ctx context.Context, offset, windowSize int) (*models.BatchSyncResult, error) {
	records, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	total := len(records)
	result := &models.BatchSyncResult{
		Total:   total,
		HasMore: offset+windowSize < total,
	}

	start := offset
	if start > total {
		start = total
	}
	end := offset + windowSize
	if end > total {
		end = total
	}

	e.processSlice(ctx, records[start:end], &result.Imported, &result.Images, &result.Errors)

	e.logger.WithFields(logrus.Fields{
		"offset":   offset,
		"window":   windowSize,
		"imported": result.Imported,
		"images":   result.Images,
		"failed":   len(result.Errors),
		"has_more": result.HasMore,
	}).Info("Batch completed")

	if e.publisher != nil {
		e.publisher.PublishBatchCompleted(ctx, offset, windowSize, result)
	}

	return result, nil
}

// RunFull imports the whole catalog in one pass and overwrites the persisted
// import stats with this run's totals.
func (e *Engine) RunFull(ctx context.Context) (*models.FullSyncResult, error) {
	records, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}

	result := &models.FullSyncResult{Total: len(records)}
	e.processSlice(ctx, records, &result.Imported, &result.Images, &result.Errors)

	stats := &models.ImportStats{
		ProductsImported:    result.Imported,
		ImagesImported:      result.Images,
		LastImportTimestamp: time.Now().Unix(),
	}
	if err := e.repo.SetImportStats(stats); err != nil {
		e.logger.WithError(err).Error("Failed to persist import stats")
	}

	e.logger.WithFields(logrus.Fields{
		"total":    result.Total,
		"imported": result.Imported,
		"images":   result.Images,
		"failed":   len(result.Errors),
	}).Info("Full import completed")

	if e.publisher != nil {
		e.publisher.PublishImportCompleted(ctx, result)
	}

	return result, nil
}

// TestCredentials performs the authorized catalog fetch and reports how many
// records the configured source currently serves.
func (e *Engine) TestCredentials(ctx context.Context) (*models.CredentialsTestResult, error) {
	records, err := e.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return &models.CredentialsTestResult{Reachable: true, Records: len(records)}, nil
}

func (e *Engine) loadCatalog(ctx context.Context) ([]models.CatalogRecord, error) {
	raw, err := e.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	return ParseCatalog(raw), nil
}

func (e *Engine) processSlice(ctx context.Context, records []models.CatalogRecord, imported, images *int, rowErrors *[]models.SyncRowError) {
	for _, record := range records {
		result, err := e.sync.Sync(ctx, record)
		if err != nil {
			e.logger.WithError(err).WithField("stock_code", record.StockCode).Error("Record sync failed")
			*rowErrors = append(*rowErrors, models.SyncRowError{
				StockCode: record.StockCode,
				Message:   err.Error(),
			})
			continue
		}
		*imported++
		if result.ImageAttached {
			*images++
		}
		if e.publisher != nil {
			e.publisher.PublishProductImported(ctx, result.ProductID, record.StockCode, result.Created)
		}
	}
}
