package events

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/Tesseract-Nexus/go-shared/events"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/models"
)

// Publisher wraps the go-shared events publisher for catalog sync events
type Publisher struct {
	publisher *events.Publisher
	tenantID  string
	logger    *logrus.Entry
}

// NewPublisher creates a new catalog events publisher
func NewPublisher(logger *logrus.Logger) (*Publisher, error) {
	natsURL := os.Getenv("NATS_URL")
	if natsURL == "" {
		// Default to GKE internal NATS service URL
		natsURL = "nats://nats.nats.svc.cluster.local:4222"
	}

	tenantID := os.Getenv("TENANT_ID")
	if tenantID == "" {
		tenantID = "default"
	}

	config := events.DefaultPublisherConfig(natsURL)
	config.Name = "catalog-sync-service"

	publisher, err := events.NewPublisher(config, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create events publisher: %w", err)
	}

	// Ensure the products stream exists
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := publisher.EnsureStream(ctx, events.StreamProducts, []string{"product.>"}); err != nil {
		logger.WithError(err).Warn("Failed to ensure products stream (may already exist)")
	}

	return &Publisher{
		publisher: publisher,
		tenantID:  tenantID,
		logger:    logger.WithField("component", "catalog-events"),
	}, nil
}

// Close closes the NATS connection
func (p *Publisher) Close() {
	if p.publisher != nil {
		p.publisher.Close()
	}
}

// PublishProductImported publishes a product.created or product.updated event
// for a single synchronized catalog record
func (p *Publisher) PublishProductImported(ctx context.Context, productID uuid.UUID, stockCode string, created bool) error {
	eventType := events.ProductUpdated
	changeType := "updated"
	if created {
		eventType = events.ProductCreated
		changeType = "created"
	}

	event := events.NewProductEvent(eventType, p.tenantID)
	event.SourceID = uuid.New().String()
	event.ProductID = productID.String()
	event.SKU = stockCode
	event.ChangeType = changeType
	event.NewValue = map[string]interface{}{
		"stock_code": stockCode,
		"source":     "catalog-sync",
	}
	return p.publish(ctx, event)
}

// PublishBatchCompleted publishes a summary event for a finished batch window
func (p *Publisher) PublishBatchCompleted(ctx context.Context, offset, windowSize int, result *models.BatchSyncResult) error {
	event := events.NewProductEvent("product.catalog_batch_completed", p.tenantID)
	event.SourceID = uuid.New().String()
	event.ChangeType = "catalog_batch_completed"
	event.NewValue = map[string]interface{}{
		"offset":      offset,
		"window_size": windowSize,
		"imported":    result.Imported,
		"images":      result.Images,
		"total":       result.Total,
		"has_more":    result.HasMore,
		"errors":      len(result.Errors),
	}
	return p.publish(ctx, event)
}

// PublishImportCompleted publishes a summary event for a full catalog import
func (p *Publisher) PublishImportCompleted(ctx context.Context, result *models.FullSyncResult) error {
	event := events.NewProductEvent("product.catalog_import_completed", p.tenantID)
	event.SourceID = uuid.New().String()
	event.ChangeType = "catalog_import_completed"
	event.NewValue = map[string]interface{}{
		"imported": result.Imported,
		"images":   result.Images,
		"total":    result.Total,
		"errors":   len(result.Errors),
	}
	return p.publish(ctx, event)
}

// PublishCatalogPurged publishes an event after the catalog has been purged
func (p *Publisher) PublishCatalogPurged(ctx context.Context, result *models.PurgeResult) error {
	event := events.NewProductEvent("product.catalog_purged", p.tenantID)
	event.SourceID = uuid.New().String()
	event.ChangeType = "catalog_purged"
	event.NewValue = map[string]interface{}{
		"deleted_products": result.DeletedProducts,
		"deleted_media":    result.DeletedMedia,
	}
	return p.publish(ctx, event)
}

// publish is a helper that logs and publishes events asynchronously
func (p *Publisher) publish(ctx context.Context, event *events.ProductEvent) error {
	// Publish asynchronously to not block the sync loop
	go func() {
		pubCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := p.publisher.PublishProduct(pubCtx, event); err != nil {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).WithError(err).Error("Failed to publish catalog event")
		} else {
			p.logger.WithFields(logrus.Fields{
				"eventType": event.EventType,
				"productID": event.ProductID,
				"tenantID":  event.TenantID,
			}).Info("Catalog event published successfully")
		}
	}()

	return nil
}
