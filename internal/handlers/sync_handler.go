package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/catalog"
	"catalog-sync-service/internal/config"
	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

type SyncHandler struct {
	engine *catalog.Engine
	purger *catalog.Purger
	repo   *repository.StoreRepository
	cfg    *config.Config
	logger *logrus.Logger
}

func NewSyncHandler(engine *catalog.Engine, purger *catalog.Purger, repo *repository.StoreRepository, cfg *config.Config, logger *logrus.Logger) *SyncHandler {
	return &SyncHandler{
		engine: engine,
		purger: purger,
		repo:   repo,
		cfg:    cfg,
		logger: logger,
	}
}

// RunBatchSync imports one window of the remote catalog. The caller owns the
// cursor: repeat with offset advanced by windowSize until hasMore is false.
func (h *SyncHandler) RunBatchSync(c *gin.Context) {
	var req models.BatchSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "VALIDATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	if req.WindowSize == 0 {
		req.WindowSize = h.cfg.DefaultWindowSize
	}
	if req.WindowSize > h.cfg.MaxWindowSize {
		req.WindowSize = h.cfg.MaxWindowSize
	}

	result, err := h.engine.RunBatch(c.Request.Context(), req.Offset, req.WindowSize)
	if err != nil {
		h.respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.BatchSyncResponse{Success: true, Data: result})
}

// RunFullSync imports the entire remote catalog in one request and overwrites
// the cumulative import stats.
func (h *SyncHandler) RunFullSync(c *gin.Context) {
	result, err := h.engine.RunFull(c.Request.Context())
	if err != nil {
		h.respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.FullSyncResponse{Success: true, Data: result})
}

// GetStats returns the persisted cumulative import counters.
func (h *SyncHandler) GetStats(c *gin.Context) {
	stats, err := h.repo.GetImportStats()
	if err != nil {
		h.logger.WithError(err).Error("Failed to load import stats")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "INTERNAL_ERROR",
				Message: "Failed to load import stats",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.ImportStatsResponse{Success: true, Data: stats})
}

// Reset deletes every product in the store together with imported media and
// resets the import stats. Destructive and irreversible.
func (h *SyncHandler) Reset(c *gin.Context) {
	result, err := h.purger.PurgeAll(c.Request.Context())
	if err != nil {
		h.logger.WithError(err).Error("Catalog purge failed")
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "PURGE_FAILED",
				Message: "Failed to purge catalog",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.PurgeResponse{Success: true, Data: result})
}

// TestCredentials fetches the remote catalog with the configured credentials
// and reports reachability plus the current record count.
func (h *SyncHandler) TestCredentials(c *gin.Context) {
	result, err := h.engine.TestCredentials(c.Request.Context())
	if err != nil {
		var fetchErr *catalog.FetchError
		if errors.As(err, &fetchErr) {
			c.JSON(http.StatusOK, models.SuccessResponse{
				Success: true,
				Data:    &models.CredentialsTestResult{Reachable: false},
			})
			return
		}
		h.respondSyncError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuccessResponse{Success: true, Data: result})
}

func (h *SyncHandler) respondSyncError(c *gin.Context, err error) {
	var fetchErr *catalog.FetchError
	if errors.As(err, &fetchErr) {
		h.logger.WithError(err).Error("Remote catalog fetch failed")
		c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Success: false,
			Error: models.Error{
				Code:    "FETCH_FAILED",
				Message: err.Error(),
			},
		})
		return
	}

	h.logger.WithError(err).Error("Catalog sync failed")
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Success: false,
		Error: models.Error{
			Code:    "SYNC_FAILED",
			Message: "Catalog synchronization failed",
		},
	})
}
