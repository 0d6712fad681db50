package catalog

import (
	"context"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"catalog-sync-service/internal/models"
	"catalog-sync-service/internal/repository"
)

// MediaFilePrefix is the import naming convention. The purge sweep matches
// this prefix to find assets left over from prior imports.
const MediaFilePrefix = "catalog-"

// MediaService abstracts media acquisition for dependency injection and
// testing.
type MediaService interface {
	Acquire(ctx context.Context, sourceURL string, ownerID uuid.UUID) (*models.MediaAsset, error)
}

// HTTPMediaService downloads image binaries, persists them under the media
// directory, and records a MediaAsset row parent-linked to the owning product.
type HTTPMediaService struct {
	repo       *repository.StoreRepository
	mediaDir   string
	httpClient *http.Client
	logger     *logrus.Entry
}

func NewHTTPMediaService(repo *repository.StoreRepository, mediaDir string, logger *logrus.Logger) *HTTPMediaService {
	return &HTTPMediaService{
		repo:     repo,
		mediaDir: mediaDir,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger.WithField("component", "media-service"),
	}
}

// Acquire fetches the binary at sourceURL and persists it as a media asset
// owned by ownerID. The asset's content type is detected from the stored
// bytes; the remote server's declared Content-Type is logged but never
// trusted, since catalog image hosts routinely mislabel or omit it. Thumbnail
// metadata is derived synchronously before returning. All failures come back
// as *MediaError.
func (s *HTTPMediaService) Acquire(ctx context.Context, sourceURL string, ownerID uuid.UUID) (*models.MediaAsset, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &MediaError{URL: sourceURL, Status: resp.StatusCode, Message: resp.Status}
	}

	s.logger.WithFields(logrus.Fields{
		"url":           sourceURL,
		"declared_type": resp.Header.Get("Content-Type"),
	}).Debug("Downloading image")

	fileName := deriveFileName(sourceURL)
	filePath := filepath.Join(s.mediaDir, fileName)

	if err := os.MkdirAll(s.mediaDir, 0o755); err != nil {
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}

	out, err := os.Create(filePath)
	if err != nil {
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}

	size, err := io.Copy(out, resp.Body)
	closeErr := out.Close()
	if err != nil {
		os.Remove(filePath)
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}
	if closeErr != nil {
		os.Remove(filePath)
		return nil, &MediaError{URL: sourceURL, Message: closeErr.Error()}
	}

	// Detect the true content type from the stored file, not the response
	// header.
	detected, err := mimetype.DetectFile(filePath)
	if err != nil {
		os.Remove(filePath)
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}

	asset := &models.MediaAsset{
		ProductID:   ownerID,
		FileName:    fileName,
		FilePath:    filePath,
		SourceURL:   sourceURL,
		ContentType: detected.String(),
		SizeBytes:   size,
		Metadata:    thumbnailMetadata(filePath),
	}

	if err := s.repo.CreateMediaAsset(asset); err != nil {
		os.Remove(filePath)
		return nil, &MediaError{URL: sourceURL, Message: err.Error()}
	}

	s.logger.WithFields(logrus.Fields{
		"file":          fileName,
		"detected_type": asset.ContentType,
		"bytes":         size,
	}).Info("Image stored")

	return asset, nil
}

// deriveFileName builds a file name from the URL path under the import naming
// convention. A short random suffix keeps same-named files from distinct
// products apart.
func deriveFileName(sourceURL string) string {
	base := "image"
	if u, err := url.Parse(sourceURL); err == nil {
		if b := path.Base(u.Path); b != "" && b != "." && b != "/" {
			base = sanitizeFileName(b)
		}
	}
	return fmt.Sprintf("%s%s-%s", MediaFilePrefix, uuid.New().String()[:8], base)
}

func sanitizeFileName(name string) string {
	var result strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.' {
			result.WriteRune(r)
		}
	}
	if result.Len() == 0 {
		return "image"
	}
	return result.String()
}

// thumbnailMetadata decodes the stored image's dimensions for the thumbnail
// representation. Undecodable files just get no dimensions.
func thumbnailMetadata(filePath string) models.JSON {
	f, err := os.Open(filePath)
	if err != nil {
		return models.JSON{}
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return models.JSON{}
	}

	return models.JSON{
		"width":  cfg.Width,
		"height": cfg.Height,
		"thumbnail": map[string]interface{}{
			"width":  thumbDim(cfg.Width),
			"height": thumbDim(cfg.Height),
		},
	}
}

func thumbDim(d int) int {
	if d > 150 {
		return 150
	}
	return d
}
