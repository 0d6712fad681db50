package catalog

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"

	"github.com/google/uuid"

	"catalog-sync-service/internal/models"
)

func pngBytes(t *testing.T, width, height int) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, width, height))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestAcquireDetectsTrueContentType(t *testing.T) {
	repo := testRepo()
	mediaDir := t.TempDir()
	img := pngBytes(t, 8, 8)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Deliberately wrong declared type; detection must come from the bytes
		w.Header().Set("Content-Type", "text/plain")
		w.Write(img)
	}))
	defer server.Close()

	service := NewHTTPMediaService(repo, mediaDir, testLogger())
	owner := uuid.New()

	asset, err := service.Acquire(context.Background(), server.URL+"/images/pn-1001.png", owner)
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if asset.ContentType != "image/png" {
		t.Errorf("expected detected type image/png, got %q", asset.ContentType)
	}
	if asset.ProductID != owner {
		t.Errorf("asset not linked to owner")
	}
	if !strings.HasPrefix(asset.FileName, MediaFilePrefix) {
		t.Errorf("file name %q missing import prefix", asset.FileName)
	}
	if !strings.HasSuffix(asset.FileName, "pn-1001.png") {
		t.Errorf("file name %q should derive from URL path", asset.FileName)
	}
	if asset.SizeBytes != int64(len(img)) {
		t.Errorf("expected size %d, got %d", len(img), asset.SizeBytes)
	}

	data, err := os.ReadFile(asset.FilePath)
	if err != nil {
		t.Fatalf("stored file unreadable: %v", err)
	}
	if !bytes.Equal(data, img) {
		t.Error("stored bytes differ from downloaded bytes")
	}

	stored, err := repo.GetMediaAssetByID(asset.ID)
	if err != nil {
		t.Fatalf("asset row missing: %v", err)
	}
	if stored.SourceURL != server.URL+"/images/pn-1001.png" {
		t.Errorf("source URL not recorded: %q", stored.SourceURL)
	}
}

func TestAcquireRecordsThumbnailDimensions(t *testing.T) {
	repo := testRepo()
	service := NewHTTPMediaService(repo, t.TempDir(), testLogger())
	img := pngBytes(t, 300, 10)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(img)
	}))
	defer server.Close()

	asset, err := service.Acquire(context.Background(), server.URL+"/wide.png", uuid.New())
	if err != nil {
		t.Fatalf("acquire failed: %v", err)
	}

	if asset.Metadata["width"] != 300 || asset.Metadata["height"] != 10 {
		t.Errorf("unexpected dimensions: %v x %v", asset.Metadata["width"], asset.Metadata["height"])
	}
	thumb, ok := asset.Metadata["thumbnail"].(map[string]interface{})
	if !ok {
		t.Fatalf("thumbnail metadata missing: %v", asset.Metadata)
	}
	if thumb["width"] != 150 {
		t.Errorf("thumbnail width should cap at 150, got %v", thumb["width"])
	}
	if thumb["height"] != 10 {
		t.Errorf("thumbnail height should keep small dimension, got %v", thumb["height"])
	}
}

func TestAcquireNon200IsMediaError(t *testing.T) {
	repo := testRepo()
	mediaDir := t.TempDir()
	service := NewHTTPMediaService(repo, mediaDir, testLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	_, err := service.Acquire(context.Background(), server.URL+"/gone.jpg", uuid.New())

	var mediaErr *MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T", err)
	}
	if mediaErr.Status != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", mediaErr.Status)
	}

	var count int64
	repo.DB().Model(&models.MediaAsset{}).Count(&count)
	if count != 0 {
		t.Errorf("no asset row should exist after a failed download, got %d", count)
	}

	entries, _ := os.ReadDir(mediaDir)
	if len(entries) != 0 {
		t.Errorf("no file should remain after a failed download, got %d", len(entries))
	}
}

func TestAcquireTransportErrorIsMediaError(t *testing.T) {
	repo := testRepo()
	service := NewHTTPMediaService(repo, t.TempDir(), testLogger())

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	_, err := service.Acquire(context.Background(), server.URL+"/x.jpg", uuid.New())
	var mediaErr *MediaError
	if !errors.As(err, &mediaErr) {
		t.Fatalf("expected *MediaError, got %T", err)
	}
}

func TestDeriveFileNameSanitizes(t *testing.T) {
	name := deriveFileName("https://img.example/path/My%20File!(1).jpg")
	if !strings.HasPrefix(name, MediaFilePrefix) {
		t.Errorf("missing prefix: %q", name)
	}
	for _, r := range name {
		ok := (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' || r == '.'
		if !ok {
			t.Fatalf("unsanitized rune %q in %q", r, name)
		}
	}
}

func TestDeriveFileNameFallsBack(t *testing.T) {
	name := deriveFileName("https://img.example/")
	if !strings.HasPrefix(name, MediaFilePrefix) {
		t.Errorf("missing prefix: %q", name)
	}
	if !strings.HasSuffix(name, "image") {
		t.Errorf("expected fallback base name, got %q", name)
	}
}
