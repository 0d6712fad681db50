package catalog

import "fmt"

// FetchError is fatal to the batch or import call that triggered it. It is
// surfaced to the caller verbatim.
type FetchError struct {
	Status  int
	Message string
}

func (e *FetchError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("catalog fetch failed: HTTP %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("catalog fetch failed: %s", e.Message)
}

// SyncError is an entity-level load/save failure for a single record. It is
// recorded against the record's stock code and never aborts the batch.
type SyncError struct {
	StockCode string
	Message   string
}

func (e *SyncError) Error() string {
	return fmt.Sprintf("sync failed for %s: %s", e.StockCode, e.Message)
}

// MediaError is an image fetch or persistence failure. It degrades the record
// to image_attached=false and never aborts.
type MediaError struct {
	URL     string
	Status  int
	Message string
}

func (e *MediaError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("media fetch failed for %s: HTTP %d: %s", e.URL, e.Status, e.Message)
	}
	return fmt.Sprintf("media fetch failed for %s: %s", e.URL, e.Message)
}
