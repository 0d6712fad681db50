package models

// CatalogColumnCount is the number of columns in the remote dataset. Rows with
// fewer fields are dropped during parsing.
const CatalogColumnCount = 16

// CatalogRecord is one parsed row of the remote catalog, in source column
// order. Immutable once parsed.
type CatalogRecord struct {
	StockCode       string `json:"stockCode"`
	ProductName     string `json:"productName"`
	WholesalePrice  string `json:"wholesalePrice"`
	RetailPrice     string `json:"retailPrice"`
	Profit          string `json:"profit"`
	ImageURL        string `json:"imageUrl"`
	ImagePreviewURL string `json:"imagePreviewUrl"`
	Category        string `json:"category"`
	Form            string `json:"form"`
	Count           string `json:"count"`
	Description     string `json:"description"`
	Ingredients     string `json:"ingredients"`
	Benefits        string `json:"benefits"`
	Directions      string `json:"directions"`
	Warnings        string `json:"warnings"`
	ExternalSKU     string `json:"externalSku"`
}

// ImportStats holds the cumulative import counters persisted as settings rows.
// A full import overwrites them; batch callers accumulate per-batch results
// themselves.
type ImportStats struct {
	ProductsImported    int   `json:"productsImported"`
	ImagesImported      int   `json:"imagesImported"`
	LastImportTimestamp int64 `json:"lastImportTimestamp"`
}

// SyncRowError records a single record that failed to sync. It never aborts
// the batch that produced it.
type SyncRowError struct {
	StockCode string `json:"stockCode"`
	Message   string `json:"message"`
}

// BatchSyncRequest is the caller-driven cursor: the engine holds no cross-call
// state, so the caller repeats with offset += windowSize until hasMore is
// false. A zero windowSize takes the configured default.
type BatchSyncRequest struct {
	Offset     int `json:"offset" binding:"min=0"`
	WindowSize int `json:"windowSize" binding:"omitempty,min=1"`
}

// BatchSyncResult is the outcome of one bounded batch.
type BatchSyncResult struct {
	Imported int            `json:"imported"`
	Images   int            `json:"images"`
	Total    int            `json:"total"`
	HasMore  bool           `json:"hasMore"`
	Errors   []SyncRowError `json:"errors,omitempty"`
}

// FullSyncResult is the outcome of a whole-catalog import.
type FullSyncResult struct {
	Imported int            `json:"imported"`
	Images   int            `json:"images"`
	Total    int            `json:"total"`
	Errors   []SyncRowError `json:"errors,omitempty"`
}

// PurgeResult reports what a purge removed.
type PurgeResult struct {
	DeletedProducts int `json:"deletedProducts"`
	DeletedMedia    int `json:"deletedMedia"`
}

// CredentialsTestResult reports whether the remote catalog is reachable with
// the configured credentials.
type CredentialsTestResult struct {
	Reachable bool `json:"reachable"`
	Records   int  `json:"records"`
}

type BatchSyncResponse struct {
	Success bool             `json:"success"`
	Data    *BatchSyncResult `json:"data"`
}

type FullSyncResponse struct {
	Success bool            `json:"success"`
	Data    *FullSyncResult `json:"data"`
}

type ImportStatsResponse struct {
	Success bool         `json:"success"`
	Data    *ImportStats `json:"data"`
}

type PurgeResponse struct {
	Success bool         `json:"success"`
	Data    *PurgeResult `json:"data"`
}
