package catalog

import (
	"encoding/csv"
	"io"
	"strings"

	"catalog-sync-service/internal/models"
)

// ParseCatalog turns raw delimited text into ordered CatalogRecord values.
// The first row is a header and is discarded without validation. Rows with
// fewer than models.CatalogColumnCount fields are skipped silently: the source
// feed occasionally emits truncated rows and dropping them keeps a single bad
// row from poisoning the import. Re-parsing the same text always yields the
// same sequence.
func ParseCatalog(raw string) []models.CatalogRecord {
	reader := csv.NewReader(strings.NewReader(raw))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	// Header row
	if _, err := reader.Read(); err != nil {
		return nil
	}

	var records []models.CatalogRecord
	for {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			// Malformed row, same leniency as a short one
			continue
		}
		if len(fields) < models.CatalogColumnCount {
			continue
		}

		records = append(records, models.CatalogRecord{
			StockCode:       strings.TrimSpace(fields[0]),
			ProductName:     strings.TrimSpace(fields[1]),
			WholesalePrice:  strings.TrimSpace(fields[2]),
			RetailPrice:     strings.TrimSpace(fields[3]),
			Profit:          strings.TrimSpace(fields[4]),
			ImageURL:        strings.TrimSpace(fields[5]),
			ImagePreviewURL: strings.TrimSpace(fields[6]),
			Category:        strings.TrimSpace(fields[7]),
			Form:            strings.TrimSpace(fields[8]),
			Count:           strings.TrimSpace(fields[9]),
			Description:     strings.TrimSpace(fields[10]),
			Ingredients:     strings.TrimSpace(fields[11]),
			Benefits:        strings.TrimSpace(fields[12]),
			Directions:      strings.TrimSpace(fields[13]),
			Warnings:        strings.TrimSpace(fields[14]),
			ExternalSKU:     strings.TrimSpace(fields[15]),
		})
	}

	return records
}
