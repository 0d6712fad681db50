package catalog

import (
	"strings"
	"testing"
)

func TestParseCatalogBasic(t *testing.T) {
	raw := buildCatalog(3)

	records := ParseCatalog(raw)
	if len(records) != 3 {
		t.Fatalf("expected 3 records, got %d", len(records))
	}

	first := records[0]
	if first.StockCode != "PN-0001" {
		t.Errorf("expected stock code PN-0001, got %q", first.StockCode)
	}
	if first.RetailPrice != "24.99" {
		t.Errorf("expected retail price 24.99, got %q", first.RetailPrice)
	}
	if first.Category != "Joint Health" {
		t.Errorf("expected category Joint Health, got %q", first.Category)
	}
	if first.ExternalSKU != "EXT-0001" {
		t.Errorf("expected external SKU EXT-0001, got %q", first.ExternalSKU)
	}
}

func TestParseCatalogDiscardsHeader(t *testing.T) {
	records := ParseCatalog(buildCatalog(1))
	for _, r := range records {
		if r.StockCode == "stock_code" {
			t.Fatal("header row leaked into parsed records")
		}
	}
}

func TestParseCatalogSkipsShortRows(t *testing.T) {
	raw := strings.Join([]string{
		catalogHeader,
		catalogRow(1),
		"PN-BAD,Only,Ten,Fields,In,This,Row,Not,Six,Teen",
		catalogRow(2),
	}, "\n")

	records := ParseCatalog(raw)
	if len(records) != 2 {
		t.Fatalf("expected short row to be skipped, got %d records", len(records))
	}
	if records[0].StockCode != "PN-0001" || records[1].StockCode != "PN-0002" {
		t.Errorf("surviving rows out of order: %q, %q", records[0].StockCode, records[1].StockCode)
	}
}

func TestParseCatalogPreservesOrder(t *testing.T) {
	raw := buildCatalog(50)
	first := ParseCatalog(raw)
	second := ParseCatalog(raw)

	if len(first) != 50 || len(second) != 50 {
		t.Fatalf("expected 50 records, got %d and %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("re-parse diverged at index %d", i)
		}
	}
}

func TestParseCatalogQuotedFields(t *testing.T) {
	raw := catalogHeader + "\n" +
		`PN-2001,"Fish Oil, Extra Strength",10.00,24.99,14.99,,,"Heart Health, Joint Health",Softgel,90,"Contains EPA, DHA",Fish oil,Benefits,Directions,Warnings,EXT-2001` + "\n"

	records := ParseCatalog(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].ProductName != "Fish Oil, Extra Strength" {
		t.Errorf("quoted comma mangled: %q", records[0].ProductName)
	}
	if records[0].Category != "Heart Health, Joint Health" {
		t.Errorf("quoted category mangled: %q", records[0].Category)
	}
}

func TestParseCatalogTrimsWhitespace(t *testing.T) {
	raw := catalogHeader + "\n" +
		" PN-3001 , Magnesium ,10.00,24.99,14.99,,, Sleep ,Tablet,120,Desc,Ing,Ben,Dir,Warn,EXT-3001\n"

	records := ParseCatalog(raw)
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].StockCode != "PN-3001" {
		t.Errorf("stock code not trimmed: %q", records[0].StockCode)
	}
	if records[0].Category != "Sleep" {
		t.Errorf("category not trimmed: %q", records[0].Category)
	}
}

func TestParseCatalogEmptyInput(t *testing.T) {
	if records := ParseCatalog(""); len(records) != 0 {
		t.Fatalf("expected no records for empty input, got %d", len(records))
	}
	if records := ParseCatalog(catalogHeader + "\n"); len(records) != 0 {
		t.Fatalf("expected no records for header-only input, got %d", len(records))
	}
}
