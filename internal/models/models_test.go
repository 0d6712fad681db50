package models

import (
	"testing"
)

func TestJSONValueScanRoundTrip(t *testing.T) {
	original := JSON{"external_sku": "EXT-1001", "count": "60"}

	value, err := original.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}

	var scanned JSON
	if err := scanned.Scan(value); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if scanned["external_sku"] != "EXT-1001" || scanned["count"] != "60" {
		t.Errorf("round trip lost data: %v", scanned)
	}
}

func TestJSONScanString(t *testing.T) {
	// SQLite hands back TEXT columns as string, not []byte
	var scanned JSON
	if err := scanned.Scan(`{"form":"Capsule"}`); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if scanned["form"] != "Capsule" {
		t.Errorf("unexpected value: %v", scanned)
	}
}

func TestJSONScanNil(t *testing.T) {
	var scanned JSON
	if err := scanned.Scan(nil); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if scanned == nil {
		t.Error("nil scan should produce an empty map")
	}
}

func TestTableNames(t *testing.T) {
	cases := []struct {
		got, want string
	}{
		{Product{}.TableName(), "products"},
		{Category{}.TableName(), "categories"},
		{MediaAsset{}.TableName(), "media_assets"},
		{Setting{}.TableName(), "settings"},
	}
	for _, c := range cases {
		if c.got != c.want {
			t.Errorf("table name %q, want %q", c.got, c.want)
		}
	}
}
