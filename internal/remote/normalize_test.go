package remote

import (
	"math"
	"testing"

	"github.com/floodworks/sesloc/internal/record"
)

func TestNormalize_CanonicalFields(t *testing.T) {
	raw := map[string]any{
		"id":          "r1",
		"clientId":    "c1",
		"createdAt":   "2024-01-01T00:00:00Z",
		"category":    "Drain",
		"name":        "Drain A",
		"description": "desc",
		"lat":         -28.809,
		"lng":         153.276,
		"accuracy":    8.0,
		"source":      "gps",
		"createdBy":   "crew-3",
	}

	rec := Normalize(raw)

	if rec.ID != "r1" || rec.ClientID != "c1" {
		t.Errorf("ids not mapped: %+v", rec)
	}
	if rec.Category != record.CategoryDrain {
		t.Errorf("expected category Drain, got %q", rec.Category)
	}
	if rec.Lat != -28.809 || rec.Lng != 153.276 {
		t.Errorf("coordinates not mapped: lat=%v lng=%v", rec.Lat, rec.Lng)
	}
	if rec.Accuracy == nil || *rec.Accuracy != 8.0 {
		t.Errorf("accuracy not mapped: %v", rec.Accuracy)
	}
	if rec.CreatedBy != "crew-3" {
		t.Errorf("createdBy not mapped: %q", rec.CreatedBy)
	}
}

func TestNormalize_AliasLookupIsCaseInsensitive(t *testing.T) {
	raw := map[string]any{
		"_id":        "r2",
		"Client_Id":  "c2",
		"TIMESTAMP":  "2024-02-02T00:00:00Z",
		"type":       "Boat launch",
		"Title":      "Ramp",
		"notes":      "note text",
		" latitude ": -28.1,
		"LON":        153.2,
		"acc":        3.5,
	}

	rec := Normalize(raw)

	if rec.ID != "r2" {
		t.Errorf("expected _id alias, got %q", rec.ID)
	}
	if rec.ClientID != "c2" {
		t.Errorf("expected client_id alias, got %q", rec.ClientID)
	}
	if rec.CreatedAt != "2024-02-02T00:00:00Z" {
		t.Errorf("expected timestamp alias, got %q", rec.CreatedAt)
	}
	if rec.Category != record.Category("Boat launch") {
		t.Errorf("expected type alias, got %q", rec.Category)
	}
	if rec.Name != "Ramp" {
		t.Errorf("expected title alias, got %q", rec.Name)
	}
	if rec.Description != "note text" {
		t.Errorf("expected notes alias, got %q", rec.Description)
	}
	if rec.Lat != -28.1 || rec.Lng != 153.2 {
		t.Errorf("expected latitude/lon aliases, got lat=%v lng=%v", rec.Lat, rec.Lng)
	}
	if rec.Accuracy == nil || *rec.Accuracy != 3.5 {
		t.Errorf("expected acc alias, got %v", rec.Accuracy)
	}
}

func TestNormalize_StringCoordinates(t *testing.T) {
	// A store that serializes numbers as strings, with no alias fallback
	// available for lat.
	raw := map[string]any{
		"lat": "-28.809000",
		"lng": "153,276",
	}

	rec := Normalize(raw)

	if rec.Lat != -28.809 {
		t.Errorf("expected string lat parsed to -28.809, got %v", rec.Lat)
	}
	if rec.Lng != 153.276 {
		t.Errorf("expected comma-decimal lng parsed to 153.276, got %v", rec.Lng)
	}
}

func TestNormalize_TotalOnMalformedInput(t *testing.T) {
	cases := []map[string]any{
		nil,
		{},
		{"lat": "not a number", "lng": []any{1, 2}, "accuracy": map[string]any{}},
		{"name": 42, "category": true, "clientId": nil},
	}

	for i, raw := range cases {
		rec := Normalize(raw)

		if rec.Category == "" {
			t.Errorf("case %d: expected category default, got empty", i)
		}
		if !math.IsNaN(rec.Lat) && raw != nil && raw["lat"] != nil {
			t.Errorf("case %d: expected NaN lat for malformed input, got %v", i, rec.Lat)
		}
	}
}

func TestNormalize_MissingAccuracyIsNil(t *testing.T) {
	rec := Normalize(map[string]any{"name": "x"})
	if rec.Accuracy != nil {
		t.Errorf("expected nil accuracy when absent, got %v", rec.Accuracy)
	}
}

func TestNormalize_CategoryDefaultsToOther(t *testing.T) {
	rec := Normalize(map[string]any{"name": "x"})
	if rec.Category != record.CategoryOther {
		t.Errorf("expected Other default, got %q", rec.Category)
	}
}
