package record

import (
	"math"
	"strings"
	"testing"
	"time"
)

func validDraft() Draft {
	return Draft{
		Category:    CategoryDrain,
		Name:        "Culvert under Wilson St",
		Description: "Blocks quickly in heavy rain",
		Fix:         Fix{Lat: -28.8091234, Lng: 153.2764321, Source: SourceGPS},
	}
}

func TestCanSubmit_RequiresName(t *testing.T) {
	d := validDraft()
	d.Name = "   "
	if CanSubmit(d) {
		t.Error("expected blank name to be rejected")
	}
}

func TestCanSubmit_RequiresFiniteFix(t *testing.T) {
	d := validDraft()
	d.Fix.Lat = math.NaN()
	if CanSubmit(d) {
		t.Error("expected NaN latitude to be rejected")
	}

	d = validDraft()
	d.Fix.Lng = math.Inf(1)
	if CanSubmit(d) {
		t.Error("expected infinite longitude to be rejected")
	}
}

func TestNew_AssignsIdentity(t *testing.T) {
	rec, err := New(validDraft(), "unit-12")
	if err != nil {
		t.Fatal(err)
	}

	if rec.ID == "" || rec.ClientID == "" {
		t.Errorf("expected ids to be assigned, got id=%q clientId=%q", rec.ID, rec.ClientID)
	}
	if rec.ID == rec.ClientID {
		t.Error("expected distinct id and clientId")
	}
	if _, err := time.Parse(time.RFC3339, rec.CreatedAt); err != nil {
		t.Errorf("createdAt %q is not RFC3339: %v", rec.CreatedAt, err)
	}
	if rec.CreatedBy != "unit-12" {
		t.Errorf("expected createdBy unit-12, got %q", rec.CreatedBy)
	}
}

func TestNew_RoundsCoordinates(t *testing.T) {
	rec, err := New(validDraft(), "")
	if err != nil {
		t.Fatal(err)
	}

	if rec.Lat != -28.809123 {
		t.Errorf("expected lat rounded to 6 decimals, got %v", rec.Lat)
	}
	if rec.Lng != 153.276432 {
		t.Errorf("expected lng rounded to 6 decimals, got %v", rec.Lng)
	}
}

func TestNew_PinFixDropsAccuracy(t *testing.T) {
	acc := 12.5
	d := validDraft()
	d.Fix.Accuracy = &acc
	d.Fix.Source = SourcePin

	rec, err := New(d, "")
	if err != nil {
		t.Fatal(err)
	}

	if rec.Accuracy != nil {
		t.Errorf("expected pin fix to carry no accuracy, got %v", *rec.Accuracy)
	}
	if rec.Source != SourcePin {
		t.Errorf("expected source pin, got %q", rec.Source)
	}
}

func TestNew_RejectsInvalidDraft(t *testing.T) {
	d := validDraft()
	d.Name = ""

	if _, err := New(d, ""); err != ErrInvalidDraft {
		t.Errorf("expected ErrInvalidDraft, got %v", err)
	}
}

func TestNew_TrimsText(t *testing.T) {
	d := validDraft()
	d.Name = "  Boat ramp  "
	d.Description = " slippery at low tide "

	rec, err := New(d, " crew-3 ")
	if err != nil {
		t.Fatal(err)
	}

	if rec.Name != "Boat ramp" {
		t.Errorf("expected trimmed name, got %q", rec.Name)
	}
	if rec.Description != "slippery at low tide" {
		t.Errorf("expected trimmed description, got %q", rec.Description)
	}
	if rec.CreatedBy != "crew-3" {
		t.Errorf("expected trimmed createdBy, got %q", rec.CreatedBy)
	}
}

func TestParseCategory(t *testing.T) {
	cases := []struct {
		in   string
		want Category
	}{
		{"Drain", CategoryDrain},
		{"  boat launch ", CategoryBoatLaunch},
		{"FLOOD PRONE", CategoryFloodProne},
		{"access issue", CategoryAccessIssue},
		{"Other", CategoryOther},
		{"carpark", CategoryOther},
		{"", CategoryOther},
	}

	for _, tc := range cases {
		if got := ParseCategory(tc.in); got != tc.want {
			t.Errorf("ParseCategory(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestCategories_CoversKnownSet(t *testing.T) {
	got := Categories()
	if len(got) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(got))
	}
	joined := ""
	for _, c := range got {
		joined += string(c) + "|"
	}
	for _, want := range []string{"Drain", "Boat launch", "Flood prone", "Access issue", "Other"} {
		if !strings.Contains(joined, want+"|") {
			t.Errorf("missing category %q", want)
		}
	}
}
