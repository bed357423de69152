// Package record defines the location record data model and the identity
// rules used to deduplicate records between the local queue and the remote
// store.
package record

import (
	"errors"
	"math"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Category classifies a logged location.
type Category string

const (
	CategoryDrain       Category = "Drain"
	CategoryBoatLaunch  Category = "Boat launch"
	CategoryFloodProne  Category = "Flood prone"
	CategoryAccessIssue Category = "Access issue"
	CategoryOther       Category = "Other"
)

// Categories returns all known categories in display order.
func Categories() []Category {
	return []Category{
		CategoryDrain,
		CategoryBoatLaunch,
		CategoryFloodProne,
		CategoryAccessIssue,
		CategoryOther,
	}
}

// ParseCategory resolves a user-supplied category string case-insensitively.
// Unknown values resolve to CategoryOther.
func ParseCategory(s string) Category {
	needle := strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories() {
		if strings.ToLower(string(c)) == needle {
			return c
		}
	}
	return CategoryOther
}

// Location fix sources.
const (
	SourceGPS = "gps"
	SourcePin = "pin"
)

// Record is a logged point of interest. JSON tags match the backend wire
// format. ClientID is assigned once at creation and never regenerated on
// retry; it is the idempotency key for deduplication. ID is display-facing
// only and is never trusted for identity.
type Record struct {
	ID          string   `json:"id"`
	ClientID    string   `json:"clientId"`
	CreatedAt   string   `json:"createdAt"`
	Category    Category `json:"category"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Lat         float64  `json:"lat"`
	Lng         float64  `json:"lng"`
	Accuracy    *float64 `json:"accuracy,omitempty"`
	Source      string   `json:"source"`
	CreatedBy   string   `json:"createdBy"`
}

// Fix is a location capture handed to the core by the GPS/pin collaborator.
// Accuracy is nil when the source cannot estimate one (pin placement).
type Fix struct {
	Lat      float64
	Lng      float64
	Accuracy *float64
	Source   string
}

// Draft is the user input for a new record before ids and timestamps are
// assigned.
type Draft struct {
	Category    Category
	Name        string
	Description string
	Fix         Fix
}

// ErrInvalidDraft is returned by New when the draft fails CanSubmit.
var ErrInvalidDraft = errors.New("draft needs a name and a finite location fix")

// CanSubmit reports whether a draft is complete enough to save: a non-blank
// name and a finite coordinate pair. Both the UI layer and New consult this
// single predicate.
func CanSubmit(d Draft) bool {
	if strings.TrimSpace(d.Name) == "" {
		return false
	}
	return finite(d.Fix.Lat) && finite(d.Fix.Lng)
}

// New creates a Record from a draft, assigning ids and the creation
// timestamp. The clientId assigned here must survive every retry of this
// logical record.
func New(d Draft, createdBy string) (Record, error) {
	if !CanSubmit(d) {
		return Record{}, ErrInvalidDraft
	}

	source := d.Fix.Source
	if source == "" {
		source = SourceGPS
	}

	accuracy := d.Fix.Accuracy
	if source == SourcePin {
		// Pin placements carry no accuracy estimate.
		accuracy = nil
	}

	return Record{
		ID:          ulid.Make().String(),
		ClientID:    ulid.Make().String(),
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
		Category:    ParseCategory(string(d.Category)),
		Name:        strings.TrimSpace(d.Name),
		Description: strings.TrimSpace(d.Description),
		Lat:         Round6(d.Fix.Lat),
		Lng:         Round6(d.Fix.Lng),
		Accuracy:    accuracy,
		Source:      source,
		CreatedBy:   strings.TrimSpace(createdBy),
	}, nil
}

// Round6 rounds a coordinate to 6 decimal places (~0.1m), the precision
// records are captured and compared at.
func Round6(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
