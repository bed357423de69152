package remote

import (
	"math"
	"strconv"
	"strings"

	"github.com/floodworks/sesloc/internal/record"
)

// Field alias tables for the externally managed backend schema. Keys are
// matched case-insensitively after trimming. This table is the single point
// of change when the backend renames a column.
var (
	aliasID          = []string{"id", "_id"}
	aliasClientID    = []string{"clientid", "client_id"}
	aliasCreatedAt   = []string{"createdat", "timestamp", "created_at"}
	aliasCategory    = []string{"category", "type"}
	aliasName        = []string{"name", "title"}
	aliasDescription = []string{"description", "desc", "details", "notes"}
	aliasLat         = []string{"lat", "latitude", "y"}
	aliasLng         = []string{"lng", "lon", "longitude", "long", "x"}
	aliasAccuracy    = []string{"accuracy", "acc"}
	aliasSource      = []string{"source"}
	aliasCreatedBy   = []string{"createdby", "created_by", "author"}
)

// Normalize maps a raw backend item onto a Record. It is pure and total:
// however malformed the input, every field gets a defined value (empty
// strings, NaN coordinates, nil accuracy) rather than an error.
func Normalize(raw map[string]any) record.Record {
	r := record.Record{
		ID:          asText(lookup(raw, aliasID)),
		ClientID:    asText(lookup(raw, aliasClientID)),
		CreatedAt:   asText(lookup(raw, aliasCreatedAt)),
		Name:        asText(lookup(raw, aliasName)),
		Description: asText(lookup(raw, aliasDescription)),
		Lat:         asNumber(lookup(raw, aliasLat)),
		Lng:         asNumber(lookup(raw, aliasLng)),
		Source:      asText(lookup(raw, aliasSource)),
		CreatedBy:   asText(lookup(raw, aliasCreatedBy)),
	}

	category := asText(lookup(raw, aliasCategory))
	if category == "" {
		category = string(record.CategoryOther)
	}
	r.Category = record.Category(category)

	if acc := asNumber(lookup(raw, aliasAccuracy)); !math.IsNaN(acc) {
		r.Accuracy = &acc
	}

	return r
}

// lookup finds the first alias present in the map, comparing keys
// case-insensitively after trimming.
func lookup(raw map[string]any, aliases []string) any {
	if raw == nil {
		return nil
	}
	for _, alias := range aliases {
		for k, v := range raw {
			if strings.ToLower(strings.TrimSpace(k)) == alias {
				return v
			}
		}
	}
	return nil
}

func asText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return ""
	}
}

// asNumber coerces backend values to float64, accepting numeric strings with
// either decimal separator. Unparseable values yield NaN.
func asNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		s := strings.ReplaceAll(strings.TrimSpace(t), ",", ".")
		if s == "" {
			return math.NaN()
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return math.NaN()
		}
		return n
	default:
		return math.NaN()
	}
}
