package record

import (
	"math"
	"strings"
)

// coordEpsilon is the tolerance for coordinate equality in degrees.
const coordEpsilon = 1e-6

// Same reports whether two records denote the same logical record. A shared
// non-empty clientId is authoritative. The structural fallback (folded
// name, category and createdAt plus coordinates within coordEpsilon) exists
// only for records that predate clientId tagging or remote stores that strip
// unknown fields; two genuinely distinct records logged with the same name
// at the same spot and timestamp will collide under it.
//
// Same is pure, total and symmetric.
func Same(a, b Record) bool {
	if a.ClientID != "" && b.ClientID != "" && a.ClientID == b.ClientID {
		return true
	}

	return foldText(a.Name) == foldText(b.Name) &&
		foldText(string(a.Category)) == foldText(string(b.Category)) &&
		nearlyEqual(a.Lat, b.Lat) &&
		nearlyEqual(a.Lng, b.Lng) &&
		foldText(a.CreatedAt) == foldText(b.CreatedAt)
}

func foldText(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func nearlyEqual(a, b float64) bool {
	if math.IsNaN(a) || math.IsInf(a, 0) || math.IsNaN(b) || math.IsInf(b, 0) {
		return false
	}
	return math.Abs(a-b) <= coordEpsilon
}
