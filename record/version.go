package record

import (
	"strings"
	"time"
)

// FormatVersion renders a timestamp as a record version string.
func FormatVersion(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

// ParseVersion parses a record version string.
func ParseVersion(v string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, v)
}

// CompareVersions orders two version strings. It returns -1, 0 or +1 as
// a is before, equal to, or after b.
//
// Versions are compared as timestamps when both parse; RFC3339Nano trims
// trailing fraction zeros, so a plain string compare would misorder
// fractions of different lengths. The string compare remains as the
// deterministic tie-break for equal instants and unparseable input.
func CompareVersions(a, b string) int {
	ta, errA := ParseVersion(a)
	tb, errB := ParseVersion(b)
	if errA == nil && errB == nil {
		if ta.Before(tb) {
			return -1
		}
		if ta.After(tb) {
			return 1
		}
	}
	return strings.Compare(a, b)
}
