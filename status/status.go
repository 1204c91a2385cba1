// Package status maps a document's free-form payload to a normalized
// status string. The mapping is a priority-ordered set of heuristics over
// a schemaless payload, not a validated field: explicit status fields
// win, then boolean markers, then the presence of uploaded files, and
// finally the queued default.
package status

import "strings"

// Candidate payload fields checked for an explicit status, in priority
// order. The first non-empty value wins.
var candidateFields = []string{
	"status",
	"documentStatus",
	"requestStatus",
	"currentStatus",
}

// Well-known status values produced by the fallback heuristics.
const (
	Queued      = "queued"
	Completed   = "completed"
	Confirmed   = "confirmed"
	NotRequired = "notrequired"
)

// Extract returns the normalized status for a document payload.
func Extract(payload map[string]any) string {
	for _, field := range candidateFields {
		if s, ok := payload[field].(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}

	if b, ok := payload["confirmed"].(bool); ok && b {
		return Confirmed
	}
	if b, ok := payload["notrequired"].(bool); ok && b {
		return NotRequired
	}

	if hasFiles(payload["files"]) {
		return Completed
	}

	return Queued
}

// hasFiles reports whether a files field is present and non-empty. File
// lists arrive either as a raw string or as a slice, depending on how the
// payload was stored.
func hasFiles(v any) bool {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t) != ""
	case []string:
		return len(t) > 0
	case []any:
		return len(t) > 0
	default:
		return false
	}
}
