package record

// ClonePayload deep-copies a record payload. Only the shapes that occur
// in stored payloads are handled: maps of string to any, slices, and
// scalars. Scalars are copied by value; unknown reference types are
// passed through as-is.
func ClonePayload(p map[string]any) map[string]any {
	if p == nil {
		return nil
	}
	out := make(map[string]any, len(p))
	for k, v := range p {
		out[k] = CloneValue(v)
	}
	return out
}

// CloneValue deep-copies a single payload value.
func CloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return ClonePayload(t)
	case []any:
		out := make([]any, len(t))
		for i, e := range t {
			out[i] = CloneValue(e)
		}
		return out
	case []string:
		out := make([]string, len(t))
		copy(out, t)
		return out
	case []map[string]any:
		out := make([]map[string]any, len(t))
		for i, e := range t {
			out[i] = ClonePayload(e)
		}
		return out
	default:
		return v
	}
}
