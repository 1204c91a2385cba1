package record

import (
	docflow "github.com/gbacskai/docflow4-sub000"
)

// Item is one stored version of a logical record.
type Item struct {
	docflow.Entity

	// ID identifies the logical record. All versions share it.
	ID string `json:"id"`

	// Version is an RFC 3339 timestamp. It is the sort key within a
	// record's history and the tie-breaker when drift is repaired.
	Version string `json:"version"`

	// Active marks the single current version of the record.
	Active bool `json:"active"`

	// Payload is the free-form record body.
	Payload map[string]any `json:"payload"`
}

// Clone returns a deep copy of the item. The payload is cloned over the
// known value shapes (map, slice, scalar) rather than by re-serializing.
func (it *Item) Clone() *Item {
	cp := *it
	cp.Payload = ClonePayload(it.Payload)
	return &cp
}

// Key addresses exactly one stored item.
type Key struct {
	ID      string
	Version string
}

// Filter selects items within a collection. The zero value matches all
// items. ID and ActiveOnly may be combined.
type Filter struct {
	// ID restricts the query to one logical record.
	ID string

	// ActiveOnly restricts the query to items with the active flag set.
	ActiveOnly bool
}

// Patch is a partial update applied to one stored item. A nil Active
// leaves the flag untouched; Payload entries are merged key-by-key.
type Patch struct {
	Active  *bool
	Payload map[string]any
}

// Apply merges the patch into the item in place.
func (p Patch) Apply(it *Item) {
	if p.Active != nil {
		it.Active = *p.Active
	}
	if len(p.Payload) > 0 {
		if it.Payload == nil {
			it.Payload = make(map[string]any, len(p.Payload))
		}
		for k, v := range p.Payload {
			it.Payload[k] = v
		}
	}
	it.Touch()
}

// Inactive returns a Patch that clears the active flag.
func Inactive() Patch {
	f := false
	return Patch{Active: &f}
}
