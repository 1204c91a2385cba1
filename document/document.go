package document

import (
	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// Payload keys used by the documents collection.
const (
	keyProjectID = "projectId"
	keyTypeID    = "typeId"
	keyFormData  = "formData"
)

// Document is one versioned document record. Data holds the form payload
// the status extractor reads.
type Document struct {
	docflow.Entity

	ID        string
	Version   string
	Active    bool
	ProjectID string
	TypeID    string
	Data      map[string]any
}

// FromItem decodes a stored documents-collection item.
func FromItem(it *record.Item) *Document {
	d := &Document{
		Entity:  it.Entity,
		ID:      it.ID,
		Version: it.Version,
		Active:  it.Active,
	}
	if it.Payload == nil {
		return d
	}
	if v, ok := it.Payload[keyProjectID].(string); ok {
		d.ProjectID = v
	}
	if v, ok := it.Payload[keyTypeID].(string); ok {
		d.TypeID = v
	}
	if v, ok := it.Payload[keyFormData].(map[string]any); ok {
		d.Data = record.ClonePayload(v)
	}
	return d
}

// ToPayload encodes the document for the coordinator.
func (d *Document) ToPayload() map[string]any {
	return map[string]any{
		keyProjectID: d.ProjectID,
		keyTypeID:    d.TypeID,
		keyFormData:  record.ClonePayload(d.Data),
	}
}
