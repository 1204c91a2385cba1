package document

import (
	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/rule"
)

// Payload keys used by the documentTypes collection.
const (
	keyIdentifier = "identifier"
	keyName       = "name"
	keyFields     = "fields"
	keyFieldName  = "name"
	keyFieldKind  = "kind"
)

// FieldSpec declares one form field of a document type. Kind selects the
// count semantics for `field.count()` conditions.
type FieldSpec struct {
	Name string
	Kind rule.Kind
}

// Type is a document type: the schema a document is filled in against.
// Identifier is the stable human-assigned key rule text addresses; it is
// distinct from the record's storage ID.
type Type struct {
	docflow.Entity

	ID         string
	Version    string
	Active     bool
	Identifier string
	Name       string
	Fields     []FieldSpec
}

// TypeFromItem decodes a stored documentTypes-collection item. Field
// entries with an unknown kind name fall back to text.
func TypeFromItem(it *record.Item) *Type {
	t := &Type{
		Entity:  it.Entity,
		ID:      it.ID,
		Version: it.Version,
		Active:  it.Active,
	}
	if it.Payload == nil {
		return t
	}
	if v, ok := it.Payload[keyIdentifier].(string); ok {
		t.Identifier = v
	}
	if v, ok := it.Payload[keyName].(string); ok {
		t.Name = v
	}
	t.Fields = decodeFields(it.Payload[keyFields])
	return t
}

// ToPayload encodes the type for the coordinator.
func (t *Type) ToPayload() map[string]any {
	fields := make([]any, 0, len(t.Fields))
	for _, f := range t.Fields {
		fields = append(fields, map[string]any{
			keyFieldName: f.Name,
			keyFieldKind: f.Kind.String(),
		})
	}
	return map[string]any{
		keyIdentifier: t.Identifier,
		keyName:       t.Name,
		keyFields:     fields,
	}
}

// FieldKind returns the declared kind of a named field.
func (t *Type) FieldKind(name string) (rule.Kind, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f.Kind, true
		}
	}
	return rule.KindText, false
}

// decodeFields accepts both []any and []map[string]any shapes, since the
// payload may have passed through a codec that rewrites one to the other.
func decodeFields(raw any) []FieldSpec {
	var maps []map[string]any
	switch v := raw.(type) {
	case []map[string]any:
		maps = v
	case []any:
		for _, e := range v {
			if m, ok := e.(map[string]any); ok {
				maps = append(maps, m)
			}
		}
	default:
		return nil
	}

	fields := make([]FieldSpec, 0, len(maps))
	for _, m := range maps {
		name, _ := m[keyFieldName].(string)
		if name == "" {
			continue
		}
		kindName, _ := m[keyFieldKind].(string)
		kind, _ := rule.ParseKind(kindName)
		fields = append(fields, FieldSpec{Name: name, Kind: kind})
	}
	return fields
}
