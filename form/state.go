package form

import (
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/rule"
)

// Field is one form field's live state.
type Field struct {
	Value    any
	Kind     rule.Kind
	Required bool
	Disabled bool
	Hidden   bool
	Files    []string
}

// Clone deep-copies the field, including nested map and slice values.
func (f *Field) Clone() *Field {
	c := *f
	c.Value = record.CloneValue(f.Value)
	if f.Files != nil {
		c.Files = append([]string(nil), f.Files...)
	}
	return &c
}

// State holds a form's fields by name.
type State struct {
	Fields map[string]*Field
}

// NewState creates an empty form state.
func NewState() *State {
	return &State{Fields: make(map[string]*Field)}
}

// Clone deep-copies the state so a rule pass can be applied to a copy
// and compared against the original.
func (s *State) Clone() *State {
	c := &State{Fields: make(map[string]*Field, len(s.Fields))}
	for name, f := range s.Fields {
		c.Fields[name] = f.Clone()
	}
	return c
}

// Filled reports whether the field holds a usable value: uploaded files
// for file fields, a non-nil non-empty value otherwise.
func (f *Field) Filled() bool {
	if f.Kind == rule.KindFile {
		return len(f.Files) > 0
	}
	if f.Value == nil {
		return false
	}
	if s, ok := f.Value.(string); ok {
		return s != ""
	}
	return true
}
