package workflow

import (
	"context"
	"errors"
	"fmt"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// Payload keys used by the workflows collection.
const (
	keyName       = "name"
	keyRules      = "rules"
	keyValidation = "validation"
	keyAction     = "action"
)

// Rule pairs one condition text with one action text. Rules live as an
// ordered list on a workflow; order is significant.
type Rule struct {
	Validation string
	Action     string
}

// Workflow is a versioned workflow record.
type Workflow struct {
	docflow.Entity

	ID      string
	Version string
	Active  bool
	Name    string
	Rules   []Rule
}

// FromItem decodes a stored workflows-collection item.
func FromItem(it *record.Item) *Workflow {
	w := &Workflow{
		Entity:  it.Entity,
		ID:      it.ID,
		Version: it.Version,
		Active:  it.Active,
	}
	if it.Payload == nil {
		return w
	}
	if v, ok := it.Payload[keyName].(string); ok {
		w.Name = v
	}
	w.Rules = decodeRules(it.Payload[keyRules])
	return w
}

// ToPayload encodes the workflow for the coordinator.
func (w *Workflow) ToPayload() map[string]any {
	rules := make([]any, 0, len(w.Rules))
	for _, r := range w.Rules {
		rules = append(rules, map[string]any{
			keyValidation: r.Validation,
			keyAction:     r.Action,
		})
	}
	return map[string]any{
		keyName:  w.Name,
		keyRules: rules,
	}
}

func decodeRules(raw any) []Rule {
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

	rules := make([]Rule, 0, len(maps))
	for _, m := range maps {
		validation, _ := m[keyValidation].(string)
		action, _ := m[keyAction].(string)
		if validation == "" && action == "" {
			continue
		}
		rules = append(rules, Rule{Validation: validation, Action: action})
	}
	return rules
}

// Repository reads and writes workflows through the coordinator.
type Repository struct {
	coord *record.Coordinator
}

// NewRepository creates a Repository over the coordinator.
func NewRepository(coord *record.Coordinator) *Repository {
	return &Repository{coord: coord}
}

// Save writes a new version of a workflow.
func (r *Repository) Save(ctx context.Context, w *Workflow) (*Workflow, error) {
	var opts []record.CreateOption
	if w.ID != "" {
		opts = append(opts, record.WithID(w.ID))
	}
	it, err := r.coord.Create(ctx, docflow.CollectionWorkflows, w.ToPayload(), opts...)
	if err != nil {
		return nil, err
	}
	return FromItem(it), nil
}

// ByID returns the active version of one workflow.
func (r *Repository) ByID(ctx context.Context, workflowID string) (*Workflow, error) {
	it, err := r.coord.Latest(ctx, docflow.CollectionWorkflows, workflowID)
	if errors.Is(err, docflow.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", docflow.ErrWorkflowNotFound, workflowID)
	}
	if err != nil {
		return nil, err
	}
	return FromItem(it), nil
}

// All returns the active version of every workflow, sorted by record id.
func (r *Repository) All(ctx context.Context) ([]*Workflow, error) {
	items, err := r.coord.AllLatest(ctx, docflow.CollectionWorkflows)
	if err != nil {
		return nil, err
	}
	workflows := make([]*Workflow, len(items))
	for i, it := range items {
		workflows[i] = FromItem(it)
	}
	return workflows, nil
}
