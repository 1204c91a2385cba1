package form

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gbacskai/docflow4-sub000/rule"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// Outcome classifies the effect of one applied action.
type Outcome int

// Action outcomes. AlreadySet is not an error: a flag toggle that finds
// the field already in the target state reports it and moves on.
const (
	OutcomeApplied Outcome = iota
	OutcomeAlreadySet
)

// Change records one action's effect on the form state.
type Change struct {
	Field   string
	Action  string
	Outcome Outcome
}

// Predicate is a named boolean check over the form state, addressable
// from rule text as `name() == true`.
type Predicate func(*State) (bool, error)

// Engine applies validation rules to form state. Unlike the project
// cascade, the engine is fail-fast: the first rule that fails to parse
// or evaluate aborts the remaining rules for the pass.
type Engine struct {
	logger     *slog.Logger
	predicates map[string]Predicate
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the engine's logger.
func WithLogger(l *slog.Logger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithPredicate registers a named predicate for rule text to call.
func WithPredicate(name string, p Predicate) EngineOption {
	return func(e *Engine) { e.predicates[name] = p }
}

// NewEngine creates an Engine. The allRequiredFieldsFilled predicate is
// registered by default; options may add or override predicates.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		logger: slog.Default(),
		predicates: map[string]Predicate{
			"allRequiredFieldsFilled": allRequiredFieldsFilled,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func allRequiredFieldsFilled(s *State) (bool, error) {
	for _, f := range s.Fields {
		if f.Required && !f.Hidden && !f.Filled() {
			return false, nil
		}
	}
	return true, nil
}

// fieldEnv adapts form state to the rule evaluator.
type fieldEnv struct {
	state  *State
	engine *Engine
}

// Status is unanswerable from form state; form rules address fields.
func (fieldEnv) Status(string) (string, bool) { return "", false }

func (e fieldEnv) Field(name string) (any, bool) {
	f, ok := e.state.Fields[name]
	if !ok {
		return nil, false
	}
	return f.Value, true
}

func (e fieldEnv) FieldKind(name string) (rule.Kind, bool) {
	f, ok := e.state.Fields[name]
	if !ok {
		return rule.KindText, false
	}
	return f.Kind, true
}

// Count selects file count or array length by the field's declared kind.
func (e fieldEnv) Count(name string) (int, error) {
	f, ok := e.state.Fields[name]
	if !ok {
		return 0, fmt.Errorf("form: no field %q", name)
	}
	switch f.Kind {
	case rule.KindFile:
		return len(f.Files), nil
	case rule.KindArray:
		switch v := f.Value.(type) {
		case nil:
			return 0, nil
		case []any:
			return len(v), nil
		case []string:
			return len(v), nil
		case []map[string]any:
			return len(v), nil
		default:
			return 0, fmt.Errorf("form: field %q is not countable (%T)", name, f.Value)
		}
	default:
		return 0, fmt.Errorf("form: field %q has kind %s, not countable", name, f.Kind)
	}
}

func (e fieldEnv) Call(fn string) (bool, error) {
	p, ok := e.engine.predicates[fn]
	if !ok {
		return false, fmt.Errorf("form: unknown predicate %q", fn)
	}
	return p(e.state)
}

var _ rule.Env = fieldEnv{}

// Apply runs the rules over the state in order and mutates it in place.
// The returned changes cover everything applied before the first
// failure; the error, when non-nil, names the rule that aborted the
// pass.
func (e *Engine) Apply(ctx context.Context, state *State, rules []workflow.Rule) ([]Change, error) {
	env := fieldEnv{state: state, engine: e}
	var changes []Change

	for _, r := range rules {
		if err := ctx.Err(); err != nil {
			return changes, err
		}

		cond, err := rule.ParseValidation(r.Validation)
		if err != nil {
			return changes, fmt.Errorf("form: rule %q: %w", r.Validation, err)
		}
		hold, err := rule.Evaluate(cond, env)
		if err != nil {
			return changes, fmt.Errorf("form: rule %q: %w", r.Validation, err)
		}
		if !hold {
			continue
		}

		actions, err := rule.ParseActions(r.Action)
		if err != nil {
			return changes, fmt.Errorf("form: action %q: %w", r.Action, err)
		}
		for _, act := range actions {
			change, err := e.applyAction(state, act)
			if err != nil {
				return changes, fmt.Errorf("form: action %q: %w", r.Action, err)
			}
			changes = append(changes, change)
		}
	}

	return changes, nil
}

func (e *Engine) applyAction(state *State, act rule.Action) (Change, error) {
	switch a := act.(type) {
	case rule.Assign:
		f, ok := state.Fields[a.Field]
		if !ok {
			return Change{}, fmt.Errorf("no field %q", a.Field)
		}
		e.assign(f, a)
		return Change{Field: a.Field, Action: "assign", Outcome: OutcomeApplied}, nil

	case rule.SetFlag:
		f, ok := state.Fields[a.Field]
		if !ok {
			return Change{}, fmt.Errorf("no field %q", a.Field)
		}
		return e.setFlag(f, a), nil

	default:
		// process / status actions belong to the project cascade.
		return Change{}, fmt.Errorf("action %T is not a form action", act)
	}
}

// assign writes the literal value. A disabled field is re-enabled for
// the write and its disabled state restored afterwards; rules may fill
// fields the user cannot.
func (e *Engine) assign(f *Field, a rule.Assign) {
	wasDisabled := f.Disabled
	f.Disabled = false
	defer func() { f.Disabled = wasDisabled }()

	switch a.Value.Kind {
	case rule.LitBool:
		f.Value = a.Value.Bool
	case rule.LitNull, rule.LitUndefined, rule.LitEmpty:
		f.Value = nil
	default:
		f.Value = a.Value.Str
	}
}

func (e *Engine) setFlag(f *Field, a rule.SetFlag) Change {
	var current *bool
	var name string
	switch a.Flag {
	case rule.FlagHidden:
		current, name = &f.Hidden, "hide"
	default:
		current, name = &f.Disabled, "disable"
	}

	if *current == a.Value {
		return Change{Field: a.Field, Action: name, Outcome: OutcomeAlreadySet}
	}
	*current = a.Value
	return Change{Field: a.Field, Action: name, Outcome: OutcomeApplied}
}
