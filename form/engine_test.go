package form_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/gbacskai/docflow4-sub000/form"
	"github.com/gbacskai/docflow4-sub000/rule"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

func newTestEngine(opts ...form.EngineOption) *form.Engine {
	opts = append([]form.EngineOption{
		form.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}, opts...)
	return form.NewEngine(opts...)
}

func sampleState() *form.State {
	s := form.NewState()
	s.Fields["ownerName"] = &form.Field{Value: "Alice", Kind: rule.KindText, Required: true}
	s.Fields["notes"] = &form.Field{Value: "", Kind: rule.KindText}
	s.Fields["attachments"] = &form.Field{Kind: rule.KindFile, Files: []string{"a.pdf", "b.pdf"}}
	s.Fields["tags"] = &form.Field{Kind: rule.KindArray, Value: []any{"x", "y", "z"}}
	return s
}

func TestApplyAssign(t *testing.T) {
	state := sampleState()
	changes, err := newTestEngine().Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `notes = "reviewed"`},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(changes) != 1 || changes[0].Outcome != form.OutcomeApplied {
		t.Fatalf("changes = %+v", changes)
	}
	if state.Fields["notes"].Value != "reviewed" {
		t.Errorf("notes = %v", state.Fields["notes"].Value)
	}
}

func TestApplyAssignRestoresDisabled(t *testing.T) {
	state := sampleState()
	state.Fields["notes"].Disabled = true

	_, err := newTestEngine().Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `notes = "filled by rule"`},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	f := state.Fields["notes"]
	if f.Value != "filled by rule" {
		t.Errorf("disabled field not written: %v", f.Value)
	}
	if !f.Disabled {
		t.Error("disabled state not restored after the write")
	}
}

func TestApplySetFlagAlreadySet(t *testing.T) {
	state := sampleState()
	engine := newTestEngine()

	changes, err := engine.Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `notes.disabled = true`},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if changes[0].Outcome != form.OutcomeApplied || !state.Fields["notes"].Disabled {
		t.Fatalf("first toggle: %+v", changes[0])
	}

	changes, err = engine.Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `notes.disabled = true`},
	})
	if err != nil {
		t.Fatalf("Apply again: %v", err)
	}
	if changes[0].Outcome != form.OutcomeAlreadySet {
		t.Errorf("second toggle outcome = %v, want OutcomeAlreadySet", changes[0].Outcome)
	}
}

func TestApplyCountAndPredicateConditions(t *testing.T) {
	state := sampleState()
	changes, err := newTestEngine().Apply(context.Background(), state, []workflow.Rule{
		{Validation: `attachments.count() >= 2`, Action: `notes = "has files"`},
		{Validation: `tags.count() > 5`, Action: `notes = "never"`},
		{Validation: `allRequiredFieldsFilled() == true`, Action: `notes.hidden = true`},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(changes) != 2 {
		t.Fatalf("changes = %+v", changes)
	}
	if state.Fields["notes"].Value != "has files" || !state.Fields["notes"].Hidden {
		t.Errorf("state = %+v", state.Fields["notes"])
	}
}

func TestApplyFailFast(t *testing.T) {
	state := sampleState()
	changes, err := newTestEngine().Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `notes = "first"`},
		{Validation: `ownerName ~~ garbage`, Action: `notes = "second"`},
		{Validation: `ownerName == "Alice"`, Action: `notes = "third"`},
	})
	if err == nil {
		t.Fatal("expected the broken rule to abort the pass")
	}
	var perr *rule.ParseError
	if !errors.As(err, &perr) {
		t.Errorf("error = %v, want ParseError", err)
	}
	if len(changes) != 1 {
		t.Errorf("changes = %+v, want only the first rule applied", changes)
	}
	if state.Fields["notes"].Value != "first" {
		t.Errorf("third rule must not run after the abort: %v", state.Fields["notes"].Value)
	}
}

func TestApplyRejectsCascadeActions(t *testing.T) {
	state := sampleState()
	_, err := newTestEngine().Apply(context.Background(), state, []workflow.Rule{
		{Validation: `ownerName == "Alice"`, Action: `process.Survey`},
	})
	if err == nil {
		t.Fatal("cascade-only action must abort a form pass")
	}
}

func TestApplyCustomPredicate(t *testing.T) {
	engine := newTestEngine(form.WithPredicate("hasAttachments", func(s *form.State) (bool, error) {
		return len(s.Fields["attachments"].Files) > 0, nil
	}))
	state := sampleState()

	changes, err := engine.Apply(context.Background(), state, []workflow.Rule{
		{Validation: `hasAttachments() == true`, Action: `notes = "ok"`},
	})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(changes) != 1 {
		t.Errorf("changes = %+v", changes)
	}
}

func TestStateCloneIsDeep(t *testing.T) {
	state := sampleState()
	clone := state.Clone()

	clone.Fields["ownerName"].Value = "Bob"
	clone.Fields["attachments"].Files[0] = "mutated.pdf"
	clone.Fields["tags"].Value.([]any)[0] = "mutated"

	if state.Fields["ownerName"].Value != "Alice" {
		t.Error("clone shares field values")
	}
	if state.Fields["attachments"].Files[0] != "a.pdf" {
		t.Error("clone shares file slices")
	}
	if state.Fields["tags"].Value.([]any)[0] != "x" {
		t.Error("clone shares array values")
	}
}

func TestSettlerWaitsForQuietWindow(t *testing.T) {
	s := form.NewSettler(20 * time.Millisecond)

	done := make(chan error, 1)
	go func() { done <- s.Wait(context.Background()) }()

	s.Touch()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Wait: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not return after the quiet window")
	}
}

func TestSettlerHonorsContext(t *testing.T) {
	s := form.NewSettler(time.Hour)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- s.Wait(ctx) }()
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Fatal("expected a context error")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Wait did not observe cancellation")
	}
}
