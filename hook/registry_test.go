package hook_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"

	"github.com/gbacskai/docflow4-sub000/hook"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// ──────────────────────────────────────────────────
// Test extensions
// ──────────────────────────────────────────────────

// allHooksExt implements every lifecycle hook for testing.
type allHooksExt struct {
	calls []string
}

func (e *allHooksExt) Name() string { return "all-hooks" }

func (e *allHooksExt) OnVersionCreated(_ context.Context, _ string, _ *record.Item) error {
	e.calls = append(e.calls, "OnVersionCreated")
	return nil
}

func (e *allHooksExt) OnDriftRepaired(_ context.Context, _, _, _ string, _ int) error {
	e.calls = append(e.calls, "OnDriftRepaired")
	return nil
}

func (e *allHooksExt) OnCascadeIterated(_ context.Context, _ string, _, _ int) error {
	e.calls = append(e.calls, "OnCascadeIterated")
	return nil
}

func (e *allHooksExt) OnCascadeCompleted(_ context.Context, _ string, _ *workflow.Report) error {
	e.calls = append(e.calls, "OnCascadeCompleted")
	return nil
}

func (e *allHooksExt) OnRuleSkipped(_ context.Context, _, _ string, _ error) error {
	e.calls = append(e.calls, "OnRuleSkipped")
	return nil
}

func (e *allHooksExt) OnShutdown(_ context.Context) error {
	e.calls = append(e.calls, "OnShutdown")
	return nil
}

// recordOnlyExt only implements record-related hooks.
type recordOnlyExt struct {
	calls []string
}

func (e *recordOnlyExt) Name() string { return "record-only" }

func (e *recordOnlyExt) OnVersionCreated(_ context.Context, _ string, _ *record.Item) error {
	e.calls = append(e.calls, "OnVersionCreated")
	return nil
}

func (e *recordOnlyExt) OnDriftRepaired(_ context.Context, _, _, _ string, _ int) error {
	e.calls = append(e.calls, "OnDriftRepaired")
	return nil
}

// failingExt returns errors from hooks.
type failingExt struct{}

func (e *failingExt) Name() string { return "failing" }

func (e *failingExt) OnVersionCreated(_ context.Context, _ string, _ *record.Item) error {
	return errors.New("boom")
}

func (e *failingExt) OnShutdown(_ context.Context) error {
	return errors.New("shutdown boom")
}

func newTestRegistry() *hook.Registry {
	return hook.NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func emitAll(r *hook.Registry) {
	ctx := context.Background()
	r.EmitVersionCreated(ctx, "documents", &record.Item{ID: "rec_1"})
	r.EmitDriftRepaired(ctx, "documents", "rec_1", "v2", 1)
	r.EmitCascadeIterated(ctx, "proj_1", 1, 2)
	r.EmitCascadeCompleted(ctx, "proj_1", &workflow.Report{Success: true})
	r.EmitRuleSkipped(ctx, "proj_1", `broken`, errors.New("parse"))
	r.EmitShutdown(ctx)
}

func TestRegistryDispatchesAllEvents(t *testing.T) {
	reg := newTestRegistry()
	e := &allHooksExt{}
	reg.Register(e)

	emitAll(reg)

	want := []string{
		"OnVersionCreated",
		"OnDriftRepaired",
		"OnCascadeIterated",
		"OnCascadeCompleted",
		"OnRuleSkipped",
		"OnShutdown",
	}
	if !reflect.DeepEqual(e.calls, want) {
		t.Errorf("calls = %v, want %v", e.calls, want)
	}
}

func TestRegistryOptInOnly(t *testing.T) {
	reg := newTestRegistry()
	e := &recordOnlyExt{}
	reg.Register(e)

	emitAll(reg)

	want := []string{"OnVersionCreated", "OnDriftRepaired"}
	if !reflect.DeepEqual(e.calls, want) {
		t.Errorf("calls = %v, want %v", e.calls, want)
	}
}

func TestRegistryHookErrorsDoNotBlock(t *testing.T) {
	reg := newTestRegistry()
	after := &recordOnlyExt{}
	reg.Register(&failingExt{})
	reg.Register(after)

	reg.EmitVersionCreated(context.Background(), "documents", &record.Item{ID: "rec_1"})

	if len(after.calls) != 1 {
		t.Errorf("extension after a failing one not notified: %v", after.calls)
	}
}

func TestRegistryExtensionsOrder(t *testing.T) {
	reg := newTestRegistry()
	a, b := &allHooksExt{}, &recordOnlyExt{}
	reg.Register(a)
	reg.Register(b)

	exts := reg.Extensions()
	if len(exts) != 2 || exts[0].Name() != "all-hooks" || exts[1].Name() != "record-only" {
		t.Errorf("extensions = %v", exts)
	}
}
