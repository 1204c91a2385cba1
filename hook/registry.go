package hook

import (
	"context"
	"log/slog"

	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// Named entry types pair a hook implementation with the extension name
// captured at registration time. This avoids type-asserting back to
// Extension inside the emit methods.
type versionCreatedEntry struct {
	name string
	hook VersionCreated
}

type driftRepairedEntry struct {
	name string
	hook DriftRepaired
}

type cascadeIteratedEntry struct {
	name string
	hook CascadeIterated
}

type cascadeCompletedEntry struct {
	name string
	hook CascadeCompleted
}

type ruleSkippedEntry struct {
	name string
	hook RuleSkipped
}

type shutdownEntry struct {
	name string
	hook Shutdown
}

// Registry holds registered extensions and dispatches lifecycle events
// to them. It type-caches extensions at registration time so emit calls
// iterate only over extensions that implement the relevant hook.
type Registry struct {
	extensions []Extension
	logger     *slog.Logger

	// Type-cached slices for each lifecycle hook.
	versionCreated   []versionCreatedEntry
	driftRepaired    []driftRepairedEntry
	cascadeIterated  []cascadeIteratedEntry
	cascadeCompleted []cascadeCompletedEntry
	ruleSkipped      []ruleSkippedEntry
	shutdown         []shutdownEntry
}

// NewRegistry creates an extension registry with the given logger.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{logger: logger}
}

// Register adds an extension and type-asserts it into all applicable
// hook caches. Extensions are notified in registration order.
func (r *Registry) Register(e Extension) {
	r.extensions = append(r.extensions, e)
	name := e.Name()

	if h, ok := e.(VersionCreated); ok {
		r.versionCreated = append(r.versionCreated, versionCreatedEntry{name, h})
	}
	if h, ok := e.(DriftRepaired); ok {
		r.driftRepaired = append(r.driftRepaired, driftRepairedEntry{name, h})
	}
	if h, ok := e.(CascadeIterated); ok {
		r.cascadeIterated = append(r.cascadeIterated, cascadeIteratedEntry{name, h})
	}
	if h, ok := e.(CascadeCompleted); ok {
		r.cascadeCompleted = append(r.cascadeCompleted, cascadeCompletedEntry{name, h})
	}
	if h, ok := e.(RuleSkipped); ok {
		r.ruleSkipped = append(r.ruleSkipped, ruleSkippedEntry{name, h})
	}
	if h, ok := e.(Shutdown); ok {
		r.shutdown = append(r.shutdown, shutdownEntry{name, h})
	}
}

// Extensions returns all registered extensions.
func (r *Registry) Extensions() []Extension { return r.extensions }

// ──────────────────────────────────────────────────
// Record event emitters
// ──────────────────────────────────────────────────

// EmitVersionCreated notifies all extensions that implement VersionCreated.
func (r *Registry) EmitVersionCreated(ctx context.Context, collection string, item *record.Item) {
	for _, e := range r.versionCreated {
		if err := e.hook.OnVersionCreated(ctx, collection, item); err != nil {
			r.logHookError("OnVersionCreated", e.name, err)
		}
	}
}

// EmitDriftRepaired notifies all extensions that implement DriftRepaired.
func (r *Registry) EmitDriftRepaired(ctx context.Context, collection, recordID, survivor string, cleared int) {
	for _, e := range r.driftRepaired {
		if err := e.hook.OnDriftRepaired(ctx, collection, recordID, survivor, cleared); err != nil {
			r.logHookError("OnDriftRepaired", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Cascade event emitters
// ──────────────────────────────────────────────────

// EmitCascadeIterated notifies all extensions that implement CascadeIterated.
func (r *Registry) EmitCascadeIterated(ctx context.Context, projectID string, iteration, changes int) {
	for _, e := range r.cascadeIterated {
		if err := e.hook.OnCascadeIterated(ctx, projectID, iteration, changes); err != nil {
			r.logHookError("OnCascadeIterated", e.name, err)
		}
	}
}

// EmitCascadeCompleted notifies all extensions that implement CascadeCompleted.
func (r *Registry) EmitCascadeCompleted(ctx context.Context, projectID string, report *workflow.Report) {
	for _, e := range r.cascadeCompleted {
		if err := e.hook.OnCascadeCompleted(ctx, projectID, report); err != nil {
			r.logHookError("OnCascadeCompleted", e.name, err)
		}
	}
}

// EmitRuleSkipped notifies all extensions that implement RuleSkipped.
func (r *Registry) EmitRuleSkipped(ctx context.Context, projectID, ruleText string, ruleErr error) {
	for _, e := range r.ruleSkipped {
		if err := e.hook.OnRuleSkipped(ctx, projectID, ruleText, ruleErr); err != nil {
			r.logHookError("OnRuleSkipped", e.name, err)
		}
	}
}

// ──────────────────────────────────────────────────
// Other event emitters
// ──────────────────────────────────────────────────

// EmitShutdown notifies all extensions that implement Shutdown.
func (r *Registry) EmitShutdown(ctx context.Context) {
	for _, e := range r.shutdown {
		if err := e.hook.OnShutdown(ctx); err != nil {
			r.logHookError("OnShutdown", e.name, err)
		}
	}
}

// logHookError logs a warning when a lifecycle hook returns an error.
// Errors from hooks are never propagated — they must not block the pipeline.
func (r *Registry) logHookError(hook, extName string, err error) {
	r.logger.Warn("extension hook error",
		slog.String("hook", hook),
		slog.String("extension", extName),
		slog.String("error", err.Error()),
	)
}
