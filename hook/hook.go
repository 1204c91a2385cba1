package hook

import (
	"context"

	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// Extension is the base interface all extensions must implement.
type Extension interface {
	// Name returns a unique human-readable name for the extension.
	Name() string
}

// ──────────────────────────────────────────────────
// Record lifecycle hooks
// ──────────────────────────────────────────────────

// VersionCreated is called after the coordinator writes a new active
// version of a record.
type VersionCreated interface {
	OnVersionCreated(ctx context.Context, collection string, item *record.Item) error
}

// DriftRepaired is called after a read heals a multiple-active group.
type DriftRepaired interface {
	OnDriftRepaired(ctx context.Context, collection, recordID, survivor string, cleared int) error
}

// ──────────────────────────────────────────────────
// Cascade lifecycle hooks
// ──────────────────────────────────────────────────

// CascadeIterated is called after each cascade iteration.
type CascadeIterated interface {
	OnCascadeIterated(ctx context.Context, projectID string, iteration, changes int) error
}

// CascadeCompleted is called once a cascade run finishes, whether at the
// fixpoint, the iteration cap, or a failure.
type CascadeCompleted interface {
	OnCascadeCompleted(ctx context.Context, projectID string, report *workflow.Report) error
}

// RuleSkipped is called when the cascade skips a rule that failed to
// parse or evaluate.
type RuleSkipped interface {
	OnRuleSkipped(ctx context.Context, projectID, ruleText string, err error) error
}

// ──────────────────────────────────────────────────
// Other lifecycle hooks
// ──────────────────────────────────────────────────

// Shutdown is called during graceful shutdown.
type Shutdown interface {
	OnShutdown(ctx context.Context) error
}
