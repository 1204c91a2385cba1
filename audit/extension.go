package audit

import (
	"context"
	"log/slog"
	"time"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/hook"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// Compile-time interface checks.
var (
	_ hook.Extension        = (*Extension)(nil)
	_ hook.VersionCreated   = (*Extension)(nil)
	_ hook.DriftRepaired    = (*Extension)(nil)
	_ hook.CascadeCompleted = (*Extension)(nil)
)

// Extension persists audit events through the versioning coordinator.
type Extension struct {
	coord   *record.Coordinator
	logger  *slog.Logger
	enabled map[string]bool
}

// New creates the audit extension writing through the given coordinator.
// All actions are enabled unless WithActions restricts them.
func New(coord *record.Coordinator, opts ...Option) *Extension {
	e := &Extension{
		coord:  coord,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Name implements hook.Extension.
func (e *Extension) Name() string { return "audit-trail" }

// OnVersionCreated implements hook.VersionCreated. Writes to the audit
// collection itself are not audited; the trail must not feed itself.
func (e *Extension) OnVersionCreated(ctx context.Context, collection string, item *record.Item) error {
	if collection == docflow.CollectionAudit {
		return nil
	}
	e.record(ctx, ActionVersionCreated, SeverityInfo, OutcomeSuccess, CategoryRecord, map[string]any{
		"collection": collection,
		"recordId":   item.ID,
		"version":    item.Version,
	})
	return nil
}

// OnDriftRepaired implements hook.DriftRepaired.
func (e *Extension) OnDriftRepaired(ctx context.Context, collection, recordID, survivor string, cleared int) error {
	e.record(ctx, ActionDriftRepaired, SeverityWarning, OutcomeSuccess, CategoryRecord, map[string]any{
		"collection": collection,
		"recordId":   recordID,
		"survivor":   survivor,
		"cleared":    cleared,
	})
	return nil
}

// OnCascadeCompleted implements hook.CascadeCompleted.
func (e *Extension) OnCascadeCompleted(ctx context.Context, projectID string, report *workflow.Report) error {
	severity, outcome := SeverityInfo, OutcomeSuccess
	meta := map[string]any{
		"projectId":  projectID,
		"iterations": report.CascadeIterations,
		"changes":    report.TotalDocumentChanges,
	}
	if !report.Success {
		severity, outcome = SeverityWarning, OutcomeFailure
		if report.Err != "" {
			meta["error"] = report.Err
		}
	}
	e.record(ctx, ActionCascadeCompleted, severity, outcome, CategoryWorkflow, meta)
	return nil
}

// record writes one audit event if the action is enabled. Failures are
// logged, never returned.
func (e *Extension) record(ctx context.Context, action, severity, outcome, category string, meta map[string]any) {
	if e.enabled != nil && !e.enabled[action] {
		return
	}

	payload := map[string]any{
		"action":     action,
		"category":   category,
		"severity":   severity,
		"outcome":    outcome,
		"occurredAt": time.Now().UTC().Format(time.RFC3339Nano),
		"metadata":   meta,
	}

	if _, err := e.coord.Create(ctx, docflow.CollectionAudit, payload); err != nil {
		e.logger.Warn("audit write failed",
			slog.String("action", action),
			slog.String("error", err.Error()),
		)
	}
}
