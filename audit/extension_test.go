package audit_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/audit"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/store/memory"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

func newTestAudit(t *testing.T, opts ...audit.Option) (*audit.Extension, *record.Coordinator) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	coord := record.NewCoordinator(memory.New(), record.WithLogger(logger))
	opts = append([]audit.Option{audit.WithLogger(logger)}, opts...)
	return audit.New(coord, opts...), coord
}

func auditTrail(t *testing.T, coord *record.Coordinator) []*record.Item {
	t.Helper()
	items, err := coord.AllLatest(context.Background(), docflow.CollectionAudit)
	if err != nil {
		t.Fatalf("read audit trail: %v", err)
	}
	return items
}

func TestAuditRecordsVersionCreated(t *testing.T) {
	ext, coord := newTestAudit(t)

	item := &record.Item{ID: "rec_1", Version: "2026-01-02T15:04:05Z"}
	if err := ext.OnVersionCreated(context.Background(), docflow.CollectionDocuments, item); err != nil {
		t.Fatalf("OnVersionCreated: %v", err)
	}

	trail := auditTrail(t, coord)
	if len(trail) != 1 {
		t.Fatalf("trail = %d entries, want 1", len(trail))
	}
	entry := trail[0].Payload
	if entry["action"] != audit.ActionVersionCreated {
		t.Errorf("action = %v", entry["action"])
	}
	meta, ok := entry["metadata"].(map[string]any)
	if !ok || meta["recordId"] != "rec_1" {
		t.Errorf("metadata = %v", entry["metadata"])
	}
}

func TestAuditDoesNotAuditItself(t *testing.T) {
	ext, coord := newTestAudit(t)

	item := &record.Item{ID: "aud_1", Version: "2026-01-02T15:04:05Z"}
	if err := ext.OnVersionCreated(context.Background(), docflow.CollectionAudit, item); err != nil {
		t.Fatalf("OnVersionCreated: %v", err)
	}

	if _, err := coord.AllLatest(context.Background(), docflow.CollectionAudit); err != nil {
		t.Fatalf("AllLatest: %v", err)
	}
	trail := auditTrail(t, coord)
	if len(trail) != 0 {
		t.Fatalf("audit writes must not be audited: %d entries", len(trail))
	}
}

func TestAuditRecordsCascadeFailure(t *testing.T) {
	ext, coord := newTestAudit(t)

	report := &workflow.Report{Success: false, CascadeIterations: 3, Err: "boom"}
	if err := ext.OnCascadeCompleted(context.Background(), "proj_1", report); err != nil {
		t.Fatalf("OnCascadeCompleted: %v", err)
	}

	trail := auditTrail(t, coord)
	if len(trail) != 1 {
		t.Fatalf("trail = %d entries, want 1", len(trail))
	}
	entry := trail[0].Payload
	if entry["outcome"] != audit.OutcomeFailure || entry["severity"] != audit.SeverityWarning {
		t.Errorf("entry = %v", entry)
	}
}

func TestAuditActionFilter(t *testing.T) {
	ext, coord := newTestAudit(t, audit.WithActions(audit.ActionDriftRepaired))

	if err := ext.OnVersionCreated(context.Background(), docflow.CollectionDocuments, &record.Item{ID: "rec_1"}); err != nil {
		t.Fatalf("OnVersionCreated: %v", err)
	}
	if err := ext.OnDriftRepaired(context.Background(), docflow.CollectionDocuments, "rec_1", "v2", 1); err != nil {
		t.Fatalf("OnDriftRepaired: %v", err)
	}

	trail := auditTrail(t, coord)
	if len(trail) != 1 {
		t.Fatalf("trail = %d entries, want 1 (filtered)", len(trail))
	}
	if trail[0].Payload["action"] != audit.ActionDriftRepaired {
		t.Errorf("action = %v", trail[0].Payload["action"])
	}
}
