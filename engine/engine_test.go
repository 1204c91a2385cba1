package engine_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/document"
	"github.com/gbacskai/docflow4-sub000/engine"
	"github.com/gbacskai/docflow4-sub000/hook"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/store/memory"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestEngine(t *testing.T, opts ...engine.Option) *engine.Engine {
	t.Helper()

	svc, err := docflow.New(
		docflow.WithStore(memory.New()),
		docflow.WithLogger(discardLogger()),
	)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	eng, err := engine.Build(svc, opts...)
	if err != nil {
		t.Fatalf("build engine: %v", err)
	}
	return eng
}

func TestBuildRequiresStore(t *testing.T) {
	svc, err := docflow.New(docflow.WithLogger(discardLogger()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	if _, err := engine.Build(svc); !errors.Is(err, docflow.ErrNoStore) {
		t.Fatalf("err = %v, want ErrNoStore", err)
	}
}

func TestDocumentLifecycle(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	typ, err := eng.SaveDocumentType(ctx, &document.Type{
		Identifier: "Survey",
		Name:       "Site Survey",
	})
	if err != nil {
		t.Fatalf("save type: %v", err)
	}

	doc, err := eng.CreateDocument(ctx, "prj_1", typ.ID, map[string]any{"status": "new"})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	updated, err := eng.UpdateDocument(ctx, doc.ID, map[string]any{"status": "completed"})
	if err != nil {
		t.Fatalf("update document: %v", err)
	}
	if updated.Data["status"] != "completed" {
		t.Errorf("status = %v", updated.Data["status"])
	}

	latest, err := eng.LatestDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Version != updated.Version {
		t.Errorf("latest version = %q, want %q", latest.Version, updated.Version)
	}

	history, err := eng.DocumentHistory(ctx, doc.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Errorf("history length = %d, want 2", len(history))
	}
}

func TestExecuteWorkflowRulesForProject(t *testing.T) {
	eng := newTestEngine(t)
	ctx := context.Background()

	typ, err := eng.SaveDocumentType(ctx, &document.Type{Identifier: "Survey", Name: "Survey"})
	if err != nil {
		t.Fatalf("save type: %v", err)
	}
	doc, err := eng.CreateDocument(ctx, "prj_1", typ.ID, map[string]any{"status": "new"})
	if err != nil {
		t.Fatalf("create document: %v", err)
	}

	_, err = eng.SaveWorkflow(ctx, &workflow.Workflow{
		Name: "close out surveys",
		Rules: []workflow.Rule{{
			Validation: `Survey.status == "new"`,
			Action:     `Survey.status = "completed"`,
		}},
	})
	if err != nil {
		t.Fatalf("save workflow: %v", err)
	}

	report := eng.ExecuteWorkflowRulesForProject(ctx, "prj_1", doc.ID)
	if !report.Success {
		t.Fatalf("report not successful: %v", report.Err)
	}
	if report.TotalDocumentChanges != 1 {
		t.Errorf("changes = %d, want 1", report.TotalDocumentChanges)
	}

	latest, err := eng.LatestDocument(ctx, doc.ID)
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if latest.Data["status"] != "completed" {
		t.Errorf("status = %v, want completed", latest.Data["status"])
	}
}

// recordingExt captures version-created and shutdown events.
type recordingExt struct {
	mu       sync.Mutex
	created  []string
	shutdown bool
}

func (e *recordingExt) Name() string { return "recording" }

func (e *recordingExt) OnVersionCreated(_ context.Context, collection string, _ *record.Item) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.created = append(e.created, collection)
	return nil
}

func (e *recordingExt) OnShutdown(_ context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.shutdown = true
	return nil
}

var (
	_ hook.Extension      = (*recordingExt)(nil)
	_ hook.VersionCreated = (*recordingExt)(nil)
	_ hook.Shutdown       = (*recordingExt)(nil)
)

func TestExtensionReceivesRecordEvents(t *testing.T) {
	ext := &recordingExt{}
	eng := newTestEngine(t, engine.WithExtension(ext))
	ctx := context.Background()

	if _, err := eng.CreateDocument(ctx, "prj_1", "typ_1", nil); err != nil {
		t.Fatalf("create document: %v", err)
	}

	ext.mu.Lock()
	defer ext.mu.Unlock()
	if len(ext.created) != 1 || ext.created[0] != docflow.CollectionDocuments {
		t.Errorf("created events = %v", ext.created)
	}
}

func TestAuditTrail(t *testing.T) {
	eng := newTestEngine(t, engine.WithAuditTrail())
	ctx := context.Background()

	if _, err := eng.CreateDocument(ctx, "prj_1", "typ_1", nil); err != nil {
		t.Fatalf("create document: %v", err)
	}

	entries, err := eng.Coordinator().AllLatest(ctx, docflow.CollectionAudit)
	if err != nil {
		t.Fatalf("read audit trail: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].Payload["action"] != "record.version_created" {
		t.Errorf("audit action = %v", entries[0].Payload["action"])
	}
}

func TestStartStopLifecycle(t *testing.T) {
	ext := &recordingExt{}
	eng := newTestEngine(t, engine.WithExtension(ext))
	ctx := context.Background()

	if err := eng.Start(ctx); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := eng.Stop(ctx); err != nil {
		t.Fatalf("stop: %v", err)
	}

	ext.mu.Lock()
	defer ext.mu.Unlock()
	if !ext.shutdown {
		t.Error("shutdown hook not called")
	}
}
