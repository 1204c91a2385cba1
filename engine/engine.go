package engine

import (
	"context"
	"fmt"
	"log/slog"

	"go.opentelemetry.io/otel/metric"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/audit"
	"github.com/gbacskai/docflow4-sub000/document"
	"github.com/gbacskai/docflow4-sub000/form"
	"github.com/gbacskai/docflow4-sub000/hook"
	"github.com/gbacskai/docflow4-sub000/observability"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/sweep"
	"github.com/gbacskai/docflow4-sub000/workflow"
)

// recordEmitter adapts *hook.Registry to satisfy record.Emitter.
// This breaks the import cycle: record defines the interface,
// hook.Registry provides the implementation, and the engine layer
// plugs them together.
type recordEmitter struct {
	r *hook.Registry
}

func (a *recordEmitter) EmitVersionCreated(ctx context.Context, collection string, item *record.Item) {
	a.r.EmitVersionCreated(ctx, collection, item)
}

func (a *recordEmitter) EmitDriftRepaired(ctx context.Context, collection, recordID, survivor string, cleared int) {
	a.r.EmitDriftRepaired(ctx, collection, recordID, survivor, cleared)
}

// cascadeEmitter adapts *hook.Registry to satisfy workflow.Emitter.
type cascadeEmitter struct {
	r *hook.Registry
}

func (a *cascadeEmitter) EmitCascadeIterated(ctx context.Context, projectID string, iteration, changes int) {
	a.r.EmitCascadeIterated(ctx, projectID, iteration, changes)
}

func (a *cascadeEmitter) EmitCascadeCompleted(ctx context.Context, projectID string, report *workflow.Report) {
	a.r.EmitCascadeCompleted(ctx, projectID, report)
}

func (a *cascadeEmitter) EmitRuleSkipped(ctx context.Context, projectID, ruleText string, err error) {
	a.r.EmitRuleSkipped(ctx, projectID, ruleText, err)
}

// Engine wraps a Service with the wired subsystems: the versioning
// coordinator, document and workflow repositories, the cascade
// orchestrator, the form engine, and the drift sweeper.
// Use Build() to create one from a Service.
type Engine struct {
	svc        *docflow.Service
	extensions *hook.Registry
	coord      *record.Coordinator
	documents  *document.Repository
	workflows  *workflow.Repository
	orch       *workflow.Orchestrator
	forms      *form.Engine
	sweeper    *sweep.Sweeper
	logger     *slog.Logger

	// OpenTelemetry meter provider (optional; nil means use global).
	meterProvider metric.MeterProvider

	auditEnabled bool
	auditOpts    []audit.Option
}

// Option configures an Engine.
type Option func(*Engine)

// WithExtension registers an extension with the engine.
func WithExtension(e hook.Extension) Option {
	return func(eng *Engine) {
		eng.extensions.Register(e)
	}
}

// WithMeterProvider sets a custom OTel MeterProvider for the engine.
// When set, the observability extension uses this provider instead of
// the global one.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(eng *Engine) {
		eng.meterProvider = mp
	}
}

// WithAuditTrail enables the persistent audit trail extension. Audit
// entries are written to the audit collection of the same store.
func WithAuditTrail(opts ...audit.Option) Option {
	return func(eng *Engine) {
		eng.auditEnabled = true
		eng.auditOpts = opts
	}
}

// Build creates an Engine from an existing Service.
// The Service's store must implement record.Store.
func Build(svc *docflow.Service, opts ...Option) (*Engine, error) {
	logger := svc.Logger()
	st := svc.Store()

	if st == nil {
		return nil, docflow.ErrNoStore
	}

	// Type-assert the store to get the record.Store interface.
	rs, ok := st.(record.Store)
	if !ok {
		return nil, fmt.Errorf("docflow: store does not implement record.Store")
	}

	eng := &Engine{
		svc:        svc,
		extensions: hook.NewRegistry(logger),
		logger:     logger,
	}

	for _, opt := range opts {
		opt(eng)
	}

	config := svc.Config()

	// Create the versioning coordinator with the hook registry as its
	// lifecycle emitter.
	eng.coord = record.NewCoordinator(rs,
		record.WithLogger(logger),
		record.WithClock(svc.Clock()),
		record.WithEmitter(&recordEmitter{r: eng.extensions}),
		record.WithDeactivateRetries(config.DeactivateRetries),
	)

	// Repositories and the cascade orchestrator.
	eng.documents = document.NewRepository(eng.coord)
	eng.workflows = workflow.NewRepository(eng.coord)
	eng.orch = workflow.NewOrchestrator(eng.documents, eng.workflows,
		workflow.WithLogger(logger),
		workflow.WithEmitter(&cascadeEmitter{r: eng.extensions}),
		workflow.WithMaxIterations(config.MaxCascadeIterations),
	)

	// Form engine for document-level rule application.
	eng.forms = form.NewEngine(form.WithLogger(logger))

	// Register the observability metrics extension.
	var obsExt *observability.MetricsExtension
	if eng.meterProvider != nil {
		meter := eng.meterProvider.Meter("github.com/gbacskai/docflow4-sub000/observability")
		obsExt = observability.NewMetricsExtensionWithMeter(meter)
	} else {
		obsExt = observability.NewMetricsExtension()
	}
	eng.extensions.Register(obsExt)

	// Register the audit trail extension when enabled.
	if eng.auditEnabled {
		auditOpts := append([]audit.Option{audit.WithLogger(logger)}, eng.auditOpts...)
		eng.extensions.Register(audit.New(eng.coord, auditOpts...))
	}

	// Create the drift sweeper and hand its lifecycle to the service.
	sweeper, err := sweep.New(eng.coord, config.SweepSchedule, config.SweepCollections,
		sweep.WithLogger(logger),
	)
	if err != nil {
		return nil, fmt.Errorf("docflow: build sweeper: %w", err)
	}
	eng.sweeper = sweeper
	svc.SetSweeper(sweeper)

	return eng, nil
}

// ──────────────────────────────────────────────────
// Document operations
// ──────────────────────────────────────────────────

// CreateDocument writes a new document for the project and returns the
// stored view.
func (eng *Engine) CreateDocument(ctx context.Context, projectID, typeID string, data map[string]any) (*document.Document, error) {
	return eng.documents.Create(ctx, &document.Document{
		ProjectID: projectID,
		TypeID:    typeID,
		Data:      data,
	})
}

// UpdateDocument appends a new document version with the patch merged
// into the form data.
func (eng *Engine) UpdateDocument(ctx context.Context, docID string, patch map[string]any) (*document.Document, error) {
	return eng.documents.UpdateData(ctx, docID, patch)
}

// LatestDocument returns the active version of one document.
func (eng *Engine) LatestDocument(ctx context.Context, docID string) (*document.Document, error) {
	return eng.documents.Latest(ctx, docID)
}

// LatestDocuments returns the active version of every document in the
// project.
func (eng *Engine) LatestDocuments(ctx context.Context, projectID string) ([]*document.Document, error) {
	return eng.documents.ForProject(ctx, projectID)
}

// DocumentHistory returns every version of a document, newest first.
func (eng *Engine) DocumentHistory(ctx context.Context, docID string) ([]*document.Document, error) {
	return eng.documents.History(ctx, docID)
}

// SaveDocumentType writes a new version of a document type.
func (eng *Engine) SaveDocumentType(ctx context.Context, t *document.Type) (*document.Type, error) {
	return eng.documents.SaveType(ctx, t)
}

// ──────────────────────────────────────────────────
// Workflow operations
// ──────────────────────────────────────────────────

// SaveWorkflow writes a new version of a workflow.
func (eng *Engine) SaveWorkflow(ctx context.Context, w *workflow.Workflow) (*workflow.Workflow, error) {
	return eng.workflows.Save(ctx, w)
}

// ExecuteWorkflowRulesForProject runs every workflow's rules over the
// project's documents, cascading until no iteration writes a change.
// triggeredBy optionally names the document whose change started the
// run. The returned report encodes failure; it is never nil.
func (eng *Engine) ExecuteWorkflowRulesForProject(ctx context.Context, projectID, triggeredBy string) *workflow.Report {
	return eng.orch.ExecuteForProject(ctx, projectID, triggeredBy)
}

// ──────────────────────────────────────────────────
// Lifecycle
// ──────────────────────────────────────────────────

// Start begins background maintenance (the drift sweeper).
func (eng *Engine) Start(ctx context.Context) error {
	return eng.svc.Start(ctx)
}

// Stop gracefully shuts down the engine. Extensions receive the
// shutdown event before the store closes.
func (eng *Engine) Stop(ctx context.Context) error {
	eng.extensions.EmitShutdown(ctx)
	return eng.svc.Stop(ctx)
}

// Service returns the underlying Service.
func (eng *Engine) Service() *docflow.Service { return eng.svc }

// Extensions returns the extension registry.
func (eng *Engine) Extensions() *hook.Registry { return eng.extensions }

// Coordinator returns the versioning coordinator for direct record
// access.
func (eng *Engine) Coordinator() *record.Coordinator { return eng.coord }

// Documents returns the document repository.
func (eng *Engine) Documents() *document.Repository { return eng.documents }

// Workflows returns the workflow repository.
func (eng *Engine) Workflows() *workflow.Repository { return eng.workflows }

// Forms returns the form rule engine.
func (eng *Engine) Forms() *form.Engine { return eng.forms }

// Sweeper returns the drift sweeper.
func (eng *Engine) Sweeper() *sweep.Sweeper { return eng.sweeper }
