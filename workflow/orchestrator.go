package workflow

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/gbacskai/docflow4-sub000/document"
	"github.com/gbacskai/docflow4-sub000/rule"
	"github.com/gbacskai/docflow4-sub000/status"
)

// AppliedAction records one status write performed by the cascade.
type AppliedAction struct {
	Iteration  int    `json:"iteration"`
	Validation string `json:"validation"`
	Action     string `json:"action"`
	DocumentID string `json:"documentId"`
	Identifier string `json:"identifier"`
	Status     string `json:"status"`
}

// Report is the result envelope of one cascade run. ExecuteForProject
// always returns a Report; failure is encoded in Success and Err rather
// than raised.
type Report struct {
	Success              bool            `json:"success"`
	ExecutedRules        int             `json:"executedRules"`
	AppliedActions       []AppliedAction `json:"appliedActions"`
	UpdatedDocuments     []string        `json:"updatedDocuments"`
	CascadeIterations    int             `json:"cascadeIterations"`
	TotalDocumentChanges int             `json:"totalDocumentChanges"`
	Err                  string          `json:"error,omitempty"`
}

// Emitter receives cascade lifecycle events. The engine package adapts
// the hook registry onto this interface.
type Emitter interface {
	EmitCascadeIterated(ctx context.Context, projectID string, iteration, changes int)
	EmitCascadeCompleted(ctx context.Context, projectID string, report *Report)
	EmitRuleSkipped(ctx context.Context, projectID, ruleText string, err error)
}

type nopEmitter struct{}

func (nopEmitter) EmitCascadeIterated(context.Context, string, int, int) {}
func (nopEmitter) EmitCascadeCompleted(context.Context, string, *Report) {}
func (nopEmitter) EmitRuleSkipped(context.Context, string, string, error) {}

var _ Emitter = nopEmitter{}

// Orchestrator drives workflow rules over a project's documents until a
// fixpoint. It holds no state between runs; every iteration re-reads the
// project's documents through the repository.
type Orchestrator struct {
	docs          *document.Repository
	workflows     *Repository
	logger        *slog.Logger
	emitter       Emitter
	maxIterations int
}

// OrchestratorOption configures an Orchestrator.
type OrchestratorOption func(*Orchestrator)

// WithLogger sets the orchestrator's logger.
func WithLogger(l *slog.Logger) OrchestratorOption {
	return func(o *Orchestrator) { o.logger = l }
}

// WithEmitter sets the cascade event emitter.
func WithEmitter(e Emitter) OrchestratorOption {
	return func(o *Orchestrator) { o.emitter = e }
}

// WithMaxIterations overrides the cascade safety cap.
func WithMaxIterations(n int) OrchestratorOption {
	return func(o *Orchestrator) {
		if n > 0 {
			o.maxIterations = n
		}
	}
}

// NewOrchestrator creates an Orchestrator over the document and workflow
// repositories.
func NewOrchestrator(docs *document.Repository, workflows *Repository, opts ...OrchestratorOption) *Orchestrator {
	o := &Orchestrator{
		docs:          docs,
		workflows:     workflows,
		logger:        slog.Default(),
		emitter:       nopEmitter{},
		maxIterations: 10,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// projectState is one iteration's snapshot: the project's documents
// addressed by type identifier, plus their extracted statuses.
type projectState struct {
	byIdent  map[string]*document.Document
	statuses map[string]string
}

// Status implements rule.Env over the snapshot's status map.
func (s *projectState) Status(ident string) (string, bool) {
	st, ok := s.statuses[ident]
	return st, ok
}

// Field conditions address live form state, which the project cascade
// does not carry. Reporting the field as absent keeps null/undefined
// comparisons meaningful while plain value comparisons evaluate false.
func (s *projectState) Field(string) (any, bool) { return nil, false }

func (s *projectState) FieldKind(string) (rule.Kind, bool) { return rule.KindText, false }

func (s *projectState) Count(name string) (int, error) {
	return 0, fmt.Errorf("workflow: count(%s) needs form state", name)
}

func (s *projectState) Call(fn string) (bool, error) {
	return false, fmt.Errorf("workflow: predicate %s needs form state", fn)
}

// ExecuteForProject runs every workflow's rules over the project's
// documents, cascading until an iteration writes nothing. triggeredBy
// optionally names the document whose change started the run; it is
// logged but does not scope rule evaluation. The returned report encodes
// failure instead of an error value and the method never panics across
// the boundary.
func (o *Orchestrator) ExecuteForProject(ctx context.Context, projectID, triggeredBy string) (report *Report) {
	report = &Report{Success: true}
	defer func() {
		if r := recover(); r != nil {
			report.Success = false
			report.Err = fmt.Sprintf("workflow: panic during cascade: %v", r)
			o.logger.Error("cascade panicked",
				slog.String("project_id", projectID),
				slog.Any("panic", r),
			)
		}
		o.emitter.EmitCascadeCompleted(ctx, projectID, report)
	}()

	o.logger.Info("cascade started",
		slog.String("project_id", projectID),
		slog.String("triggered_by", triggeredBy),
	)

	workflows, err := o.workflows.All(ctx)
	if err != nil {
		report.Success = false
		report.Err = fmt.Sprintf("load workflows: %v", err)
		return report
	}

	types, err := o.docs.Types(ctx)
	if err != nil {
		report.Success = false
		report.Err = fmt.Sprintf("load document types: %v", err)
		return report
	}

	for report.CascadeIterations < o.maxIterations {
		report.CascadeIterations++

		state, err := o.snapshot(ctx, projectID, types)
		if err != nil {
			report.Success = false
			report.Err = fmt.Sprintf("iteration %d: %v", report.CascadeIterations, err)
			return report
		}

		changed := o.iterate(ctx, projectID, workflows, state, report)
		o.emitter.EmitCascadeIterated(ctx, projectID, report.CascadeIterations, changed)

		if changed == 0 {
			return report
		}
	}

	// Still changing at the cap. A safety stop, not a failure: the
	// applied actions so far are all valid writes.
	o.logger.Warn("cascade stopped at iteration cap",
		slog.String("project_id", projectID),
		slog.Int("iterations", report.CascadeIterations),
		slog.Int("total_changes", report.TotalDocumentChanges),
	)
	return report
}

// snapshot refetches the project's documents and rebuilds the
// identifier-addressed state for one iteration.
func (o *Orchestrator) snapshot(ctx context.Context, projectID string, types map[string]*document.Type) (*projectState, error) {
	docs, err := o.docs.ForProject(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	state := &projectState{
		byIdent:  make(map[string]*document.Document, len(docs)),
		statuses: make(map[string]string, len(docs)),
	}
	for _, d := range docs {
		typ, ok := types[d.TypeID]
		if !ok || typ.Identifier == "" {
			o.logger.Warn("document has no addressable type",
				slog.String("document_id", d.ID),
				slog.String("type_id", d.TypeID),
			)
			continue
		}
		if prev, dup := state.byIdent[typ.Identifier]; dup {
			o.logger.Warn("duplicate type identifier in project",
				slog.String("identifier", typ.Identifier),
				slog.String("shadowed_document_id", prev.ID),
				slog.String("document_id", d.ID),
			)
		}
		state.byIdent[typ.Identifier] = d
		state.statuses[typ.Identifier] = status.Extract(d.Data)
	}
	return state, nil
}

// iterate runs every rule once over the snapshot and returns the number
// of document writes it performed. A single rule's failure is logged and
// skipped; the remaining rules still run.
func (o *Orchestrator) iterate(ctx context.Context, projectID string, workflows []*Workflow, state *projectState, report *Report) int {
	changed := 0

	for _, wf := range workflows {
		for _, r := range wf.Rules {
			cond, err := rule.ParseValidation(r.Validation)
			if err != nil {
				o.skipRule(ctx, projectID, r.Validation, err)
				continue
			}

			hold, err := rule.Evaluate(cond, state)
			if err != nil {
				o.skipRule(ctx, projectID, r.Validation, err)
				continue
			}
			if !hold {
				continue
			}

			actions, err := rule.ParseActions(r.Action)
			if err != nil {
				o.skipRule(ctx, projectID, r.Action, err)
				continue
			}

			report.ExecutedRules++
			for _, act := range actions {
				n, err := o.apply(ctx, r, act, state, report)
				if err != nil {
					o.skipRule(ctx, projectID, r.Action, err)
					continue
				}
				changed += n
			}
		}
	}

	return changed
}

// apply performs one matched action against the snapshot, returning the
// number of documents written (0 when the target already holds the new
// status). Writes update the snapshot in place so later rules in the
// same iteration observe them.
func (o *Orchestrator) apply(ctx context.Context, r Rule, act rule.Action, state *projectState, report *Report) (int, error) {
	switch a := act.(type) {
	case rule.Process:
		return o.setStatus(ctx, r, a.Ident, status.Queued, state, report)

	case rule.SetStatus:
		return o.setStatus(ctx, r, a.Ident, a.Value, state, report)

	case rule.CopyStatus:
		// The cached map may predate this iteration's writes; the copy
		// source is refetched from the store so the cascade observes
		// post-write state.
		src, ok := state.byIdent[a.From]
		if !ok {
			return 0, fmt.Errorf("workflow: copy source %s has no document", a.From)
		}
		fresh, err := o.docs.Latest(ctx, src.ID)
		if err != nil {
			return 0, fmt.Errorf("workflow: refetch %s: %w", a.From, err)
		}
		return o.setStatus(ctx, r, a.Ident, status.Extract(fresh.Data), state, report)

	case rule.Assign, rule.SetFlag:
		return 0, fmt.Errorf("workflow: form action %q outside a form pass", r.Action)

	default:
		return 0, fmt.Errorf("workflow: unknown action node %T", act)
	}
}

// setStatus writes a new status to the identified document. A write that
// would not change the extracted status is suppressed entirely, which is
// what lets the cascade reach its fixpoint.
func (o *Orchestrator) setStatus(ctx context.Context, r Rule, ident, newStatus string, state *projectState, report *Report) (int, error) {
	target, ok := state.byIdent[ident]
	if !ok {
		return 0, fmt.Errorf("workflow: action target %s has no document", ident)
	}
	if state.statuses[ident] == newStatus {
		return 0, nil
	}

	updated, err := o.docs.UpdateData(ctx, target.ID, map[string]any{"status": newStatus})
	if err != nil {
		return 0, fmt.Errorf("workflow: write %s: %w", ident, err)
	}

	state.byIdent[ident] = updated
	state.statuses[ident] = status.Extract(updated.Data)

	report.AppliedActions = append(report.AppliedActions, AppliedAction{
		Iteration:  report.CascadeIterations,
		Validation: r.Validation,
		Action:     r.Action,
		DocumentID: target.ID,
		Identifier: ident,
		Status:     newStatus,
	})
	report.TotalDocumentChanges++
	appendUnique(&report.UpdatedDocuments, target.ID)
	return 1, nil
}

func (o *Orchestrator) skipRule(ctx context.Context, projectID, text string, err error) {
	o.logger.Warn("rule skipped",
		slog.String("project_id", projectID),
		slog.String("rule", text),
		slog.String("error", err.Error()),
	)
	o.emitter.EmitRuleSkipped(ctx, projectID, text, err)
}

func appendUnique(ids *[]string, id string) {
	for _, existing := range *ids {
		if existing == id {
			return
		}
	}
	*ids = append(*ids, id)
}
