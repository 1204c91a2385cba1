package audit

// Audit event actions. Each constant corresponds to one hook lifecycle
// event and becomes the action field of the stored audit record.
const (
	ActionVersionCreated   = "record.version_created"
	ActionDriftRepaired    = "record.drift_repaired"
	ActionCascadeCompleted = "workflow.cascade_completed"
)

// Audit event categories group related actions.
const (
	CategoryRecord   = "docflow.record"
	CategoryWorkflow = "docflow.workflow"
)

// Severity levels assigned by the extension.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
)

// Outcomes of the observed operation.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// AllActions returns every action this extension can emit.
func AllActions() []string {
	return []string{
		ActionVersionCreated,
		ActionDriftRepaired,
		ActionCascadeCompleted,
	}
}
