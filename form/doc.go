// Package form runs validation rules against live form-field state.
//
// This is the strict sibling of the workflow orchestrator: it shares the
// rule DSL but evaluates against a form's fields instead of document
// statuses, and a parse or evaluation failure aborts the remaining rules
// for the pass instead of being skipped. State is an explicit struct
// passed into the engine; nothing here is process-global.
package form
