// Package workflow holds workflow definitions and the orchestrator that
// drives their rules over a project's documents.
//
// A workflow is an ordered list of rules, each a validation (condition
// text) and an action (action text) in the rule DSL. The orchestrator
// evaluates every rule against the project's current document statuses
// and applies matched actions, looping until an iteration changes
// nothing or the iteration cap is reached. Rules are sequential and
// first-match-applies-continues: a matching rule never stops the ones
// after it.
package workflow
