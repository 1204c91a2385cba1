// Package docflow provides a versioned record store and a workflow rule
// engine for document-workflow applications. It offers append-only
// versioning over schemaless key-value backends, a textual rule DSL with
// a tokenizing parser, and a cascade orchestrator that applies workflow
// rules to a fixpoint.
//
// Docflow is designed as a library, not a service. Import it, configure a
// store, and drive documents through workflows with ordinary Go calls.
//
// # Quick Start
//
//	svc, err := docflow.New(
//	    docflow.WithStore(memory.New()),
//	    docflow.WithLogger(logger),
//	)
//
// # Architecture
//
// Docflow follows a composable store pattern: the record package defines
// the key-value Store contract, and a single backend (memory, redis, bun)
// implements it together with the store.Store lifecycle. The record
// Coordinator layers the single-active-version discipline on top; the
// workflow Orchestrator reads and writes exclusively through the
// Coordinator.
//
// Every logical record keeps its full history: "update" is read-merge-
// create under a fresh version, never an in-place mutation. At most one
// version per record id is active at a time; concurrent writers can
// transiently violate that invariant, and reads self-heal it.
//
// All entity IDs use TypeID — type-prefixed, K-sortable, UUIDv7-based
// identifiers. Record versions are RFC 3339 timestamps and double as the
// tie-break key when drift is repaired.
package docflow
