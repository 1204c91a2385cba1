// Package audit is a hook extension that writes an append-only audit
// trail of record and cascade lifecycle events.
//
// Events are persisted as versioned records in the audit collection
// through the same coordinator the rest of the system writes with; the
// trail is just another collection. Recording failures are logged and
// never propagated — an audit hiccup must not fail the operation it
// observed.
//
// # Selective filtering
//
//	audit.New(coord,
//	    audit.WithActions(
//	        audit.ActionDriftRepaired,
//	        audit.ActionCascadeCompleted,
//	    ),
//	)
package audit
