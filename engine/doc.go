// Package engine wires the Docflow subsystems together and provides the
// primary application-level API: typed document and workflow operations
// plus cascade execution.
//
// The engine package exists to break a fundamental import cycle: the root
// docflow package defines Entity (imported by record, document, workflow)
// and therefore cannot import those packages back. Engine sits above all
// subsystem packages and below the application layer.
//
// # Building an Engine
//
//	svc, err := docflow.New(
//	    docflow.WithStore(memstore.New()),
//	    docflow.WithLogger(logger),
//	)
//
//	eng, err := engine.Build(svc,
//	    engine.WithExtension(myExtension),
//	    engine.WithAuditTrail(),
//	)
//
// # Working with documents
//
//	doc, err := eng.CreateDocument(ctx, "prj_1", typeID, map[string]any{"status": "queued"})
//	doc, err = eng.UpdateDocument(ctx, doc.ID, map[string]any{"status": "completed"})
//	report := eng.ExecuteWorkflowRulesForProject(ctx, "prj_1", doc.ID)
//
// # Options
//
//   - [WithExtension] registers a lifecycle extension
//   - [WithAuditTrail] enables the persistent audit trail
//   - [WithMeterProvider] sets the OpenTelemetry meter provider
package engine
