// Package hook defines the extension system for docflow.
// Extensions are notified of lifecycle events (version created, drift
// repaired, cascade finished, etc.) and can react to them — logging,
// metrics, audit trails.
//
// Each lifecycle hook is a separate interface so extensions opt in only
// to the events they care about.
package hook
