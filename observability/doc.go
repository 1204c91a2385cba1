// Package observability provides a metrics extension for the hook
// registry, recording record and cascade lifecycle counters via
// OpenTelemetry.
package observability
