package docflow

import "time"

// Config holds configuration for a Service.
type Config struct {
	// MaxCascadeIterations bounds a single workflow cascade run. Reaching
	// the cap is a safety stop, not a failure.
	MaxCascadeIterations int

	// DeactivateRetries is how many times a failed deactivation of a prior
	// active version is retried before it is left for read-side repair.
	DeactivateRetries int

	// SweepSchedule is the cron expression (or "@every ..." descriptor)
	// for the background drift-repair sweeper.
	SweepSchedule string

	// SweepCollections lists the collections the sweeper walks.
	SweepCollections []string

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		MaxCascadeIterations: 10,
		DeactivateRetries:    2,
		SweepSchedule:        "@every 5m",
		SweepCollections:     []string{CollectionDocuments, CollectionDocumentTypes, CollectionWorkflows},
		ShutdownTimeout:      30 * time.Second,
	}
}

// Well-known collection names used by the document and workflow packages.
// The record layer itself is collection-agnostic.
const (
	CollectionDocuments     = "documents"
	CollectionDocumentTypes = "documentTypes"
	CollectionWorkflows     = "workflows"
	CollectionProjects      = "projects"
	CollectionAudit         = "audit"
)
