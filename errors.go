package docflow

import "errors"

var (
	// Store errors.
	ErrNoStore     = errors.New("docflow: no store configured")
	ErrStoreClosed = errors.New("docflow: store closed")

	// Not found errors.
	ErrRecordNotFound   = errors.New("docflow: record not found")
	ErrDocumentNotFound = errors.New("docflow: document not found")
	ErrTypeNotFound     = errors.New("docflow: document type not found")
	ErrWorkflowNotFound = errors.New("docflow: workflow not found")

	// Conflict errors.
	ErrRecordExists = errors.New("docflow: record version already exists")

	// Versioning errors. ErrNoActiveVersion is returned when a record id
	// has history but no active version; readers treat it as not found.
	ErrNoActiveVersion = errors.New("docflow: no active version")
)
