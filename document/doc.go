// Package document provides typed views over versioned document and
// document-type records. A Document or Type is a projection of a
// record.Item: FromItem decodes the stored payload, ToPayload encodes it
// back for the coordinator.
package document
