// Package store defines the aggregate persistence interface: the record
// key-value contract plus lifecycle operations. A single backend
// implements all of it. Backends: Memory, Redis, and Bun (SQL).
package store
