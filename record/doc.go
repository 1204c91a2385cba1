// Package record defines the versioned record model, the key-value store
// contract backends implement, and the Coordinator that layers the
// single-active-version discipline on top of it.
//
// A logical record is the set of all stored items sharing an id; each
// write produces a new item under a fresh timestamp version. At most one
// item per id carries the active flag. The backing stores offer no
// multi-item transactions, so the Coordinator runs a best-effort
// deactivate-then-write sequence on the write path and repairs any
// resulting drift inline on the read path.
package record
