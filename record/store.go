package record

import "context"

// Store is the leaf key-value contract the Coordinator runs on. Items are
// keyed by (id, version) within a named collection. Implementations must
// guarantee single-item atomicity only; the Coordinator never assumes
// multi-item transactions.
//
// Backends: memory, redis, bun.
type Store interface {
	// PutItem writes a new item. It fails with docflow.ErrRecordExists if
	// an item with the same (id, version) key is already stored.
	PutItem(ctx context.Context, collection string, item *Item) error

	// GetItem retrieves one item by its compound key. It fails with
	// docflow.ErrRecordNotFound if the key is absent.
	GetItem(ctx context.Context, collection string, key Key) (*Item, error)

	// QueryItems returns all items matching the filter, in no particular
	// order. Callers own sorting.
	QueryItems(ctx context.Context, collection string, f Filter) ([]*Item, error)

	// UpdateItem applies a patch to one stored item and returns the
	// updated item. It fails with docflow.ErrRecordNotFound if the key is
	// absent.
	UpdateItem(ctx context.Context, collection string, key Key, patch Patch) (*Item, error)

	// DeleteItem removes exactly one item by its compound key. Other
	// versions of the same record are unaffected.
	DeleteItem(ctx context.Context, collection string, key Key) error
}
