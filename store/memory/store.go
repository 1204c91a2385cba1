package memory

import (
	"context"
	"sync"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// Ensure Store implements the record contract at compile time.
// (The composite store.Store would create an import cycle here.)
var _ record.Store = (*Store)(nil)

// Store is a fully in-memory implementation of store.Store.
// Safe for concurrent access. Intended for unit testing and development.
type Store struct {
	mu sync.RWMutex

	// collections → record id → version → item
	collections map[string]map[string]map[string]*record.Item
}

// New returns a new empty Store.
func New() *Store {
	return &Store{
		collections: make(map[string]map[string]map[string]*record.Item),
	}
}

// ──────────────────────────────────────────────────
// Lifecycle — Migrate / Ping / Close
// ──────────────────────────────────────────────────

// Migrate is a no-op for the memory store.
func (m *Store) Migrate(_ context.Context) error { return nil }

// Ping always succeeds for the memory store.
func (m *Store) Ping(_ context.Context) error { return nil }

// Close is a no-op for the memory store.
func (m *Store) Close() error { return nil }

// ──────────────────────────────────────────────────
// Record store
// ──────────────────────────────────────────────────

// PutItem stores a new item under its (id, version) key.
func (m *Store) PutItem(_ context.Context, collection string, item *record.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	coll, ok := m.collections[collection]
	if !ok {
		coll = make(map[string]map[string]*record.Item)
		m.collections[collection] = coll
	}
	versions, ok := coll[item.ID]
	if !ok {
		versions = make(map[string]*record.Item)
		coll[item.ID] = versions
	}
	if _, exists := versions[item.Version]; exists {
		return docflow.ErrRecordExists
	}

	versions[item.Version] = item.Clone()
	return nil
}

// GetItem retrieves one item by compound key.
func (m *Store) GetItem(_ context.Context, collection string, key record.Key) (*record.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	it, ok := m.lookup(collection, key)
	if !ok {
		return nil, docflow.ErrRecordNotFound
	}
	return it.Clone(), nil
}

// QueryItems returns all items matching the filter.
func (m *Store) QueryItems(_ context.Context, collection string, f record.Filter) ([]*record.Item, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	coll := m.collections[collection]
	var result []*record.Item
	for recordID, versions := range coll {
		if f.ID != "" && recordID != f.ID {
			continue
		}
		for _, it := range versions {
			if f.ActiveOnly && !it.Active {
				continue
			}
			result = append(result, it.Clone())
		}
	}
	return result, nil
}

// UpdateItem applies a patch to one stored item.
func (m *Store) UpdateItem(_ context.Context, collection string, key record.Key, patch record.Patch) (*record.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	it, ok := m.lookup(collection, key)
	if !ok {
		return nil, docflow.ErrRecordNotFound
	}

	// Clone the patch payload so caller-held maps and slices never alias
	// stored state.
	patch.Payload = record.ClonePayload(patch.Payload)
	patch.Apply(it)
	return it.Clone(), nil
}

// DeleteItem removes exactly one item by compound key.
func (m *Store) DeleteItem(_ context.Context, collection string, key record.Key) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.lookup(collection, key); !ok {
		return docflow.ErrRecordNotFound
	}

	versions := m.collections[collection][key.ID]
	delete(versions, key.Version)
	if len(versions) == 0 {
		delete(m.collections[collection], key.ID)
	}
	return nil
}

// lookup finds a stored item without copying. Callers hold the lock.
func (m *Store) lookup(collection string, key record.Key) (*record.Item, bool) {
	coll, ok := m.collections[collection]
	if !ok {
		return nil, false
	}
	versions, ok := coll[key.ID]
	if !ok {
		return nil, false
	}
	it, ok := versions[key.Version]
	return it, ok
}
