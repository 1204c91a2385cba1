package bunstore

import (
	"context"
	"fmt"
	"time"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// PutItem inserts one stored version. The (collection, id, version)
// primary key makes re-inserting an existing version a unique violation,
// which maps to docflow.ErrRecordExists.
func (s *Store) PutItem(ctx context.Context, collection string, it *record.Item) error {
	m := toRecordModel(collection, it)
	_, err := s.db.NewInsert().Model(m).Exec(ctx)
	if err != nil {
		if isDuplicateKey(err) {
			return docflow.ErrRecordExists
		}
		return fmt.Errorf("docflow/bun: put item: %w", err)
	}
	return nil
}

// GetItem retrieves one stored version by its compound key.
func (s *Store) GetItem(ctx context.Context, collection string, key record.Key) (*record.Item, error) {
	m := new(recordModel)
	err := s.db.NewSelect().Model(m).
		Where("collection = ?", collection).
		Where("id = ?", key.ID).
		Where("version = ?", key.Version).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if isNoRows(err) {
			return nil, docflow.ErrRecordNotFound
		}
		return nil, fmt.Errorf("docflow/bun: get item: %w", err)
	}
	return fromRecordModel(m), nil
}

// QueryItems returns the collection's items matching the filter, sorted
// by (id, version) for determinism.
func (s *Store) QueryItems(ctx context.Context, collection string, filter record.Filter) ([]*record.Item, error) {
	var models []recordModel
	q := s.db.NewSelect().Model(&models).
		Where("collection = ?", collection)

	if filter.ID != "" {
		q = q.Where("id = ?", filter.ID)
	}
	if filter.ActiveOnly {
		q = q.Where("active")
	}

	err := q.Order("id ASC", "version ASC").Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("docflow/bun: query items: %w", err)
	}

	items := make([]*record.Item, 0, len(models))
	for i := range models {
		items = append(items, fromRecordModel(&models[i]))
	}
	return items, nil
}

// UpdateItem applies the patch to one stored version.
func (s *Store) UpdateItem(ctx context.Context, collection string, key record.Key, patch record.Patch) (*record.Item, error) {
	it, err := s.GetItem(ctx, collection, key)
	if err != nil {
		return nil, err
	}

	patch.Apply(it)

	m := toRecordModel(collection, it)
	m.UpdatedAt = time.Now().UTC()
	res, err := s.db.NewUpdate().Model(m).WherePK().Exec(ctx)
	if err != nil {
		return nil, fmt.Errorf("docflow/bun: update item: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return nil, docflow.ErrRecordNotFound
	}
	it.UpdatedAt = m.UpdatedAt
	return it, nil
}

// DeleteItem removes exactly one stored version.
func (s *Store) DeleteItem(ctx context.Context, collection string, key record.Key) error {
	res, err := s.db.NewDelete().
		TableExpr("docflow_records").
		Where("collection = ?", collection).
		Where("id = ?", key.ID).
		Where("version = ?", key.Version).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("docflow/bun: delete item: %w", err)
	}
	rows, _ := res.RowsAffected() //nolint:errcheck // driver always returns nil
	if rows == 0 {
		return docflow.ErrRecordNotFound
	}
	return nil
}
