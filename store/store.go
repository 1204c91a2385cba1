package store

import (
	"context"

	"github.com/gbacskai/docflow4-sub000/record"
)

// Store is the aggregate persistence interface. The record contract is a
// composable interface; a backend implements it together with the
// lifecycle methods below.
type Store interface {
	record.Store

	// Migrate runs all schema migrations.
	Migrate(ctx context.Context) error

	// Ping checks backend connectivity.
	Ping(ctx context.Context) error

	// Close closes the store connection.
	Close() error
}
