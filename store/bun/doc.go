// Package bunstore implements store.Store using the Bun ORM. All
// collections share one docflow_records table keyed by (collection, id,
// version) with a jsonb payload column. Production deployments use the
// PostgreSQL dialect; the DDL and error mapping stay portable to SQLite
// so the tests run on the in-process sqliteshim driver.
//
// The caller owns the *bun.DB lifecycle; bunstore never closes it. Pass
// the db handle through the constructor:
//
//	import (
//	    "github.com/uptrace/bun"
//	    "github.com/uptrace/bun/dialect/pgdialect"
//	    "github.com/uptrace/bun/driver/pgdriver"
//	    bunstore "github.com/gbacskai/docflow4-sub000/store/bun"
//	)
//
//	sqldb := sql.OpenDB(pgdriver.NewConnector(...))
//	db := bun.NewDB(sqldb, pgdialect.New())
//	store := bunstore.New(db)
//	store.Migrate(ctx)
package bunstore
