package bunstore

import (
	"time"

	"github.com/uptrace/bun"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// recordModel is one stored version row. Every collection shares the
// table; (collection, id, version) is the composite primary key.
type recordModel struct {
	bun.BaseModel `bun:"table:docflow_records"`

	Collection string         `bun:"collection,pk"`
	ID         string         `bun:"id,pk"`
	Version    string         `bun:"version,pk"`
	Active     bool           `bun:"active,notnull,default:false"`
	Payload    map[string]any `bun:"payload,type:jsonb"`
	CreatedAt  time.Time      `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt  time.Time      `bun:"updated_at,notnull,default:current_timestamp"`
}

func toRecordModel(collection string, it *record.Item) *recordModel {
	return &recordModel{
		Collection: collection,
		ID:         it.ID,
		Version:    it.Version,
		Active:     it.Active,
		Payload:    it.Payload,
		CreatedAt:  it.CreatedAt,
		UpdatedAt:  it.UpdatedAt,
	}
}

func fromRecordModel(m *recordModel) *record.Item {
	return &record.Item{
		Entity: docflow.Entity{
			CreatedAt: m.CreatedAt,
			UpdatedAt: m.UpdatedAt,
		},
		ID:      m.ID,
		Version: m.Version,
		Active:  m.Active,
		Payload: m.Payload,
	}
}
