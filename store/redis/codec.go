package redis

import (
	"time"

	"github.com/vmihailenco/msgpack/v5"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
)

// wireItem is the msgpack shape of a stored item.
type wireItem struct {
	ID        string         `msgpack:"id"`
	Version   string         `msgpack:"version"`
	Active    bool           `msgpack:"active"`
	Payload   map[string]any `msgpack:"payload"`
	CreatedAt time.Time      `msgpack:"created_at"`
	UpdatedAt time.Time      `msgpack:"updated_at"`
}

func encodeItem(it *record.Item) ([]byte, error) {
	return msgpack.Marshal(&wireItem{
		ID:        it.ID,
		Version:   it.Version,
		Active:    it.Active,
		Payload:   it.Payload,
		CreatedAt: it.CreatedAt,
		UpdatedAt: it.UpdatedAt,
	})
}

func decodeItem(data []byte) (*record.Item, error) {
	var w wireItem
	if err := msgpack.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	return &record.Item{
		Entity: docflow.Entity{
			CreatedAt: w.CreatedAt,
			UpdatedAt: w.UpdatedAt,
		},
		ID:      w.ID,
		Version: w.Version,
		Active:  w.Active,
		Payload: w.Payload,
	}, nil
}
