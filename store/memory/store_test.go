package memory_test

import (
	"context"
	"errors"
	"testing"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/record"
	"github.com/gbacskai/docflow4-sub000/store/memory"
)

func item(id, version string, active bool) *record.Item {
	return &record.Item{
		Entity:  docflow.NewEntity(),
		ID:      id,
		Version: version,
		Active:  active,
		Payload: map[string]any{"name": id},
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.PutItem(ctx, "documents", item("doc_1", "2024-01-01T00:00:00Z", true)); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	got, err := s.GetItem(ctx, "documents", record.Key{ID: "doc_1", Version: "2024-01-01T00:00:00Z"})
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if got.Payload["name"] != "doc_1" {
		t.Errorf("payload name = %v, want doc_1", got.Payload["name"])
	}
	if !got.Active {
		t.Error("expected active item")
	}
}

func TestPutDuplicateKey(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.PutItem(ctx, "documents", item("doc_1", "v1", true)); err != nil {
		t.Fatalf("PutItem: %v", err)
	}
	err := s.PutItem(ctx, "documents", item("doc_1", "v1", false))
	if !errors.Is(err, docflow.ErrRecordExists) {
		t.Errorf("duplicate put error = %v, want ErrRecordExists", err)
	}
}

func TestGetMissing(t *testing.T) {
	s := memory.New()

	_, err := s.GetItem(context.Background(), "documents", record.Key{ID: "nope", Version: "v1"})
	if !errors.Is(err, docflow.ErrRecordNotFound) {
		t.Errorf("error = %v, want ErrRecordNotFound", err)
	}
}

func TestQueryFilters(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	seed := []*record.Item{
		item("doc_1", "v1", false),
		item("doc_1", "v2", true),
		item("doc_2", "v1", true),
	}
	for _, it := range seed {
		if err := s.PutItem(ctx, "documents", it); err != nil {
			t.Fatalf("PutItem %s@%s: %v", it.ID, it.Version, err)
		}
	}

	all, err := s.QueryItems(ctx, "documents", record.Filter{})
	if err != nil {
		t.Fatalf("QueryItems: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("all items = %d, want 3", len(all))
	}

	active, err := s.QueryItems(ctx, "documents", record.Filter{ActiveOnly: true})
	if err != nil {
		t.Fatalf("QueryItems active: %v", err)
	}
	if len(active) != 2 {
		t.Errorf("active items = %d, want 2", len(active))
	}

	one, err := s.QueryItems(ctx, "documents", record.Filter{ID: "doc_1", ActiveOnly: true})
	if err != nil {
		t.Fatalf("QueryItems doc_1 active: %v", err)
	}
	if len(one) != 1 || one[0].Version != "v2" {
		t.Errorf("doc_1 active = %+v, want single v2", one)
	}

	empty, err := s.QueryItems(ctx, "missing", record.Filter{})
	if err != nil {
		t.Fatalf("QueryItems missing collection: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("missing collection items = %d, want 0", len(empty))
	}
}

func TestUpdatePatch(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	key := record.Key{ID: "doc_1", Version: "v1"}

	if err := s.PutItem(ctx, "documents", item("doc_1", "v1", true)); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	updated, err := s.UpdateItem(ctx, "documents", key, record.Inactive())
	if err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	if updated.Active {
		t.Error("expected active flag cleared")
	}

	// Idempotent: clearing an already-inactive flag is a no-op.
	again, err := s.UpdateItem(ctx, "documents", key, record.Inactive())
	if err != nil {
		t.Fatalf("UpdateItem again: %v", err)
	}
	if again.Active {
		t.Error("expected flag to stay cleared")
	}

	merged, err := s.UpdateItem(ctx, "documents", key, record.Patch{Payload: map[string]any{"status": "completed"}})
	if err != nil {
		t.Fatalf("UpdateItem payload: %v", err)
	}
	if merged.Payload["status"] != "completed" {
		t.Errorf("status = %v, want completed", merged.Payload["status"])
	}
	if merged.Payload["name"] != "doc_1" {
		t.Error("payload merge dropped existing key")
	}
}

func TestUpdateMissing(t *testing.T) {
	s := memory.New()

	_, err := s.UpdateItem(context.Background(), "documents", record.Key{ID: "nope", Version: "v1"}, record.Inactive())
	if !errors.Is(err, docflow.ErrRecordNotFound) {
		t.Errorf("error = %v, want ErrRecordNotFound", err)
	}
}

func TestDeleteOneVersion(t *testing.T) {
	s := memory.New()
	ctx := context.Background()

	if err := s.PutItem(ctx, "documents", item("doc_1", "v1", false)); err != nil {
		t.Fatalf("PutItem v1: %v", err)
	}
	if err := s.PutItem(ctx, "documents", item("doc_1", "v2", true)); err != nil {
		t.Fatalf("PutItem v2: %v", err)
	}

	if err := s.DeleteItem(ctx, "documents", record.Key{ID: "doc_1", Version: "v1"}); err != nil {
		t.Fatalf("DeleteItem: %v", err)
	}

	if _, err := s.GetItem(ctx, "documents", record.Key{ID: "doc_1", Version: "v1"}); !errors.Is(err, docflow.ErrRecordNotFound) {
		t.Errorf("deleted version error = %v, want ErrRecordNotFound", err)
	}
	if _, err := s.GetItem(ctx, "documents", record.Key{ID: "doc_1", Version: "v2"}); err != nil {
		t.Errorf("surviving version error = %v, want nil", err)
	}

	if err := s.DeleteItem(ctx, "documents", record.Key{ID: "doc_1", Version: "v1"}); !errors.Is(err, docflow.ErrRecordNotFound) {
		t.Errorf("double delete error = %v, want ErrRecordNotFound", err)
	}
}

func TestUpdatePatchCopiesCallerPayload(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	key := record.Key{ID: "doc_1", Version: "v1"}

	if err := s.PutItem(ctx, "documents", item("doc_1", "v1", true)); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	nested := map[string]any{"status": "queued"}
	if _, err := s.UpdateItem(ctx, "documents", key, record.Patch{Payload: map[string]any{"formData": nested}}); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	// The store must hold its own copy of the patch values.
	nested["status"] = "mutated"

	fresh, err := s.GetItem(ctx, "documents", key)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	form, ok := fresh.Payload["formData"].(map[string]any)
	if !ok || form["status"] != "queued" {
		t.Errorf("caller mutation leaked into stored patch value: %#v", fresh.Payload["formData"])
	}
}

func TestCopyOnRead(t *testing.T) {
	s := memory.New()
	ctx := context.Background()
	key := record.Key{ID: "doc_1", Version: "v1"}

	if err := s.PutItem(ctx, "documents", item("doc_1", "v1", true)); err != nil {
		t.Fatalf("PutItem: %v", err)
	}

	got, err := s.GetItem(ctx, "documents", key)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	got.Payload["name"] = "mutated"

	fresh, err := s.GetItem(ctx, "documents", key)
	if err != nil {
		t.Fatalf("GetItem fresh: %v", err)
	}
	if fresh.Payload["name"] != "doc_1" {
		t.Error("caller mutation leaked into the store")
	}
}
