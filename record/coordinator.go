package record

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	docflow "github.com/gbacskai/docflow4-sub000"
	"github.com/gbacskai/docflow4-sub000/backoff"
	"github.com/gbacskai/docflow4-sub000/id"
)

// Emitter receives record lifecycle events. hook.Registry satisfies this
// interface via an adapter in the engine package; the indirection breaks
// the import cycle between record and hook.
type Emitter interface {
	EmitVersionCreated(ctx context.Context, collection string, item *Item)
	EmitDriftRepaired(ctx context.Context, collection, recordID, survivor string, cleared int)
}

type nopEmitter struct{}

func (nopEmitter) EmitVersionCreated(context.Context, string, *Item)              {}
func (nopEmitter) EmitDriftRepaired(context.Context, string, string, string, int) {}

// Coordinator implements the versioning discipline over a Store:
// append-only writes, a single active version per record id, and
// self-healing reads when that invariant drifts.
type Coordinator struct {
	store   Store
	clock   func() time.Time
	logger  *slog.Logger
	emitter Emitter
	bo      backoff.Strategy

	// deactivateRetries bounds retries when clearing a prior active
	// version fails. A version left active after the budget is exhausted
	// is healed by the next read.
	deactivateRetries int
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithLogger sets the coordinator's logger.
func WithLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// WithClock sets the time source used for version stamps.
func WithClock(clock func() time.Time) CoordinatorOption {
	return func(c *Coordinator) { c.clock = clock }
}

// WithEmitter sets the lifecycle event emitter.
func WithEmitter(e Emitter) CoordinatorOption {
	return func(c *Coordinator) { c.emitter = e }
}

// WithDeactivateRetries sets the retry budget for the deactivation step.
func WithDeactivateRetries(n int) CoordinatorOption {
	return func(c *Coordinator) { c.deactivateRetries = n }
}

// WithBackoff sets the delay strategy between deactivation retries.
func WithBackoff(b backoff.Strategy) CoordinatorOption {
	return func(c *Coordinator) { c.bo = b }
}

// NewCoordinator creates a Coordinator over the given store.
func NewCoordinator(store Store, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		store:             store,
		clock:             func() time.Time { return time.Now().UTC() },
		logger:            slog.Default(),
		emitter:           nopEmitter{},
		bo:                backoff.NewExponential(10*time.Millisecond, 100*time.Millisecond),
		deactivateRetries: 2,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CreateOption configures a single Create call.
type CreateOption func(*createOptions)

type createOptions struct {
	id string
}

// WithID pins the logical record id instead of generating one. Updates
// use this to append a new version to an existing record.
func WithID(recordID string) CreateOption {
	return func(o *createOptions) { o.id = recordID }
}

// Create writes a new active version of a record. When no id is supplied
// a fresh one is generated. Any currently-active versions sharing the id
// are deactivated first; see the package comment for why that sequence is
// best-effort rather than atomic.
func (c *Coordinator) Create(ctx context.Context, collection string, payload map[string]any, opts ...CreateOption) (*Item, error) {
	var o createOptions
	for _, opt := range opts {
		opt(&o)
	}
	recordID := o.id
	if recordID == "" {
		recordID = id.NewRecordID().String()
	}

	if err := c.deactivatePrior(ctx, collection, recordID); err != nil {
		return nil, err
	}

	item := &Item{
		Entity:  docflow.NewEntity(),
		ID:      recordID,
		Version: FormatVersion(c.clock()),
		Active:  true,
		Payload: ClonePayload(payload),
	}

	err := c.store.PutItem(ctx, collection, item)
	// Two writes within one clock tick collide on (id, version). Nudge the
	// version forward instead of failing the create.
	for attempt := 1; errors.Is(err, docflow.ErrRecordExists) && attempt <= 3; attempt++ {
		v, parseErr := ParseVersion(item.Version)
		if parseErr != nil {
			break
		}
		item.Version = FormatVersion(v.Add(time.Duration(attempt) * time.Nanosecond))
		err = c.store.PutItem(ctx, collection, item)
	}
	if err != nil {
		return nil, fmt.Errorf("record: create %s/%s: %w", collection, recordID, err)
	}

	c.emitter.EmitVersionCreated(ctx, collection, item)
	return item.Clone(), nil
}

// Update appends a new version carrying the current active payload merged
// with the patch. It is read-merge-create, not an in-place mutation.
// Returns docflow.ErrRecordNotFound when the record has no active version.
func (c *Coordinator) Update(ctx context.Context, collection, recordID string, patch map[string]any) (*Item, error) {
	current, err := c.Latest(ctx, collection, recordID)
	if err != nil {
		return nil, err
	}

	merged := ClonePayload(current.Payload)
	if merged == nil {
		merged = make(map[string]any, len(patch))
	}
	for k, v := range patch {
		merged[k] = v
	}

	return c.Create(ctx, collection, merged, WithID(recordID))
}

// Latest returns the single active version of a record. When the
// invariant has drifted and several versions are active, the one with the
// greatest version survives and the rest are repaired inline.
func (c *Coordinator) Latest(ctx context.Context, collection, recordID string) (*Item, error) {
	items, err := c.store.QueryItems(ctx, collection, Filter{ID: recordID, ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("record: latest %s/%s: %w", collection, recordID, err)
	}
	if len(items) == 0 {
		return nil, docflow.ErrRecordNotFound
	}

	survivor := items[0]
	if len(items) > 1 {
		survivor = c.repairGroup(ctx, collection, items)
	}
	return survivor.Clone(), nil
}

// AllLatest returns the active version of every record in the collection,
// one item per id, sorted by id. Groups with more than one active version
// are repaired inline.
func (c *Coordinator) AllLatest(ctx context.Context, collection string) ([]*Item, error) {
	items, err := c.store.QueryItems(ctx, collection, Filter{ActiveOnly: true})
	if err != nil {
		return nil, fmt.Errorf("record: all latest %s: %w", collection, err)
	}

	groups := make(map[string][]*Item)
	for _, it := range items {
		groups[it.ID] = append(groups[it.ID], it)
	}

	result := make([]*Item, 0, len(groups))
	for _, group := range groups {
		survivor := group[0]
		if len(group) > 1 {
			survivor = c.repairGroup(ctx, collection, group)
		}
		result = append(result, survivor.Clone())
	}

	sort.Slice(result, func(i, k int) bool { return result[i].ID < result[k].ID })
	return result, nil
}

// History returns every stored version of a record, newest first.
// Returns docflow.ErrRecordNotFound when the record has no versions at all.
func (c *Coordinator) History(ctx context.Context, collection, recordID string) ([]*Item, error) {
	items, err := c.store.QueryItems(ctx, collection, Filter{ID: recordID})
	if err != nil {
		return nil, fmt.Errorf("record: history %s/%s: %w", collection, recordID, err)
	}
	if len(items) == 0 {
		return nil, docflow.ErrRecordNotFound
	}

	sort.Slice(items, func(i, k int) bool {
		return CompareVersions(items[i].Version, items[k].Version) > 0
	})

	result := make([]*Item, len(items))
	for i, it := range items {
		result[i] = it.Clone()
	}
	return result, nil
}

// Delete removes exactly one stored (id, version) item. It is an
// administrative operation; normal workflow writes never delete.
func (c *Coordinator) Delete(ctx context.Context, collection, recordID, version string) error {
	if err := c.store.DeleteItem(ctx, collection, Key{ID: recordID, Version: version}); err != nil {
		return fmt.Errorf("record: delete %s/%s@%s: %w", collection, recordID, version, err)
	}
	return nil
}

// deactivatePrior clears the active flag on every currently-active
// version of the record. Step (a)+(b) of the write protocol; the caller
// performs step (c), the new write.
func (c *Coordinator) deactivatePrior(ctx context.Context, collection, recordID string) error {
	items, err := c.store.QueryItems(ctx, collection, Filter{ID: recordID, ActiveOnly: true})
	if err != nil {
		return fmt.Errorf("record: deactivate query %s/%s: %w", collection, recordID, err)
	}

	for _, it := range items {
		c.clearActive(ctx, collection, it)
	}
	return nil
}

// clearActive clears one item's active flag, retrying within the budget.
// A final failure is logged and tolerated: the stale flag is healed by
// the next read that sees the group.
func (c *Coordinator) clearActive(ctx context.Context, collection string, it *Item) {
	key := Key{ID: it.ID, Version: it.Version}

	var err error
	for attempt := 0; attempt <= c.deactivateRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.bo.Delay(attempt)):
			}
		}
		if _, err = c.store.UpdateItem(ctx, collection, key, Inactive()); err == nil {
			return
		}
		if errors.Is(err, docflow.ErrRecordNotFound) {
			// Concurrently deleted; nothing left to clear.
			return
		}
	}

	c.logger.Warn("deactivate failed, leaving for read repair",
		slog.String("collection", collection),
		slog.String("record_id", it.ID),
		slog.String("version", it.Version),
		slog.String("error", err.Error()),
	)
}

// repairGroup resolves a multiple-active group: the greatest version
// survives and every other member has its flag cleared. Clearing an
// already-inactive flag is a no-op, so concurrent repairs converge.
func (c *Coordinator) repairGroup(ctx context.Context, collection string, group []*Item) *Item {
	survivor := group[0]
	for _, it := range group[1:] {
		if CompareVersions(it.Version, survivor.Version) > 0 {
			survivor = it
		}
	}

	cleared := 0
	for _, it := range group {
		if it == survivor {
			continue
		}
		c.clearActive(ctx, collection, it)
		cleared++
	}

	c.logger.Warn("active version drift repaired",
		slog.String("collection", collection),
		slog.String("record_id", survivor.ID),
		slog.String("survivor", survivor.Version),
		slog.Int("cleared", cleared),
	)
	c.emitter.EmitDriftRepaired(ctx, collection, survivor.ID, survivor.Version, cleared)

	return survivor
}
