// Package collection owns one page's records on the client side. It applies
// status changes optimistically, reconciles them with the backend and keeps
// the KPI set in step with every mutation.
package collection

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

var (
	// ErrInFlight is returned while an earlier change to the same record is
	// still waiting for the backend.
	ErrInFlight = errors.New("a change to this record is already in flight")
	// ErrStale is returned by Load when a newer load or Set superseded it.
	ErrStale = errors.New("load superseded by a newer request")
)

//go:generate mockgen -source=collection.go -destination=remote_mock.go -package=collection
type Remote interface {
	List(ctx context.Context, kind record.Kind) ([]*record.Record, error)
	Create(ctx context.Context, kind record.Kind, req api.CreateRequest) (*record.Record, error)
	UpdateStatus(ctx context.Context, kind record.Kind, id uuid.UUID, status record.Status, version int64) (*record.Record, error)
	Delete(ctx context.Context, kind record.Kind, id uuid.UUID) error
}

type Collection struct {
	kind   record.Kind
	remote Remote

	mu       sync.Mutex
	records  []*record.Record
	kpis     []record.KPI
	gen      uint64
	memo     record.Memo
	inflight map[uuid.UUID]struct{}
	loadSeq  uint64
}

func New(kind record.Kind, remote Remote) *Collection {
	return &Collection{
		kind:     kind,
		remote:   remote,
		kpis:     record.ComputeAggregates(kind, nil),
		inflight: make(map[uuid.UUID]struct{}),
	}
}

func (c *Collection) Kind() record.Kind {
	return c.kind
}

// setLocked swaps the collection and recomputes everything derived from it.
func (c *Collection) setLocked(records []*record.Record) {
	c.records = records
	c.gen++
	c.kpis = record.ComputeAggregates(c.kind, records)
}

// Load fetches the full collection. Only the most recent Load (or Set) wins;
// an older response that arrives late is dropped with ErrStale.
func (c *Collection) Load(ctx context.Context) error {
	return c.LoadFrom(ctx, func(ctx context.Context) ([]*record.Record, error) {
		return c.remote.List(ctx, c.kind)
	})
}

// LoadFrom is Load with another source, such as one that falls back to a
// local cache. The same staleness rule applies.
func (c *Collection) LoadFrom(ctx context.Context, fetch func(context.Context) ([]*record.Record, error)) error {
	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	records, err := fetch(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq {
		slog.Debug("dropping stale load", "kind", c.kind, "request", seq, "latest", c.loadSeq)
		return ErrStale
	}

	if err != nil {
		return fmt.Errorf("loading %s: %w", c.kind, err)
	}

	c.setLocked(records)

	return nil
}

// Set replaces the collection wholesale, for example with a cached copy.
// Loads started before Set are treated as stale.
func (c *Collection) Set(records []*record.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.loadSeq++
	c.setLocked(slices.Clone(records))
}

// Records returns the current collection. Treat it as read-only.
func (c *Collection) Records() []*record.Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.records
}

func (c *Collection) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	return len(c.records)
}

// View derives one page, reusing the last filter pass when possible.
func (c *Collection) View(crit record.Criteria, page, pageSize int) record.View {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.memo.Derive(c.gen, c.records, crit, page, pageSize)
}

// KPIs returns the aggregates of the whole collection, never of a filtered view.
func (c *Collection) KPIs() []record.KPI {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.kpis)
}

// Pending reports whether a change to id awaits the backend.
func (c *Collection) Pending(id uuid.UUID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, ok := c.inflight[id]

	return ok
}

func (c *Collection) begin(id uuid.UUID) error {
	if _, busy := c.inflight[id]; busy {
		return ErrInFlight
	}

	c.inflight[id] = struct{}{}

	return nil
}

// Change is a status change already applied locally and waiting to be
// committed to the backend.
type Change struct {
	c          *Collection
	id         uuid.UUID
	to         record.Status
	prev       *record.Record
	optimistic *record.Record
}

// Stage validates the transition and applies it to the collection without
// contacting the backend. The record stays in flight until Commit returns.
func (c *Collection) Stage(id uuid.UUID, to record.Status) (*Change, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	prev, ok := record.Lookup(c.records, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s", record.ErrNotFound, id)
	}

	// The local copy is optimistic while a change is pending, so it cannot be
	// used to validate the next one.
	if _, busy := c.inflight[id]; busy {
		return nil, ErrInFlight
	}

	next, err := record.ApplyTransition(c.records, id, to)
	if err != nil {
		return nil, err
	}

	c.inflight[id] = struct{}{}

	optimistic, _ := record.Lookup(next, id)
	c.setLocked(next)

	return &Change{c: c, id: id, to: to, prev: prev, optimistic: optimistic}, nil
}

// Status is the status the change moves the record to.
func (ch *Change) Status() record.Status {
	return ch.to
}

// Commit sends the staged change and then either adopts the server's copy or
// puts the previous record back.
func (ch *Change) Commit(ctx context.Context) (*record.Record, error) {
	c := ch.c

	updated, err := c.remote.UpdateStatus(ctx, c.kind, ch.id, ch.to, ch.prev.Version)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, ch.id)

	current, present := record.Lookup(c.records, ch.id)

	if err != nil {
		// A load that landed meanwhile carries newer server state; keep it.
		if present && current == ch.optimistic {
			c.replaceLocked(ch.prev)
		}

		slog.Warn("status change reverted", "kind", c.kind, "id", ch.id, "status", ch.to, "error", err)

		return nil, fmt.Errorf("updating %s status: %w", c.kind, err)
	}

	if present && (current == ch.optimistic || current.Version < updated.Version) {
		c.replaceLocked(updated)
	}

	return updated, nil
}

// Transition stages and commits a status change in one call.
func (c *Collection) Transition(ctx context.Context, id uuid.UUID, to record.Status) (*record.Record, error) {
	ch, err := c.Stage(id, to)
	if err != nil {
		return nil, err
	}

	return ch.Commit(ctx)
}

// replaceLocked swaps in r for the record carrying its id.
func (c *Collection) replaceLocked(r *record.Record) {
	replaced, err := record.Replace(c.records, r)
	if err != nil {
		return
	}

	c.setLocked(replaced)
}

// Add creates a record on the backend and prepends the stored copy.
func (c *Collection) Add(ctx context.Context, req api.CreateRequest) (*record.Record, error) {
	created, err := c.remote.Create(ctx, c.kind, req)
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", c.kind, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := make([]*record.Record, 0, len(c.records)+1)
	next = append(next, created)
	next = append(next, c.records...)
	c.setLocked(next)

	return created, nil
}

// Removal is a delete already applied locally and waiting to be committed.
type Removal struct {
	c    *Collection
	id   uuid.UUID
	idx  int
	prev *record.Record
}

// StageRemove drops the record locally without contacting the backend.
func (c *Collection) StageRemove(id uuid.UUID) (*Removal, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	idx := slices.IndexFunc(c.records, func(r *record.Record) bool { return r.ID == id })
	if idx < 0 {
		return nil, fmt.Errorf("%w: %s", record.ErrNotFound, id)
	}

	if err := c.begin(id); err != nil {
		return nil, err
	}

	prev := c.records[idx]
	next, _ := record.Remove(c.records, id)
	c.setLocked(next)

	return &Removal{c: c, id: id, idx: idx, prev: prev}, nil
}

// Commit deletes the record remotely and reinserts it at its old position if
// the backend refuses.
func (rm *Removal) Commit(ctx context.Context) error {
	c := rm.c

	err := c.remote.Delete(ctx, c.kind, rm.id)

	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.inflight, rm.id)

	if err != nil {
		if _, back := record.Lookup(c.records, rm.id); !back {
			at := min(rm.idx, len(c.records))
			c.setLocked(slices.Insert(slices.Clone(c.records), at, rm.prev))
		}

		slog.Warn("delete reverted", "kind", c.kind, "id", rm.id, "error", err)

		return fmt.Errorf("deleting %s: %w", c.kind, err)
	}

	return nil
}

// Remove stages and commits a delete in one call.
func (c *Collection) Remove(ctx context.Context, id uuid.UUID) error {
	rm, err := c.StageRemove(id)
	if err != nil {
		return err
	}

	return rm.Commit(ctx)
}
