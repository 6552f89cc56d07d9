// Package overview loads record collections for the dashboard, falling back
// to the last cached copy when the backend cannot be reached.
package overview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MrJamesThe3rd/backoffice/internal/cache"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

const maxConcurrentLoads = 4

type Loader interface {
	List(ctx context.Context, kind record.Kind) ([]*record.Record, error)
}

type Store interface {
	Save(ctx context.Context, kind record.Kind, records []*record.Record) error
	Load(ctx context.Context, kind record.Kind) (*cache.Snapshot, error)
}

// Result is one kind's collection. Stale is set when it came from the cache;
// AsOf is then the time the snapshot was written.
type Result struct {
	Kind    record.Kind
	Records []*record.Record
	KPIs    []record.KPI
	Stale   bool
	AsOf    time.Time
	Err     error
}

type Service struct {
	remote Loader
	store  Store
	now    func() time.Time
}

// NewService builds a Service. store may be nil, which disables the fallback.
func NewService(remote Loader, store Store) *Service {
	return &Service{remote: remote, store: store, now: time.Now}
}

func (s *Service) Load(ctx context.Context, kind record.Kind) (*Result, error) {
	records, err := s.remote.List(ctx, kind)
	if err == nil {
		if s.store != nil {
			if err := s.store.Save(ctx, kind, records); err != nil {
				slog.Warn("failed to cache records", "kind", kind, "error", err)
			}
		}

		return &Result{
			Kind:    kind,
			Records: records,
			KPIs:    record.ComputeAggregates(kind, records),
			AsOf:    s.now(),
		}, nil
	}

	if s.store == nil {
		return nil, fmt.Errorf("loading %s: %w", kind, err)
	}

	slog.Warn("backend unavailable, using cached records", "kind", kind, "error", err)

	snap, cacheErr := s.store.Load(ctx, kind)
	if cacheErr != nil {
		return nil, fmt.Errorf("loading %s: %w", kind, errors.Join(err, cacheErr))
	}

	return &Result{
		Kind:    kind,
		Records: snap.Records,
		KPIs:    record.ComputeAggregates(kind, snap.Records),
		Stale:   true,
		AsOf:    snap.SavedAt,
	}, nil
}

// Dashboard loads every kind concurrently. A kind that fails on both the
// backend and the cache carries its error in Result.Err; the others still load.
func (s *Service) Dashboard(ctx context.Context, kinds ...record.Kind) []*Result {
	if len(kinds) == 0 {
		kinds = record.Kinds
	}

	results := make([]*Result, len(kinds))

	var g errgroup.Group
	g.SetLimit(maxConcurrentLoads)

	for i, kind := range kinds {
		g.Go(func() error {
			res, err := s.Load(ctx, kind)
			if err != nil {
				res = &Result{Kind: kind, KPIs: record.ComputeAggregates(kind, nil), Err: err}
			}

			results[i] = res

			return nil
		})
	}

	_ = g.Wait()

	return results
}
