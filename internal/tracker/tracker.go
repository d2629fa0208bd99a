// Package tracker owns the in-memory program collection and routes every
// create, update and delete through validation and the store.
package tracker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"gradtrack/internal/concurrency"
	"gradtrack/internal/domain"
	"gradtrack/internal/filter"
	"gradtrack/internal/mappers"
	"gradtrack/internal/store"
	"gradtrack/internal/validation"
)

// ErrStaleResult is returned by Refresh when a newer fetch already landed.
// The stale rows are dropped.
var ErrStaleResult = errors.New("tracker: stale list result discarded")

type Tracker struct {
	store store.Store
	log   *zap.Logger

	lastRequest atomic.Uint64

	mu       sync.RWMutex
	programs []domain.WireRecord
	applied  uint64
	fallback bool
}

func New(s store.Store, log *zap.Logger) *Tracker {
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{
		store:    s,
		log:      log.With(zap.String("store", s.Name())),
		programs: []domain.WireRecord{},
	}
}

// Refresh fetches the whole collection and replaces the held one. On failure
// it returns a *store.FetchError and keeps what it had; substituting sample
// rows is the caller's call (see UseFallback).
func (t *Tracker) Refresh(ctx context.Context) error {
	id := t.lastRequest.Add(1)

	rows, err := t.store.List(ctx)
	if err != nil {
		var ferr *store.FetchError
		if !errors.As(err, &ferr) {
			err = &store.FetchError{Store: t.store.Name(), Err: err}
		}
		t.log.Warn("list failed", zap.Uint64("request", id), zap.Error(err))
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	if id <= t.applied {
		t.log.Debug("dropping stale list result", zap.Uint64("request", id), zap.Uint64("applied", t.applied))
		return ErrStaleResult
	}
	t.applied = id
	t.programs = rows
	t.fallback = false
	t.log.Debug("collection replaced", zap.Uint64("request", id), zap.Int("count", len(rows)))
	return nil
}

// UseFallback swaps in rows that did not come from the store, typically the
// sample dataset after a failed Refresh. The next successful Refresh
// replaces them.
func (t *Tracker) UseFallback(rows []domain.WireRecord) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.programs = rows
	t.fallback = true
	t.log.Info("showing fallback programs", zap.Int("count", len(rows)))
}

// UsingFallback reports whether the held rows came from UseFallback.
func (t *Tracker) UsingFallback() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.fallback
}

// Records returns a copy of the held rows.
func (t *Tracker) Records() []domain.WireRecord {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]domain.WireRecord, len(t.programs))
	for i, r := range t.programs {
		out[i] = r.Clone()
	}
	return out
}

// Visible normalizes the held rows and applies the filter controls.
func (t *Tracker) Visible(c filter.Controls) []domain.DisplayRecord {
	return filter.Programs(mappers.ToDisplayAll(t.Records()), c)
}

// Find returns the edit model of the first row with identity id.
func (t *Tracker) Find(id domain.Identity) (domain.Program, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	for _, r := range t.programs {
		if r.Identity() == id {
			return mappers.ToEditModel(r), true
		}
	}
	return domain.Program{}, false
}

// Create validates p and appends it to the store.
func (t *Tracker) Create(ctx context.Context, p domain.Program) error {
	if err := validation.Validate(p); err != nil {
		return err
	}
	return t.write(ctx, store.OpCreate, p.Identity(), func() error {
		return t.store.Create(ctx, mappers.ToWirePayload(p))
	})
}

// CreateMany adds programs in input order with one write in flight at a
// time and refreshes once at the end. Validation runs up front on opts
// workers; invalid programs are skipped and a failed write does not stop the
// ones after it. Failures are *concurrency.ItemError sorted by index.
func (t *Tracker) CreateMany(ctx context.Context, programs []domain.Program, opts concurrency.ParallelOptions) []error {
	errs := concurrency.ForEach(ctx, programs, opts, func(_ context.Context, _ int, p domain.Program) error {
		return validation.Validate(p)
	})
	skip := make(map[int]bool, len(errs))
	for _, err := range errs {
		var ie *concurrency.ItemError
		if errors.As(err, &ie) {
			skip[ie.Index] = true
		}
	}

	created := 0
	for i, p := range programs {
		if skip[i] {
			continue
		}
		if err := ctx.Err(); err != nil {
			errs = append(errs, &concurrency.ItemError{Index: i, Err: err})
			continue
		}
		if err := t.store.Create(ctx, mappers.ToWirePayload(p)); err != nil {
			errs = append(errs, &concurrency.ItemError{Index: i, Err: t.writeFailed(store.OpCreate, p.Identity(), err)})
			continue
		}
		created++
	}
	t.log.Info("programs created", zap.Int("created", created), zap.Int("failed", len(errs)))

	if created > 0 {
		t.refreshAfterWrite(ctx, store.OpCreate)
	}
	sort.SliceStable(errs, func(a, b int) bool { return itemIndex(errs[a]) < itemIndex(errs[b]) })
	return errs
}

func itemIndex(err error) int {
	var ie *concurrency.ItemError
	if errors.As(err, &ie) {
		return ie.Index
	}
	return -1
}

// Update replaces the program stored under original with p. p may carry a
// new identity.
func (t *Tracker) Update(ctx context.Context, original domain.Identity, p domain.Program) error {
	if err := validation.Validate(p); err != nil {
		return err
	}
	return t.write(ctx, store.OpUpdate, original, func() error {
		return t.store.Update(ctx, original, mappers.ToWirePayload(p))
	})
}

func (t *Tracker) Delete(ctx context.Context, id domain.Identity) error {
	return t.write(ctx, store.OpDelete, id, func() error {
		return t.store.Delete(ctx, id)
	})
}

// ToggleFavorite flips the star on a held program and writes the whole
// record back.
func (t *Tracker) ToggleFavorite(ctx context.Context, id domain.Identity) (bool, error) {
	p, ok := t.Find(id)
	if !ok {
		return false, &store.WriteError{Store: t.store.Name(), Op: store.OpUpdate, Identity: id, Err: store.ErrNotFound}
	}
	p.IsFavorite = !p.IsFavorite
	if err := t.Update(ctx, id, p); err != nil {
		return false, err
	}
	return p.IsFavorite, nil
}

// write runs op and refreshes on success. A failed write leaves the
// collection untouched. A failed refresh after a good write is only logged.
func (t *Tracker) write(ctx context.Context, op string, id domain.Identity, do func() error) error {
	if err := do(); err != nil {
		return t.writeFailed(op, id, err)
	}
	t.log.Info("program saved", zap.String("op", op), zap.Stringer("program", id))
	t.refreshAfterWrite(ctx, op)
	return nil
}

// writeFailed wraps err as a *store.WriteError and logs it.
func (t *Tracker) writeFailed(op string, id domain.Identity, err error) error {
	var werr *store.WriteError
	if !errors.As(err, &werr) {
		err = &store.WriteError{Store: t.store.Name(), Op: op, Identity: id, Err: err}
	}
	t.log.Error("write failed", zap.String("op", op), zap.Stringer("program", id), zap.Error(err))
	return err
}

func (t *Tracker) refreshAfterWrite(ctx context.Context, op string) {
	if err := t.Refresh(ctx); err != nil && !errors.Is(err, ErrStaleResult) {
		t.log.Warn("refresh after write failed", zap.String("op", op), zap.Error(err))
	}
}
