package provider

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shelf-inventory/shelf/internal/query"
)

// Caller identifies on whose behalf queries run.
type Caller struct {
	Scope  string
	UserID string
	Token  string
}

// Fetcher resolves batches of queries concurrently and records every
// transition in a query.Store.
type Fetcher struct {
	provider   Provider
	store      *query.Store
	limit      int
	staleAfter time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// NewFetcher constructs a Fetcher. limit bounds concurrent upstream calls per
// batch; resolved data older than staleAfter is fetched again.
func NewFetcher(p Provider, store *query.Store, limit int, staleAfter time.Duration, logger *slog.Logger) *Fetcher {
	if limit <= 0 {
		limit = 4
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Fetcher{provider: p, store: store, limit: limit, staleAfter: staleAfter, logger: logger, now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (f *Fetcher) WithNow(now func() time.Time) *Fetcher {
	if now != nil {
		f.now = now
	}
	return f
}

// Store exposes the backing state store.
func (f *Fetcher) Store() *query.Store {
	return f.store
}

// Ensure fetches the keys that have no usable data and returns the states of
// every requested key. A failed refresh that kept older data is not retried
// until that data goes stale, so its notice survives until it is shown. ErrUnauthorized is returned when the upstream rejected
// the caller's credentials.
func (f *Fetcher) Ensure(ctx context.Context, caller Caller, keys ...query.Key) (map[query.Key]query.State, error) {
	current := f.store.Snapshot(caller.Scope, keys...)
	due := make([]query.Key, 0, len(keys))
	for _, key := range keys {
		if f.due(current[key]) {
			due = append(due, key)
		}
	}
	err := f.run(ctx, caller, due, false)
	return f.store.Snapshot(caller.Scope, keys...), err
}

// Refresh refetches every key, bypassing caches.
func (f *Fetcher) Refresh(ctx context.Context, caller Caller, keys ...query.Key) (map[query.Key]query.State, error) {
	err := f.run(ctx, caller, keys, true)
	return f.store.Snapshot(caller.Scope, keys...), err
}

func (f *Fetcher) due(st query.State) bool {
	if st.Expired {
		return true
	}
	switch {
	case st.Status == query.Success, st.Status == query.Failure && st.HasData:
		return f.staleAfter > 0 && f.now().Sub(st.ResolvedAt) > f.staleAfter
	default:
		return true
	}
}

func (f *Fetcher) run(ctx context.Context, caller Caller, keys []query.Key, fresh bool) error {
	if len(keys) == 0 {
		return nil
	}
	var unauthorized atomic.Bool
	var g errgroup.Group
	g.SetLimit(f.limit)
	for _, key := range keys {
		seq := f.store.Begin(caller.Scope, key)
		g.Go(func() error {
			data, err := f.provider.Fetch(ctx, Request{Key: key, UserID: caller.UserID, Token: caller.Token, Fresh: fresh})
			if err != nil {
				if errors.Is(err, ErrUnauthorized) {
					unauthorized.Store(true)
				}
				f.logger.Warn("dashboard query failed",
					slog.String("query", string(key)),
					slog.Uint64("seq", seq),
					slog.Any("error", err))
				f.store.Fail(caller.Scope, key, seq, err, NoticeFor(err))
				return nil
			}
			f.store.Succeed(caller.Scope, key, seq, data)
			return nil
		})
	}
	_ = g.Wait()
	if unauthorized.Load() {
		return ErrUnauthorized
	}
	return nil
}
