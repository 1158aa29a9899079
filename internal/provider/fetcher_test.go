package provider

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shelf-inventory/shelf/internal/dashboard"
	"github.com/shelf-inventory/shelf/internal/query"
)

type scriptedProvider struct {
	mu    sync.Mutex
	calls map[query.Key]int
	fail  map[query.Key]error
	data  map[query.Key]any
	fresh []bool
}

func newScriptedProvider() *scriptedProvider {
	return &scriptedProvider{calls: map[query.Key]int{}, fail: map[query.Key]error{}, data: map[query.Key]any{}}
}

func (p *scriptedProvider) Fetch(ctx context.Context, req Request) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls[req.Key]++
	p.fresh = append(p.fresh, req.Fresh)
	if err := p.fail[req.Key]; err != nil {
		return nil, err
	}
	return p.data[req.Key], nil
}

func TestFetcherEnsureSkipsResolvedKeys(t *testing.T) {
	p := newScriptedProvider()
	p.data[SalesDaily] = []any{map[string]any{"day": 1, "month": 1, "year": 2025, "totalRevenue": 100}}
	fetcher := NewFetcher(p, query.NewStore(), 2, time.Minute, nil)
	caller := Caller{Scope: "s1", UserID: "u1"}

	states, err := fetcher.Ensure(context.Background(), caller, DashboardKeys...)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(states) != len(DashboardKeys) {
		t.Fatalf("expected every key, got %d", len(states))
	}
	for _, key := range DashboardKeys {
		if states[key].Status != query.Success {
			t.Fatalf("expected %s to resolve, got %v", key, states[key].Status)
		}
	}

	if _, err := fetcher.Ensure(context.Background(), caller, DashboardKeys...); err != nil {
		t.Fatalf("ensure again: %v", err)
	}
	if p.calls[SalesDaily] != 1 {
		t.Fatalf("expected resolved keys to be reused, got %d calls", p.calls[SalesDaily])
	}
}

func TestFetcherRefetchesStaleData(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newScriptedProvider()
	store := query.NewStore().WithNow(func() time.Time { return now })
	fetcher := NewFetcher(p, store, 2, time.Minute, nil).WithNow(func() time.Time { return now })
	caller := Caller{Scope: "s1"}

	if _, err := fetcher.Ensure(context.Background(), caller, Products); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	now = now.Add(2 * time.Minute)
	if _, err := fetcher.Ensure(context.Background(), caller, Products); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.calls[Products] != 2 {
		t.Fatalf("expected stale data to be refetched, got %d calls", p.calls[Products])
	}
}

func TestFetcherFailedRefreshKeepsLastGoodData(t *testing.T) {
	p := newScriptedProvider()
	p.data[SalesWeekly] = []any{map[string]any{"week": 18, "year": 2025, "totalRevenue": 8500, "totalQuantity": 150}}
	store := query.NewStore()
	fetcher := NewFetcher(p, store, 2, time.Hour, nil)
	caller := Caller{Scope: "s1"}

	if _, err := fetcher.Ensure(context.Background(), caller, SalesWeekly); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p.fail[SalesWeekly] = &UpstreamError{Status: 502, Message: "Bad gateway upstream"}
	states, err := fetcher.Refresh(context.Background(), caller, SalesWeekly)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	view := dashboard.Build(Snapshot(states), dashboard.RangeWeekly)
	if view.Empty() || view.Sales.Labels[0] != "Week 18, 2025" {
		t.Fatalf("expected last good data to render, got %+v", view.Sales)
	}
	if got := query.Combine(view.Empty(), states[SalesWeekly]); got != query.ViewReady {
		t.Fatalf("expected ready view, got %s", got)
	}
	notices := store.TakeNotices("s1")
	if len(notices) != 1 || notices[0] != "Bad gateway upstream" {
		t.Fatalf("expected a single notice, got %v", notices)
	}
	if again := store.TakeNotices("s1"); len(again) != 0 {
		t.Fatalf("notice shown twice: %v", again)
	}
	if !p.fresh[len(p.fresh)-1] {
		t.Fatalf("expected refresh to bypass caches")
	}
}

func TestFetcherReportsUnauthorized(t *testing.T) {
	p := newScriptedProvider()
	p.fail[Products] = &UpstreamError{Status: 401}
	fetcher := NewFetcher(p, query.NewStore(), 1, 0, nil)

	states, err := fetcher.Ensure(context.Background(), Caller{Scope: "s1"}, Products, Brands)
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if states[Brands].Status != query.Success {
		t.Fatalf("one failure must not cancel sibling queries, got %v", states[Brands].Status)
	}
	if got := query.Combine(false, states[Products], states[Brands]); got != query.ViewError {
		t.Fatalf("expected error view, got %s", got)
	}
}

func TestSnapshotIgnoresStatesWithoutData(t *testing.T) {
	snap := Snapshot(map[query.Key]query.State{
		Products: {Status: query.Loading},
		Brands:   {Status: query.Success, HasData: true, Data: []any{}},
	})
	if snap.Products != nil {
		t.Fatalf("expected pending products to be nil")
	}
	if snap.Brands == nil {
		t.Fatalf("expected resolved brands")
	}
	if SalesKey(dashboard.RangeMonthly) != SalesMonthly || SalesKey("bogus") != SalesWeekly {
		t.Fatalf("unexpected sales key mapping")
	}
}

type switchProvider struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (p *switchProvider) Fetch(ctx context.Context, req Request) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.err != nil {
		return nil, p.err
	}
	return []any{map[string]any{"name": "Phone", "price": 250, "quantity": 4}}, nil
}

func (p *switchProvider) setErr(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.err = err
}

func TestFetcherFailedRefreshThroughCacheNotifiesOnce(t *testing.T) {
	upstream := &switchProvider{}
	cache, _, _ := newTestCache(t, upstream)
	store := query.NewStore()
	fetcher := NewFetcher(cache, store, 2, time.Minute, nil)
	caller := Caller{Scope: "s1", UserID: "u1"}
	ctx := context.Background()

	if _, err := fetcher.Ensure(ctx, caller, Products); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	upstream.setErr(errors.New("connection reset"))
	if _, err := fetcher.Refresh(ctx, caller, Products); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	// The page load after the refresh redirect must not replace the failure
	// with the cached payload.
	states, err := fetcher.Ensure(ctx, caller, Products)
	if err != nil {
		t.Fatalf("ensure after refresh: %v", err)
	}
	st := states[Products]
	if st.Status != query.Failure || !st.HasData {
		t.Fatalf("expected failure with last good data, got %+v", st)
	}
	notices := store.TakeNotices("s1")
	if len(notices) != 1 || notices[0] != query.DefaultNotice {
		t.Fatalf("expected one notice, got %v", notices)
	}
	if again := store.TakeNotices("s1"); len(again) != 0 {
		t.Fatalf("expected notice to be shown once, got %v", again)
	}
	if upstream.calls != 2 {
		t.Fatalf("expected the initial fetch and the refresh only, got %d calls", upstream.calls)
	}
}

func TestFetcherRetriesFailedRefreshOnceStale(t *testing.T) {
	now := time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC)
	p := newScriptedProvider()
	p.data[Products] = []any{map[string]any{"name": "Phone"}}
	store := query.NewStore().WithNow(func() time.Time { return now })
	fetcher := NewFetcher(p, store, 2, time.Minute, nil).WithNow(func() time.Time { return now })
	caller := Caller{Scope: "s1"}

	if _, err := fetcher.Ensure(context.Background(), caller, Products); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	p.fail[Products] = errors.New("timeout")
	if _, err := fetcher.Refresh(context.Background(), caller, Products); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	delete(p.fail, Products)
	if _, err := fetcher.Ensure(context.Background(), caller, Products); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.calls[Products] != 2 {
		t.Fatalf("expected fresh failure to be kept, got %d calls", p.calls[Products])
	}

	now = now.Add(2 * time.Minute)
	states, err := fetcher.Ensure(context.Background(), caller, Products)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.calls[Products] != 3 || states[Products].Status != query.Success {
		t.Fatalf("expected stale failure to be retried, got %d calls and %v", p.calls[Products], states[Products].Status)
	}
}

func TestFetcherRefetchesExpiredData(t *testing.T) {
	p := newScriptedProvider()
	store := query.NewStore()
	fetcher := NewFetcher(p, store, 2, time.Hour, nil)
	caller := Caller{Scope: "s1"}

	if _, err := fetcher.Ensure(context.Background(), caller, Brands); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if n := store.Expire(); n != 1 {
		t.Fatalf("expected one expired state, got %d", n)
	}
	states, err := fetcher.Ensure(context.Background(), caller, Brands)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if p.calls[Brands] != 2 || states[Brands].Expired {
		t.Fatalf("expected expired data to be refetched, got %d calls, %+v", p.calls[Brands], states[Brands])
	}
}
