package query

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestStoreNoticeShownOnce(t *testing.T) {
	store := NewStore()
	seq := store.Begin("s1", "sales.daily")
	store.Succeed("s1", "sales.daily", seq, []any{1})

	seq = store.Begin("s1", "sales.daily")
	store.Fail("s1", "sales.daily", seq, errors.New("timeout"), "Upstream unavailable")

	st := store.Get("s1", "sales.daily")
	if !st.HasData || st.Status != Failure {
		t.Fatalf("expected stale data to remain, got %+v", st)
	}
	notices := store.TakeNotices("s1")
	if len(notices) != 1 || notices[0] != "Upstream unavailable" {
		t.Fatalf("unexpected notices %v", notices)
	}
	if again := store.TakeNotices("s1"); len(again) != 0 {
		t.Fatalf("expected notice to be consumed, got %v", again)
	}
}

func TestStoreCollapsesDuplicateNotices(t *testing.T) {
	store := NewStore()
	for _, key := range []Key{"products", "brands"} {
		seq := store.Begin("s1", key)
		store.Fail("s1", key, seq, errors.New("down"), "")
	}
	notices := store.TakeNotices("s1")
	if len(notices) != 1 || notices[0] != DefaultNotice {
		t.Fatalf("unexpected notices %v", notices)
	}
}

func TestStoreScopesAreIsolated(t *testing.T) {
	store := NewStore()
	seq := store.Begin("alice", "products")
	store.Succeed("alice", "products", seq, "alice-data")

	if st := store.Get("bob", "products"); st.HasData {
		t.Fatalf("expected bob to see nothing, got %+v", st)
	}
	snap := store.Snapshot("alice", "products", "brands")
	if snap["products"].Data != "alice-data" || snap["brands"].Status != Idle {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	store.Drop("alice")
	if st := store.Get("alice", "products"); st.HasData {
		t.Fatalf("expected dropped scope to be empty")
	}
}

func TestStorePrune(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store := NewStore().WithNow(func() time.Time { return now })
	store.Begin("old", "products")
	now = now.Add(2 * time.Hour)
	store.Begin("fresh", "products")

	if removed := store.Prune(time.Hour); removed != 1 {
		t.Fatalf("expected one scope pruned, got %d", removed)
	}
	if st := store.Get("fresh", "products"); st.Status != Loading {
		t.Fatalf("expected fresh scope to survive, got %+v", st)
	}
}

func TestStoreConcurrentRefreshLastWriteWins(t *testing.T) {
	store := NewStore()
	seqs := make([]uint64, 20)
	for i := range seqs {
		seqs[i] = store.Begin("s", "sales.weekly")
	}
	var wg sync.WaitGroup
	for i := len(seqs) - 1; i >= 0; i-- {
		wg.Add(1)
		go func(seq uint64) {
			defer wg.Done()
			store.Succeed("s", "sales.weekly", seq, seq)
		}(seqs[i])
	}
	wg.Wait()
	st := store.Get("s", "sales.weekly")
	if st.Data != seqs[len(seqs)-1] {
		t.Fatalf("expected newest response to win, got %v", st.Data)
	}
}

func TestStoreExpire(t *testing.T) {
	store := NewStore()
	seq := store.Begin("s1", "products")
	store.Succeed("s1", "products", seq, []any{1})
	seq = store.Begin("s2", "brands")
	store.Fail("s2", "brands", seq, errors.New("down"), "")
	store.Begin("s2", "sellers")

	if n := store.Expire(); n != 2 {
		t.Fatalf("expected two resolved states to expire, got %d", n)
	}
	st := store.Get("s1", "products")
	if !st.Expired || !st.HasData {
		t.Fatalf("expected expired state to keep its data, got %+v", st)
	}
	if store.Get("s2", "sellers").Expired {
		t.Fatalf("expected in-flight state to be left alone")
	}

	seq = store.Begin("s1", "products")
	if st := store.Succeed("s1", "products", seq, []any{2}); st.Expired {
		t.Fatalf("expected a new resolution to clear expiry")
	}
}
