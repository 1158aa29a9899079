package query

import (
	"sort"
	"sync"
	"time"
)

// Key names one query, such as "sales.daily".
type Key string

// Store keeps query states per scope. A scope is usually one signed-in
// session so that users never observe each other's data.
type Store struct {
	mu     sync.Mutex
	seq    uint64
	scopes map[string]*scope
	now    func() time.Time
}

type scope struct {
	states  map[Key]State
	touched time.Time
}

// NewStore constructs an empty store.
func NewStore() *Store {
	return &Store{scopes: make(map[string]*scope), now: time.Now}
}

// WithNow overrides the clock, used by tests.
func (s *Store) WithNow(now func() time.Time) *Store {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Store) scopeLocked(name string) *scope {
	sc, ok := s.scopes[name]
	if !ok {
		sc = &scope{states: make(map[Key]State)}
		s.scopes[name] = sc
	}
	sc.touched = s.now()
	return sc
}

// Begin issues a new request sequence for key and marks it started.
func (s *Store) Begin(scopeName string, key Key) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	sc := s.scopeLocked(scopeName)
	sc.states[key] = Reduce(sc.states[key], Started{Seq: s.seq})
	return s.seq
}

// Dispatch applies an event to the state of key and returns the result.
func (s *Store) Dispatch(scopeName string, key Key, ev Event) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc := s.scopeLocked(scopeName)
	next := Reduce(sc.states[key], ev)
	sc.states[key] = next
	return next
}

// Succeed resolves request seq of key with data.
func (s *Store) Succeed(scopeName string, key Key, seq uint64, data any) State {
	return s.Dispatch(scopeName, key, Succeeded{Seq: seq, Data: data, At: s.clock()})
}

// Fail resolves request seq of key with err.
func (s *Store) Fail(scopeName string, key Key, seq uint64, err error, notice string) State {
	return s.Dispatch(scopeName, key, Failed{Seq: seq, Err: err, Notice: notice, At: s.clock()})
}

func (s *Store) clock() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.now()
}

// Get returns the state of key. Unknown keys are Idle.
func (s *Store) Get(scopeName string, key Key) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.scopes[scopeName]; ok {
		return sc.states[key]
	}
	return State{}
}

// Snapshot returns the states of the requested keys.
func (s *Store) Snapshot(scopeName string, keys ...Key) map[Key]State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[Key]State, len(keys))
	sc := s.scopes[scopeName]
	for _, key := range keys {
		if sc != nil {
			out[key] = sc.states[key]
		} else {
			out[key] = State{}
		}
	}
	return out
}

// TakeNotices returns the pending notices of a scope and clears them, so each
// failure is reported once. Identical notices are collapsed.
func (s *Store) TakeNotices(scopeName string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	sc, ok := s.scopes[scopeName]
	if !ok {
		return nil
	}
	keys := make([]Key, 0, len(sc.states))
	for key, st := range sc.states {
		if st.Notice != "" {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	seen := make(map[string]struct{}, len(keys))
	var notices []string
	for _, key := range keys {
		st := sc.states[key]
		if _, dup := seen[st.Notice]; !dup {
			seen[st.Notice] = struct{}{}
			notices = append(notices, st.Notice)
		}
		st.Notice = ""
		sc.states[key] = st
	}
	return notices
}

// Expire marks every resolved state of every scope as expired and reports
// how many were marked. Data stays visible until the next fetch replaces it.
func (s *Store) Expire() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	marked := 0
	for _, sc := range s.scopes {
		for key, st := range sc.states {
			if st.Status == Success || st.Status == Failure {
				st.Expired = true
				sc.states[key] = st
				marked++
			}
		}
	}
	return marked
}

// Drop discards every state of a scope.
func (s *Store) Drop(scopeName string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.scopes, scopeName)
}

// Prune drops scopes untouched for longer than maxIdle and reports how many
// were removed.
func (s *Store) Prune(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	removed := 0
	for name, sc := range s.scopes {
		if sc.touched.Before(cutoff) {
			delete(s.scopes, name)
			removed++
		}
	}
	return removed
}
