package application

import (
	"sort"
	"sync"
)

// resourceLocker serializes conflict-check-then-write sequences per resource.
// The SQLite store cannot promise serializable isolation across the read and
// the subsequent write, so the booking service holds an advisory lock for the
// mechanic and the bay while it checks and commits. Keys are acquired in
// sorted order so two bookings touching the same pair cannot deadlock.
type resourceLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newResourceLocker() *resourceLocker {
	return &resourceLocker{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the mutexes for every distinct non-empty key and returns a
// function releasing them in reverse order. Mutexes are retained for the
// process lifetime; the key space is bounded by the shop's resource count.
func (l *resourceLocker) lock(keys ...string) func() {
	distinct := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, key := range keys {
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		distinct = append(distinct, key)
	}
	sort.Strings(distinct)

	acquired := make([]*sync.Mutex, 0, len(distinct))
	for _, key := range distinct {
		acquired = append(acquired, l.mutexFor(key))
	}
	for _, mu := range acquired {
		mu.Lock()
	}

	return func() {
		for i := len(acquired) - 1; i >= 0; i-- {
			acquired[i].Unlock()
		}
	}
}

func (l *resourceLocker) mutexFor(key string) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	mu, ok := l.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		l.locks[key] = mu
	}
	return mu
}
