package ledger

import (
	"sync"
	"time"
)

// Ledger remembers which report IDs have already been forwarded. It is
// process-lifetime state only: nothing is persisted, and with a zero TTL it
// grows without bound exactly like the original bot's seen set.
//
// The poll loop is the only writer. The mutex exists for the health and
// metrics surfaces that read Len from other goroutines.
type Ledger struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time

	now func() time.Time
}

// New creates a ledger. A zero ttl disables expiry.
func New(ttl time.Duration) *Ledger {
	return &Ledger{
		ttl:  ttl,
		seen: make(map[string]time.Time),
		now:  time.Now,
	}
}

// Seen reports whether id was already marked (and, when a TTL is set, has not
// expired). An expired entry is removed on lookup.
func (l *Ledger) Seen(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	markedAt, ok := l.seen[id]
	if !ok {
		return false
	}
	if l.ttl > 0 && l.now().Sub(markedAt) >= l.ttl {
		delete(l.seen, id)
		return false
	}
	return true
}

// Mark records id as forwarded. Called strictly after a successful forward so
// a failed delivery stays eligible for the next overlapping window.
func (l *Ledger) Mark(id string) {
	l.mu.Lock()
	l.seen[id] = l.now()
	l.mu.Unlock()
}

// Len returns the number of remembered IDs, expired entries included.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

// Prune drops expired entries and returns how many were removed. No-op when
// the ledger is unbounded.
func (l *Ledger) Prune() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.ttl <= 0 {
		return 0
	}

	now := l.now()
	count := 0
	for id, markedAt := range l.seen {
		if now.Sub(markedAt) >= l.ttl {
			delete(l.seen, id)
			count++
		}
	}
	return count
}
