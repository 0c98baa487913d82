package tempban

import (
	"sync"
	"time"

	"github.com/zgojin/tempban-bot/internal/identity"
)

// Registry maps canonical user identifiers to absolute unblock instants.
// State is process-local and never persisted; a restart clears all bans.
//
// Expired entries are not swept in the background: they stay inert until the
// next read touches them, at which point they are removed.
type Registry struct {
	mu      sync.Mutex
	entries map[identity.ID]time.Time
	now     func() time.Time
}

// NewRegistry returns an empty registry using the wall clock.
func NewRegistry() *Registry {
	return &Registry{
		entries: make(map[identity.ID]time.Time),
		now:     time.Now,
	}
}

// Ban blocks the user for the given number of minutes from now. A second ban
// for the same user overwrites the previous expiry; durations do not
// accumulate.
func (r *Registry) Ban(id identity.ID, minutes int) {
	expiry := r.clock().Add(time.Duration(minutes) * time.Minute)

	r.mu.Lock()
	r.entries[id] = expiry
	r.mu.Unlock()
}

// IsBlocked reports whether the user is currently blocked. An entry found
// past its expiry is removed as a side effect of the read.
func (r *Registry) IsBlocked(id identity.ID) bool {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.entries[id]
	if !ok {
		return false
	}

	if !now.Before(expiry) {
		delete(r.entries, id)
		return false
	}

	return true
}

// UnblockTime returns the expiry instant for the user, if an entry exists.
// Expired entries are reported as absent but left in place for the next
// IsBlocked read to clean up.
func (r *Registry) UnblockTime(id identity.ID) (time.Time, bool) {
	now := r.clock()

	r.mu.Lock()
	defer r.mu.Unlock()

	expiry, ok := r.entries[id]
	if !ok || !now.Before(expiry) {
		return time.Time{}, false
	}

	return expiry, true
}

// Size returns the number of entries currently held, expired or not.
func (r *Registry) Size() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

func (r *Registry) clock() time.Time {
	if r.now != nil {
		return r.now()
	}
	return time.Now()
}
