package tempban

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func newTestRegistry(now *time.Time) *Registry {
	r := NewRegistry()
	r.now = func() time.Time { return *now }
	return r
}

func TestRegistry_BanAndExpiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)

	r.Ban("123", 10)
	assert.True(t, r.IsBlocked("123"))

	unblockAt, ok := r.UnblockTime("123")
	assert.True(t, ok)
	assert.Equal(t, now.Add(10*time.Minute), unblockAt)

	// One second before expiry the ban still holds.
	now = now.Add(10*time.Minute - time.Second)
	assert.True(t, r.IsBlocked("123"))

	// At expiry the ban is over and the read removes the entry.
	now = now.Add(time.Second)
	assert.False(t, r.IsBlocked("123"))

	r.mu.Lock()
	_, present := r.entries["123"]
	r.mu.Unlock()
	assert.False(t, present, "expired entry must be removed on read")
}

func TestRegistry_LastWriteWins(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	r := newTestRegistry(&now)

	r.Ban("7", 60)
	r.Ban("7", 1)

	unblockAt, ok := r.UnblockTime("7")
	assert.True(t, ok)
	assert.Equal(t, now.Add(time.Minute), unblockAt, "second ban overwrites, durations do not accumulate")

	now = now.Add(2 * time.Minute)
	assert.False(t, r.IsBlocked("7"))
}

func TestRegistry_UnknownUser(t *testing.T) {
	now := time.Now()
	r := newTestRegistry(&now)

	assert.False(t, r.IsBlocked("nobody"))
	_, ok := r.UnblockTime("nobody")
	assert.False(t, ok)
	assert.Zero(t, r.Size())
}
