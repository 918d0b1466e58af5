// Package tradelog provides the in-memory append-only trade event sink
// consumed by the engine and read by the operator API.
package tradelog

import (
	"sync"
	"time"

	"bybitScalpBot/internal/ports"
)

const defaultCapacity = 500

// MemoryRecorder retains the most recent trade events in a bounded buffer.
// Oldest entries are evicted once the capacity is reached.
type MemoryRecorder struct {
	mu       sync.Mutex
	entries  []ports.TradeLogEntry
	capacity int
	now      func() time.Time
}

var _ ports.TradeRecorder = (*MemoryRecorder)(nil)

// NewMemoryRecorder creates a recorder retaining up to capacity entries.
// A non-positive capacity selects the default of 500.
func NewMemoryRecorder(capacity int) *MemoryRecorder {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	return &MemoryRecorder{
		entries:  make([]ports.TradeLogEntry, 0, capacity),
		capacity: capacity,
		now:      time.Now,
	}
}

// Record appends an event, evicting the oldest entry when full.
func (r *MemoryRecorder) Record(msg string, fields map[string]interface{}) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.entries) == r.capacity {
		copy(r.entries, r.entries[1:])
		r.entries = r.entries[:r.capacity-1]
	}
	r.entries = append(r.entries, ports.TradeLogEntry{
		Time:    r.now().UTC(),
		Message: msg,
		Fields:  fields,
	})
}

// Entries returns a copy of the retained events, oldest first.
func (r *MemoryRecorder) Entries() []ports.TradeLogEntry {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]ports.TradeLogEntry, len(r.entries))
	copy(out, r.entries)
	return out
}
