package tradelog

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRecorderAppendsInOrder(t *testing.T) {
	r := NewMemoryRecorder(10)
	r.Record("first", nil)
	r.Record("second", map[string]interface{}{"qty": 1.5})

	entries := r.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "first", entries[0].Message)
	assert.Equal(t, "second", entries[1].Message)
	assert.Equal(t, 1.5, entries[1].Fields["qty"])
	assert.False(t, entries[0].Time.After(entries[1].Time))
}

func TestMemoryRecorderEvictsOldest(t *testing.T) {
	r := NewMemoryRecorder(3)
	for i := 0; i < 5; i++ {
		r.Record(fmt.Sprintf("event-%d", i), nil)
	}

	entries := r.Entries()
	require.Len(t, entries, 3)
	assert.Equal(t, "event-2", entries[0].Message)
	assert.Equal(t, "event-4", entries[2].Message)
}

func TestMemoryRecorderSnapshotIsolated(t *testing.T) {
	r := NewMemoryRecorder(10)
	r.Record("one", nil)

	snapshot := r.Entries()
	r.Record("two", nil)
	assert.Len(t, snapshot, 1)
	assert.Len(t, r.Entries(), 2)
}
