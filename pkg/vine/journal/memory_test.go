package journal

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord(runID string, kind Kind, link string) Record {
	return Record{
		RunID:     runID,
		Machine:   "m",
		Stage:     "s",
		Link:      link,
		Kind:      kind,
		Timestamp: time.Now().UTC(),
		Duration:  5 * time.Millisecond,
	}
}

func TestMemoryStore_AppendAndList(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Append(sampleRecord("run-1", KindRunStart, "")))
	require.NoError(t, store.Append(sampleRecord("run-1", KindFunction, "s/f")))
	require.NoError(t, store.Append(sampleRecord("run-1", KindRunComplete, "")))
	require.NoError(t, store.Append(sampleRecord("run-2", KindRunStart, "")))

	recs, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, KindRunStart, recs[0].Kind)
	assert.Equal(t, KindFunction, recs[1].Kind)
	assert.Equal(t, "s/f", recs[1].Link)
	assert.Equal(t, KindRunComplete, recs[2].Kind)

	assert.Equal(t, 4, store.Len())
}

func TestMemoryStore_ListUnknownRun(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	recs, err := store.List("ghost")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestMemoryStore_DeleteRun(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Append(sampleRecord("run-1", KindRunStart, "")))
	require.NoError(t, store.Append(sampleRecord("run-2", KindRunStart, "")))

	require.NoError(t, store.DeleteRun("run-1"))

	recs, err := store.List("run-1")
	require.NoError(t, err)
	assert.Empty(t, recs)
	assert.Equal(t, 1, store.Len())

	// Deleting an absent run is fine.
	require.NoError(t, store.DeleteRun("ghost"))
}

func TestMemoryStore_Closed(t *testing.T) {
	store := NewMemoryStore()
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Append(sampleRecord("r", KindRunStart, "")), ErrStoreClosed)
	_, err := store.List("r")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.DeleteRun("r"), ErrStoreClosed)
}

func TestMemoryStore_ListReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	defer store.Close()

	require.NoError(t, store.Append(sampleRecord("run-1", KindRunStart, "")))

	recs, err := store.List("run-1")
	require.NoError(t, err)
	recs[0].Machine = "mutated"

	again, err := store.List("run-1")
	require.NoError(t, err)
	assert.Equal(t, "m", again[0].Machine)
}
