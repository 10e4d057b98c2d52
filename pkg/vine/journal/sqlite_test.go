package journal

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "journal.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestSQLiteStore_AppendAndList(t *testing.T) {
	store := newTestSQLiteStore(t)

	rec := Record{
		RunID:     "run-1",
		Machine:   "m",
		Stage:     "s",
		Link:      "s/f",
		Kind:      KindFunction,
		Error:     "",
		Timestamp: time.Now().UTC().Truncate(time.Millisecond),
		Duration:  12 * time.Millisecond,
	}
	require.NoError(t, store.Append(Record{RunID: "run-1", Machine: "m", Kind: KindRunStart, Timestamp: rec.Timestamp}))
	require.NoError(t, store.Append(rec))
	require.NoError(t, store.Append(Record{RunID: "run-1", Machine: "m", Kind: KindRunComplete, Timestamp: rec.Timestamp}))

	recs, err := store.List("run-1")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, KindRunStart, recs[0].Kind)
	assert.Equal(t, KindFunction, recs[1].Kind)
	assert.Equal(t, "s/f", recs[1].Link)
	assert.Equal(t, "s", recs[1].Stage)
	assert.Equal(t, 12*time.Millisecond, recs[1].Duration)
	assert.True(t, recs[1].Timestamp.Equal(rec.Timestamp))
	assert.Equal(t, KindRunComplete, recs[2].Kind)
}

func TestSQLiteStore_ListUnknownRun(t *testing.T) {
	store := newTestSQLiteStore(t)

	recs, err := store.List("ghost")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestSQLiteStore_DeleteRun(t *testing.T) {
	store := newTestSQLiteStore(t)

	now := time.Now().UTC()
	require.NoError(t, store.Append(Record{RunID: "run-1", Machine: "m", Kind: KindRunStart, Timestamp: now}))
	require.NoError(t, store.Append(Record{RunID: "run-2", Machine: "m", Kind: KindRunStart, Timestamp: now}))

	require.NoError(t, store.DeleteRun("run-1"))

	recs, err := store.List("run-1")
	require.NoError(t, err)
	assert.Empty(t, recs)

	recs, err = store.List("run-2")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}

func TestSQLiteStore_Closed(t *testing.T) {
	store := newTestSQLiteStore(t)
	require.NoError(t, store.Close())

	assert.ErrorIs(t, store.Append(Record{RunID: "r", Kind: KindRunStart, Timestamp: time.Now()}), ErrStoreClosed)
	_, err := store.List("r")
	assert.ErrorIs(t, err, ErrStoreClosed)
	assert.ErrorIs(t, store.DeleteRun("r"), ErrStoreClosed)

	// Double close is a no-op.
	require.NoError(t, store.Close())
}

func TestSQLiteStore_PersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journal.db")

	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(Record{RunID: "run-1", Machine: "m", Kind: KindRunStart, Timestamp: time.Now().UTC()}))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	recs, err := reopened.List("run-1")
	require.NoError(t, err)
	assert.Len(t, recs, 1)
}
