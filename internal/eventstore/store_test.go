package eventstore

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	ferrors "git.home.luguber.info/inful/sitebuild/internal/foundation/errors"
)

const testBuildID = "build-123"

func newStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestEventStoreAppendAndRetrieve(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	payload := []byte(`{"test": "data"}`)

	require.NoError(t, store.Append(ctx, testBuildID, "TestEvent", payload, map[string]string{"key": "value"}))

	events, err := store.GetByBuildID(ctx, testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)

	event := events[0]
	require.Equal(t, testBuildID, event.BuildID())
	require.Equal(t, "TestEvent", event.Type())
	require.True(t, bytes.Equal(payload, event.Payload()))
	require.Equal(t, "value", event.Metadata()["key"])
	require.Positive(t, event.ID())
}

func TestEventStoreGetRange(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, ts := range []time.Time{base, base.Add(time.Hour), base.Add(2 * time.Hour)} {
		store.now = func() time.Time { return ts }
		require.NoError(t, store.Append(ctx, testBuildID, "E", []byte{byte('a' + i)}, nil))
	}

	events, err := store.GetRange(ctx, base.Add(30*time.Minute), base.Add(3*time.Hour))
	require.NoError(t, err)
	require.Len(t, events, 2)
	require.Equal(t, []byte("b"), events[0].Payload())
}

func TestEventStoreRecent(t *testing.T) {
	store := newStore(t)
	ctx := t.Context()

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, store.Append(ctx, id, TypeBuildStarted, nil, nil))
		require.NoError(t, store.Append(ctx, id, TypeBuildCompleted, nil, nil))
	}

	started, err := store.Recent(ctx, TypeBuildStarted, 2)
	require.NoError(t, err)
	require.Len(t, started, 2)
	require.Equal(t, "c", started[0].BuildID())
	require.Equal(t, "b", started[1].BuildID())

	all, err := store.Recent(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 6)
	require.Equal(t, TypeBuildCompleted, all[0].Type())

	none, err := store.Recent(ctx, "", 0)
	require.NoError(t, err)
	require.Empty(t, none)
}

func TestEventStorePersistsToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events.db")
	store, err := NewSQLiteStore(path)
	require.NoError(t, err)
	require.NoError(t, store.Append(t.Context(), testBuildID, "E", []byte("x"), nil))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStore(path)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	events, err := reopened.GetByBuildID(t.Context(), testBuildID)
	require.NoError(t, err)
	require.Len(t, events, 1)
}

func TestEventStoreClosedIsClassified(t *testing.T) {
	store, err := NewSQLiteStore(":memory:")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	err = store.Append(t.Context(), testBuildID, "E", nil, nil)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryEventStore))
}

func TestRecord_String(t *testing.T) {
	r := &Record{Seq: 7, Build: "b1", Kind: TypeStageCompleted}
	require.Equal(t, "b1#7 "+TypeStageCompleted, r.String())
}
