package eventlog

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestAppend_MonotonicSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	var seqs []int64
	for i := 0; i < 5; i++ {
		ev, err := s.Append(ctx, "main", "TurnCompleted", "", []byte(`{}`))
		require.NoError(t, err)
		seqs = append(seqs, ev.Seq)
	}

	for i := 1; i < len(seqs); i++ {
		assert.Greater(t, seqs[i], seqs[i-1])
	}
}

func TestAppend_MonotonicAcrossStreams(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	a1, err := s.Append(ctx, "a", "X", "", []byte(`{}`))
	require.NoError(t, err)
	b1, err := s.Append(ctx, "b", "X", "", []byte(`{}`))
	require.NoError(t, err)
	a2, err := s.Append(ctx, "a", "X", "", []byte(`{}`))
	require.NoError(t, err)

	assert.Equal(t, int64(1), a1.Seq)
	assert.Equal(t, int64(1), b1.Seq)
	assert.Equal(t, int64(2), a2.Seq)
}

func TestRead_ReturnsInOrderAfterSeq(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := s.Append(ctx, "main", "T", "", []byte(`{}`))
		require.NoError(t, err)
	}

	events, err := s.Read(ctx, "main", 1, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, int64(2), events[0].Seq)
	assert.Equal(t, int64(3), events[1].Seq)
}

func TestRead_FromZeroReturnsEarliest(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)

	events, err := s.Read(ctx, "main", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, int64(1), events[0].Seq)
}

func TestEvolveSchema_CreatesNewTableWithoutAlteringOld(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	ev1, err := s.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)

	require.NoError(t, s.EvolveSchema(ctx, "main"))

	ev2, err := s.Append(ctx, "main", "T", "trace-1", []byte(`{"v":2}`))
	require.NoError(t, err)

	assert.Greater(t, ev2.Seq, ev1.Seq)

	events, err := s.Read(ctx, "main", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "", events[0].TraceID)
	assert.Equal(t, "trace-1", events[1].TraceID)
}

func TestReopen_WriteCloseReopenSucceeds(t *testing.T) {
	dir := t.TempDir()

	s1, err := Open(dir)
	require.NoError(t, err)
	ctx := context.Background()
	_, err = s1.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, s1.EvolveSchema(ctx, "main"))
	_, err = s1.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)
	require.NoError(t, s1.Checkpoint(ctx))
	require.NoError(t, s1.Close())

	s2, err := Open(dir)
	require.NoError(t, err)
	defer s2.Close()

	events, err := s2.Read(ctx, "main", 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 2)

	_, err = s2.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)
}

func TestCheckpoint_LeavesWALEmpty(t *testing.T) {
	dir := t.TempDir()
	s, err := Open(dir)
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 10; i++ {
		_, err := s.Append(ctx, "main", "T", "", []byte(`{"payload":"some data to grow the wal a bit"}`))
		require.NoError(t, err)
	}

	require.NoError(t, s.Checkpoint(ctx))
	require.NoError(t, s.Close())

	matches, err := filepath.Glob(filepath.Join(dir, "*-wal"))
	require.NoError(t, err)
	for _, walPath := range matches {
		info, err := os.Stat(walPath)
		require.NoError(t, err)
		assert.Equal(t, int64(0), info.Size(), "wal file %s should be empty after checkpoint", walPath)
	}
}

func TestSubscribe_DeliversAppendedEvents(t *testing.T) {
	s := openTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	results := s.Subscribe(ctx, "main", 0)

	_, err := s.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)

	select {
	case r := <-results:
		require.NoError(t, r.Err)
		assert.Equal(t, int64(1), r.Event.Seq)
	case <-ctx.Done():
		t.Fatal("context cancelled before event delivered")
	}
}

func TestSubscribe_RestartableFromLastSeen(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)
	_, err = s.Append(ctx, "main", "T", "", []byte(`{}`))
	require.NoError(t, err)

	subCtx, cancel := context.WithCancel(context.Background())
	results := s.Subscribe(subCtx, "main", 1)

	r := <-results
	require.NoError(t, r.Err)
	assert.Equal(t, int64(2), r.Event.Seq)
	cancel()
}
