package projector

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
)

type recordingHandler struct {
	mu   sync.Mutex
	seen []eventlog.Event
	err  error
}

func (h *recordingHandler) Handle(ctx context.Context, ev eventlog.Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seen = append(h.seen, ev)
	return h.err
}

func (h *recordingHandler) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.seen)
}

func newProjectorStore(t *testing.T) *eventlog.Store {
	t.Helper()
	s, err := eventlog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestProjector_DispatchesByEventType(t *testing.T) {
	store := newProjectorStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "main", string(harevents.TypeTurnCompleted), "", []byte(`{}`))
	require.NoError(t, err)
	_, err = store.Append(ctx, "main", string(harevents.TypeReplyReceived), "", []byte(`{}`))
	require.NoError(t, err)

	notifier := &recordingHandler{}
	router := &recordingHandler{}
	p := &Projector{Store: store, Stream: "main", Notifier: notifier, Router: router}

	runCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = p.Run(runCtx, 0)

	assert.Equal(t, 1, notifier.count())
	assert.Equal(t, 1, router.count())
}

func TestProjector_ContinuesPastHandlerError(t *testing.T) {
	store := newProjectorStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "main", string(harevents.TypeTurnCompleted), "", []byte(`{}`))
	require.NoError(t, err)
	_, err = store.Append(ctx, "main", string(harevents.TypeTurnCompleted), "", []byte(`{}`))
	require.NoError(t, err)

	notifier := &recordingHandler{err: assert.AnError}
	router := &recordingHandler{}
	p := &Projector{Store: store, Stream: "main", Notifier: notifier, Router: router}

	runCtx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = p.Run(runCtx, 0)

	assert.Equal(t, 2, notifier.count(), "a handler error must not stop the subscribe loop")
}

func TestProjector_IgnoresUnknownEventTypes(t *testing.T) {
	store := newProjectorStore(t)
	ctx := context.Background()

	_, err := store.Append(ctx, "main", "SomethingElse", "", []byte(`{}`))
	require.NoError(t, err)

	notifier := &recordingHandler{}
	router := &recordingHandler{}
	p := &Projector{Store: store, Stream: "main", Notifier: notifier, Router: router}

	runCtx, cancel := context.WithTimeout(ctx, 300*time.Millisecond)
	defer cancel()
	_ = p.Run(runCtx, 0)

	assert.Equal(t, 0, notifier.count())
	assert.Equal(t, 0, router.count())
}
