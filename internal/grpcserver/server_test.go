package grpcserver

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/haroldpb"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store, err := eventlog.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return New(store, "main")
}

func TestTurnComplete_AcceptsValidRequest(t *testing.T) {
	s := newTestServer(t)
	resp, err := s.TurnComplete(context.Background(), &haroldpb.TurnCompleteRequest{
		PaneID:           "%3",
		PaneLabel:        "harold:0.3",
		AssistantMessage: "done",
		MainContext:      "harold",
	})
	require.NoError(t, err)
	assert.True(t, resp.Accepted)

	events, err := s.Store.Read(context.Background(), "main", 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, string(harevents.TypeTurnCompleted), events[0].Type)
}

func TestTurnComplete_RejectsMalformedPaneID(t *testing.T) {
	s := newTestServer(t)
	_, err := s.TurnComplete(context.Background(), &haroldpb.TurnCompleteRequest{
		PaneID: "bogus",
	})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestTurnComplete_RejectsOversizedField(t *testing.T) {
	s := newTestServer(t)
	huge := strings.Repeat("a", harevents.MaxLargeFieldBytes+1)
	_, err := s.TurnComplete(context.Background(), &haroldpb.TurnCompleteRequest{
		PaneID:           "%1",
		AssistantMessage: huge,
	})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	assert.Equal(t, codes.InvalidArgument, st.Code())
}

func TestIsLoopback_AcceptsLoopbackAddresses(t *testing.T) {
	assert.True(t, isLoopback("127.0.0.1"))
	assert.True(t, isLoopback("::1"))
	assert.True(t, isLoopback("localhost"))
	assert.False(t, isLoopback("0.0.0.0"))
	assert.False(t, isLoopback("192.168.1.5"))
}
