// Package grpcserver implements Harold's single unary RPC ingress,
// binding the loopback interface only.
package grpcserver

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"regexp"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/harolderr"
	"github.com/kahgeh/harold/internal/haroldpb"
)

var paneIDRe = regexp.MustCompile(`^%[0-9]+$`)

// Server implements haroldpb.HaroldServer over the event store.
type Server struct {
	Store  *eventlog.Store
	Stream string
}

// New returns a Server appending to the given stream.
func New(store *eventlog.Store, stream string) *Server {
	return &Server{Store: store, Stream: stream}
}

// TurnComplete validates the request and appends a TurnCompleted event,
// minting a fresh trace id for it: this RPC is the start of a turn, so
// there is no earlier event to inherit one from.
func (s *Server) TurnComplete(ctx context.Context, req *haroldpb.TurnCompleteRequest) (*haroldpb.TurnCompleteResponse, error) {
	if !paneIDRe.MatchString(req.PaneID) {
		return nil, status.Errorf(codes.InvalidArgument, "pane_id %q does not match %%[0-9]+", req.PaneID)
	}
	if err := checkFieldSizes(req); err != nil {
		return nil, status.Errorf(codes.InvalidArgument, "%s", err)
	}

	payload, err := json.Marshal(harevents.TurnCompletedPayload{
		PaneID:           req.PaneID,
		PaneLabel:        req.PaneLabel,
		LastUserPrompt:   req.LastUserPrompt,
		AssistantMessage: req.AssistantMessage,
		MainContext:      req.MainContext,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "marshal payload: %v", err)
	}

	traceID := uuid.NewString()
	if _, err := s.Store.Append(ctx, s.Stream, string(harevents.TypeTurnCompleted), traceID, payload); err != nil {
		return nil, status.Errorf(codes.Internal, "%s", fmt.Errorf("%w: %w", harolderr.ErrStoreWrite, err))
	}

	return &haroldpb.TurnCompleteResponse{Accepted: true}, nil
}

func checkFieldSizes(req *haroldpb.TurnCompleteRequest) error {
	large := []string{req.AssistantMessage, req.LastUserPrompt}
	for _, f := range large {
		if len(f) > harevents.MaxLargeFieldBytes {
			return fmt.Errorf("field exceeds %d bytes", harevents.MaxLargeFieldBytes)
		}
	}
	small := []string{req.PaneID, req.PaneLabel, req.MainContext}
	for _, f := range small {
		if len(f) > harevents.MaxFieldBytes {
			return fmt.Errorf("field exceeds %d bytes", harevents.MaxFieldBytes)
		}
	}
	return nil
}

// Run binds host:port (which must be a loopback address) and serves until
// ctx is cancelled, at which point it stops accepting new connections and
// lets in-flight RPCs complete before returning.
func Run(ctx context.Context, host string, port int, srv *Server) error {
	if !isLoopback(host) {
		return fmt.Errorf("%w: grpc host %q is not loopback", harolderr.ErrConfig, host)
	}

	lis, err := net.Listen("tcp", fmt.Sprintf("%s:%d", host, port))
	if err != nil {
		return fmt.Errorf("%w: %w", harolderr.ErrBindFailure, err)
	}

	gs := grpc.NewServer()
	haroldpb.RegisterHaroldServer(gs, srv)

	errCh := make(chan error, 1)
	go func() { errCh <- gs.Serve(lis) }()

	select {
	case <-ctx.Done():
		gs.GracefulStop()
		return nil
	case err := <-errCh:
		return err
	}
}

func isLoopback(host string) bool {
	ip := net.ParseIP(host)
	if ip != nil {
		return ip.IsLoopback()
	}
	return host == "localhost"
}
