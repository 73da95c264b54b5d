// Package projector tails the event store and dispatches each event by
// type to the notification or routing handler.
package projector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
)

// NotifyHandler and RouteHandler are the two dispatch targets. Both are
// best-effort: the projector logs and continues on error, it never raises
// back into the subscribe loop.
type NotifyHandler interface {
	Handle(ctx context.Context, ev eventlog.Event) error
}

type RouteHandler interface {
	Handle(ctx context.Context, ev eventlog.Event) error
}

// Projector owns no mutable state of its own beyond its persisted
// last-seen cursor; routing state lives inside the RouteHandler it
// dispatches to.
type Projector struct {
	Store    *eventlog.Store
	Stream   string
	Notifier NotifyHandler
	Router   RouteHandler

	// Cursor persists the last dispatched sequence number so a restart
	// resumes after it instead of replaying the whole stream. Nil is
	// accepted (defaults to always starting from the seq passed to Run)
	// for tests that do not care about restart behavior.
	Cursor *CursorStore
}

// Run subscribes to Stream from fromSeq and dispatches events until ctx is
// cancelled, advancing and persisting its last-seen sequence only after
// the dispatched handler for that event returns.
func (p *Projector) Run(ctx context.Context, fromSeq int64) error {
	results := p.Store.Subscribe(ctx, p.Stream, fromSeq)

	for res := range results {
		if res.Err != nil {
			return fmt.Errorf("subscribe: %w", res.Err)
		}

		if err := p.dispatch(ctx, res.Event); err != nil {
			slog.Error("handler failed", "type", res.Event.Type, "seq", res.Event.Seq, "error", err)
		}

		if p.Cursor != nil {
			if err := p.Cursor.Advance(res.Event.Seq); err != nil {
				slog.Error("persist projector cursor failed", "seq", res.Event.Seq, "error", err)
			}
		}
	}
	return ctx.Err()
}

func (p *Projector) dispatch(ctx context.Context, ev eventlog.Event) error {
	switch harevents.Type(ev.Type) {
	case harevents.TypeTurnCompleted:
		return p.Notifier.Handle(ctx, ev)
	case harevents.TypeReplyReceived:
		return p.Router.Handle(ctx, ev)
	default:
		return nil
	}
}
