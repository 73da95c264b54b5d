// Package router implements Harold's inbound reply routing pipeline:
// live agent discovery, tag parsing, the T1-T6 fallback cascade, a
// liveness recheck, sanitisation, relay, and confirmation.
package router

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kahgeh/harold/internal/agent"
	"github.com/kahgeh/harold/internal/classify"
	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/imessage"
	"github.com/kahgeh/harold/internal/sanitize"
	"github.com/kahgeh/harold/internal/tmux"
)

// Router owns the routing state and drives the full route_reply pipeline
// for each ReplyReceived event handed to it by the projector.
type Router struct {
	Tmux       *tmux.Client
	Classifier *classify.Classifier
	IMessage   *imessage.Client
	Store      *eventlog.Store
	Stream     string

	state State
}

func New(tmuxClient *tmux.Client, classifier *classify.Classifier, imsg *imessage.Client, store *eventlog.Store, stream string) *Router {
	return &Router{Tmux: tmuxClient, Classifier: classifier, IMessage: imsg, Store: store, Stream: stream}
}

// SetLastAwayNotificationSourceAgent implements notify.RouteStateSetter,
// letting the notifier record the source of an away notification into the
// router's state without the two packages importing each other's types
// beyond the narrow agent.Address interface.
func (r *Router) SetLastAwayNotificationSourceAgent(a agent.Address) {
	r.state.LastAwayNotificationSourceAgent = a
}

// Handle routes one ReplyReceived event. Only inbound replies are routed;
// self-direction events (the bot's own confirmations surfacing back
// through the external database) are acknowledged and ignored, to avoid
// a routing feedback loop.
func (r *Router) Handle(ctx context.Context, ev eventlog.Event) error {
	var payload harevents.ReplyReceivedPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal ReplyReceived: %w", err)
	}
	if payload.Direction != harevents.DirectionInbound {
		return nil
	}

	live, err := Directory(ctx, r.Tmux)
	if err != nil {
		slog.Error("list live agents failed", "error", err)
		return r.recordOutcome(ctx, ev.TraceID, payload.Text, "", harevents.RouteOutcomeNoRoute)
	}

	tag, body, hasTag := ParseTag(payload.Text)
	res := resolve(ctx, r.Classifier, live, tag, body, hasTag, r.state)

	if res.agent == nil {
		outcome := harevents.RouteOutcomeNoRoute
		r.sendNoRouteError(ctx, live)
		return r.recordOutcome(ctx, ev.TraceID, payload.Text, "", outcome)
	}

	// Liveness recheck immediately before relay.
	if !res.agent.IsAlive(ctx) {
		r.sendDeadPaneError(ctx, res.agent.Label())
		return r.recordOutcome(ctx, ev.TraceID, payload.Text, res.agent.Label(), harevents.RouteOutcomeDeadPane)
	}

	clean := sanitize.StripControl(res.body)

	if err := res.agent.Relay(ctx, "📱 "+clean); err != nil {
		slog.Error("relay failed", "agent", res.agent.Label(), "error", err)
		return r.recordOutcome(ctx, ev.TraceID, payload.Text, res.agent.Label(), harevents.RouteOutcomeDeadPane)
	}

	r.confirm(ctx, res.agent.Label())
	r.state.LastRoutedAgent = res.agent

	return r.recordOutcome(ctx, ev.TraceID, payload.Text, res.agent.Label(), harevents.RouteOutcomeDelivered)
}

func (r *Router) confirm(ctx context.Context, label string) {
	if r.IMessage == nil {
		return
	}
	if err := r.IMessage.Send(ctx, "✓ Delivered to ["+label+"]"); err != nil {
		slog.Error("confirmation send failed", "error", err)
	}
}

func (r *Router) sendNoRouteError(ctx context.Context, live []*agent.TmuxPane) {
	if r.IMessage == nil {
		return
	}
	labels := make([]string, len(live))
	for i, a := range live {
		labels[i] = a.Label()
	}
	msg := "No matching agent. Available: " + strings.Join(labels, ", ")
	if err := r.IMessage.Send(ctx, msg); err != nil {
		slog.Error("no-route error send failed", "error", err)
	}
}

func (r *Router) sendDeadPaneError(ctx context.Context, label string) {
	if r.IMessage == nil {
		return
	}
	if err := r.IMessage.Send(ctx, "Agent ["+label+"] is no longer active."); err != nil {
		slog.Error("dead-pane error send failed", "error", err)
	}
}

func (r *Router) recordOutcome(ctx context.Context, traceID, sourceText, resolvedAgent string, outcome harevents.RouteOutcome) error {
	payload, err := json.Marshal(harevents.ReplyRoutedPayload{
		SourceText:    sourceText,
		ResolvedAgent: resolvedAgent,
		Outcome:       outcome,
	})
	if err != nil {
		return fmt.Errorf("marshal ReplyRouted: %w", err)
	}
	_, err = r.Store.Append(ctx, r.Stream, string(harevents.TypeReplyRouted), traceID, payload)
	return err
}
