// Package notify implements Harold's outbound notification pipeline:
// session-active gate, screen-lock probe, TTS or iMessage delivery with
// dedup.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/kahgeh/harold/internal/agent"
	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/imessage"
	"github.com/kahgeh/harold/internal/lockprobe"
	"github.com/kahgeh/harold/internal/subprocess"
	"github.com/kahgeh/harold/internal/summarize"
	"github.com/kahgeh/harold/internal/tmux"
)

// Notifier drives the notify(turn) pipeline.
type Notifier struct {
	Tmux       *tmux.Client
	Lock       *lockprobe.Prober
	Summarizer *summarize.Summarizer
	IMessage   *imessage.Client
	Store      *eventlog.Store
	Stream     string

	TTSCommand string
	TTSArgs    []string
	TTSVoice   string
	TTSTimeout time.Duration

	HandleIDs           []string
	SkipIfSessionActive bool

	// RouteState is written to after an away (iMessage) notification, so
	// the router's T5 fallback tier can find the original source agent.
	RouteState RouteStateSetter
}

// RouteStateSetter lets notify update router.State without creating an
// import cycle between the two packages: a narrow capability interface
// in place of a direct dependency.
type RouteStateSetter interface {
	SetLastAwayNotificationSourceAgent(agent.Address)
}

// sentenceSplitRe isolates a trailing interrogative clause that follows a
// completed declarative/exclamatory sentence, e.g. "Fixed the bug. Should
// we deploy now?" splits into body "Fixed the bug." and follow-up "Should
// we deploy now?". A message that is itself a single question (no prior
// sentence terminator to split on) is left whole, as there is nothing to
// peel a follow-up away from.
var sentenceSplitRe = regexp.MustCompile(`^(.*[.!])\s+([^.!?]*\?)\s*$`)

// botEmojiPrefix is the leading marker composeIMessageBody adds; the dedup
// comparison strips it from both sides, mirroring imessage.Client's own
// stripping of a stored outgoing body.
const botEmojiPrefix = "🤖 "

// Handle runs the full notify pipeline for a TurnCompleted event.
func (n *Notifier) Handle(ctx context.Context, ev eventlog.Event) error {
	var payload harevents.TurnCompletedPayload
	if err := json.Unmarshal(ev.Payload, &payload); err != nil {
		return fmt.Errorf("unmarshal TurnCompleted: %w", err)
	}

	if n.SkipIfSessionActive {
		active, err := n.Tmux.ActiveSession(ctx)
		if err == nil {
			owner, err := n.Tmux.SessionFor(ctx, payload.PaneID)
			if err == nil && active == owner {
				return nil
			}
		}
	}

	locked, err := n.Lock.Locked(ctx)
	if err != nil {
		slog.Warn("lock probe failed, defaulting to TTS path", "error", err)
		locked = false
	}

	source := agent.NewTmuxPane(n.Tmux, payload.PaneID, payload.PaneLabel)

	if !locked {
		return n.notifyTTS(ctx, payload)
	}
	return n.notifyIMessage(ctx, payload, source)
}

func (n *Notifier) notifyTTS(ctx context.Context, payload harevents.TurnCompletedPayload) error {
	summary := n.Summarizer.Summarize(ctx, payload.AssistantMessage)
	message := fmt.Sprintf("%s on %s and waiting for further instructions", summary, payload.MainContext)

	args := append([]string{}, n.TTSArgs...)
	if n.TTSVoice != "" {
		args = append(args, "-v", n.TTSVoice)
	}
	args = append(args, message)

	_, err := subprocess.Run(ctx, n.TTSTimeout, n.TTSCommand, args, nil)
	if err != nil {
		slog.Error("tts delivery failed", "error", err)
		return nil // recovered locally, no event recorded
	}

	return n.record(ctx, harevents.NotificationSentPayload{
		Kind:        harevents.NotificationKindTTS,
		TargetAgent: payload.PaneLabel,
		Body:        message,
	})
}

func (n *Notifier) notifyIMessage(ctx context.Context, payload harevents.TurnCompletedPayload, source agent.Address) error {
	if n.IMessage == nil {
		slog.Warn("imessage path selected but no imessage client configured")
		return nil
	}

	body, followUp := composeIMessageBody(payload)

	if len(n.HandleIDs) > 0 {
		last, err := n.IMessage.LastOutgoing(ctx, n.HandleIDs[0])
		if err == nil && last == strings.TrimPrefix(body, botEmojiPrefix) {
			return nil // dedup: identical to the most recent outgoing text
		}
	}

	if err := n.IMessage.Send(ctx, body); err != nil {
		slog.Error("imessage delivery failed", "error", err)
		return nil
	}
	if followUp != "" {
		if err := n.IMessage.Send(ctx, followUp); err != nil {
			slog.Error("imessage follow-up delivery failed", "error", err)
		}
	}

	if n.RouteState != nil {
		n.RouteState.SetLastAwayNotificationSourceAgent(source)
	}

	return n.record(ctx, harevents.NotificationSentPayload{
		Kind:        harevents.NotificationKindIMessage,
		TargetAgent: payload.PaneLabel,
		Body:        body,
		FollowUp:    followUp,
	})
}

// composeIMessageBody truncates assistant_message to 280 characters,
// flattens newlines, and splits off a trailing question as a follow-up.
func composeIMessageBody(payload harevents.TurnCompletedPayload) (body, followUp string) {
	flat := strings.ReplaceAll(payload.AssistantMessage, "\n", " ")
	if runes := []rune(flat); len(runes) > 280 {
		flat = string(runes[:280])
	}

	msgBody, msgFollowUp := flat, ""
	if m := sentenceSplitRe.FindStringSubmatch(flat); m != nil {
		msgBody, msgFollowUp = strings.TrimSpace(m[1]), strings.TrimSpace(m[2])
	}

	composed := fmt.Sprintf("🤖 [%s] %s (%s)", payload.PaneLabel, msgBody, payload.MainContext)
	return composed, msgFollowUp
}

func (n *Notifier) record(ctx context.Context, payload harevents.NotificationSentPayload) error {
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal NotificationSent: %w", err)
	}
	_, err = n.Store.Append(ctx, n.Stream, string(harevents.TypeNotificationSent), "", raw)
	return err
}
