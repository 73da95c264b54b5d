// Package diagnostics implements harold --diagnostics: it prints the
// resolved configuration, probes the screen-lock utility, and exercises
// the real TTS/iMessage code paths with a synthetic TurnCompleted event,
// rather than a mocked stand-in for either.
package diagnostics

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/kahgeh/harold/internal/config"
	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/imessage"
	"github.com/kahgeh/harold/internal/lockprobe"
	"github.com/kahgeh/harold/internal/notify"
	"github.com/kahgeh/harold/internal/summarize"
	"github.com/kahgeh/harold/internal/tmux"
)

// dummyStream is used only for the diagnostic append; it never
// interleaves with the daemon's main stream.
const dummyStream = "diagnostics"

// Run prints cfg, probes the lock state, and runs the notify pipeline
// against a synthetic turn, delaying delaySeconds first so the operator
// can lock the screen to test the iMessage path.
func Run(ctx context.Context, cfg *config.Config, delaySeconds int) error {
	fmt.Printf("resolved configuration:\n")
	b, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Println(string(b))

	if delaySeconds > 0 {
		fmt.Printf("sleeping %ds before probing lock state...\n", delaySeconds)
		select {
		case <-time.After(time.Duration(delaySeconds) * time.Second):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	prober := lockprobe.New("", nil, cfg.Timeouts.Subprocess())
	locked, err := prober.Locked(ctx)
	if err != nil {
		fmt.Printf("lock probe failed: %v\n", err)
	} else {
		fmt.Printf("screen locked: %v\n", locked)
	}

	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	store, err := eventlog.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open diagnostics store: %w", err)
	}
	defer store.Close()

	tmuxClient := tmux.New(cfg.Timeouts.Subprocess())

	var imsg *imessage.Client
	if cfg.IMessage.DBPath != "" {
		imsg, err = imessage.Open(cfg.IMessage.DBPath, cfg.IMessage.Recipient, cfg.Timeouts.Subprocess())
		if err != nil {
			fmt.Printf("imessage client unavailable: %v\n", err)
		} else {
			defer imsg.Close()
		}
	}

	ntf := &notify.Notifier{
		Tmux:                tmuxClient,
		Lock:                prober,
		Summarizer:          summarize.New(cfg.AI.LocalModelDir, cfg.Timeouts.Subprocess()),
		IMessage:            imsg,
		Store:               store,
		Stream:              dummyStream,
		TTSCommand:          cfg.TTS.Command,
		TTSArgs:             cfg.TTS.Args,
		TTSVoice:            cfg.TTS.Voice,
		TTSTimeout:          cfg.Timeouts.Subprocess(),
		HandleIDs:           cfg.IMessage.HandleIDs,
		SkipIfSessionActive: false,
	}

	payload, err := json.Marshal(harevents.TurnCompletedPayload{
		PaneID:           "%0",
		PaneLabel:        "diagnostics",
		LastUserPrompt:   "run diagnostics",
		AssistantMessage: "Diagnostics turn complete.",
		MainContext:      "harold --diagnostics",
	})
	if err != nil {
		return fmt.Errorf("marshal synthetic payload: %w", err)
	}

	ev, err := store.Append(ctx, dummyStream, string(harevents.TypeTurnCompleted), "", payload)
	if err != nil {
		return fmt.Errorf("append synthetic turn: %w", err)
	}

	fmt.Println("exercising notify pipeline with synthetic turn...")
	if err := ntf.Handle(ctx, ev); err != nil {
		return fmt.Errorf("notify handler: %w", err)
	}

	fmt.Println("diagnostics complete")
	return nil
}
