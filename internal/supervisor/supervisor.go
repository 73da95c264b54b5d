// Package supervisor wires Harold's three cooperating tasks — gRPC
// ingress, listener, projector — around one shared event store and a
// single broadcast shutdown signal, using golang.org/x/sync/errgroup to
// join them and propagate the first failure as a cancellation.
package supervisor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/kahgeh/harold/internal/classify"
	"github.com/kahgeh/harold/internal/config"
	"github.com/kahgeh/harold/internal/eventlog"
	"github.com/kahgeh/harold/internal/grpcserver"
	"github.com/kahgeh/harold/internal/imessage"
	"github.com/kahgeh/harold/internal/listener"
	"github.com/kahgeh/harold/internal/lockprobe"
	"github.com/kahgeh/harold/internal/notify"
	"github.com/kahgeh/harold/internal/projector"
	"github.com/kahgeh/harold/internal/router"
	"github.com/kahgeh/harold/internal/summarize"
	"github.com/kahgeh/harold/internal/tmux"
)

// MainStream is the single process-wide stream, sufficient for Harold's
// event volume.
const MainStream = "main"

// cursorFileName is the tiny local state file tracked alongside the
// event store.
const cursorFileName = "cursors.txt"

// projectorCursorFileName persists the projector's last-seen sequence
// number so a restart resumes the stream instead of replaying it from
// the start.
const projectorCursorFileName = "projector-cursor.txt"

// Run builds every component from cfg, spawns the three tasks as an
// errgroup.Group, and blocks until SIGINT/SIGTERM, at which point it joins
// every task and checkpoints the store exactly once.
func Run(ctx context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := os.MkdirAll(cfg.Store.Path, 0o755); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	store, err := eventlog.Open(cfg.Store.Path)
	if err != nil {
		return fmt.Errorf("open event store: %w", err)
	}

	tmuxClient := tmux.New(cfg.Timeouts.Subprocess())

	imsg, err := imessage.Open(cfg.IMessage.DBPath, cfg.IMessage.Recipient, cfg.Timeouts.Subprocess())
	if err != nil {
		return fmt.Errorf("open imessage client: %w", err)
	}
	defer imsg.Close()

	classifier := classify.New(cfg.AI.CLIPath, cfg.Timeouts.Subprocess())
	summarizer := summarize.New(cfg.AI.LocalModelDir, cfg.Timeouts.Subprocess())
	prober := lockprobe.New("", nil, cfg.Timeouts.Subprocess())

	rt := router.New(tmuxClient, classifier, imsg, store, MainStream)

	ntf := &notify.Notifier{
		Tmux:                tmuxClient,
		Lock:                prober,
		Summarizer:          summarizer,
		IMessage:            imsg,
		Store:               store,
		Stream:              MainStream,
		TTSCommand:          cfg.TTS.Command,
		TTSArgs:             cfg.TTS.Args,
		TTSVoice:            cfg.TTS.Voice,
		TTSTimeout:          cfg.Timeouts.Subprocess(),
		HandleIDs:           cfg.IMessage.HandleIDs,
		SkipIfSessionActive: cfg.Notify.SkipSessionActiveGate(),
		RouteState:          rt,
	}

	cursorPath := filepath.Join(cfg.Store.Path, cursorFileName)
	cursors, err := listener.OpenCursorStore(cursorPath)
	if err != nil {
		return fmt.Errorf("open cursor store: %w", err)
	}

	lst, err := listener.Open(cfg.IMessage.DBPath, cfg.IMessage.HandleIDs, cursors, store, MainStream)
	if err != nil {
		return fmt.Errorf("open listener: %w", err)
	}
	defer lst.Close()

	projCursorPath := filepath.Join(cfg.Store.Path, projectorCursorFileName)
	projCursor, err := projector.OpenCursorStore(projCursorPath)
	if err != nil {
		return fmt.Errorf("open projector cursor store: %w", err)
	}

	proj := &projector.Projector{
		Store:    store,
		Stream:   MainStream,
		Notifier: ntf,
		Router:   rt,
		Cursor:   projCursor,
	}

	srv := grpcserver.New(store, MainStream)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return grpcserver.Run(gctx, cfg.GRPC.Host, cfg.GRPC.Port, srv)
	})
	g.Go(func() error {
		return lst.Run(gctx)
	})
	g.Go(func() error {
		// Resume after the last persisted sequence rather than replaying
		// from 0: notify's TTS path and router's relay/confirmation sends
		// are not idempotent, so redelivering every historical event on
		// each restart would re-speak and re-relay them all.
		return proj.Run(gctx, projCursor.Seq())
	})

	waitErr := g.Wait()

	if err := store.Checkpoint(context.Background()); err != nil {
		slog.Error("checkpoint failed", "error", err)
	}
	if err := store.Close(); err != nil {
		slog.Error("close store failed", "error", err)
	}

	return waitErr
}
