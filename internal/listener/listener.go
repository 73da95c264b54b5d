// Package listener tails the external message database for new rows and
// appends ReplyReceived events. It watches the parent directory with a
// debounced fsnotify handler rather than the file handle itself, since
// message-store writers typically replace-then-rename; a single goroutine
// owns the underlying connection throughout.
package listener

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/kahgeh/harold/internal/eventlog"
	harevents "github.com/kahgeh/harold/internal/events"
	"github.com/kahgeh/harold/internal/harolderr"
)

const (
	fallbackPollInterval = 5 * time.Second
	debounceInterval     = 100 * time.Millisecond
)

var handleIDRe = regexp.MustCompile(`^[0-9]+$`)

// Listener polls the external message database and appends ReplyReceived
// events, advancing per-direction cursors only after a successful append.
type Listener struct {
	db        *sql.DB
	dbPath    string
	cursors   *CursorStore
	store     *eventlog.Store
	stream    string
	handleIDs []string
}

// Open validates the configured handle ids and opens a read-only handle
// to the external message database.
func Open(dbPath string, handleIDs []string, cursors *CursorStore, store *eventlog.Store, stream string) (*Listener, error) {
	for _, id := range handleIDs {
		if !handleIDRe.MatchString(id) {
			return nil, fmt.Errorf("%w: invalid handle id %q", harolderr.ErrConfig, id)
		}
	}

	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open message db: %w", harolderr.ErrListenerQuery, err)
	}

	return &Listener{db: db, dbPath: dbPath, cursors: cursors, store: store, stream: stream, handleIDs: handleIDs}, nil
}

func (l *Listener) Close() error { return l.db.Close() }

// Run watches the message database for changes and performs a poll on
// every wake-up, until ctx is cancelled. Cursors advance row by row, so a
// batch abandoned part-way leaves each cursor at the last row whose append
// succeeded, and the remaining rows are read again on the next poll.
func (l *Listener) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("fsnotify unavailable, relying on fallback poll only", "error", err)
		watcher = nil
	} else {
		defer watcher.Close()
		if err := watcher.Add(filepath.Dir(l.dbPath)); err != nil {
			slog.Warn("watch message db directory failed", "error", err)
		}
	}

	ticker := time.NewTicker(fallbackPollInterval)
	defer ticker.Stop()

	var debounce *time.Timer
	wake := make(chan struct{}, 1)
	signalWake := func() {
		select {
		case wake <- struct{}{}:
		default:
		}
	}

	if err := l.poll(ctx); err != nil {
		slog.Error("initial poll failed", "error", err)
	}

	for {
		var watchEvents <-chan fsnotify.Event
		var watchErrors <-chan error
		if watcher != nil {
			watchEvents = watcher.Events
			watchErrors = watcher.Errors
		}

		select {
		case <-ctx.Done():
			return nil

		case _, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(debounceInterval, signalWake)

		case err, ok := <-watchErrors:
			if !ok {
				continue
			}
			slog.Warn("fsnotify error", "error", err)

		case <-ticker.C:
			signalWake()

		case <-wake:
			if err := l.poll(ctx); err != nil {
				slog.Error("poll failed", "error", err)
			}
		}
	}
}

type row struct {
	rowID int64
	text  string
}

// poll runs the inbound and self queries and appends a ReplyReceived
// event per returned row, in row-id order, advancing each direction's
// cursor only after its append succeeds.
func (l *Listener) poll(ctx context.Context) error {
	if err := l.pollDirection(ctx, l.cursors.Inbound(), false, harevents.DirectionInbound, l.cursors.AdvanceInbound); err != nil {
		return err
	}
	return l.pollDirection(ctx, l.cursors.Self(), true, harevents.DirectionSelf, l.cursors.AdvanceSelf)
}

func (l *Listener) pollDirection(ctx context.Context, after int64, fromMe bool, direction harevents.Direction, advance func(int64) error) error {
	placeholders := make([]string, len(l.handleIDs))
	args := make([]any, 0, len(l.handleIDs)+2)
	args = append(args, after)
	for i, id := range l.handleIDs {
		placeholders[i] = "?"
		args = append(args, id)
	}
	args = append(args, boolToInt(fromMe))

	query := fmt.Sprintf(
		`SELECT ROWID, text FROM message
		 WHERE ROWID > ? AND handle_id IN (%s) AND is_from_me = ?
		 ORDER BY ROWID`,
		strings.Join(placeholders, ","))

	rows, err := l.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: %w", harolderr.ErrListenerQuery, err)
	}
	defer rows.Close()

	var batch []row
	for rows.Next() {
		var r row
		if err := rows.Scan(&r.rowID, &r.text); err != nil {
			return fmt.Errorf("%w: scan row: %w", harolderr.ErrListenerQuery, err)
		}
		batch = append(batch, r)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("%w: %w", harolderr.ErrListenerQuery, err)
	}

	for _, r := range batch {
		payload, err := json.Marshal(harevents.ReplyReceivedPayload{Text: r.text, Direction: direction})
		if err != nil {
			return fmt.Errorf("marshal ReplyReceived: %w", err)
		}
		// A reply row is the start of a new trace, same as a TurnComplete
		// RPC: there is no earlier event in this stream to inherit one from.
		if _, err := l.store.Append(ctx, l.stream, string(harevents.TypeReplyReceived), uuid.NewString(), payload); err != nil {
			// At-least-once: stop here and leave the cursor un-advanced so
			// this row (and any after it) is retried on the next poll.
			return fmt.Errorf("%w: append ReplyReceived: %w", harolderr.ErrStoreWrite, err)
		}
		if err := advance(r.rowID); err != nil {
			return fmt.Errorf("advance cursor: %w", err)
		}
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
