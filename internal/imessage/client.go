// Package imessage sends outbound notifications through the Messages app
// via AppleScript, and reads the external message database directly to
// support outgoing-message dedup.
package imessage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/kahgeh/harold/internal/applescript"
	"github.com/kahgeh/harold/internal/harolderr"
	"github.com/kahgeh/harold/internal/subprocess"
)

// botPrefix is stripped from a stored outgoing body before comparing it
// against a freshly composed one for dedup.
const botPrefix = "🤖 "

// Client sends messages via osascript and reads the external message
// database for the dedup check.
type Client struct {
	Recipient string
	Timeout   time.Duration

	db *sql.DB // read-only handle onto the external message database
}

// Open connects read-only to the external message database at dbPath. The
// handle is separate from the listener's own handle: each keeps its own
// connection since they serve different components, but both open the
// same file in read-only mode so neither can corrupt the OS-owned
// database.
func Open(dbPath, recipient string, timeout time.Duration) (*Client, error) {
	db, err := sql.Open("sqlite", "file:"+dbPath+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("%w: open message db: %w", harolderr.ErrListenerQuery, err)
	}
	return &Client{Recipient: recipient, Timeout: timeout, db: db}, nil
}

func (c *Client) Close() error { return c.db.Close() }

// Send delivers text to the configured recipient via osascript, escaping
// it through the applescript package first.
func (c *Client) Send(ctx context.Context, text string) error {
	script := applescript.SendToBuddy(c.Recipient, text)
	_, err := subprocess.Run(ctx, c.Timeout, "osascript", []string{"-e", script}, nil)
	return err
}

// LastOutgoing returns the most recent outgoing (is_from_me=1) message
// body sent to handleID, with the bot-emoji prefix stripped, for the
// notifier's dedup comparison.
func (c *Client) LastOutgoing(ctx context.Context, handleID string) (string, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT text FROM message WHERE handle_id = ? AND is_from_me = 1
		 ORDER BY ROWID DESC LIMIT 1`, handleID)

	var text string
	err := row.Scan(&text)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: last outgoing: %w", harolderr.ErrListenerQuery, err)
	}
	return strings.TrimPrefix(text, botPrefix), nil
}
