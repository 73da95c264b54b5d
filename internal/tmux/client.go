// Package tmux wraps the terminal multiplexer's command-line surface:
// list-panes, display-message, send-keys. Every call goes through
// internal/subprocess, argv-only, never a shell.
//
// Grounded on other_examples/3198c6ad_mkober-muxcode's bus-notify.go: the
// has-session liveness check and the two-step send-keys relay (-l literal
// text, then a bare Enter key) are carried over verbatim in method shape.
package tmux

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/kahgeh/harold/internal/subprocess"
)

// Pane is one row parsed from `list-panes -a`.
type Pane struct {
	ID      string // "%12"
	Session string // "backend:0.1"
	Command string // pane_current_command
}

// agentCommandRe matches the dotted-numeric pane_current_command heuristic
// that identifies a pane running an agent runtime (e.g. "123.45.6").
var agentCommandRe = regexp.MustCompile(`^\d+(\.\d+){2,}$`)

// IsAgentCommand reports whether cmd looks like a live agent runtime
// process, per the dotted-numeric heuristic.
func IsAgentCommand(cmd string) bool {
	return agentCommandRe.MatchString(cmd)
}

// Client invokes tmux commands with a fixed per-call timeout.
type Client struct {
	Timeout time.Duration
}

// New returns a Client with the given per-call subprocess timeout.
func New(timeout time.Duration) *Client {
	return &Client{Timeout: timeout}
}

func (c *Client) run(ctx context.Context, args ...string) (subprocess.Result, error) {
	return subprocess.Run(ctx, c.Timeout, "tmux", args, nil)
}

// ListPanes returns every pane tmux currently knows about, across all
// sessions, parsed from list-panes -a.
func (c *Client) ListPanes(ctx context.Context) ([]Pane, error) {
	res, err := c.run(ctx, "list-panes", "-a", "-F",
		"#{pane_id}|#{session_name}:#{window_index}.#{pane_index}|#{pane_current_command}")
	if err != nil {
		return nil, err
	}

	var panes []Pane
	for _, line := range strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n") {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "|", 3)
		if len(parts) != 3 {
			continue
		}
		panes = append(panes, Pane{ID: parts[0], Session: parts[1], Command: parts[2]})
	}
	return panes, nil
}

// CurrentCommand re-queries the current command running in paneID, for
// liveness rechecks immediately before relay.
func (c *Client) CurrentCommand(ctx context.Context, paneID string) (string, error) {
	res, err := c.run(ctx, "display-message", "-t", paneID, "-p", "#{pane_current_command}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// ActiveSession returns the name of the most-recently-used client session.
func (c *Client) ActiveSession(ctx context.Context) (string, error) {
	res, err := c.run(ctx, "display-message", "-p", "#{client_session}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// SessionFor returns the session name owning paneID.
func (c *Client) SessionFor(ctx context.Context, paneID string) (string, error) {
	res, err := c.run(ctx, "display-message", "-t", paneID, "-p", "#{session_name}")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(res.Stdout), nil
}

// Relay types text into paneID as if a human had typed it and pressed
// Enter. Two separate send-keys calls are required: -l treats every
// argument as literal text, so a single call could never also send the
// Enter key — the second call sends Enter as a key, not as the string
// "Enter".
func (c *Client) Relay(ctx context.Context, paneID, text string) error {
	if _, err := c.run(ctx, "send-keys", "-t", paneID, "-l", text); err != nil {
		return fmt.Errorf("relay literal text: %w", err)
	}
	if _, err := c.run(ctx, "send-keys", "-t", paneID, "Enter"); err != nil {
		return fmt.Errorf("relay enter key: %w", err)
	}
	return nil
}

// HasSession reports whether a session by that name currently exists.
func (c *Client) HasSession(ctx context.Context, session string) bool {
	_, err := c.run(ctx, "has-session", "-t", session)
	return err == nil
}
