// Package agent defines the small capability interface Harold uses to talk
// to a coding agent: a narrow, single-purpose interface rather than one
// large client type.
package agent

import "context"

// Address identifies and reaches one coding agent session. The sole
// concrete implementation today is TmuxPane; the interface exists so the
// router and notifier never depend on tmux directly.
type Address interface {
	// Label returns the agent's human-readable name; for a tmux pane this
	// is its "session:window.pane" string (e.g. "harold:0.3").
	Label() string

	// Relay delivers text to the agent as if typed into its terminal.
	Relay(ctx context.Context, text string) error

	// IsAlive reports whether the address still resolves to a live,
	// attached session. A stale address (pane closed, session killed)
	// returns false without error.
	IsAlive(ctx context.Context) bool
}
