package agent

import (
	"context"

	"github.com/kahgeh/harold/internal/tmux"
)

// TmuxPane is the sole concrete Address: a tmux pane running an agent
// runtime, identified by pane id and the label derived for it at
// directory-build time.
type TmuxPane struct {
	PaneID string
	Title  string

	client *tmux.Client
}

// NewTmuxPane binds a pane id/label pair to a tmux client for relay and
// liveness operations.
func NewTmuxPane(client *tmux.Client, paneID, label string) *TmuxPane {
	return &TmuxPane{PaneID: paneID, Title: label, client: client}
}

func (p *TmuxPane) Label() string { return p.Title }

func (p *TmuxPane) Relay(ctx context.Context, text string) error {
	return p.client.Relay(ctx, p.PaneID, text)
}

// IsAlive re-queries the pane's current command and re-applies the
// dotted-numeric agent-runtime heuristic.
func (p *TmuxPane) IsAlive(ctx context.Context) bool {
	cmd, err := p.client.CurrentCommand(ctx, p.PaneID)
	if err != nil {
		return false
	}
	return tmux.IsAgentCommand(cmd)
}
