package router

import (
	"context"
	"strings"

	"github.com/kahgeh/harold/internal/agent"
	"github.com/kahgeh/harold/internal/tmux"
)

// Directory returns the currently live agent addresses: list every pane,
// keep the ones whose current command matches the dotted-numeric
// agent-runtime heuristic, and label each by its full
// "session_name:window_index.pane_index" (e.g. "harold:0.3").
func Directory(ctx context.Context, client *tmux.Client) ([]*agent.TmuxPane, error) {
	panes, err := client.ListPanes(ctx)
	if err != nil {
		return nil, err
	}

	var live []*agent.TmuxPane
	for _, p := range panes {
		if !tmux.IsAgentCommand(p.Command) {
			continue
		}
		live = append(live, agent.NewTmuxPane(client, p.ID, p.Session))
	}
	return live, nil
}

func findByLabel(live []*agent.TmuxPane, label string) *agent.TmuxPane {
	for _, a := range live {
		if strings.EqualFold(a.Label(), label) {
			return a
		}
	}
	return nil
}

func containsAddress(live []*agent.TmuxPane, addr agent.Address) bool {
	if addr == nil {
		return false
	}
	for _, a := range live {
		if sameAddress(a, addr) {
			return true
		}
	}
	return false
}

func sameAddress(a *agent.TmuxPane, addr agent.Address) bool {
	tp, ok := addr.(*agent.TmuxPane)
	if !ok {
		return false
	}
	return a.PaneID == tp.PaneID
}
