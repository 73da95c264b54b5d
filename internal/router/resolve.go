package router

import (
	"context"
	"strings"

	"github.com/kahgeh/harold/internal/agent"
	"github.com/kahgeh/harold/internal/classify"
)

// resolution is the outcome of one resolve call. A tag present but missed
// in T1/T2 returns early with agent == nil rather than falling through to
// the untagged tiers below it.
type resolution struct {
	agent *agent.TmuxPane
	body  string
}

// resolve executes tiers T1-T6 in order, short-circuiting on first match.
func resolve(ctx context.Context, classifier *classify.Classifier, live []*agent.TmuxPane, tag, body string, hasTag bool, state State) resolution {
	if hasTag {
		// T1: exact case-insensitive match.
		if a := findByLabel(live, tag); a != nil {
			return resolution{agent: a, body: body}
		}
		// T2: substring match, first in listing order on ambiguity.
		lower := strings.ToLower(tag)
		for _, a := range live {
			if strings.Contains(strings.ToLower(a.Label()), lower) {
				return resolution{agent: a, body: body}
			}
		}
		return resolution{}
	}

	// T3: semantic classify, only with >= 2 live agents.
	if len(live) >= 2 && classifier != nil {
		labels := make([]string, len(live))
		for i, a := range live {
			labels[i] = a.Label()
		}
		result, err := classifier.Classify(ctx, body, labels)
		if err == nil && result.Label != "" {
			if a := findByLabel(live, result.Label); a != nil {
				return resolution{agent: a, body: result.Body}
			}
		}
		// classifier returned none, errored, or matched no label: fall through.
	}

	// T4: last_routed_agent still live.
	if tp, ok := state.LastRoutedAgent.(*agent.TmuxPane); ok {
		if a := findByLabel(live, tp.Label()); a != nil && containsAddress(live, state.LastRoutedAgent) {
			return resolution{agent: a, body: body}
		}
	}

	// T5: last_away_notification_source_agent still live.
	if tp, ok := state.LastAwayNotificationSourceAgent.(*agent.TmuxPane); ok {
		if a := findByLabel(live, tp.Label()); a != nil && containsAddress(live, state.LastAwayNotificationSourceAgent) {
			return resolution{agent: a, body: body}
		}
	}

	// T6: an agent whose label contains "my-agent" literally.
	for _, a := range live {
		if strings.Contains(a.Label(), "my-agent") {
			return resolution{agent: a, body: body}
		}
	}

	return resolution{}
}
