package router

import "github.com/kahgeh/harold/internal/agent"

// State is the router's process-local, non-persistent routing memory. It
// is owned exclusively by the projector goroutine that runs Router.Handle
// sequentially, so no mutex is needed.
type State struct {
	LastRoutedAgent                 agent.Address
	LastAwayNotificationSourceAgent agent.Address
}
