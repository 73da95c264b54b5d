package events

// TurnCompletedPayload is emitted by the gRPC ingress when an agent
// finishes a turn.
type TurnCompletedPayload struct {
	PaneID           string `json:"pane_id"`
	PaneLabel        string `json:"pane_label"`
	LastUserPrompt   string `json:"last_user_prompt"`
	AssistantMessage string `json:"assistant_message"`
	MainContext      string `json:"main_context"`
}

// ReplyReceivedPayload is emitted by the listener for every row it reads
// out of the external message database.
type ReplyReceivedPayload struct {
	Text      string    `json:"text"`
	Direction Direction `json:"direction"`
}

// NotificationSentPayload is emitted by the notifier, primarily for
// observability and testing; it is optional and never read back by
// another component.
type NotificationSentPayload struct {
	Kind       NotificationKind `json:"kind"`
	TargetAgent string          `json:"target_agent"`
	Body       string           `json:"body"`
	FollowUp   string           `json:"follow_up,omitempty"`
}

// ReplyRoutedPayload is emitted by the router once a ReplyReceived event
// has been resolved (or has failed to resolve) to a destination agent.
type ReplyRoutedPayload struct {
	SourceText     string       `json:"source_text"`
	ResolvedAgent  string       `json:"resolved_agent,omitempty"`
	Outcome        RouteOutcome `json:"outcome"`
}
