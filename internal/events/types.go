// Package events defines the payload types carried by Harold's event
// store records: typed structs that marshal through the generic envelope.
package events

// Type identifies the kind of domain event stored in a stream.
type Type string

// Recognised event types.
const (
	TypeTurnCompleted    Type = "TurnCompleted"
	TypeReplyReceived    Type = "ReplyReceived"
	TypeNotificationSent Type = "NotificationSent"
	TypeReplyRouted      Type = "ReplyRouted"
)

// Direction distinguishes who sent a reply observed by the listener.
type Direction string

const (
	DirectionInbound Direction = "inbound"
	DirectionSelf    Direction = "self"
)

// NotificationKind distinguishes the outbound delivery channel used.
type NotificationKind string

const (
	NotificationKindTTS      NotificationKind = "tts"
	NotificationKindIMessage NotificationKind = "imessage"
)

// RouteOutcome records how a ReplyReceived event was ultimately handled.
type RouteOutcome string

const (
	RouteOutcomeDelivered RouteOutcome = "delivered"
	RouteOutcomeNoRoute   RouteOutcome = "no-route"
	RouteOutcomeDeadPane  RouteOutcome = "dead-pane"
)

// Size limits from the data model: assistant_message and last_user_prompt
// may run up to 64 KiB; every other string field is capped at 4 KiB.
const (
	MaxLargeFieldBytes = 64 * 1024
	MaxFieldBytes      = 4 * 1024
)
