package relay

import (
	"encoding/json"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// Event names the frames exchanged over the transport. The same names appear
// in both directions where the table in the protocol allows it.
type Event string

const (
	EventConnected   Event = "connected"
	EventJoinCall    Event = "join-call"
	EventUserJoined  Event = "user-joined"
	EventSignal      Event = "signal"
	EventChatMessage Event = "chat-message"
	EventUserLeft    Event = "user-left"
	EventError       Event = "error"
)

// ConnectedEvent tells a freshly upgraded connection its own id.
type ConnectedEvent struct {
	Type Event               `json:"type"`
	ID   domain.ConnectionID `json:"id"`
}

// UserJoinedEvent goes to the joining connection only, listing exactly the
// members that were present before it joined (never itself). Existing members
// learn of the newcomer from its offers.
type UserJoinedEvent struct {
	Type    Event                 `json:"type"`
	ID      domain.ConnectionID   `json:"id"`
	Members []domain.ConnectionID `json:"members"`
}

// SignalEvent relays one negotiation envelope. Inbound, To addresses the
// target; outbound, From tags the sender. Data is opaque to the relay.
type SignalEvent struct {
	Type Event               `json:"type"`
	To   domain.ConnectionID `json:"to,omitempty"`
	From domain.ConnectionID `json:"from,omitempty"`
	Data json.RawMessage     `json:"data"`
}

// ChatEvent carries one ephemeral chat message. From is set by the relay on
// the way out, never trusted from the client.
type ChatEvent struct {
	Type Event               `json:"type"`
	Text string              `json:"text"`
	Name string              `json:"name"`
	From domain.ConnectionID `json:"from,omitempty"`
}

type UserLeftEvent struct {
	Type Event               `json:"type"`
	ID   domain.ConnectionID `json:"id"`
}

type ErrorEvent struct {
	Type  Event  `json:"type"`
	Error string `json:"error"`
}
