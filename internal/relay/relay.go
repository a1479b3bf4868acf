package relay

import (
	"encoding/json"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// Transport is the minimal outbound surface the relay needs from the
// per-connection event channel. The adapter owns the sockets; a failed send
// (closed or backpressured connection) comes back as an error and the relay
// treats it as best-effort loss.
type Transport interface {
	Send(to domain.ConnectionID, event Event, payload any) error
}

// Relay is the event-driven signaling core. Every inbound event mutates the
// registry and fans frames out atomically: one mutex serializes join, signal,
// chat and disconnect handling so a peer can never observe a signal naming a
// connection whose presence it has not yet been told about.
type Relay struct {
	mu        sync.Mutex
	registry  *Registry
	transport Transport
}

func New(registry *Registry, transport Transport) *Relay {
	return &Relay{registry: registry, transport: transport}
}

// HandleJoin registers the connection in the room and answers it with the
// member list as it stood before the join. Existing members are told nothing:
// the newcomer initiates every new peer link, so presence propagates through
// its offers rather than a symmetric storm of simultaneous ones.
func (r *Relay) HandleJoin(conn domain.ConnectionID, room domain.RoomID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := r.registry.MembersOf(room)
	if err := r.registry.Join(conn, room); err != nil {
		r.send(conn, EventError, ErrorEvent{Type: EventError, Error: err.Error()})
		return
	}
	r.send(conn, EventUserJoined, UserJoinedEvent{
		Type:    EventUserJoined,
		ID:      conn,
		Members: existing,
	})
}

// HandleSignal forwards the envelope verbatim to the target, tagged with the
// sender. A target that already left is an expected race: logged, dropped,
// never surfaced to the sender.
func (r *Relay) HandleSignal(from, to domain.ConnectionID, data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.registry.RoomOf(to) == domain.RoomNone {
		log.Debug().Str("module", "relay").
			Str("from", string(from)).Str("to", string(to)).
			Msg("signal target not registered, dropped")
		return
	}
	r.send(to, EventSignal, SignalEvent{Type: EventSignal, From: from, Data: data})
}

// HandleChat broadcasts the message to every other member of the sender's
// room, tagged with the sender's connection id. A sender in no room is
// logged and dropped.
func (r *Relay) HandleChat(from domain.ConnectionID, text, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room := r.registry.RoomOf(from)
	if room == domain.RoomNone {
		log.Debug().Str("module", "relay").
			Str("from", string(from)).Msg("chat from connection outside any room, dropped")
		return
	}
	out := ChatEvent{Type: EventChatMessage, Text: text, Name: name, From: from}
	for _, member := range r.registry.MembersOf(room) {
		if member == from {
			continue
		}
		r.send(member, EventChatMessage, out)
	}
}

// HandleDisconnect treats a transport-level disconnect as an implicit leave
// and tells the remaining members.
func (r *Relay) HandleDisconnect(conn domain.ConnectionID) {
	r.mu.Lock()
	defer r.mu.Unlock()

	room, remaining := r.registry.Leave(conn)
	if room == domain.RoomNone {
		return
	}
	out := UserLeftEvent{Type: EventUserLeft, ID: conn}
	for _, member := range remaining {
		r.send(member, EventUserLeft, out)
	}
}

// send is best-effort: delivery failures must not disturb other connections.
func (r *Relay) send(to domain.ConnectionID, event Event, payload any) {
	if err := r.transport.Send(to, event, payload); err != nil {
		log.Warn().Err(err).Str("module", "relay").
			Str("to", string(to)).Str("event", string(event)).
			Msg("send failed, dropped")
	}
}
