// Package relay implements the signaling core: the connection registry, the
// room directory, and the event relay that fans join/leave/signal/chat events
// out to room members.
package relay

import (
	"errors"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// ErrAlreadyJoined is returned when a connection requests a join without an
// intervening leave. The caller must leave first.
var ErrAlreadyJoined = errors.New("connection already joined a room")

// Registry tracks which connection sits in which room, and the member set of
// every live room. A connection is in at most one room; a room with no
// members is not retained.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnectionID]domain.RoomID
	rooms map[domain.RoomID]map[domain.ConnectionID]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		conns: make(map[domain.ConnectionID]domain.RoomID),
		rooms: make(map[domain.RoomID]map[domain.ConnectionID]struct{}),
	}
}

// Join adds the connection to the room's member set, creating the room on
// first join. A connection that is already registered anywhere must leave
// before joining again.
func (g *Registry) Join(conn domain.ConnectionID, room domain.RoomID) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if cur, ok := g.conns[conn]; ok {
		log.Warn().Str("module", "relay.registry").
			Str("conn", string(conn)).Str("room", string(cur)).
			Msg("join rejected, already in a room")
		return ErrAlreadyJoined
	}
	members, ok := g.rooms[room]
	if !ok {
		members = make(map[domain.ConnectionID]struct{})
		g.rooms[room] = members
	}
	members[conn] = struct{}{}
	g.conns[conn] = room
	log.Info().Str("module", "relay.registry").
		Str("conn", string(conn)).Str("room", string(room)).
		Int("count", len(members)).Msg("member joined")
	return nil
}

// Leave removes the connection from its room, dropping the room entry when
// the member set empties. It is idempotent: leaving while unregistered is a
// no-op reporting RoomNone, which covers double-disconnect races. It returns
// the room that was left and the members that remain in it.
func (g *Registry) Leave(conn domain.ConnectionID) (domain.RoomID, []domain.ConnectionID) {
	g.mu.Lock()
	defer g.mu.Unlock()
	room, ok := g.conns[conn]
	if !ok {
		return domain.RoomNone, nil
	}
	delete(g.conns, conn)
	members := g.rooms[room]
	delete(members, conn)
	if len(members) == 0 {
		delete(g.rooms, room)
		log.Info().Str("module", "relay.registry").
			Str("room", string(room)).Msg("room emptied and dropped")
		return room, nil
	}
	remaining := make([]domain.ConnectionID, 0, len(members))
	for id := range members {
		remaining = append(remaining, id)
	}
	log.Info().Str("module", "relay.registry").
		Str("conn", string(conn)).Str("room", string(room)).
		Int("count", len(remaining)).Msg("member left")
	return room, remaining
}

// MembersOf returns a copied snapshot of the room's member set, never a live
// view, so callers may iterate while the registry mutates.
func (g *Registry) MembersOf(room domain.RoomID) []domain.ConnectionID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	members := g.rooms[room]
	out := make([]domain.ConnectionID, 0, len(members))
	for id := range members {
		out = append(out, id)
	}
	return out
}

// RoomOf returns the room the connection is in, or RoomNone.
func (g *Registry) RoomOf(conn domain.ConnectionID) domain.RoomID {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if room, ok := g.conns[conn]; ok {
		return room
	}
	return domain.RoomNone
}

// RoomCount reports how many rooms currently have members.
func (g *Registry) RoomCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}
