// Package domain contains entities without logic, just meta-data.
package domain

import "github.com/google/uuid"

type (
	// ConnectionID identifies one live transport channel. It is minted by the
	// transport adapter at connect time and is dead after disconnect.
	ConnectionID string

	// RoomID is the opaque identifier a client derives from its meeting URL.
	// Rooms have no registration step: the first join creates one, the last
	// leave destroys it.
	RoomID string
)

// RoomNone is the sentinel for "not in any room".
const RoomNone RoomID = ""

func NewConnectionID() ConnectionID {
	return ConnectionID(uuid.NewString())
}
