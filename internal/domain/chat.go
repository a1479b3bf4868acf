package domain

// ChatMessage is the ephemeral relay-only chat tuple. It is never persisted
// server-side; ordering is the receiving client's concern.
type ChatMessage struct {
	From ConnectionID
	Name string
	Text string
}
