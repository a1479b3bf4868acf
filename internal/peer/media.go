// Package peer is the client-side session manager: one negotiated peer link
// per remote participant, driven by relay events and the platform's
// negotiation primitive.
package peer

import (
	"github.com/pion/webrtc/v4"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// MediaStream is an opaque handle to a bundle of local or remote media
// tracks. Implementations live in the rtc adapter; tests use stubs.
type MediaStream interface {
	ID() string
}

// MediaLink is the platform negotiation primitive behind one peer link.
// Description creation and acceptance are the suspension points of the
// negotiation state machine; everything else is bookkeeping.
type MediaLink interface {
	CreateOffer() (webrtc.SessionDescription, error)
	CreateAnswer() (webrtc.SessionDescription, error)
	SetLocalDescription(webrtc.SessionDescription) error
	SetRemoteDescription(webrtc.SessionDescription) error
	AddICECandidate(webrtc.ICECandidateInit) error

	// AttachStream adds the stream's outgoing tracks, replacing any
	// previously attached ones.
	AttachStream(MediaStream) error

	OnICECandidate(func(webrtc.ICECandidateInit))
	OnRemoteStream(func(MediaStream))
	Close() error
}

// MediaFactory opens a fresh MediaLink for one remote peer.
type MediaFactory func(remote domain.ConnectionID) (MediaLink, error)

// Signaler is the outbound half of the event channel the manager talks
// through. The websocket client adapter implements it.
type Signaler interface {
	SendSignal(to domain.ConnectionID, env domain.SignalEnvelope) error
	SendChat(text, name string) error
}

// Capabilities reports which local media sources could actually be acquired.
// A missing camera degrades the call, it does not block it.
type Capabilities struct {
	Video  bool `json:"video"`
	Audio  bool `json:"audio"`
	Screen bool `json:"screen"`
}
