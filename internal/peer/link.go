package peer

import (
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// LinkState tracks negotiation progress with one remote peer.
//
// Caller path:  Idle → OfferSent → Stable
// Callee path:  Idle → AnswerPending → Stable
// Closed is terminal and reachable from anywhere.
type LinkState int

const (
	LinkIdle LinkState = iota
	LinkOfferSent
	LinkAnswerPending
	LinkStable
	LinkClosed
)

func (s LinkState) String() string {
	switch s {
	case LinkIdle:
		return "idle"
	case LinkOfferSent:
		return "offer-sent"
	case LinkAnswerPending:
		return "answer-pending"
	case LinkStable:
		return "stable"
	case LinkClosed:
		return "closed"
	}
	return "unknown"
}

// PeerLink pairs one remote connection id with its MediaLink and negotiation
// state. It is owned exclusively by one SessionManager; the manager's lock
// guards all of it.
type PeerLink struct {
	remote domain.ConnectionID
	media  MediaLink
	state  LinkState

	// Candidates can outrun the answer on the wire. Until a remote
	// description lands they are parked here, then flushed in order.
	pending   []webrtc.ICECandidateInit
	remoteSet bool
}

func newPeerLink(remote domain.ConnectionID, media MediaLink) *PeerLink {
	return &PeerLink{remote: remote, media: media}
}

func (l *PeerLink) State() LinkState { return l.state }

// applyRemoteDescription sets the description and flushes any parked
// candidates. Last writer wins on the SDP: a remote offer is accepted even
// while a local offer is outstanding, which is how simultaneous-offer glare
// is tolerated here.
func (l *PeerLink) applyRemoteDescription(sdp webrtc.SessionDescription) error {
	if err := l.media.SetRemoteDescription(sdp); err != nil {
		return err
	}
	l.remoteSet = true
	for _, c := range l.pending {
		if err := l.media.AddICECandidate(c); err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(l.remote)).Msg("buffered candidate rejected")
		}
	}
	l.pending = nil
	return nil
}

func (l *PeerLink) addCandidate(c webrtc.ICECandidateInit) error {
	if !l.remoteSet {
		l.pending = append(l.pending, c)
		return nil
	}
	return l.media.AddICECandidate(c)
}

func (l *PeerLink) close() {
	if l.state == LinkClosed {
		return
	}
	l.state = LinkClosed
	l.pending = nil
	if err := l.media.Close(); err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("remote", string(l.remote)).Msg("media close")
	}
}
