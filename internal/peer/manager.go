package peer

import (
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// SessionManager owns every PeerLink of one local participant. The link map
// is an explicit field, never a package global, so independent sessions can
// coexist in one process and teardown stays obvious.
type SessionManager struct {
	mu   sync.Mutex
	self domain.ConnectionID
	name string

	signaler Signaler
	newMedia MediaFactory

	links map[domain.ConnectionID]*PeerLink
	local MediaStream
	caps  Capabilities

	chat   []domain.ChatMessage
	unread int

	onRemoteStream func(domain.ConnectionID, MediaStream)
	onPeerGone     func(domain.ConnectionID)
}

func NewSessionManager(name string, signaler Signaler, factory MediaFactory) *SessionManager {
	return &SessionManager{
		name:     name,
		signaler: signaler,
		newMedia: factory,
		links:    make(map[domain.ConnectionID]*PeerLink),
	}
}

// OnRemoteStream registers the UI hook invoked when a remote stream arrives.
func (m *SessionManager) OnRemoteStream(fn func(domain.ConnectionID, MediaStream)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onRemoteStream = fn
}

// OnPeerGone registers the UI hook invoked when a peer's link is torn down.
func (m *SessionManager) OnPeerGone(fn func(domain.ConnectionID)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onPeerGone = fn
}

func (m *SessionManager) Self() domain.ConnectionID {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.self
}

// HandleConnected records the connection id the transport assigned us.
func (m *SessionManager) HandleConnected(id domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.self = id
}

// HandleUserJoined reacts to the presence event. As the newcomer we receive
// the list of members already present and offer to each of them; the members
// themselves learn about us only when the offer lands.
func (m *SessionManager) HandleUserJoined(id domain.ConnectionID, members []domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == m.self || id == "" {
		for _, remote := range members {
			if remote == m.self {
				continue
			}
			link, err := m.ensureLink(remote)
			if err != nil {
				continue
			}
			m.sendOffer(link)
		}
		return
	}
	// Someone else joined. Their offer is on its way; have the link ready.
	if _, err := m.ensureLink(id); err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("remote", string(id)).Msg("link setup failed")
	}
}

// HandleSignal dispatches one envelope from a remote peer. A negotiation
// failure discards the affected link; it may be re-initiated on the next
// presence event and never crashes the session.
func (m *SessionManager) HandleSignal(from domain.ConnectionID, env domain.SignalEnvelope) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := env.Validate(); err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("from", string(from)).Msg("invalid envelope, dropped")
		return
	}

	link, err := m.ensureLink(from)
	if err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("from", string(from)).Msg("link setup failed")
		return
	}

	if env.SDP != nil {
		m.handleSDP(link, *env.SDP)
		return
	}
	if err := link.addCandidate(*env.ICE); err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("from", string(from)).Msg("candidate rejected, discarding link")
		m.discardLink(from)
	}
}

func (m *SessionManager) handleSDP(link *PeerLink, sdp webrtc.SessionDescription) {
	switch sdp.Type {
	case webrtc.SDPTypeOffer:
		// Accepted even with a local offer outstanding: last writer wins.
		if err := link.applyRemoteDescription(sdp); err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(link.remote)).Msg("offer rejected, discarding link")
			m.discardLink(link.remote)
			return
		}
		link.state = LinkAnswerPending
		answer, err := link.media.CreateAnswer()
		if err == nil {
			err = link.media.SetLocalDescription(answer)
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(link.remote)).Msg("answer failed, discarding link")
			m.discardLink(link.remote)
			return
		}
		link.state = LinkStable
		m.sendEnvelope(link.remote, domain.SignalEnvelope{SDP: &answer})

	case webrtc.SDPTypeAnswer:
		if err := link.applyRemoteDescription(sdp); err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(link.remote)).Msg("answer rejected, discarding link")
			m.discardLink(link.remote)
			return
		}
		link.state = LinkStable

	default:
		log.Warn().Str("module", "peer").
			Str("remote", string(link.remote)).
			Str("sdp_type", sdp.Type.String()).Msg("unexpected description type")
	}
}

// HandleUserLeft destroys the departed peer's link and releases its media.
func (m *SessionManager) HandleUserLeft(id domain.ConnectionID) {
	m.mu.Lock()
	link, ok := m.links[id]
	if ok {
		link.close()
		delete(m.links, id)
	}
	gone := m.onPeerGone
	m.mu.Unlock()
	if ok && gone != nil {
		gone(id)
	}
}

// HandleChat appends one incoming message to the local log and bumps the
// unread badge for messages that are not our own.
func (m *SessionManager) HandleChat(text, name string, from domain.ConnectionID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chat = append(m.chat, domain.ChatMessage{From: from, Name: name, Text: text})
	if from != m.self {
		m.unread++
	}
}

// SendChat sends the message to the room and records it locally: the relay
// never echoes a chat back to its sender.
func (m *SessionManager) SendChat(text string) error {
	m.mu.Lock()
	self, name := m.self, m.name
	m.chat = append(m.chat, domain.ChatMessage{From: self, Name: name, Text: text})
	m.mu.Unlock()
	return m.signaler.SendChat(text, name)
}

// Messages returns the local chat log and the unread count.
func (m *SessionManager) Messages() ([]domain.ChatMessage, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ChatMessage, len(m.chat))
	copy(out, m.chat)
	return out, m.unread
}

// MarkRead clears the unread badge.
func (m *SessionManager) MarkRead() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.unread = 0
}

// SetCapabilities records which local media sources could be acquired. A
// failed camera or microphone degrades the call rather than blocking it.
func (m *SessionManager) SetCapabilities(caps Capabilities) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.caps = caps
}

func (m *SessionManager) Capabilities() Capabilities {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.caps
}

// SetLocalStream swaps the outgoing media (camera toggle, screen share) on
// every link and renegotiates the Stable ones in place: the negotiated media
// set changed, so each stable peer gets a fresh offer. Negotiation state is
// not reset.
func (m *SessionManager) SetLocalStream(stream MediaStream) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.local = stream

	for remote, link := range m.links {
		if link.state == LinkClosed {
			continue
		}
		if err := link.media.AttachStream(stream); err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(remote)).Msg("stream attach failed")
			continue
		}
		if link.state != LinkStable {
			continue
		}
		offer, err := link.media.CreateOffer()
		if err == nil {
			err = link.media.SetLocalDescription(offer)
		}
		if err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(remote)).Msg("renegotiation failed")
			continue
		}
		m.sendEnvelope(remote, domain.SignalEnvelope{SDP: &offer})
	}
}

// Links reports the current negotiation state per remote peer.
func (m *SessionManager) Links() map[domain.ConnectionID]LinkState {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make(map[domain.ConnectionID]LinkState, len(m.links))
	for id, l := range m.links {
		out[id] = l.State()
	}
	return out
}

// Close hangs up: every link is torn down and the map emptied.
func (m *SessionManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, link := range m.links {
		link.close()
		delete(m.links, id)
	}
}

// ensureLink returns the existing link for the remote or builds one: fresh
// MediaLink, callbacks wired, local stream attached.
func (m *SessionManager) ensureLink(remote domain.ConnectionID) (*PeerLink, error) {
	if link, ok := m.links[remote]; ok {
		return link, nil
	}
	media, err := m.newMedia(remote)
	if err != nil {
		return nil, err
	}
	link := newPeerLink(remote, media)

	media.OnICECandidate(func(c webrtc.ICECandidateInit) {
		m.sendEnvelope(remote, domain.SignalEnvelope{ICE: &c})
	})
	media.OnRemoteStream(func(s MediaStream) {
		m.mu.Lock()
		fn := m.onRemoteStream
		m.mu.Unlock()
		if fn != nil {
			fn(remote, s)
		}
	})

	if m.local != nil {
		if err := media.AttachStream(m.local); err != nil {
			log.Warn().Err(err).Str("module", "peer").
				Str("remote", string(remote)).Msg("local stream attach failed")
		}
	}
	m.links[remote] = link
	return link, nil
}

func (m *SessionManager) sendOffer(link *PeerLink) {
	offer, err := link.media.CreateOffer()
	if err == nil {
		err = link.media.SetLocalDescription(offer)
	}
	if err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("remote", string(link.remote)).Msg("offer failed, discarding link")
		m.discardLink(link.remote)
		return
	}
	link.state = LinkOfferSent
	m.sendEnvelope(link.remote, domain.SignalEnvelope{SDP: &offer})
}

func (m *SessionManager) sendEnvelope(to domain.ConnectionID, env domain.SignalEnvelope) {
	if err := m.signaler.SendSignal(to, env); err != nil {
		log.Warn().Err(err).Str("module", "peer").
			Str("to", string(to)).Msg("signal send failed")
	}
}

func (m *SessionManager) discardLink(remote domain.ConnectionID) {
	if link, ok := m.links[remote]; ok {
		link.close()
		delete(m.links, remote)
	}
}
