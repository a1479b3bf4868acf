// Package rtc backs peer.MediaLink with a real pion PeerConnection.
package rtc

import (
	"errors"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/peer"
)

var errUnknownStream = errors.New("stream is not an rtc.LocalStream")

// DefaultConfig builds a pion configuration from STUN urls, falling back to
// the public Google server when none are configured.
func DefaultConfig(stunServers []string) webrtc.Configuration {
	if len(stunServers) == 0 {
		stunServers = []string{"stun:stun.l.google.com:19302"}
	}
	return webrtc.Configuration{
		ICEServers: []webrtc.ICEServer{{URLs: stunServers}},
	}
}

// LocalStream bundles the tracks captured locally (camera, mic, screen).
type LocalStream struct {
	id     string
	Tracks []webrtc.TrackLocal
}

func NewLocalStream(id string, tracks ...webrtc.TrackLocal) *LocalStream {
	return &LocalStream{id: id, Tracks: tracks}
}

func (s *LocalStream) ID() string { return s.id }

// RemoteStream wraps one incoming track from a remote peer.
type RemoteStream struct {
	Track *webrtc.TrackRemote
}

func (s *RemoteStream) ID() string { return s.Track.StreamID() }

// Connection implements peer.MediaLink on a pion PeerConnection.
type Connection struct {
	pc      *webrtc.PeerConnection
	remote  domain.ConnectionID
	senders []*webrtc.RTPSender

	onICE    func(webrtc.ICECandidateInit)
	onStream func(peer.MediaStream)
}

var _ peer.MediaLink = (*Connection)(nil)

func New(cfg webrtc.Configuration, remote domain.ConnectionID) (*Connection, error) {
	pc, err := webrtc.NewPeerConnection(cfg)
	if err != nil {
		return nil, err
	}
	c := &Connection{pc: pc, remote: remote}

	pc.OnICEConnectionStateChange(func(s webrtc.ICEConnectionState) {
		log.Info().Str("module", "rtc").Str("remote", string(remote)).
			Str("ice_state", s.String()).Msg("ICE state")
	})
	pc.OnICECandidate(func(cand *webrtc.ICECandidate) {
		if cand != nil && c.onICE != nil {
			c.onICE(cand.ToJSON())
		}
	})
	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		log.Info().Str("module", "rtc").Str("remote", string(remote)).
			Str("kind", track.Kind().String()).
			Str("stream_id", track.StreamID()).Msg("remote track")
		if c.onStream != nil {
			c.onStream(&RemoteStream{Track: track})
		}
	})
	return c, nil
}

// Factory adapts New to the shape the session manager wants.
func Factory(cfg webrtc.Configuration) peer.MediaFactory {
	return func(remote domain.ConnectionID) (peer.MediaLink, error) {
		return New(cfg, remote)
	}
}

func (c *Connection) CreateOffer() (webrtc.SessionDescription, error) {
	return c.pc.CreateOffer(nil)
}

func (c *Connection) CreateAnswer() (webrtc.SessionDescription, error) {
	return c.pc.CreateAnswer(nil)
}

func (c *Connection) SetLocalDescription(sdp webrtc.SessionDescription) error {
	return c.pc.SetLocalDescription(sdp)
}

func (c *Connection) SetRemoteDescription(sdp webrtc.SessionDescription) error {
	return c.pc.SetRemoteDescription(sdp)
}

func (c *Connection) AddICECandidate(ci webrtc.ICECandidateInit) error {
	return c.pc.AddICECandidate(ci)
}

// AttachStream replaces the outgoing track set with the stream's tracks.
func (c *Connection) AttachStream(s peer.MediaStream) error {
	stream, ok := s.(*LocalStream)
	if !ok {
		return errUnknownStream
	}
	for _, sender := range c.senders {
		if err := c.pc.RemoveTrack(sender); err != nil {
			log.Warn().Err(err).Str("module", "rtc").
				Str("remote", string(c.remote)).Msg("remove track")
		}
	}
	c.senders = c.senders[:0]
	for _, track := range stream.Tracks {
		sender, err := c.pc.AddTrack(track)
		if err != nil {
			return err
		}
		c.senders = append(c.senders, sender)
	}
	return nil
}

func (c *Connection) OnICECandidate(fn func(webrtc.ICECandidateInit)) {
	c.onICE = fn
}

func (c *Connection) OnRemoteStream(fn func(peer.MediaStream)) {
	c.onStream = fn
}

func (c *Connection) Close() error {
	return c.pc.Close()
}
