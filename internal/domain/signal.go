package domain

import (
	"errors"

	"github.com/pion/webrtc/v4"
)

var (
	ErrEnvelopeEmpty     = errors.New("signal envelope carries neither sdp nor ice")
	ErrEnvelopeAmbiguous = errors.New("signal envelope carries both sdp and ice")
)

// SignalEnvelope is the wire payload for negotiation messages. Exactly one of
// SDP or ICE is populated; the recipient dispatches on which one is present.
// The relay never looks inside: it forwards the encoded bytes verbatim.
type SignalEnvelope struct {
	SDP *webrtc.SessionDescription `json:"sdp,omitempty"`
	ICE *webrtc.ICECandidateInit   `json:"ice,omitempty"`
}

func (e *SignalEnvelope) Validate() error {
	switch {
	case e.SDP == nil && e.ICE == nil:
		return ErrEnvelopeEmpty
	case e.SDP != nil && e.ICE != nil:
		return ErrEnvelopeAmbiguous
	}
	return nil
}

// Kind reports "sdp" or "ice" for logging; empty for an invalid envelope.
func (e *SignalEnvelope) Kind() string {
	if e.Validate() != nil {
		return ""
	}
	if e.SDP != nil {
		return "sdp"
	}
	return "ice"
}
