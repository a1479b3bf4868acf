package domain

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
)

func TestSignalEnvelopeValidate(t *testing.T) {
	sdp := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0"}
	ice := webrtc.ICECandidateInit{Candidate: "candidate:1"}

	empty := SignalEnvelope{}
	assert.ErrorIs(t, empty.Validate(), ErrEnvelopeEmpty)
	assert.Empty(t, empty.Kind())

	both := SignalEnvelope{SDP: &sdp, ICE: &ice}
	assert.ErrorIs(t, both.Validate(), ErrEnvelopeAmbiguous)

	withSDP := SignalEnvelope{SDP: &sdp}
	assert.NoError(t, withSDP.Validate())
	assert.Equal(t, "sdp", withSDP.Kind())

	withICE := SignalEnvelope{ICE: &ice}
	assert.NoError(t, withICE.Validate())
	assert.Equal(t, "ice", withICE.Kind())
}
