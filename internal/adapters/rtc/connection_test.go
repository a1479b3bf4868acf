package rtc

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfigFallsBackToPublicSTUN(t *testing.T) {
	cfg := DefaultConfig(nil)
	require.Len(t, cfg.ICEServers, 1)
	assert.Equal(t, []string{"stun:stun.l.google.com:19302"}, cfg.ICEServers[0].URLs)

	cfg = DefaultConfig([]string{"stun:stun.example.org:3478"})
	assert.Equal(t, []string{"stun:stun.example.org:3478"}, cfg.ICEServers[0].URLs)
}

func sampleTrack(t *testing.T, mime, id, stream string) *webrtc.TrackLocalStaticSample {
	t.Helper()
	track, err := webrtc.NewTrackLocalStaticSample(
		webrtc.RTPCodecCapability{MimeType: mime}, id, stream)
	require.NoError(t, err)
	return track
}

func TestConnectionOfferCoversAttachedTracks(t *testing.T) {
	conn, err := New(DefaultConfig(nil), "remote-1")
	require.NoError(t, err)
	defer conn.Close()

	cam := sampleTrack(t, webrtc.MimeTypeVP8, "video", "cam")
	require.NoError(t, conn.AttachStream(NewLocalStream("cam", cam)))

	offer, err := conn.CreateOffer()
	require.NoError(t, err)
	assert.Equal(t, webrtc.SDPTypeOffer, offer.Type)
	assert.Contains(t, offer.SDP, "m=video")
	require.NoError(t, conn.SetLocalDescription(offer))
}

func TestAttachStreamReplacesSenders(t *testing.T) {
	conn, err := New(DefaultConfig(nil), "remote-2")
	require.NoError(t, err)
	defer conn.Close()

	cam := sampleTrack(t, webrtc.MimeTypeVP8, "video", "cam")
	require.NoError(t, conn.AttachStream(NewLocalStream("cam", cam)))
	require.Len(t, conn.senders, 1)

	// Switching to screen share swaps the outgoing track set wholesale.
	screen := sampleTrack(t, webrtc.MimeTypeVP8, "screen", "display")
	require.NoError(t, conn.AttachStream(NewLocalStream("display", screen)))

	require.Len(t, conn.senders, 1)
	assert.Equal(t, "screen", conn.senders[0].Track().ID())
}

func TestAttachStreamRejectsForeignStream(t *testing.T) {
	conn, err := New(DefaultConfig(nil), "remote-3")
	require.NoError(t, err)
	defer conn.Close()

	assert.ErrorIs(t, conn.AttachStream(foreignStream{}), errUnknownStream)
}

type foreignStream struct{}

func (foreignStream) ID() string { return "foreign" }

func TestFactoryOpensIndependentLinks(t *testing.T) {
	factory := Factory(DefaultConfig(nil))

	a, err := factory("remote-a")
	require.NoError(t, err)
	b, err := factory("remote-b")
	require.NoError(t, err)

	assert.NotSame(t, a, b)
	require.NoError(t, a.Close())
	require.NoError(t, b.Close())
}
