package signal

import (
	"context"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/peer"
	"github.com/khushal-Taskar/Zoom/internal/relay"
)

// stubMedia satisfies peer.MediaLink with canned descriptions, so a whole
// client session can run against a live server without pion.
type stubMedia struct {
	mu         sync.Mutex
	remoteDesc *webrtc.SessionDescription
	candidates []webrtc.ICECandidateInit
	closed     bool
}

func (s *stubMedia) CreateOffer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: "v=0 offer"}, nil
}

func (s *stubMedia) CreateAnswer() (webrtc.SessionDescription, error) {
	return webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: "v=0 answer"}, nil
}

func (s *stubMedia) SetLocalDescription(webrtc.SessionDescription) error { return nil }

func (s *stubMedia) SetRemoteDescription(sdp webrtc.SessionDescription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.remoteDesc = &sdp
	return nil
}

func (s *stubMedia) AddICECandidate(c webrtc.ICECandidateInit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.candidates = append(s.candidates, c)
	return nil
}

func (s *stubMedia) AttachStream(peer.MediaStream) error { return nil }

func (s *stubMedia) OnICECandidate(func(webrtc.ICECandidateInit)) {}
func (s *stubMedia) OnRemoteStream(func(peer.MediaStream))       {}

func (s *stubMedia) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

func stubFactory(domain.ConnectionID) (peer.MediaLink, error) {
	return &stubMedia{}, nil
}

// startTestServer runs the controller behind a real websocket endpoint.
func startTestServer(t *testing.T, pingPeriod time.Duration) (*Controller, *relay.Registry, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	reg := relay.NewRegistry()
	ctl := NewController(0, pingPeriod)
	ctl.Relay = relay.New(reg, ctl)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.GET("/api/ws/signal", func(c *gin.Context) {
		ctl.HandleSignal(ctx, c)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	return ctl, reg, "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/ws/signal"
}

func startParticipant(t *testing.T, url, name string) (*Client, *peer.SessionManager) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	client, err := Dial(ctx, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	mgr := peer.NewSessionManager(name, client, stubFactory)
	client.Bind(mgr)
	go func() { _ = client.Run(ctx) }()
	return client, mgr
}

func stable(links map[domain.ConnectionID]peer.LinkState, want int) bool {
	if len(links) != want {
		return false
	}
	for _, s := range links {
		if s != peer.LinkStable {
			return false
		}
	}
	return true
}

func TestClientSessionNegotiatesToStable(t *testing.T) {
	_, reg, url := startTestServer(t, 0)

	a, alice := startParticipant(t, url, "alice")
	require.NoError(t, a.Join("room-42"))
	require.Eventually(t, func() bool { return alice.Self() != "" },
		2*time.Second, 10*time.Millisecond, "alice never got her connection id")

	// Alice must be registered before bob joins, or his member list is empty.
	require.Eventually(t, func() bool { return len(reg.MembersOf("room-42")) == 1 },
		2*time.Second, 10*time.Millisecond)

	b, bob := startParticipant(t, url, "bob")
	require.NoError(t, b.Join("room-42"))

	// Bob offers to alice, alice answers, both sides settle.
	require.Eventually(t, func() bool { return stable(bob.Links(), 1) },
		2*time.Second, 10*time.Millisecond, "bob's link never stabilized")
	require.Eventually(t, func() bool { return stable(alice.Links(), 1) },
		2*time.Second, 10*time.Millisecond, "alice's link never stabilized")

	// Chat rides the same channel; the sender never gets an echo.
	require.NoError(t, bob.SendChat("hello alice"))
	require.Eventually(t, func() bool {
		msgs, unread := alice.Messages()
		return len(msgs) == 1 && msgs[0].Text == "hello alice" && unread == 1
	}, 2*time.Second, 10*time.Millisecond)
	msgs, _ := bob.Messages()
	assert.Len(t, msgs, 1) // his own local copy only

	// Alice hangs up; bob's link is torn down by the user-left frame.
	require.NoError(t, a.Close())
	require.Eventually(t, func() bool { return len(bob.Links()) == 0 },
		2*time.Second, 10*time.Millisecond, "bob never saw alice leave")
}

// The server pings on its period and keeps the read deadline extended as long
// as pongs come back; a quiet but live connection must not be dropped.
func TestServerPingsKeepConnectionAlive(t *testing.T) {
	ctl, _, url := startTestServer(t, 40*time.Millisecond)

	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	var pings atomic.Int32
	conn.SetPingHandler(func(appData string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(time.Second))
	})
	go func() {
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	time.Sleep(250 * time.Millisecond)

	assert.GreaterOrEqual(t, pings.Load(), int32(3), "server stopped pinging")
	ctl.mu.RLock()
	live := len(ctl.conns)
	ctl.mu.RUnlock()
	assert.Equal(t, 1, live, "idle but responsive connection was dropped")
}
