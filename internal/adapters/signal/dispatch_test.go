package signal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/relay"
)

// newTestController wires a controller to a real relay and registers fake
// connections whose outbound frames land in their send channels instead of a
// socket, so dispatch can be exercised end to end without websockets.
func newTestController() *Controller {
	ctl := NewController(0, 0)
	ctl.Relay = relay.New(relay.NewRegistry(), ctl)
	return ctl
}

func (ctl *Controller) addFakeConn(id domain.ConnectionID) *wsConn {
	c := &wsConn{send: make(chan []byte, 32)}
	ctl.mu.Lock()
	ctl.conns[id] = c
	ctl.mu.Unlock()
	return c
}

func nextFrame(t *testing.T, c *wsConn) map[string]any {
	t.Helper()
	select {
	case data := <-c.send:
		var frame map[string]any
		require.NoError(t, json.Unmarshal(data, &frame))
		return frame
	default:
		t.Fatal("no frame queued")
		return nil
	}
}

func noFrame(t *testing.T, c *wsConn) {
	t.Helper()
	select {
	case data := <-c.send:
		t.Fatalf("unexpected frame: %s", data)
	default:
	}
}

func TestDispatchJoinCall(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")
	b := ctl.addFakeConn("b")

	ctl.dispatch("a", a, []byte(`{"type":"join-call","room":"room-42"}`))
	ctl.dispatch("b", b, []byte(`{"type":"join-call","room":"room-42"}`))

	frame := nextFrame(t, a)
	assert.Equal(t, "user-joined", frame["type"])
	assert.Equal(t, "a", frame["id"])
	assert.Empty(t, frame["members"])

	frame = nextFrame(t, b)
	assert.Equal(t, "user-joined", frame["type"])
	assert.Equal(t, []any{"a"}, frame["members"])
	// Existing members are not told about the newcomer.
	noFrame(t, a)
}

func TestDispatchJoinCallEmptyRoomRejected(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")

	ctl.dispatch("a", a, []byte(`{"type":"join-call","room":""}`))

	frame := nextFrame(t, a)
	assert.Equal(t, "error", frame["type"])
}

func TestDispatchSignalForwarded(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")
	b := ctl.addFakeConn("b")
	ctl.dispatch("a", a, []byte(`{"type":"join-call","room":"room-42"}`))
	ctl.dispatch("b", b, []byte(`{"type":"join-call","room":"room-42"}`))
	<-a.send
	<-b.send

	ctl.dispatch("b", b, []byte(`{"type":"signal","to":"a","data":{"sdp":{"type":"offer","sdp":"v=0"}}}`))

	frame := nextFrame(t, a)
	assert.Equal(t, "signal", frame["type"])
	assert.Equal(t, "b", frame["from"])
	data := frame["data"].(map[string]any)
	assert.Contains(t, data, "sdp")
	noFrame(t, b)
}

func TestDispatchSignalMissingTarget(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")

	ctl.dispatch("a", a, []byte(`{"type":"signal","data":{"x":1}}`))

	frame := nextFrame(t, a)
	assert.Equal(t, "error", frame["type"])
}

func TestDispatchChatBroadcast(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")
	b := ctl.addFakeConn("b")
	ctl.dispatch("a", a, []byte(`{"type":"join-call","room":"room-42"}`))
	ctl.dispatch("b", b, []byte(`{"type":"join-call","room":"room-42"}`))
	<-a.send
	<-b.send

	ctl.dispatch("a", a, []byte(`{"type":"chat-message","text":"hello","name":"Alice","from":"spoofed"}`))

	frame := nextFrame(t, b)
	assert.Equal(t, "chat-message", frame["type"])
	assert.Equal(t, "hello", frame["text"])
	// The relay stamps the sender; the client-supplied from is ignored.
	assert.Equal(t, "a", frame["from"])
	noFrame(t, a)
}

func TestDispatchMalformedFrameIgnored(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")

	ctl.dispatch("a", a, []byte(`{not json`))
	ctl.dispatch("a", a, []byte(`{"type":"no-such-event"}`))

	noFrame(t, a)
}

func TestDispatchChatRateLimited(t *testing.T) {
	ctl := newTestController()
	a := ctl.addFakeConn("a")
	b := ctl.addFakeConn("b")
	ctl.dispatch("a", a, []byte(`{"type":"join-call","room":"room-42"}`))
	ctl.dispatch("b", b, []byte(`{"type":"join-call","room":"room-42"}`))
	<-a.send
	<-b.send

	for i := 0; i <= chatRateLimit; i++ {
		ctl.dispatch("a", a, []byte(`{"type":"chat-message","text":"spam","name":"Alice"}`))
	}

	// The peer got exactly the allowed number, the sender got the refusal.
	assert.Len(t, b.send, chatRateLimit)
	frame := nextFrame(t, a)
	assert.Equal(t, "error", frame["type"])
	assert.Equal(t, "rate_limited", frame["error"])
}

func TestRateLimiterWindow(t *testing.T) {
	rl := newRateLimiter(2, 50*time.Millisecond)

	assert.True(t, rl.Allow("a"))
	assert.True(t, rl.Allow("a"))
	assert.False(t, rl.Allow("a"))
	// Other connections have their own window.
	assert.True(t, rl.Allow("b"))

	time.Sleep(60 * time.Millisecond)
	assert.True(t, rl.Allow("a"))

	rl.Forget("a")
	assert.True(t, rl.Allow("a"))
}

func TestTrySendBackpressure(t *testing.T) {
	c := &wsConn{send: make(chan []byte, 1)}

	require.NoError(t, c.TrySend([]byte("one")))
	assert.ErrorIs(t, c.TrySend([]byte("two")), ErrBackpressure)
}
