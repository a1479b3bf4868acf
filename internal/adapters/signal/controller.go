// Package signal is the websocket transport adapter: it upgrades HTTP
// connections, assigns connection ids, pumps frames, and bridges inbound
// events to the relay core.
package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/relay"
)

var ErrBackpressure = errors.New("backpressure")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsConn wraps one websocket with a buffered send channel. TrySend never
// blocks; a full buffer is reported as backpressure and the frame is lost.
type wsConn struct {
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	closed bool
}

func (c *wsConn) TrySend(b []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- b:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *wsConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

// chat flood protection, per connection
const (
	chatRateLimit  = 10
	chatRateWindow = 10 * time.Second
)

const defaultPingPeriod = 54 * time.Second

// Controller owns the live connection map and implements relay.Transport on
// top of it. One instance serves all connections.
type Controller struct {
	Relay      *relay.Relay
	ReadLimit  int64
	PingPeriod time.Duration

	chatLimit *rateLimiter

	mu    sync.RWMutex
	conns map[domain.ConnectionID]*wsConn
}

// NewController builds the adapter; the caller assigns Relay once the relay
// has been constructed over this controller as its Transport.
func NewController(readLimit int64, pingPeriod time.Duration) *Controller {
	if pingPeriod <= 0 {
		pingPeriod = defaultPingPeriod
	}
	return &Controller{
		ReadLimit:  readLimit,
		PingPeriod: pingPeriod,
		chatLimit:  newRateLimiter(chatRateLimit, chatRateWindow),
		conns:      make(map[domain.ConnectionID]*wsConn),
	}
}

// Send implements relay.Transport. The payload already carries its frame
// type; here it is only marshalled and queued.
func (ctl *Controller) Send(to domain.ConnectionID, event relay.Event, payload any) error {
	ctl.mu.RLock()
	conn, ok := ctl.conns[to]
	ctl.mu.RUnlock()
	if !ok {
		return errors.New("no such connection")
	}
	return ctl.sendJSON(conn, payload)
}

// HandleSignal upgrades the request, mints the ConnectionID and starts the
// read/write pumps. The id lives exactly as long as the socket.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}

	id := domain.NewConnectionID()
	conn := &wsConn{
		conn: ws,
		send: make(chan []byte, 32),
	}
	if ctl.ReadLimit > 0 {
		ws.SetReadLimit(ctl.ReadLimit)
	}

	// A connection that stops answering pings is dead: the read deadline
	// leaves a full extra period of slack before the pump gives up.
	pongWait := 2 * ctl.PingPeriod
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	ctl.mu.Lock()
	ctl.conns[id] = conn
	ctl.mu.Unlock()

	log.Info().Str("module", "signal").Str("conn", string(id)).Msg("new WS connection")

	ctl.sendEvent(conn, relay.ConnectedEvent{Type: relay.EventConnected, ID: id})

	go ctl.writePump(ctx, id, conn)
	go ctl.readPump(ctx, id, conn)
}

// drop removes the connection and pushes the implicit leave into the relay.
func (ctl *Controller) drop(id domain.ConnectionID, conn *wsConn) {
	ctl.mu.Lock()
	delete(ctl.conns, id)
	ctl.mu.Unlock()
	ctl.chatLimit.Forget(id)
	conn.Close()
	ctl.Relay.HandleDisconnect(id)
}
