package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/peer"
	"github.com/khushal-Taskar/Zoom/internal/relay"
)

// Client is the browser-equivalent end of the event channel: it dials the
// signaling endpoint, feeds inbound frames to a peer.SessionManager and
// implements the manager's outbound peer.Signaler surface.
type Client struct {
	conn *websocket.Conn
	mgr  *peer.SessionManager
	send chan []byte
}

var _ peer.Signaler = (*Client)(nil)

// Dial connects to the signaling endpoint. Bind the session manager before
// calling Run.
func Dial(ctx context.Context, url string) (*Client, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return nil, err
	}
	return &Client{
		conn: conn,
		send: make(chan []byte, 32),
	}, nil
}

func (c *Client) Bind(mgr *peer.SessionManager) { c.mgr = mgr }

// Join announces which room this client wants; the caller derives the id
// from the meeting URL.
func (c *Client) Join(room domain.RoomID) error {
	return c.write(struct {
		Type relay.Event   `json:"type"`
		Room domain.RoomID `json:"room"`
	}{relay.EventJoinCall, room})
}

// SendSignal implements peer.Signaler.
func (c *Client) SendSignal(to domain.ConnectionID, env domain.SignalEnvelope) error {
	data, err := json.Marshal(env)
	if err != nil {
		return err
	}
	return c.write(relay.SignalEvent{Type: relay.EventSignal, To: to, Data: data})
}

// SendChat implements peer.Signaler.
func (c *Client) SendChat(text, name string) error {
	return c.write(relay.ChatEvent{Type: relay.EventChatMessage, Text: text, Name: name})
}

// Run pumps inbound frames into the session manager until the context is
// cancelled or the socket dies.
func (c *Client) Run(ctx context.Context) error {
	go c.writeLoop(ctx)
	defer c.Close()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				return err
			}
			c.dispatch(data)
		}
	}
}

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) dispatch(data []byte) {
	var env struct {
		Type relay.Event `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal.client").Msg("bad json frame")
		return
	}

	switch env.Type {
	case relay.EventConnected:
		var p relay.ConnectedEvent
		if err := json.Unmarshal(data, &p); err == nil {
			c.mgr.HandleConnected(p.ID)
		}
	case relay.EventUserJoined:
		var p relay.UserJoinedEvent
		if err := json.Unmarshal(data, &p); err == nil {
			c.mgr.HandleUserJoined(p.ID, p.Members)
		}
	case relay.EventSignal:
		var p relay.SignalEvent
		if err := json.Unmarshal(data, &p); err != nil {
			return
		}
		var envlp domain.SignalEnvelope
		if err := json.Unmarshal(p.Data, &envlp); err != nil {
			log.Warn().Err(err).Str("module", "signal.client").Msg("bad signal envelope")
			return
		}
		c.mgr.HandleSignal(p.From, envlp)
	case relay.EventChatMessage:
		var p relay.ChatEvent
		if err := json.Unmarshal(data, &p); err == nil {
			c.mgr.HandleChat(p.Text, p.Name, p.From)
		}
	case relay.EventUserLeft:
		var p relay.UserLeftEvent
		if err := json.Unmarshal(data, &p); err == nil {
			c.mgr.HandleUserLeft(p.ID)
		}
	case relay.EventError:
		var p relay.ErrorEvent
		if err := json.Unmarshal(data, &p); err == nil {
			log.Warn().Str("module", "signal.client").Str("error", p.Error).Msg("server error frame")
		}
	default:
		log.Warn().Str("module", "signal.client").Str("type", string(env.Type)).Msg("unknown frame")
	}
}

func (c *Client) write(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	select {
	case c.send <- b:
		return nil
	default:
		return ErrBackpressure
	}
}

func (c *Client) writeLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case data := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal.client").Msg("write error")
				return
			}
		}
	}
}
