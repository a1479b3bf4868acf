package signal

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/khushal-Taskar/Zoom/internal/domain"
	"github.com/khushal-Taskar/Zoom/internal/relay"
)

const writeWait = 5 * time.Second

func (ctl *Controller) writePump(ctx context.Context, id domain.ConnectionID, c *wsConn) {
	ticker := time.NewTicker(ctl.PingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("writePump ctx done")
			return
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("writePump ping failed")
				return
			}
		case data, ok := <-c.send:
			if !ok {
				log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		}
	}
}

func (ctl *Controller) readPump(ctx context.Context, id domain.ConnectionID, c *wsConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump closing")
		ctl.drop(id, c)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "signal").Str("conn", string(id)).Msg("readPump ctx done")
			return
		default:
			_, data, err := c.conn.ReadMessage()
			if err != nil {
				log.Info().Err(err).Str("module", "signal").Str("conn", string(id)).Msg("readPump read error")
				return
			}
			ctl.dispatch(id, c, data)
		}
	}
}

// dispatch peeks at the frame type and routes to the relay. Malformed frames
// are logged and dropped; nothing here may take the connection down.
func (ctl *Controller) dispatch(id domain.ConnectionID, c *wsConn, data []byte) {
	var env struct {
		Type relay.Event `json:"type"`
	}
	if err := json.Unmarshal(data, &env); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad json frame")
		return
	}

	switch env.Type {
	case relay.EventJoinCall:
		ctl.handleJoinCall(id, c, data)
	case relay.EventSignal:
		ctl.handleSignal(id, c, data)
	case relay.EventChatMessage:
		ctl.handleChat(id, c, data)
	default:
		log.Warn().Str("module", "signal").Str("type", string(env.Type)).Msg("unknown frame")
	}
}

func (ctl *Controller) handleJoinCall(id domain.ConnectionID, c *wsConn, data []byte) {
	var p struct {
		Type relay.Event `json:"type"`
		Room string      `json:"room"`
	}
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad join-call payload")
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "bad_payload"})
		return
	}
	if p.Room == "" {
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "empty room"})
		return
	}
	ctl.Relay.HandleJoin(id, domain.RoomID(p.Room))
}

func (ctl *Controller) handleSignal(id domain.ConnectionID, c *wsConn, data []byte) {
	var p relay.SignalEvent
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad signal payload")
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "bad_payload"})
		return
	}
	if p.To == "" || len(p.Data) == 0 {
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "bad_payload"})
		return
	}
	ctl.Relay.HandleSignal(id, p.To, p.Data)
}

func (ctl *Controller) handleChat(id domain.ConnectionID, c *wsConn, data []byte) {
	var p relay.ChatEvent
	if err := json.Unmarshal(data, &p); err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("bad chat payload")
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "bad_payload"})
		return
	}
	if !ctl.chatLimit.Allow(id) {
		log.Warn().Str("module", "signal").Str("conn", string(id)).Msg("chat rate limited")
		ctl.sendEvent(c, relay.ErrorEvent{Type: relay.EventError, Error: "rate_limited"})
		return
	}
	ctl.Relay.HandleChat(id, p.Text, p.Name)
}

func (ctl *Controller) sendJSON(c *wsConn, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.TrySend(b)
}

func (ctl *Controller) sendEvent(c *wsConn, v any) {
	if err := ctl.sendJSON(c, v); err != nil {
		log.Warn().Err(err).Str("module", "signal").Msg("send dropped")
	}
}
