package ws

import (
	"devhub/domain"
	"devhub/domain/event"
	"devhub/services"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// client owns one websocket connection: a read pump that feeds the
// engine and a write pump that drains the connection's sink.
//
// All events from this connection are handled by the single read pump
// goroutine, which is what serializes them relative to each other.
type client struct {
	id       domain.ConnectionID
	conn     *websocket.Conn
	sink     *ConnSink
	service  services.IRealtimeService
	validate *validator.Validate
	log      *slog.Logger
	done     chan struct{}
}

func newClient(id domain.ConnectionID, conn *websocket.Conn, sink *ConnSink,
	service services.IRealtimeService, validate *validator.Validate, log *slog.Logger) *client {
	return &client{
		id:       id,
		conn:     conn,
		sink:     sink,
		service:  service,
		validate: validate,
		log:      log,
		done:     make(chan struct{}),
	}
}

// readPump reads frames until the connection dies. On exit it unbinds
// the connection exactly once, so no further broadcasts target it;
// writes already in flight complete independently.
func (c *client) readPump() {
	defer func() {
		c.service.Leave(c.id)
		close(c.done)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.log.Debug("connection closed unexpectedly", "connection_id", c.id, "error", err)
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.log.Debug("unreadable frame ignored", "connection_id", c.id, "error", err)
			continue
		}
		c.handleFrame(frame)
	}
}

func (c *client) handleFrame(frame Frame) {
	switch frame.Event {
	case EventJoin:
		var payload JoinPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.systemError("invalid join payload")
			return
		}
		if err := c.validate.Struct(payload); err != nil {
			c.systemError("invalid session code")
			return
		}
		c.service.Join(c.id, domain.SessionCode(payload.Code), payload.Token, c.sink)

	case EventEditorChange:
		var payload EditorChangePayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.log.Debug("invalid editor change payload ignored", "connection_id", c.id)
			return
		}
		c.service.EditorChange(c.id, event.EditorChange{
			DocumentID: payload.DocumentID,
			Content:    payload.Content,
			Cursor:     payload.Cursor,
			Ts:         payload.Ts,
		})

	case EventChatMessage:
		var payload ChatPayload
		if err := json.Unmarshal(frame.Data, &payload); err != nil {
			c.log.Debug("invalid chat payload ignored", "connection_id", c.id)
			return
		}
		c.service.PostChat(c.id, payload.Content)

	default:
		c.log.Debug(fmt.Sprintf("Unknown event : %s", frame.Event))
	}
}

// systemError answers the sender alone, bypassing the engine: the
// connection may not be bound to any room yet.
func (c *client) systemError(message string) {
	select {
	case c.sink.Events <- event.SystemNotice{Message: message}:
	default:
	}
}

// writePump drains the sink into the socket and keeps the connection
// alive with pings. One writer per connection: gorilla allows a single
// concurrent writer.
func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case evt := <-c.sink.Events:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			payload, err := encodeEvent(evt)
			if err != nil {
				c.log.Warn("event not encodable, skipped", "connection_id", c.id, "error", err)
				continue
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}

		case <-c.done:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
