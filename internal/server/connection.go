package server

import (
	"context"
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/lox/wolfgoatpig/internal/game"
)

// StreamMessage is one frame sent on a timeline stream.
type StreamMessage struct {
	Type  string              `json:"type"` // "event" or "error"
	Event *game.TimelineEvent `json:"event,omitempty"`
	Error *ErrorResponse      `json:"error,omitempty"`
}

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum command size accepted from the peer
	maxMessageSize = 8192
)

// Connection streams one game's timeline to a websocket client. Clients may
// also submit commands on the socket; accepted commands show up as events,
// rejected ones as error frames.
type Connection struct {
	conn     *websocket.Conn
	sub      *Subscriber
	games    *GameManager
	validate *Validator
	errors   chan ErrorResponse
	logger   zerolog.Logger
	ctx      context.Context
	cancel   context.CancelFunc
}

func newConnection(conn *websocket.Conn, sub *Subscriber, games *GameManager, v *Validator, logger zerolog.Logger) *Connection {
	ctx, cancel := context.WithCancel(context.Background())
	return &Connection{
		conn:     conn,
		sub:      sub,
		games:    games,
		validate: v,
		errors:   make(chan ErrorResponse, 8),
		logger:   logger.With().Str("component", "conn").Str("game_id", sub.gameID).Logger(),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// serve sends the backlog then pumps until either side goes away.
func (c *Connection) serve(backlog []game.TimelineEvent) {
	defer c.games.Unsubscribe(c.sub)
	go c.readPump()
	c.writePump(backlog)
}

func (c *Connection) readPump() {
	defer c.cancel()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Debug().Err(err).Msg("Timeline stream closed")
			}
			return
		}
		c.handleCommand(data)
	}
}

func (c *Connection) handleCommand(data []byte) {
	if err := c.validate.Validate(SchemaCommand, data); err != nil {
		c.sendError(err)
		return
	}
	var cmd game.Command
	if err := json.Unmarshal(data, &cmd); err != nil {
		c.sendError(&requestError{msg: err.Error()})
		return
	}
	if _, err := c.games.Apply(c.ctx, c.sub.gameID, cmd); err != nil {
		c.sendError(err)
	}
}

func (c *Connection) sendError(err error) {
	status, body := statusFor(err)
	if status >= 500 {
		c.logger.Error().Err(err).Msg("Command failed")
	}
	select {
	case c.errors <- body:
	default:
		c.logger.Warn().Msg("Error buffer full, dropping error frame")
	}
}

func (c *Connection) writePump(backlog []game.TimelineEvent) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for i := range backlog {
		if !c.write(StreamMessage{Type: "event", Event: &backlog[i]}) {
			return
		}
	}

	for {
		select {
		case ev, ok := <-c.sub.Events():
			if !ok {
				_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return
			}
			if !c.write(StreamMessage{Type: "event", Event: &ev}) {
				return
			}
		case body := <-c.errors:
			if !c.write(StreamMessage{Type: "error", Error: &body}) {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.ctx.Done():
			return
		}
	}
}

func (c *Connection) write(msg StreamMessage) bool {
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteJSON(msg); err != nil {
		c.logger.Debug().Err(err).Msg("Failed to write frame")
		return false
	}
	return true
}
