package ws

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/wordrace/server/internal/model"
)

const (
	// Time allowed to write a frame to the peer
	writeWait = 10 * time.Second

	// Time allowed between pongs before the connection is considered dead
	pongWait = 60 * time.Second

	// Ping interval, must be shorter than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Largest inbound frame accepted
	maxMessageSize = 4096

	// Buffer size for outgoing frames
	sendBufferSize = 256

	// Inbound intent rate limit per connection
	intentRate  = rate.Limit(15)
	intentBurst = 30
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Game clients connect from arbitrary origins
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Client is a single websocket connection with its pumps
type Client struct {
	id      model.ConnID
	hub     *Hub
	gateway *Gateway
	conn    *websocket.Conn
	send    chan []byte
	limiter *rate.Limiter
	logger  *slog.Logger
}

// ServeWS upgrades an HTTP request to a websocket connection and runs
// its pumps until the peer goes away
func ServeWS(hub *Hub, gateway *Gateway, logger *slog.Logger, w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	id := model.ConnID(uuid.NewString())
	client := &Client{
		id:      id,
		hub:     hub,
		gateway: gateway,
		conn:    conn,
		send:    make(chan []byte, sendBufferSize),
		limiter: rate.NewLimiter(intentRate, intentBurst),
		logger:  logger.With(slog.String("conn", string(id))),
	}

	hub.Register(client)

	go client.writePump()
	client.readPump()
}

// readPump reads inbound frames and hands them to the gateway. It owns
// connection teardown: when it returns the client is unregistered and
// the engines are told the connection is gone.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister(c)
		c.gateway.HandleDisconnect(context.Background(), c.id)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("unexpected close", slog.Any("error", err))
			}
			return
		}

		if !c.limiter.Allow() {
			c.logger.Warn("inbound message dropped - rate limit")
			continue
		}

		c.gateway.HandleMessage(context.Background(), c.id, msg)
	}
}

// writePump writes outbound frames and keepalive pings
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
