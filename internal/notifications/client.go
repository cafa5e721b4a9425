package notifications

import (
	"log/slog"
	"time"

	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/observability"

	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = pongWait * 9 / 10
	maxInboundSize = 4096
	outboxSize     = 64
)

// Sent in place of events a slow reader missed; the frontend re-fetches its
// subscription and recipe lists when it sees it.
var droppedNotice = []byte(`{"type":"` + EventMessagesDropped + `","payload":{"reason":"buffer_full"}}`)

// Client is one websocket connection of a user. Events reach it through
// the hub and are written by a dedicated goroutine.
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uint
	outbox chan []byte
}

func newClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{hub: hub, conn: conn, userID: userID, outbox: make(chan []byte, outboxSize)}
}

// UserID is the authenticated owner of the connection.
func (c *Client) UserID() uint { return c.userID }

// Serve pumps events to the peer until either side goes away, then
// unregisters the client. It blocks for the life of the connection.
func (c *Client) Serve() {
	written := make(chan struct{})
	go func() {
		defer close(written)
		c.writeLoop()
	}()

	c.readLoop()
	c.hub.Unregister(c)
	<-written
}

// readLoop discards inbound frames; reading is still needed to process
// pongs and notice a closed peer.
func (c *Client) readLoop() {
	c.conn.SetReadLimit(maxInboundSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				middleware.Logger.Warn("websocket read failed",
					slog.Uint64("user_id", uint64(c.userID)), slog.String("error", err.Error()))
			}
			return
		}
	}
}

func (c *Client) writeLoop() {
	ping := time.NewTicker(pingPeriod)
	defer func() {
		ping.Stop()
		_ = c.conn.Close()
	}()

	write := func(kind int, data []byte) error {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		return c.conn.WriteMessage(kind, data)
	}

	for {
		select {
		case msg, open := <-c.outbox:
			if !open {
				_ = write(websocket.CloseMessage, nil)
				return
			}
			if write(websocket.TextMessage, msg) != nil {
				return
			}
		case <-ping.C:
			if write(websocket.PingMessage, nil) != nil {
				return
			}
		}
	}
}

// Deliver queues msg without blocking. A full outbox drops msg and queues
// droppedNotice instead when there is room for it.
func (c *Client) Deliver(msg []byte) {
	// The outbox may already be closed by Unregister or Shutdown.
	defer func() {
		if recover() != nil {
			observability.WebSocketBackpressureDrops.WithLabelValues("closed").Inc()
		}
	}()

	select {
	case c.outbox <- msg:
		return
	default:
	}
	observability.WebSocketBackpressureDrops.WithLabelValues("full").Inc()
	select {
	case c.outbox <- droppedNotice:
	default:
	}
}
