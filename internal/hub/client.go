package hub

import (
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer. Stroke fragments carry point
	// lists, so this is well above a chat-sized limit.
	maxMessageSize = 64 * 1024
)

// Client is one WebSocket connection attached to the Hub. Its id is unique
// per live connection and unrelated across reconnects. The name and room
// fields are owned by the Hub's event loop; the pumps never touch them.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	id   string
	name string
	room string
	send chan []byte

	// sendClosed is owned by the Hub's event loop; it makes closing send
	// idempotent across duplicate unregisters.
	sendClosed bool
}

// NewClient creates a Client for an upgraded connection.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		id:   uuid.NewString(),
		send: make(chan []byte, 256),
	}
}

// ID returns the connection identifier.
func (c *Client) ID() string { return c.id }

// CloseConn closes the underlying WebSocket connection.
func (c *Client) CloseConn() { c.conn.Close() }

// Run starts the read and write pumps.
func (c *Client) Run() {
	go c.WritePump()
	go c.ReadPump()
}

// ReadPump pumps inbound frames from the WebSocket into the Hub's event
// channel. It runs in its own goroutine; when the connection drops it
// requests its own unregistration and exits.
func (c *Client) ReadPump() {
	defer func() {
		select {
		case c.hub.messageChan <- HubMessage{Type: "unregister", Client: c}:
		case <-c.hub.done:
			logrus.WithField("conn_id", c.id).Debug("Hub stopped, skipping unregister")
		case <-time.After(1 * time.Second):
			logrus.WithField("conn_id", c.id).Warn("Timeout sending unregister message to Hub channel")
		}
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Info("readPump exited, unregistered client")
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		messageType, message, err := c.conn.ReadMessage()
		if err != nil {
			logCtx := logrus.WithField("conn_id", c.id)
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logCtx.WithError(err).Warn("WebSocket read error (unexpected close)")
			} else {
				logCtx.Debug("WebSocket connection closed normally or read error")
			}
			break
		}

		if messageType != websocket.TextMessage {
			logrus.WithField("conn_id", c.id).Debugf("Ignoring non-text message type: %d", messageType)
			continue
		}

		select {
		case <-c.hub.done:
			return
		case c.hub.messageChan <- HubMessage{Type: "event", Client: c, RawData: message}:
		default:
			// Hub saturated; shedding is preferable to blocking the read
			// loop and stalling ping/pong handling.
			logrus.WithField("conn_id", c.id).Warn("Hub message channel full, dropping client message")
		}
	}
}

// WritePump pumps frames from the Client's send channel to the WebSocket and
// keeps the connection alive with periodic pings. It runs in its own
// goroutine and exits when the Hub closes the send channel or a write fails.
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
		logrus.WithField("conn_id", c.id).Info("writePump exited")
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Hub closed the channel during unregistration.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("Failed to write message to websocket")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				logrus.WithField("conn_id", c.id).WithError(err).Warn("Failed to send ping message")
				return
			}
			_ = c.conn.SetWriteDeadline(time.Time{})
		}
	}
}

// trySend queues a frame for this client without blocking. Frames to a
// client whose send buffer is full are dropped; the write pump or keepalive
// will eventually disconnect a peer that cannot keep up.
func (c *Client) trySend(message []byte) {
	select {
	case c.send <- message:
	default:
		logrus.WithField("conn_id", c.id).Warn("Client send channel full, dropping message")
	}
}
