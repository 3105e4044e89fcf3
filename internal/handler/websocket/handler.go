package websocket

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/hub"
)

// WebSocketHandler upgrades HTTP requests to WebSocket connections and hands
// them to the Hub. Room membership is not decided here: a fresh connection
// is roomless until it sends a join-room event.
type WebSocketHandler struct {
	upgrader websocket.Upgrader
	hub      *hub.Hub
}

// NewWebSocketHandler creates a WebSocketHandler instance.
func NewWebSocketHandler(h *hub.Hub) *WebSocketHandler {
	if h == nil {
		panic("Hub cannot be nil for WebSocketHandler")
	}
	return &WebSocketHandler{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// TODO: restrict to the configured CORS origin once the
				// frontend deployment story settles.
				return true
			},
		},
		hub: h,
	}
}

// HandleConnection serves GET /ws.
func (h *WebSocketHandler) HandleConnection(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error response.
		logrus.WithError(err).Error("WS Handler: failed to upgrade connection")
		return
	}

	client := hub.NewClient(h.hub, conn)
	logCtx := logrus.WithField("conn_id", client.ID())

	if !h.hub.QueueMessage(hub.HubMessage{Type: "register", Client: client}) {
		logCtx.Error("WS Handler: hub message channel full, failed to register client")
		client.CloseConn()
		return
	}

	client.Run()
	logCtx.Info("WS Handler: connection upgraded, client pumps started")
}
