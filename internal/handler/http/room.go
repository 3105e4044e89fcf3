package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/service"
)

// RoomHandler exposes the room lookup-or-create surface consumed by clients
// before they open the WebSocket.
type RoomHandler struct {
	roomService *service.RoomService
}

// NewRoomHandler creates a RoomHandler instance.
func NewRoomHandler(roomService *service.RoomService) *RoomHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomHandler")
	}
	return &RoomHandler{roomService: roomService}
}

// JoinRoomRequest is the body of POST /api/rooms/join. The room code is
// optional; omitting it asks the server to mint a new room.
type JoinRoomRequest struct {
	RoomID string `json:"roomId"`
}

// JoinRoom handles POST /api/rooms/join: it returns the room for the
// requested code, creating one (201) when it does not exist yet.
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	var req JoinRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logrus.WithError(err).Warn("Handler.JoinRoom: invalid request body")
		ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	room, created, err := h.roomService.JoinOrCreate(c.Request.Context(), req.RoomID)
	if err != nil {
		logrus.WithError(err).WithField("room_code", req.RoomID).Error("Handler.JoinRoom: failed to join or create room")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to join room")
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{"message": "Room created successfully", "room": room})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Joined existing room", "room": room})
}

// GetRoom handles GET /api/rooms/:roomId.
func (h *RoomHandler) GetRoom(c *gin.Context) {
	code := c.Param("roomId")

	room, err := h.roomService.GetRoom(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) || errors.Is(err, service.ErrInvalidRoomCode) {
			ErrorResponse(c, http.StatusNotFound, "Room not found")
			return
		}
		logrus.WithError(err).WithField("room_code", code).Error("Handler.GetRoom: failed to load room")
		ErrorResponse(c, http.StatusInternalServerError, "Failed to load room")
		return
	}

	c.JSON(http.StatusOK, room)
}
