package hub

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/dto"
	"collaborative-whiteboard/internal/service"
)

// DefaultCursorColor is the color assigned to a participant at join time
// when no other default is configured.
const DefaultCursorColor = "#000000"

// HubMessage is the unit of work on the Hub's internal channel.
type HubMessage struct {
	Type    string // "register", "unregister", "event"
	Client  *Client
	RawData []byte // raw WebSocket frame, only for "event"
}

// CanvasStore is the slice of the drawing-log store the Hub needs. It is
// satisfied by service.CanvasService; tests substitute failing stores to
// verify that broadcasts never depend on persistence.
type CanvasStore interface {
	LoadHistory(ctx context.Context, roomCode string) ([]domain.DrawingCommand, error)
	RecordStroke(ctx context.Context, roomCode string, payload json.RawMessage) error
	ClearCanvas(ctx context.Context, roomCode string) error
}

// Hub is the session hub: it owns connection lifecycle, the presence table
// and room fan-out, and issues best-effort store writes for completed
// strokes and clears.
//
// All membership and presence mutations happen inside Run's loop, one event
// at a time, so every broadcast observes the state its event produced. Store
// calls are the only suspension points and always run on their own
// goroutines after the event's synchronous effects are done; their failures
// are logged, never surfaced, and never roll back a broadcast.
type Hub struct {
	messageChan chan HubMessage
	done        chan struct{}

	// rooms is the fan-out table: room code -> member connections.
	rooms map[string]map[*Client]bool

	presence     *Presence
	canvas       CanvasStore
	cursorColor  string
	shutdownOnce sync.Once
}

// NewHub creates a Hub around an injected presence table and canvas store.
// An empty cursorColor selects DefaultCursorColor.
func NewHub(presence *Presence, canvas CanvasStore, cursorColor string) *Hub {
	if presence == nil {
		panic("Presence cannot be nil for Hub")
	}
	if canvas == nil {
		panic("CanvasStore cannot be nil for Hub")
	}
	if cursorColor == "" {
		cursorColor = DefaultCursorColor
	}
	return &Hub{
		messageChan: make(chan HubMessage, 512),
		done:        make(chan struct{}),
		rooms:       make(map[string]map[*Client]bool),
		presence:    presence,
		canvas:      canvas,
		cursorColor: cursorColor,
	}
}

// Run drains the Hub's event channel until Stop is called. It must run in
// its own goroutine. Each message is fully dispatched before the next one is
// picked up; this sequencing is what keeps the presence table and fan-out
// consistent without locks.
func (h *Hub) Run() {
	log := logrus.WithField("component", "hub")
	log.Info("Hub is running...")

	for {
		select {
		case <-h.done:
			log.Info("Hub is shutting down...")
			return
		case msg := <-h.messageChan:
			switch msg.Type {
			case "register":
				h.registerClient(msg.Client)
			case "unregister":
				h.unregisterClient(msg.Client)
			case "event":
				h.dispatchEvent(msg.Client, msg.RawData)
			default:
				log.Warnf("Received unknown hub message type: %s", msg.Type)
			}
		}
	}
}

// Stop signals Run to exit. The message channel is never closed: read pumps
// of connections that outlive the hub may still send on it, and those sends
// must park or drop, never panic.
func (h *Hub) Stop() {
	h.shutdownOnce.Do(func() {
		close(h.done)
	})
}

// QueueMessage enqueues a message for the Hub without blocking. It reports
// false when the Hub is stopped, or saturated and the message was dropped.
func (h *Hub) QueueMessage(msg HubMessage) bool {
	select {
	case <-h.done:
		logrus.WithField("message_type", msg.Type).Debug("Hub stopped, discarding message")
		return false
	default:
	}
	select {
	case h.messageChan <- msg:
		return true
	default:
		logrus.WithField("message_type", msg.Type).Warn("Hub message channel full, dropping message")
		return false
	}
}

// registerClient notes a new connection. Until it joins a room it has no
// presence entry and receives nothing.
func (h *Hub) registerClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to register a nil client")
		return
	}
	logrus.WithField("conn_id", client.id).Info("Client connected")
}

// unregisterClient finalizes a disconnect: the connection leaves its room
// (if any) and its send channel is closed so the write pump exits. The
// connection's state is terminal afterwards.
func (h *Hub) unregisterClient(client *Client) {
	if client == nil {
		logrus.Error("Hub: attempted to unregister a nil client")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": client.room})

	if client.room != "" {
		h.leaveRoom(client)
	}

	// Closing send is what makes the write pump flush pending frames and
	// exit. sendClosed is loop-owned, so a duplicate unregister is a no-op.
	if !client.sendClosed {
		client.sendClosed = true
		close(client.send)
	}
	logCtx.Info("Client disconnected")
}

// dispatchEvent validates and routes one inbound frame. Malformed frames and
// events that are invalid in the connection's current state are dropped with
// a log line; they never crash the hub or disturb other connections.
func (h *Hub) dispatchEvent(client *Client, raw []byte) {
	var env dto.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		logrus.WithField("conn_id", client.id).WithError(err).Warn("Dropping malformed event frame")
		return
	}
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "event": env.Event})

	switch env.Event {
	case dto.EventJoinRoom:
		var payload dto.JoinRoom
		if err := json.Unmarshal(env.Data, &payload); err != nil || payload.RoomID == "" {
			logCtx.Warn("Dropping join-room event without a valid roomId")
			return
		}
		h.handleJoin(client, payload.RoomID)

	case dto.EventCursorMove:
		if client.room == "" {
			logCtx.Debug("Dropping cursor-move from connection not in a room")
			return
		}
		var payload dto.CursorMove
		if err := json.Unmarshal(env.Data, &payload); err != nil {
			logCtx.Warn("Dropping malformed cursor-move payload")
			return
		}
		h.handleCursorMove(client, payload)

	case dto.EventDrawStart, dto.EventDrawMove:
		if client.room == "" {
			logCtx.Debug("Dropping draw event from connection not in a room")
			return
		}
		// In-progress stroke fragments: pure relay, nothing durable.
		h.emit(client.room, env.Event, env.Data, client)

	case dto.EventDrawEnd:
		if client.room == "" {
			logCtx.Debug("Dropping draw-end from connection not in a room")
			return
		}
		h.handleDrawEnd(client, env.Data)

	case dto.EventClearCanvas:
		if client.room == "" {
			logCtx.Debug("Dropping clear-canvas from connection not in a room")
			return
		}
		h.handleClearCanvas(client)

	default:
		logCtx.Warn("Received unknown event")
	}
}

// handleJoin binds a connection to a room. A connection already bound to a
// room leaves it first, exactly as if it had disconnected from it; both
// halves happen within this one event, so no other event can observe the
// intermediate state.
func (h *Hub) handleJoin(client *Client, roomCode string) {
	if client.room != "" {
		h.leaveRoom(client)
	}

	if h.rooms[roomCode] == nil {
		h.rooms[roomCode] = make(map[*Client]bool)
	}
	h.rooms[roomCode][client] = true

	if client.name == "" {
		client.name = "User-" + client.id[:4]
	}
	client.room = roomCode
	h.presence.Join(roomCode, client.id, client.name, h.cursorColor)

	logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": roomCode})
	logCtx.Info("Client joined room")

	h.emit(roomCode, dto.EventUserJoined, dto.UserJoined{ConnectionID: client.id, Name: client.name}, nil)
	count := h.presence.Count(roomCode)
	h.emit(roomCode, dto.EventUserCount, count, nil)
	h.emit(roomCode, dto.EventActiveUsers, h.presence.Snapshot(roomCode), nil)

	// The joiner also gets the count directly. Redundant when the channel
	// subscription is already live, but it guarantees the joiner learns the
	// post-join count even if subscription ordering lags the broadcast.
	if frame, err := dto.NewEnvelope(dto.EventUserCount, count); err == nil {
		client.trySend(frame)
	}

	go h.sendDrawingHistory(client, roomCode)
}

// handleCursorMove updates the sender's live cursor and fans the new
// position out to everyone else in the room.
func (h *Hub) handleCursorMove(client *Client, payload dto.CursorMove) {
	if !h.presence.MoveCursor(client.room, client.id, payload.X, payload.Y) {
		logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": client.room}).
			Warn("Cursor move for connection missing from presence table")
		return
	}
	h.emit(client.room, dto.EventCursorUpdate, dto.CursorUpdate{
		ConnectionID: client.id,
		X:            payload.X,
		Y:            payload.Y,
		Name:         client.name,
	}, client)
}

// handleDrawEnd finalizes a stroke: the whole room, sender included, sees
// the completed stroke immediately; the append to the drawing log runs
// afterwards on its own goroutine and its failure only shows up in logs.
func (h *Hub) handleDrawEnd(client *Client, data json.RawMessage) {
	roomCode := client.room
	h.emit(roomCode, dto.EventDrawEnd, data, nil)

	go func() {
		err := h.canvas.RecordStroke(context.Background(), roomCode, data)
		if err == nil {
			return
		}
		logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": roomCode})
		if errors.Is(err, service.ErrRoomNotFound) {
			// Room was never persisted; the stroke lives only in the session.
			logCtx.Debug("No persisted room, skipping stroke persistence")
			return
		}
		logCtx.WithError(err).Error("Failed to persist completed stroke")
	}()
}

// handleClearCanvas broadcasts the clear to the whole room and truncates the
// drawing log, with the same persistence policy as handleDrawEnd.
func (h *Hub) handleClearCanvas(client *Client) {
	roomCode := client.room
	h.emit(roomCode, dto.EventClearCanvas, nil, nil)

	go func() {
		err := h.canvas.ClearCanvas(context.Background(), roomCode)
		if err == nil {
			return
		}
		logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": roomCode})
		if errors.Is(err, service.ErrRoomNotFound) {
			logCtx.Debug("No persisted room, skipping clear persistence")
			return
		}
		logCtx.WithError(err).Error("Failed to persist canvas clear")
	}()
}

// leaveRoom removes a connection from its current room and tells the
// remaining members. The connection is removed from the fan-out table before
// the departure broadcasts, so it never hears its own departure.
func (h *Hub) leaveRoom(client *Client) {
	roomCode := client.room

	h.presence.Remove(roomCode, client.id)
	if members := h.rooms[roomCode]; members != nil {
		delete(members, client)
		if len(members) == 0 {
			delete(h.rooms, roomCode)
		}
	}
	client.room = ""

	h.emit(roomCode, dto.EventUserLeft, client.id, nil)
	h.emit(roomCode, dto.EventUserCount, h.presence.Count(roomCode), nil)
	h.emit(roomCode, dto.EventActiveUsers, h.presence.Snapshot(roomCode), nil)

	logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": roomCode}).Info("Client left room")
}

// sendDrawingHistory fetches the room's drawing log and replays it to one
// joining connection as a single load-drawing frame. It runs after the join
// is fully applied, so the snapshot can never predate an acknowledged join.
// A missing room means no history; a store failure is logged and the
// connection stays joined with an empty canvas.
func (h *Hub) sendDrawingHistory(client *Client, roomCode string) {
	logCtx := logrus.WithFields(logrus.Fields{"conn_id": client.id, "room_code": roomCode})

	commands, err := h.canvas.LoadHistory(context.Background(), roomCode)
	if err != nil {
		if errors.Is(err, service.ErrRoomNotFound) {
			logCtx.Debug("No persisted room for drawing history")
		} else {
			logCtx.WithError(err).Error("Failed to load drawing history")
		}
		return
	}
	if len(commands) == 0 {
		return
	}

	frame, err := dto.NewEnvelope(dto.EventLoadDrawing, commands)
	if err != nil {
		logCtx.WithError(err).Error("Failed to marshal drawing history")
		return
	}
	client.trySend(frame)
	logCtx.WithField("command_count", len(commands)).Info("Drawing history sent to client")
}

// emit marshals one event frame and queues it for every member of the room,
// optionally excluding the sender. Slow clients are skipped rather than
// allowed to stall the loop.
func (h *Hub) emit(roomCode, event string, data interface{}, exclude *Client) {
	members := h.rooms[roomCode]
	if len(members) == 0 {
		return
	}

	frame, err := dto.NewEnvelope(event, data)
	if err != nil {
		logrus.WithFields(logrus.Fields{"room_code": roomCode, "event": event}).
			WithError(err).Error("Failed to marshal broadcast frame")
		return
	}

	for member := range members {
		if member == exclude {
			continue
		}
		member.trySend(frame)
	}
}
