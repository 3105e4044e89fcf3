package dto

import "encoding/json"

// Event names on the client -> server direction.
const (
	EventJoinRoom    = "join-room"
	EventCursorMove  = "cursor-move"
	EventDrawStart   = "draw-start"
	EventDrawMove    = "draw-move"
	EventDrawEnd     = "draw-end"
	EventClearCanvas = "clear-canvas"
)

// Event names on the server -> client direction. Draw events and clear-canvas
// are relayed under their inbound names.
const (
	EventUserJoined   = "user-joined"
	EventUserLeft     = "user-left"
	EventUserCount    = "user-count"
	EventActiveUsers  = "active-users"
	EventCursorUpdate = "cursor-update"
	EventLoadDrawing  = "load-drawing"
)

// Envelope is the frame exchanged over the WebSocket in both directions:
// an event name plus an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// NewEnvelope marshals an outbound event frame.
func NewEnvelope(event string, data interface{}) ([]byte, error) {
	env := Envelope{Event: event}
	if data != nil {
		raw, err := json.Marshal(data)
		if err != nil {
			return nil, err
		}
		env.Data = raw
	}
	return json.Marshal(env)
}

// JoinRoom is the payload of a join-room event.
type JoinRoom struct {
	RoomID string `json:"roomId"`
}

// CursorMove is the payload of a cursor-move event.
type CursorMove struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// UserJoined announces a new participant to the room.
type UserJoined struct {
	ConnectionID string `json:"connectionId"`
	Name         string `json:"name"`
}

// CursorUpdate fans a participant's cursor position out to the rest of the
// room.
type CursorUpdate struct {
	ConnectionID string  `json:"connectionId"`
	X            float64 `json:"x"`
	Y            float64 `json:"y"`
	Name         string  `json:"name"`
}
