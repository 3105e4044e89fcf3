package tasks

import "encoding/json"

// Task type names.
const (
	// TypeRoomPurge deletes rooms whose last activity is older than the
	// retention window.
	TypeRoomPurge = "room:purge"
)

// RoomPurgePayload parameterizes a room purge run.
type RoomPurgePayload struct {
	RetentionHours int `json:"retention_hours"`
}

// NewRoomPurgeTask builds the payload for a room purge task.
func NewRoomPurgeTask(retentionHours int) ([]byte, error) {
	return json.Marshal(RoomPurgePayload{RetentionHours: retentionHours})
}
