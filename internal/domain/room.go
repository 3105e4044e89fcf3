package domain

import (
	"encoding/json"
	"time"
)

// Room is a durable collaborative canvas session. The code is the public
// identifier clients join with; it never changes once the room is created.
type Room struct {
	ID           uint             `gorm:"primaryKey" json:"-"`
	Code         string           `gorm:"uniqueIndex;size:191;not null" json:"roomId"`
	CreatedAt    time.Time        `gorm:"autoCreateTime" json:"createdAt"`
	LastActivity time.Time        `gorm:"index" json:"lastActivity"`
	Commands     []DrawingCommand `gorm:"foreignKey:RoomID;constraint:OnDelete:CASCADE" json:"drawingData"`
}

// DrawingCommand is one entry of a room's append-only drawing log.
// Append order is the auto-increment ID order; the log is the sole source of
// truth replayed to late joiners.
type DrawingCommand struct {
	ID         uint            `gorm:"primaryKey" json:"-"`
	RoomID     uint            `gorm:"index;not null" json:"-"`
	Kind       string          `gorm:"size:32;not null" json:"type"`
	Payload    json.RawMessage `gorm:"type:json" json:"data"`
	RecordedAt time.Time       `gorm:"autoCreateTime" json:"timestamp"`
}

// Log entry kinds.
const (
	CommandKindStroke = "stroke"
)
