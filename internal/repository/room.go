package repository

import (
	"context"
	"time"

	"collaborative-whiteboard/internal/domain"
)

// RoomRepository defines storage and retrieval of rooms and their drawing
// logs. It is the only surface through which the rest of the system touches
// the durable store.
type RoomRepository interface {
	// FindByCode looks a room up by its public code, drawing log included in
	// append order. Returns ErrRoomNotFound if the room does not exist.
	FindByCode(ctx context.Context, code string) (*domain.Room, error)

	// Create persists a new room. Returns ErrDuplicateEntry if the code is
	// already taken; callers must treat that as a lost race, not a failure.
	Create(ctx context.Context, room *domain.Room) error

	// AppendCommand appends one entry to the room's drawing log and bumps
	// the room's last-activity timestamp.
	AppendCommand(ctx context.Context, code string, cmd *domain.DrawingCommand) error

	// ClearCommands truncates the room's drawing log to empty and bumps the
	// last-activity timestamp. Clearing an already-empty log is a no-op.
	ClearCommands(ctx context.Context, code string) error

	// Touch bumps the room's last-activity timestamp.
	Touch(ctx context.Context, code string) error

	// IsCodeTaken reports whether a room with the given code exists.
	IsCodeTaken(ctx context.Context, code string) (bool, error)

	// DeleteInactiveBefore removes rooms whose last activity is older than
	// the cutoff and returns how many were deleted. Used by the purge job.
	DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
