package service

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
)

// CanvasService mediates between the session hub and the durable drawing
// log: replaying history to late joiners and recording completed strokes and
// clears. Persistence is best effort from the hub's point of view; this
// service only translates and logs.
type CanvasService struct {
	roomRepo repository.RoomRepository
}

// NewCanvasService creates a CanvasService instance.
func NewCanvasService(roomRepo repository.RoomRepository) *CanvasService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for CanvasService")
	}
	return &CanvasService{roomRepo: roomRepo}
}

// LoadHistory returns the room's drawing log in append order.
// ErrRoomNotFound means the room has never been persisted, which joiners
// treat as "no history".
func (s *CanvasService) LoadHistory(ctx context.Context, roomCode string) ([]domain.DrawingCommand, error) {
	room, err := s.roomRepo.FindByCode(ctx, roomCode)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room.Commands, nil
}

// RecordStroke appends a completed stroke to the room's drawing log and
// refreshes the room's activity timestamp.
func (s *CanvasService) RecordStroke(ctx context.Context, roomCode string, payload json.RawMessage) error {
	cmd := &domain.DrawingCommand{
		Kind:    domain.CommandKindStroke,
		Payload: payload,
	}
	if err := s.roomRepo.AppendCommand(ctx, roomCode, cmd); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	logrus.WithField("room_code", roomCode).Debug("Stroke recorded")
	return nil
}

// ClearCanvas truncates the room's drawing log. Clearing an empty log
// succeeds and leaves it empty.
func (s *CanvasService) ClearCanvas(ctx context.Context, roomCode string) error {
	if err := s.roomRepo.ClearCommands(ctx, roomCode); err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return ErrRoomNotFound
		}
		return err
	}
	logrus.WithField("room_code", roomCode).Debug("Canvas cleared")
	return nil
}
