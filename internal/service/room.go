package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
)

// RoomService owns room lifecycle: lookup-or-create on join, code
// generation, and the inactivity purge consumed by the background worker.
type RoomService struct {
	roomRepo repository.RoomRepository
}

// NewRoomService creates a RoomService instance.
func NewRoomService(roomRepo repository.RoomRepository) *RoomService {
	if roomRepo == nil {
		panic("RoomRepository cannot be nil for RoomService")
	}
	return &RoomService{roomRepo: roomRepo}
}

// JoinOrCreate returns the room for the requested code, creating it when it
// does not exist. An empty requested code means "create a fresh room with a
// generated code". The returned bool reports whether a room was created.
func (s *RoomService) JoinOrCreate(ctx context.Context, requestedCode string) (*domain.Room, bool, error) {
	logCtx := logrus.WithField("room_code", requestedCode)

	if requestedCode != "" {
		room, err := s.roomRepo.FindByCode(ctx, requestedCode)
		switch {
		case err == nil:
			// Joining an existing room counts as activity.
			if touchErr := s.roomRepo.Touch(ctx, requestedCode); touchErr != nil {
				logCtx.WithError(touchErr).Warn("Failed to touch room on join")
			}
			logCtx.Info("Joined existing room")
			return room, false, nil
		case errors.Is(err, repository.ErrRoomNotFound):
			// Fall through to creation with the requested code.
		default:
			logCtx.WithError(err).Error("Failed to look up room")
			return nil, false, ErrInternalServer
		}
	}

	code := requestedCode
	if code == "" {
		generated, err := s.generateUniqueRoomCode(ctx)
		if err != nil {
			logCtx.WithError(err).Error("Failed to generate unique room code")
			return nil, false, ErrInternalServer
		}
		code = generated
		logCtx = logrus.WithField("room_code", code)
	}

	room := &domain.Room{Code: code, LastActivity: time.Now()}
	err := s.roomRepo.Create(ctx, room)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateEntry) {
			// Lost a creation race: someone created the room between our
			// lookup and insert. Return the winner's room.
			existing, findErr := s.roomRepo.FindByCode(ctx, code)
			if findErr != nil {
				logCtx.WithError(findErr).Error("Failed to load room after creation race")
				return nil, false, ErrInternalServer
			}
			logCtx.Info("Joined room created concurrently")
			return existing, false, nil
		}
		logCtx.WithError(err).Error("Failed to create room")
		return nil, false, ErrInternalServer
	}

	logCtx.Info("Room created")
	return room, true, nil
}

// GetRoom returns the room for the given code, drawing log included.
func (s *RoomService) GetRoom(ctx context.Context, code string) (*domain.Room, error) {
	if code == "" {
		return nil, ErrInvalidRoomCode
	}
	room, err := s.roomRepo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrRoomNotFound) {
			return nil, ErrRoomNotFound
		}
		logrus.WithError(err).WithField("room_code", code).Error("Failed to load room")
		return nil, ErrInternalServer
	}
	return room, nil
}

// PurgeInactive deletes rooms that have seen no activity within the
// retention window and returns the number of rooms removed.
func (s *RoomService) PurgeInactive(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	count, err := s.roomRepo.DeleteInactiveBefore(ctx, cutoff)
	if err != nil {
		logrus.WithError(err).Error("Failed to purge inactive rooms")
		return 0, ErrInternalServer
	}
	return count, nil
}

// generateUniqueRoomCode produces a short share code not already in use.
func (s *RoomService) generateUniqueRoomCode(ctx context.Context) (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	const codeLength = 6
	const maxAttempts = 10

	b := make([]byte, codeLength)
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if _, err := rand.Read(b); err != nil {
			return "", fmt.Errorf("failed to generate random bytes: %w", err)
		}
		for i := range b {
			b[i] = letters[int(b[i])%len(letters)]
		}
		code := string(b)

		taken, err := s.roomRepo.IsCodeTaken(ctx, code)
		if err != nil {
			return "", fmt.Errorf("database error checking room code: %w", err)
		}
		if !taken {
			return code, nil
		}
		logrus.WithField("room_code", code).Warnf("Generated room code already exists, retrying (attempt %d)", attempt+1)
	}
	return "", fmt.Errorf("failed to generate a unique room code after %d attempts", maxAttempts)
}
