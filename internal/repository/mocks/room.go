package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"collaborative-whiteboard/internal/domain"
)

// RoomRepository is a testify mock of repository.RoomRepository.
type RoomRepository struct {
	mock.Mock
}

func (m *RoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	args := m.Called(ctx, code)
	var room *domain.Room
	if v := args.Get(0); v != nil {
		room = v.(*domain.Room)
	}
	return room, args.Error(1)
}

func (m *RoomRepository) Create(ctx context.Context, room *domain.Room) error {
	args := m.Called(ctx, room)
	return args.Error(0)
}

func (m *RoomRepository) AppendCommand(ctx context.Context, code string, cmd *domain.DrawingCommand) error {
	args := m.Called(ctx, code, cmd)
	return args.Error(0)
}

func (m *RoomRepository) ClearCommands(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *RoomRepository) Touch(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *RoomRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	args := m.Called(ctx, code)
	return args.Bool(0), args.Error(1)
}

func (m *RoomRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
