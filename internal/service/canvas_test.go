package service_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
	"collaborative-whiteboard/internal/repository/mocks"
	"collaborative-whiteboard/internal/service"
)

func TestLoadHistoryReturnsCommandsInStoredOrder(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	room := &domain.Room{
		Code: "ABC123",
		Commands: []domain.DrawingCommand{
			{ID: 1, Kind: domain.CommandKindStroke, Payload: json.RawMessage(`{"path":[[0,0]]}`)},
			{ID: 2, Kind: domain.CommandKindStroke, Payload: json.RawMessage(`{"path":[[1,1]]}`)},
		},
	}
	mockRepo.On("FindByCode", mock.Anything, "ABC123").Return(room, nil).Once()

	commands, err := canvasService.LoadHistory(context.Background(), "ABC123")

	require.NoError(t, err)
	require.Len(t, commands, 2)
	assert.Equal(t, uint(1), commands[0].ID)
	assert.Equal(t, uint(2), commands[1].ID)
}

func TestLoadHistoryMissingRoom(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	mockRepo.On("FindByCode", mock.Anything, "MISSIN").Return(nil, repository.ErrRoomNotFound).Once()

	_, err := canvasService.LoadHistory(context.Background(), "MISSIN")

	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestRecordStrokeAppendsStrokeCommand(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	payload := json.RawMessage(`{"path":[[0,0],[1,1]],"color":"#ff0000"}`)
	mockRepo.On("AppendCommand", mock.Anything, "ABC123", mock.MatchedBy(func(cmd *domain.DrawingCommand) bool {
		return cmd.Kind == domain.CommandKindStroke && string(cmd.Payload) == string(payload)
	})).Return(nil).Once()

	err := canvasService.RecordStroke(context.Background(), "ABC123", payload)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRecordStrokeMissingRoom(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	mockRepo.On("AppendCommand", mock.Anything, "MISSIN", mock.Anything).Return(repository.ErrRoomNotFound).Once()

	err := canvasService.RecordStroke(context.Background(), "MISSIN", json.RawMessage(`{}`))

	assert.ErrorIs(t, err, service.ErrRoomNotFound)
}

func TestClearCanvasIsRepeatable(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	mockRepo.On("ClearCommands", mock.Anything, "ABC123").Return(nil).Twice()

	require.NoError(t, canvasService.ClearCanvas(context.Background(), "ABC123"))
	require.NoError(t, canvasService.ClearCanvas(context.Background(), "ABC123"))
	mockRepo.AssertExpectations(t)
}

func TestClearCanvasPropagatesFailure(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	canvasService := service.NewCanvasService(mockRepo)

	dbErr := errors.New("db down")
	mockRepo.On("ClearCommands", mock.Anything, "ABC123").Return(dbErr).Once()

	err := canvasService.ClearCanvas(context.Background(), "ABC123")

	assert.ErrorIs(t, err, dbErr)
}
