package worker_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-whiteboard/internal/repository/mocks"
	"collaborative-whiteboard/internal/service"
	"collaborative-whiteboard/internal/tasks"
	"collaborative-whiteboard/internal/worker"
)

func TestRoomPurgeHandlerDeletesInactiveRooms(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	handler := worker.NewRoomPurgeHandler(service.NewRoomService(mockRepo))

	mockRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).Return(int64(2), nil).Once()

	payload, err := tasks.NewRoomPurgeTask(24)
	require.NoError(t, err)
	task := asynq.NewTask(tasks.TypeRoomPurge, payload)

	err = handler.ProcessTask(context.Background(), task)

	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestRoomPurgeHandlerSkipsRetryOnBadPayload(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	handler := worker.NewRoomPurgeHandler(service.NewRoomService(mockRepo))

	task := asynq.NewTask(tasks.TypeRoomPurge, []byte(`{"retention_hours":`))
	err := handler.ProcessTask(context.Background(), task)

	assert.ErrorIs(t, err, asynq.SkipRetry)
	mockRepo.AssertNotCalled(t, "DeleteInactiveBefore", mock.Anything, mock.Anything)
}

func TestRoomPurgeHandlerSkipsRetryOnInvalidRetention(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	handler := worker.NewRoomPurgeHandler(service.NewRoomService(mockRepo))

	payload, err := json.Marshal(tasks.RoomPurgePayload{RetentionHours: 0})
	require.NoError(t, err)

	task := asynq.NewTask(tasks.TypeRoomPurge, payload)
	err = handler.ProcessTask(context.Background(), task)

	assert.ErrorIs(t, err, asynq.SkipRetry)
}

func TestRoomPurgeHandlerRetriesOnStoreFailure(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	handler := worker.NewRoomPurgeHandler(service.NewRoomService(mockRepo))

	mockRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()

	payload, err := tasks.NewRoomPurgeTask(24)
	require.NoError(t, err)

	err = handler.ProcessTask(context.Background(), asynq.NewTask(tasks.TypeRoomPurge, payload))

	require.Error(t, err)
	assert.NotErrorIs(t, err, asynq.SkipRetry)
}
