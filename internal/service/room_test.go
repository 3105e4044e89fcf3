package service_test

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
	"collaborative-whiteboard/internal/repository/mocks"
	"collaborative-whiteboard/internal/service"
)

func TestJoinOrCreateReturnsExistingRoomAndTouchesIt(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	existing := &domain.Room{Code: "ABC123"}
	mockRepo.On("FindByCode", mock.Anything, "ABC123").Return(existing, nil).Once()
	mockRepo.On("Touch", mock.Anything, "ABC123").Return(nil).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "ABC123")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, room)
	mockRepo.AssertExpectations(t)
}

func TestJoinOrCreateSurvivesTouchFailure(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	existing := &domain.Room{Code: "ABC123"}
	mockRepo.On("FindByCode", mock.Anything, "ABC123").Return(existing, nil).Once()
	mockRepo.On("Touch", mock.Anything, "ABC123").Return(errors.New("db down")).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "ABC123")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, existing, room)
}

func TestJoinOrCreateCreatesRoomWithRequestedCode(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	mockRepo.On("FindByCode", mock.Anything, "NEW001").Return(nil, repository.ErrRoomNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.MatchedBy(func(r *domain.Room) bool {
		return r.Code == "NEW001" && !r.LastActivity.IsZero()
	})).Return(nil).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "NEW001")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "NEW001", room.Code)
	mockRepo.AssertExpectations(t)
}

func TestJoinOrCreateGeneratesCodeWhenNoneRequested(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	mockRepo.On("IsCodeTaken", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Room")).Return(nil).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, created)
	assert.Regexp(t, regexp.MustCompile(`^[A-Z0-9]{6}$`), room.Code)
	mockRepo.AssertNotCalled(t, "FindByCode", mock.Anything, mock.Anything)
}

func TestJoinOrCreateRetriesTakenGeneratedCode(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	mockRepo.On("IsCodeTaken", mock.Anything, mock.AnythingOfType("string")).Return(true, nil).Once()
	mockRepo.On("IsCodeTaken", mock.Anything, mock.AnythingOfType("string")).Return(false, nil).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Room")).Return(nil).Once()

	_, created, err := roomService.JoinOrCreate(context.Background(), "")

	require.NoError(t, err)
	assert.True(t, created)
	mockRepo.AssertExpectations(t)
}

func TestJoinOrCreateLosingCreationRaceReturnsWinnersRoom(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	winner := &domain.Room{Code: "RACE01"}
	mockRepo.On("FindByCode", mock.Anything, "RACE01").Return(nil, repository.ErrRoomNotFound).Once()
	mockRepo.On("Create", mock.Anything, mock.AnythingOfType("*domain.Room")).Return(repository.ErrDuplicateEntry).Once()
	mockRepo.On("FindByCode", mock.Anything, "RACE01").Return(winner, nil).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "RACE01")

	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, winner, room)
	mockRepo.AssertExpectations(t)
}

func TestJoinOrCreateMapsRepositoryFailures(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	mockRepo.On("FindByCode", mock.Anything, "ABC123").Return(nil, errors.New("connection refused")).Once()

	room, created, err := roomService.JoinOrCreate(context.Background(), "ABC123")

	assert.Nil(t, room)
	assert.False(t, created)
	assert.ErrorIs(t, err, service.ErrInternalServer)
}

func TestGetRoom(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	existing := &domain.Room{Code: "ABC123"}
	mockRepo.On("FindByCode", mock.Anything, "ABC123").Return(existing, nil).Once()
	mockRepo.On("FindByCode", mock.Anything, "MISSIN").Return(nil, repository.ErrRoomNotFound).Once()

	room, err := roomService.GetRoom(context.Background(), "ABC123")
	require.NoError(t, err)
	assert.Equal(t, existing, room)

	_, err = roomService.GetRoom(context.Background(), "MISSIN")
	assert.ErrorIs(t, err, service.ErrRoomNotFound)

	_, err = roomService.GetRoom(context.Background(), "")
	assert.ErrorIs(t, err, service.ErrInvalidRoomCode)
}

func TestPurgeInactiveUsesRetentionCutoff(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	retention := 24 * time.Hour
	mockRepo.On("DeleteInactiveBefore", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		expected := time.Now().Add(-retention)
		return cutoff.Sub(expected).Abs() < time.Minute
	})).Return(int64(3), nil).Once()

	count, err := roomService.PurgeInactive(context.Background(), retention)

	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
	mockRepo.AssertExpectations(t)
}

func TestPurgeInactiveMapsRepositoryFailure(t *testing.T) {
	mockRepo := new(mocks.RoomRepository)
	roomService := service.NewRoomService(mockRepo)

	mockRepo.On("DeleteInactiveBefore", mock.Anything, mock.Anything).Return(int64(0), errors.New("db down")).Once()

	count, err := roomService.PurgeInactive(context.Background(), time.Hour)

	assert.Zero(t, count)
	assert.ErrorIs(t, err, service.ErrInternalServer)
}
