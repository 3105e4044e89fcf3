package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/sirupsen/logrus"

	"collaborative-whiteboard/internal/service"
	"collaborative-whiteboard/internal/tasks"
)

// RoomPurgeHandler processes room:purge tasks: it deletes rooms that have
// been inactive longer than the retention window carried in the payload.
type RoomPurgeHandler struct {
	roomService *service.RoomService
}

// NewRoomPurgeHandler creates a RoomPurgeHandler instance.
func NewRoomPurgeHandler(roomService *service.RoomService) *RoomPurgeHandler {
	if roomService == nil {
		panic("RoomService cannot be nil for RoomPurgeHandler")
	}
	return &RoomPurgeHandler{roomService: roomService}
}

// ProcessTask implements asynq.Handler.
func (h *RoomPurgeHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	logCtx := logrus.WithField("task_type", t.Type())

	var payload tasks.RoomPurgePayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		logCtx.WithError(err).Error("Failed to unmarshal room purge payload")
		return fmt.Errorf("failed to unmarshal payload: %v: %w", err, asynq.SkipRetry)
	}
	if payload.RetentionHours <= 0 {
		logCtx.Errorf("Invalid retention of %d hours in room purge payload", payload.RetentionHours)
		return fmt.Errorf("invalid retention %d: %w", payload.RetentionHours, asynq.SkipRetry)
	}

	retention := time.Duration(payload.RetentionHours) * time.Hour
	count, err := h.roomService.PurgeInactive(ctx, retention)
	if err != nil {
		logCtx.WithError(err).Error("Room purge run failed")
		return fmt.Errorf("purge inactive rooms: %w", err)
	}

	logCtx.WithFields(logrus.Fields{
		"deleted_rooms":   count,
		"retention_hours": payload.RetentionHours,
	}).Info("Cleaned up inactive rooms")
	return nil
}
