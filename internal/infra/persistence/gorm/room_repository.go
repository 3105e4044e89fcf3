package gormpersistence

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"

	"collaborative-whiteboard/internal/domain"
	"collaborative-whiteboard/internal/repository"
)

// GormRoomRepository is the GORM implementation of repository.RoomRepository.
type GormRoomRepository struct {
	db *gorm.DB
}

// NewGormRoomRepository creates a GormRoomRepository instance.
func NewGormRoomRepository(db *gorm.DB) *GormRoomRepository {
	if db == nil {
		panic("database connection cannot be nil for GormRoomRepository")
	}
	return &GormRoomRepository{db: db}
}

// FindByCode loads a room and its drawing log. Commands are ordered by their
// auto-increment ID, which is append order.
func (r *GormRoomRepository) FindByCode(ctx context.Context, code string) (*domain.Room, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Preload("Commands", func(db *gorm.DB) *gorm.DB {
			return db.Order("drawing_commands.id ASC")
		}).
		Where("code = ?", code).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrRoomNotFound
		}
		return nil, fmt.Errorf("gorm: find room by code '%s': %w", code, err)
	}
	return &room, nil
}

// Create inserts a new room. A unique constraint violation on the code is
// mapped to repository.ErrDuplicateEntry so callers can resolve the race.
func (r *GormRoomRepository) Create(ctx context.Context, room *domain.Room) error {
	if room.LastActivity.IsZero() {
		room.LastActivity = time.Now()
	}
	err := r.db.WithContext(ctx).Create(room).Error
	if err != nil {
		var mysqlErr *mysql.MySQLError
		if errors.As(err, &mysqlErr) && mysqlErr.Number == 1062 {
			return repository.ErrDuplicateEntry
		}
		return fmt.Errorf("gorm: create room (code: %s): %w", room.Code, err)
	}
	return nil
}

// AppendCommand appends one log entry and bumps last_activity.
func (r *GormRoomRepository) AppendCommand(ctx context.Context, code string, cmd *domain.DrawingCommand) error {
	roomID, err := r.roomIDByCode(ctx, code)
	if err != nil {
		return err
	}
	cmd.RoomID = roomID
	if cmd.RecordedAt.IsZero() {
		cmd.RecordedAt = time.Now()
	}
	if err := r.db.WithContext(ctx).Create(cmd).Error; err != nil {
		return fmt.Errorf("gorm: append command to room '%s': %w", code, err)
	}
	return r.touchByID(ctx, roomID)
}

// ClearCommands truncates the room's drawing log and bumps last_activity.
func (r *GormRoomRepository) ClearCommands(ctx context.Context, code string) error {
	roomID, err := r.roomIDByCode(ctx, code)
	if err != nil {
		return err
	}
	err = r.db.WithContext(ctx).
		Where("room_id = ?", roomID).
		Delete(&domain.DrawingCommand{}).Error
	if err != nil {
		return fmt.Errorf("gorm: clear commands for room '%s': %w", code, err)
	}
	return r.touchByID(ctx, roomID)
}

// Touch bumps the room's last_activity timestamp.
func (r *GormRoomRepository) Touch(ctx context.Context, code string) error {
	result := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("code = ?", code).
		Update("last_activity", time.Now())
	if result.Error != nil {
		return fmt.Errorf("gorm: touch room '%s': %w", code, result.Error)
	}
	if result.RowsAffected == 0 {
		return repository.ErrRoomNotFound
	}
	return nil
}

// IsCodeTaken reports whether a room with the given code exists.
func (r *GormRoomRepository) IsCodeTaken(ctx context.Context, code string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("code = ?", code).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("gorm: count rooms by code '%s': %w", code, err)
	}
	return count > 0, nil
}

// DeleteInactiveBefore removes rooms idle since before the cutoff. Drawing
// commands go with their room via the ON DELETE CASCADE constraint.
func (r *GormRoomRepository) DeleteInactiveBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("last_activity < ?", cutoff).
		Delete(&domain.Room{})
	if result.Error != nil {
		return 0, fmt.Errorf("gorm: delete rooms inactive before %s: %w", cutoff.Format(time.RFC3339), result.Error)
	}
	return result.RowsAffected, nil
}

func (r *GormRoomRepository) roomIDByCode(ctx context.Context, code string) (uint, error) {
	var room domain.Room
	err := r.db.WithContext(ctx).
		Select("id").
		Where("code = ?", code).
		First(&room).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, repository.ErrRoomNotFound
		}
		return 0, fmt.Errorf("gorm: find room id by code '%s': %w", code, err)
	}
	return room.ID, nil
}

func (r *GormRoomRepository) touchByID(ctx context.Context, roomID uint) error {
	err := r.db.WithContext(ctx).
		Model(&domain.Room{}).
		Where("id = ?", roomID).
		Update("last_activity", time.Now()).Error
	if err != nil {
		return fmt.Errorf("gorm: touch room id %d: %w", roomID, err)
	}
	return nil
}
