package setup

import (
	"fmt"

	"gorm.io/gorm"

	"collaborative-whiteboard/internal/domain"
)

// MigrateDB brings the schema for rooms and their drawing logs up to date.
func MigrateDB(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("cannot migrate database with nil DB connection")
	}
	if err := db.AutoMigrate(&domain.Room{}, &domain.DrawingCommand{}); err != nil {
		return fmt.Errorf("failed to auto-migrate tables: %w", err)
	}
	return nil
}
