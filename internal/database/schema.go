package database

import (
	"fmt"

	"warbler/internal/models"

	"gorm.io/gorm"
)

// PersistentModels returns the authoritative set of schema-managed GORM models.
// The follows and likes join tables are created through the User associations.
func PersistentModels() []interface{} {
	return []interface{}{
		&models.User{},
		&models.Message{},
	}
}

// Migrate creates or updates every table.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(PersistentModels()...); err != nil {
		return fmt.Errorf("auto-migrate: %w", err)
	}
	return nil
}

// ResetSchema drops all tables and creates them again. Join tables go first
// so foreign keys never block the drop.
func ResetSchema(db *gorm.DB) error {
	if err := db.Migrator().DropTable(
		models.Like{}.TableName(),
		models.Follow{}.TableName(),
		&models.Message{},
		&models.User{},
	); err != nil {
		return fmt.Errorf("drop tables: %w", err)
	}
	return Migrate(db)
}
