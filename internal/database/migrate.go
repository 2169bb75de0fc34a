package database

import (
	"gorm.io/gorm"

	"github.com/majidsaddiqye/reciperemix/internal/models"
)

// Migrate creates or updates the schema for all models.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Recipe{},
		&models.Conversation{},
		&models.Message{},
	)
}
