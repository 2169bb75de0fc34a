package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an account holder. The password hash is never serialized.
type User struct {
	ID                 uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
	Username           string           `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email              string           `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash       string           `gorm:"not null" json:"-"`
	DietaryPreferences JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"dietary_preferences"`
	SavedRecipes       []Recipe         `gorm:"many2many:user_saved_recipes" json:"-"`
}

// BeforeCreate assigns an ID when the caller did not.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
