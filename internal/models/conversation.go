package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Message roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Conversation is the per-user chat log container. The unique index on
// UserID enforces exactly one conversation per user.
type Conversation struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Messages  []Message `gorm:"foreignKey:ConversationID" json:"messages"`
}

// Message is one chat turn. Seq is assigned per conversation in append
// order so history reads back exactly as it was written.
type Message struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey" json:"-"`
	ConversationID uuid.UUID `gorm:"type:uuid;not null;index" json:"-"`
	Seq            int64     `gorm:"not null" json:"-"`
	Role           string    `gorm:"size:16;not null" json:"role"`
	Content        string    `gorm:"type:text;not null" json:"content"`
	CreatedAt      time.Time `json:"timestamp"`
}

func (c *Conversation) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

func (m *Message) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
