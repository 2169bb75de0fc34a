package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Nutrition holds the optional nutrition facts returned by the AI provider.
// Calories is numeric; the other fields arrive as free-form strings ("12g").
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  string  `json:"protein"`
	Carbs    string  `json:"carbs"`
	Fat      string  `json:"fat"`
}

// Recipe is a generated or chat-derived recipe. CacheKey plus Cuisine is the
// cache lookup key; the composite unique index gives concurrent identical
// generations insert-or-fetch semantics instead of duplicate rows.
type Recipe struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
	Title        string           `gorm:"size:255;not null" json:"title"`
	Ingredients  JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Instructions JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"instructions"`
	Nutrition    Nutrition        `gorm:"embedded;embeddedPrefix:nutrition_" json:"nutrition"`
	Cuisine      string           `gorm:"size:100;uniqueIndex:idx_recipes_cache_key_cuisine" json:"cuisine"`
	CacheKey     string           `gorm:"size:1024;not null;uniqueIndex:idx_recipes_cache_key_cuisine" json:"cache_key"`
	Content      string           `gorm:"type:text" json:"content,omitempty"`
	CreatedBy    uuid.UUID        `gorm:"type:uuid" json:"created_by"`
}

func (r *Recipe) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
