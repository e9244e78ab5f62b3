package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Label is a user-defined tag that can be attached to many recipes
type Label struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    string    `gorm:"size:255;not null;index" json:"user_id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
}

func (l *Label) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// RecipeLabel joins one recipe to one label
type RecipeLabel struct {
	RecipeID  uuid.UUID `gorm:"type:uuid;primaryKey" json:"recipe_id"`
	LabelID   uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"label_id"`
	CreatedAt time.Time `json:"created_at"`
}

func (RecipeLabel) TableName() string {
	return "recipe_labels"
}
