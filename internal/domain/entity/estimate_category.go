package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EstimateCategory is a free-form tag ("Type FO") estimate lines can be
// associated to, auto-created on first use by case-insensitive name.
type EstimateCategory struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name      string    `gorm:"size:255;not null" json:"name"`
	Position  int       `gorm:"default:0" json:"position"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new category
func (c *EstimateCategory) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EstimateCategory model
func (EstimateCategory) TableName() string {
	return "estimate_categories"
}
