package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LaborRole supplies the hourly rate for estimate lines referencing it
// (main d'oeuvre). Deactivated roles stay assignable to historical lines
// but are hidden from new-assignment pickers.
type LaborRole struct {
	ID              uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	Name            string    `gorm:"size:255;not null" json:"name"`
	HourlyRateCents int64     `gorm:"not null;default:0" json:"hourly_rate_cents"`
	IsActive        bool      `gorm:"default:true" json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate generates a UUID before creating a new labor role
func (r *LaborRole) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the LaborRole model
func (LaborRole) TableName() string {
	return "labor_roles"
}
