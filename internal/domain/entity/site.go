package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Site represents a delivery site (chantier) orders are shipped to
type Site struct {
	ID          uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name        string         `gorm:"size:255;not null" json:"name"`
	Address     *string        `gorm:"type:text" json:"address,omitempty"`
	City        *string        `gorm:"size:100" json:"city,omitempty"`
	PostalCode  *string        `gorm:"size:10" json:"postal_code,omitempty"`
	ContactName *string        `gorm:"size:255" json:"contact_name,omitempty"`
	Phone       *string        `gorm:"size:50" json:"phone,omitempty"`
	Notes       *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Orders []PurchaseOrder `gorm:"foreignKey:SiteID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new site
func (s *Site) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Site model
func (Site) TableName() string {
	return "sites"
}
