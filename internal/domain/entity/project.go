package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Project represents a client project estimates and orders belong to.
// Its code feeds the order reference generator.
type Project struct {
	ID         uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name       string         `gorm:"size:255;not null" json:"name"`
	Code       string         `gorm:"size:50;unique;not null" json:"code"`
	ClientName *string        `gorm:"size:255" json:"client_name,omitempty"`
	Notes      *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	UpdatedAt  time.Time      `json:"updated_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Orders    []PurchaseOrder   `gorm:"foreignKey:ProjectID" json:"-"`
	Estimates []EstimateVersion `gorm:"foreignKey:ProjectID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new project
func (p *Project) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Project model
func (Project) TableName() string {
	return "projects"
}
