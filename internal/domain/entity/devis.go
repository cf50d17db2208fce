package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DevisFile represents a supplier quote document attached to a purchase
// order. Positions are kept contiguous and 1-based per order; they are
// not DB-unique so a reorder can rewrite them in a single transaction.
type DevisFile struct {
	ID          uuid.UUID `gorm:"type:uuid;primary_key" json:"id"`
	OrderID     uuid.UUID `gorm:"type:uuid;not null;index" json:"order_id"`
	Position    int       `gorm:"not null" json:"position"`
	FileName    string    `gorm:"size:255;not null" json:"file_name"`
	StoredPath  string    `gorm:"size:512;not null" json:"-"`
	ContentType string    `gorm:"size:100" json:"content_type"`
	SizeBytes   int64     `gorm:"default:0" json:"size_bytes"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relationships
	Order PurchaseOrder `gorm:"foreignKey:OrderID" json:"-"`
}

// BeforeCreate generates a UUID before creating a new devis file
func (d *DevisFile) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the DevisFile model
func (DevisFile) TableName() string {
	return "devis_files"
}
