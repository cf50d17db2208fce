package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Product represents a catalog article with its default pricing. Prices
// are stored in cents, tax rates in basis points; order and estimate
// lines copy these as defaults and may override them.
type Product struct {
	ID               uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SupplierID       *uuid.UUID     `gorm:"type:uuid;index" json:"supplier_id,omitempty"`
	Name             string         `gorm:"size:255;not null" json:"name"`
	Code             string         `gorm:"size:100;unique;not null" json:"code"`
	Unit             string         `gorm:"size:50;default:'u'" json:"unit"`
	UnitPriceHTCents int64          `gorm:"default:0" json:"unit_price_ht_cents"`
	TaxRateBp        int64          `gorm:"default:2000" json:"tax_rate_bp"`
	Notes            *string        `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Supplier *Supplier `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
}

// BeforeCreate generates a UUID before creating a new product
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Product model
func (Product) TableName() string {
	return "products"
}
