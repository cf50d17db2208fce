package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tleroux/chiffrage-api/internal/domain/enum"
)

// PurchaseOrder represents an order placed with a supplier (bon de
// commande). Totals are stored in cents and always recomputed from the
// lines, never edited directly.
type PurchaseOrder struct {
	ID            uuid.UUID        `gorm:"type:uuid;primary_key" json:"id"`
	Reference     string           `gorm:"size:100;unique;not null" json:"reference"`
	SupplierID    uuid.UUID        `gorm:"type:uuid;not null;index" json:"supplier_id"`
	SiteID        uuid.UUID        `gorm:"type:uuid;not null;index" json:"site_id"`
	ProjectID     *uuid.UUID       `gorm:"type:uuid;index" json:"project_id,omitempty"`
	CreatedByID   *uuid.UUID       `gorm:"type:uuid;column:created_by" json:"created_by,omitempty"`
	Date          time.Time        `gorm:"type:date;not null" json:"date"`
	Status        enum.OrderStatus `gorm:"size:20;default:'draft'" json:"status"`
	TotalHTCents  int64            `gorm:"default:0" json:"total_ht_cents"`
	TotalTaxCents int64            `gorm:"default:0" json:"total_tax_cents"`
	TotalTTCCents int64            `gorm:"default:0" json:"total_ttc_cents"`
	Notes         *string          `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
	DeletedAt     gorm.DeletedAt   `gorm:"index" json:"-"`

	// Relationships
	Supplier  *Supplier   `gorm:"foreignKey:SupplierID" json:"supplier,omitempty"`
	Site      *Site       `gorm:"foreignKey:SiteID" json:"site,omitempty"`
	Project   *Project    `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	CreatedBy *User       `gorm:"foreignKey:CreatedByID" json:"created_by_user,omitempty"`
	Lines     []OrderLine `gorm:"foreignKey:OrderID" json:"lines,omitempty"`
	Devis     []DevisFile `gorm:"foreignKey:OrderID" json:"devis,omitempty"`
}

// BeforeCreate generates a UUID before creating a new purchase order
func (o *PurchaseOrder) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the PurchaseOrder model
func (PurchaseOrder) TableName() string {
	return "purchase_orders"
}

// OrderLine represents a line item in a purchase order. The three input
// fields are quantity, unit price and tax rate; the Line* fields are
// derived and recomputed on every edit.
type OrderLine struct {
	ID               uuid.UUID  `gorm:"type:uuid;primary_key" json:"id"`
	OrderID          uuid.UUID  `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID        *uuid.UUID `gorm:"type:uuid;index" json:"product_id,omitempty"`
	Position         int        `gorm:"not null" json:"position"`
	Label            string     `gorm:"size:255;not null" json:"label"`
	Quantity         float64    `gorm:"not null" json:"quantity"`
	UnitPriceHTCents int64      `gorm:"not null" json:"unit_price_ht_cents"`
	TaxRateBp        int64      `gorm:"not null;default:2000" json:"tax_rate_bp"`

	// Derived fields, recomputed from the inputs above
	LineTotalHTCents  int64 `gorm:"not null" json:"line_total_ht_cents"`
	LineTaxCents      int64 `gorm:"not null" json:"line_tax_cents"`
	LineTotalTTCCents int64 `gorm:"not null" json:"line_total_ttc_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Order   PurchaseOrder `gorm:"foreignKey:OrderID" json:"-"`
	Product *Product      `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

// BeforeCreate generates a UUID before creating a new order line
func (l *OrderLine) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the OrderLine model
func (OrderLine) TableName() string {
	return "order_lines"
}
