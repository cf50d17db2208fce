package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tleroux/chiffrage-api/internal/domain/enum"
)

// EstimateVersion is the pricing context for a tree of EstimateItems: a
// margin multiplier, discount, tax rate and rounding policy, plus the
// persisted aggregate totals (chiffrage). Only draft versions are
// editable; the other statuses are read-only snapshots.
//
// The discount is persisted as basis points of the sale subtotal so it
// survives later catalog or price changes; the flat cents value shown to
// the user is recomputed on load.
type EstimateVersion struct {
	ID                uuid.UUID           `gorm:"type:uuid;primary_key" json:"id"`
	ProjectID         uuid.UUID           `gorm:"type:uuid;not null;index" json:"project_id"`
	Label             string              `gorm:"size:255;not null" json:"label"`
	Status            enum.EstimateStatus `gorm:"size:20;default:'draft'" json:"status"`
	MarginMultiplier  float64             `gorm:"default:1" json:"margin_multiplier"`
	DiscountBp        int64               `gorm:"default:0" json:"discount_bp"`
	TaxRateBp         int64               `gorm:"default:2000" json:"tax_rate_bp"`
	RoundingMode      enum.RoundingMode   `gorm:"size:10;default:'none'" json:"rounding_mode"`
	RoundingStepCents int64               `gorm:"default:0" json:"rounding_step_cents"`

	// Persisted aggregate totals, recomputed from the item tree
	TotalHTCents  int64 `gorm:"default:0" json:"total_ht_cents"`
	TotalTaxCents int64 `gorm:"default:0" json:"total_tax_cents"`
	TotalTTCCents int64 `gorm:"default:0" json:"total_ttc_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Project *Project       `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	Items   []EstimateItem `gorm:"foreignKey:VersionID" json:"items,omitempty"`
}

// BeforeCreate generates a UUID before creating a new estimate version
func (v *EstimateVersion) BeforeCreate(tx *gorm.DB) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EstimateVersion model
func (EstimateVersion) TableName() string {
	return "estimate_versions"
}

// EstimateItem is a node in an estimate tree, either a section grouping
// children or a priced line. Position orders siblings only: 1-based and
// contiguous among items sharing the same parent.
//
// On a line, quantity/unit price/kFo carry the materials (FO) component
// and hMo/kMo/labor role the labor (MO) component. TaxRateBp is kept per
// line for single-line display recomputes but the version-level rate
// wins when totals are aggregated. The Pu/Line* fields are derived and
// never client-writable.
type EstimateItem struct {
	ID        uuid.UUID     `gorm:"type:uuid;primary_key" json:"id"`
	VersionID uuid.UUID     `gorm:"type:uuid;not null;index" json:"version_id"`
	ParentID  *uuid.UUID    `gorm:"type:uuid;index" json:"parent_id,omitempty"`
	Position  int           `gorm:"not null" json:"position"`
	ItemType  enum.ItemType `gorm:"size:10;not null" json:"item_type"`
	Title     string        `gorm:"size:255;not null" json:"title"`

	// Line fields (zero on sections)
	Quantity         float64    `gorm:"default:0" json:"quantity"`
	UnitPriceHTCents int64      `gorm:"default:0" json:"unit_price_ht_cents"`
	KFo              float64    `gorm:"column:k_fo;default:1" json:"k_fo"`
	HMo              float64    `gorm:"column:h_mo;default:0" json:"h_mo"`
	KMo              float64    `gorm:"column:k_mo;default:1" json:"k_mo"`
	LaborRoleID      *uuid.UUID `gorm:"type:uuid;index" json:"labor_role_id,omitempty"`
	CategoryID       *uuid.UUID `gorm:"type:uuid;index" json:"category_id,omitempty"`
	TaxRateBp        int64      `gorm:"default:2000" json:"tax_rate_bp"`

	// Derived fields, recomputed on every edit
	PuHTCents         int64 `gorm:"column:pu_ht_cents;default:0" json:"pu_ht_cents"`
	LineTotalHTCents  int64 `gorm:"default:0" json:"line_total_ht_cents"`
	LineTaxCents      int64 `gorm:"default:0" json:"line_tax_cents"`
	LineTotalTTCCents int64 `gorm:"default:0" json:"line_total_ttc_cents"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Version   EstimateVersion   `gorm:"foreignKey:VersionID" json:"-"`
	LaborRole *LaborRole        `gorm:"foreignKey:LaborRoleID" json:"labor_role,omitempty"`
	Category  *EstimateCategory `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
}

// BeforeCreate generates a UUID before creating a new estimate item
func (i *EstimateItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the EstimateItem model
func (EstimateItem) TableName() string {
	return "estimate_items"
}

// IsSection reports whether the item groups children instead of carrying
// monetary fields.
func (i *EstimateItem) IsSection() bool {
	return i.ItemType == enum.ItemTypeSection
}
