package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// OrderRepository defines the interface for purchase order data
// operations. The composite operations (CreateWithLines, ReplaceLines)
// run in a single database transaction: partial multi-row failure is
// treated as a bug, not a contract.
type OrderRepository interface {
	// CreateWithLines inserts the order and its lines atomically.
	CreateWithLines(ctx context.Context, order *entity.PurchaseOrder, lines []entity.OrderLine) error
	// ReplaceLines deletes the order's lines, inserts the new set and
	// updates the stored totals, all in one transaction.
	ReplaceLines(ctx context.Context, orderID uuid.UUID, lines []entity.OrderLine, totalHT, totalTax, totalTTC int64) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error)
	GetWithLines(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error)
	GetByReference(ctx context.Context, ref string) (*entity.PurchaseOrder, error)
	Update(ctx context.Context, order *entity.PurchaseOrder) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.OrderStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *OrderFilterParams) ([]entity.PurchaseOrder, int64, error)
}

// OrderFilterParams contains filtering parameters for order queries
type OrderFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.OrderStatus
	SupplierID *uuid.UUID
	SiteID     *uuid.UUID
	ProjectID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// DevisRepository defines the interface for devis attachment data
// operations.
type DevisRepository interface {
	Create(ctx context.Context, devis *entity.DevisFile) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.DevisFile, error)
	ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.DevisFile, error)
	Update(ctx context.Context, devis *entity.DevisFile) error
	Delete(ctx context.Context, id uuid.UUID) error
	// Reorder rewrites the positions of the order's files to match the
	// given ID order, 1-based and contiguous, in one transaction.
	Reorder(ctx context.Context, orderID uuid.UUID, orderedIDs []uuid.UUID) error
	MaxPosition(ctx context.Context, orderID uuid.UUID) (int, error)
}
