package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// EstimateVersionRepository defines the interface for estimate version
// data operations.
type EstimateVersionRepository interface {
	Create(ctx context.Context, version *entity.EstimateVersion) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateVersion, error)
	Update(ctx context.Context, version *entity.EstimateVersion) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error
	// UpdateTotals persists the aggregated totals block only, leaving the
	// rest of the row untouched. Used by the debounced autosave.
	UpdateTotals(ctx context.Context, id uuid.UUID, totalHT, totalTax, totalTTC int64) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *EstimateFilterParams) ([]entity.EstimateVersion, int64, error)
}

// EstimateFilterParams contains filtering parameters for estimate queries
type EstimateFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.EstimateStatus
	ProjectID  *uuid.UUID
}

// EstimateItemRepository defines the interface for estimate item data
// operations. DeleteByIDs and ReorderSiblings are transactional.
type EstimateItemRepository interface {
	Create(ctx context.Context, item *entity.EstimateItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateItem, error)
	// ListByVersion returns the full item set of a version ordered by
	// parent then position, for tree reconstruction.
	ListByVersion(ctx context.Context, versionID uuid.UUID) ([]entity.EstimateItem, error)
	Update(ctx context.Context, item *entity.EstimateItem) error
	// MaxPosition returns the highest position among the siblings under
	// parentID (nil for root), zero when there are none.
	MaxPosition(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID) (int, error)
	// DeleteByIDs removes an item and its collected descendants in one
	// transaction.
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) error
	// ReorderSiblings rewrites the positions of the sibling group to
	// match the given ID order, 1-based and contiguous, in one
	// transaction. Other subtrees are untouched.
	ReorderSiblings(ctx context.Context, versionID uuid.UUID, orderedIDs []uuid.UUID) error
}
