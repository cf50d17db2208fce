package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
)

// LaborRoleRepository defines the interface for labor role data operations
type LaborRoleRepository interface {
	Create(ctx context.Context, role *entity.LaborRole) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.LaborRole, error)
	Update(ctx context.Context, role *entity.LaborRole) error
	// List returns roles ordered by name. Inactive roles are excluded
	// unless includeInactive is set; they stay resolvable by ID either way.
	List(ctx context.Context, includeInactive bool) ([]entity.LaborRole, error)
}

// EstimateCategoryRepository defines the interface for estimate category
// data operations
type EstimateCategoryRepository interface {
	Create(ctx context.Context, category *entity.EstimateCategory) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateCategory, error)
	// GetByNameFold matches a category by case-insensitive name.
	GetByNameFold(ctx context.Context, name string) (*entity.EstimateCategory, error)
	List(ctx context.Context) ([]entity.EstimateCategory, error)
}
