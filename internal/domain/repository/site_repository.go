package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// SiteRepository defines the interface for delivery site data operations
type SiteRepository interface {
	Create(ctx context.Context, site *entity.Site) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Site, error)
	Update(ctx context.Context, site *entity.Site) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *SiteFilterParams) ([]entity.Site, int64, error)
}

// SiteFilterParams contains filtering parameters for site queries
type SiteFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
