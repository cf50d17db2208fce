package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// ProjectRepository defines the interface for project data operations
type ProjectRepository interface {
	Create(ctx context.Context, project *entity.Project) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Project, error)
	GetByCode(ctx context.Context, code string) (*entity.Project, error)
	Update(ctx context.Context, project *entity.Project) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, params *ProjectFilterParams) ([]entity.Project, int64, error)
}

// ProjectFilterParams contains filtering parameters for project queries
type ProjectFilterParams struct {
	Pagination *pagination.PaginationParams
	Search     string
}
