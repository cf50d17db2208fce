package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// ProjectService handles project operations
type ProjectService struct {
	projectRepo repository.ProjectRepository
}

// NewProjectService creates a new project service
func NewProjectService(projectRepo repository.ProjectRepository) *ProjectService {
	return &ProjectService{projectRepo: projectRepo}
}

// ProjectInput represents the create/update project input
type ProjectInput struct {
	Name       string
	Code       string
	ClientName *string
	Notes      *string
}

// CreateProject creates a new project. Codes are stored uppercase since
// they feed order references.
func (s *ProjectService) CreateProject(ctx context.Context, input *ProjectInput) (*entity.Project, error) {
	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code == "" {
		return nil, apperror.NewBadRequestError("Project code is required")
	}

	existing, err := s.projectRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperror.NewConflictError("Project code already in use")
	}

	project := &entity.Project{
		Name:       input.Name,
		Code:       code,
		ClientName: input.ClientName,
		Notes:      input.Notes,
	}
	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// GetProject retrieves a project by ID
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*entity.Project, error) {
	project, err := s.projectRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperror.NewNotFoundError("Project")
	}
	return project, nil
}

// UpdateProject updates an existing project
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, input *ProjectInput) (*entity.Project, error) {
	project, err := s.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}

	code := strings.ToUpper(strings.TrimSpace(input.Code))
	if code != project.Code {
		existing, err := s.projectRepo.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return nil, apperror.NewConflictError("Project code already in use")
		}
	}

	project.Name = input.Name
	project.Code = code
	project.ClientName = input.ClientName
	project.Notes = input.Notes

	if err := s.projectRepo.Update(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// DeleteProject soft-deletes a project
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProject(ctx, id); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, id)
}

// ListProjects lists projects with pagination and search
func (s *ProjectService) ListProjects(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Project], error) {
	projects, total, err := s.projectRepo.List(ctx, &repository.ProjectFilterParams{
		Pagination: params,
		Search:     search,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(projects, pag), nil
}
