package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
)

// LaborRoleService handles labor role and estimate category operations
type LaborRoleService struct {
	roleRepo     repository.LaborRoleRepository
	categoryRepo repository.EstimateCategoryRepository
}

// NewLaborRoleService creates a new labor role service
func NewLaborRoleService(roleRepo repository.LaborRoleRepository, categoryRepo repository.EstimateCategoryRepository) *LaborRoleService {
	return &LaborRoleService{roleRepo: roleRepo, categoryRepo: categoryRepo}
}

// LaborRoleInput represents the create/update labor role input
type LaborRoleInput struct {
	Name            string
	HourlyRateCents int64
	IsActive        *bool
}

// CreateLaborRole creates a new labor role
func (s *LaborRoleService) CreateLaborRole(ctx context.Context, input *LaborRoleInput) (*entity.LaborRole, error) {
	if input.HourlyRateCents < 0 {
		return nil, apperror.NewBadRequestError("Hourly rate cannot be negative")
	}

	role := &entity.LaborRole{
		Name:            input.Name,
		HourlyRateCents: input.HourlyRateCents,
		IsActive:        true,
	}
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}
	if err := s.roleRepo.Create(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// GetLaborRole retrieves a labor role by ID. Inactive roles resolve so
// historical lines keep their rate source.
func (s *LaborRoleService) GetLaborRole(ctx context.Context, id uuid.UUID) (*entity.LaborRole, error) {
	role, err := s.roleRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if role == nil {
		return nil, apperror.NewNotFoundError("Labor role")
	}
	return role, nil
}

// UpdateLaborRole updates a labor role, including deactivation
func (s *LaborRoleService) UpdateLaborRole(ctx context.Context, id uuid.UUID, input *LaborRoleInput) (*entity.LaborRole, error) {
	role, err := s.GetLaborRole(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.HourlyRateCents < 0 {
		return nil, apperror.NewBadRequestError("Hourly rate cannot be negative")
	}

	role.Name = input.Name
	role.HourlyRateCents = input.HourlyRateCents
	if input.IsActive != nil {
		role.IsActive = *input.IsActive
	}
	if err := s.roleRepo.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// ListLaborRoles lists labor roles, excluding inactive ones unless asked
func (s *LaborRoleService) ListLaborRoles(ctx context.Context, includeInactive bool) ([]entity.LaborRole, error) {
	return s.roleRepo.List(ctx, includeInactive)
}

// GetOrCreateCategory returns the category matching name
// case-insensitively, creating it on first use.
func (s *LaborRoleService) GetOrCreateCategory(ctx context.Context, name string) (*entity.EstimateCategory, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperror.NewBadRequestError("Category name is required")
	}

	category, err := s.categoryRepo.GetByNameFold(ctx, name)
	if err != nil {
		return nil, err
	}
	if category != nil {
		return category, nil
	}

	category = &entity.EstimateCategory{Name: name}
	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// ListCategories lists all estimate categories
func (s *LaborRoleService) ListCategories(ctx context.Context) ([]entity.EstimateCategory, error) {
	return s.categoryRepo.List(ctx)
}
