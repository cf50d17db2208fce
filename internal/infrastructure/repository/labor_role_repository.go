package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	domainRepo "github.com/tleroux/chiffrage-api/internal/domain/repository"
)

type laborRoleRepository struct {
	db *gorm.DB
}

// NewLaborRoleRepository creates a new labor role repository
func NewLaborRoleRepository(db *gorm.DB) domainRepo.LaborRoleRepository {
	return &laborRoleRepository{db: db}
}

func (r *laborRoleRepository) Create(ctx context.Context, role *entity.LaborRole) error {
	return r.db.WithContext(ctx).Create(role).Error
}

func (r *laborRoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.LaborRole, error) {
	var role entity.LaborRole
	err := r.db.WithContext(ctx).First(&role, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &role, err
}

func (r *laborRoleRepository) Update(ctx context.Context, role *entity.LaborRole) error {
	return r.db.WithContext(ctx).Save(role).Error
}

func (r *laborRoleRepository) List(ctx context.Context, includeInactive bool) ([]entity.LaborRole, error) {
	var roles []entity.LaborRole
	query := r.db.WithContext(ctx).Model(&entity.LaborRole{})
	if !includeInactive {
		query = query.Where("is_active = ?", true)
	}
	err := query.Order("name ASC").Find(&roles).Error
	return roles, err
}

type estimateCategoryRepository struct {
	db *gorm.DB
}

// NewEstimateCategoryRepository creates a new estimate category repository
func NewEstimateCategoryRepository(db *gorm.DB) domainRepo.EstimateCategoryRepository {
	return &estimateCategoryRepository{db: db}
}

func (r *estimateCategoryRepository) Create(ctx context.Context, category *entity.EstimateCategory) error {
	return r.db.WithContext(ctx).Create(category).Error
}

func (r *estimateCategoryRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateCategory, error) {
	var category entity.EstimateCategory
	err := r.db.WithContext(ctx).First(&category, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *estimateCategoryRepository) GetByNameFold(ctx context.Context, name string) (*entity.EstimateCategory, error) {
	var category entity.EstimateCategory
	err := r.db.WithContext(ctx).First(&category, "LOWER(name) = LOWER(?)", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &category, err
}

func (r *estimateCategoryRepository) List(ctx context.Context) ([]entity.EstimateCategory, error) {
	var categories []entity.EstimateCategory
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}
