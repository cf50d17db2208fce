package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	domainRepo "github.com/tleroux/chiffrage-api/internal/domain/repository"
)

type estimateVersionRepository struct {
	db *gorm.DB
}

// NewEstimateVersionRepository creates a new estimate version repository
func NewEstimateVersionRepository(db *gorm.DB) domainRepo.EstimateVersionRepository {
	return &estimateVersionRepository{db: db}
}

func (r *estimateVersionRepository) Create(ctx context.Context, version *entity.EstimateVersion) error {
	return r.db.WithContext(ctx).Create(version).Error
}

func (r *estimateVersionRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateVersion, error) {
	var version entity.EstimateVersion
	err := r.db.WithContext(ctx).
		Preload("Project").
		First(&version, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &version, err
}

func (r *estimateVersionRepository) Update(ctx context.Context, version *entity.EstimateVersion) error {
	return r.db.WithContext(ctx).Save(version).Error
}

func (r *estimateVersionRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status enum.EstimateStatus) error {
	return r.db.WithContext(ctx).Model(&entity.EstimateVersion{}).
		Where("id = ?", id).
		Update("status", status).Error
}

func (r *estimateVersionRepository) UpdateTotals(ctx context.Context, id uuid.UUID, totalHT, totalTax, totalTTC int64) error {
	return r.db.WithContext(ctx).Model(&entity.EstimateVersion{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"total_ht_cents":  totalHT,
			"total_tax_cents": totalTax,
			"total_ttc_cents": totalTTC,
		}).Error
}

// Delete removes the version and its items in one transaction.
func (r *estimateVersionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version_id = ?", id).Delete(&entity.EstimateItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&entity.EstimateVersion{}, "id = ?", id).Error
	})
}

func (r *estimateVersionRepository) List(ctx context.Context, params *domainRepo.EstimateFilterParams) ([]entity.EstimateVersion, int64, error) {
	var versions []entity.EstimateVersion
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.EstimateVersion{})

	if params.Search != "" {
		search := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(label) LIKE ?", search)
	}

	if params.Status != nil {
		query = query.Where("status = ?", *params.Status)
	}

	if params.ProjectID != nil {
		query = query.Where("project_id = ?", *params.ProjectID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	params.Pagination.Validate()
	err := query.Offset(params.Pagination.Offset()).Limit(params.Pagination.PerPage).
		Preload("Project").
		Order("created_at DESC").
		Find(&versions).Error

	return versions, total, err
}

type estimateItemRepository struct {
	db *gorm.DB
}

// NewEstimateItemRepository creates a new estimate item repository
func NewEstimateItemRepository(db *gorm.DB) domainRepo.EstimateItemRepository {
	return &estimateItemRepository{db: db}
}

func (r *estimateItemRepository) Create(ctx context.Context, item *entity.EstimateItem) error {
	return r.db.WithContext(ctx).Create(item).Error
}

func (r *estimateItemRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.EstimateItem, error) {
	var item entity.EstimateItem
	err := r.db.WithContext(ctx).First(&item, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &item, err
}

func (r *estimateItemRepository) ListByVersion(ctx context.Context, versionID uuid.UUID) ([]entity.EstimateItem, error) {
	var items []entity.EstimateItem
	err := r.db.WithContext(ctx).
		Where("version_id = ?", versionID).
		Preload("LaborRole").
		Preload("Category").
		Order("parent_id, position ASC").
		Find(&items).Error
	return items, err
}

func (r *estimateItemRepository) Update(ctx context.Context, item *entity.EstimateItem) error {
	return r.db.WithContext(ctx).Save(item).Error
}

func (r *estimateItemRepository) MaxPosition(ctx context.Context, versionID uuid.UUID, parentID *uuid.UUID) (int, error) {
	var max int
	query := r.db.WithContext(ctx).Model(&entity.EstimateItem{}).
		Where("version_id = ?", versionID).
		Select("COALESCE(MAX(position), 0)")
	if parentID == nil {
		query = query.Where("parent_id IS NULL")
	} else {
		query = query.Where("parent_id = ?", *parentID)
	}
	err := query.Scan(&max).Error
	return max, err
}

func (r *estimateItemRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Where("id IN ?", ids).Delete(&entity.EstimateItem{}).Error
	})
}

// ReorderSiblings rewrites positions in a single transaction. Positions
// carry no unique constraint, so the rewrite needs no intermediate
// renumbering.
func (r *estimateItemRepository) ReorderSiblings(ctx context.Context, versionID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&entity.EstimateItem{}).
				Where("id = ? AND version_id = ?", id, versionID).
				Update("position", i+1)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}
