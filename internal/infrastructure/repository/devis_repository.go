package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	domainRepo "github.com/tleroux/chiffrage-api/internal/domain/repository"
)

type devisRepository struct {
	db *gorm.DB
}

// NewDevisRepository creates a new devis attachment repository
func NewDevisRepository(db *gorm.DB) domainRepo.DevisRepository {
	return &devisRepository{db: db}
}

func (r *devisRepository) Create(ctx context.Context, devis *entity.DevisFile) error {
	return r.db.WithContext(ctx).Create(devis).Error
}

func (r *devisRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.DevisFile, error) {
	var devis entity.DevisFile
	err := r.db.WithContext(ctx).First(&devis, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &devis, err
}

func (r *devisRepository) ListByOrder(ctx context.Context, orderID uuid.UUID) ([]entity.DevisFile, error) {
	var files []entity.DevisFile
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("position ASC").
		Find(&files).Error
	return files, err
}

func (r *devisRepository) Update(ctx context.Context, devis *entity.DevisFile) error {
	return r.db.WithContext(ctx).Save(devis).Error
}

func (r *devisRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&entity.DevisFile{}, "id = ?", id).Error
}

// Reorder rewrites positions in a single transaction. Positions carry no
// unique constraint, so the rewrite needs no intermediate renumbering.
func (r *devisRepository) Reorder(ctx context.Context, orderID uuid.UUID, orderedIDs []uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i, id := range orderedIDs {
			res := tx.Model(&entity.DevisFile{}).
				Where("id = ? AND order_id = ?", id, orderID).
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

func (r *devisRepository) MaxPosition(ctx context.Context, orderID uuid.UUID) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&entity.DevisFile{}).
		Where("order_id = ?", orderID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	return max, err
}
