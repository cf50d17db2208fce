package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// ProductService handles catalog product operations
type ProductService struct {
	productRepo  repository.ProductRepository
	supplierRepo repository.SupplierRepository
}

// NewProductService creates a new product service
func NewProductService(productRepo repository.ProductRepository, supplierRepo repository.SupplierRepository) *ProductService {
	return &ProductService{productRepo: productRepo, supplierRepo: supplierRepo}
}

// ProductInput represents the create/update product input. Prices are
// integer cents, tax rates basis points.
type ProductInput struct {
	SupplierID       *uuid.UUID
	Name             string
	Code             string
	Unit             string
	UnitPriceHTCents int64
	TaxRateBp        int64
	Notes            *string
}

// CreateProduct creates a new catalog product
func (s *ProductService) CreateProduct(ctx context.Context, input *ProductInput) (*entity.Product, error) {
	if input.UnitPriceHTCents < 0 {
		return nil, apperror.NewBadRequestError("Unit price cannot be negative")
	}
	if input.TaxRateBp < 0 {
		return nil, apperror.NewBadRequestError("Tax rate cannot be negative")
	}
	if input.SupplierID != nil {
		supplier, err := s.supplierRepo.GetByID(ctx, *input.SupplierID)
		if err != nil {
			return nil, err
		}
		if supplier == nil {
			return nil, apperror.NewNotFoundError("Supplier")
		}
	}

	unit := input.Unit
	if unit == "" {
		unit = "u"
	}

	product := &entity.Product{
		SupplierID:       input.SupplierID,
		Name:             input.Name,
		Code:             input.Code,
		Unit:             unit,
		UnitPriceHTCents: input.UnitPriceHTCents,
		TaxRateBp:        input.TaxRateBp,
		Notes:            input.Notes,
	}
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// GetProduct retrieves a product by ID
func (s *ProductService) GetProduct(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}
	return product, nil
}

// UpdateProduct updates an existing product
func (s *ProductService) UpdateProduct(ctx context.Context, id uuid.UUID, input *ProductInput) (*entity.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if input.UnitPriceHTCents < 0 {
		return nil, apperror.NewBadRequestError("Unit price cannot be negative")
	}
	if input.TaxRateBp < 0 {
		return nil, apperror.NewBadRequestError("Tax rate cannot be negative")
	}

	product.SupplierID = input.SupplierID
	product.Name = input.Name
	product.Code = input.Code
	if input.Unit != "" {
		product.Unit = input.Unit
	}
	product.UnitPriceHTCents = input.UnitPriceHTCents
	product.TaxRateBp = input.TaxRateBp
	product.Notes = input.Notes

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}
	return product, nil
}

// DeleteProduct soft-deletes a product
func (s *ProductService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetProduct(ctx, id); err != nil {
		return err
	}
	return s.productRepo.Delete(ctx, id)
}

// ListProducts lists products with pagination, search and supplier filter
func (s *ProductService) ListProducts(ctx context.Context, params *pagination.PaginationParams, search string, supplierID *uuid.UUID) (*pagination.PaginatedResult[entity.Product], error) {
	products, total, err := s.productRepo.List(ctx, &repository.ProductFilterParams{
		Pagination: params,
		Search:     search,
		SupplierID: supplierID,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(products, pag), nil
}
