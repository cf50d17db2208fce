package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
)

// SiteService handles delivery site operations
type SiteService struct {
	siteRepo repository.SiteRepository
}

// NewSiteService creates a new site service
func NewSiteService(siteRepo repository.SiteRepository) *SiteService {
	return &SiteService{siteRepo: siteRepo}
}

// SiteInput represents the create/update site input
type SiteInput struct {
	Name        string
	Address     *string
	City        *string
	PostalCode  *string
	ContactName *string
	Phone       *string
	Notes       *string
}

// CreateSite creates a new delivery site
func (s *SiteService) CreateSite(ctx context.Context, input *SiteInput) (*entity.Site, error) {
	site := &entity.Site{
		Name:        input.Name,
		Address:     input.Address,
		City:        input.City,
		PostalCode:  input.PostalCode,
		ContactName: input.ContactName,
		Phone:       input.Phone,
		Notes:       input.Notes,
	}
	if err := s.siteRepo.Create(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// GetSite retrieves a site by ID
func (s *SiteService) GetSite(ctx context.Context, id uuid.UUID) (*entity.Site, error) {
	site, err := s.siteRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, apperror.NewNotFoundError("Site")
	}
	return site, nil
}

// UpdateSite updates an existing site
func (s *SiteService) UpdateSite(ctx context.Context, id uuid.UUID, input *SiteInput) (*entity.Site, error) {
	site, err := s.GetSite(ctx, id)
	if err != nil {
		return nil, err
	}

	site.Name = input.Name
	site.Address = input.Address
	site.City = input.City
	site.PostalCode = input.PostalCode
	site.ContactName = input.ContactName
	site.Phone = input.Phone
	site.Notes = input.Notes

	if err := s.siteRepo.Update(ctx, site); err != nil {
		return nil, err
	}
	return site, nil
}

// DeleteSite soft-deletes a site
func (s *SiteService) DeleteSite(ctx context.Context, id uuid.UUID) error {
	if _, err := s.GetSite(ctx, id); err != nil {
		return err
	}
	return s.siteRepo.Delete(ctx, id)
}

// ListSites lists sites with pagination and search
func (s *SiteService) ListSites(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Site], error) {
	sites, total, err := s.siteRepo.List(ctx, &repository.SiteFilterParams{
		Pagination: params,
		Search:     search,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(params.Page, params.PerPage, total)
	return pagination.NewPaginatedResult(sites, pag), nil
}
