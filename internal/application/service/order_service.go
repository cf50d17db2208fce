package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/internal/domain/pricing"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	infraRepo "github.com/tleroux/chiffrage-api/internal/infrastructure/repository"
	"github.com/tleroux/chiffrage-api/pkg/apperror"
	"github.com/tleroux/chiffrage-api/pkg/pagination"
	"github.com/tleroux/chiffrage-api/pkg/reference"
)

// referenceMaxAttempts bounds the regenerate-and-retry loop on
// reference uniqueness conflicts.
const referenceMaxAttempts = 5

// OrderService handles purchase order operations
type OrderService struct {
	orderRepo    repository.OrderRepository
	supplierRepo repository.SupplierRepository
	siteRepo     repository.SiteRepository
	projectRepo  repository.ProjectRepository
	userRepo     repository.UserRepository
	refGen       *reference.Generator
	logger       *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orderRepo repository.OrderRepository,
	supplierRepo repository.SupplierRepository,
	siteRepo repository.SiteRepository,
	projectRepo repository.ProjectRepository,
	userRepo repository.UserRepository,
	refGen *reference.Generator,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		siteRepo:     siteRepo,
		projectRepo:  projectRepo,
		userRepo:     userRepo,
		refGen:       refGen,
		logger:       logger,
	}
}

// OrderLineInput represents one line of a create/update order request.
// Prices are integer cents, tax rates basis points.
type OrderLineInput struct {
	ProductID        *uuid.UUID
	Label            string
	Quantity         float64
	UnitPriceHTCents int64
	TaxRateBp        int64
}

// CreateOrderInput represents the create order input
type CreateOrderInput struct {
	SupplierID uuid.UUID
	SiteID     uuid.UUID
	ProjectID  *uuid.UUID
	UserID     uuid.UUID
	Date       time.Time
	Notes      *string
	Lines      []OrderLineInput
}

func validateOrderLines(lines []OrderLineInput) error {
	if len(lines) == 0 {
		return apperror.NewBadRequestError("An order needs at least one line")
	}
	for _, l := range lines {
		if l.Quantity <= 0 {
			return apperror.NewBadRequestError("Line quantity must be positive")
		}
		if l.UnitPriceHTCents < 0 {
			return apperror.NewBadRequestError("Line unit price cannot be negative")
		}
		if l.TaxRateBp < 0 || l.TaxRateBp > 10000 {
			return apperror.NewBadRequestError("Line tax rate must be between 0 and 10000 basis points")
		}
	}
	return nil
}

// buildLines computes the derived fields of each line and the order
// totals in one pass.
func buildLines(inputs []OrderLineInput) ([]entity.OrderLine, pricing.OrderTotals) {
	calcInputs := make([]pricing.LineInput, len(inputs))
	for i, in := range inputs {
		calcInputs[i] = pricing.LineInput{
			Quantity:         in.Quantity,
			UnitPriceHTCents: in.UnitPriceHTCents,
			TaxRateBp:        in.TaxRateBp,
		}
	}
	lineTotals, totals := pricing.ComputeTotalsFromInputs(calcInputs)

	lines := make([]entity.OrderLine, len(inputs))
	for i, in := range inputs {
		lines[i] = entity.OrderLine{
			ProductID:         in.ProductID,
			Label:             in.Label,
			Quantity:          in.Quantity,
			UnitPriceHTCents:  in.UnitPriceHTCents,
			TaxRateBp:         in.TaxRateBp,
			LineTotalHTCents:  lineTotals[i].LineTotalHTCents,
			LineTaxCents:      lineTotals[i].LineTaxCents,
			LineTotalTTCCents: lineTotals[i].LineTotalTTCCents,
		}
	}
	return lines, totals
}

// CreateOrder validates the input, generates a unique reference
// (regenerating on collision up to the attempt bound), computes totals
// and inserts the order with its lines in one transaction.
func (s *OrderService) CreateOrder(ctx context.Context, input *CreateOrderInput) (*entity.PurchaseOrder, error) {
	if err := validateOrderLines(input.Lines); err != nil {
		return nil, err
	}

	supplier, err := s.supplierRepo.GetByID(ctx, input.SupplierID)
	if err != nil {
		return nil, err
	}
	if supplier == nil {
		return nil, apperror.NewNotFoundError("Supplier")
	}

	site, err := s.siteRepo.GetByID(ctx, input.SiteID)
	if err != nil {
		return nil, err
	}
	if site == nil {
		return nil, apperror.NewNotFoundError("Site")
	}

	projectCode := ""
	if input.ProjectID != nil {
		project, err := s.projectRepo.GetByID(ctx, *input.ProjectID)
		if err != nil {
			return nil, err
		}
		if project == nil {
			return nil, apperror.NewNotFoundError("Project")
		}
		projectCode = project.Code
	}

	initials := ""
	user, err := s.userRepo.GetByID(ctx, input.UserID)
	if err != nil {
		return nil, err
	}
	if user != nil {
		initials = reference.Initials(user.FirstName, user.LastName)
	}

	date := input.Date
	if date.IsZero() {
		date = time.Now()
	}

	lines, totals := buildLines(input.Lines)

	var lastErr error
	for attempt := 1; attempt <= referenceMaxAttempts; attempt++ {
		order := &entity.PurchaseOrder{
			Reference:     s.refGen.NewReference(supplier.Name, projectCode, initials),
			SupplierID:    input.SupplierID,
			SiteID:        input.SiteID,
			ProjectID:     input.ProjectID,
			CreatedByID:   &input.UserID,
			Date:          date,
			Status:        enum.OrderStatusDraft,
			TotalHTCents:  totals.TotalHTCents,
			TotalTaxCents: totals.TotalTaxCents,
			TotalTTCCents: totals.TotalTTCCents,
			Notes:         input.Notes,
		}

		freshLines := make([]entity.OrderLine, len(lines))
		copy(freshLines, lines)

		err := s.orderRepo.CreateWithLines(ctx, order, freshLines)
		if err == nil {
			return order, nil
		}
		if !infraRepo.IsDuplicateKey(err) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("order reference collision, regenerating",
			zap.String("reference", order.Reference),
			zap.Int("attempt", attempt))
	}

	s.logger.Error("exhausted reference generation attempts", zap.Error(lastErr))
	return nil, apperror.NewConflictError("Could not generate a unique order reference")
}

// GetOrder retrieves an order with its lines and attachments
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.GetWithLines(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	return order, nil
}

// UpdateOrderInput represents the update order input. Lines replace the
// existing set wholesale.
type UpdateOrderInput struct {
	Date  *time.Time
	Notes *string
	Lines []OrderLineInput
}

// UpdateOrder replaces the lines of a draft order and recomputes its
// totals in one transaction.
func (s *OrderService) UpdateOrder(ctx context.Context, id uuid.UUID, input *UpdateOrderInput) (*entity.PurchaseOrder, error) {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !order.Status.IsEditable() {
		return nil, apperror.NewReadOnlyError("Order " + order.Reference)
	}

	if err := validateOrderLines(input.Lines); err != nil {
		return nil, err
	}

	if input.Date != nil || input.Notes != nil {
		if input.Date != nil {
			order.Date = *input.Date
		}
		if input.Notes != nil {
			order.Notes = input.Notes
		}
		if err := s.orderRepo.Update(ctx, order); err != nil {
			return nil, err
		}
	}

	lines, totals := buildLines(input.Lines)
	if err := s.orderRepo.ReplaceLines(ctx, id, lines, totals.TotalHTCents, totals.TotalTaxCents, totals.TotalTTCCents); err != nil {
		return nil, err
	}

	return s.GetOrder(ctx, id)
}

// UpdateOrderStatus applies a forward status transition
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, target enum.OrderStatus) (*entity.PurchaseOrder, error) {
	if !target.IsValid() {
		return nil, apperror.NewBadRequestError("Unknown order status")
	}

	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order == nil {
		return nil, apperror.NewNotFoundError("Order")
	}
	if !order.Status.CanTransitionTo(target) {
		return nil, apperror.NewBadRequestError("Cannot change status from " + order.Status.String() + " to " + target.String())
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, target); err != nil {
		return nil, err
	}
	order.Status = target
	return order, nil
}

// DeleteOrder soft-deletes a draft order
func (s *OrderService) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	order, err := s.orderRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if order == nil {
		return apperror.NewNotFoundError("Order")
	}
	if !order.Status.IsEditable() {
		return apperror.NewReadOnlyError("Order " + order.Reference)
	}
	return s.orderRepo.Delete(ctx, id)
}

// ListOrdersInput represents the list orders filter input
type ListOrdersInput struct {
	Pagination *pagination.PaginationParams
	Search     string
	Status     *enum.OrderStatus
	SupplierID *uuid.UUID
	SiteID     *uuid.UUID
	ProjectID  *uuid.UUID
	StartDate  *time.Time
	EndDate    *time.Time
	SortBy     string
	SortOrder  string
}

// ListOrders lists orders with pagination and filters
func (s *OrderService) ListOrders(ctx context.Context, input *ListOrdersInput) (*pagination.PaginatedResult[entity.PurchaseOrder], error) {
	orders, total, err := s.orderRepo.List(ctx, &repository.OrderFilterParams{
		Pagination: input.Pagination,
		Search:     input.Search,
		Status:     input.Status,
		SupplierID: input.SupplierID,
		SiteID:     input.SiteID,
		ProjectID:  input.ProjectID,
		StartDate:  input.StartDate,
		EndDate:    input.EndDate,
		SortBy:     input.SortBy,
		SortOrder:  input.SortOrder,
	})
	if err != nil {
		return nil, err
	}

	pag := pagination.NewPagination(input.Pagination.Page, input.Pagination.PerPage, total)
	return pagination.NewPaginatedResult(orders, pag), nil
}
