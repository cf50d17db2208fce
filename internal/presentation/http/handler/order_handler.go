package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/internal/domain/repository"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// OrderHandler handles purchase order HTTP requests
type OrderHandler struct {
	orderService  *service.OrderService
	exportService *service.ExportService
	pdfService    *service.PDFService
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orderService *service.OrderService, exportService *service.ExportService, pdfService *service.PDFService) *OrderHandler {
	return &OrderHandler{
		orderService:  orderService,
		exportService: exportService,
		pdfService:    pdfService,
	}
}

type orderLineRequest struct {
	ProductID        *uuid.UUID `json:"product_id"`
	Label            string     `json:"label" binding:"required"`
	Quantity         float64    `json:"quantity" binding:"required"`
	UnitPriceHTCents int64      `json:"unit_price_ht_cents"`
	TaxRateBp        int64      `json:"tax_rate_bp"`
}

func toLineInputs(lines []orderLineRequest) []service.OrderLineInput {
	inputs := make([]service.OrderLineInput, 0, len(lines))
	for _, l := range lines {
		inputs = append(inputs, service.OrderLineInput{
			ProductID:        l.ProductID,
			Label:            l.Label,
			Quantity:         l.Quantity,
			UnitPriceHTCents: l.UnitPriceHTCents,
			TaxRateBp:        l.TaxRateBp,
		})
	}
	return inputs
}

// Create handles creating a purchase order with its lines
func (h *OrderHandler) Create(c *gin.Context) {
	var req struct {
		SupplierID uuid.UUID          `json:"supplier_id" binding:"required"`
		SiteID     uuid.UUID          `json:"site_id" binding:"required"`
		ProjectID  *uuid.UUID         `json:"project_id"`
		Date       string             `json:"date"`
		Notes      *string            `json:"notes"`
		Lines      []orderLineRequest `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}

	date := time.Now()
	if req.Date != "" {
		parsed, err := time.Parse("2006-01-02", req.Date)
		if err != nil {
			response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		date = parsed
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), &service.CreateOrderInput{
		SupplierID: req.SupplierID,
		SiteID:     req.SiteID,
		ProjectID:  req.ProjectID,
		UserID:     *userID,
		Date:       date,
		Notes:      req.Notes,
		Lines:      toLineInputs(req.Lines),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Order created", order)
}

// Get handles retrieving an order with its lines and attachments
func (h *OrderHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order retrieved", order)
}

// Update handles replacing a draft order's lines and metadata
func (h *OrderHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		Date  *string            `json:"date"`
		Notes *string            `json:"notes"`
		Lines []orderLineRequest `json:"lines" binding:"required,min=1,dive"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateOrderInput{
		Notes: req.Notes,
		Lines: toLineInputs(req.Lines),
	}
	if req.Date != nil {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			response.BadRequest(c, "Invalid date format, expected YYYY-MM-DD")
			return
		}
		input.Date = &parsed
	}

	order, err := h.orderService.UpdateOrder(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order updated", order)
}

// UpdateStatus handles order status transitions
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		Status enum.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.UpdateOrderStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Order status updated", order)
}

// Delete handles deleting a draft order
func (h *OrderHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	if err := h.orderService.DeleteOrder(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List handles listing orders with filters
func (h *OrderHandler) List(c *gin.Context) {
	filters := parseOrderFilters(c)
	result, err := h.orderService.ListOrders(c.Request.Context(), &service.ListOrdersInput{
		Pagination: parsePagination(c),
		Search:     filters.Search,
		Status:     filters.Status,
		SupplierID: filters.SupplierID,
		SiteID:     filters.SiteID,
		ProjectID:  filters.ProjectID,
		StartDate:  filters.StartDate,
		EndDate:    filters.EndDate,
		SortBy:     filters.SortBy,
		SortOrder:  filters.SortOrder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Orders retrieved", result)
}

// ExportCSV streams the filtered order list as a CSV file
func (h *OrderHandler) ExportCSV(c *gin.Context) {
	data, err := h.exportService.OrdersCSV(c.Request.Context(), parseOrderFilters(c))
	if err != nil {
		response.Error(c, err)
		return
	}

	fileName := fmt.Sprintf("commandes-%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(200, "text/csv; charset=utf-8", data)
}

// Print streams the order as a printable PDF
func (h *OrderHandler) Print(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	data, err := h.pdfService.PrintableOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	fileName := strings.ReplaceAll(order.Reference, "/", "-") + ".pdf"
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(200, "application/pdf", data)
}

// parseOrderFilters reads the shared order filter query parameters.
// Unparseable values are ignored rather than rejected.
func parseOrderFilters(c *gin.Context) *repository.OrderFilterParams {
	params := &repository.OrderFilterParams{
		Search:    c.Query("search"),
		SortBy:    c.Query("sort_by"),
		SortOrder: c.Query("sort_order"),
	}

	if s := c.Query("status"); s != "" {
		status := enum.OrderStatus(s)
		if status.IsValid() {
			params.Status = &status
		}
	}

	parseID := func(key string) *uuid.UUID {
		if s := c.Query(key); s != "" {
			if id, err := uuid.Parse(s); err == nil {
				return &id
			}
		}
		return nil
	}
	parseDate := func(key string) *time.Time {
		if s := c.Query(key); s != "" {
			if t, err := time.Parse("2006-01-02", s); err == nil {
				return &t
			}
		}
		return nil
	}

	params.SupplierID = parseID("supplier_id")
	params.SiteID = parseID("site_id")
	params.ProjectID = parseID("project_id")
	params.StartDate = parseDate("start_date")
	params.EndDate = parseDate("end_date")
	return params
}
