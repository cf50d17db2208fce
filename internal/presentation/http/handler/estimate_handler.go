package handler

import (
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/domain/entity"
	"github.com/tleroux/chiffrage-api/internal/domain/enum"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// EstimateHandler handles estimate version and item HTTP requests
type EstimateHandler struct {
	estimateService *service.EstimateService
	exportService   *service.ExportService
	pdfService      *service.PDFService
}

// NewEstimateHandler creates a new estimate handler
func NewEstimateHandler(estimateService *service.EstimateService, exportService *service.ExportService, pdfService *service.PDFService) *EstimateHandler {
	return &EstimateHandler{
		estimateService: estimateService,
		exportService:   exportService,
		pdfService:      pdfService,
	}
}

// versionResponse is the full editor payload for one estimate version.
type versionResponse struct {
	Version       *entity.EstimateVersion `json:"version"`
	Items         []entity.EstimateItem   `json:"items"`
	Totals        totalsResponse          `json:"totals"`
	DiscountCents int64                   `json:"discount_cents"`
}

type totalsResponse struct {
	CostSubtotalCents       int64 `json:"cost_subtotal_cents"`
	SaleSubtotalCents       int64 `json:"sale_subtotal_cents"`
	SaleTotalCents          int64 `json:"sale_total_cents"`
	TaxCents                int64 `json:"tax_cents"`
	TtcCents                int64 `json:"ttc_cents"`
	RoundedTtcCents         int64 `json:"rounded_ttc_cents"`
	RoundingAdjustmentCents int64 `json:"rounding_adjustment_cents"`
	AdjustedTaxCents        int64 `json:"adjusted_tax_cents"`
}

func toVersionResponse(view *service.VersionView) *versionResponse {
	return &versionResponse{
		Version:       view.Version,
		Items:         view.Items,
		DiscountCents: view.DiscountCents,
		Totals: totalsResponse{
			CostSubtotalCents:       view.Totals.CostSubtotalCents,
			SaleSubtotalCents:       view.Totals.SaleSubtotalCents,
			SaleTotalCents:          view.Totals.SaleTotalCents,
			TaxCents:                view.Totals.TaxCents,
			TtcCents:                view.Totals.TtcCents,
			RoundedTtcCents:         view.Totals.RoundedTtcCents,
			RoundingAdjustmentCents: view.Totals.RoundingAdjustmentCents,
			AdjustedTaxCents:        view.Totals.AdjustedTaxCents,
		},
	}
}

// CreateVersion handles creating a draft estimate version
func (h *EstimateHandler) CreateVersion(c *gin.Context) {
	var req struct {
		ProjectID         uuid.UUID `json:"project_id" binding:"required"`
		Label             string    `json:"label" binding:"required"`
		MarginMultiplier  float64   `json:"margin_multiplier"`
		TaxRateBp         int64     `json:"tax_rate_bp"`
		RoundingMode      string    `json:"rounding_mode"`
		RoundingStepCents int64     `json:"rounding_step_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	version, err := h.estimateService.CreateVersion(c.Request.Context(), &service.CreateVersionInput{
		ProjectID:         req.ProjectID,
		Label:             req.Label,
		MarginMultiplier:  req.MarginMultiplier,
		TaxRateBp:         req.TaxRateBp,
		RoundingMode:      enum.RoundingMode(req.RoundingMode),
		RoundingStepCents: req.RoundingStepCents,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Estimate version created", version)
}

// GetVersion handles retrieving the full editor view of a version
func (h *EstimateHandler) GetVersion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	view, err := h.estimateService.GetVersion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Estimate version retrieved", toVersionResponse(view))
}

// ListVersions handles listing versions with filters
func (h *EstimateHandler) ListVersions(c *gin.Context) {
	var status *enum.EstimateStatus
	if s := c.Query("status"); s != "" {
		candidate := enum.EstimateStatus(s)
		if candidate.IsValid() {
			status = &candidate
		}
	}
	var projectID *uuid.UUID
	if s := c.Query("project_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			projectID = &id
		}
	}

	result, err := h.estimateService.ListVersions(c.Request.Context(), parsePagination(c), c.Query("search"), status, projectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Estimate versions retrieved", result)
}

// UpdateVersion handles updating a draft version's pricing context
func (h *EstimateHandler) UpdateVersion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	var req struct {
		Label             *string  `json:"label"`
		MarginMultiplier  *float64 `json:"margin_multiplier"`
		DiscountBp        *int64   `json:"discount_bp"`
		DiscountCents     *int64   `json:"discount_cents"`
		TaxRateBp         *int64   `json:"tax_rate_bp"`
		RoundingMode      *string  `json:"rounding_mode"`
		RoundingStepCents *int64   `json:"rounding_step_cents"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	input := &service.UpdateVersionInput{
		Label:             req.Label,
		MarginMultiplier:  req.MarginMultiplier,
		DiscountBp:        req.DiscountBp,
		DiscountCents:     req.DiscountCents,
		TaxRateBp:         req.TaxRateBp,
		RoundingStepCents: req.RoundingStepCents,
	}
	if req.RoundingMode != nil {
		mode := enum.RoundingMode(*req.RoundingMode)
		input.RoundingMode = &mode
	}

	view, err := h.estimateService.UpdateVersion(c.Request.Context(), id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Estimate version updated", toVersionResponse(view))
}

// UpdateStatus handles estimate status transitions
func (h *EstimateHandler) UpdateStatus(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	var req struct {
		Status enum.EstimateStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	version, err := h.estimateService.UpdateVersionStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Estimate status updated", version)
}

// DeleteVersion handles deleting a draft version and its items
func (h *EstimateHandler) DeleteVersion(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	if err := h.estimateService.DeleteVersion(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// AddSection handles appending a section under a parent
func (h *EstimateHandler) AddSection(c *gin.Context) {
	versionID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	var req struct {
		ParentID *uuid.UUID `json:"parent_id"`
		Title    string     `json:"title" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.estimateService.AddSection(c.Request.Context(), versionID, req.ParentID, req.Title)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Section added", item)
}

type lineRequest struct {
	Title            string     `json:"title" binding:"required"`
	Quantity         float64    `json:"quantity"`
	UnitPriceHTCents int64      `json:"unit_price_ht_cents"`
	KFo              *float64   `json:"k_fo"`
	HMo              float64    `json:"h_mo"`
	KMo              *float64   `json:"k_mo"`
	LaborRoleID      *uuid.UUID `json:"labor_role_id"`
	CategoryID       *uuid.UUID `json:"category_id"`
	CategoryName     *string    `json:"category_name"`
	TaxRateBp        *int64     `json:"tax_rate_bp"`
}

func (r *lineRequest) toInput() *service.LineInput {
	return &service.LineInput{
		Title:            r.Title,
		Quantity:         r.Quantity,
		UnitPriceHTCents: r.UnitPriceHTCents,
		KFo:              r.KFo,
		HMo:              r.HMo,
		KMo:              r.KMo,
		LaborRoleID:      r.LaborRoleID,
		CategoryID:       r.CategoryID,
		CategoryName:     r.CategoryName,
		TaxRateBp:        r.TaxRateBp,
	}
}

// AddLine handles appending a priced line under a parent
func (h *EstimateHandler) AddLine(c *gin.Context) {
	versionID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	var req struct {
		ParentID *uuid.UUID `json:"parent_id"`
		lineRequest
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.estimateService.AddLine(c.Request.Context(), versionID, req.ParentID, req.lineRequest.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Line added", item)
}

// UpdateItem handles editing a section title or a line's fields
func (h *EstimateHandler) UpdateItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	var req lineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	item, err := h.estimateService.UpdateItem(c.Request.Context(), itemID, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item updated", item)
}

// DeleteItem handles removing an item and its whole subtree
func (h *EstimateHandler) DeleteItem(c *gin.Context) {
	itemID, ok := parseUUIDParam(c, "itemId")
	if !ok {
		response.BadRequest(c, "Invalid item ID")
		return
	}

	if err := h.estimateService.DeleteItem(c.Request.Context(), itemID); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ReorderItems handles rewriting the positions of one sibling group
func (h *EstimateHandler) ReorderItems(c *gin.Context) {
	versionID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	var req struct {
		ParentID   *uuid.UUID  `json:"parent_id"`
		OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.estimateService.ReorderItems(c.Request.Context(), versionID, req.ParentID, req.OrderedIDs); err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.estimateService.GetVersion(c.Request.Context(), versionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Items reordered", toVersionResponse(view))
}

// Export streams the version as an Excel workbook
func (h *EstimateHandler) Export(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	data, err := h.exportService.EstimateWorkbook(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	fileName := fmt.Sprintf("chiffrage-%s.xlsx", time.Now().Format("2006-01-02"))
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(200, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

// Print streams the version as a printable PDF
func (h *EstimateHandler) Print(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid version ID")
		return
	}

	data, err := h.pdfService.PrintableEstimate(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	view, err := h.estimateService.GetVersion(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	label := strings.ReplaceAll(strings.ToLower(view.Version.Label), " ", "-")
	fileName := fmt.Sprintf("chiffrage-%s.pdf", label)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(200, "application/pdf", data)
}
