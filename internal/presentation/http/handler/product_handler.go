package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// ProductHandler handles catalog product HTTP requests
type ProductHandler struct {
	productService *service.ProductService
}

// NewProductHandler creates a new product handler
func NewProductHandler(productService *service.ProductService) *ProductHandler {
	return &ProductHandler{productService: productService}
}

type productRequest struct {
	SupplierID       *uuid.UUID `json:"supplier_id"`
	Name             string     `json:"name" binding:"required"`
	Code             string     `json:"code" binding:"required"`
	Unit             string     `json:"unit"`
	UnitPriceHTCents int64      `json:"unit_price_ht_cents"`
	TaxRateBp        int64      `json:"tax_rate_bp"`
	Notes            *string    `json:"notes"`
}

func (r *productRequest) toInput() *service.ProductInput {
	return &service.ProductInput{
		SupplierID:       r.SupplierID,
		Name:             r.Name,
		Code:             r.Code,
		Unit:             r.Unit,
		UnitPriceHTCents: r.UnitPriceHTCents,
		TaxRateBp:        r.TaxRateBp,
		Notes:            r.Notes,
	}
}

// Create handles creating a product
func (h *ProductHandler) Create(c *gin.Context) {
	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.CreateProduct(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Product created", product)
}

// Get handles retrieving a product
func (h *ProductHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	product, err := h.productService.GetProduct(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product retrieved", product)
}

// Update handles updating a product
func (h *ProductHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.UpdateProduct(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Product updated", product)
}

// Delete handles deleting a product
func (h *ProductHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	if err := h.productService.DeleteProduct(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List handles listing products
func (h *ProductHandler) List(c *gin.Context) {
	var supplierID *uuid.UUID
	if s := c.Query("supplier_id"); s != "" {
		if id, err := uuid.Parse(s); err == nil {
			supplierID = &id
		}
	}

	result, err := h.productService.ListProducts(c.Request.Context(), parsePagination(c), c.Query("search"), supplierID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Products retrieved", result)
}
