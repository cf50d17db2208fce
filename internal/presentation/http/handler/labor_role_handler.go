package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// LaborRoleHandler handles labor role and category HTTP requests
type LaborRoleHandler struct {
	laborRoleService *service.LaborRoleService
}

// NewLaborRoleHandler creates a new labor role handler
func NewLaborRoleHandler(laborRoleService *service.LaborRoleService) *LaborRoleHandler {
	return &LaborRoleHandler{laborRoleService: laborRoleService}
}

type laborRoleRequest struct {
	Name            string `json:"name" binding:"required"`
	HourlyRateCents int64  `json:"hourly_rate_cents"`
	IsActive        *bool  `json:"is_active"`
}

// Create handles creating a labor role
func (h *LaborRoleHandler) Create(c *gin.Context) {
	var req laborRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	role, err := h.laborRoleService.CreateLaborRole(c.Request.Context(), &service.LaborRoleInput{
		Name:            req.Name,
		HourlyRateCents: req.HourlyRateCents,
		IsActive:        req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Labor role created", role)
}

// Get handles retrieving a labor role
func (h *LaborRoleHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid labor role ID")
		return
	}

	role, err := h.laborRoleService.GetLaborRole(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Labor role retrieved", role)
}

// Update handles updating a labor role
func (h *LaborRoleHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid labor role ID")
		return
	}

	var req laborRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	role, err := h.laborRoleService.UpdateLaborRole(c.Request.Context(), id, &service.LaborRoleInput{
		Name:            req.Name,
		HourlyRateCents: req.HourlyRateCents,
		IsActive:        req.IsActive,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Labor role updated", role)
}

// List handles listing labor roles. Inactive roles are hidden unless
// include_inactive is set.
func (h *LaborRoleHandler) List(c *gin.Context) {
	includeInactive := c.Query("include_inactive") == "true"
	roles, err := h.laborRoleService.ListLaborRoles(c.Request.Context(), includeInactive)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Labor roles retrieved", roles)
}

// ListCategories handles listing estimate categories
func (h *LaborRoleHandler) ListCategories(c *gin.Context) {
	categories, err := h.laborRoleService.ListCategories(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Categories retrieved", categories)
}

// CreateCategory handles match-or-create of a category by name
func (h *LaborRoleHandler) CreateCategory(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	category, err := h.laborRoleService.GetOrCreateCategory(c.Request.Context(), req.Name)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Category resolved", category)
}
