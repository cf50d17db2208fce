package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// SiteHandler handles delivery site HTTP requests
type SiteHandler struct {
	siteService *service.SiteService
}

// NewSiteHandler creates a new site handler
func NewSiteHandler(siteService *service.SiteService) *SiteHandler {
	return &SiteHandler{siteService: siteService}
}

type siteRequest struct {
	Name        string  `json:"name" binding:"required"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	PostalCode  *string `json:"postal_code"`
	ContactName *string `json:"contact_name"`
	Phone       *string `json:"phone"`
	Notes       *string `json:"notes"`
}

func (r *siteRequest) toInput() *service.SiteInput {
	return &service.SiteInput{
		Name:        r.Name,
		Address:     r.Address,
		City:        r.City,
		PostalCode:  r.PostalCode,
		ContactName: r.ContactName,
		Phone:       r.Phone,
		Notes:       r.Notes,
	}
}

// Create handles creating a site
func (h *SiteHandler) Create(c *gin.Context) {
	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	site, err := h.siteService.CreateSite(c.Request.Context(), req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Site created", site)
}

// Get handles retrieving a site
func (h *SiteHandler) Get(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid site ID")
		return
	}

	site, err := h.siteService.GetSite(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Site retrieved", site)
}

// Update handles updating a site
func (h *SiteHandler) Update(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid site ID")
		return
	}

	var req siteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	site, err := h.siteService.UpdateSite(c.Request.Context(), id, req.toInput())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Site updated", site)
}

// Delete handles deleting a site
func (h *SiteHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid site ID")
		return
	}

	if err := h.siteService.DeleteSite(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// List handles listing sites
func (h *SiteHandler) List(c *gin.Context) {
	result, err := h.siteService.ListSites(c.Request.Context(), parsePagination(c), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithPagination(c, 200, "Sites retrieved", result)
}
