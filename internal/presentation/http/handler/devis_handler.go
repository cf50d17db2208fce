package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tleroux/chiffrage-api/internal/application/service"
	"github.com/tleroux/chiffrage-api/internal/presentation/http/dto/response"
)

// DevisHandler handles supplier quote attachment HTTP requests
type DevisHandler struct {
	devisService *service.DevisService
}

// NewDevisHandler creates a new devis handler
func NewDevisHandler(devisService *service.DevisService) *DevisHandler {
	return &DevisHandler{devisService: devisService}
}

// Upload handles a multipart devis upload onto a draft order
func (h *DevisHandler) Upload(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.BadRequest(c, "A file is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, err)
		return
	}
	defer file.Close()

	devis, err := h.devisService.UploadDevis(c.Request.Context(), &service.UploadDevisInput{
		OrderID:     orderID,
		FileName:    fileHeader.Filename,
		ContentType: fileHeader.Header.Get("Content-Type"),
		Size:        fileHeader.Size,
		Content:     file,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, "Devis uploaded", devis)
}

// List handles listing an order's devis files in position order
func (h *DevisHandler) List(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	files, err := h.devisService.ListDevis(c.Request.Context(), orderID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Devis files retrieved", files)
}

// Download streams a stored devis file with its original name
func (h *DevisHandler) Download(c *gin.Context) {
	id, ok := parseUUIDParam(c, "devisId")
	if !ok {
		response.BadRequest(c, "Invalid devis ID")
		return
	}

	devis, err := h.devisService.GetDevis(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", devis.FileName))
	if devis.ContentType != "" {
		c.Header("Content-Type", devis.ContentType)
	}
	c.File(devis.StoredPath)
}

// Rename handles renaming a devis display name
func (h *DevisHandler) Rename(c *gin.Context) {
	id, ok := parseUUIDParam(c, "devisId")
	if !ok {
		response.BadRequest(c, "Invalid devis ID")
		return
	}

	var req struct {
		FileName string `json:"file_name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	devis, err := h.devisService.RenameDevis(c.Request.Context(), id, req.FileName)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Devis renamed", devis)
}

// Delete handles removing a devis file and resequencing the rest
func (h *DevisHandler) Delete(c *gin.Context) {
	id, ok := parseUUIDParam(c, "devisId")
	if !ok {
		response.BadRequest(c, "Invalid devis ID")
		return
	}

	if err := h.devisService.DeleteDevis(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Reorder handles rewriting the position of every devis on an order
func (h *DevisHandler) Reorder(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	var req struct {
		OrderedIDs []uuid.UUID `json:"ordered_ids" binding:"required,min=1"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	files, err := h.devisService.ReorderDevis(c.Request.Context(), orderID, req.OrderedIDs)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Devis files reordered", files)
}

// Archive streams all of the order's devis files as one zip
func (h *DevisHandler) Archive(c *gin.Context) {
	orderID, ok := parseUUIDParam(c, "id")
	if !ok {
		response.BadRequest(c, "Invalid order ID")
		return
	}

	fileName := fmt.Sprintf("devis-%s.zip", orderID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Header("Content-Type", "application/zip")

	if err := h.devisService.WriteArchive(c.Request.Context(), orderID, c.Writer); err != nil {
		// The archive is checked before any byte is streamed, so an
		// error here can still produce a clean JSON response.
		if !c.Writer.Written() {
			c.Writer.Header().Del("Content-Disposition")
			c.Writer.Header().Del("Content-Type")
			response.Error(c, err)
		}
		return
	}
}
