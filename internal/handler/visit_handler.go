package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/middleware"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// VisitHandler handles HTTP requests for place visits.
type VisitHandler struct {
	service *service.VisitService
}

// NewVisitHandler creates a new visit handler.
func NewVisitHandler(service *service.VisitService) *VisitHandler {
	return &VisitHandler{service: service}
}

// GetVisits handles GET /api/v1/visits
func (h *VisitHandler) GetVisits(c *gin.Context) {
	var filter models.VisitFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	visits, total, err := h.service.GetVisits(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.InternalError(c, "Failed to get visits")
		return
	}

	page, pageSize := normalizePagination(filter.Page, filter.PageSize)
	response.Paged(c, visits, total, page, pageSize)
}

// GetVisitByID handles GET /api/v1/visits/:id
func (h *VisitHandler) GetVisitByID(c *gin.Context) {
	visit, err := h.service.GetVisitByID(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Visit not found")
			return
		}
		response.InternalError(c, "Failed to get visit")
		return
	}

	response.Success(c, visit)
}

// GetVisitSamples handles GET /api/v1/visits/:id/samples
func (h *VisitHandler) GetVisitSamples(c *gin.Context) {
	ids, err := h.service.GetVisitSampleIDs(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Visit not found")
			return
		}
		response.InternalError(c, "Failed to get visit samples")
		return
	}

	response.Success(c, gin.H{"sampleIds": ids})
}

// UpdateVisit handles PATCH /api/v1/visits/:id
func (h *VisitHandler) UpdateVisit(c *gin.Context) {
	var update service.VisitUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.BadRequest(c, "Invalid update payload")
		return
	}

	visit, err := h.service.UpdateVisit(c.Request.Context(), middleware.UserID(c), c.Param("id"), update)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Visit not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, visit)
}

// DeleteVisit handles DELETE /api/v1/visits/:id
func (h *VisitHandler) DeleteVisit(c *gin.Context) {
	err := h.service.DeleteVisit(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Visit not found")
			return
		}
		response.InternalError(c, "Failed to delete visit")
		return
	}

	response.Success(c, nil)
}

// CountVisits handles GET /api/v1/visits/count
func (h *VisitHandler) CountVisits(c *gin.Context) {
	count, err := h.service.CountVisits(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, "Failed to count visits")
		return
	}

	response.Success(c, gin.H{"count": count})
}
