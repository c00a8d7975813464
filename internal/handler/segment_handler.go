package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/middleware"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// SegmentHandler handles HTTP requests for route segments.
type SegmentHandler struct {
	service *service.SegmentService
}

// NewSegmentHandler creates a new segment handler.
func NewSegmentHandler(service *service.SegmentService) *SegmentHandler {
	return &SegmentHandler{service: service}
}

// GetSegments handles GET /api/v1/segments
func (h *SegmentHandler) GetSegments(c *gin.Context) {
	var filter models.SegmentFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	segments, total, err := h.service.GetSegments(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.InternalError(c, "Failed to get segments")
		return
	}

	page, pageSize := normalizePagination(filter.Page, filter.PageSize)
	response.Paged(c, segments, total, page, pageSize)
}

// GetSegmentByID handles GET /api/v1/segments/:id
func (h *SegmentHandler) GetSegmentByID(c *gin.Context) {
	seg, err := h.service.GetSegmentByID(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Segment not found")
			return
		}
		response.InternalError(c, "Failed to get segment")
		return
	}

	response.Success(c, seg)
}

// GetSegmentSamples handles GET /api/v1/segments/:id/samples
func (h *SegmentHandler) GetSegmentSamples(c *gin.Context) {
	ids, err := h.service.GetSegmentSampleIDs(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Segment not found")
			return
		}
		response.InternalError(c, "Failed to get segment samples")
		return
	}

	response.Success(c, gin.H{"sampleIds": ids})
}

// SetModeRequest is the payload of a transport-mode override.
type SetModeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// SetSegmentMode handles PUT /api/v1/segments/:id/mode
func (h *SegmentHandler) SetSegmentMode(c *gin.Context) {
	var req SetModeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid mode payload")
		return
	}

	seg, err := h.service.SetMode(c.Request.Context(), middleware.UserID(c), c.Param("id"), req.Mode)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Segment not found")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}

	response.Success(c, seg)
}

// DeleteSegment handles DELETE /api/v1/segments/:id
func (h *SegmentHandler) DeleteSegment(c *gin.Context) {
	err := h.service.DeleteSegment(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Segment not found")
			return
		}
		response.InternalError(c, "Failed to delete segment")
		return
	}

	response.Success(c, nil)
}

// CountSegments handles GET /api/v1/segments/count
func (h *SegmentHandler) CountSegments(c *gin.Context) {
	count, err := h.service.CountSegments(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, "Failed to count segments")
		return
	}

	response.Success(c, gin.H{"count": count})
}
