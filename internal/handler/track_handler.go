package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/middleware"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// TrackHandler handles HTTP requests for raw location samples.
type TrackHandler struct {
	tracks *service.TrackService
	ingest *service.IngestService
}

// NewTrackHandler creates a new track handler.
func NewTrackHandler(tracks *service.TrackService, ingest *service.IngestService) *TrackHandler {
	return &TrackHandler{tracks: tracks, ingest: ingest}
}

// BatchRequest is the payload of one ingestion batch.
type BatchRequest struct {
	Samples []models.LocationSample `json:"samples" binding:"required"`
}

// IngestBatch handles POST /api/v1/tracks/batch
func (h *TrackHandler) IngestBatch(c *gin.Context) {
	var req BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid batch payload")
		return
	}

	result, err := h.ingest.IngestBatch(c.Request.Context(), middleware.UserID(c), req.Samples)
	if err != nil {
		response.InternalError(c, "Failed to ingest batch")
		return
	}

	response.Success(c, result)
}

// GetSamples handles GET /api/v1/tracks
func (h *TrackHandler) GetSamples(c *gin.Context) {
	var filter models.SampleFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	samples, total, err := h.tracks.GetSamples(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.InternalError(c, "Failed to get samples")
		return
	}

	page, pageSize := normalizePagination(filter.Page, filter.PageSize)
	response.Paged(c, samples, total, page, pageSize)
}

// GetSampleByID handles GET /api/v1/tracks/:id
func (h *TrackHandler) GetSampleByID(c *gin.Context) {
	sample, err := h.tracks.GetSampleByID(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Sample not found")
			return
		}
		response.InternalError(c, "Failed to get sample")
		return
	}

	response.Success(c, sample)
}

// GetSampleRange handles GET /api/v1/tracks/range
func (h *TrackHandler) GetSampleRange(c *gin.Context) {
	start, err1 := strconv.ParseInt(c.Query("start"), 10, 64)
	end, err2 := strconv.ParseInt(c.Query("end"), 10, 64)
	if err1 != nil || err2 != nil {
		response.BadRequest(c, "start and end must be Unix timestamps")
		return
	}

	samples, err := h.tracks.GetSamplesByTimeRange(c.Request.Context(), middleware.UserID(c), start, end)
	if err != nil {
		response.Error(c, http.StatusBadRequest, err.Error())
		return
	}

	response.Success(c, samples)
}

// DeleteSample handles DELETE /api/v1/tracks/:id
func (h *TrackHandler) DeleteSample(c *gin.Context) {
	err := h.tracks.DeleteSample(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Sample not found")
			return
		}
		response.InternalError(c, "Failed to delete sample")
		return
	}

	response.Success(c, nil)
}

// CountSamples handles GET /api/v1/tracks/count
func (h *TrackHandler) CountSamples(c *gin.Context) {
	count, err := h.tracks.CountSamples(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, "Failed to count samples")
		return
	}

	response.Success(c, gin.H{"count": count})
}

// normalizePagination mirrors the repository's page clamping so the paged
// envelope reports the values actually used.
func normalizePagination(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 100
	}
	if pageSize > 1000 {
		pageSize = 1000
	}
	return page, pageSize
}
