package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/middleware"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// TripHandler handles HTTP requests for trips.
type TripHandler struct {
	service *service.TripService
}

// NewTripHandler creates a new trip handler.
func NewTripHandler(service *service.TripService) *TripHandler {
	return &TripHandler{service: service}
}

// BuildTripRequest is the payload of a trip construction request.
type BuildTripRequest struct {
	Date string `json:"date" binding:"required"` // YYYY-MM-DD
}

// BuildTrip handles POST /api/v1/trips/build
func (h *TripHandler) BuildTrip(c *gin.Context) {
	var req BuildTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid trip payload")
		return
	}

	trip, err := h.service.BuildForDay(c.Request.Context(), middleware.UserID(c), req.Date)
	if err != nil {
		if errors.Is(err, models.ErrInsufficientData) {
			response.BadRequest(c, err.Error())
			return
		}
		response.InternalError(c, "Failed to build trip")
		return
	}

	response.Success(c, trip)
}

// GetTrips handles GET /api/v1/trips
func (h *TripHandler) GetTrips(c *gin.Context) {
	var filter models.TripFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	trips, total, err := h.service.GetTrips(c.Request.Context(), middleware.UserID(c), filter)
	if err != nil {
		response.InternalError(c, "Failed to get trips")
		return
	}

	page, pageSize := normalizePagination(filter.Page, filter.PageSize)
	response.Paged(c, trips, total, page, pageSize)
}

// GetTripByID handles GET /api/v1/trips/:id
func (h *TripHandler) GetTripByID(c *gin.Context) {
	trip, err := h.service.GetTripByID(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Trip not found")
			return
		}
		response.InternalError(c, "Failed to get trip")
		return
	}

	response.Success(c, trip)
}

// DeleteTrip handles DELETE /api/v1/trips/:id
func (h *TripHandler) DeleteTrip(c *gin.Context) {
	err := h.service.DeleteTrip(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			response.NotFound(c, "Trip not found")
			return
		}
		response.InternalError(c, "Failed to delete trip")
		return
	}

	response.Success(c, nil)
}

// CountTrips handles GET /api/v1/trips/count
func (h *TripHandler) CountTrips(c *gin.Context) {
	count, err := h.service.CountTrips(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		response.InternalError(c, "Failed to count trips")
		return
	}

	response.Success(c, gin.H{"count": count})
}
