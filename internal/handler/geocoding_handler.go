package handler

import (
	"errors"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/service"
	"github.com/tomasvik/trails-backend-go/pkg/response"
)

// GeocodingHandler handles HTTP requests for reverse geocoding and geocode
// cache maintenance.
type GeocodingHandler struct {
	service *service.GeocodingService
}

// NewGeocodingHandler creates a new geocoding handler.
func NewGeocodingHandler(service *service.GeocodingService) *GeocodingHandler {
	return &GeocodingHandler{service: service}
}

// Resolve handles GET /api/v1/geocode
func (h *GeocodingHandler) Resolve(c *gin.Context) {
	lat, err1 := strconv.ParseFloat(c.Query("lat"), 64)
	lon, err2 := strconv.ParseFloat(c.Query("lon"), 64)
	if err1 != nil || err2 != nil {
		response.BadRequest(c, "lat and lon are required")
		return
	}

	loc, err := h.service.Resolve(c.Request.Context(), lat, lon)
	if err != nil {
		if errors.Is(err, models.ErrInvalidCoordinate) {
			response.BadRequest(c, err.Error())
			return
		}
		if errors.Is(err, models.ErrGeocodingProvider) {
			response.Error(c, 502, "Geocoding provider unavailable")
			return
		}
		response.InternalError(c, "Failed to resolve location")
		return
	}
	if loc == nil {
		response.NotFound(c, "No address for this location")
		return
	}

	response.Success(c, loc)
}

// CacheStats handles GET /api/v1/geocode/cache
func (h *GeocodingHandler) CacheStats(c *gin.Context) {
	count, err := h.service.CacheSize(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to read geocode cache")
		return
	}

	response.Success(c, gin.H{"entries": count})
}

// ClearExpired handles POST /api/v1/geocode/cache/clear-expired
func (h *GeocodingHandler) ClearExpired(c *gin.Context) {
	removed, err := h.service.ClearExpired(c.Request.Context())
	if err != nil {
		response.InternalError(c, "Failed to clear expired entries")
		return
	}

	response.Success(c, gin.H{"removed": removed})
}

// ClearCache handles POST /api/v1/geocode/cache/clear
func (h *GeocodingHandler) ClearCache(c *gin.Context) {
	if err := h.service.ClearCache(c.Request.Context()); err != nil {
		response.InternalError(c, "Failed to clear geocode cache")
		return
	}

	response.Success(c, nil)
}
