package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tomasvik/trails-backend-go/internal/config"
	"github.com/tomasvik/trails-backend-go/internal/handler"
	"github.com/tomasvik/trails-backend-go/internal/middleware"
)

// Handlers bundles the per-entity HTTP handlers wired into the router.
type Handlers struct {
	Tracks    *handler.TrackHandler
	Visits    *handler.VisitHandler
	Segments  *handler.SegmentHandler
	Trips     *handler.TripHandler
	Sync      *handler.SyncHandler
	Geocoding *handler.GeocodingHandler
}

// SetupRouter wires the HTTP surface: health check, CORS, request logging,
// rate limiting and the authenticated /api/v1 groups.
func SetupRouter(cfg *config.Config, h Handlers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.Logger())

	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	})

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Trails Backend API is running",
		})
	})

	api := r.Group("/api/v1")
	api.Use(middleware.RateLimit(cfg.RateLimit, cfg.RateLimitWindow))
	api.Use(middleware.Auth(cfg.JWTSecret))
	{
		tracks := api.Group("/tracks")
		{
			tracks.POST("/batch", h.Tracks.IngestBatch)
			tracks.GET("", h.Tracks.GetSamples)
			tracks.GET("/count", h.Tracks.CountSamples)
			tracks.GET("/range", h.Tracks.GetSampleRange)
			tracks.GET("/:id", h.Tracks.GetSampleByID)
			tracks.DELETE("/:id", h.Tracks.DeleteSample)
		}

		visits := api.Group("/visits")
		{
			visits.GET("", h.Visits.GetVisits)
			visits.GET("/count", h.Visits.CountVisits)
			visits.GET("/:id", h.Visits.GetVisitByID)
			visits.GET("/:id/samples", h.Visits.GetVisitSamples)
			visits.PATCH("/:id", h.Visits.UpdateVisit)
			visits.DELETE("/:id", h.Visits.DeleteVisit)
		}

		segments := api.Group("/segments")
		{
			segments.GET("", h.Segments.GetSegments)
			segments.GET("/count", h.Segments.CountSegments)
			segments.GET("/:id", h.Segments.GetSegmentByID)
			segments.GET("/:id/samples", h.Segments.GetSegmentSamples)
			segments.PUT("/:id/mode", h.Segments.SetSegmentMode)
			segments.DELETE("/:id", h.Segments.DeleteSegment)
		}

		trips := api.Group("/trips")
		{
			trips.POST("/build", h.Trips.BuildTrip)
			trips.GET("", h.Trips.GetTrips)
			trips.GET("/count", h.Trips.CountTrips)
			trips.GET("/:id", h.Trips.GetTripByID)
			trips.DELETE("/:id", h.Trips.DeleteTrip)
		}

		sync := api.Group("/sync")
		{
			sync.POST("/diff", h.Sync.Diff)
			sync.GET("/sessions/:id", h.Sync.GetSession)
			sync.POST("/sessions/:id/resolve", h.Sync.Resolve)
			sync.POST("/sessions/:id/next", h.Sync.Next)
			sync.POST("/sessions/:id/previous", h.Sync.Previous)
			sync.POST("/sessions/:id/finalize", h.Sync.Finalize)
		}

		geocode := api.Group("/geocode")
		{
			geocode.GET("", h.Geocoding.Resolve)
			geocode.GET("/cache", h.Geocoding.CacheStats)
			geocode.POST("/cache/clear-expired", h.Geocoding.ClearExpired)
			geocode.POST("/cache/clear", h.Geocoding.ClearCache)
		}
	}

	return r
}
