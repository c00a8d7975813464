package main

import (
	"log"

	"github.com/tomasvik/trails-backend-go/internal/analysis"
	"github.com/tomasvik/trails-backend-go/internal/api"
	"github.com/tomasvik/trails-backend-go/internal/config"
	"github.com/tomasvik/trails-backend-go/internal/database"
	"github.com/tomasvik/trails-backend-go/internal/geocode"
	"github.com/tomasvik/trails-backend-go/internal/handler"
	"github.com/tomasvik/trails-backend-go/internal/repository"
	"github.com/tomasvik/trails-backend-go/internal/service"
)

func main() {
	cfg := config.Load()

	db, err := database.Open(database.Config{Path: cfg.DBPath})
	if err != nil {
		log.Fatal("Failed to initialize database: ", err)
	}
	defer db.Close()

	store := repository.NewSQLiteStore(db)

	var provider geocode.Provider
	if cfg.GoogleMapsAPIKey != "" {
		p, err := geocode.NewGoogleProvider(cfg.GoogleMapsAPIKey)
		if err != nil {
			log.Fatal("Failed to create geocoding provider: ", err)
		}
		provider = p
	} else {
		log.Println("GOOGLE_MAPS_API_KEY not set, running with cache-only geocoding")
	}

	geocodeCache := geocode.NewCache(store.GeocodeCache())
	geocoding := service.NewGeocodingService(geocodeCache, provider, cfg.GeocodeRadiusM, cfg.GeocodeTTL)

	analysisCfg := analysis.Config{
		StayRadiusM:      cfg.StayRadiusM,
		MinDwellS:        cfg.StayMinDwellS,
		AccuracyCeilingM: cfg.AccuracyCeilingM,
	}

	handlers := api.Handlers{
		Tracks:    handler.NewTrackHandler(service.NewTrackService(store), service.NewIngestService(store, analysisCfg, geocoding)),
		Visits:    handler.NewVisitHandler(service.NewVisitService(store)),
		Segments:  handler.NewSegmentHandler(service.NewSegmentService(store)),
		Trips:     handler.NewTripHandler(service.NewTripService(store)),
		Sync:      handler.NewSyncHandler(service.NewSyncService(store)),
		Geocoding: handler.NewGeocodingHandler(geocoding),
	}

	router := api.SetupRouter(cfg, handlers)

	log.Printf("Server starting on port %s", cfg.Port)
	if err := router.Run(cfg.Port); err != nil {
		log.Fatal("Failed to start server: ", err)
	}
}
