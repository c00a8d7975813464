package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/tomasvik/trails-backend-go/internal/geocode"
	"github.com/tomasvik/trails-backend-go/internal/models"
)

// GeocodingService resolves visit coordinates into addresses, cache first.
// The provider is optional: without one the service runs cache-only and
// misses stay unresolved.
type GeocodingService struct {
	cache    *geocode.Cache
	provider geocode.Provider

	lookupRadiusM float64
	ttl           time.Duration
}

// NewGeocodingService creates a geocoding service. provider may be nil.
func NewGeocodingService(cache *geocode.Cache, provider geocode.Provider, lookupRadiusM float64, ttl time.Duration) *GeocodingService {
	return &GeocodingService{
		cache:         cache,
		provider:      provider,
		lookupRadiusM: lookupRadiusM,
		ttl:           ttl,
	}
}

// Resolve returns the address of a coordinate pair, consulting the cache
// before the remote provider. A nil result with nil error means the point
// could not be resolved.
func (s *GeocodingService) Resolve(ctx context.Context, lat, lon float64) (*models.GeocodedLocation, error) {
	loc, err := s.cache.Get(ctx, lat, lon, s.lookupRadiusM)
	if err != nil {
		return nil, err
	}
	if loc != nil {
		return loc, nil
	}

	if s.provider == nil {
		return nil, nil
	}

	loc, err = s.provider.ReverseGeocode(ctx, lat, lon)
	if err != nil {
		return nil, err
	}

	if putErr := s.cache.Put(ctx, loc, s.ttl); putErr != nil {
		// A cache write failure costs a future provider call, nothing more.
		log.Printf("[Geocoding] Failed to cache result for %.6f,%.6f: %v", lat, lon, putErr)
	}
	return loc, nil
}

// EnrichVisit fills the visit's address fields in place. Provider failures
// are logged and leave the fields empty; enrichment never blocks visit
// creation. Returns whether the visit was enriched.
func (s *GeocodingService) EnrichVisit(ctx context.Context, v *models.PlaceVisit) bool {
	loc, err := s.Resolve(ctx, v.CenterLat, v.CenterLon)
	if err != nil {
		if errors.Is(err, models.ErrGeocodingProvider) {
			log.Printf("[Geocoding] Provider failed for visit %s: %v", v.ID, err)
		} else {
			log.Printf("[Geocoding] Lookup failed for visit %s: %v", v.ID, err)
		}
		return false
	}
	if loc == nil {
		return false
	}

	v.Address = loc.FormattedAddress
	v.POIName = loc.POIName
	v.City = loc.City
	v.CountryCode = loc.CountryCode
	return true
}

// ClearExpired evicts expired cache entries and reports how many were removed.
func (s *GeocodingService) ClearExpired(ctx context.Context) (int64, error) {
	return s.cache.ClearExpired(ctx)
}

// ClearCache drops the entire geocode cache.
func (s *GeocodingService) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// CacheSize reports the number of persisted cache entries.
func (s *GeocodingService) CacheSize(ctx context.Context) (int64, error) {
	return s.cache.Count(ctx)
}
