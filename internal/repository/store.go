// Package repository defines the storage surface of the engine and provides
// a SQLite implementation plus an in-memory one for tests.
package repository

import (
	"context"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// Store bundles the per-entity repositories behind one interface with a
// transaction boundary. WithTx runs fn against a transaction-scoped Store;
// everything persisted inside is committed or rolled back as a unit.
type Store interface {
	Samples() SampleRepository
	Visits() VisitRepository
	Segments() SegmentRepository
	Trips() TripRepository
	GeocodeCache() GeocodeCacheRepository

	WithTx(ctx context.Context, fn func(Store) error) error
}

// SampleRepository persists raw location samples.
type SampleRepository interface {
	Insert(ctx context.Context, s *models.LocationSample) error
	GetByID(ctx context.Context, userID, id string) (*models.LocationSample, error)
	GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.LocationSample, error)
	List(ctx context.Context, userID string, filter models.SampleFilter) ([]models.LocationSample, int64, error)
	AssignTrip(ctx context.Context, userID string, sampleIDs []string, tripID string) error
	SoftDelete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)
}

// VisitRepository persists place visits and their sample links.
type VisitRepository interface {
	Insert(ctx context.Context, v *models.PlaceVisit) error
	Update(ctx context.Context, v *models.PlaceVisit) error
	GetByID(ctx context.Context, userID, id string) (*models.PlaceVisit, error)
	GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.PlaceVisit, error)
	List(ctx context.Context, userID string, filter models.VisitFilter) ([]models.PlaceVisit, int64, error)
	SoftDelete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)

	LinkSamples(ctx context.Context, visitID string, sampleIDs []string) error
	GetSampleIDs(ctx context.Context, visitID string) ([]string, error)

	// FindInBox shortlists visits whose center lies inside the box; callers
	// refine by exact distance.
	FindInBox(ctx context.Context, userID string, box spatial.Box) ([]models.PlaceVisit, error)
	CountByFrequentPlace(ctx context.Context, userID, frequentPlaceID string) (int64, error)
	UpdateSignificance(ctx context.Context, userID, frequentPlaceID, significance string) error
}

// SegmentRepository persists route segments, their sample links and their
// simplified paths.
type SegmentRepository interface {
	Insert(ctx context.Context, seg *models.RouteSegment) error
	// UpdateMode overrides the classified transport mode; segments are
	// otherwise immutable after creation.
	UpdateMode(ctx context.Context, userID, id, mode string, confidence float64) error
	GetByID(ctx context.Context, userID, id string) (*models.RouteSegment, error)
	GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.RouteSegment, error)
	List(ctx context.Context, userID string, filter models.SegmentFilter) ([]models.RouteSegment, int64, error)
	SoftDelete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)

	LinkSamples(ctx context.Context, segmentID string, sampleIDs []string) error
	GetSampleIDs(ctx context.Context, segmentID string) ([]string, error)
}

// TripRepository persists trips.
type TripRepository interface {
	Insert(ctx context.Context, t *models.Trip) error
	Update(ctx context.Context, t *models.Trip) error
	GetByID(ctx context.Context, userID, id string) (*models.Trip, error)
	GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.Trip, error)
	List(ctx context.Context, userID string, filter models.TripFilter) ([]models.Trip, int64, error)
	SoftDelete(ctx context.Context, userID, id string) error
	Count(ctx context.Context, userID string) (int64, error)
}

// GeocodeCacheRepository persists reverse-geocoding cache entries.
type GeocodeCacheRepository interface {
	// Put upserts by cache key; repeated puts for the same key overwrite.
	Put(ctx context.Context, e *models.GeocodeCacheEntry) error
	// InRange returns the non-expired entries whose coordinates fall inside
	// the box, as of now (Unix seconds).
	InRange(ctx context.Context, box spatial.Box, now int64) ([]models.GeocodeCacheEntry, error)
	DeleteExpired(ctx context.Context, now int64) (int64, error)
	Clear(ctx context.Context) error
	Count(ctx context.Context) (int64, error)
}
