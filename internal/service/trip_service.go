package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

// TripService groups the visits and segments of one journey day into trips.
type TripService struct {
	store repository.Store
}

// NewTripService creates a new trip service.
func NewTripService(store repository.Store) *TripService {
	return &TripService{store: store}
}

// BuildForDay constructs the trip of one calendar day (UTC): origin and
// destination visits, total distance, dominant transport mode, and the trip
// assignment on every sample of the day. Everything commits in one
// transaction.
func (s *TripService) BuildForDay(ctx context.Context, userID, date string) (*models.Trip, error) {
	day, err := time.Parse("2006-01-02", date)
	if err != nil {
		return nil, fmt.Errorf("invalid date %q: %w", date, err)
	}
	dayStart := day.Unix()
	dayEnd := dayStart + 86400 - 1
	now := time.Now().Unix()

	var trip *models.Trip
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		samples, err := tx.Samples().GetByTimeRange(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to load day samples: %w", err)
		}
		if len(samples) == 0 {
			return fmt.Errorf("%w: no samples on %s", models.ErrInsufficientData, date)
		}

		visits, err := tx.Visits().GetByTimeRange(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to load day visits: %w", err)
		}
		segments, err := tx.Segments().GetByTimeRange(ctx, userID, dayStart, dayEnd)
		if err != nil {
			return fmt.Errorf("failed to load day segments: %w", err)
		}

		trip = &models.Trip{
			ID:           uuid.NewString(),
			UserID:       userID,
			Date:         date,
			StartTime:    samples[0].Timestamp,
			EndTime:      samples[len(samples)-1].Timestamp,
			PrimaryMode:  dominantMode(segments),
			LocalVersion: 1,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if len(visits) > 0 {
			trip.OriginVisitID = &visits[0].ID
			trip.DestVisitID = &visits[len(visits)-1].ID
		}
		for i := range segments {
			trip.DistanceMeters += segments[i].DistanceMeters
		}

		ids := make([]string, 0, len(samples))
		for i := range samples {
			ids = append(ids, samples[i].ID)
		}
		if err := tx.Samples().AssignTrip(ctx, userID, ids, trip.ID); err != nil {
			return fmt.Errorf("failed to assign trip samples: %w", err)
		}
		if err := tx.Trips().Insert(ctx, trip); err != nil {
			return fmt.Errorf("failed to insert trip: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// dominantMode picks the transport mode covering the most distance.
func dominantMode(segments []models.RouteSegment) string {
	distByMode := make(map[string]float64)
	for i := range segments {
		distByMode[segments[i].Mode] += segments[i].DistanceMeters
	}

	mode := models.ModeUnknown
	best := 0.0
	for m, d := range distByMode {
		if d > best {
			mode = m
			best = d
		}
	}
	return mode
}

// GetTrips retrieves trips with filtering and pagination.
func (s *TripService) GetTrips(ctx context.Context, userID string, filter models.TripFilter) ([]models.Trip, int64, error) {
	trips, total, err := s.store.Trips().List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get trips: %w", err)
	}
	return trips, total, nil
}

// GetTripByID retrieves a single trip.
func (s *TripService) GetTripByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	return s.store.Trips().GetByID(ctx, userID, id)
}

// DeleteTrip soft-deletes a trip.
func (s *TripService) DeleteTrip(ctx context.Context, userID, id string) error {
	return s.store.Trips().SoftDelete(ctx, userID, id)
}

// CountTrips reports the user's live trip count.
func (s *TripService) CountTrips(ctx context.Context, userID string) (int64, error) {
	return s.store.Trips().Count(ctx, userID)
}
