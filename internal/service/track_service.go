package service

import (
	"context"
	"fmt"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

// TrackService handles queries over raw location samples.
type TrackService struct {
	store repository.Store
}

// NewTrackService creates a new track service.
func NewTrackService(store repository.Store) *TrackService {
	return &TrackService{store: store}
}

// GetSamples retrieves location samples with filtering and pagination.
func (s *TrackService) GetSamples(ctx context.Context, userID string, filter models.SampleFilter) ([]models.LocationSample, int64, error) {
	samples, total, err := s.store.Samples().List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get samples: %w", err)
	}
	return samples, total, nil
}

// GetSampleByID retrieves a single location sample.
func (s *TrackService) GetSampleByID(ctx context.Context, userID, id string) (*models.LocationSample, error) {
	return s.store.Samples().GetByID(ctx, userID, id)
}

// GetSamplesByTimeRange retrieves the samples of a time window in
// chronological order.
func (s *TrackService) GetSamplesByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.LocationSample, error) {
	if end < start {
		return nil, fmt.Errorf("end time %d before start time %d", end, start)
	}
	return s.store.Samples().GetByTimeRange(ctx, userID, start, end)
}

// DeleteSample soft-deletes a sample so sync history stays replayable.
func (s *TrackService) DeleteSample(ctx context.Context, userID, id string) error {
	return s.store.Samples().SoftDelete(ctx, userID, id)
}

// CountSamples reports the user's live sample count.
func (s *TrackService) CountSamples(ctx context.Context, userID string) (int64, error) {
	return s.store.Samples().Count(ctx, userID)
}
