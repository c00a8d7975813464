package service

import (
	"context"
	"fmt"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

// SegmentService handles business logic for route segments.
type SegmentService struct {
	store repository.Store
}

// NewSegmentService creates a new segment service.
func NewSegmentService(store repository.Store) *SegmentService {
	return &SegmentService{store: store}
}

// GetSegments retrieves route segments with filtering and pagination.
func (s *SegmentService) GetSegments(ctx context.Context, userID string, filter models.SegmentFilter) ([]models.RouteSegment, int64, error) {
	segments, total, err := s.store.Segments().List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get segments: %w", err)
	}
	return segments, total, nil
}

// GetSegmentByID retrieves a single segment with its simplified path.
func (s *SegmentService) GetSegmentByID(ctx context.Context, userID, id string) (*models.RouteSegment, error) {
	return s.store.Segments().GetByID(ctx, userID, id)
}

// GetSegmentSampleIDs returns the ids of the full sample track behind the
// stored lossy path.
func (s *SegmentService) GetSegmentSampleIDs(ctx context.Context, userID, id string) ([]string, error) {
	if _, err := s.store.Segments().GetByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.Segments().GetSampleIDs(ctx, id)
}

// SetMode overrides the classified transport mode. This is the only path
// that can assign BOAT; the override is recorded with full confidence.
func (s *SegmentService) SetMode(ctx context.Context, userID, id, mode string) (*models.RouteSegment, error) {
	if !validMode(mode) {
		return nil, fmt.Errorf("invalid transport mode: %s", mode)
	}

	if err := s.store.Segments().UpdateMode(ctx, userID, id, mode, 1.0); err != nil {
		return nil, fmt.Errorf("failed to update segment mode: %w", err)
	}
	return s.store.Segments().GetByID(ctx, userID, id)
}

// DeleteSegment soft-deletes a segment.
func (s *SegmentService) DeleteSegment(ctx context.Context, userID, id string) error {
	return s.store.Segments().SoftDelete(ctx, userID, id)
}

// CountSegments reports the user's live segment count.
func (s *SegmentService) CountSegments(ctx context.Context, userID string) (int64, error) {
	return s.store.Segments().Count(ctx, userID)
}

func validMode(m string) bool {
	switch m {
	case models.ModeWalk, models.ModeBike, models.ModeCar,
		models.ModeTrain, models.ModePlane, models.ModeBoat, models.ModeUnknown:
		return true
	}
	return false
}
