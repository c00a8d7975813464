package service

import (
	"context"
	"fmt"
	"time"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

// VisitService handles business logic for place visits.
type VisitService struct {
	store repository.Store
}

// NewVisitService creates a new visit service.
func NewVisitService(store repository.Store) *VisitService {
	return &VisitService{store: store}
}

// VisitUpdate carries the user-editable fields of a visit. Nil fields are
// left untouched.
type VisitUpdate struct {
	Category *string `json:"category"`
	Label    *string `json:"label"`
	Notes    *string `json:"notes"`
	Favorite *bool   `json:"favorite"`
}

// GetVisits retrieves place visits with filtering and pagination.
func (s *VisitService) GetVisits(ctx context.Context, userID string, filter models.VisitFilter) ([]models.PlaceVisit, int64, error) {
	visits, total, err := s.store.Visits().List(ctx, userID, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to get visits: %w", err)
	}
	return visits, total, nil
}

// GetVisitByID retrieves a single visit.
func (s *VisitService) GetVisitByID(ctx context.Context, userID, id string) (*models.PlaceVisit, error) {
	return s.store.Visits().GetByID(ctx, userID, id)
}

// GetVisitSampleIDs returns the ids of the samples that formed the visit.
func (s *VisitService) GetVisitSampleIDs(ctx context.Context, userID, id string) ([]string, error) {
	if _, err := s.store.Visits().GetByID(ctx, userID, id); err != nil {
		return nil, err
	}
	return s.store.Visits().GetSampleIDs(ctx, id)
}

// UpdateVisit applies a user edit. A user-set category overrides the
// classifier and pins the confidence to USER_SET.
func (s *VisitService) UpdateVisit(ctx context.Context, userID, id string, update VisitUpdate) (*models.PlaceVisit, error) {
	visit, err := s.store.Visits().GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if update.Category != nil {
		if !validCategory(*update.Category) {
			return nil, fmt.Errorf("invalid category: %s", *update.Category)
		}
		visit.Category = *update.Category
		visit.CategoryConfidence = models.ConfidenceUserSet
	}
	if update.Label != nil {
		visit.Label = *update.Label
	}
	if update.Notes != nil {
		visit.Notes = *update.Notes
	}
	if update.Favorite != nil {
		visit.Favorite = *update.Favorite
	}
	visit.UpdatedAt = time.Now().Unix()

	if err := s.store.Visits().Update(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to update visit: %w", err)
	}
	return visit, nil
}

// DeleteVisit soft-deletes a visit.
func (s *VisitService) DeleteVisit(ctx context.Context, userID, id string) error {
	return s.store.Visits().SoftDelete(ctx, userID, id)
}

// CountVisits reports the user's live visit count.
func (s *VisitService) CountVisits(ctx context.Context, userID string) (int64, error) {
	return s.store.Visits().Count(ctx, userID)
}

func validCategory(c string) bool {
	switch c {
	case models.CategoryHome, models.CategoryWork, models.CategoryFood,
		models.CategoryShopping, models.CategoryFitness, models.CategoryEntertainment,
		models.CategoryTravel, models.CategoryHealthcare, models.CategoryEducation,
		models.CategoryReligious, models.CategorySocial, models.CategoryOutdoor,
		models.CategoryService, models.CategoryOther:
		return true
	}
	return false
}
