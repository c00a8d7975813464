package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/tomasvik/trails-backend-go/internal/analysis"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// IngestService runs the single-pass analysis over incoming sample batches
// and persists the outcome atomically.
type IngestService struct {
	store     repository.Store
	pipeline  *analysis.Pipeline
	geocoding *GeocodingService
	cfg       analysis.Config
}

// IngestResult summarizes one processed batch.
type IngestResult struct {
	SamplesStored   int `json:"samplesStored"`
	SamplesSkipped  int `json:"samplesSkipped"`
	VisitsCreated   int `json:"visitsCreated"`
	SegmentsCreated int `json:"segmentsCreated"`

	VisitIDs   []string `json:"visitIds,omitempty"`
	SegmentIDs []string `json:"segmentIds,omitempty"`
}

// NewIngestService creates an ingest service. geocoding may be nil, in which
// case visits are stored without address enrichment.
func NewIngestService(store repository.Store, cfg analysis.Config, geocoding *GeocodingService) *IngestService {
	if cfg.StayRadiusM <= 0 {
		cfg.StayRadiusM = analysis.DefaultConfig.StayRadiusM
	}
	return &IngestService{
		store:     store,
		pipeline:  analysis.NewPipeline(cfg),
		geocoding: geocoding,
		cfg:       cfg,
	}
}

// IngestBatch validates, analyzes and persists one batch of samples. The
// samples, visits, segments and their links are written in one transaction:
// a failed batch leaves no partial state behind. Address enrichment happens
// after commit and never fails the batch.
func (s *IngestService) IngestBatch(ctx context.Context, userID string, samples []models.LocationSample) (*IngestResult, error) {
	now := time.Now().Unix()
	result := &IngestResult{}

	valid := make([]models.LocationSample, 0, len(samples))
	for _, sample := range samples {
		pt := spatial.Point{Lat: sample.Latitude, Lon: sample.Longitude}
		if err := pt.Validate(); err != nil {
			log.Printf("[Ingest] Skipping sample at index %d: %v", result.SamplesSkipped+len(valid), err)
			result.SamplesSkipped++
			continue
		}
		if sample.ID == "" {
			sample.ID = uuid.NewString()
		}
		if sample.Source == "" {
			sample.Source = models.SourceGPS
		}
		sample.UserID = userID
		sample.LocalVersion = 1
		sample.CreatedAt = now
		sample.UpdatedAt = now
		valid = append(valid, sample)
	}
	if len(valid) == 0 {
		return result, nil
	}

	outcome := s.pipeline.Process(valid)

	visits := make([]*models.PlaceVisit, len(outcome.Visits))

	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		for i := range valid {
			if err := tx.Samples().Insert(ctx, &valid[i]); err != nil {
				return fmt.Errorf("failed to insert sample %s: %w", valid[i].ID, err)
			}
		}

		for i, cand := range outcome.Visits {
			visit, err := s.persistVisit(ctx, tx, userID, cand, now)
			if err != nil {
				return err
			}
			visits[i] = visit
			result.VisitIDs = append(result.VisitIDs, visit.ID)
		}

		for _, cand := range outcome.Segments {
			seg, err := s.persistSegment(ctx, tx, userID, cand, visits, now)
			if err != nil {
				return err
			}
			result.SegmentIDs = append(result.SegmentIDs, seg.ID)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	result.SamplesStored = len(valid)
	result.VisitsCreated = len(visits)
	result.SegmentsCreated = len(result.SegmentIDs)

	if s.geocoding != nil {
		s.enrichVisits(ctx, visits)
	}
	return result, nil
}

// persistVisit stores one detected visit, attaches it to its frequent place
// and re-ranks the place's significance from the new visit count.
func (s *IngestService) persistVisit(ctx context.Context, tx repository.Store, userID string, cand analysis.VisitCandidate, now int64) (*models.PlaceVisit, error) {
	center := spatial.Point{Lat: cand.CenterLat, Lon: cand.CenterLon}
	placeID, err := s.frequentPlaceFor(ctx, tx, userID, center)
	if err != nil {
		return nil, err
	}

	count, err := tx.Visits().CountByFrequentPlace(ctx, userID, placeID)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits at place %s: %w", placeID, err)
	}
	significance := analysis.SignificanceForCount(count + 1)

	visit := &models.PlaceVisit{
		ID:                 uuid.NewString(),
		UserID:             userID,
		StartTime:          cand.StartTime,
		EndTime:            cand.EndTime,
		CenterLat:          cand.CenterLat,
		CenterLon:          cand.CenterLon,
		RadiusM:            cand.RadiusM,
		Category:           models.CategoryOther,
		CategoryConfidence: models.ConfidenceLow,
		Significance:       significance,
		FrequentPlaceID:    &placeID,
		LocalVersion:       1,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := tx.Visits().Insert(ctx, visit); err != nil {
		return nil, fmt.Errorf("failed to insert visit: %w", err)
	}
	if err := tx.Visits().LinkSamples(ctx, visit.ID, cand.SampleIDs); err != nil {
		return nil, fmt.Errorf("failed to link visit samples: %w", err)
	}
	// Earlier visits at the same place move up with the new count.
	if err := tx.Visits().UpdateSignificance(ctx, userID, placeID, significance); err != nil {
		return nil, fmt.Errorf("failed to re-rank place %s: %w", placeID, err)
	}
	return visit, nil
}

// frequentPlaceFor finds the frequent-place id of the nearest prior visit
// within the stay radius, or mints a new one.
func (s *IngestService) frequentPlaceFor(ctx context.Context, tx repository.Store, userID string, center spatial.Point) (string, error) {
	box, err := spatial.BoundingBox(center, s.cfg.StayRadiusM)
	if err != nil {
		return "", err
	}
	prior, err := tx.Visits().FindInBox(ctx, userID, box)
	if err != nil {
		return "", fmt.Errorf("failed to shortlist prior visits: %w", err)
	}

	var bestID string
	bestDist := s.cfg.StayRadiusM
	for i := range prior {
		if prior[i].FrequentPlaceID == nil {
			continue
		}
		d, err := spatial.Distance(center, spatial.Point{Lat: prior[i].CenterLat, Lon: prior[i].CenterLon})
		if err != nil || d > s.cfg.StayRadiusM {
			continue
		}
		if bestID == "" || d < bestDist {
			bestID = *prior[i].FrequentPlaceID
			bestDist = d
		}
	}
	if bestID != "" {
		return bestID, nil
	}
	return uuid.NewString(), nil
}

func (s *IngestService) persistSegment(ctx context.Context, tx repository.Store, userID string, cand analysis.SegmentCandidate, visits []*models.PlaceVisit, now int64) (*models.RouteSegment, error) {
	path := make([]models.PathPoint, 0, len(cand.Path))
	for _, p := range cand.Path {
		path = append(path, models.PathPoint{Latitude: p.Lat, Longitude: p.Lon})
	}

	seg := &models.RouteSegment{
		ID:             uuid.NewString(),
		UserID:         userID,
		StartTime:      cand.StartTime,
		EndTime:        cand.EndTime,
		FromVisitID:    visitIDAt(visits, cand.FromVisitIdx),
		ToVisitID:      visitIDAt(visits, cand.ToVisitIdx),
		Path:           path,
		Mode:           cand.Mode,
		DistanceMeters: cand.DistanceMeters,
		AvgSpeedMPS:    cand.AvgSpeedMPS,
		Confidence:     cand.Confidence,
		LocalVersion:   1,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := tx.Segments().Insert(ctx, seg); err != nil {
		return nil, fmt.Errorf("failed to insert segment: %w", err)
	}
	if err := tx.Segments().LinkSamples(ctx, seg.ID, cand.SampleIDs); err != nil {
		return nil, fmt.Errorf("failed to link segment samples: %w", err)
	}
	return seg, nil
}

func visitIDAt(visits []*models.PlaceVisit, idx int) *string {
	if idx < 0 || idx >= len(visits) {
		return nil
	}
	id := visits[idx].ID
	return &id
}

// enrichVisits resolves addresses for freshly created visits. Runs after the
// ingest transaction; failures only cost the address fields.
func (s *IngestService) enrichVisits(ctx context.Context, visits []*models.PlaceVisit) {
	for _, v := range visits {
		if !s.geocoding.EnrichVisit(ctx, v) {
			continue
		}
		if err := s.store.Visits().Update(ctx, v); err != nil {
			log.Printf("[Ingest] Failed to save enriched visit %s: %v", v.ID, err)
		}
	}
}
