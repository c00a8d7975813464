package repository

import (
	"context"
	"sort"
	"sync"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// MemoryStore is the in-memory Store used by tests. It mirrors the SQLite
// semantics (soft deletes, user scoping, lazy expiry) without the driver.
type MemoryStore struct {
	mu sync.RWMutex

	samples  map[string]*models.LocationSample
	visits   map[string]*models.PlaceVisit
	segments map[string]*models.RouteSegment
	trips    map[string]*models.Trip
	geocode  map[string]*models.GeocodeCacheEntry

	visitSamples   map[string][]string
	segmentSamples map[string][]string
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		samples:        make(map[string]*models.LocationSample),
		visits:         make(map[string]*models.PlaceVisit),
		segments:       make(map[string]*models.RouteSegment),
		trips:          make(map[string]*models.Trip),
		geocode:        make(map[string]*models.GeocodeCacheEntry),
		visitSamples:   make(map[string][]string),
		segmentSamples: make(map[string][]string),
	}
}

func (m *MemoryStore) Samples() SampleRepository          { return &memSampleRepo{m} }
func (m *MemoryStore) Visits() VisitRepository            { return &memVisitRepo{m} }
func (m *MemoryStore) Segments() SegmentRepository        { return &memSegmentRepo{m} }
func (m *MemoryStore) Trips() TripRepository              { return &memTripRepo{m} }
func (m *MemoryStore) GeocodeCache() GeocodeCacheRepository { return &memGeocodeRepo{m} }

// WithTx runs fn directly; the in-memory store offers no rollback and exists
// only for tests.
func (m *MemoryStore) WithTx(ctx context.Context, fn func(Store) error) error {
	return fn(m)
}

// --- samples ---

type memSampleRepo struct{ m *MemoryStore }

func (r *memSampleRepo) Insert(ctx context.Context, s *models.LocationSample) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *s
	r.m.samples[s.ID] = &cp
	return nil
}

func (r *memSampleRepo) GetByID(ctx context.Context, userID, id string) (*models.LocationSample, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	s, ok := r.m.samples[id]
	if !ok || s.UserID != userID || s.Deleted {
		return nil, models.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memSampleRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.LocationSample, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.LocationSample
	for _, s := range r.m.samples {
		if s.UserID == userID && !s.Deleted && s.Timestamp >= start && s.Timestamp <= end {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *memSampleRepo) List(ctx context.Context, userID string, filter models.SampleFilter) ([]models.LocationSample, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.LocationSample
	for _, s := range r.m.samples {
		if s.UserID != userID || s.Deleted {
			continue
		}
		if filter.StartTime > 0 && s.Timestamp < filter.StartTime {
			continue
		}
		if filter.EndTime > 0 && s.Timestamp > filter.EndTime {
			continue
		}
		if filter.DeviceID != "" && s.DeviceID != filter.DeviceID {
			continue
		}
		if filter.Source != "" && s.Source != filter.Source {
			continue
		}
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp > out[j].Timestamp })
	return out, int64(len(out)), nil
}

func (r *memSampleRepo) AssignTrip(ctx context.Context, userID string, sampleIDs []string, tripID string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, id := range sampleIDs {
		if s, ok := r.m.samples[id]; ok && s.UserID == userID {
			t := tripID
			s.TripID = &t
			s.LocalVersion++
		}
	}
	return nil
}

func (r *memSampleRepo) SoftDelete(ctx context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	s, ok := r.m.samples[id]
	if !ok || s.UserID != userID {
		return models.ErrNotFound
	}
	s.Deleted = true
	s.LocalVersion++
	return nil
}

func (r *memSampleRepo) Count(ctx context.Context, userID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, s := range r.m.samples {
		if s.UserID == userID && !s.Deleted {
			n++
		}
	}
	return n, nil
}

// --- visits ---

type memVisitRepo struct{ m *MemoryStore }

func (r *memVisitRepo) Insert(ctx context.Context, v *models.PlaceVisit) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *v
	r.m.visits[v.ID] = &cp
	return nil
}

func (r *memVisitRepo) Update(ctx context.Context, v *models.PlaceVisit) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.visits[v.ID]
	if !ok || cur.UserID != v.UserID {
		return models.ErrNotFound
	}
	cp := *v
	cp.LocalVersion = cur.LocalVersion + 1
	r.m.visits[v.ID] = &cp
	return nil
}

func (r *memVisitRepo) GetByID(ctx context.Context, userID, id string) (*models.PlaceVisit, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	v, ok := r.m.visits[id]
	if !ok || v.UserID != userID || v.Deleted {
		return nil, models.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (r *memVisitRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.PlaceVisit, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.PlaceVisit
	for _, v := range r.m.visits {
		if v.UserID == userID && !v.Deleted && v.StartTime >= start && v.StartTime <= end {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *memVisitRepo) List(ctx context.Context, userID string, filter models.VisitFilter) ([]models.PlaceVisit, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.PlaceVisit
	for _, v := range r.m.visits {
		if v.UserID != userID || v.Deleted {
			continue
		}
		if filter.StartTime > 0 && v.StartTime < filter.StartTime {
			continue
		}
		if filter.EndTime > 0 && v.EndTime > filter.EndTime {
			continue
		}
		if filter.Category != "" && v.Category != filter.Category {
			continue
		}
		if filter.Significance != "" && v.Significance != filter.Significance {
			continue
		}
		if filter.MinDuration > 0 && v.DurationSeconds() < filter.MinDuration {
			continue
		}
		if filter.FavoriteOnly && !v.Favorite {
			continue
		}
		out = append(out, *v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, int64(len(out)), nil
}

func (r *memVisitRepo) SoftDelete(ctx context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	v, ok := r.m.visits[id]
	if !ok || v.UserID != userID {
		return models.ErrNotFound
	}
	v.Deleted = true
	v.LocalVersion++
	return nil
}

func (r *memVisitRepo) Count(ctx context.Context, userID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, v := range r.m.visits {
		if v.UserID == userID && !v.Deleted {
			n++
		}
	}
	return n, nil
}

func (r *memVisitRepo) LinkSamples(ctx context.Context, visitID string, sampleIDs []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.visitSamples[visitID] = append(r.m.visitSamples[visitID], sampleIDs...)
	return nil
}

func (r *memVisitRepo) GetSampleIDs(ctx context.Context, visitID string) ([]string, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]string, len(r.m.visitSamples[visitID]))
	copy(out, r.m.visitSamples[visitID])
	return out, nil
}

func (r *memVisitRepo) FindInBox(ctx context.Context, userID string, box spatial.Box) ([]models.PlaceVisit, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.PlaceVisit
	for _, v := range r.m.visits {
		if v.UserID != userID || v.Deleted {
			continue
		}
		if box.Contains(spatial.Point{Lat: v.CenterLat, Lon: v.CenterLon}) {
			out = append(out, *v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *memVisitRepo) CountByFrequentPlace(ctx context.Context, userID, frequentPlaceID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, v := range r.m.visits {
		if v.UserID == userID && !v.Deleted && v.FrequentPlaceID != nil && *v.FrequentPlaceID == frequentPlaceID {
			n++
		}
	}
	return n, nil
}

func (r *memVisitRepo) UpdateSignificance(ctx context.Context, userID, frequentPlaceID, significance string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	for _, v := range r.m.visits {
		if v.UserID == userID && !v.Deleted && v.FrequentPlaceID != nil && *v.FrequentPlaceID == frequentPlaceID {
			v.Significance = significance
		}
	}
	return nil
}

// --- segments ---

type memSegmentRepo struct{ m *MemoryStore }

func (r *memSegmentRepo) Insert(ctx context.Context, seg *models.RouteSegment) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *seg
	cp.Path = append([]models.PathPoint(nil), seg.Path...)
	r.m.segments[seg.ID] = &cp
	return nil
}

func (r *memSegmentRepo) UpdateMode(ctx context.Context, userID, id, mode string, confidence float64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	seg, ok := r.m.segments[id]
	if !ok || seg.UserID != userID || seg.Deleted {
		return models.ErrNotFound
	}
	seg.Mode = mode
	seg.Confidence = confidence
	seg.LocalVersion++
	return nil
}

func (r *memSegmentRepo) GetByID(ctx context.Context, userID, id string) (*models.RouteSegment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	seg, ok := r.m.segments[id]
	if !ok || seg.UserID != userID || seg.Deleted {
		return nil, models.ErrNotFound
	}
	cp := *seg
	cp.Path = append([]models.PathPoint(nil), seg.Path...)
	return &cp, nil
}

func (r *memSegmentRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.RouteSegment, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.RouteSegment
	for _, seg := range r.m.segments {
		if seg.UserID == userID && !seg.Deleted && seg.StartTime >= start && seg.StartTime <= end {
			out = append(out, *seg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *memSegmentRepo) List(ctx context.Context, userID string, filter models.SegmentFilter) ([]models.RouteSegment, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.RouteSegment
	for _, seg := range r.m.segments {
		if seg.UserID != userID || seg.Deleted {
			continue
		}
		if filter.StartTime > 0 && seg.StartTime < filter.StartTime {
			continue
		}
		if filter.EndTime > 0 && seg.EndTime > filter.EndTime {
			continue
		}
		if filter.Mode != "" && seg.Mode != filter.Mode {
			continue
		}
		out = append(out, *seg)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, int64(len(out)), nil
}

func (r *memSegmentRepo) SoftDelete(ctx context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	seg, ok := r.m.segments[id]
	if !ok || seg.UserID != userID {
		return models.ErrNotFound
	}
	seg.Deleted = true
	seg.LocalVersion++
	return nil
}

func (r *memSegmentRepo) Count(ctx context.Context, userID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, seg := range r.m.segments {
		if seg.UserID == userID && !seg.Deleted {
			n++
		}
	}
	return n, nil
}

func (r *memSegmentRepo) LinkSamples(ctx context.Context, segmentID string, sampleIDs []string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.segmentSamples[segmentID] = append(r.m.segmentSamples[segmentID], sampleIDs...)
	return nil
}

func (r *memSegmentRepo) GetSampleIDs(ctx context.Context, segmentID string) ([]string, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	out := make([]string, len(r.m.segmentSamples[segmentID]))
	copy(out, r.m.segmentSamples[segmentID])
	return out, nil
}

// --- trips ---

type memTripRepo struct{ m *MemoryStore }

func (r *memTripRepo) Insert(ctx context.Context, t *models.Trip) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *t
	r.m.trips[t.ID] = &cp
	return nil
}

func (r *memTripRepo) Update(ctx context.Context, t *models.Trip) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cur, ok := r.m.trips[t.ID]
	if !ok || cur.UserID != t.UserID {
		return models.ErrNotFound
	}
	cp := *t
	cp.LocalVersion = cur.LocalVersion + 1
	r.m.trips[t.ID] = &cp
	return nil
}

func (r *memTripRepo) GetByID(ctx context.Context, userID, id string) (*models.Trip, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	t, ok := r.m.trips[id]
	if !ok || t.UserID != userID || t.Deleted {
		return nil, models.ErrNotFound
	}
	cp := *t
	return &cp, nil
}

func (r *memTripRepo) GetByTimeRange(ctx context.Context, userID string, start, end int64) ([]models.Trip, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.Trip
	for _, t := range r.m.trips {
		if t.UserID == userID && !t.Deleted && t.StartTime >= start && t.StartTime <= end {
			out = append(out, *t)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime < out[j].StartTime })
	return out, nil
}

func (r *memTripRepo) List(ctx context.Context, userID string, filter models.TripFilter) ([]models.Trip, int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.Trip
	for _, t := range r.m.trips {
		if t.UserID != userID || t.Deleted {
			continue
		}
		if filter.StartTime > 0 && t.StartTime < filter.StartTime {
			continue
		}
		if filter.EndTime > 0 && t.EndTime > filter.EndTime {
			continue
		}
		if filter.Date != "" && t.Date != filter.Date {
			continue
		}
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime > out[j].StartTime })
	return out, int64(len(out)), nil
}

func (r *memTripRepo) SoftDelete(ctx context.Context, userID, id string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	t, ok := r.m.trips[id]
	if !ok || t.UserID != userID {
		return models.ErrNotFound
	}
	t.Deleted = true
	t.LocalVersion++
	return nil
}

func (r *memTripRepo) Count(ctx context.Context, userID string) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var n int64
	for _, t := range r.m.trips {
		if t.UserID == userID && !t.Deleted {
			n++
		}
	}
	return n, nil
}

// --- geocode cache ---

type memGeocodeRepo struct{ m *MemoryStore }

func (r *memGeocodeRepo) Put(ctx context.Context, e *models.GeocodeCacheEntry) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	cp := *e
	r.m.geocode[e.ID] = &cp
	return nil
}

func (r *memGeocodeRepo) InRange(ctx context.Context, box spatial.Box, now int64) ([]models.GeocodeCacheEntry, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	var out []models.GeocodeCacheEntry
	for _, e := range r.m.geocode {
		if e.ExpiresAt <= now {
			continue
		}
		if box.Contains(spatial.Point{Lat: e.Latitude, Lon: e.Longitude}) {
			out = append(out, *e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CachedAt < out[j].CachedAt })
	return out, nil
}

func (r *memGeocodeRepo) DeleteExpired(ctx context.Context, now int64) (int64, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	var n int64
	for id, e := range r.m.geocode {
		if e.ExpiresAt <= now {
			delete(r.m.geocode, id)
			n++
		}
	}
	return n, nil
}

func (r *memGeocodeRepo) Clear(ctx context.Context) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	r.m.geocode = make(map[string]*models.GeocodeCacheEntry)
	return nil
}

func (r *memGeocodeRepo) Count(ctx context.Context) (int64, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()
	return int64(len(r.m.geocode)), nil
}
