package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/analysis"
	"github.com/tomasvik/trails-backend-go/internal/geocode"
	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/repository"
)

const testUser = "user-1"

func trackSample(id string, ts int64, lat, lon float64) models.LocationSample {
	return models.LocationSample{
		ID:        id,
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  10,
	}
}

// testDay builds three dwell clusters joined by two cycling-speed transits.
func testDay(base int64) []models.LocationSample {
	var samples []models.LocationSample

	cluster := func(prefix string, startTS int64, lat float64) {
		for i := 0; i < 5; i++ {
			samples = append(samples, trackSample(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*150, lat, 13.4000))
		}
	}
	transit := func(prefix string, startTS int64, fromLat float64) {
		for i := 0; i < 4; i++ {
			samples = append(samples, trackSample(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*60, fromLat+float64(i+1)*0.002, 13.4000))
		}
	}

	cluster("a", base, 52.5000)
	transit("t", base+660, 52.5000)
	cluster("b", base+900, 52.5100)
	transit("u", base+1560, 52.5100)
	cluster("c", base+1800, 52.5200)

	return samples
}

func TestIngestBatchPersistsAnalysis(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewIngestService(store, analysis.Config{}, nil)
	ctx := context.Background()

	samples := testDay(1700000000)
	result, err := svc.IngestBatch(ctx, testUser, samples)
	require.NoError(t, err)

	assert.Equal(t, len(samples), result.SamplesStored)
	assert.Zero(t, result.SamplesSkipped)
	assert.Equal(t, 3, result.VisitsCreated)
	assert.Equal(t, 2, result.SegmentsCreated)

	count, err := store.Samples().Count(ctx, testUser)
	require.NoError(t, err)
	assert.Equal(t, int64(len(samples)), count)

	visits, err := store.Visits().GetByTimeRange(ctx, testUser, 1700000000, 1700000000+3000)
	require.NoError(t, err)
	require.Len(t, visits, 3)
	for _, v := range visits {
		assert.Equal(t, models.CategoryOther, v.Category)
		assert.Equal(t, models.ConfidenceLow, v.CategoryConfidence)
		assert.Equal(t, models.SignificanceRare, v.Significance)
		require.NotNil(t, v.FrequentPlaceID)

		linked, err := store.Visits().GetSampleIDs(ctx, v.ID)
		require.NoError(t, err)
		assert.NotEmpty(t, linked)
	}

	segments, err := store.Segments().GetByTimeRange(ctx, testUser, 1700000000, 1700000000+3000)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// Segments reference the visits they bridge.
	require.NotNil(t, segments[0].FromVisitID)
	require.NotNil(t, segments[0].ToVisitID)
	assert.Equal(t, visits[0].ID, *segments[0].FromVisitID)
	assert.Equal(t, visits[1].ID, *segments[0].ToVisitID)
	assert.Equal(t, visits[1].ID, *segments[1].FromVisitID)
	assert.Equal(t, visits[2].ID, *segments[1].ToVisitID)

	for _, seg := range segments {
		assert.Equal(t, models.ModeBike, seg.Mode)

		linked, err := store.Segments().GetSampleIDs(ctx, seg.ID)
		require.NoError(t, err)
		assert.Len(t, linked, 5)
	}
}

func TestIngestBatchSkipsInvalidSamples(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewIngestService(store, analysis.Config{}, nil)

	samples := []models.LocationSample{
		trackSample("good1", 0, 52.5, 13.4),
		trackSample("bad", 60, 95.0, 13.4),
		trackSample("good2", 120, 52.5, 13.4),
	}

	result, err := svc.IngestBatch(context.Background(), testUser, samples)
	require.NoError(t, err)
	assert.Equal(t, 2, result.SamplesStored)
	assert.Equal(t, 1, result.SamplesSkipped)
}

func TestIngestBatchEmpty(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewIngestService(store, analysis.Config{}, nil)

	result, err := svc.IngestBatch(context.Background(), testUser, nil)
	require.NoError(t, err)
	assert.Zero(t, result.SamplesStored)
	assert.Zero(t, result.VisitsCreated)
}

func TestIngestRepeatVisitsShareFrequentPlace(t *testing.T) {
	store := repository.NewMemoryStore()
	svc := NewIngestService(store, analysis.Config{}, nil)
	ctx := context.Background()

	// Three separate dwells at the same spot on consecutive days.
	var base int64 = 1700000000
	for day := 0; day < 3; day++ {
		var batch []models.LocationSample
		for i := 0; i < 5; i++ {
			batch = append(batch, trackSample(fmt.Sprintf("d%d-%d", day, i), base+int64(day)*86400+int64(i)*150, 52.5000, 13.4000))
		}
		_, err := svc.IngestBatch(ctx, testUser, batch)
		require.NoError(t, err)
	}

	visits, err := store.Visits().GetByTimeRange(ctx, testUser, base, base+3*86400)
	require.NoError(t, err)
	require.Len(t, visits, 3)

	place := visits[0].FrequentPlaceID
	require.NotNil(t, place)
	for _, v := range visits {
		require.NotNil(t, v.FrequentPlaceID)
		assert.Equal(t, *place, *v.FrequentPlaceID)
		// Third dwell at the same place promotes all of them.
		assert.Equal(t, models.SignificanceOccasional, v.Significance)
	}
}

type stubProvider struct {
	loc  *models.GeocodedLocation
	err  error
	hits int
}

func (p *stubProvider) ReverseGeocode(ctx context.Context, lat, lon float64) (*models.GeocodedLocation, error) {
	p.hits++
	if p.err != nil {
		return nil, p.err
	}
	loc := *p.loc
	loc.Latitude = lat
	loc.Longitude = lon
	return &loc, nil
}

func TestIngestEnrichesVisits(t *testing.T) {
	store := repository.NewMemoryStore()
	provider := &stubProvider{loc: &models.GeocodedLocation{
		FormattedAddress: "Alexanderplatz 1, Berlin",
		City:             "Berlin",
		CountryCode:      "DE",
	}}
	geocoding := NewGeocodingService(geocode.NewCache(store.GeocodeCache()), provider, 120, 30*24*time.Hour)
	svc := NewIngestService(store, analysis.Config{}, geocoding)
	ctx := context.Background()

	var batch []models.LocationSample
	for i := 0; i < 5; i++ {
		batch = append(batch, trackSample(fmt.Sprintf("s%d", i), int64(i)*150, 52.5000, 13.4000))
	}
	_, err := svc.IngestBatch(ctx, testUser, batch)
	require.NoError(t, err)

	visits, err := store.Visits().GetByTimeRange(ctx, testUser, 0, 3000)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, "Alexanderplatz 1, Berlin", visits[0].Address)
	assert.Equal(t, "Berlin", visits[0].City)
	assert.Equal(t, 1, provider.hits)
}

func TestIngestProviderFailureDoesNotBlockVisit(t *testing.T) {
	store := repository.NewMemoryStore()
	provider := &stubProvider{err: fmt.Errorf("%w: quota exceeded", models.ErrGeocodingProvider)}
	geocoding := NewGeocodingService(geocode.NewCache(store.GeocodeCache()), provider, 120, time.Hour)
	svc := NewIngestService(store, analysis.Config{}, geocoding)
	ctx := context.Background()

	var batch []models.LocationSample
	for i := 0; i < 5; i++ {
		batch = append(batch, trackSample(fmt.Sprintf("s%d", i), int64(i)*150, 52.5000, 13.4000))
	}
	result, err := svc.IngestBatch(ctx, testUser, batch)
	require.NoError(t, err)
	assert.Equal(t, 1, result.VisitsCreated)

	visits, err := store.Visits().GetByTimeRange(ctx, testUser, 0, 3000)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Empty(t, visits[0].Address)
}
