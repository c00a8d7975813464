package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

func sampleAt(id string, ts int64, lat, lon float64) models.LocationSample {
	return models.LocationSample{
		ID:        id,
		Timestamp: ts,
		Latitude:  lat,
		Longitude: lon,
		Accuracy:  10,
	}
}

func TestDetectSingleStay(t *testing.T) {
	var samples []models.LocationSample
	for i := 0; i < 5; i++ {
		samples = append(samples, sampleAt(string(rune('a'+i)), int64(i*150), 52.5000, 13.4000))
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Empty(t, runs)

	v := visits[0]
	assert.Equal(t, int64(0), v.StartTime)
	assert.Equal(t, int64(600), v.EndTime)
	assert.InDelta(t, 52.5000, v.CenterLat, 1e-6)
	assert.InDelta(t, 13.4000, v.CenterLon, 1e-6)
	assert.Len(t, v.SampleIDs, 5)
}

func TestDetectSpikeAbsorbed(t *testing.T) {
	// A single beyond-radius spike in the middle of a dwell must not split
	// the visit; the spike joins the contributing set but not the centroid.
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("b", 120, 52.5000, 13.4000),
		sampleAt("spike", 180, 52.5100, 13.4000), // ~1.1 km away
		sampleAt("c", 240, 52.5000, 13.4000),
		sampleAt("d", 360, 52.5000, 13.4000),
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Empty(t, runs)
	assert.Contains(t, visits[0].SampleIDs, "spike")
	assert.Len(t, visits[0].SampleIDs, 5)
	// Centroid untouched by the spike.
	assert.InDelta(t, 52.5000, visits[0].CenterLat, 1e-6)
}

func TestDetectConsecutiveOutliersClose(t *testing.T) {
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("b", 200, 52.5000, 13.4000),
		sampleAt("c", 400, 52.5000, 13.4000),
		sampleAt("out1", 460, 52.5100, 13.4000),
		sampleAt("out2", 520, 52.5200, 13.4000),
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, visits[0].SampleIDs)

	// Both outliers end up in the trailing movement run.
	require.Len(t, runs, 1)
	var ids []string
	for _, s := range runs[0].Samples {
		ids = append(ids, s.ID)
	}
	assert.ElementsMatch(t, []string{"out1", "out2"}, ids)
	assert.Equal(t, 0, runs[0].FromVisitIdx)
	assert.Equal(t, -1, runs[0].ToVisitIdx)
}

func TestDetectLowAccuracyExcludedFromCentroid(t *testing.T) {
	blurry := sampleAt("blurry", 200, 52.5004, 13.4000)
	blurry.Accuracy = 500

	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("b", 150, 52.5000, 13.4000),
		blurry,
		sampleAt("c", 300, 52.5000, 13.4000),
		sampleAt("d", 450, 52.5000, 13.4000),
	}

	visits, _ := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Contains(t, visits[0].SampleIDs, "blurry")
	// The centroid is the mean of the accurate samples only.
	assert.InDelta(t, 52.5000, visits[0].CenterLat, 1e-9)
}

func TestDetectShortDwellDiscarded(t *testing.T) {
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("b", 30, 52.5000, 13.4000),
		sampleAt("c", 60, 52.5000, 13.4000),
		sampleAt("d", 120, 52.5100, 13.4000),
		sampleAt("e", 180, 52.5200, 13.4000),
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	assert.Empty(t, visits)
	require.Len(t, runs, 1)
	assert.Len(t, runs[0].Samples, 5)
	assert.Equal(t, -1, runs[0].FromVisitIdx)
	assert.Equal(t, -1, runs[0].ToVisitIdx)
}

func TestDetectResortsBatch(t *testing.T) {
	var samples []models.LocationSample
	for i := 4; i >= 0; i-- {
		samples = append(samples, sampleAt(string(rune('a'+i)), int64(i*150), 52.5000, 13.4000))
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Empty(t, runs)
	assert.Equal(t, int64(0), visits[0].StartTime)
	assert.Equal(t, int64(600), visits[0].EndTime)
}

func TestDetectEmptyBatch(t *testing.T) {
	visits, runs := NewDetector(Config{}).Detect(nil)
	assert.Nil(t, visits)
	assert.Nil(t, runs)
}

func TestDetectSkipsInvalidCoordinates(t *testing.T) {
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("bad", 100, 95.0, 13.4000),
		sampleAt("b", 200, 52.5000, 13.4000),
		sampleAt("c", 400, 52.5000, 13.4000),
	}

	visits, runs := NewDetector(Config{}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Empty(t, runs)
	assert.NotContains(t, visits[0].SampleIDs, "bad")
	assert.Len(t, visits[0].SampleIDs, 3)
}

func TestDetectWiderOutlierWindow(t *testing.T) {
	// With a window of 3, two consecutive outliers are still absorbed when
	// the stream returns inside the radius.
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		sampleAt("b", 150, 52.5000, 13.4000),
		sampleAt("out1", 200, 52.5100, 13.4000),
		sampleAt("out2", 250, 52.5100, 13.4000),
		sampleAt("c", 300, 52.5000, 13.4000),
		sampleAt("d", 450, 52.5000, 13.4000),
	}

	visits, runs := NewDetector(Config{OutlierWindow: 3}).Detect(samples)

	require.Len(t, visits, 1)
	assert.Empty(t, runs)
	assert.Len(t, visits[0].SampleIDs, 6)
}
