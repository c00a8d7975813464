package analysis

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// dayTrack builds a synthetic day: three dwell clusters joined by two
// constant-speed transits heading north.
func dayTrack() []models.LocationSample {
	var samples []models.LocationSample

	cluster := func(prefix string, startTS int64, lat float64) {
		for i := 0; i < 5; i++ {
			samples = append(samples, sampleAt(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*150, lat, 13.4000))
		}
	}
	transit := func(prefix string, startTS int64, fromLat float64) {
		for i := 0; i < 4; i++ {
			samples = append(samples, sampleAt(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*60, fromLat+float64(i+1)*0.002, 13.4000))
		}
	}

	cluster("a", 0, 52.5000)
	transit("t", 660, 52.5000)
	cluster("b", 900, 52.5100)
	transit("u", 1560, 52.5100)
	cluster("c", 1800, 52.5200)

	return samples
}

func TestPipelineEndToEnd(t *testing.T) {
	samples := dayTrack()
	result := NewPipeline(Config{}).Process(samples)

	require.Len(t, result.Visits, 3)
	require.Len(t, result.Segments, 2)

	// Visits are ordered and anchored to the three clusters.
	assert.InDelta(t, 52.5000, result.Visits[0].CenterLat, 0.0005)
	assert.InDelta(t, 52.5100, result.Visits[1].CenterLat, 0.0005)
	assert.InDelta(t, 52.5200, result.Visits[2].CenterLat, 0.0005)
	for _, v := range result.Visits {
		assert.GreaterOrEqual(t, v.EndTime-v.StartTime, int64(300))
	}

	// Segments bridge consecutive visits.
	assert.Equal(t, 0, result.Segments[0].FromVisitIdx)
	assert.Equal(t, 1, result.Segments[0].ToVisitIdx)
	assert.Equal(t, 1, result.Segments[1].FromVisitIdx)
	assert.Equal(t, 2, result.Segments[1].ToVisitIdx)

	// ~222 m hops every 60 s classify as cycling.
	for _, seg := range result.Segments {
		assert.Equal(t, models.ModeBike, seg.Mode)
		assert.Equal(t, 1.0, seg.Confidence)
		assert.Greater(t, seg.DistanceMeters, 800.0)
	}

	// Every input sample lands in exactly one visit or one segment.
	seen := make(map[string]int)
	for _, v := range result.Visits {
		for _, id := range v.SampleIDs {
			seen[id]++
		}
	}
	for _, seg := range result.Segments {
		for _, id := range seg.SampleIDs {
			seen[id]++
		}
	}
	assert.Len(t, seen, len(samples))
	for id, n := range seen {
		assert.Equal(t, 1, n, "sample %s assigned %d times", id, n)
	}
}

func TestPipelineSegmentDistanceSum(t *testing.T) {
	// A longer day, ~95 samples: three dwells joined by two 40-hop transits.
	var samples []models.LocationSample
	cluster := func(prefix string, startTS int64, lat float64) {
		for i := 0; i < 5; i++ {
			samples = append(samples, sampleAt(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*150, lat, 13.4000))
		}
	}
	transit := func(prefix string, startTS int64, fromLat float64) {
		for i := 0; i < 40; i++ {
			samples = append(samples, sampleAt(fmt.Sprintf("%s%d", prefix, i), startTS+int64(i)*60, fromLat+float64(i+1)*0.002, 13.4000))
		}
	}
	cluster("a", 0, 52.5000)
	transit("t", 660, 52.5000)
	cluster("b", 3060, 52.5820)
	transit("u", 3720, 52.5820)
	cluster("c", 6120, 52.6640)

	result := NewPipeline(Config{}).Process(samples)
	require.Len(t, result.Visits, 3)
	require.Len(t, result.Segments, 2)

	byID := make(map[string]models.LocationSample, len(samples))
	for _, s := range samples {
		byID[s.ID] = s
	}

	var segSum, rawSum float64
	for _, seg := range result.Segments {
		segSum += seg.DistanceMeters

		raw := make([]spatial.Point, 0, len(seg.SampleIDs))
		for _, id := range seg.SampleIDs {
			s, ok := byID[id]
			require.True(t, ok, "unknown sample id %s", id)
			raw = append(raw, spatial.Point{Lat: s.Latitude, Lon: s.Longitude})
		}
		rawSum += spatial.PathLength(raw)

		// The stored path is simplified, but its length stays within the
		// simplification tolerance of the raw cumulative distance.
		assert.Less(t, len(seg.Path), len(seg.SampleIDs))
		assert.InDelta(t, seg.DistanceMeters, spatial.PathLength(seg.Path), DefaultConfig.SimplifyToleranceM)
	}

	// Segment distances are the raw cumulative distances of their runs.
	assert.InDelta(t, rawSum, segSum, 0.01)
	assert.Greater(t, segSum, 17000.0)
}

func TestPipelineDropsShortRunsSilently(t *testing.T) {
	// One dwell followed by a lone departing sample: the trailing run has a
	// single sample and yields no segment.
	var samples []models.LocationSample
	for i := 0; i < 4; i++ {
		samples = append(samples, sampleAt(fmt.Sprintf("a%d", i), int64(i*150), 52.5000, 13.4000))
	}
	samples = append(samples, sampleAt("out1", 500, 52.5100, 13.4000))

	result := NewPipeline(Config{}).Process(samples)

	require.Len(t, result.Visits, 1)
	assert.Empty(t, result.Segments)
}

func TestPipelineEmptyBatch(t *testing.T) {
	result := NewPipeline(Config{}).Process(nil)
	assert.Empty(t, result.Visits)
	assert.Empty(t, result.Segments)
}

func TestSignificanceForCount(t *testing.T) {
	cases := []struct {
		count int64
		want  string
	}{
		{0, models.SignificanceRare},
		{2, models.SignificanceRare},
		{3, models.SignificanceOccasional},
		{9, models.SignificanceOccasional},
		{10, models.SignificanceFrequent},
		{39, models.SignificanceFrequent},
		{40, models.SignificancePrimary},
		{500, models.SignificancePrimary},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, SignificanceForCount(tc.count), "count %d", tc.count)
	}
}
