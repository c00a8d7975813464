package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

func withSpeed(s models.LocationSample, speed float64) models.LocationSample {
	s.Speed = &speed
	return s
}

func TestSegmentInsufficientData(t *testing.T) {
	sg := NewSegmenter(Config{})

	_, err := sg.Segment(Run{})
	assert.ErrorIs(t, err, models.ErrInsufficientData)

	_, err = sg.Segment(Run{Samples: []models.LocationSample{sampleAt("a", 0, 52.5, 13.4)}})
	assert.ErrorIs(t, err, models.ErrInsufficientData)
}

func TestSegmentWalkFromDerivedSpeed(t *testing.T) {
	// ~50 m hops every 60 s, no reported speed: 0.83 m/s, clearly walking.
	var samples []models.LocationSample
	for i := 0; i < 5; i++ {
		samples = append(samples, sampleAt(string(rune('a'+i)), int64(i*60), 52.5000+float64(i)*0.00045, 13.4000))
	}

	seg, err := NewSegmenter(Config{}).Segment(Run{Samples: samples, FromVisitIdx: -1, ToVisitIdx: 0})
	require.NoError(t, err)

	assert.Equal(t, models.ModeWalk, seg.Mode)
	assert.Equal(t, 1.0, seg.Confidence)
	assert.Equal(t, int64(0), seg.StartTime)
	assert.Equal(t, int64(240), seg.EndTime)
	assert.InDelta(t, 200, seg.DistanceMeters, 10)
	assert.InDelta(t, 0.83, seg.AvgSpeedMPS, 0.05)
	assert.Equal(t, -1, seg.FromVisitIdx)
	assert.Equal(t, 0, seg.ToVisitIdx)
	assert.Len(t, seg.SampleIDs, 5)
}

func TestSegmentPrefersReportedSpeed(t *testing.T) {
	// Nearly stationary coordinates but the receiver reports 5 m/s: the
	// reported speed wins and the run classifies as cycling.
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		withSpeed(sampleAt("b", 60, 52.5000, 13.4000), 5.0),
		withSpeed(sampleAt("c", 120, 52.5000, 13.4000), 5.0),
	}

	seg, err := NewSegmenter(Config{}).Segment(Run{Samples: samples})
	require.NoError(t, err)

	assert.Equal(t, models.ModeBike, seg.Mode)
	assert.Equal(t, 1.0, seg.Confidence)
}

func TestSegmentMajorityVoteConfidence(t *testing.T) {
	samples := []models.LocationSample{
		sampleAt("a", 0, 52.5000, 13.4000),
		withSpeed(sampleAt("b", 60, 52.5000, 13.4000), 1.0),
		withSpeed(sampleAt("c", 120, 52.5000, 13.4000), 1.2),
		withSpeed(sampleAt("d", 180, 52.5000, 13.4000), 1.1),
		withSpeed(sampleAt("e", 240, 52.5000, 13.4000), 20.0), // one car-speed step
	}

	seg, err := NewSegmenter(Config{}).Segment(Run{Samples: samples})
	require.NoError(t, err)

	assert.Equal(t, models.ModeWalk, seg.Mode)
	assert.InDelta(t, 0.75, seg.Confidence, 1e-9)
}

func TestSegmentPathSimplified(t *testing.T) {
	// Collinear track: the stored path collapses to its endpoints while the
	// sample ids keep the full track.
	var samples []models.LocationSample
	for i := 0; i < 6; i++ {
		samples = append(samples, sampleAt(string(rune('a'+i)), int64(i*60), 52.5000+float64(i)*0.001, 13.4000))
	}

	seg, err := NewSegmenter(Config{}).Segment(Run{Samples: samples})
	require.NoError(t, err)

	assert.Len(t, seg.Path, 2)
	assert.Len(t, seg.SampleIDs, 6)
}

func TestClassifyStepBands(t *testing.T) {
	cases := []struct {
		speed float64
		want  string
	}{
		{0, models.ModeWalk},
		{2.49, models.ModeWalk},
		{2.5, models.ModeBike},
		{7.99, models.ModeBike},
		{8.0, models.ModeCar},
		{39.9, models.ModeCar},
		{40.0, models.ModeTrain},
		{69.9, models.ModeTrain},
		{70.0, models.ModePlane},
		{250.0, models.ModePlane},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, classifyStep(tc.speed), "speed %v", tc.speed)
	}
}

func TestClassifyRunEmpty(t *testing.T) {
	mode, confidence := classifyRun(nil)
	assert.Equal(t, models.ModeUnknown, mode)
	assert.Zero(t, confidence)
}

func TestClassifyRunNeverBoat(t *testing.T) {
	for _, speed := range []float64{0.5, 3, 10, 50, 100} {
		mode, _ := classifyRun([]float64{speed})
		assert.NotEqual(t, models.ModeBoat, mode)
	}
}
