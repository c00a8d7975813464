package analysis

import (
	"fmt"
	"log"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// SegmentCandidate is a classified movement run, ready to become a
// RouteSegment.
type SegmentCandidate struct {
	StartTime      int64
	EndTime        int64
	FromVisitIdx   int
	ToVisitIdx     int
	SampleIDs      []string
	Path           []spatial.Point
	Mode           string
	DistanceMeters float64
	AvgSpeedMPS    float64
	Confidence     float64
}

// Segmenter turns movement runs into transport-typed segments with a
// simplified path.
type Segmenter struct {
	cfg Config
}

// NewSegmenter creates a segmenter; zero-valued config fields fall back to
// DefaultConfig.
func NewSegmenter(cfg Config) *Segmenter {
	return &Segmenter{cfg: cfg.withDefaults()}
}

// Segment classifies one movement run. A run with fewer than two samples
// carries no speed or distance information and yields ErrInsufficientData.
func (sg *Segmenter) Segment(run Run) (*SegmentCandidate, error) {
	if len(run.Samples) < 2 {
		return nil, fmt.Errorf("%w: run of %d samples", models.ErrInsufficientData, len(run.Samples))
	}

	samples := run.Samples
	points := make([]spatial.Point, 0, len(samples))
	ids := make([]string, 0, len(samples))
	for _, s := range samples {
		points = append(points, spatial.Point{Lat: s.Latitude, Lon: s.Longitude})
		ids = append(ids, s.ID)
	}

	var totalDist float64
	speeds := make([]float64, 0, len(samples)-1)
	for i := 1; i < len(samples); i++ {
		dist, err := spatial.Distance(points[i-1], points[i])
		if err != nil {
			log.Printf("[RouteSegmenter] Skipping step %s -> %s: %v", samples[i-1].ID, samples[i].ID, err)
			continue
		}
		totalDist += dist

		speeds = append(speeds, stepSpeed(samples[i-1], samples[i], dist))
	}

	duration := samples[len(samples)-1].Timestamp - samples[0].Timestamp
	avgSpeed := 0.0
	if duration > 0 {
		avgSpeed = totalDist / float64(duration)
	}

	mode, confidence := classifyRun(speeds)

	return &SegmentCandidate{
		StartTime:      samples[0].Timestamp,
		EndTime:        samples[len(samples)-1].Timestamp,
		FromVisitIdx:   run.FromVisitIdx,
		ToVisitIdx:     run.ToVisitIdx,
		SampleIDs:      ids,
		Path:           spatial.Simplify(points, sg.cfg.SimplifyToleranceM),
		Mode:           mode,
		DistanceMeters: totalDist,
		AvgSpeedMPS:    avgSpeed,
		Confidence:     confidence,
	}, nil
}

// stepSpeed prefers the receiver-reported speed and falls back to
// distance over elapsed time.
func stepSpeed(prev, cur models.LocationSample, dist float64) float64 {
	if cur.Speed != nil && *cur.Speed >= 0 {
		return *cur.Speed
	}
	dt := cur.Timestamp - prev.Timestamp
	if dt <= 0 {
		return 0
	}
	return dist / float64(dt)
}
