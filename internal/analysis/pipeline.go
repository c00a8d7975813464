package analysis

import (
	"errors"
	"log"

	"github.com/tomasvik/trails-backend-go/internal/models"
)

// Result is the output of one single-pass batch run: the stay-point visits
// and the transport-typed segments of the movement in between.
type Result struct {
	Visits   []VisitCandidate
	Segments []SegmentCandidate
}

// Pipeline runs the stay-point detector and the route segmenter as a single
// pass over each batch. CPU-only, no I/O; persistence belongs to the caller.
type Pipeline struct {
	cfg Config
}

// NewPipeline creates a pipeline with the given thresholds.
func NewPipeline(cfg Config) *Pipeline {
	return &Pipeline{cfg: cfg.withDefaults()}
}

// Process re-sorts the batch, clusters it into visits and segments the
// remaining movement runs. Runs too short to classify are dropped silently;
// the surviving sample ids always round-trip via visit and segment links.
func (p *Pipeline) Process(samples []models.LocationSample) Result {
	detector := NewDetector(p.cfg)
	visits, runs := detector.Detect(samples)

	segmenter := NewSegmenter(p.cfg)
	segments := make([]SegmentCandidate, 0, len(runs))
	for _, run := range runs {
		seg, err := segmenter.Segment(run)
		if err != nil {
			if !errors.Is(err, models.ErrInsufficientData) {
				log.Printf("[Pipeline] Dropping run: %v", err)
			}
			continue
		}
		segments = append(segments, *seg)
	}

	return Result{Visits: visits, Segments: segments}
}
