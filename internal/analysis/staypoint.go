package analysis

import (
	"log"
	"sort"

	"github.com/tomasvik/trails-backend-go/internal/models"
	"github.com/tomasvik/trails-backend-go/internal/spatial"
)

// VisitCandidate is a finalized stay-point cluster, ready to become a
// PlaceVisit.
type VisitCandidate struct {
	StartTime int64
	EndTime   int64
	CenterLat float64
	CenterLon float64
	RadiusM   float64
	SampleIDs []string
}

// Run is a contiguous movement interval between two stay-points. Visit
// indices refer to the detector's emitted visit slice; -1 means open-ended.
type Run struct {
	Samples      []models.LocationSample
	FromVisitIdx int
	ToVisitIdx   int
}

// Detector clusters a chronological sample stream into stay-point visits and
// hands everything else over as movement runs.
//
// It is a state machine: SEEKING (no open cluster) opens a candidate at the
// next sample and moves to ACCUMULATING; there, samples within StayRadiusM of
// the rolling centroid fold in, and the candidate closes back to SEEKING only
// after OutlierWindow consecutive beyond-radius samples. A closed candidate
// becomes a visit when it spans at least MinDwellS, otherwise its samples are
// re-routed to the surrounding movement run.
type Detector struct {
	cfg Config

	cand    *candidate
	pending []models.LocationSample

	run          []models.LocationSample
	lastVisitIdx int

	visits []VisitCandidate
	runs   []Run
}

// candidate is an open stay-point cluster. Low-accuracy samples and absorbed
// outlier spikes stay in the contributing list but never move the centroid.
type candidate struct {
	samples     []models.LocationSample
	centroidPts []spatial.Point
	centroid    spatial.Point
	start       int64
	end         int64
}

// NewDetector creates a detector with the given thresholds; zero-valued
// fields fall back to DefaultConfig.
func NewDetector(cfg Config) *Detector {
	return &Detector{cfg: cfg.withDefaults(), lastVisitIdx: -1}
}

// Detect runs the state machine over one batch and flushes it. The batch is
// re-sorted by timestamp first, since the rolling-centroid fold is
// order-sensitive. An empty batch is a no-op.
func (d *Detector) Detect(samples []models.LocationSample) ([]VisitCandidate, []Run) {
	if len(samples) == 0 {
		return nil, nil
	}

	sorted := make([]models.LocationSample, len(samples))
	copy(sorted, samples)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	for _, s := range sorted {
		d.fold(s)
	}
	d.flush()

	return d.visits, d.runs
}

func (d *Detector) fold(s models.LocationSample) {
	pt := spatial.Point{Lat: s.Latitude, Lon: s.Longitude}
	if err := pt.Validate(); err != nil {
		log.Printf("[StayPointDetector] Skipping sample %s: %v", s.ID, err)
		return
	}

	if d.cand == nil {
		d.open(s, pt)
		return
	}

	dist, err := spatial.Distance(d.cand.centroid, pt)
	if err != nil {
		log.Printf("[StayPointDetector] Skipping sample %s: %v", s.ID, err)
		return
	}

	if dist <= d.cfg.StayRadiusM {
		// Back inside the radius: any pending spike was transient jitter.
		// Absorb it into the contributing set without moving the centroid.
		for _, o := range d.pending {
			d.cand.samples = append(d.cand.samples, o)
		}
		d.pending = nil
		d.cand.fold(s, pt, d.cfg.AccuracyCeilingM)
		return
	}

	d.pending = append(d.pending, s)
	if len(d.pending) < d.cfg.OutlierWindow {
		return
	}

	// Confirmed departure: close the candidate. The triggering sample seeds
	// the next candidate; earlier pending samples join the movement run.
	trigger := d.pending[len(d.pending)-1]
	leading := d.pending[:len(d.pending)-1]
	d.close(leading)
	d.pending = nil

	tpt := spatial.Point{Lat: trigger.Latitude, Lon: trigger.Longitude}
	d.open(trigger, tpt)
}

func (d *Detector) open(s models.LocationSample, pt spatial.Point) {
	d.cand = &candidate{
		samples:     []models.LocationSample{s},
		centroidPts: []spatial.Point{pt},
		centroid:    pt,
		start:       s.Timestamp,
		end:         s.Timestamp,
	}
}

// close finalizes the open candidate, emitting a visit when the dwell
// threshold is met and re-routing its samples to the run otherwise.
func (d *Detector) close(trailing []models.LocationSample) {
	cand := d.cand
	d.cand = nil

	if cand.end-cand.start >= d.cfg.MinDwellS {
		d.emit(cand)
		d.run = append(d.run, trailing...)
		return
	}

	d.run = append(d.run, cand.samples...)
	d.run = append(d.run, trailing...)
}

// emit closes the movement run that led into this visit and records the
// visit as the run's destination.
func (d *Detector) emit(cand *candidate) {
	idx := len(d.visits)
	if len(d.run) > 0 {
		d.runs = append(d.runs, Run{
			Samples:      d.run,
			FromVisitIdx: d.lastVisitIdx,
			ToVisitIdx:   idx,
		})
		d.run = nil
	}
	d.lastVisitIdx = idx

	center := spatial.Centroid(cand.centroidPts)
	radius := 0.0
	for _, p := range cand.centroidPts {
		dist, err := spatial.Distance(center, p)
		if err != nil {
			continue
		}
		if dist > radius {
			radius = dist
		}
	}

	ids := make([]string, 0, len(cand.samples))
	for _, s := range cand.samples {
		ids = append(ids, s.ID)
	}

	d.visits = append(d.visits, VisitCandidate{
		StartTime: cand.start,
		EndTime:   cand.end,
		CenterLat: center.Lat,
		CenterLon: center.Lon,
		RadiusM:   radius,
		SampleIDs: ids,
	})
}

// flush disposes of the open candidate and closes the trailing run at the
// end of the stream.
func (d *Detector) flush() {
	if d.cand != nil {
		d.close(d.pending)
		d.pending = nil
	}

	if len(d.run) > 0 {
		d.runs = append(d.runs, Run{
			Samples:      d.run,
			FromVisitIdx: d.lastVisitIdx,
			ToVisitIdx:   -1,
		})
		d.run = nil
	}
}

func (c *candidate) fold(s models.LocationSample, pt spatial.Point, accuracyCeiling float64) {
	c.samples = append(c.samples, s)
	if s.Accuracy <= accuracyCeiling {
		c.centroidPts = append(c.centroidPts, pt)
		c.centroid = spatial.Centroid(c.centroidPts)
	}
	if s.Timestamp > c.end {
		c.end = s.Timestamp
	}
}
