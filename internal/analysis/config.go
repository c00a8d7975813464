package analysis

// Config holds the tunable thresholds for the stay-point detector and the
// route segmenter.
type Config struct {
	// StayRadiusM is the rolling-centroid distance threshold: a sample
	// within this distance of the open candidate's centroid folds into it.
	StayRadiusM float64

	// MinDwellS is the minimum duration (seconds) a closed candidate must
	// span to become a PlaceVisit; shorter candidates are transient noise.
	MinDwellS int64

	// OutlierWindow is the number of consecutive beyond-radius samples
	// required to close a candidate. A single GPS spike must not split a
	// long-lived visit, so the window is at least 2.
	OutlierWindow int

	// AccuracyCeilingM excludes samples with worse horizontal accuracy from
	// centroid computation; they still count as contributing samples.
	AccuracyCeilingM float64

	// SimplifyToleranceM is the Douglas-Peucker tolerance for stored
	// segment paths.
	SimplifyToleranceM float64
}

// DefaultConfig provides the default detection thresholds.
var DefaultConfig = Config{
	StayRadiusM:        75.0,
	MinDwellS:          300, // 5 minutes
	OutlierWindow:      2,
	AccuracyCeilingM:   100.0,
	SimplifyToleranceM: 25.0,
}

func (c Config) withDefaults() Config {
	d := DefaultConfig
	if c.StayRadiusM > 0 {
		d.StayRadiusM = c.StayRadiusM
	}
	if c.MinDwellS > 0 {
		d.MinDwellS = c.MinDwellS
	}
	if c.OutlierWindow > 0 {
		d.OutlierWindow = c.OutlierWindow
	}
	if c.AccuracyCeilingM > 0 {
		d.AccuracyCeilingM = c.AccuracyCeilingM
	}
	if c.SimplifyToleranceM > 0 {
		d.SimplifyToleranceM = c.SimplifyToleranceM
	}
	return d
}
