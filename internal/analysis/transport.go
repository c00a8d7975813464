package analysis

import "github.com/tomasvik/trails-backend-go/internal/models"

// Per-step speed bands (m/s). BOAT is never auto-assigned; it exists only as
// a user-set override.
//
// WALK:  < 2.5 m/s  (9 km/h)
// BIKE:  < 8 m/s    (28.8 km/h)
// CAR:   < 40 m/s   (144 km/h)
// TRAIN: < 70 m/s   (252 km/h)
// PLANE: >= 70 m/s
const (
	walkMaxMPS  = 2.5
	bikeMaxMPS  = 8.0
	carMaxMPS   = 40.0
	trainMaxMPS = 70.0
)

// classifyStep bands a single per-step speed into a transport mode.
func classifyStep(speedMPS float64) string {
	switch {
	case speedMPS < walkMaxMPS:
		return models.ModeWalk
	case speedMPS < bikeMaxMPS:
		return models.ModeBike
	case speedMPS < carMaxMPS:
		return models.ModeCar
	case speedMPS < trainMaxMPS:
		return models.ModeTrain
	default:
		return models.ModePlane
	}
}

// classifyRun majority-votes the per-step modes of a run. Confidence is the
// fraction of steps consistent with the winning mode.
func classifyRun(stepSpeeds []float64) (string, float64) {
	if len(stepSpeeds) == 0 {
		return models.ModeUnknown, 0
	}

	votes := make(map[string]int)
	for _, sp := range stepSpeeds {
		votes[classifyStep(sp)]++
	}

	best := models.ModeUnknown
	bestCount := 0
	for _, mode := range []string{models.ModeWalk, models.ModeBike, models.ModeCar, models.ModeTrain, models.ModePlane} {
		if votes[mode] > bestCount {
			best = mode
			bestCount = votes[mode]
		}
	}

	return best, float64(bestCount) / float64(len(stepSpeeds))
}
