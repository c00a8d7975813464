package analysis

import "github.com/tomasvik/trails-backend-go/internal/models"

// Visit-count thresholds for significance ranking.
const (
	primaryMinVisits    = 40
	frequentMinVisits   = 10
	occasionalMinVisits = 3
)

// SignificanceForCount ranks a frequent place by how many visits have
// accumulated there.
func SignificanceForCount(visitCount int64) string {
	switch {
	case visitCount >= primaryMinVisits:
		return models.SignificancePrimary
	case visitCount >= frequentMinVisits:
		return models.SignificanceFrequent
	case visitCount >= occasionalMinVisits:
		return models.SignificanceOccasional
	default:
		return models.SignificanceRare
	}
}
