package report

import (
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/visit"
)

// SuppressionThreshold is the clinical viral-load cutoff in copies/ml;
// values below it count as suppressed.
const SuppressionThreshold = 1000

// NearestViralLoad finds the visit carrying the viral-load result
// closest to target within [start, end]. Candidates need an attended
// date inside the window and a non-nil, non-negative viral load. Ties
// on distance go to the earlier visit. Returns nil when no candidate
// qualifies.
func NearestViralLoad(visits []*visit.Visit, target, start, end time.Time) *visit.Visit {
	var (
		best     *visit.Visit
		bestDiff time.Duration
	)
	for _, v := range visits {
		if v.Actual == nil || v.Actual.Before(start) || v.Actual.After(end) {
			continue
		}
		if v.Detail == nil || v.Detail.ViralLoad == nil || *v.Detail.ViralLoad < 0 {
			continue
		}
		diff := v.Actual.Sub(target)
		if diff < 0 {
			diff = -diff
		}
		if best == nil || diff < bestDiff ||
			(diff == bestDiff && v.Actual.Before(*best.Actual)) {
			best = v
			bestDiff = diff
		}
	}
	return best
}
