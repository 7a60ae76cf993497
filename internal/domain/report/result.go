package report

import (
	"math"
	"time"
)

// Result is the output shape shared by every indicator.
type Result struct {
	Indicator   string         `json:"indicator"`
	Total       int            `json:"total"`
	Percentage  float64        `json:"percentage"`
	AgeGroups   []string       `json:"age_groups,omitempty"`
	Breakdown   Breakdown      `json:"breakdown,omitempty"`
	Extra       map[string]any `json:"extra,omitempty"`
	Coverage    string         `json:"coverage,omitempty"`
	GeneratedAt time.Time      `json:"generated_at"`
}

func newResult(name string) *Result {
	return &Result{
		Indicator: name,
		AgeGroups: AgeGroupLabels(),
		Breakdown: NewBreakdown(AgeGroupLabels()),
		Extra:     map[string]any{},
	}
}

// round1 rounds to one decimal place, the precision indicators report
// percentages at.
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// percentage is n/d*100 rounded to one decimal, 0 when the denominator
// is 0.
func percentage(n, d int) float64 {
	if d == 0 {
		return 0
	}
	return round1(float64(n) / float64(d) * 100)
}
