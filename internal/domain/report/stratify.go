package report

import (
	"strings"
	"time"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// UnknownAgeGroup is the bucket for patients without a birth date.
const UnknownAgeGroup = "Unknown"

// Normalized gender tokens.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

type ageBucket struct {
	label     string
	minMonths int
	maxMonths int // -1 means open-ended
}

// Buckets are contiguous and non-overlapping; every non-negative age
// in whole months maps to exactly one label.
var ageBuckets = []ageBucket{
	{"0-2 months", 0, 2},
	{"3-12 months", 3, 12},
	{"13-24 months", 13, 24},
	{"25-59 months", 25, 59},
	{"5-9 years", 60, 119},
	{"10-14 years", 120, 179},
	{"15-19 years", 180, 239},
	{"20-24 years", 240, 299},
	{"25-29 years", 300, 359},
	{"30-34 years", 360, 419},
	{"35-39 years", 420, 479},
	{"40-44 years", 480, 539},
	{"45-49 years", 540, 599},
	{"50+ years", 600, -1},
}

// Paediatric buckets used by the children-on-ART breakdown (< 18 years).
var childAgeBuckets = []ageBucket{
	{"0-2 months", 0, 2},
	{"3-12 months", 3, 12},
	{"13-24 months", 13, 24},
	{"25-59 months", 25, 59},
	{"5-9 years", 60, 119},
	{"10-14 years", 120, 179},
	{"15-17 years", 180, 215},
}

// AgeGroupLabels returns the ordered bucket labels including Unknown.
func AgeGroupLabels() []string {
	labels := make([]string, 0, len(ageBuckets)+1)
	for _, b := range ageBuckets {
		labels = append(labels, b.label)
	}
	return append(labels, UnknownAgeGroup)
}

// ChildAgeGroupLabels returns the ordered paediatric labels.
func ChildAgeGroupLabels() []string {
	labels := make([]string, 0, len(childAgeBuckets)+1)
	for _, b := range childAgeBuckets {
		labels = append(labels, b.label)
	}
	return append(labels, UnknownAgeGroup)
}

func bucketFor(buckets []ageBucket, dob *time.Time, ref time.Time) string {
	if dob == nil {
		return UnknownAgeGroup
	}
	months := chrono.MonthsBetween(*dob, ref)
	if months < 0 {
		return UnknownAgeGroup
	}
	for _, b := range buckets {
		if months >= b.minMonths && (b.maxMonths < 0 || months <= b.maxMonths) {
			return b.label
		}
	}
	return UnknownAgeGroup
}

// AgeGroup maps a birth date to its bucket label at the reference date.
func AgeGroup(dob *time.Time, ref time.Time) string {
	return bucketFor(ageBuckets, dob, ref)
}

// ChildAgeGroup is AgeGroup over the paediatric buckets. Ages of 18
// years and above fall in Unknown; callers gate on age first.
func ChildAgeGroup(dob *time.Time, ref time.Time) string {
	return bucketFor(childAgeBuckets, dob, ref)
}

// NormalizeGender folds free-text gender values onto male/female/other.
func NormalizeGender(raw string) string {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "m", "male":
		return GenderMale
	case "f", "female":
		return GenderFemale
	default:
		return GenderOther
	}
}

// GenderCount is one breakdown cell.
type GenderCount struct {
	Male   int `json:"male"`
	Female int `json:"female"`
	Other  int `json:"other"`
}

// Sum returns the cell total across genders.
func (g *GenderCount) Sum() int {
	return g.Male + g.Female + g.Other
}

// Breakdown maps age-group label to per-gender counts. Every label in
// the owning result's label set is present, zero-valued when empty.
type Breakdown map[string]*GenderCount

// NewBreakdown pre-fills a breakdown with zero cells for each label.
func NewBreakdown(labels []string) Breakdown {
	bd := make(Breakdown, len(labels))
	for _, l := range labels {
		bd[l] = &GenderCount{}
	}
	return bd
}

// Add increments the cell for an age-group label and normalized gender.
func (bd Breakdown) Add(label, gender string) {
	cell, ok := bd[label]
	if !ok {
		cell = &GenderCount{}
		bd[label] = cell
	}
	switch gender {
	case GenderMale:
		cell.Male++
	case GenderFemale:
		cell.Female++
	default:
		cell.Other++
	}
}

// Total sums every cell.
func (bd Breakdown) Total() int {
	var n int
	for _, cell := range bd {
		n += cell.Sum()
	}
	return n
}
