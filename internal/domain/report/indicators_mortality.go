package report

import (
	"fmt"
	"sort"
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// Coarse year buckets for the age-at-death distribution.
var deathAgeBuckets = []string{"0-17", "18-24", "25-34", "35-44", "45-54", "55-64", "65+"}

func deathAgeBucket(years int) string {
	switch {
	case years < 18:
		return "0-17"
	case years < 25:
		return "18-24"
	case years < 35:
		return "25-34"
	case years < 45:
		return "35-44"
	case years < 55:
		return "45-54"
	case years < 65:
		return "55-64"
	default:
		return "65+"
	}
}

// deathDate is the recorded status date, falling back to the last
// attended visit when the status date is missing.
func deathDate(h *PatientHistory) *time.Time {
	if h.Patient.StatusDate != nil {
		return h.Patient.StatusDate
	}
	var last *time.Time
	for _, v := range h.Visits {
		if v.Actual != nil && (last == nil || v.Actual.After(*last)) {
			last = v.Actual
		}
	}
	return last
}

func deceased(h *PatientHistory, ref time.Time) bool {
	if h.Patient.Status != patient.StatusDeceased {
		return false
	}
	d := deathDate(h)
	return d == nil || !d.After(ref)
}

func (s *Service) deathsAmongART(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("deaths_among_art")
	var onARTCount int
	for _, h := range snap.Patients {
		if !onART(h, ref) {
			continue
		}
		onARTCount++
		if !deceased(h, ref) || !f.InRange(deathDate(h)) {
			continue
		}
		at := ref
		if d := deathDate(h); d != nil {
			at = *d
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, at), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, onARTCount)
	res.Extra["on_art"] = onARTCount
	return res
}

func (s *Service) deathsOverTime(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("deaths_over_time")
	res.Breakdown = nil
	res.AgeGroups = nil
	series := map[string]int{}
	var months []time.Time
	for _, h := range snap.Patients {
		if !deceased(h, ref) {
			continue
		}
		d := deathDate(h)
		if d == nil || !f.InRange(d) {
			continue
		}
		m := chrono.StartOfMonth(*d)
		if _, seen := series[chrono.MonthLabel(m)]; !seen {
			months = append(months, m)
		}
		series[chrono.MonthLabel(m)]++
		res.Total++
	}
	sort.Slice(months, func(i, j int) bool { return months[i].Before(months[j]) })
	labels := make([]string, len(months))
	for i, m := range months {
		labels[i] = chrono.MonthLabel(m)
	}
	res.Extra["series"] = series
	res.Extra["months"] = labels
	return res
}

func (s *Service) ageAtDeath(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("age_at_death")
	res.Breakdown = nil
	res.AgeGroups = nil
	dist := make(map[string]int, len(deathAgeBuckets))
	for _, b := range deathAgeBuckets {
		dist[b] = 0
	}
	var ages []float64
	var unknown int
	for _, h := range snap.Patients {
		if !deceased(h, ref) {
			continue
		}
		d := deathDate(h)
		if d == nil || !f.InRange(d) {
			continue
		}
		if h.Patient.DateOfBirth == nil {
			unknown++
			continue
		}
		years := chrono.AgeYears(*h.Patient.DateOfBirth, *d)
		if years < 0 {
			continue
		}
		dist[deathAgeBucket(years)]++
		ages = append(ages, float64(years))
		res.Total++
	}
	res.Extra["distribution"] = dist
	res.Extra["buckets"] = deathAgeBuckets
	res.Extra["unknown_age"] = unknown
	res.Extra["median_years"] = round1(chrono.Median(ages))
	res.Extra["mean_years"] = round1(chrono.Mean(ages))
	min, max := 0.0, 0.0
	for i, a := range ages {
		if i == 0 || a < min {
			min = a
		}
		if i == 0 || a > max {
			max = a
		}
	}
	res.Extra["min_years"] = min
	res.Extra["max_years"] = max
	return res
}

var survivalThresholds = []int{6, 12, 24, 36, 60, 120}

func (s *Service) survivalAnalysis(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("survival_analysis")
	res.Breakdown = nil
	res.AgeGroups = nil
	var (
		months          []float64
		byGender        = map[string][]float64{}
		byAgeGroup      = map[string][]float64{}
		survivedAtLeast = make(map[int]int, len(survivalThresholds))
	)
	for _, h := range snap.Patients {
		if !deceased(h, ref) {
			continue
		}
		start, d := h.ARTStart(), deathDate(h)
		if start == nil || d == nil || !f.InRange(d) {
			continue
		}
		m := chrono.MonthsBetween(*start, *d)
		if m < 0 {
			continue
		}
		months = append(months, float64(m))
		g := NormalizeGender(h.Patient.Gender)
		byGender[g] = append(byGender[g], float64(m))
		if h.Patient.DateOfBirth != nil {
			years := chrono.MonthsBetween(*h.Patient.DateOfBirth, *d) / 12
			if years >= 0 {
				byAgeGroup[deathAgeBucket(years)] = append(byAgeGroup[deathAgeBucket(years)], float64(m))
			}
		}
		for _, t := range survivalThresholds {
			if m >= t {
				survivedAtLeast[t]++
			}
		}
		res.Total++
	}
	rates := make(map[string]any, len(survivalThresholds))
	for _, t := range survivalThresholds {
		rates[fmtMonths(t)] = percentage(survivedAtLeast[t], res.Total)
	}
	medians := make(map[string]float64, len(byGender))
	for g, xs := range byGender {
		medians[g] = round1(chrono.Median(xs))
	}
	ageMedians := make(map[string]float64, len(byAgeGroup))
	for grp, xs := range byAgeGroup {
		ageMedians[grp] = round1(chrono.Median(xs))
	}
	res.Extra["median_survival_months"] = round1(chrono.Median(months))
	res.Extra["survival_rates"] = rates
	res.Extra["median_by_gender"] = medians
	res.Extra["median_by_age_group"] = ageMedians
	return res
}

func fmtMonths(n int) string {
	return fmt.Sprintf("%d_months", n)
}

func (s *Service) mortalityRate(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("mortality_rate")
	var total int
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		total++
		if !deceased(h, ref) {
			continue
		}
		at := ref
		if d := deathDate(h); d != nil {
			at = *d
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, at), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, total)
	res.Extra["patients"] = total
	return res
}
