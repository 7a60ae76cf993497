package report

import (
	"fmt"
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/visit"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

func suppressionName(months int) string {
	return fmt.Sprintf("viral_suppression_%d_months", months)
}

// maxDaysToFirstVL bounds time-to-first-test at five years; longer
// gaps are treated as data anomalies.
const maxDaysToFirstVL = 1825

// vlTests yields the visits carrying a usable viral-load result,
// attended on or before ref, in ascending date order.
func vlTests(h *PatientHistory, ref time.Time) []*visit.Visit {
	var out []*visit.Visit
	for _, v := range h.Visits {
		if v.Actual == nil || v.Actual.After(ref) {
			continue
		}
		if v.Detail == nil || v.Detail.ViralLoad == nil || *v.Detail.ViralLoad < 0 {
			continue
		}
		out = append(out, v)
	}
	return out
}

func (s *Service) suppressedViralLoad(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("suppressed_viral_load")
	var tested int
	for _, h := range snap.Patients {
		var latest *visit.Visit
		for _, v := range vlTests(h, ref) {
			if !f.InRange(v.Actual) {
				continue
			}
			latest = v
		}
		if latest == nil {
			continue
		}
		tested++
		if *latest.Detail.ViralLoad >= SuppressionThreshold {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *latest.Actual), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, tested)
	res.Extra["tested"] = tested
	return res
}

// viralSuppressionAt checks suppression at the N-month milestone after
// ART start. A patient is eligible once ref is at least N+1 months
// past the start; the matched test is the one closest to the milestone
// inside a one-month tolerance either side.
func (s *Service) viralSuppressionAt(months int) aggregator {
	name := suppressionName(months)
	return func(snap *Snapshot, f FilterSet, ref time.Time) *Result {
		res := newResult(name)
		var eligible, tested, unsuppressed int
		for _, h := range snap.Patients {
			start := h.ARTStart()
			if start == nil || !f.InRange(start) {
				continue
			}
			if chrono.MonthsBetween(*start, ref) < months+1 {
				continue
			}
			eligible++
			target := chrono.AddMonths(*start, months)
			match := NearestViralLoad(h.Visits, target,
				chrono.AddMonths(target, -1), chrono.AddMonths(target, 1))
			if match == nil {
				continue
			}
			tested++
			if *match.Detail.ViralLoad >= SuppressionThreshold {
				unsuppressed++
				continue
			}
			res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, target), NormalizeGender(h.Patient.Gender))
			res.Total++
		}
		res.Percentage = percentage(res.Total, tested)
		res.Extra["eligible"] = eligible
		res.Extra["tested"] = tested
		res.Extra["unsuppressed"] = unsuppressed
		res.Extra["untested"] = eligible - tested
		return res
	}
}

func (s *Service) timeToFirstViralLoad(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("time_to_first_viral_load")
	var days []float64
	var within180 int
	for _, h := range snap.Patients {
		start := h.ARTStart()
		if start == nil || !f.InRange(start) {
			continue
		}
		tests := vlTests(h, ref)
		var first *visit.Visit
		for _, v := range tests {
			if v.Actual.Before(*start) {
				continue
			}
			first = v
			break
		}
		if first == nil {
			continue
		}
		d := chrono.DaysBetween(*start, *first.Actual)
		if d < 0 || d > maxDaysToFirstVL {
			continue
		}
		days = append(days, float64(d))
		if d <= 180 {
			within180++
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *first.Actual), NormalizeGender(h.Patient.Gender))
	}
	res.Total = len(days)
	res.Percentage = percentage(within180, len(days))
	res.Extra["median_days"] = round1(chrono.Median(days))
	res.Extra["mean_days"] = round1(chrono.Mean(days))
	res.Extra["within_180_days"] = within180
	return res
}

func (s *Service) vlRetestAfterHigh(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("vl_retest_after_high")
	var highPatients int
	for _, h := range snap.Patients {
		tests := vlTests(h, ref)
		var firstHigh *visit.Visit
		for _, v := range tests {
			if !f.InRange(v.Actual) {
				continue
			}
			if *v.Detail.ViralLoad >= SuppressionThreshold {
				firstHigh = v
				break
			}
		}
		if firstHigh == nil {
			continue
		}
		highPatients++
		var retested bool
		for _, v := range tests {
			if v.Actual.After(*firstHigh.Actual) {
				retested = true
				break
			}
		}
		if !retested {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *firstHigh.Actual), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, highPatients)
	res.Extra["high_result_patients"] = highPatients
	return res
}
