package report

import (
	"fmt"
	"time"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

func retainedName(months int) string {
	return fmt.Sprintf("retained_%d_months", months)
}

type retentionCohort struct {
	eligible int
	censored int
	retained int
	ltfu     int
}

// retentionAt classifies every patient whose ART start is at least
// `months` before ref. Deceased and transferred patients are censored
// from the denominator before LTFU is counted.
func (s *Service) retentionAt(snap *Snapshot, f FilterSet, ref time.Time, months int, bd Breakdown) retentionCohort {
	var c retentionCohort
	for _, h := range snap.Patients {
		start := h.ARTStart()
		if start == nil || chrono.MonthsBetween(*start, ref) < months || !f.InRange(start) {
			continue
		}
		c.eligible++
		cls := s.policy.Classify(h.Patient, h.Visits, ref)
		if cls.Terminal() {
			c.censored++
			continue
		}
		if cls.State == StateActive {
			c.retained++
			if bd != nil {
				bd.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
			}
		} else {
			c.ltfu++
		}
	}
	return c
}

func (s *Service) retainedAt(months int) aggregator {
	name := retainedName(months)
	return func(snap *Snapshot, f FilterSet, ref time.Time) *Result {
		res := newResult(name)
		c := s.retentionAt(snap, f, ref, months, res.Breakdown)
		res.Total = c.retained
		res.Percentage = percentage(c.retained, c.eligible-c.censored)
		res.Extra["eligible"] = c.eligible
		res.Extra["censored"] = c.censored
		res.Extra["ltfu"] = c.ltfu
		return res
	}
}

func (s *Service) retentionRates(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("retention_rates")
	res.Breakdown = nil
	res.AgeGroups = nil
	rates := make(map[string]any, len(retentionHorizons))
	for _, months := range retentionHorizons {
		c := s.retentionAt(snap, f, ref, months, nil)
		rates[retainedName(months)] = map[string]any{
			"eligible":   c.eligible,
			"censored":   c.censored,
			"retained":   c.retained,
			"percentage": percentage(c.retained, c.eligible-c.censored),
		}
	}
	res.Extra["horizons"] = rates
	for _, h := range snap.Patients {
		if onART(h, ref) && f.InRange(h.ARTStart()) {
			res.Total++
		}
	}
	return res
}

func (s *Service) ltfuCount(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("ltfu_count")
	var atRisk int
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		cls := s.policy.Classify(h.Patient, h.Visits, ref)
		if cls.Terminal() {
			continue
		}
		atRisk++
		if cls.State != StateLTFU {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, atRisk)
	res.Extra["at_risk"] = atRisk
	return res
}

// reengaged means a visit in the last 3 months with none in the
// 9-to-3-months-ago window, the gap-then-return pattern.
func reengaged(h *PatientHistory, ref time.Time) bool {
	recentFrom := chrono.AddMonths(ref, -3)
	gapFrom := chrono.AddMonths(ref, -9)
	var recent, inGap bool
	for _, v := range h.Visits {
		if v.Actual == nil || v.Actual.After(ref) {
			continue
		}
		switch {
		case v.Actual.After(recentFrom):
			recent = true
		case v.Actual.After(gapFrom):
			inGap = true
		}
	}
	return recent && !inGap
}

func (s *Service) reengagedCount(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("reengaged_count")
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		if s.policy.Classify(h.Patient, h.Visits, ref).Terminal() {
			continue
		}
		if !reengaged(h, ref) {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	return res
}

func (s *Service) ltfuAndReengaged(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("ltfu_and_reengaged")
	res.Breakdown = nil
	res.AgeGroups = nil
	ltfu := s.ltfuCount(snap, f, ref)
	back := s.reengagedCount(snap, f, ref)
	res.Total = ltfu.Total + back.Total
	res.Extra["ltfu"] = ltfu.Total
	res.Extra["reengaged"] = back.Total
	return res
}
