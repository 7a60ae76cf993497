package report

import (
	"fmt"
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/visit"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

func pregnantRetainedName(months int) string {
	return fmt.Sprintf("pregnant_retained_%d_months", months)
}

// pregnantAtStart reports whether pregnancy was recorded on the
// initial ART visit.
func pregnantAtStart(h *PatientHistory) bool {
	for _, v := range h.Visits {
		if v.Type != visit.TypeInitial {
			continue
		}
		if v.Detail != nil && v.Detail.Pregnant != nil && *v.Detail.Pregnant {
			return true
		}
	}
	return false
}

func (s *Service) initiatedARTWhilePregnant(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("initiated_art_while_pregnant")
	var womenOnART int
	for _, h := range snap.Patients {
		if NormalizeGender(h.Patient.Gender) != GenderFemale {
			continue
		}
		if !onART(h, ref) || !f.InRange(h.ARTStart()) {
			continue
		}
		womenOnART++
		if !pregnantAtStart(h) {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *h.ARTStart()), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, womenOnART)
	res.Extra["women_on_art"] = womenOnART
	return res
}

// pregnantCohort walks patients who initiated ART while pregnant at
// least `months` before ref.
func (s *Service) pregnantCohort(snap *Snapshot, f FilterSet, ref time.Time, months int, fn func(h *PatientHistory, cls Classification)) int {
	var eligible int
	for _, h := range snap.Patients {
		if NormalizeGender(h.Patient.Gender) != GenderFemale || !pregnantAtStart(h) {
			continue
		}
		start := h.ARTStart()
		if start == nil || chrono.MonthsBetween(*start, ref) < months || !f.InRange(start) {
			continue
		}
		eligible++
		fn(h, s.policy.Classify(h.Patient, h.Visits, ref))
	}
	return eligible
}

func (s *Service) pregnantRetainedAt(months int) aggregator {
	name := pregnantRetainedName(months)
	return func(snap *Snapshot, f FilterSet, ref time.Time) *Result {
		res := newResult(name)
		var censored int
		eligible := s.pregnantCohort(snap, f, ref, months, func(h *PatientHistory, cls Classification) {
			if cls.Terminal() {
				censored++
				return
			}
			if cls.State != StateActive {
				return
			}
			res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
			res.Total++
		})
		res.Percentage = percentage(res.Total, eligible-censored)
		res.Extra["eligible"] = eligible
		res.Extra["censored"] = censored
		return res
	}
}

func (s *Service) pregnantLTFU12Months(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("pregnant_ltfu_12_months")
	var censored int
	eligible := s.pregnantCohort(snap, f, ref, 12, func(h *PatientHistory, cls Classification) {
		if cls.Terminal() {
			censored++
			return
		}
		if cls.State != StateLTFU {
			return
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		res.Total++
	})
	res.Percentage = percentage(res.Total, eligible-censored)
	res.Extra["eligible"] = eligible
	res.Extra["censored"] = censored
	return res
}

func (s *Service) pregnantDied12Months(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("pregnant_died_12_months")
	eligible := s.pregnantCohort(snap, f, ref, 12, func(h *PatientHistory, cls Classification) {
		if cls.State != StateDeceased {
			return
		}
		start, d := h.ARTStart(), deathDate(h)
		if start == nil {
			return
		}
		if d != nil {
			m := chrono.MonthsBetween(*start, *d)
			if m < 0 || m > 12 {
				return
			}
		}
		at := ref
		if d != nil {
			at = *d
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, at), NormalizeGender(h.Patient.Gender))
		res.Total++
	})
	res.Percentage = percentage(res.Total, eligible)
	res.Extra["eligible"] = eligible
	return res
}
