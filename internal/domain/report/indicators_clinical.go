package report

import (
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/visit"
)

// tbScreening counts unique patient-years with a recorded TB status
// against patient-years with any visit.
func (s *Service) tbScreening(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("tb_screening")
	var visitYears, screenedYears int
	for _, h := range snap.Patients {
		visited := map[int]bool{}
		screened := map[int]bool{}
		for _, v := range h.Visits {
			if v.Actual == nil || v.Actual.After(ref) || !f.InRange(v.Actual) {
				continue
			}
			year := v.Actual.Year()
			visited[year] = true
			if v.Detail != nil && v.Detail.TBStatus != nil {
				screened[year] = true
			}
		}
		visitYears += len(visited)
		screenedYears += len(screened)
		if len(screened) > 0 {
			res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		}
	}
	res.Total = screenedYears
	res.Percentage = percentage(screenedYears, visitYears)
	res.Extra["patient_years_with_visits"] = visitYears
	return res
}

func (s *Service) onTBTreatment(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("on_tb_treatment")
	for _, h := range snap.Patients {
		var treatedAt *time.Time
		for _, v := range h.Visits {
			if v.Actual == nil || v.Actual.After(ref) || !f.InRange(v.Actual) {
				continue
			}
			if v.Detail.OnTBTreatment() {
				treatedAt = v.Actual
			}
		}
		if treatedAt == nil {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *treatedAt), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	return res
}

func (s *Service) transferredOut(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("transferred_out")
	var total int
	for _, h := range snap.Patients {
		total++
		var exitAt *time.Time
		for _, v := range h.Visits {
			if !v.IsTransferOut() || v.Next != nil {
				continue
			}
			if d := visitDate(v); d == nil || !d.After(ref) {
				exitAt = d
				break
			}
		}
		cls := s.policy.Classify(h.Patient, h.Visits, ref)
		if cls.State != StateTransferredOut {
			continue
		}
		if exitAt != nil && !f.InRange(exitAt) {
			continue
		}
		at := ref
		if exitAt != nil {
			at = *exitAt
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, at), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, total)
	res.Extra["patients"] = total
	return res
}

func (s *Service) regimenSwitches(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("regimen_switches")
	reasons := map[string]int{}
	patients := map[string]bool{}
	for _, h := range snap.Patients {
		for _, v := range h.Visits {
			if v.Actual == nil || v.Actual.After(ref) || !f.InRange(v.Actual) {
				continue
			}
			if v.Detail == nil || v.Detail.SwitchReason == nil {
				continue
			}
			reasons[*v.Detail.SwitchReason]++
			if !patients[h.Patient.ID.String()] {
				patients[h.Patient.ID.String()] = true
				res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *v.Actual), NormalizeGender(h.Patient.Gender))
			}
			res.Total++
		}
	}
	res.Extra["by_reason"] = reasons
	res.Extra["patients_switched"] = len(patients)
	res.Extra["side_effect_switches"] = reasons[visit.SwitchReasonSideEffects]
	return res
}
