package report

import (
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/visit"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// scheduledVisits walks every visit carrying both a scheduled and an
// attended date inside the filter's range, yielding the days late
// (negative when the patient came early).
func scheduledVisits(snap *Snapshot, f FilterSet, ref time.Time, fn func(h *PatientHistory, v *visit.Visit, daysLate int)) int {
	var total int
	for _, h := range snap.Patients {
		for _, v := range h.Visits {
			if v.Scheduled == nil || v.Actual == nil || v.Actual.After(ref) {
				continue
			}
			if !f.InRange(v.Actual) {
				continue
			}
			total++
			fn(h, v, chrono.DaysBetween(*v.Scheduled, *v.Actual))
		}
	}
	return total
}

func (s *Service) missedAppointments(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("missed_appointments")
	total := scheduledVisits(snap, f, ref, func(h *PatientHistory, v *visit.Visit, daysLate int) {
		if daysLate < 1 {
			return
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *v.Actual), NormalizeGender(h.Patient.Gender))
		res.Total++
	})
	res.Percentage = percentage(res.Total, total)
	res.Extra["scheduled_visits"] = total
	return res
}

func (s *Service) missedAppointmentVisits(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("missed_appointment_visits")
	total := scheduledVisits(snap, f, ref, func(h *PatientHistory, v *visit.Visit, daysLate int) {
		if daysLate < 90 {
			return
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *v.Actual), NormalizeGender(h.Patient.Gender))
		res.Total++
	})
	res.Percentage = percentage(res.Total, total)
	res.Extra["scheduled_visits"] = total
	return res
}

func (s *Service) missedVisitSeverity(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("missed_visit_severity")
	res.Breakdown = nil
	res.AgeGroups = nil
	severity := map[string]int{
		"1-7 days":   0,
		"8-30 days":  0,
		"31-89 days": 0,
		"90+ days":   0,
	}
	total := scheduledVisits(snap, f, ref, func(h *PatientHistory, v *visit.Visit, daysLate int) {
		switch {
		case daysLate < 1:
			return
		case daysLate <= 7:
			severity["1-7 days"]++
		case daysLate <= 30:
			severity["8-30 days"]++
		case daysLate <= 89:
			severity["31-89 days"]++
		default:
			severity["90+ days"]++
		}
		res.Total++
	})
	res.Percentage = percentage(res.Total, total)
	res.Extra["scheduled_visits"] = total
	res.Extra["severity"] = severity
	res.Extra["severity_order"] = []string{"1-7 days", "8-30 days", "31-89 days", "90+ days"}
	return res
}

func (s *Service) appointmentAdherence(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("appointment_adherence")
	total := scheduledVisits(snap, f, ref, func(h *PatientHistory, v *visit.Visit, daysLate int) {
		if daysLate > 7 {
			return
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *v.Actual), NormalizeGender(h.Patient.Gender))
		res.Total++
	})
	res.Percentage = percentage(res.Total, total)
	res.Extra["scheduled_visits"] = total
	return res
}
