package report

import (
	"time"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// enrollmentAnchor is the date-range anchor for enrollment indicators:
// the recorded enrollment date when present, else the ART start date.
func enrollmentAnchor(h *PatientHistory) *time.Time {
	if h.Enrollment != nil && h.Enrollment.EnrolledOn != nil {
		return h.Enrollment.EnrolledOn
	}
	return h.ARTStart()
}

// onART reports whether the patient had started ART by ref.
func onART(h *PatientHistory, ref time.Time) bool {
	start := h.ARTStart()
	return start != nil && !start.After(ref)
}

func addGenderShares(res *Result) {
	var male, female, other int
	for _, cell := range res.Breakdown {
		male += cell.Male
		female += cell.Female
		other += cell.Other
	}
	total := male + female + other
	res.Extra["male_percentage"] = percentage(male, total)
	res.Extra["female_percentage"] = percentage(female, total)
	res.Extra["other_percentage"] = percentage(other, total)
}

func (s *Service) totalEnrolled(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("total_enrolled")
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	addGenderShares(res)
	return res
}

func (s *Service) enrolledOnART(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("enrolled_on_art")
	var enrolled int
	for _, h := range snap.Patients {
		if f.InRange(enrollmentAnchor(h)) {
			enrolled++
		}
		if !onART(h, ref) || !f.InRange(h.ARTStart()) {
			continue
		}
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, *h.ARTStart()), NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, enrolled)
	res.Extra["enrolled"] = enrolled
	addGenderShares(res)
	return res
}

func (s *Service) unknownAge(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("unknown_age")
	var total int
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		total++
		if h.Patient.DateOfBirth != nil {
			continue
		}
		res.Breakdown.Add(UnknownAgeGroup, NormalizeGender(h.Patient.Gender))
		res.Total++
	}
	res.Percentage = percentage(res.Total, total)
	res.Extra["patients"] = total
	return res
}

func (s *Service) childrenOnART(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("children_on_art")
	res.AgeGroups = ChildAgeGroupLabels()
	res.Breakdown = NewBreakdown(ChildAgeGroupLabels())
	var adults int
	for _, h := range snap.Patients {
		if !onART(h, ref) || !f.InRange(h.ARTStart()) {
			continue
		}
		dob := h.Patient.DateOfBirth
		if dob != nil && chrono.AgeYears(*dob, ref) >= 18 {
			adults++
			continue
		}
		if dob == nil {
			res.Breakdown.Add(UnknownAgeGroup, NormalizeGender(h.Patient.Gender))
		} else {
			res.Breakdown.Add(ChildAgeGroup(dob, ref), NormalizeGender(h.Patient.Gender))
			res.Total++
		}
	}
	res.Percentage = percentage(res.Total, res.Total+adults)
	res.Extra["adults_on_art"] = adults
	return res
}

func (s *Service) medianARTDuration(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("median_art_duration")
	var durations []float64
	for _, h := range snap.Patients {
		if !onART(h, ref) || !f.InRange(h.ARTStart()) {
			continue
		}
		months := chrono.MonthsBetween(*h.ARTStart(), ref)
		if months < 0 {
			continue
		}
		durations = append(durations, float64(months))
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
	}
	res.Total = len(durations)
	res.Extra["median_months"] = round1(chrono.Median(durations))
	res.Extra["mean_months"] = round1(chrono.Mean(durations))
	min, max := 0.0, 0.0
	for i, d := range durations {
		if i == 0 || d < min {
			min = d
		}
		if i == 0 || d > max {
			max = d
		}
	}
	res.Extra["min_months"] = min
	res.Extra["max_months"] = max
	return res
}

func (s *Service) summaryStatistics(snap *Snapshot, f FilterSet, ref time.Time) *Result {
	res := newResult("summary_statistics")
	var onARTCount, visits int
	var active, ltfu, transferred, died int
	var durations []float64
	for _, h := range snap.Patients {
		if !f.InRange(enrollmentAnchor(h)) {
			continue
		}
		res.Total++
		visits += len(h.Visits)
		res.Breakdown.Add(AgeGroup(h.Patient.DateOfBirth, ref), NormalizeGender(h.Patient.Gender))
		if onART(h, ref) {
			onARTCount++
			if months := chrono.MonthsBetween(*h.ARTStart(), ref); months >= 0 {
				durations = append(durations, float64(months))
			}
		}
		switch s.policy.Classify(h.Patient, h.Visits, ref).State {
		case StateActive:
			active++
		case StateLTFU:
			ltfu++
		case StateTransferredOut:
			transferred++
		case StateDeceased:
			died++
		}
	}
	res.Percentage = percentage(active, res.Total)
	res.Extra["on_art"] = onARTCount
	res.Extra["active"] = active
	res.Extra["ltfu"] = ltfu
	res.Extra["transferred_out"] = transferred
	res.Extra["deceased"] = died
	res.Extra["median_art_months"] = round1(chrono.Median(durations))
	if res.Total > 0 {
		res.Extra["avg_visits_per_patient"] = round1(float64(visits) / float64(res.Total))
	} else {
		res.Extra["avg_visits_per_patient"] = 0.0
	}
	addGenderShares(res)
	return res
}
