package report

import (
	"time"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/internal/domain/visit"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// State is a patient's clinical state at a reference date.
type State string

const (
	StateActive         State = "active"
	StateLTFU           State = "ltfu"
	StateTransferredOut State = "transferred_out"
	StateDeceased       State = "deceased"
)

// Policy parametrizes classification. LateThresholdDays is how many
// days past the next scheduled appointment a patient may be before
// counting as lost to follow-up.
type Policy struct {
	LateThresholdDays int
}

// DefaultPolicy matches the programme's standard 90-day window.
func DefaultPolicy() Policy {
	return Policy{LateThresholdDays: 90}
}

// Classification is the classifier output. DaysLate is only
// meaningful for Active and LTFU states and may be negative when the
// next appointment is still in the future.
type Classification struct {
	State     State
	DaysLate  int
	LastVisit *time.Time
}

// Terminal reports whether the state censors the patient from at-risk
// denominators.
func (c Classification) Terminal() bool {
	return c.State == StateDeceased || c.State == StateTransferredOut
}

// Classify determines the clinical state of a patient at ref from the
// recorded status and full visit history. Death and transfer out are
// terminal and checked before any lateness logic so a deceased or
// transferred patient is never reported as LTFU.
func (p Policy) Classify(pt *patient.Patient, visits []*visit.Visit, ref time.Time) Classification {
	if pt.Status == patient.StatusDeceased && onOrBefore(pt.StatusDate, ref) {
		return Classification{State: StateDeceased}
	}

	for _, v := range visits {
		if v.TransferType != nil && *v.TransferType == visit.TransferOut && v.Next == nil {
			if onOrBefore(visitDate(v), ref) {
				return Classification{State: StateTransferredOut}
			}
		}
	}

	// Latest attended visit at or before ref that issued a next
	// appointment. Without one there is no basis to consider the
	// patient current.
	var last *visit.Visit
	for _, v := range visits {
		if v.Actual == nil || v.Actual.After(ref) || v.Next == nil {
			continue
		}
		if last == nil || v.Actual.After(*last.Actual) {
			last = v
		}
	}
	if last == nil {
		return Classification{State: StateLTFU}
	}

	daysLate := chrono.DaysBetween(*last.Next, ref)
	state := StateActive
	if daysLate > p.LateThresholdDays {
		state = StateLTFU
	}
	return Classification{State: state, DaysLate: daysLate, LastVisit: last.Actual}
}

// onOrBefore treats a nil date as satisfied; a recorded terminal event
// without a date still counts as having happened.
func onOrBefore(t *time.Time, ref time.Time) bool {
	return t == nil || !t.After(ref)
}

// visitDate prefers the attended date, falling back to the scheduled
// one for incomplete records.
func visitDate(v *visit.Visit) *time.Time {
	if v.Actual != nil {
		return v.Actual
	}
	return v.Scheduled
}
