package report

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/internal/domain/visit"
)

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dayPtr(y int, m time.Month, d int) *time.Time {
	t := day(y, m, d)
	return &t
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }
func boolPtr(b bool) *bool    { return &b }

func newVisit(actual, next *time.Time) *visit.Visit {
	return &visit.Visit{ID: uuid.New(), Actual: actual, Next: next}
}

func TestClassifyActive(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	visits := []*visit.Visit{
		newVisit(dayPtr(2024, 1, 10), dayPtr(2024, 2, 10)),
		newVisit(dayPtr(2024, 4, 1), dayPtr(2024, 5, 1)),
	}

	cls := DefaultPolicy().Classify(p, visits, ref)
	if cls.State != StateActive {
		t.Fatalf("state = %s, want active", cls.State)
	}
	if cls.DaysLate != 31 {
		t.Errorf("days late = %d, want 31", cls.DaysLate)
	}
	if cls.LastVisit == nil || !cls.LastVisit.Equal(day(2024, 4, 1)) {
		t.Errorf("last visit = %v, want 2024-04-01", cls.LastVisit)
	}
}

func TestClassifyLTFUBeyondThreshold(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	// Next appointment 91 days before ref.
	visits := []*visit.Visit{newVisit(dayPtr(2024, 2, 27), dayPtr(2024, 3, 2))}

	cls := DefaultPolicy().Classify(p, visits, ref)
	if cls.State != StateLTFU {
		t.Fatalf("state = %s, want ltfu", cls.State)
	}
	if cls.DaysLate != 91 {
		t.Errorf("days late = %d, want 91", cls.DaysLate)
	}
}

func TestClassifyExactlyAtThresholdIsActive(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	visits := []*visit.Visit{newVisit(dayPtr(2024, 2, 28), dayPtr(2024, 3, 3))}

	cls := DefaultPolicy().Classify(p, visits, ref)
	if cls.State != StateActive {
		t.Fatalf("state = %s, want active at 90 days", cls.State)
	}
	if cls.DaysLate != 90 {
		t.Errorf("days late = %d, want 90", cls.DaysLate)
	}
}

func TestClassifyNoQualifyingVisitIsLTFU(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	visits := []*visit.Visit{
		newVisit(dayPtr(2024, 4, 1), nil),                // no next appointment
		newVisit(nil, dayPtr(2024, 5, 1)),                // never attended
		newVisit(dayPtr(2024, 7, 1), dayPtr(2024, 8, 1)), // after ref
	}

	if got := DefaultPolicy().Classify(p, visits, ref).State; got != StateLTFU {
		t.Fatalf("state = %s, want ltfu", got)
	}
}

func TestClassifyDeceasedPrecedesLTFU(t *testing.T) {
	ref := day(2024, 12, 1)
	p := &patient.Patient{Status: patient.StatusDeceased, StatusDate: dayPtr(2024, 3, 1)}
	// A very late visit that would otherwise classify as LTFU.
	visits := []*visit.Visit{newVisit(dayPtr(2024, 4, 1), dayPtr(2024, 4, 15))}

	if got := DefaultPolicy().Classify(p, visits, ref).State; got != StateDeceased {
		t.Fatalf("state = %s, want deceased", got)
	}
}

func TestClassifyDeceasedAfterRefNotYetDead(t *testing.T) {
	ref := day(2024, 2, 1)
	p := &patient.Patient{Status: patient.StatusDeceased, StatusDate: dayPtr(2024, 3, 1)}
	visits := []*visit.Visit{newVisit(dayPtr(2024, 1, 10), dayPtr(2024, 1, 25))}

	if got := DefaultPolicy().Classify(p, visits, ref).State; got != StateActive {
		t.Fatalf("state = %s, want active before status date", got)
	}
}

func TestClassifyTransferOutExit(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	exit := newVisit(dayPtr(2024, 2, 1), nil)
	exit.TransferType = strPtr(visit.TransferOut)
	visits := []*visit.Visit{
		newVisit(dayPtr(2024, 1, 1), dayPtr(2024, 2, 1)),
		exit,
	}

	if got := DefaultPolicy().Classify(p, visits, ref).State; got != StateTransferredOut {
		t.Fatalf("state = %s, want transferred_out", got)
	}
}

func TestClassifyTransferWithNextDateIsNotExit(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	// Transfer marker with a real next appointment is not definitive exit.
	v := newVisit(dayPtr(2024, 5, 1), dayPtr(2024, 6, 10))
	v.TransferType = strPtr(visit.TransferOut)

	if got := DefaultPolicy().Classify(p, []*visit.Visit{v}, ref).State; got != StateActive {
		t.Fatalf("state = %s, want active", got)
	}
}

func TestClassifyCustomThreshold(t *testing.T) {
	ref := day(2024, 6, 1)
	p := &patient.Patient{Status: patient.StatusActive}
	visits := []*visit.Visit{newVisit(dayPtr(2024, 5, 1), dayPtr(2024, 5, 20))}

	if got := (Policy{LateThresholdDays: 10}).Classify(p, visits, ref).State; got != StateLTFU {
		t.Fatalf("state = %s, want ltfu under 10-day threshold", got)
	}
	if got := (Policy{LateThresholdDays: 30}).Classify(p, visits, ref).State; got != StateActive {
		t.Fatalf("state = %s, want active under 30-day threshold", got)
	}
}
