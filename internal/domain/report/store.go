package report

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/internal/domain/visit"
)

// PatientHistory bundles a patient with the records every aggregator
// needs: the enrollment record and the full visit history ordered by
// attended date.
type PatientHistory struct {
	Patient    *patient.Patient
	Enrollment *patient.Enrollment
	Visits     []*visit.Visit
}

// ARTStart returns the parsed ART start date, nil when the enrollment
// record is missing or carried the legacy sentinel.
func (h *PatientHistory) ARTStart() *time.Time {
	if h.Enrollment == nil {
		return nil
	}
	return h.Enrollment.ARTStart
}

// Snapshot is the point-in-time record set an indicator computes over.
type Snapshot struct {
	Patients []*PatientHistory
	TakenAt  time.Time
}

// SnapshotStore loads the filtered record snapshot backing one
// computation.
type SnapshotStore interface {
	Load(ctx context.Context, f FilterSet) (*Snapshot, error)
}

type snapshotStore struct {
	patients patient.Repository
	visits   visit.Repository
}

// NewSnapshotStore composes the patient and visit repositories into a
// snapshot loader.
func NewSnapshotStore(patients patient.Repository, visits visit.Repository) SnapshotStore {
	return &snapshotStore{patients: patients, visits: visits}
}

func (s *snapshotStore) Load(ctx context.Context, f FilterSet) (*Snapshot, error) {
	pts, err := s.patients.ListForAnalysis(ctx, f.PatientFilter())
	if err != nil {
		return nil, fmt.Errorf("load patients: %w", err)
	}

	ids := make([]uuid.UUID, len(pts))
	for i, p := range pts {
		ids[i] = p.ID
	}

	enrollments, err := s.patients.EnrollmentsByPatient(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}
	histories, err := s.visits.ListByPatients(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load visits: %w", err)
	}

	snap := &Snapshot{
		Patients: make([]*PatientHistory, len(pts)),
		TakenAt:  time.Now().UTC(),
	}
	for i, p := range pts {
		snap.Patients[i] = &PatientHistory{
			Patient:    p,
			Enrollment: enrollments[p.ID],
			Visits:     histories[p.ID],
		}
	}
	return snap, nil
}
