package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository provides read access to patient records. Record mutation
// happens in the upstream clinic systems; this service only reads.
type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	GetByPNumber(ctx context.Context, pNumber string) (*Patient, error)
	List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error)

	// ListForAnalysis returns every patient matching the filter without
	// pagination; the reporting engine classifies the full population.
	ListForAnalysis(ctx context.Context, f Filter) ([]*Patient, error)

	// EnrollmentsByPatient returns the ART initiation record for each of
	// the given patients, keyed by patient id. Patients never initiated
	// on ART are absent from the map.
	EnrollmentsByPatient(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID]*Enrollment, error)

	ListCohorts(ctx context.Context) ([]*Cohort, error)
	ListSites(ctx context.Context, cohortID *uuid.UUID) ([]*Site, error)
	ListFacilities(ctx context.Context, siteID *uuid.UUID) ([]*Facility, error)
}
