package patient

import (
	"context"

	"github.com/google/uuid"
)

type Service struct {
	patients Repository
}

func NewService(patients Repository) *Service {
	return &Service{patients: patients}
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.patients.GetByID(ctx, id)
}

func (s *Service) GetPatientByPNumber(ctx context.Context, pNumber string) (*Patient, error) {
	return s.patients.GetByPNumber(ctx, pNumber)
}

func (s *Service) ListPatients(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	return s.patients.List(ctx, f, limit, offset)
}

// FilterOptions returns the selectable cohort, site, and facility values
// for report filter dropdowns. Site and facility lists narrow to the
// chosen parent when one is given.
func (s *Service) FilterOptions(ctx context.Context, cohortID, siteID *uuid.UUID) (*FilterOptions, error) {
	cohorts, err := s.patients.ListCohorts(ctx)
	if err != nil {
		return nil, err
	}
	sites, err := s.patients.ListSites(ctx, cohortID)
	if err != nil {
		return nil, err
	}
	facilities, err := s.patients.ListFacilities(ctx, siteID)
	if err != nil {
		return nil, err
	}
	return &FilterOptions{Cohorts: cohorts, Sites: sites, Facilities: facilities}, nil
}
