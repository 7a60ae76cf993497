package patient

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
)

// -- Mock Repository --

type mockRepo struct {
	patients    map[uuid.UUID]*Patient
	enrollments map[uuid.UUID]*Enrollment
	cohorts     []*Cohort
	sites       []*Site
	facilities  []*Facility
}

func newMockRepo() *mockRepo {
	return &mockRepo{
		patients:    make(map[uuid.UUID]*Patient),
		enrollments: make(map[uuid.UUID]*Enrollment),
	}
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, fmt.Errorf("not found")
	}
	return p, nil
}

func (m *mockRepo) GetByPNumber(_ context.Context, pNumber string) (*Patient, error) {
	for _, p := range m.patients {
		if p.PNumber == pNumber {
			return p, nil
		}
	}
	return nil, fmt.Errorf("not found")
}

func (m *mockRepo) List(_ context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	var r []*Patient
	for _, p := range m.patients {
		if f.SiteID != nil && p.SiteID != *f.SiteID {
			continue
		}
		r = append(r, p)
	}
	return r, len(r), nil
}

func (m *mockRepo) ListForAnalysis(_ context.Context, f Filter) ([]*Patient, error) {
	items, _, err := m.List(context.Background(), f, 0, 0)
	return items, err
}

func (m *mockRepo) EnrollmentsByPatient(_ context.Context, ids []uuid.UUID) (map[uuid.UUID]*Enrollment, error) {
	out := make(map[uuid.UUID]*Enrollment)
	for _, id := range ids {
		if e, ok := m.enrollments[id]; ok {
			out[id] = e
		}
	}
	return out, nil
}

func (m *mockRepo) ListCohorts(_ context.Context) ([]*Cohort, error) { return m.cohorts, nil }

func (m *mockRepo) ListSites(_ context.Context, cohortID *uuid.UUID) ([]*Site, error) {
	if cohortID == nil {
		return m.sites, nil
	}
	var r []*Site
	for _, s := range m.sites {
		if s.CohortID == *cohortID {
			r = append(r, s)
		}
	}
	return r, nil
}

func (m *mockRepo) ListFacilities(_ context.Context, siteID *uuid.UUID) ([]*Facility, error) {
	if siteID == nil {
		return m.facilities, nil
	}
	var r []*Facility
	for _, f := range m.facilities {
		if f.SiteID == *siteID {
			r = append(r, f)
		}
	}
	return r, nil
}

// -- Service Tests --

func TestGetPatientByPNumber(t *testing.T) {
	repo := newMockRepo()
	p := &Patient{ID: uuid.New(), PNumber: "PN-001", Gender: "F", Status: StatusActive}
	repo.patients[p.ID] = p
	svc := NewService(repo)

	got, err := svc.GetPatientByPNumber(context.Background(), "PN-001")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != p.ID {
		t.Errorf("expected %s, got %s", p.ID, got.ID)
	}

	if _, err := svc.GetPatientByPNumber(context.Background(), "PN-999"); err == nil {
		t.Error("expected error for unknown p_number")
	}
}

func TestFilterOptions_NarrowsByParent(t *testing.T) {
	repo := newMockRepo()
	c1, c2 := uuid.New(), uuid.New()
	s1 := uuid.New()
	repo.cohorts = []*Cohort{{ID: c1, Name: "Round 1"}, {ID: c2, Name: "Round 2"}}
	repo.sites = []*Site{
		{ID: s1, CohortID: c1, Name: "Central"},
		{ID: uuid.New(), CohortID: c2, Name: "North"},
	}
	repo.facilities = []*Facility{
		{ID: uuid.New(), SiteID: s1, Name: "Central Clinic A"},
		{ID: uuid.New(), SiteID: uuid.New(), Name: "Other"},
	}
	svc := NewService(repo)

	opts, err := svc.FilterOptions(context.Background(), &c1, &s1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Cohorts) != 2 {
		t.Errorf("expected all cohorts, got %d", len(opts.Cohorts))
	}
	if len(opts.Sites) != 1 || opts.Sites[0].Name != "Central" {
		t.Errorf("expected sites narrowed to cohort, got %v", opts.Sites)
	}
	if len(opts.Facilities) != 1 || opts.Facilities[0].Name != "Central Clinic A" {
		t.Errorf("expected facilities narrowed to site, got %v", opts.Facilities)
	}
}

func TestFilterOptions_Unfiltered(t *testing.T) {
	repo := newMockRepo()
	repo.cohorts = []*Cohort{{ID: uuid.New(), Name: "Round 1"}}
	repo.sites = []*Site{{ID: uuid.New(), CohortID: uuid.New(), Name: "Central"}}
	svc := NewService(repo)

	opts, err := svc.FilterOptions(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(opts.Sites) != 1 {
		t.Errorf("expected all sites, got %d", len(opts.Sites))
	}
}
