package patient

import (
	"time"

	"github.com/google/uuid"
)

// Status is the administrative outcome recorded against a patient file.
// Deceased and transferred-out patients are censored from retention
// denominators by the reporting engine.
type Status string

const (
	StatusActive         Status = "active"
	StatusTransferredOut Status = "transferred_out"
	StatusDeceased       Status = "deceased"
	StatusUnknown        Status = "unknown"
)

// Patient maps to the patients table. DateOfBirth is nil when the
// upstream record never captured it; age stratification then reports
// the patient under the unknown-age group.
type Patient struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PNumber     string     `db:"p_number" json:"p_number"`
	DateOfBirth *time.Time `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender      string     `db:"gender" json:"gender"`
	SiteID      uuid.UUID  `db:"site_id" json:"site_id"`
	Status      Status     `db:"status" json:"status"`
	StatusDate  *time.Time `db:"status_date" json:"status_date,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}

// Enrollment maps to the enrollments table, one row per patient holding
// the ART initiation record. ARTStartRaw carries the date exactly as
// imported from the upstream system; ARTStart is its normalized form
// with sentinel placeholders mapped to nil.
type Enrollment struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   uuid.UUID  `db:"patient_id" json:"patient_id"`
	ARTStartRaw *string    `db:"art_start_date" json:"-"`
	ARTStart    *time.Time `json:"art_start_date,omitempty"`
	WHOStage    *int       `db:"who_stage" json:"who_stage,omitempty"`
	CD4Baseline *int       `db:"cd4_baseline" json:"cd4_baseline,omitempty"`
	RegimenCode *string    `db:"regimen_code" json:"regimen_code,omitempty"`
	EnrolledOn  *time.Time `db:"enrolled_on" json:"enrolled_on,omitempty"`
}

// Cohort is a program grouping of sites (typically a funding program
// or implementation round).
type Cohort struct {
	ID   uuid.UUID `db:"id" json:"id"`
	Name string    `db:"name" json:"name"`
}

// Site is a health site within a cohort.
type Site struct {
	ID       uuid.UUID `db:"id" json:"id"`
	CohortID uuid.UUID `db:"cohort_id" json:"cohort_id"`
	Name     string    `db:"name" json:"name"`
}

// Facility is a service delivery point within a site. Visits are
// recorded against facilities.
type Facility struct {
	ID     uuid.UUID `db:"id" json:"id"`
	SiteID uuid.UUID `db:"site_id" json:"site_id"`
	Name   string    `db:"name" json:"name"`
}

// Filter narrows the analysis population along the cohort hierarchy.
// All fields are optional; nil means no restriction.
type Filter struct {
	CohortID   *uuid.UUID
	SiteID     *uuid.UUID
	FacilityID *uuid.UUID
}

// FilterOptions lists the selectable values for each filter dimension.
type FilterOptions struct {
	Cohorts    []*Cohort   `json:"cohorts"`
	Sites      []*Site     `json:"sites"`
	Facilities []*Facility `json:"facilities"`
}
