package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

type repoPG struct{ pool *pgxpool.Pool }

func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `p.id, p.p_number, p.date_of_birth, p.gender, p.site_id,
	p.status, p.status_date, p.created_at, p.updated_at`

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	err := row.Scan(&p.ID, &p.PNumber, &p.DateOfBirth, &p.Gender, &p.SiteID,
		&p.Status, &p.StatusDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	// Imported records can carry placeholder dates; strip them here so
	// nothing downstream ever sees one.
	p.DateOfBirth = chrono.Normalize(p.DateOfBirth)
	p.StatusDate = chrono.Normalize(p.StatusDate)
	return &p, nil
}

// filterClause renders the cohort hierarchy filter as WHERE conditions
// against the patients alias "p". Args are appended starting at $1.
func filterClause(f Filter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.CohortID != nil {
		args = append(args, *f.CohortID)
		conds = append(conds, fmt.Sprintf(
			`p.site_id IN (SELECT id FROM sites WHERE cohort_id = $%d)`, len(args)))
	}
	if f.SiteID != nil {
		args = append(args, *f.SiteID)
		conds = append(conds, fmt.Sprintf(`p.site_id = $%d`, len(args)))
	}
	if f.FacilityID != nil {
		args = append(args, *f.FacilityID)
		conds = append(conds, fmt.Sprintf(
			`EXISTS (SELECT 1 FROM visits v WHERE v.patient_id = p.id AND v.facility_id = $%d)`, len(args)))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients p WHERE p.id = $1`, id))
}

func (r *repoPG) GetByPNumber(ctx context.Context, pNumber string) (*Patient, error) {
	return scanPatient(r.pool.QueryRow(ctx,
		`SELECT `+patientCols+` FROM patients p WHERE p.p_number = $1`, pNumber))
}

func (r *repoPG) List(ctx context.Context, f Filter, limit, offset int) ([]*Patient, int, error) {
	where, args := filterClause(f)

	var total int
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM patients p`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients p`+where+
			fmt.Sprintf(` ORDER BY p.p_number LIMIT $%d OFFSET $%d`, len(args)-1, len(args)),
		args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, p)
	}
	return items, total, rows.Err()
}

func (r *repoPG) ListForAnalysis(ctx context.Context, f Filter) ([]*Patient, error) {
	where, args := filterClause(f)
	rows, err := r.pool.Query(ctx,
		`SELECT `+patientCols+` FROM patients p`+where+` ORDER BY p.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	return items, rows.Err()
}

func (r *repoPG) EnrollmentsByPatient(ctx context.Context, patientIDs []uuid.UUID) (map[uuid.UUID]*Enrollment, error) {
	if len(patientIDs) == 0 {
		return map[uuid.UUID]*Enrollment{}, nil
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, art_start_date, who_stage, cd4_baseline, regimen_code, enrolled_on
		FROM enrollments WHERE patient_id = ANY($1)`, patientIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[uuid.UUID]*Enrollment, len(patientIDs))
	for rows.Next() {
		var e Enrollment
		if err := rows.Scan(&e.ID, &e.PatientID, &e.ARTStartRaw, &e.WHOStage,
			&e.CD4Baseline, &e.RegimenCode, &e.EnrolledOn); err != nil {
			return nil, err
		}
		if e.ARTStartRaw != nil {
			e.ARTStart = chrono.ParseLegacy(*e.ARTStartRaw)
		}
		e.EnrolledOn = chrono.Normalize(e.EnrolledOn)
		out[e.PatientID] = &e
	}
	return out, rows.Err()
}

func (r *repoPG) ListCohorts(ctx context.Context) ([]*Cohort, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, name FROM cohorts ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Cohort
	for rows.Next() {
		var c Cohort
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		items = append(items, &c)
	}
	return items, rows.Err()
}

func (r *repoPG) ListSites(ctx context.Context, cohortID *uuid.UUID) ([]*Site, error) {
	query := `SELECT id, cohort_id, name FROM sites`
	var args []interface{}
	if cohortID != nil {
		query += ` WHERE cohort_id = $1`
		args = append(args, *cohortID)
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Site
	for rows.Next() {
		var s Site
		if err := rows.Scan(&s.ID, &s.CohortID, &s.Name); err != nil {
			return nil, err
		}
		items = append(items, &s)
	}
	return items, rows.Err()
}

func (r *repoPG) ListFacilities(ctx context.Context, siteID *uuid.UUID) ([]*Facility, error) {
	query := `SELECT id, site_id, name FROM facilities`
	var args []interface{}
	if siteID != nil {
		query += ` WHERE site_id = $1`
		args = append(args, *siteID)
	}
	rows, err := r.pool.Query(ctx, query+` ORDER BY name`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Facility
	for rows.Next() {
		var fac Facility
		if err := rows.Scan(&fac.ID, &fac.SiteID, &fac.Name); err != nil {
			return nil, err
		}
		items = append(items, &fac)
	}
	return items, rows.Err()
}
