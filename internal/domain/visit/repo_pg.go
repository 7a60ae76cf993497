package visit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

const visitCols = `v.id, v.patient_id, v.facility_id, v.instance, v.visit_type,
	v.scheduled_on, v.attended_on, v.next_appointment, v.transfer_type,
	d.pregnant, d.viral_load, d.cd4_count, d.who_stage, d.tb_status, d.switch_reason, d.weight_kg`

type repoPG struct {
	pool *pgxpool.Pool
}

// NewRepoPG returns a Postgres-backed visit repository.
func NewRepoPG(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func scanVisit(row pgx.Row) (*Visit, error) {
	var (
		v Visit
		d Detail
	)
	err := row.Scan(
		&v.ID, &v.PatientID, &v.FacilityID, &v.Instance, &v.Type,
		&v.Scheduled, &v.Actual, &v.Next, &v.TransferType,
		&d.Pregnant, &d.ViralLoad, &d.CD4Count, &d.WHOStage, &d.TBStatus, &d.SwitchReason, &d.WeightKg,
	)
	if err != nil {
		return nil, err
	}
	v.Scheduled = chrono.Normalize(v.Scheduled)
	v.Actual = chrono.Normalize(v.Actual)
	v.Next = chrono.Normalize(v.Next)
	if d.Pregnant != nil || d.ViralLoad != nil || d.CD4Count != nil ||
		d.WHOStage != nil || d.TBStatus != nil || d.SwitchReason != nil || d.WeightKg != nil {
		d.VisitID = v.ID
		v.Detail = &d
	}
	return &v, nil
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error) {
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM visits WHERE patient_id = $1`, patientID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count visits: %w", err)
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM visits v
		LEFT JOIN visit_details d ON d.visit_id = v.id
		WHERE v.patient_id = $1
		ORDER BY v.attended_on ASC NULLS LAST, v.instance ASC
		LIMIT $2 OFFSET $3`, visitCols), patientID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list visits: %w", err)
	}
	defer rows.Close()

	var visits []*Visit
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan visit: %w", err)
		}
		visits = append(visits, v)
	}
	return visits, total, rows.Err()
}

func (r *repoPG) ListByPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*Visit, error) {
	out := make(map[uuid.UUID][]*Visit, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT %s
		FROM visits v
		LEFT JOIN visit_details d ON d.visit_id = v.id
		WHERE v.patient_id = ANY($1)
		ORDER BY v.patient_id, v.attended_on ASC NULLS LAST, v.instance ASC`, visitCols), ids)
	if err != nil {
		return nil, fmt.Errorf("list visits by patients: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, fmt.Errorf("scan visit: %w", err)
		}
		out[v.PatientID] = append(out[v.PatientID], v)
	}
	return out, rows.Err()
}
