package visit

import (
	"context"

	"github.com/google/uuid"
)

// Repository is the data access contract for visits.
type Repository interface {
	// ListByPatient returns one patient's visits ordered by attended
	// date ascending, with clinical details attached.
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Visit, int, error)

	// ListByPatients returns the full visit history for every patient
	// in ids, keyed by patient id. Each slice is ordered by attended
	// date ascending with nil dates last.
	ListByPatients(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID][]*Visit, error)
}
