package visit

import (
	"time"

	"github.com/google/uuid"
)

// Visit types.
const (
	TypeInitial  = "initial"
	TypeFollowUp = "followup"
)

// Transfer directions recorded on a visit.
const (
	TransferIn  = "in"
	TransferOut = "out"
)

// TB screening outcomes captured on a visit detail. A non-nil TBStatus
// of any value counts as screened.
const (
	TBStatusNone       = "none"
	TBStatusSuspected  = "suspected"
	TBStatusPreventive = "preventive_therapy"
	TBStatusTreatment  = "on_treatment"
)

// Regimen switch reasons.
const (
	SwitchReasonSideEffects      = "side_effects"
	SwitchReasonTreatmentFailure = "treatment_failure"
	SwitchReasonStockout         = "stockout"
)

// Visit maps to the visits table. Scheduled is the appointment date
// given at the previous visit, Actual the date the patient presented,
// and Next the appointment issued for the following visit. Any of the
// three can be nil on incomplete records.
type Visit struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	FacilityID   uuid.UUID  `db:"facility_id" json:"facility_id"`
	Instance     int        `db:"instance" json:"instance"`
	Type         string     `db:"visit_type" json:"visit_type"`
	Scheduled    *time.Time `db:"scheduled_on" json:"scheduled_on,omitempty"`
	Actual       *time.Time `db:"attended_on" json:"attended_on,omitempty"`
	Next         *time.Time `db:"next_appointment" json:"next_appointment,omitempty"`
	TransferType *string    `db:"transfer_type" json:"transfer_type,omitempty"`
	Detail       *Detail    `json:"detail,omitempty"`
}

// Detail maps to the visit_details table, the clinical observations
// captured during a visit.
type Detail struct {
	VisitID      uuid.UUID `db:"visit_id" json:"visit_id"`
	Pregnant     *bool     `db:"pregnant" json:"pregnant,omitempty"`
	ViralLoad    *int      `db:"viral_load" json:"viral_load,omitempty"`
	CD4Count     *int      `db:"cd4_count" json:"cd4_count,omitempty"`
	WHOStage     *int      `db:"who_stage" json:"who_stage,omitempty"`
	TBStatus     *string   `db:"tb_status" json:"tb_status,omitempty"`
	SwitchReason *string   `db:"switch_reason" json:"switch_reason,omitempty"`
	WeightKg     *float64  `db:"weight_kg" json:"weight_kg,omitempty"`
}

// IsTransferOut reports whether the visit recorded a transfer out of
// the program.
func (v *Visit) IsTransferOut() bool {
	return v.TransferType != nil && *v.TransferType == TransferOut
}

// HasViralLoad reports whether a viral load result was captured.
func (v *Visit) HasViralLoad() bool {
	return v.Detail != nil && v.Detail.ViralLoad != nil
}

// OnTBTreatment reports whether the visit detail places the patient on
// TB preventive therapy or treatment.
func (d *Detail) OnTBTreatment() bool {
	if d == nil || d.TBStatus == nil {
		return false
	}
	return *d.TBStatus == TBStatusPreventive || *d.TBStatus == TBStatusTreatment
}
