package report

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/hivtrack/hivtrack/internal/domain/patient"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// FilterSet scopes an indicator computation. All fields are optional;
// cohort, site and facility narrow hierarchically and the date range
// narrows by each indicator's own anchor date.
type FilterSet struct {
	CohortID   *uuid.UUID `json:"cohort_id,omitempty"`
	SiteID     *uuid.UUID `json:"site_id,omitempty"`
	FacilityID *uuid.UUID `json:"facility_id,omitempty"`
	StartDate  *time.Time `json:"start_date,omitempty"`
	EndDate    *time.Time `json:"end_date,omitempty"`
}

// ParseFilterSet reads filter query parameters. Malformed values are
// dropped field-wise with a debug log; the computation proceeds with
// whatever parsed cleanly.
func ParseFilterSet(c echo.Context, log zerolog.Logger) FilterSet {
	var f FilterSet
	parseID := func(param string, dst **uuid.UUID) {
		raw := c.QueryParam(param)
		if raw == "" {
			return
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Debug().Str("param", param).Str("value", raw).Msg("ignoring malformed filter id")
			return
		}
		*dst = &id
	}
	parseDate := func(param string, dst **time.Time) {
		raw := c.QueryParam(param)
		if raw == "" {
			return
		}
		t, err := time.Parse(chrono.DateLayout, raw)
		if err != nil {
			log.Debug().Str("param", param).Str("value", raw).Msg("ignoring malformed filter date")
			return
		}
		t = t.UTC()
		*dst = &t
	}
	parseID("cohort_id", &f.CohortID)
	parseID("site_id", &f.SiteID)
	parseID("facility_id", &f.FacilityID)
	parseDate("start_date", &f.StartDate)
	parseDate("end_date", &f.EndDate)
	return f
}

// Filtered reports whether any scope field is set. Filtered queries
// get the short cache TTL.
func (f FilterSet) Filtered() bool {
	return f.CohortID != nil || f.SiteID != nil || f.FacilityID != nil ||
		f.StartDate != nil || f.EndDate != nil
}

// PatientFilter projects the hierarchy fields onto the patient query
// contract. The date range is applied in memory per indicator.
func (f FilterSet) PatientFilter() patient.Filter {
	return patient.Filter{
		CohortID:   f.CohortID,
		SiteID:     f.SiteID,
		FacilityID: f.FacilityID,
	}
}

// InRange reports whether an anchor date falls inside the configured
// date range. With no range set every date passes; a nil anchor fails
// any configured range.
func (f FilterSet) InRange(t *time.Time) bool {
	if f.StartDate == nil && f.EndDate == nil {
		return true
	}
	if t == nil {
		return false
	}
	if f.StartDate != nil && t.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && t.After(*f.EndDate) {
		return false
	}
	return true
}

func (f FilterSet) canonical() string {
	part := func(id *uuid.UUID) string {
		if id == nil {
			return ""
		}
		return id.String()
	}
	date := func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format(chrono.DateLayout)
	}
	return fmt.Sprintf("cohort=%s|site=%s|facility=%s|start=%s|end=%s",
		part(f.CohortID), part(f.SiteID), part(f.FacilityID),
		date(f.StartDate), date(f.EndDate))
}

// CacheKey derives the deterministic cache key for an indicator under
// this filter set.
func (f FilterSet) CacheKey(indicator string) string {
	sum := sha256.Sum256([]byte(f.canonical()))
	return indicator + ":" + hex.EncodeToString(sum[:])[:16]
}

// Coverage renders a human-readable description of the scope for
// display alongside results.
func (f FilterSet) Coverage() string {
	switch {
	case f.FacilityID != nil:
		return "facility " + f.FacilityID.String()
	case f.SiteID != nil:
		return "all facilities in site " + f.SiteID.String()
	case f.CohortID != nil:
		return "all sites in cohort " + f.CohortID.String()
	default:
		return "all cohorts"
	}
}
