package report

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
)

func parseFrom(t *testing.T, query string) FilterSet {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/reports/indicators/x?"+query, nil)
	c := e.NewContext(req, httptest.NewRecorder())
	return ParseFilterSet(c, zerolog.Nop())
}

func TestParseFilterSet(t *testing.T) {
	site := uuid.New()
	f := parseFrom(t, "site_id="+site.String()+"&start_date=2024-01-01&end_date=2024-06-30")

	if f.SiteID == nil || *f.SiteID != site {
		t.Fatalf("site id = %v, want %s", f.SiteID, site)
	}
	if f.StartDate == nil || !f.StartDate.Equal(day(2024, 1, 1)) {
		t.Errorf("start date = %v", f.StartDate)
	}
	if f.EndDate == nil || !f.EndDate.Equal(day(2024, 6, 30)) {
		t.Errorf("end date = %v", f.EndDate)
	}
	if !f.Filtered() {
		t.Error("expected Filtered() = true")
	}
}

func TestParseFilterSetDropsMalformedFields(t *testing.T) {
	cohort := uuid.New()
	f := parseFrom(t, "cohort_id="+cohort.String()+"&site_id=not-a-uuid&start_date=junk")

	if f.CohortID == nil || *f.CohortID != cohort {
		t.Fatalf("cohort id = %v, want %s", f.CohortID, cohort)
	}
	if f.SiteID != nil {
		t.Errorf("malformed site id kept: %v", f.SiteID)
	}
	if f.StartDate != nil {
		t.Errorf("malformed start date kept: %v", f.StartDate)
	}
}

func TestCacheKeyDeterministic(t *testing.T) {
	site := uuid.New()
	a := FilterSet{SiteID: &site, StartDate: dayPtr(2024, 1, 1)}
	b := FilterSet{SiteID: &site, StartDate: dayPtr(2024, 1, 1)}

	if a.CacheKey("ltfu_count") != b.CacheKey("ltfu_count") {
		t.Error("identical filters produced different keys")
	}
	if a.CacheKey("ltfu_count") == a.CacheKey("mortality_rate") {
		t.Error("different indicators share a key")
	}

	other := uuid.New()
	c := FilterSet{SiteID: &other, StartDate: dayPtr(2024, 1, 1)}
	if a.CacheKey("ltfu_count") == c.CacheKey("ltfu_count") {
		t.Error("different filters share a key")
	}
}

func TestInRange(t *testing.T) {
	f := FilterSet{StartDate: dayPtr(2024, 1, 1), EndDate: dayPtr(2024, 12, 31)}

	if !f.InRange(dayPtr(2024, 6, 1)) {
		t.Error("in-range date rejected")
	}
	if f.InRange(dayPtr(2023, 12, 31)) {
		t.Error("date before range accepted")
	}
	if f.InRange(dayPtr(2025, 1, 1)) {
		t.Error("date after range accepted")
	}
	if f.InRange(nil) {
		t.Error("nil anchor accepted against a configured range")
	}

	open := FilterSet{}
	if !open.InRange(nil) || !open.InRange(dayPtr(2024, 6, 1)) {
		t.Error("unbounded filter should accept everything")
	}
}

func TestCoverage(t *testing.T) {
	if got := (FilterSet{}).Coverage(); got != "all cohorts" {
		t.Errorf("coverage = %q", got)
	}
	site := uuid.New()
	if got := (FilterSet{SiteID: &site}).Coverage(); got != "all facilities in site "+site.String() {
		t.Errorf("coverage = %q", got)
	}
}
