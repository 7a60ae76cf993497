package report

import "sort"

// Analysis sections group related indicators for one-call reporting
// screens.
var sections = map[string][]string{
	"summary": {
		"total_enrolled", "enrolled_on_art", "children_on_art",
		"median_art_duration", "summary_statistics",
	},
	"retention": {
		"retention_rates", "ltfu_count", "reengaged_count",
		"appointment_adherence", "missed_visit_severity",
	},
	"viral_load": {
		"suppressed_viral_load", "viral_suppression_6_months",
		"viral_suppression_12_months", "viral_suppression_24_months",
		"time_to_first_viral_load", "vl_retest_after_high",
	},
	"deaths": {
		"deaths_among_art", "deaths_over_time", "age_at_death",
		"survival_analysis", "mortality_rate",
	},
	"tb": {
		"tb_screening", "on_tb_treatment",
	},
	"maternal": {
		"initiated_art_while_pregnant", "pregnant_retained_12_months",
		"pregnant_retained_24_months", "pregnant_ltfu_12_months",
		"pregnant_died_12_months",
	},
}

// SectionNames lists the available sections, sorted.
func SectionNames() []string {
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
