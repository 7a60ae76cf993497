package report

import "time"

var retentionHorizons = []int{6, 12, 24, 60, 120, 180, 240, 300}

func (s *Service) register() {
	s.registry = map[string]aggregator{
		"total_enrolled":      s.totalEnrolled,
		"enrolled_on_art":     s.enrolledOnART,
		"unknown_age":         s.unknownAge,
		"children_on_art":     s.childrenOnART,
		"median_art_duration": s.medianARTDuration,
		"summary_statistics":  s.summaryStatistics,

		"retention_rates": s.retentionRates,

		"ltfu_count":         s.ltfuCount,
		"reengaged_count":    s.reengagedCount,
		"ltfu_and_reengaged": s.ltfuAndReengaged,

		"missed_appointments":       s.missedAppointments,
		"missed_appointment_visits": s.missedAppointmentVisits,
		"missed_visit_severity":     s.missedVisitSeverity,
		"appointment_adherence":     s.appointmentAdherence,

		"suppressed_viral_load":    s.suppressedViralLoad,
		"time_to_first_viral_load": s.timeToFirstViralLoad,
		"vl_retest_after_high":     s.vlRetestAfterHigh,

		"deaths_among_art":  s.deathsAmongART,
		"deaths_over_time":  s.deathsOverTime,
		"age_at_death":      s.ageAtDeath,
		"survival_analysis": s.survivalAnalysis,
		"mortality_rate":    s.mortalityRate,

		"tb_screening":    s.tbScreening,
		"on_tb_treatment": s.onTBTreatment,

		"transferred_out":  s.transferredOut,
		"regimen_switches": s.regimenSwitches,

		"initiated_art_while_pregnant": s.initiatedARTWhilePregnant,
		"pregnant_ltfu_12_months":      s.pregnantLTFU12Months,
		"pregnant_died_12_months":      s.pregnantDied12Months,
	}

	for _, months := range retentionHorizons {
		s.registry[retainedName(months)] = s.retainedAt(months)
	}
	for _, months := range []int{6, 12, 24} {
		s.registry[suppressionName(months)] = s.viralSuppressionAt(months)
	}
	for _, months := range []int{12, 24} {
		s.registry[pregnantRetainedName(months)] = s.pregnantRetainedAt(months)
	}

	s.ttls = map[string]time.Duration{
		"total_enrolled":      ttlDemographic,
		"enrolled_on_art":     ttlDemographic,
		"unknown_age":         ttlDemographic,
		"children_on_art":     ttlDemographic,
		"median_art_duration": ttlDemographic,
		"summary_statistics":  ttlDemographic,
		"regimen_switches":    ttlDemographic,

		"deaths_among_art":  ttlMortality,
		"deaths_over_time":  ttlMortality,
		"age_at_death":      ttlMortality,
		"survival_analysis": ttlMortality,
		"mortality_rate":    ttlMortality,
	}
}
