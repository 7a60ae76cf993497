package report

import (
	"context"
	"encoding/json"
	"time"

	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// DashboardStats is the headline view for the landing screen.
type DashboardStats struct {
	Patients            int       `json:"patients"`
	OnART               int       `json:"on_art"`
	Active              int       `json:"active"`
	ActivePercentage    float64   `json:"active_percentage"`
	AvgVisitsPerPatient float64   `json:"avg_visits_per_patient"`
	AvgARTYears         float64   `json:"avg_art_years"`
	NewLastMonth        int       `json:"new_last_month"`
	Coverage            string    `json:"coverage"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// Dashboard computes the headline stats under a filter set, cached on
// the default TTL tier.
func (s *Service) Dashboard(ctx context.Context, f FilterSet) (*DashboardStats, error) {
	key := f.CacheKey("dashboard")
	if raw, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var stats DashboardStats
		if err := json.Unmarshal(raw, &stats); err == nil {
			return &stats, nil
		}
	}

	snap, err := s.store.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	ref := s.refDate()
	monthAgo := chrono.AddMonths(ref, -1)

	stats := &DashboardStats{Coverage: f.Coverage(), GeneratedAt: s.now().UTC()}
	var visits int
	var artMonths []float64
	for _, h := range snap.Patients {
		stats.Patients++
		visits += len(h.Visits)
		if onART(h, ref) {
			stats.OnART++
			if m := chrono.MonthsBetween(*h.ARTStart(), ref); m >= 0 {
				artMonths = append(artMonths, float64(m))
			}
		}
		if anchor := enrollmentAnchor(h); anchor != nil && anchor.After(monthAgo) && !anchor.After(ref) {
			stats.NewLastMonth++
		}
		if s.policy.Classify(h.Patient, h.Visits, ref).State == StateActive {
			stats.Active++
		}
	}
	stats.ActivePercentage = percentage(stats.Active, stats.Patients)
	if stats.Patients > 0 {
		stats.AvgVisitsPerPatient = round1(float64(visits) / float64(stats.Patients))
	}
	stats.AvgARTYears = round1(chrono.Mean(artMonths) / 12)

	if raw, err := json.Marshal(stats); err == nil {
		s.putRaw(ctx, key, raw, s.ttlFor("dashboard", f))
	}
	return stats, nil
}
