package report

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/hivtrack/hivtrack/internal/platform/resultcache"
)

type stubStore struct {
	snap  *Snapshot
	err   error
	loads int
}

func (s *stubStore) Load(ctx context.Context, f FilterSet) (*Snapshot, error) {
	s.loads++
	if s.err != nil {
		return nil, s.err
	}
	return s.snap, nil
}

func newTestService(snap *Snapshot) (*Service, *stubStore) {
	store := &stubStore{snap: snap}
	svc := NewService(store, resultcache.NewMemory(), zerolog.Nop(), DefaultPolicy())
	svc.now = func() time.Time { return day(2024, 6, 1) }
	return svc, store
}

func TestComputeUnknownIndicator(t *testing.T) {
	svc, _ := newTestService(&Snapshot{})
	_, err := svc.Compute(context.Background(), "no_such_indicator", FilterSet{})
	if !errors.Is(err, ErrUnknownIndicator) {
		t.Fatalf("err = %v, want ErrUnknownIndicator", err)
	}
}

func TestComputeStoreErrorPropagates(t *testing.T) {
	svc, store := newTestService(nil)
	store.err = errors.New("connection refused")
	if _, err := svc.Compute(context.Background(), "ltfu_count", FilterSet{}); err == nil {
		t.Fatal("expected store error to propagate")
	}
}

func TestComputeServesFromCache(t *testing.T) {
	svc, store := newTestService(&Snapshot{})
	ctx := context.Background()

	first, err := svc.Compute(ctx, "total_enrolled", FilterSet{})
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Compute(ctx, "total_enrolled", FilterSet{})
	if err != nil {
		t.Fatal(err)
	}
	if store.loads != 1 {
		t.Errorf("store loaded %d times, want 1", store.loads)
	}
	if first.Total != second.Total || !first.GeneratedAt.Equal(second.GeneratedAt) {
		t.Error("cached result differs from computed result")
	}
}

func TestClearCacheForcesRecompute(t *testing.T) {
	svc, store := newTestService(&Snapshot{})
	ctx := context.Background()

	if _, err := svc.Compute(ctx, "ltfu_count", FilterSet{}); err != nil {
		t.Fatal(err)
	}
	if err := svc.ClearCache(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Compute(ctx, "ltfu_count", FilterSet{}); err != nil {
		t.Fatal(err)
	}
	if store.loads != 2 {
		t.Errorf("store loaded %d times, want 2 after cache clear", store.loads)
	}
}

func TestDistinctFiltersCacheSeparately(t *testing.T) {
	svc, store := newTestService(&Snapshot{})
	ctx := context.Background()

	if _, err := svc.Compute(ctx, "ltfu_count", FilterSet{}); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Compute(ctx, "ltfu_count", FilterSet{StartDate: dayPtr(2024, 1, 1)}); err != nil {
		t.Fatal(err)
	}
	if store.loads != 2 {
		t.Errorf("store loaded %d times, want 2 for distinct filters", store.loads)
	}
}

func TestComputeSection(t *testing.T) {
	svc, store := newTestService(&Snapshot{})
	ctx := context.Background()

	results, err := svc.ComputeSection(ctx, "deaths", FilterSet{})
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != len(sections["deaths"]) {
		t.Fatalf("got %d results, want %d", len(results), len(sections["deaths"]))
	}
	if store.loads != 1 {
		t.Errorf("store loaded %d times, want a single shared snapshot", store.loads)
	}

	if _, err := svc.ComputeSection(ctx, "nope", FilterSet{}); !errors.Is(err, ErrUnknownSection) {
		t.Fatalf("err = %v, want ErrUnknownSection", err)
	}
}

func TestTTLTiers(t *testing.T) {
	svc, _ := newTestService(&Snapshot{})

	if got := svc.ttlFor("mortality_rate", FilterSet{}); got != ttlMortality {
		t.Errorf("mortality ttl = %s, want %s", got, ttlMortality)
	}
	if got := svc.ttlFor("total_enrolled", FilterSet{}); got != ttlDemographic {
		t.Errorf("demographic ttl = %s, want %s", got, ttlDemographic)
	}
	if got := svc.ttlFor("ltfu_count", FilterSet{}); got != ttlDefault {
		t.Errorf("default ttl = %s, want %s", got, ttlDefault)
	}
	if got := svc.ttlFor("mortality_rate", FilterSet{StartDate: dayPtr(2024, 1, 1)}); got != ttlFiltered {
		t.Errorf("filtered ttl = %s, want %s", got, ttlFiltered)
	}
}

func TestEverySectionNameResolves(t *testing.T) {
	svc, _ := newTestService(&Snapshot{})
	for section, names := range sections {
		for _, name := range names {
			if _, ok := svc.registry[name]; !ok {
				t.Errorf("section %s references unregistered indicator %s", section, name)
			}
		}
	}
}
