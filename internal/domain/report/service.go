package report

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/hivtrack/hivtrack/internal/platform/resultcache"
	"github.com/hivtrack/hivtrack/pkg/chrono"
)

// Cache TTL tiers. Filtered ad-hoc queries expire fast; mortality and
// demographic aggregates change slowly and cache long.
const (
	ttlFiltered    = 15 * time.Minute
	ttlDefault     = 30 * time.Minute
	ttlMortality   = 24 * time.Hour
	ttlDemographic = 2 * time.Hour
)

type aggregator func(snap *Snapshot, f FilterSet, ref time.Time) *Result

// Service dispatches indicator computations, memoizing results in the
// configured cache store.
type Service struct {
	store    SnapshotStore
	cache    resultcache.Store
	log      zerolog.Logger
	policy   Policy
	now      func() time.Time
	registry map[string]aggregator
	ttls     map[string]time.Duration
}

// NewService wires the snapshot store and cache into a ready
// dispatcher with every indicator registered.
func NewService(store SnapshotStore, cache resultcache.Store, log zerolog.Logger, policy Policy) *Service {
	s := &Service{
		store:  store,
		cache:  cache,
		log:    log,
		policy: policy,
		now:    time.Now,
	}
	s.register()
	return s
}

// IndicatorNames lists every registered indicator, sorted.
func (s *Service) IndicatorNames() []string {
	names := make([]string, 0, len(s.registry))
	for name := range s.registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compute resolves one indicator under a filter set, serving from
// cache when a fresh entry exists. Unknown names return
// ErrUnknownIndicator.
func (s *Service) Compute(ctx context.Context, name string, f FilterSet) (*Result, error) {
	fn, ok := s.registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownIndicator, name)
	}

	key := f.CacheKey(name)
	if res := s.cached(ctx, key); res != nil {
		return res, nil
	}

	snap, err := s.store.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	res := s.finish(fn(snap, f, s.refDate()), f)
	s.put(ctx, key, res, s.ttlFor(name, f))
	return res, nil
}

// ComputeSection runs every indicator in a named analysis section over
// a single shared snapshot.
func (s *Service) ComputeSection(ctx context.Context, section string, f FilterSet) ([]*Result, error) {
	names, ok := sections[section]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSection, section)
	}

	key := f.CacheKey("section_" + section)
	if raw, hit, err := s.cache.Get(ctx, key); err == nil && hit {
		var results []*Result
		if err := json.Unmarshal(raw, &results); err == nil {
			return results, nil
		}
	} else if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache read failed")
	}

	snap, err := s.store.Load(ctx, f)
	if err != nil {
		return nil, err
	}
	ref := s.refDate()
	results := make([]*Result, 0, len(names))
	for _, name := range names {
		fn, ok := s.registry[name]
		if !ok {
			continue
		}
		results = append(results, s.finish(fn(snap, f, ref), f))
	}

	if raw, err := json.Marshal(results); err == nil {
		s.putRaw(ctx, key, raw, s.ttlFor(names[0], f))
	}
	return results, nil
}

// ClearCache drops every cached result. Invalidation is wholesale;
// callers run it after bulk data changes.
func (s *Service) ClearCache(ctx context.Context) error {
	return s.cache.Clear(ctx)
}

// refDate anchors every classification at today's date, midnight UTC,
// so repeated calls within a day hit identical cache entries.
func (s *Service) refDate() time.Time {
	return chrono.Date(s.now().UTC())
}

func (s *Service) finish(res *Result, f FilterSet) *Result {
	res.Coverage = f.Coverage()
	res.GeneratedAt = s.now().UTC()
	if len(res.Extra) == 0 {
		res.Extra = nil
	}
	return res
}

func (s *Service) cached(ctx context.Context, key string) *Result {
	raw, hit, err := s.cache.Get(ctx, key)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache read failed")
		return nil
	}
	if !hit {
		return nil
	}
	var res Result
	if err := json.Unmarshal(raw, &res); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("dropping undecodable cache entry")
		return nil
	}
	return &res
}

func (s *Service) put(ctx context.Context, key string, res *Result, ttl time.Duration) {
	raw, err := json.Marshal(res)
	if err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}
	s.putRaw(ctx, key, raw, ttl)
}

func (s *Service) putRaw(ctx context.Context, key string, raw []byte, ttl time.Duration) {
	if err := s.cache.Set(ctx, key, raw, ttl); err != nil {
		s.log.Debug().Err(err).Str("key", key).Msg("cache write failed")
	}
}

func (s *Service) ttlFor(name string, f FilterSet) time.Duration {
	if f.Filtered() {
		return ttlFiltered
	}
	if ttl, ok := s.ttls[name]; ok {
		return ttl
	}
	return ttlDefault
}
