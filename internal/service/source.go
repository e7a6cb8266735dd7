package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"carcompare-api/internal/cache"
	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
	"carcompare-api/internal/seed"
	"carcompare-api/internal/specs"
)

// Source is one provider of vehicle specs for a search term.
// A source that fails contributes nothing to the merged result.
type Source interface {
	Name() string
	Fetch(ctx context.Context, term string) ([]model.VehicleSpec, error)
}

// SeedSource serves the local known-good dataset
type SeedSource struct {
	catalog *seed.Catalog
}

func NewSeedSource(catalog *seed.Catalog) *SeedSource {
	return &SeedSource{catalog: catalog}
}

func (s *SeedSource) Name() string { return model.SourceSeed }

func (s *SeedSource) Fetch(_ context.Context, term string) ([]model.VehicleSpec, error) {
	return s.catalog.Search(term), nil
}

// CarsAPI is the live vehicle API
type CarsAPI interface {
	SearchByModel(ctx context.Context, term string) ([]model.RawVehicle, error)
	SearchByMake(ctx context.Context, brand string) ([]model.RawVehicle, error)
}

// LiveSource queries the live API through the response cache and
// normalizes what comes back
type LiveSource struct {
	api        CarsAPI
	cache      cache.Client
	ttl        time.Duration
	normalizer specs.Normalizer
	brands     map[string]bool
	logger     *slog.Logger
}

// NewLiveSource builds a live source. Terms equal to one of brands are
// queried by make instead of by model. cache may be nil.
func NewLiveSource(api CarsAPI, c cache.Client, ttl time.Duration, normalizer specs.Normalizer, brands []string, logger *slog.Logger) *LiveSource {
	known := make(map[string]bool, len(brands))
	for _, b := range brands {
		known[matching.Normalize(b)] = true
	}
	return &LiveSource{
		api:        api,
		cache:      c,
		ttl:        ttl,
		normalizer: normalizer,
		brands:     known,
		logger:     logger,
	}
}

func (s *LiveSource) Name() string { return model.SourceLive }

func (s *LiveSource) Fetch(ctx context.Context, term string) ([]model.VehicleSpec, error) {
	raw, err := s.records(ctx, term, false)
	if err != nil {
		return nil, err
	}

	out := make([]model.VehicleSpec, 0, len(raw))
	for i, r := range raw {
		if strings.Contains(strings.ToLower(r.Class), "motorcycle") {
			continue
		}
		spec, ok := s.normalizer.Normalize(r, i)
		if !ok {
			s.logger.Debug("dropping malformed record", "source", s.Name(), "term", term, "index", i)
			continue
		}
		spec.Source = model.SourceLive
		out = append(out, spec)
	}
	return out, nil
}

// Refresh fetches term from the API bypassing the cache and stores the
// response. It returns the number of records received.
func (s *LiveSource) Refresh(ctx context.Context, term string) (int, error) {
	raw, err := s.records(ctx, term, true)
	return len(raw), err
}

func (s *LiveSource) records(ctx context.Context, term string, refresh bool) ([]model.RawVehicle, error) {
	folded := matching.Normalize(term)
	byMake := s.brands[folded]
	key := "cars:model:" + folded
	if byMake {
		key = "cars:make:" + folded
	}

	if s.cache != nil && !refresh {
		data, err := s.cache.Get(ctx, key)
		switch {
		case err == nil:
			var raw []model.RawVehicle
			if jsonErr := json.Unmarshal(data, &raw); jsonErr == nil {
				return raw, nil
			}
			s.logger.Warn("discarding unreadable cache entry", "key", key)
		case !errors.Is(err, cache.ErrCacheMiss):
			s.logger.Warn("cache read failed", "key", key, "error", err)
		}
	}

	var raw []model.RawVehicle
	var err error
	if byMake {
		raw, err = s.api.SearchByMake(ctx, folded)
	} else {
		raw, err = s.api.SearchByModel(ctx, folded)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query cars api: %w", err)
	}

	if s.cache != nil {
		data, _ := json.Marshal(raw)
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("cache write failed", "key", key, "error", err)
		}
	}
	return raw, nil
}

// HeuristicSource synthesizes specs for catalog model names matching the term
type HeuristicSource struct {
	catalog *seed.Catalog
}

func NewHeuristicSource(catalog *seed.Catalog) *HeuristicSource {
	return &HeuristicSource{catalog: catalog}
}

func (s *HeuristicSource) Name() string { return model.SourceHeuristic }

// Fetch synthesizes every catalog name matching term. A term of two or more
// words unknown to the catalog is read as "<brand> <model>".
func (s *HeuristicSource) Fetch(_ context.Context, term string) ([]model.VehicleSpec, error) {
	names := s.catalog.Names(term)
	if len(names) == 0 {
		fields := strings.Fields(term)
		if len(fields) < 2 {
			return nil, nil
		}
		names = []seed.Name{{Brand: fields[0], Model: strings.Join(fields[1:], " ")}}
	}

	out := make([]model.VehicleSpec, 0, len(names))
	for i, n := range names {
		spec := specs.Synthesize(n.Brand, n.Model, i)
		spec.Source = model.SourceHeuristic
		out = append(out, spec)
	}
	return out, nil
}

var motorcycleBrands = []string{"harley-davidson", "harley davidson", "ducati", "kawasaki", "ktm", "royal enfield", "aprilia", "mv agusta", "husqvarna"}

var motorcycleWords = []string{" motorcycle ", " motorbike ", " scooter ", " moped ", " dirt bike "}

// IsMotorcycle reports whether a brand or model names a two-wheeler
func IsMotorcycle(brand, modelName string) bool {
	b := matching.Normalize(brand)
	for _, mb := range motorcycleBrands {
		if b == mb {
			return true
		}
	}
	for _, w := range motorcycleWords {
		if matching.ContainsWord(brand+" "+modelName, w) {
			return true
		}
	}
	return false
}
