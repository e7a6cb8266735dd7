package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

var ErrEmptyTerm = errors.New("search term is required")

const (
	statusOK     = "ok"
	statusFailed = "failed"
)

// Comparison is the outcome of ranking a selection
type Comparison struct {
	Ranking model.Ranking
	Radar   []model.RadarRow
}

// CarService searches, scores and compares vehicles.
// It holds no per-user state.
type CarService struct {
	sources       []Source
	policy        matching.Policy
	images        *imagecdn.Builder
	sourceTimeout time.Duration
	logger        *slog.Logger
	tracer        trace.Tracer
}

// CarServiceConfig holds the collaborators of a CarService.
// Sources are merged in the given order, earlier sources win duplicates.
type CarServiceConfig struct {
	Sources       []Source
	Policy        matching.Policy
	Images        *imagecdn.Builder
	SourceTimeout time.Duration
	Logger        *slog.Logger
}

func NewCarService(cfg CarServiceConfig) *CarService {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.SourceTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &CarService{
		sources:       cfg.Sources,
		policy:        cfg.Policy,
		images:        cfg.Images,
		sourceTimeout: timeout,
		logger:        logger,
		tracer:        otel.Tracer("carcompare-api/internal/service"),
	}
}

// FetchAndScore queries every source in parallel, merges the results,
// scores them against prefs and returns them best first. Failed sources
// are reported in the response but never fail the search.
func (s *CarService) FetchAndScore(ctx context.Context, term string, prefs model.Preferences) (*model.SearchResponse, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, ErrEmptyTerm
	}

	requestID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "car.search", trace.WithAttributes(
		attribute.String("search.term", term),
		attribute.String("search.request_id", requestID),
	))
	defer span.End()

	results := make([][]model.VehicleSpec, len(s.sources))
	statuses := make([]model.SourceStatus, len(s.sources))

	g, gctx := errgroup.WithContext(ctx)
	for i, src := range s.sources {
		g.Go(func() error {
			specs, err := s.fetchSource(gctx, src, term)
			statuses[i] = model.SourceStatus{Name: src.Name(), Status: statusOK, Count: len(specs)}
			if err != nil {
				s.logger.Warn("source unavailable", "source", src.Name(), "term", term, "request_id", requestID, "error", err)
				statuses[i].Status = statusFailed
				statuses[i].Error = err.Error()
				return nil
			}
			results[i] = specs
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	merged := s.merge(results)
	scored := s.policy.Recompute(merged, prefs)

	allFailed := len(statuses) > 0
	for _, st := range statuses {
		if st.Status == statusOK {
			allFailed = false
		}
	}

	span.SetAttributes(attribute.Int("search.results", len(scored)))
	s.logger.Info("search completed", "term", term, "request_id", requestID, "results", len(scored), "all_sources_failed", allFailed)

	return &model.SearchResponse{
		RequestID:        requestID,
		Term:             term,
		Results:          scored,
		Total:            len(scored),
		Sources:          statuses,
		AllSourcesFailed: allFailed,
	}, nil
}

func (s *CarService) fetchSource(ctx context.Context, src Source, term string) (specs []model.VehicleSpec, err error) {
	ctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	defer cancel()

	ctx, span := s.tracer.Start(ctx, "source.fetch", trace.WithAttributes(attribute.String("source.name", src.Name())))
	defer span.End()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("source %s panicked: %v", src.Name(), r)
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	specs, err = src.Fetch(ctx, term)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.Int("source.records", len(specs)))
	return specs, nil
}

// merge concatenates source results in priority order, drops motorcycles
// and duplicates by brand and model, and makes ids unique
func (s *CarService) merge(results [][]model.VehicleSpec) []model.VehicleSpec {
	seen := make(map[string]bool)
	used := make(map[string]bool)
	var out []model.VehicleSpec

	for _, specs := range results {
		for _, spec := range specs {
			if IsMotorcycle(spec.Brand, spec.Model) {
				continue
			}
			key := matching.Key(spec.Brand, spec.Model)
			if seen[key] {
				continue
			}
			seen[key] = true

			id := spec.ID
			for n := 2; used[id]; n++ {
				id = fmt.Sprintf("%s-%d", spec.ID, n)
			}
			used[id] = true
			spec.ID = id
			if spec.Image == "" && s.images != nil {
				spec.Image = s.images.URL(spec.Brand, spec.Model, spec.Year, imagecdn.DefaultAngle, spec.SelectedColor)
			}
			out = append(out, spec)
		}
	}
	return out
}

// RecomputeScores rescores specs for new preferences without refetching
func (s *CarService) RecomputeScores(specs []model.VehicleSpec, prefs model.Preferences) []model.VehicleSpec {
	return s.policy.Recompute(specs, prefs)
}

// Compare ranks a selection and builds its radar matrix
func (s *CarService) Compare(specs []model.VehicleSpec) (*Comparison, error) {
	ranking, err := matching.Rank(specs)
	if err != nil {
		return nil, err
	}
	return &Comparison{Ranking: ranking, Radar: matching.BuildRadarData(specs)}, nil
}

// SearchState owns the result list and preferences of one interactive
// session. Only the most recently started search may commit its results.
type SearchState struct {
	svc *CarService

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	prefs      model.Preferences
	results    []model.VehicleSpec
}

// ErrStaleSearch is returned by a search superseded by a newer one
var ErrStaleSearch = errors.New("search superseded by a newer one")

func NewSearchState(svc *CarService, prefs model.Preferences) *SearchState {
	return &SearchState{svc: svc, prefs: prefs}
}

// Search runs a search and commits its results unless a newer search
// started meanwhile. Starting a search cancels the one in flight.
func (st *SearchState) Search(ctx context.Context, term string) (*model.SearchResponse, error) {
	st.mu.Lock()
	if st.cancel != nil {
		st.cancel()
	}
	st.generation++
	gen := st.generation
	ctx, cancel := context.WithCancel(ctx)
	st.cancel = cancel
	prefs := st.prefs
	st.mu.Unlock()

	defer cancel()

	resp, err := st.svc.FetchAndScore(ctx, term, prefs)

	st.mu.Lock()
	defer st.mu.Unlock()

	if gen != st.generation {
		return nil, ErrStaleSearch
	}
	st.cancel = nil
	if err != nil {
		return nil, err
	}

	// preferences may have changed while the search was running
	if prefs != st.prefs {
		resp.Results = st.svc.RecomputeScores(resp.Results, st.prefs)
	}
	st.results = resp.Results
	return resp, nil
}

// UpdatePreferences stores prefs and rescores the committed results
func (st *SearchState) UpdatePreferences(prefs model.Preferences) []model.VehicleSpec {
	st.mu.Lock()
	defer st.mu.Unlock()

	st.prefs = prefs
	st.results = st.svc.RecomputeScores(st.results, prefs)
	return append([]model.VehicleSpec(nil), st.results...)
}

func (st *SearchState) Preferences() model.Preferences {
	st.mu.Lock()
	defer st.mu.Unlock()
	return st.prefs
}

// Results returns the committed result list, best first
func (st *SearchState) Results() []model.VehicleSpec {
	st.mu.Lock()
	defer st.mu.Unlock()
	return append([]model.VehicleSpec(nil), st.results...)
}

// Find returns committed results by id, in the order asked
func (st *SearchState) Find(ids []string) ([]model.VehicleSpec, error) {
	st.mu.Lock()
	defer st.mu.Unlock()

	byID := make(map[string]model.VehicleSpec, len(st.results))
	for _, r := range st.results {
		byID[r.ID] = r
	}

	out := make([]model.VehicleSpec, 0, len(ids))
	for _, id := range ids {
		spec, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("no result with id %q", id)
		}
		out = append(out, spec)
	}
	return out, nil
}
