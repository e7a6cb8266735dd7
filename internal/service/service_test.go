package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcompare-api/internal/cache"
	"carcompare-api/internal/imagecdn"
	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
	"carcompare-api/internal/seed"
	"carcompare-api/internal/specs"
)

var quietLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

type fakeSource struct {
	name  string
	fetch func(ctx context.Context, term string) ([]model.VehicleSpec, error)
}

func (f fakeSource) Name() string { return f.name }

func (f fakeSource) Fetch(ctx context.Context, term string) ([]model.VehicleSpec, error) {
	return f.fetch(ctx, term)
}

func staticSource(name string, list ...model.VehicleSpec) fakeSource {
	return fakeSource{name: name, fetch: func(context.Context, string) ([]model.VehicleSpec, error) {
		return list, nil
	}}
}

func failingSource(name string) fakeSource {
	return fakeSource{name: name, fetch: func(context.Context, string) ([]model.VehicleSpec, error) {
		return nil, errors.New("cars api request failed with status 503")
	}}
}

type fakeAPI struct {
	byModel map[string][]model.RawVehicle
	byMake  map[string][]model.RawVehicle
	calls   atomic.Int32
}

func (f *fakeAPI) SearchByModel(_ context.Context, term string) ([]model.RawVehicle, error) {
	f.calls.Add(1)
	return f.byModel[term], nil
}

func (f *fakeAPI) SearchByMake(_ context.Context, brand string) ([]model.RawVehicle, error) {
	f.calls.Add(1)
	return f.byMake[brand], nil
}

func testCatalog() *seed.Catalog {
	return seed.NewCatalog(
		[]model.VehicleSpec{
			{Brand: "BMW", Model: "M3", Year: 2023, HP: 480, Consumption: 10.2, Weight: 1730, Price: 92000, Traction: model.DrivetrainRWD},
			{Brand: "BMW", Model: "118i", Year: 2023, HP: 136, Consumption: 5.6, Weight: 1365, Price: 33000},
		},
		map[string][]string{"BMW": {"M3", "X5", "320i"}},
	)
}

func newTestService(sources ...Source) *CarService {
	return NewCarService(CarServiceConfig{
		Sources:       sources,
		Policy:        matching.DefaultPolicy,
		SourceTimeout: time.Second,
		Logger:        quietLogger,
	})
}

func TestFetchAndScoreMergesByPriority(t *testing.T) {
	catalog := testCatalog()
	api := &fakeAPI{byMake: map[string][]model.RawVehicle{
		"bmw": {
			{Make: "bmw", Model: "m3", Year: 2021, Horsepower: 473, CombinationMPG: 19},
			{Make: "bmw", Model: "x5", Year: 2022, Horsepower: 335, CombinationMPG: 23, Drive: "all-wheel drive"},
		},
	}}
	live := NewLiveSource(api, nil, 0, specs.Normalizer{}, catalog.Brands(), quietLogger)

	svc := newTestService(NewSeedSource(catalog), live, NewHeuristicSource(catalog))
	resp, err := svc.FetchAndScore(context.Background(), " bmw ", model.DefaultPreferences())
	require.NoError(t, err)

	assert.Equal(t, "bmw", resp.Term)
	assert.NotEmpty(t, resp.RequestID)
	assert.False(t, resp.AllSourcesFailed)
	assert.Equal(t, len(resp.Results), resp.Total)

	bySource := map[string]string{}
	for _, r := range resp.Results {
		bySource[r.ID] = r.Source
		require.NotNil(t, r.Score)
	}
	assert.Equal(t, map[string]string{
		"bmw-m3":   model.SourceSeed,
		"bmw-118i": model.SourceSeed,
		"bmw-x5":   model.SourceLive,
		"bmw-320i": model.SourceHeuristic,
	}, bySource)

	for i := 1; i < len(resp.Results); i++ {
		assert.GreaterOrEqual(t, resp.Results[i-1].MatchScore(), resp.Results[i].MatchScore())
	}

	require.Len(t, resp.Sources, 3)
	assert.Equal(t, model.SourceStatus{Name: model.SourceLive, Status: "ok", Count: 2}, resp.Sources[1])
}

func TestFetchAndScoreToleratesFailedSources(t *testing.T) {
	panicky := fakeSource{name: "panicky", fetch: func(context.Context, string) ([]model.VehicleSpec, error) {
		panic("boom")
	}}
	svc := newTestService(
		failingSource("live"),
		panicky,
		staticSource("seed", specs.Complete(model.VehicleSpec{Brand: "Fiat", Model: "Panda", HP: 70})),
	)

	resp, err := svc.FetchAndScore(context.Background(), "panda", model.DefaultPreferences())
	require.NoError(t, err)

	require.Len(t, resp.Results, 1)
	assert.Equal(t, "fiat-panda", resp.Results[0].ID)
	assert.False(t, resp.AllSourcesFailed)
	assert.Equal(t, "failed", resp.Sources[0].Status)
	assert.Contains(t, resp.Sources[0].Error, "503")
	assert.Equal(t, "failed", resp.Sources[1].Status)
	assert.Contains(t, resp.Sources[1].Error, "panicked")
}

func TestFetchAndScoreAllSourcesFailed(t *testing.T) {
	svc := newTestService(failingSource("seed"), failingSource("live"))

	resp, err := svc.FetchAndScore(context.Background(), "civic", model.DefaultPreferences())
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.True(t, resp.AllSourcesFailed)
}

func TestFetchAndScoreZeroMatchesIsNotFailure(t *testing.T) {
	svc := newTestService(staticSource("seed"))

	resp, err := svc.FetchAndScore(context.Background(), "trabant", model.DefaultPreferences())
	require.NoError(t, err)
	assert.Empty(t, resp.Results)
	assert.False(t, resp.AllSourcesFailed)
}

func TestFetchAndScoreSourceTimeout(t *testing.T) {
	slow := fakeSource{name: "slow", fetch: func(ctx context.Context, _ string) ([]model.VehicleSpec, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}}
	svc := NewCarService(CarServiceConfig{
		Sources:       []Source{slow, staticSource("seed", model.VehicleSpec{ID: "a", Brand: "A", Model: "B"})},
		Policy:        matching.DefaultPolicy,
		SourceTimeout: 20 * time.Millisecond,
		Logger:        quietLogger,
	})

	resp, err := svc.FetchAndScore(context.Background(), "a", model.DefaultPreferences())
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)
	assert.Equal(t, "failed", resp.Sources[0].Status)
}

func TestFetchAndScoreEmptyTerm(t *testing.T) {
	svc := newTestService(staticSource("seed"))
	_, err := svc.FetchAndScore(context.Background(), "   ", model.DefaultPreferences())
	assert.ErrorIs(t, err, ErrEmptyTerm)
}

func TestMergeDropsMotorcyclesAndSuffixesIDs(t *testing.T) {
	svc := NewCarService(CarServiceConfig{
		Sources: []Source{
			staticSource("one",
				model.VehicleSpec{ID: "x", Brand: "A", Model: "B"},
				model.VehicleSpec{ID: "ducati-monster", Brand: "Ducati", Model: "Monster"},
			),
			staticSource("two",
				model.VehicleSpec{ID: "x", Brand: "A", Model: "C"},
				model.VehicleSpec{ID: "x", Brand: "a", Model: "b"},
				model.VehicleSpec{ID: "x", Brand: "A", Model: "D"},
			),
		},
		Policy: matching.DefaultPolicy,
		Images: imagecdn.NewBuilder("https://cdn.example.com", "demo"),
		Logger: quietLogger,
	})

	resp, err := svc.FetchAndScore(context.Background(), "a", model.Preferences{})
	require.NoError(t, err)

	var ids []string
	for _, r := range resp.Results {
		ids = append(ids, r.ID)
		assert.Contains(t, r.Image, "https://cdn.example.com/getimage?")
	}
	assert.ElementsMatch(t, []string{"x", "x-2", "x-3"}, ids)
}

func TestMergeNeverRepeatsIDs(t *testing.T) {
	svc := NewCarService(CarServiceConfig{
		Sources: []Source{
			staticSource("seed", model.VehicleSpec{ID: "vw-golf-gti", Brand: "VW", Model: "Golf GTI"}),
			staticSource("live",
				model.VehicleSpec{ID: "vw-golf-gti", Brand: "VW", Model: "Golf-GTI"},
				model.VehicleSpec{ID: "vw-golf-gti", Brand: "VW", Model: "Golf GTI Clubsport"},
			),
			staticSource("heuristic", model.VehicleSpec{ID: "vw-golf-gti-2", Brand: "VW", Model: "Golf GTI 2"}),
		},
		Policy: matching.DefaultPolicy,
		Logger: quietLogger,
	})

	resp, err := svc.FetchAndScore(context.Background(), "golf gti", model.Preferences{})
	require.NoError(t, err)

	seen := make(map[string]bool)
	for _, r := range resp.Results {
		assert.False(t, seen[r.ID], "id %q repeated", r.ID)
		seen[r.ID] = true
	}
	assert.Len(t, resp.Results, 3, "Golf-GTI and Golf GTI are the same car")
	assert.Equal(t, map[string]bool{"vw-golf-gti": true, "vw-golf-gti-2": true, "vw-golf-gti-2-2": true}, seen)

	cmp, err := svc.Compare(resp.Results)
	require.NoError(t, err)
	assert.Len(t, cmp.Radar[0].Values, 3)
}

func TestIsMotorcycle(t *testing.T) {
	assert.True(t, IsMotorcycle("Harley-Davidson", "Fat Boy"))
	assert.True(t, IsMotorcycle("Honda", "PCX Scooter"))
	assert.True(t, IsMotorcycle("KTM", "Duke 390"))
	assert.False(t, IsMotorcycle("Honda", "Civic"))
	assert.False(t, IsMotorcycle("Skoda", "Scout"))
}

func TestRecomputeAndCompare(t *testing.T) {
	svc := newTestService()
	list := []model.VehicleSpec{
		{ID: "eco", HP: 90, Consumption: 4, EcoScore: 90, SportScore: 20, FamilyScore: 40},
		{ID: "sport", HP: 400, Consumption: 11, EcoScore: 15, SportScore: 95, FamilyScore: 50},
	}

	ranked := svc.RecomputeScores(list, model.Preferences{MinPower: 300, MaxConsumption: 15})
	assert.Equal(t, "sport", ranked[0].ID)

	cmp, err := svc.Compare(list)
	require.NoError(t, err)
	assert.Equal(t, "eco", cmp.Ranking.Eco.ID)
	assert.Equal(t, "sport", cmp.Ranking.Sport.ID)
	assert.Len(t, cmp.Radar, 3)

	_, err = svc.Compare(nil)
	assert.ErrorIs(t, err, matching.ErrEmptySelection)
}

func TestLiveSourceCache(t *testing.T) {
	ctx := context.Background()
	api := &fakeAPI{byModel: map[string][]model.RawVehicle{
		"civic": {
			{Make: "honda", Model: "civic", Year: 2022, CombinationMPG: 34, Drive: "front-wheel drive"},
			{Make: "", Model: "ghost"},
			{Make: "honda", Model: "civic", Class: "motorcycle"},
		},
	}}
	mem := cache.NewMemoryClient(10)
	live := NewLiveSource(api, mem, time.Hour, specs.Normalizer{}, []string{"Honda"}, quietLogger)

	got, err := live.Fetch(ctx, "Civic")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "HONDA", got[0].Brand)
	assert.Equal(t, 2022, got[0].Year)
	assert.Equal(t, model.SourceLive, got[0].Source)

	_, err = live.Fetch(ctx, "civic")
	require.NoError(t, err)
	assert.Equal(t, int32(1), api.calls.Load())

	n, err := live.Refresh(ctx, "civic")
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, int32(2), api.calls.Load())

	_, err = mem.Get(ctx, "cars:model:civic")
	assert.NoError(t, err)
}

func TestHeuristicSource(t *testing.T) {
	src := NewHeuristicSource(testCatalog())

	got, err := src.Fetch(context.Background(), "bmw")
	require.NoError(t, err)
	assert.Len(t, got, 3)
	for _, s := range got {
		assert.Equal(t, model.SourceHeuristic, s.Source)
	}

	got, err = src.Fetch(context.Background(), "Lada Niva")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, specs.Synthesize("Lada", "Niva", 0).HP, got[0].HP)

	got, err = src.Fetch(context.Background(), "trabant")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSearchStateRejectsStaleSearch(t *testing.T) {
	started := make(chan struct{})
	src := fakeSource{name: "seed", fetch: func(ctx context.Context, term string) ([]model.VehicleSpec, error) {
		if term == "slow" {
			close(started)
			<-ctx.Done()
			return nil, ctx.Err()
		}
		return []model.VehicleSpec{{ID: "fast", Brand: "Fast", Model: "Car"}}, nil
	}}
	state := NewSearchState(newTestService(src), model.DefaultPreferences())

	slowErr := make(chan error, 1)
	go func() {
		_, err := state.Search(context.Background(), "slow")
		slowErr <- err
	}()

	<-started
	resp, err := state.Search(context.Background(), "fast")
	require.NoError(t, err)
	assert.Len(t, resp.Results, 1)

	assert.ErrorIs(t, <-slowErr, ErrStaleSearch)
	require.Len(t, state.Results(), 1)
	assert.Equal(t, "fast", state.Results()[0].ID)
}

func TestSearchStateUpdatePreferences(t *testing.T) {
	src := staticSource("seed",
		model.VehicleSpec{ID: "small", Brand: "A", Model: "Small", HP: 100, Consumption: 5},
		model.VehicleSpec{ID: "big", Brand: "A", Model: "Big", HP: 300, Consumption: 12},
	)
	state := NewSearchState(newTestService(src), model.Preferences{MinPower: 100, MaxConsumption: 6})

	_, err := state.Search(context.Background(), "a")
	require.NoError(t, err)
	assert.Equal(t, "small", state.Results()[0].ID)

	updated := state.UpdatePreferences(model.Preferences{MinPower: 300, MaxConsumption: 20})
	assert.Equal(t, "big", updated[0].ID)
	assert.Equal(t, 300, state.Preferences().MinPower)

	found, err := state.Find([]string{"small", "big"})
	require.NoError(t, err)
	assert.Equal(t, "small", found[0].ID)

	_, err = state.Find([]string{"nope"})
	assert.Error(t, err)
}
