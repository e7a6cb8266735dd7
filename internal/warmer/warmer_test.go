package warmer

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sort"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"carcompare-api/internal/model"
)

type fakeRefresher struct {
	mu      sync.Mutex
	fetched []string
	results map[string]int
	errs    map[string]error
}

func (f *fakeRefresher) Refresh(_ context.Context, term string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fetched = append(f.fetched, term)
	if err := f.errs[term]; err != nil {
		return 0, err
	}
	return f.results[term], nil
}

func (f *fakeRefresher) sortedFetched() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := append([]string(nil), f.fetched...)
	sort.Strings(out)
	return out
}

type fakeFailures struct {
	mu       sync.Mutex
	upserts  map[string]string
	resolved []string
	pending  []model.WarmFailure
}

func newFakeFailures() *fakeFailures {
	return &fakeFailures{upserts: map[string]string{}}
}

func (f *fakeFailures) Upsert(_ context.Context, term, errType, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.upserts[term] = errType
	return nil
}

func (f *fakeFailures) MarkResolved(_ context.Context, term string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, term)
	return nil
}

func (f *fakeFailures) PendingRetries(_ context.Context, limit int) ([]model.WarmFailure, error) {
	return f.pending, nil
}

func testConfig(t *testing.T) Config {
	cfg := DefaultConfig()
	cfg.Delay = 0
	cfg.CheckpointFile = filepath.Join(t.TempDir(), "checkpoint.json")
	cfg.EnableMonitoring = false
	cfg.CheckpointEvery = 2
	return cfg
}

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestRunWarmsEveryTerm(t *testing.T) {
	refresher := &fakeRefresher{
		results: map[string]int{"Civic": 4, "Golf": 2},
		errs: map[string]error{
			"Model 3": errors.New("cars api request failed with status 429: slow down"),
		},
	}
	failures := newFakeFailures()
	svc := NewService(testConfig(t), refresher, failures, quiet)

	err := svc.Run(context.Background(), []string{"Civic", "Golf", "civic", "", "Model 3", "Trabant"})
	require.NoError(t, err)

	assert.Equal(t, []string{"Civic", "Golf", "Model 3", "Trabant"}, refresher.sortedFetched())

	snap := svc.Progress().GetSnapshot()
	assert.Equal(t, "finished", snap.Status)
	assert.Equal(t, 4, snap.Processed)
	assert.Equal(t, 3, snap.Success)
	assert.Equal(t, 1, snap.Failed)
	assert.Equal(t, 2, snap.Skipped)
	assert.Equal(t, 1, snap.Empty)
	assert.Equal(t, 6, snap.Records)
	assert.Equal(t, 1, snap.RateLimitHits)

	assert.Equal(t, map[string]string{
		"Model 3": model.ErrTypeRateLimit,
		"Trabant": model.ErrTypeNotFound,
	}, failures.upserts)
	assert.ElementsMatch(t, []string{"Civic", "Golf"}, failures.resolved)

	cp, err := NewCheckpointManager(svc.config.CheckpointFile).Load()
	require.NoError(t, err)
	assert.Nil(t, cp, "checkpoint is removed after a complete run")
}

func TestRunResumesFromCheckpoint(t *testing.T) {
	cfg := testConfig(t)
	terms := []string{"A4", "Civic", "Golf", "Polo"}

	progress := NewProgressTracker(4)
	progress.RecordSuccess(3)
	require.NoError(t, NewCheckpointManager(cfg.CheckpointFile).Save("civic", 1, progress))

	refresher := &fakeRefresher{results: map[string]int{"Golf": 1, "Polo": 1}}
	svc := NewService(cfg, refresher, nil, quiet)
	require.NoError(t, svc.Run(context.Background(), terms))

	assert.Equal(t, []string{"Golf", "Polo"}, refresher.sortedFetched())
	assert.Equal(t, 3, svc.Progress().GetSnapshot().Success)
}

func TestRunDryRun(t *testing.T) {
	cfg := testConfig(t)
	cfg.DryRun = true
	refresher := &fakeRefresher{}
	svc := NewService(cfg, refresher, nil, quiet)

	require.NoError(t, svc.Run(context.Background(), []string{"Civic", "Golf"}))
	assert.Empty(t, refresher.sortedFetched())
	assert.Equal(t, 2, svc.Progress().GetSnapshot().Success)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	svc := NewService(testConfig(t), &fakeRefresher{}, nil, quiet)
	err := svc.Run(ctx, []string{"Civic", "Golf", "Polo", "A4", "A6", "X5", "M3"})
	assert.ErrorIs(t, err, context.Canceled)
}

type cancellingRefresher struct {
	fakeRefresher
	cancelOn string
	cancel   context.CancelFunc
}

func (c *cancellingRefresher) Refresh(ctx context.Context, term string) (int, error) {
	if term == c.cancelOn {
		c.cancel()
		return 0, ctx.Err()
	}
	return c.fakeRefresher.Refresh(ctx, term)
}

func TestRunCheckpointsOnlyFinishedTerms(t *testing.T) {
	cfg := testConfig(t)
	cfg.Workers = 1
	cfg.CheckpointEvery = 100
	terms := []string{"Civic", "Golf", "Polo", "A4", "A6", "X5"}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	refresher := &cancellingRefresher{
		fakeRefresher: fakeRefresher{results: map[string]int{"Civic": 1}},
		cancelOn:      "Golf",
		cancel:        cancel,
	}

	svc := NewService(cfg, refresher, nil, quiet)
	err := svc.Run(ctx, terms)
	require.ErrorIs(t, err, context.Canceled)

	cp, err := NewCheckpointManager(cfg.CheckpointFile).Load()
	require.NoError(t, err)
	require.NotNil(t, cp)
	assert.Equal(t, "Civic", cp.LastTerm)
	assert.Equal(t, 0, cp.Index)

	// the interrupted term and everything queued behind it are warmed on resume
	resumed := &fakeRefresher{results: map[string]int{}}
	require.NoError(t, NewService(cfg, resumed, nil, quiet).Run(context.Background(), terms))
	assert.Equal(t, []string{"A4", "A6", "Golf", "Polo", "X5"}, resumed.sortedFetched())
}

func TestFinishedPrefix(t *testing.T) {
	var saves []int
	f := &finishedPrefix{done: map[int]bool{}, every: 2, save: func(last int) { saves = append(saves, last) }}

	f.mark(1)
	f.mark(2)
	assert.Empty(t, saves, "position 0 is still running")

	f.mark(0)
	assert.Equal(t, []int{2}, saves)

	f.mark(4)
	f.flush()
	assert.Equal(t, []int{2}, saves, "position 3 is missing")

	f.mark(3)
	assert.Equal(t, []int{2, 4}, saves)
}

func TestRunRetries(t *testing.T) {
	failures := newFakeFailures()
	failures.pending = []model.WarmFailure{{Term: "Model 3", ErrorType: model.ErrTypeRateLimit}}
	refresher := &fakeRefresher{results: map[string]int{"Model 3": 5}}

	svc := NewService(testConfig(t), refresher, failures, quiet)
	require.NoError(t, svc.RunRetries(context.Background(), 10))

	assert.Equal(t, []string{"Model 3"}, refresher.sortedFetched())
	assert.Equal(t, []string{"Model 3"}, failures.resolved)
}

func TestResumeIndex(t *testing.T) {
	terms := []string{"A4", "Civic", "Golf"}
	assert.Equal(t, 2, resumeIndex(terms, &Checkpoint{LastTerm: "CIVIC", Index: 7}))
	assert.Equal(t, 1, resumeIndex(terms, &Checkpoint{LastTerm: "Removed", Index: 0}))
	assert.Equal(t, 0, resumeIndex(terms, &Checkpoint{LastTerm: "Removed", Index: 9}))
}

func TestMonitorStatus(t *testing.T) {
	progress := NewProgressTracker(4)
	progress.StartTerm("Civic")
	progress.IncrementRequests()
	progress.RecordFailure(model.ErrTypeNetwork, "dial tcp: timeout")

	monitor := NewHTTPMonitor(0, progress, quiet)
	rec := httptest.NewRecorder()
	monitor.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "running", body["status"])
	assert.Equal(t, "Civic", body["current_term"])
	assert.Equal(t, "dial tcp: timeout", body["last_error"])

	p := body["progress"].(map[string]any)
	assert.Equal(t, float64(1), p["failed"])
	assert.Equal(t, "25.00", p["percentage"])

	rec = httptest.NewRecorder()
	monitor.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}
