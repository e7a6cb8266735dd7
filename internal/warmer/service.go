// Package warmer pre-fills the live API response cache for every model
// name of the seed catalog.
package warmer

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"carcompare-api/internal/matching"
	"carcompare-api/internal/model"
)

// Refresher fetches a term from the live API and stores the response
type Refresher interface {
	Refresh(ctx context.Context, term string) (int, error)
}

// FailureStore tracks terms that could not be fetched
type FailureStore interface {
	Upsert(ctx context.Context, term, errType, message string) error
	MarkResolved(ctx context.Context, term string) error
	PendingRetries(ctx context.Context, limit int) ([]model.WarmFailure, error)
}

// Config holds configuration for the warmer
type Config struct {
	Workers          int
	Delay            time.Duration
	CheckpointEvery  int
	CheckpointFile   string
	Resume           bool
	DryRun           bool
	MonitorPort      int
	EnableMonitoring bool
}

func DefaultConfig() Config {
	return Config{
		Workers:          2,
		Delay:            500 * time.Millisecond,
		CheckpointEvery:  25,
		CheckpointFile:   "warmer_checkpoint.json",
		Resume:           true,
		MonitorPort:      8081,
		EnableMonitoring: true,
	}
}

// Service runs a warming pass over a list of terms
type Service struct {
	config     Config
	refresher  Refresher
	failures   FailureStore
	checkpoint *CheckpointManager
	progress   *ProgressTracker
	logger     *slog.Logger
}

// NewService creates a warmer. failures may be nil, in which case failed
// terms are only logged.
func NewService(config Config, refresher Refresher, failures FailureStore, logger *slog.Logger) *Service {
	if config.Workers <= 0 {
		config.Workers = 1
	}
	if config.CheckpointEvery <= 0 {
		config.CheckpointEvery = 25
	}
	return &Service{
		config:     config,
		refresher:  refresher,
		failures:   failures,
		checkpoint: NewCheckpointManager(config.CheckpointFile),
		progress:   NewProgressTracker(0),
		logger:     logger,
	}
}

// Progress returns the tracker of the current or last run
func (s *Service) Progress() *ProgressTracker {
	return s.progress
}

// Run warms every term, resuming after the checkpoint when configured.
// The checkpoint is removed once every term was processed.
func (s *Service) Run(ctx context.Context, terms []string) error {
	s.logger.Info("starting catalog warmer",
		"workers", s.config.Workers,
		"delay", s.config.Delay,
		"dry_run", s.config.DryRun,
	)

	startIndex := 0
	var restored *Checkpoint
	if s.config.Resume {
		cp, err := s.checkpoint.Load()
		if err != nil {
			s.logger.Warn("failed to load checkpoint, starting fresh", "error", err)
		} else if cp != nil {
			startIndex = resumeIndex(terms, cp)
			restored = cp
			s.logger.Info("resuming from checkpoint", "last_term", cp.LastTerm, "saved_at", cp.SavedAt, "skipped", startIndex)
		}
	}

	toProcess := terms[startIndex:]
	s.progress = NewProgressTracker(len(toProcess))
	if restored != nil {
		s.progress.Restore(restored)
	}

	if err := s.process(ctx, toProcess, startIndex); err != nil {
		return err
	}

	if err := s.checkpoint.Delete(); err != nil {
		s.logger.Warn("failed to delete checkpoint", "error", err)
	}
	s.printFinalStats()
	return nil
}

// RunRetries warms the failed terms whose retry time has come
func (s *Service) RunRetries(ctx context.Context, limit int) error {
	if s.failures == nil {
		return nil
	}
	pending, err := s.failures.PendingRetries(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to load pending retries: %w", err)
	}

	terms := make([]string, 0, len(pending))
	for _, f := range pending {
		terms = append(terms, f.Term)
	}
	s.logger.Info("retrying failed terms", "count", len(terms))

	s.progress = NewProgressTracker(len(terms))
	if err := s.process(ctx, terms, -1); err != nil {
		return err
	}
	s.printFinalStats()
	return nil
}

type job struct {
	index int
	term  string
}

// process feeds terms to the worker pool. offset is the index of terms[0]
// in the full list; a negative offset disables checkpointing.
func (s *Service) process(ctx context.Context, terms []string, offset int) error {
	var monitor *HTTPMonitor
	if s.config.EnableMonitoring {
		monitor = NewHTTPMonitor(s.config.MonitorPort, s.progress, s.logger)
		monitor.Start()
		defer monitor.Stop(context.Background())
	}

	done := &finishedPrefix{done: make(map[int]bool)}
	if offset >= 0 {
		done.every = s.config.CheckpointEvery
		done.save = func(last int) {
			s.saveCheckpoint(terms[last], offset+last)
		}
	}

	queue := make(chan job, s.config.Workers*2)
	var wg sync.WaitGroup

	for i := 0; i < s.config.Workers; i++ {
		wg.Add(1)
		go s.worker(ctx, i, queue, done, &wg)
	}

	seen := make(map[string]bool, len(terms))
dispatch:
	for i, term := range terms {
		key := matching.Normalize(term)
		if key == "" || seen[key] {
			s.progress.IncrementSkipped()
			done.mark(i)
			continue
		}
		seen[key] = true

		select {
		case <-ctx.Done():
			break dispatch
		case queue <- job{index: i, term: term}:
		}
	}

	close(queue)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		s.logger.Info("context cancelled, stopping...")
		done.flush()
		return err
	}
	s.progress.Finish()
	return nil
}

// finishedPrefix tracks which positions were fully processed and saves a
// checkpoint for the longest finished prefix, so a resumed run never skips
// a term that was only queued
type finishedPrefix struct {
	mu    sync.Mutex
	done  map[int]bool
	next  int
	saved int
	every int
	save  func(last int)
}

func (f *finishedPrefix) mark(i int) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.done[i] = true
	for f.done[f.next] {
		delete(f.done, f.next)
		f.next++
	}
	if f.save != nil && f.every > 0 && f.next-f.saved >= f.every {
		f.save(f.next - 1)
		f.saved = f.next
	}
}

// flush saves the current prefix when it moved since the last save
func (f *finishedPrefix) flush() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.save != nil && f.next > f.saved {
		f.save(f.next - 1)
		f.saved = f.next
	}
}

func (s *Service) worker(ctx context.Context, id int, queue <-chan job, done *finishedPrefix, wg *sync.WaitGroup) {
	defer wg.Done()

	var pace <-chan time.Time
	if s.config.Delay > 0 {
		ticker := time.NewTicker(s.config.Delay)
		defer ticker.Stop()
		pace = ticker.C
	}

	processed := 0
	for j := range queue {
		if pace != nil {
			select {
			case <-pace:
			case <-ctx.Done():
				return
			}
		}

		s.warmTerm(ctx, j.term)

		// a term interrupted by cancellation is warmed again on resume
		if ctx.Err() != nil {
			s.logger.Info("worker stopping due to context cancellation", "worker_id", id)
			return
		}
		done.mark(j.index)
		processed++
	}

	s.logger.Debug("worker finished", "worker_id", id, "total_processed", processed)
}

func (s *Service) warmTerm(ctx context.Context, term string) {
	s.progress.StartTerm(term)

	if s.config.DryRun {
		s.logger.Info("dry run - would fetch term", "term", term)
		s.progress.RecordSuccess(0)
		return
	}

	s.progress.IncrementRequests()
	n, err := s.refresher.Refresh(ctx, term)
	if err != nil {
		errType := model.ClassifyError(err.Error())
		s.logger.Warn("failed to warm term", "term", term, "error_type", errType, "error", err)
		s.progress.RecordFailure(errType, err.Error())
		s.saveFailure(ctx, term, errType, err.Error())
		return
	}

	s.progress.RecordSuccess(n)
	if n == 0 {
		s.saveFailure(ctx, term, model.ErrTypeNotFound, "no records for term")
		return
	}
	s.markResolved(ctx, term)
}

func (s *Service) saveFailure(ctx context.Context, term, errType, msg string) {
	if s.failures == nil {
		return
	}
	if err := s.failures.Upsert(ctx, term, errType, msg); err != nil {
		s.logger.Warn("failed to save failure record", "term", term, "error", err)
	}
}

func (s *Service) markResolved(ctx context.Context, term string) {
	if s.failures == nil {
		return
	}
	if err := s.failures.MarkResolved(ctx, term); err != nil {
		s.logger.Debug("failed to mark failure as resolved", "term", term, "error", err)
	}
}

func (s *Service) saveCheckpoint(term string, index int) {
	if err := s.checkpoint.Save(term, index, s.progress); err != nil {
		s.logger.Warn("failed to save checkpoint", "error", err)
		return
	}
	s.logger.Debug("checkpoint saved", "last_term", term, "index", index)
}

func (s *Service) printFinalStats() {
	snapshot := s.progress.GetSnapshot()

	s.logger.Info("warming completed",
		"elapsed", snapshot.Elapsed.String(),
		"total", snapshot.TotalTerms,
		"processed", snapshot.Processed,
		"success", snapshot.Success,
		"failed", snapshot.Failed,
		"skipped", snapshot.Skipped,
		"empty", snapshot.Empty,
		"records", snapshot.Records,
		"total_requests", snapshot.TotalRequests,
		"req_per_sec", fmt.Sprintf("%.2f", snapshot.RequestsPerSec),
	)
}

// resumeIndex returns the index after the checkpointed term, falling back
// to the saved index when the term list changed
func resumeIndex(terms []string, cp *Checkpoint) int {
	want := matching.Normalize(cp.LastTerm)
	for i, t := range terms {
		if matching.Normalize(t) == want {
			return i + 1
		}
	}
	if cp.Index+1 <= len(terms) && strings.TrimSpace(cp.LastTerm) != "" {
		return cp.Index + 1
	}
	return 0
}
