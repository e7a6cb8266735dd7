package warmer

import (
	"sync"
	"time"

	"carcompare-api/internal/model"
)

// ProgressTracker tracks warming progress
type ProgressTracker struct {
	mu sync.RWMutex

	status      string
	startedAt   time.Time
	totalTerms  int
	processed   int
	success     int
	failed      int
	skipped     int
	empty       int
	records     int
	currentTerm string
	lastError   string

	totalRequests int
	rateLimitHits int
	networkErrors int

	now func() time.Time
}

func NewProgressTracker(totalTerms int) *ProgressTracker {
	return &ProgressTracker{
		status:     "running",
		startedAt:  time.Now(),
		totalTerms: totalTerms,
		now:        time.Now,
	}
}

func (p *ProgressTracker) StartTerm(term string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.processed++
	p.currentTerm = term
}

// RecordSuccess counts a fetched term and the records it returned.
// A term with no records is counted as empty as well.
func (p *ProgressTracker) RecordSuccess(records int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.success++
	p.records += records
	if records == 0 {
		p.empty++
	}
}

func (p *ProgressTracker) RecordFailure(errType, msg string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.failed++
	p.lastError = msg
	switch errType {
	case model.ErrTypeRateLimit:
		p.rateLimitHits++
	case model.ErrTypeNetwork:
		p.networkErrors++
	}
}

func (p *ProgressTracker) IncrementSkipped() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.skipped++
}

func (p *ProgressTracker) IncrementRequests() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.totalRequests++
}

// Finish marks the run as done
func (p *ProgressTracker) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.status = "finished"
	p.currentTerm = ""
}

// Restore seeds counters from a checkpoint of an earlier run
func (p *ProgressTracker) Restore(cp *Checkpoint) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.success += cp.Stats.Success
	p.failed += cp.Stats.Failed
	p.skipped += cp.Stats.Skipped
}

// GetSnapshot returns a snapshot of current progress
func (p *ProgressTracker) GetSnapshot() ProgressSnapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()

	now := p.now()
	elapsed := now.Sub(p.startedAt)
	percentage := 0.0
	if p.totalTerms > 0 {
		percentage = float64(p.processed) / float64(p.totalTerms) * 100
	}

	var eta time.Time
	var remaining time.Duration
	if p.processed > 0 {
		perTerm := elapsed / time.Duration(p.processed)
		remaining = perTerm * time.Duration(max(0, p.totalTerms-p.processed))
		eta = now.Add(remaining)
	}

	reqPerSecond := 0.0
	if elapsed.Seconds() > 0 {
		reqPerSecond = float64(p.totalRequests) / elapsed.Seconds()
	}

	return ProgressSnapshot{
		Status:         p.status,
		StartedAt:      p.startedAt,
		Elapsed:        elapsed,
		TotalTerms:     p.totalTerms,
		Processed:      p.processed,
		Success:        p.success,
		Failed:         p.failed,
		Skipped:        p.skipped,
		Empty:          p.empty,
		Records:        p.records,
		Percentage:     percentage,
		CurrentTerm:    p.currentTerm,
		LastError:      p.lastError,
		TotalRequests:  p.totalRequests,
		RateLimitHits:  p.rateLimitHits,
		NetworkErrors:  p.networkErrors,
		RequestsPerSec: reqPerSecond,
		ETA:            eta,
		Remaining:      remaining,
	}
}

// ProgressSnapshot is a point-in-time snapshot of progress
type ProgressSnapshot struct {
	Status         string
	StartedAt      time.Time
	Elapsed        time.Duration
	TotalTerms     int
	Processed      int
	Success        int
	Failed         int
	Skipped        int
	Empty          int
	Records        int
	Percentage     float64
	CurrentTerm    string
	LastError      string
	TotalRequests  int
	RateLimitHits  int
	NetworkErrors  int
	RequestsPerSec float64
	ETA            time.Time
	Remaining      time.Duration
}
