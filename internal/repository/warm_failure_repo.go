package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"carcompare-api/internal/model"
)

// WarmFailureRepo tracks catalog terms the warmer failed to fetch
type WarmFailureRepo struct {
	pool *pgxpool.Pool
}

func NewWarmFailureRepo(pool *pgxpool.Pool) *WarmFailureRepo {
	return &WarmFailureRepo{pool: pool}
}

// Upsert records a failure for term. Repeated failures increment the
// attempt counter and reopen a resolved record.
func (r *WarmFailureRepo) Upsert(ctx context.Context, term, errType, message string) error {
	var next *time.Time
	if delay := model.RetryDelay(errType); delay > 0 {
		t := time.Now().Add(delay)
		next = &t
	}

	query := `
		INSERT INTO warm_failures (term, error_type, message, attempts, last_attempt, next_attempt)
		VALUES ($1, $2, $3, 1, NOW(), $4)
		ON CONFLICT (term) DO UPDATE SET
			error_type = EXCLUDED.error_type,
			message = EXCLUDED.message,
			attempts = warm_failures.attempts + 1,
			last_attempt = NOW(),
			next_attempt = EXCLUDED.next_attempt,
			resolved = FALSE,
			resolved_at = NULL
	`

	if _, err := r.pool.Exec(ctx, query, term, errType, message, next); err != nil {
		return fmt.Errorf("failed to upsert warm failure: %w", err)
	}
	return nil
}

// MarkResolved closes the failure of a term that was fetched successfully
func (r *WarmFailureRepo) MarkResolved(ctx context.Context, term string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE warm_failures
		SET resolved = TRUE, resolved_at = NOW()
		WHERE term = $1 AND resolved = FALSE
	`, term)
	if err != nil {
		return fmt.Errorf("failed to mark failure as resolved: %w", err)
	}
	return nil
}

// PendingRetries returns unresolved failures whose retry time has come
func (r *WarmFailureRepo) PendingRetries(ctx context.Context, limit int) ([]model.WarmFailure, error) {
	query := `
		SELECT term, error_type, message, attempts, last_attempt, next_attempt,
			resolved, resolved_at, created_at
		FROM warm_failures
		WHERE resolved = FALSE
		AND next_attempt IS NOT NULL AND next_attempt <= NOW()
		ORDER BY next_attempt ASC, attempts ASC
		LIMIT $1
	`

	rows, err := r.pool.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending retries: %w", err)
	}
	defer rows.Close()

	var failures []model.WarmFailure
	for rows.Next() {
		var f model.WarmFailure
		err := rows.Scan(
			&f.Term, &f.ErrorType, &f.Message, &f.Attempts, &f.LastAttempt,
			&f.NextAttempt, &f.Resolved, &f.ResolvedAt, &f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan failure row: %w", err)
		}
		failures = append(failures, f)
	}

	return failures, rows.Err()
}

// Stats counts unresolved failures per error type
func (r *WarmFailureRepo) Stats(ctx context.Context) (map[string]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT error_type, COUNT(*)
		FROM warm_failures
		WHERE resolved = FALSE
		GROUP BY error_type
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query failure stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var errType string
		var count int
		if err := rows.Scan(&errType, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[errType] = count
	}

	return stats, rows.Err()
}

// DeleteResolved removes resolved records older than olderThan
func (r *WarmFailureRepo) DeleteResolved(ctx context.Context, olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan)

	result, err := r.pool.Exec(ctx, `
		DELETE FROM warm_failures
		WHERE resolved = TRUE AND resolved_at < $1
	`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete resolved failures: %w", err)
	}

	return result.RowsAffected(), nil
}
