package model

import (
	"strings"
	"time"
)

// WarmFailure is a catalog term the warmer could not fetch, kept for retry
type WarmFailure struct {
	Term        string     `json:"term"`
	ErrorType   string     `json:"error_type"`
	Message     string     `json:"message"`
	Attempts    int        `json:"attempts"`
	LastAttempt time.Time  `json:"last_attempt"`
	NextAttempt *time.Time `json:"next_attempt,omitempty"`
	Resolved    bool       `json:"resolved"`
	ResolvedAt  *time.Time `json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Error types for categorization
const (
	ErrTypeRateLimit = "rate_limit"
	ErrTypeNotFound  = "not_found"
	ErrTypeUpstream  = "upstream"
	ErrTypeNetwork   = "network"
	ErrTypeParse     = "parse"
	ErrTypeUnknown   = "unknown"
)

// ClassifyError categorizes an error message into one of the ErrType values
func ClassifyError(errMsg string) string {
	switch {
	case containsAny(errMsg, "rate limit", "429", "too many requests"):
		return ErrTypeRateLimit
	case containsAny(errMsg, "not found", "status 404", "no records"):
		return ErrTypeNotFound
	case containsAny(errMsg, "status 5", "cars api"):
		return ErrTypeUpstream
	case containsAny(errMsg, "connection", "timeout", "deadline", "network", "dial"):
		return ErrTypeNetwork
	case containsAny(errMsg, "parse", "invalid"):
		return ErrTypeParse
	default:
		return ErrTypeUnknown
	}
}

// RetryDelay returns how long to wait before retrying a failure of the given type.
// Zero means the failure is not retried automatically.
func RetryDelay(errType string) time.Duration {
	switch errType {
	case ErrTypeRateLimit:
		return time.Minute
	case ErrTypeNetwork, ErrTypeUpstream:
		return 5 * time.Minute
	case ErrTypeNotFound:
		return 0
	default:
		return 30 * time.Minute
	}
}

func containsAny(s string, substrs ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrs {
		if strings.Contains(lower, strings.ToLower(sub)) {
			return true
		}
	}
	return false
}
