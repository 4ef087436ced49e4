package types

// Freshness classifies a stored identity mapping by age and outcome.
// It decides whether a cached correlation may be served, must be
// re-matched, or may be retried after a failed attempt.
type Freshness string

const (
	// FreshnessMissing means no mapping record exists
	FreshnessMissing Freshness = "missing"
	// FreshnessFresh means a successful mapping is recent enough to reuse
	FreshnessFresh Freshness = "fresh"
	// FreshnessStale means a successful mapping should be re-verified,
	// but its stored value may still be served in the meantime
	FreshnessStale Freshness = "stale"
	// FreshnessFailedRecent means the last attempt failed too recently to retry
	FreshnessFailedRecent Freshness = "failed_recent"
	// FreshnessFailedRetryable means the last failure is old enough to retry
	FreshnessFailedRetryable Freshness = "failed_retryable"
)

// String returns the string representation of the freshness state
func (f Freshness) String() string {
	return string(f)
}

// Serveable reports whether a stored target identifier may be returned
// to the caller without a new match attempt.
func (f Freshness) Serveable() bool {
	return f == FreshnessFresh || f == FreshnessStale
}

// NeedsMatch reports whether a new match attempt should be performed
func (f Freshness) NeedsMatch() bool {
	switch f {
	case FreshnessMissing, FreshnessStale, FreshnessFailedRetryable:
		return true
	default:
		return false
	}
}
