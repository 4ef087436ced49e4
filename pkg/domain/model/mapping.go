package model

import (
	"time"

	"github.com/teamsense-lab/argus/pkg/domain/types"
)

const (
	// FreshWindow is how long a successful mapping may be served
	// without re-verification
	FreshWindow = 7 * 24 * time.Hour
	// RetryWindow is how long a failed match attempt blocks retries
	RetryWindow = 24 * time.Hour
)

// IdentityMapping correlates an internal user's source identifier
// (typically an email) with an account on an external platform.
//
// Single-owner invariant: for a given (target platform, target
// identifier) at most one owner holds an active mapping. The
// repository enforces this by evicting other owners inside the same
// transaction that commits a new mapping.
type IdentityMapping struct {
	Owner            types.UserID
	OrgID            types.OrgID
	SourceIdentifier string // e.g. "jane@acme.com"
	TargetPlatform   types.Platform
	TargetIdentifier types.AccountID
	TargetName       string
	Type             types.MappingType
	Confidence       float64
	Success          bool
	CreatedAt        time.Time
	LastVerifiedAt   time.Time
}

// Freshness classifies the mapping per the freshness/retry policy:
// successful mappings are fresh for 7 days then stale; failed attempts
// block retries for 24 hours.
func (m *IdentityMapping) Freshness(now time.Time) types.Freshness {
	if m == nil {
		return types.FreshnessMissing
	}

	verifiedAt := m.LastVerifiedAt
	if verifiedAt.IsZero() {
		verifiedAt = m.CreatedAt
	}
	age := now.Sub(verifiedAt)

	if m.Success {
		if age < FreshWindow {
			return types.FreshnessFresh
		}
		return types.FreshnessStale
	}

	if age < RetryWindow {
		return types.FreshnessFailedRecent
	}
	return types.FreshnessFailedRetryable
}
