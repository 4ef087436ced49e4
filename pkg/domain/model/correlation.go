package model

import (
	"time"

	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// CorrelationRecord is a denormalized per-(organization, email)
// aggregate carrying one target identifier per platform. Every
// IdentityMapping write is paired with a write to this record inside
// the same transaction; the two must never diverge.
type CorrelationRecord struct {
	OrgID     types.OrgID
	Email     string
	Owner     types.UserID
	ChatID    types.AccountID
	TrackerID types.AccountID
	UpdatedAt time.Time
}

// Target returns the stored identifier for the given platform
func (c *CorrelationRecord) Target(platform types.Platform) types.AccountID {
	switch platform {
	case types.PlatformChat:
		return c.ChatID
	case types.PlatformTracker:
		return c.TrackerID
	default:
		return ""
	}
}

// SetTarget stores the identifier for the given platform
func (c *CorrelationRecord) SetTarget(platform types.Platform, id types.AccountID) {
	switch platform {
	case types.PlatformChat:
		c.ChatID = id
	case types.PlatformTracker:
		c.TrackerID = id
	}
}

// ClearTarget removes the identifier for the given platform
func (c *CorrelationRecord) ClearTarget(platform types.Platform) {
	c.SetTarget(platform, "")
}

// Empty reports whether the record carries no target at all
func (c *CorrelationRecord) Empty() bool {
	return c.ChatID == "" && c.TrackerID == ""
}
