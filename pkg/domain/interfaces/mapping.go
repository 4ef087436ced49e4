package interfaces

import (
	"context"

	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// MappingRepository persists identity mappings and their paired
// correlation records.
//
// Consistency policy: a mapping write and its correlation write happen
// in ONE transaction. Assign additionally enforces the single-owner
// invariant by evicting every other owner of the target identifier
// before committing, so the storage never observes dual ownership.
type MappingRepository interface {
	// Get retrieves a mapping by its natural key. Returns (nil, nil)
	// when no record exists.
	Get(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) (*model.IdentityMapping, error)

	// ListByOwner retrieves all mappings held by a user
	ListByOwner(ctx context.Context, owner types.UserID) ([]*model.IdentityMapping, error)

	// Assign commits a successful mapping: within one transaction it
	// strips the target identifier from every other owner (mapping and
	// correlation record), then upserts the mapping and the paired
	// correlation entry for the new owner.
	Assign(ctx context.Context, mapping *model.IdentityMapping) error

	// RecordFailure upserts a failed match attempt so the retry window
	// applies. No correlation write is paired because a failure carries
	// no target identifier.
	RecordFailure(ctx context.Context, mapping *model.IdentityMapping) error

	// Unmap removes a mapping and clears the paired correlation field
	// in the same transaction. Unmapping a non-existent mapping is not
	// an error.
	Unmap(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) error

	// DeleteByOwner removes all mappings held by a user, clearing the
	// paired correlation fields.
	DeleteByOwner(ctx context.Context, owner types.UserID) error

	// GetCorrelation retrieves the denormalized per-(org, email)
	// record. Returns (nil, nil) when no record exists.
	GetCorrelation(ctx context.Context, orgID types.OrgID, email string) (*model.CorrelationRecord, error)
}
