package interfaces

import (
	"context"

	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// CredentialRepository persists OAuth credential records, one per user
type CredentialRepository interface {
	// Get retrieves the credential for a user. Returns (nil, nil) when
	// no record exists.
	Get(ctx context.Context, userID types.UserID) (*model.CredentialRecord, error)

	// List returns every stored credential, in no particular order
	List(ctx context.Context) ([]*model.CredentialRecord, error)

	// Put upserts the credential record
	Put(ctx context.Context, record *model.CredentialRecord) error

	// Delete removes the credential record. Deleting a non-existent
	// record is not an error.
	Delete(ctx context.Context, userID types.UserID) error
}
