package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

type credentialRepository struct {
	mu      sync.RWMutex
	records map[types.UserID]*model.CredentialRecord
}

func newCredentialRepository() *credentialRepository {
	return &credentialRepository{
		records: make(map[types.UserID]*model.CredentialRecord),
	}
}

func copyCredential(c *model.CredentialRecord) *model.CredentialRecord {
	copied := *c
	return &copied
}

func (r *credentialRepository) Get(ctx context.Context, userID types.UserID) (*model.CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.records[userID]
	if !ok {
		return nil, nil
	}
	return copyCredential(record), nil
}

func (r *credentialRepository) List(ctx context.Context) ([]*model.CredentialRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	records := make([]*model.CredentialRecord, 0, len(r.records))
	for _, record := range r.records {
		records = append(records, copyCredential(record))
	}
	return records, nil
}

func (r *credentialRepository) Put(ctx context.Context, record *model.CredentialRecord) error {
	if !record.UserID.IsValid() {
		return goerr.New("credential record requires a user ID")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.records[record.UserID] = copyCredential(record)
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.records, userID)
	return nil
}
