package memory

import (
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
)

// Repository is an in-memory implementation for development and tests
type Repository struct {
	credential *credentialRepository
	mapping    *mappingRepository
	dayCache   *dayCacheRepository
}

var _ interfaces.Repository = &Repository{}

// New creates a new in-memory repository
func New() *Repository {
	return &Repository{
		credential: newCredentialRepository(),
		mapping:    newMappingRepository(),
		dayCache:   newDayCacheRepository(),
	}
}

func (r *Repository) Credential() interfaces.CredentialRepository {
	return r.credential
}

func (r *Repository) Mapping() interfaces.MappingRepository {
	return r.mapping
}

func (r *Repository) DayCache() interfaces.DayCacheRepository {
	return r.dayCache
}

// Close is a no-op for the in-memory repository
func (r *Repository) Close() error {
	return nil
}
