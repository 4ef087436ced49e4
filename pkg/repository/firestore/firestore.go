package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
)

type Firestore struct {
	client     *firestore.Client
	credential *credentialRepository
	mapping    *mappingRepository
	dayCache   *dayCacheRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces all collections, used by tests to
// isolate runs against a shared project
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.credential.collectionPrefix = prefix
		f.mapping.collectionPrefix = prefix
		f.dayCache.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID), goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:     client,
		credential: newCredentialRepository(client),
		mapping:    newMappingRepository(client),
		dayCache:   newDayCacheRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Credential() interfaces.CredentialRepository {
	return f.credential
}

func (f *Firestore) Mapping() interfaces.MappingRepository {
	return f.mapping
}

func (f *Firestore) DayCache() interfaces.DayCacheRepository {
	return f.dayCache
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}
