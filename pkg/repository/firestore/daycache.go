package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const dayCacheCollection = "day_cache"

type dayCacheRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.DayCacheRepository = &dayCacheRepository{}

func newDayCacheRepository(client *firestore.Client) *dayCacheRepository {
	return &dayCacheRepository{
		client: client,
	}
}

// dayCacheDoc is the Firestore persistence model. Firestore TTL
// policies delete expired docs lazily, so expires_at is also honored
// on read.
type dayCacheDoc struct {
	Values    []string  `firestore:"values"`
	ExpiresAt time.Time `firestore:"expires_at"`
}

func (r *dayCacheRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + dayCacheCollection)
	}
	return r.client.Collection(dayCacheCollection)
}

func (r *dayCacheRepository) Get(ctx context.Context, key string, now time.Time) ([]string, error) {
	doc, err := r.collection().Doc(key).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get day cache entry", goerr.V("key", key))
	}

	var dd dayCacheDoc
	if err := doc.DataTo(&dd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal day cache entry", goerr.V("key", key))
	}

	if !dd.ExpiresAt.After(now) {
		return nil, nil
	}
	if dd.Values == nil {
		// An empty set decodes as nil. Callers use nil to mean a miss,
		// so a live empty entry must come back as a non-nil slice.
		return []string{}, nil
	}
	return dd.Values, nil
}

func (r *dayCacheRepository) Put(ctx context.Context, key string, values []string, expiresAt time.Time) error {
	if key == "" {
		return goerr.New("day cache key is required")
	}

	doc := &dayCacheDoc{Values: values, ExpiresAt: expiresAt}
	if _, err := r.collection().Doc(key).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to save day cache entry", goerr.V("key", key))
	}
	return nil
}
