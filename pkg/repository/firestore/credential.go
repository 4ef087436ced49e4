package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const credentialsCollection = "credentials"

type credentialRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

var _ interfaces.CredentialRepository = &credentialRepository{}

func newCredentialRepository(client *firestore.Client) *credentialRepository {
	return &credentialRepository{
		client: client,
	}
}

// credentialDoc is the Firestore persistence model
type credentialDoc struct {
	UserID          string    `firestore:"user_id"`
	WorkspaceID     string    `firestore:"workspace_id"`
	WorkspaceName   string    `firestore:"workspace_name"`
	WorkspaceURL    string    `firestore:"workspace_url"`
	Source          string    `firestore:"source"`
	EncAccessToken  string    `firestore:"enc_access_token"`
	EncRefreshToken string    `firestore:"enc_refresh_token"`
	ExpiresAt       time.Time `firestore:"expires_at"`
	EncVerifier     string    `firestore:"enc_verifier"`
	CreatedAt       time.Time `firestore:"created_at"`
	UpdatedAt       time.Time `firestore:"updated_at"`
}

func (r *credentialRepository) collection() *firestore.CollectionRef {
	if r.collectionPrefix != "" {
		return r.client.Collection(r.collectionPrefix + "_" + credentialsCollection)
	}
	return r.client.Collection(credentialsCollection)
}

func (r *credentialRepository) toDoc(c *model.CredentialRecord) *credentialDoc {
	return &credentialDoc{
		UserID:          string(c.UserID),
		WorkspaceID:     string(c.WorkspaceID),
		WorkspaceName:   c.WorkspaceName,
		WorkspaceURL:    c.WorkspaceURL,
		Source:          string(c.Source),
		EncAccessToken:  c.EncAccessToken,
		EncRefreshToken: c.EncRefreshToken,
		ExpiresAt:       c.ExpiresAt,
		EncVerifier:     c.EncVerifier,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}
}

func (r *credentialRepository) fromDoc(doc *credentialDoc) *model.CredentialRecord {
	return &model.CredentialRecord{
		UserID:          types.UserID(doc.UserID),
		WorkspaceID:     types.WorkspaceID(doc.WorkspaceID),
		WorkspaceName:   doc.WorkspaceName,
		WorkspaceURL:    doc.WorkspaceURL,
		Source:          types.TokenSource(doc.Source),
		EncAccessToken:  doc.EncAccessToken,
		EncRefreshToken: doc.EncRefreshToken,
		ExpiresAt:       doc.ExpiresAt,
		EncVerifier:     doc.EncVerifier,
		CreatedAt:       doc.CreatedAt,
		UpdatedAt:       doc.UpdatedAt,
	}
}

func (r *credentialRepository) Get(ctx context.Context, userID types.UserID) (*model.CredentialRecord, error) {
	doc, err := r.collection().Doc(string(userID)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, nil
		}
		return nil, goerr.Wrap(err, "failed to get credential", goerr.V("user_id", userID))
	}

	var credDoc credentialDoc
	if err := doc.DataTo(&credDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal credential", goerr.V("user_id", userID))
	}

	return r.fromDoc(&credDoc), nil
}

func (r *credentialRepository) List(ctx context.Context) ([]*model.CredentialRecord, error) {
	iter := r.collection().Documents(ctx)
	defer iter.Stop()

	var records []*model.CredentialRecord
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate credentials")
		}

		var credDoc credentialDoc
		if err := doc.DataTo(&credDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal credential", goerr.V("docID", doc.Ref.ID))
		}
		records = append(records, r.fromDoc(&credDoc))
	}

	return records, nil
}

func (r *credentialRepository) Put(ctx context.Context, record *model.CredentialRecord) error {
	if !record.UserID.IsValid() {
		return goerr.New("credential record requires a user ID")
	}

	if _, err := r.collection().Doc(string(record.UserID)).Set(ctx, r.toDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to save credential", goerr.V("user_id", record.UserID))
	}
	return nil
}

func (r *credentialRepository) Delete(ctx context.Context, userID types.UserID) error {
	if _, err := r.collection().Doc(string(userID)).Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete credential", goerr.V("user_id", userID))
	}
	return nil
}
