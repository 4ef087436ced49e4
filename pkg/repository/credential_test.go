package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// withinSecond compares timestamps with tolerance for Firestore precision
func withinSecond(t testing.TB, got, want time.Time) {
	t.Helper()
	diff := got.Sub(want)
	gt.Bool(t, diff > -time.Second && diff < time.Second).True()
}

func runCredentialRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC().Truncate(time.Millisecond)
		record := &model.CredentialRecord{
			UserID:          "user-123",
			WorkspaceID:     "ws-abc",
			WorkspaceName:   "Acme",
			WorkspaceURL:    "acme",
			Source:          types.TokenSourceOAuth,
			EncAccessToken:  "enc-access",
			EncRefreshToken: "enc-refresh",
			ExpiresAt:       now.Add(24 * time.Hour),
			CreatedAt:       now,
			UpdatedAt:       now,
		}

		gt.NoError(t, repo.Credential().Put(ctx, record)).Required()

		retrieved, err := repo.Credential().Get(ctx, record.UserID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()

		gt.Value(t, retrieved.UserID).Equal(record.UserID)
		gt.Value(t, retrieved.WorkspaceID).Equal(record.WorkspaceID)
		gt.Value(t, retrieved.Source).Equal(record.Source)
		gt.Value(t, retrieved.EncAccessToken).Equal(record.EncAccessToken)
		gt.Value(t, retrieved.EncRefreshToken).Equal(record.EncRefreshToken)
		withinSecond(t, retrieved.ExpiresAt, record.ExpiresAt)
	})

	t.Run("Get not found returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		retrieved, err := repo.Credential().Get(ctx, "no-such-user")
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).Nil()
	})

	t.Run("Put overwrites existing", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		record := &model.CredentialRecord{
			UserID:         "user-456",
			WorkspaceID:    types.PendingWorkspace,
			EncVerifier:    "enc-verifier",
			Source:         types.TokenSourceOAuth,
			EncAccessToken: "enc-old",
		}
		gt.NoError(t, repo.Credential().Put(ctx, record)).Required()

		record.WorkspaceID = "ws-real"
		record.EncVerifier = ""
		record.EncAccessToken = "enc-new"
		gt.NoError(t, repo.Credential().Put(ctx, record)).Required()

		retrieved, err := repo.Credential().Get(ctx, record.UserID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()
		gt.Value(t, string(retrieved.WorkspaceID)).Equal("ws-real")
		gt.Value(t, retrieved.EncAccessToken).Equal("enc-new")
		gt.Value(t, retrieved.EncVerifier).Equal("")
	})

	t.Run("Put rejects empty user ID", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.Error(t, repo.Credential().Put(ctx, &model.CredentialRecord{}))
	})

	t.Run("Delete", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		record := &model.CredentialRecord{
			UserID:         "user-789",
			WorkspaceID:    "ws-abc",
			Source:         types.TokenSourceOAuth,
			EncAccessToken: "enc-access",
		}
		gt.NoError(t, repo.Credential().Put(ctx, record)).Required()

		gt.NoError(t, repo.Credential().Delete(ctx, record.UserID)).Required()

		retrieved, err := repo.Credential().Get(ctx, record.UserID)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).Nil()
	})

	t.Run("List", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		for _, id := range []types.UserID{"user-a", "user-b"} {
			record := &model.CredentialRecord{
				UserID:         id,
				WorkspaceID:    "ws-abc",
				Source:         types.TokenSourceOAuth,
				EncAccessToken: "enc-access",
			}
			gt.NoError(t, repo.Credential().Put(ctx, record)).Required()
		}

		records, err := repo.Credential().List(ctx)
		gt.NoError(t, err).Required()
		gt.Array(t, records).Length(2)
	})

	t.Run("Delete is idempotent", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Credential().Delete(ctx, "never-existed"))
	})
}
