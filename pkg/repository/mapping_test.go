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

func newTestMapping(owner types.UserID, email string, platform types.Platform, target types.AccountID) *model.IdentityMapping {
	now := time.Now().UTC().Truncate(time.Millisecond)
	return &model.IdentityMapping{
		Owner:            owner,
		OrgID:            "org-1",
		SourceIdentifier: email,
		TargetPlatform:   platform,
		TargetIdentifier: target,
		TargetName:       "Target Name",
		Type:             types.MappingTypeAutomated,
		Confidence:       0.92,
		Success:          true,
		CreatedAt:        now,
		LastVerifiedAt:   now,
	}
}

func runMappingRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Assign and Get", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		gt.NoError(t, repo.Mapping().Assign(ctx, m)).Required()

		retrieved, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()
		gt.Value(t, string(retrieved.TargetIdentifier)).Equal("ext-1")
		gt.Bool(t, retrieved.Success).True()
		gt.Number(t, retrieved.Confidence).Equal(0.92)
	})

	t.Run("Get is case-insensitive on source identifier", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m := newTestMapping("u1", "Jane@Acme.com", types.PlatformTracker, "ext-1")
		gt.NoError(t, repo.Mapping().Assign(ctx, m)).Required()

		retrieved, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()
	})

	t.Run("Get not found returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		retrieved, err := repo.Mapping().Get(ctx, "nobody", "none@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).Nil()
	})

	t.Run("Assign requires target identifier", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "")
		gt.Error(t, repo.Mapping().Assign(ctx, m))
	})

	t.Run("Assign evicts other owners of the same target", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m1 := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		gt.NoError(t, repo.Mapping().Assign(ctx, m1)).Required()

		m2 := newTestMapping("u2", "janet@acme.com", types.PlatformTracker, "ext-1")
		gt.NoError(t, repo.Mapping().Assign(ctx, m2)).Required()

		// u1's mapping must be gone
		evicted, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, evicted).Nil()

		// u2's mapping must be present
		kept, err := repo.Mapping().Get(ctx, "u2", "janet@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, kept).NotNil()
		gt.Value(t, string(kept.TargetIdentifier)).Equal("ext-1")

		// u1's correlation must no longer point at ext-1
		corr1, err := repo.Mapping().GetCorrelation(ctx, "org-1", "jane@acme.com")
		gt.NoError(t, err).Required()
		if corr1 != nil {
			gt.Value(t, string(corr1.TrackerID)).NotEqual("ext-1")
		}

		corr2, err := repo.Mapping().GetCorrelation(ctx, "org-1", "janet@acme.com")
		gt.NoError(t, err).Required()
		gt.Value(t, corr2).NotNil()
		gt.Value(t, string(corr2.TrackerID)).Equal("ext-1")
	})

	t.Run("Assign same owner re-verify keeps CreatedAt", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		created := time.Now().UTC().Add(-48 * time.Hour).Truncate(time.Millisecond)
		m := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		m.CreatedAt = created
		gt.NoError(t, repo.Mapping().Assign(ctx, m)).Required()

		update := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		update.CreatedAt = time.Time{}
		gt.NoError(t, repo.Mapping().Assign(ctx, update)).Required()

		retrieved, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()
		withinSecond(t, retrieved.CreatedAt, created)
	})

	t.Run("Mappings on different platforms coexist", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		tracker := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		chat := newTestMapping("u1", "jane@acme.com", types.PlatformChat, "U123")
		gt.NoError(t, repo.Mapping().Assign(ctx, tracker)).Required()
		gt.NoError(t, repo.Mapping().Assign(ctx, chat)).Required()

		corr, err := repo.Mapping().GetCorrelation(ctx, "org-1", "jane@acme.com")
		gt.NoError(t, err).Required()
		gt.Value(t, corr).NotNil()
		gt.Value(t, string(corr.TrackerID)).Equal("ext-1")
		gt.Value(t, string(corr.ChatID)).Equal("U123")
	})

	t.Run("RecordFailure clears target and marks unsuccessful", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		m := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		gt.NoError(t, repo.Mapping().Assign(ctx, m)).Required()

		failed := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		failed.Success = false
		gt.NoError(t, repo.Mapping().RecordFailure(ctx, failed)).Required()

		retrieved, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).NotNil()
		gt.Bool(t, retrieved.Success).False()
		gt.Value(t, string(retrieved.TargetIdentifier)).Equal("")
	})

	t.Run("Unmap removes mapping and correlation target", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		tracker := newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1")
		chat := newTestMapping("u1", "jane@acme.com", types.PlatformChat, "U123")
		gt.NoError(t, repo.Mapping().Assign(ctx, tracker)).Required()
		gt.NoError(t, repo.Mapping().Assign(ctx, chat)).Required()

		gt.NoError(t, repo.Mapping().Unmap(ctx, "u1", "jane@acme.com", types.PlatformTracker)).Required()

		retrieved, err := repo.Mapping().Get(ctx, "u1", "jane@acme.com", types.PlatformTracker)
		gt.NoError(t, err).Required()
		gt.Value(t, retrieved).Nil()

		corr, err := repo.Mapping().GetCorrelation(ctx, "org-1", "jane@acme.com")
		gt.NoError(t, err).Required()
		gt.Value(t, corr).NotNil()
		gt.Value(t, string(corr.TrackerID)).Equal("")
		gt.Value(t, string(corr.ChatID)).Equal("U123")
	})

	t.Run("Unmap missing mapping is a no-op", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Mapping().Unmap(ctx, "nobody", "none@acme.com", types.PlatformTracker))
	})

	t.Run("ListByOwner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Mapping().Assign(ctx, newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1"))).Required()
		gt.NoError(t, repo.Mapping().Assign(ctx, newTestMapping("u1", "jane@acme.com", types.PlatformChat, "U123"))).Required()
		gt.NoError(t, repo.Mapping().Assign(ctx, newTestMapping("u2", "bob@acme.com", types.PlatformTracker, "ext-2"))).Required()

		mappings, err := repo.Mapping().ListByOwner(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, mappings).Length(2)
		for _, m := range mappings {
			gt.Value(t, m.Owner).Equal(types.UserID("u1"))
		}
	})

	t.Run("DeleteByOwner", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Mapping().Assign(ctx, newTestMapping("u1", "jane@acme.com", types.PlatformTracker, "ext-1"))).Required()
		gt.NoError(t, repo.Mapping().Assign(ctx, newTestMapping("u1", "jane@acme.com", types.PlatformChat, "U123"))).Required()

		gt.NoError(t, repo.Mapping().DeleteByOwner(ctx, "u1")).Required()

		mappings, err := repo.Mapping().ListByOwner(ctx, "u1")
		gt.NoError(t, err).Required()
		gt.Array(t, mappings).Length(0)
	})

	t.Run("GetCorrelation not found returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		corr, err := repo.Mapping().GetCorrelation(ctx, "org-1", "none@acme.com")
		gt.NoError(t, err).Required()
		gt.Value(t, corr).Nil()
	})
}
