package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
)

func runDayCacheRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put and Get before expiry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		values := []string{"alice", "bob"}
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:2026-09-01", values, now.Add(time.Hour))).Required()

		got, err := repo.DayCache().Get(ctx, "oncall:2026-09-01", now)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(2)
		gt.Value(t, got[0]).Equal("alice")
		gt.Value(t, got[1]).Equal("bob")
	})

	t.Run("Empty set stays cached as non-nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:empty", []string{}, now.Add(time.Hour))).Required()

		// A live empty entry must be distinguishable from a miss, or
		// callers would refetch it for the rest of the day.
		got, err := repo.DayCache().Get(ctx, "oncall:empty", now)
		gt.NoError(t, err).Required()
		gt.Value(t, got).NotNil()
		gt.Array(t, got).Length(0)
	})

	t.Run("Get after expiry returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:2026-08-31", []string{"carol"}, now.Add(-time.Minute))).Required()

		got, err := repo.DayCache().Get(ctx, "oncall:2026-08-31", now)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Get at exact expiry returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC().Truncate(time.Millisecond)
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:boundary", []string{"dave"}, now)).Required()

		got, err := repo.DayCache().Get(ctx, "oncall:boundary", now)
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Get missing returns nil", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		got, err := repo.DayCache().Get(ctx, "oncall:never", time.Now().UTC())
		gt.NoError(t, err).Required()
		gt.Value(t, got).Nil()
	})

	t.Run("Put rejects empty key", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.Error(t, repo.DayCache().Put(ctx, "", []string{"x"}, time.Now().Add(time.Hour)))
	})

	t.Run("Put overwrites existing entry", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		now := time.Now().UTC()
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:today", []string{"old"}, now.Add(time.Hour))).Required()
		gt.NoError(t, repo.DayCache().Put(ctx, "oncall:today", []string{"new"}, now.Add(2*time.Hour))).Required()

		got, err := repo.DayCache().Get(ctx, "oncall:today", now)
		gt.NoError(t, err).Required()
		gt.Array(t, got).Length(1)
		gt.Value(t, got[0]).Equal("new")
	})
}
