package repository_test

import (
	"context"
	"os"
	"testing"

	"github.com/google/uuid"
	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/repository/firestore"
	"github.com/teamsense-lab/argus/pkg/repository/memory"
)

func TestMemoryRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		return memory.New()
	}

	t.Run("Credential", func(t *testing.T) {
		runCredentialRepositoryTest(t, newRepo)
	})
	t.Run("Mapping", func(t *testing.T) {
		runMappingRepositoryTest(t, newRepo)
	})
	t.Run("DayCache", func(t *testing.T) {
		runDayCacheRepositoryTest(t, newRepo)
	})
}

func TestFirestoreRepository(t *testing.T) {
	newRepo := func(t *testing.T) interfaces.Repository {
		t.Helper()

		projectID := os.Getenv("TEST_FIRESTORE_PROJECT_ID")
		if projectID == "" {
			t.Skip("TEST_FIRESTORE_PROJECT_ID not set")
		}

		databaseID := os.Getenv("TEST_FIRESTORE_DATABASE_ID")
		if databaseID == "" {
			t.Skip("TEST_FIRESTORE_DATABASE_ID not set")
		}

		ctx := context.Background()
		repo, err := firestore.New(ctx, projectID, databaseID,
			firestore.WithCollectionPrefix("test_"+uuid.New().String()))
		gt.NoError(t, err).Required()

		t.Cleanup(func() {
			gt.NoError(t, repo.Close())
		})

		return repo
	}

	t.Run("Credential", func(t *testing.T) {
		runCredentialRepositoryTest(t, newRepo)
	})
	t.Run("Mapping", func(t *testing.T) {
		runMappingRepositoryTest(t, newRepo)
	})
	t.Run("DayCache", func(t *testing.T) {
		runDayCacheRepositoryTest(t, newRepo)
	})
}
