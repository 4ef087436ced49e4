package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"github.com/teamsense-lab/argus/pkg/repository/memory"
	"github.com/teamsense-lab/argus/pkg/usecase"
	"github.com/teamsense-lab/argus/pkg/utils/crypto"
)

type stubOAuth struct {
	exchange func(ctx context.Context, code, verifier string) (*model.TokenSet, error)
	refresh  func(ctx context.Context, refreshToken string) (*model.TokenSet, error)
}

func (s *stubOAuth) AuthorizationURL(state, challenge string) string {
	return "https://auth.example.com/authorize?state=" + state + "&code_challenge=" + challenge
}

func (s *stubOAuth) Exchange(ctx context.Context, code, verifier string) (*model.TokenSet, error) {
	return s.exchange(ctx, code, verifier)
}

func (s *stubOAuth) Refresh(ctx context.Context, refreshToken string) (*model.TokenSet, error) {
	return s.refresh(ctx, refreshToken)
}

type stubTrackerClient struct {
	viewer        *model.ExternalIdentity
	org           *model.Workspace
	teams         []*model.Team
	users         []model.ExternalIdentity
	usersPartial  bool
	issues        []model.Issue
	issuesPartial bool

	listUserCalls int
}

func (s *stubTrackerClient) Viewer(ctx context.Context) (*model.ExternalIdentity, error) {
	return s.viewer, nil
}

func (s *stubTrackerClient) Organization(ctx context.Context) (*model.Workspace, error) {
	return s.org, nil
}

func (s *stubTrackerClient) Teams(ctx context.Context) ([]*model.Team, error) {
	return s.teams, nil
}

func (s *stubTrackerClient) ListUsers(ctx context.Context) ([]model.ExternalIdentity, bool, error) {
	s.listUserCalls++
	return s.users, s.usersPartial, nil
}

func (s *stubTrackerClient) ListActiveIssues(ctx context.Context) ([]model.Issue, bool, error) {
	return s.issues, s.issuesPartial, nil
}

type stubChat struct {
	users []model.ExternalIdentity
	err   error
}

func (s *stubChat) ListUsers(ctx context.Context) ([]model.ExternalIdentity, error) {
	return s.users, s.err
}

func newTestCipher(t *testing.T) *crypto.Cipher {
	t.Helper()
	return gt.R1(crypto.NewCipher("test-encryption-secret")).NoError(t)
}

func newCipherWithSecret(secret string) (*crypto.Cipher, error) {
	return crypto.NewCipher(secret)
}

// putConnectedCredential seeds a connected credential whose access
// token is valid until expiresAt
func putConnectedCredential(t *testing.T, repo interfaces.Repository, cipher *crypto.Cipher, userID types.UserID, accessToken, refreshToken string, expiresAt time.Time) *model.CredentialRecord {
	t.Helper()
	ctx := context.Background()

	record := &model.CredentialRecord{
		UserID:        userID,
		WorkspaceID:   "ws-1",
		WorkspaceName: "Acme",
		WorkspaceURL:  "acme",
		Source:        types.TokenSourceOAuth,
		ExpiresAt:     expiresAt,
	}
	record.EncAccessToken = gt.R1(cipher.Encrypt(accessToken)).NoError(t)
	if refreshToken != "" {
		record.EncRefreshToken = gt.R1(cipher.Encrypt(refreshToken)).NoError(t)
	}

	gt.NoError(t, repo.Credential().Put(ctx, record))
	return record
}

func newMemoryRepo() interfaces.Repository {
	return memory.New()
}

func fixedClock(at time.Time) usecase.Option {
	return usecase.WithClock(func() time.Time { return at })
}
