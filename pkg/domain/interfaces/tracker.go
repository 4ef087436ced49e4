package interfaces

import (
	"context"

	"github.com/teamsense-lab/argus/pkg/domain/model"
)

// TrackerClient is an authenticated client for the external work
// tracker. List operations paginate with a bounded page-count ceiling;
// the partial return value reports whether the ceiling truncated the
// result.
type TrackerClient interface {
	// Viewer returns the account the access token belongs to
	Viewer(ctx context.Context) (*model.ExternalIdentity, error)

	// Organization returns the workspace the token is scoped to
	Organization(ctx context.Context) (*model.Workspace, error)

	// Teams lists the workspace's teams
	Teams(ctx context.Context) ([]*model.Team, error)

	// ListUsers pages through the workspace's user accounts
	ListUsers(ctx context.Context) (users []model.ExternalIdentity, partial bool, err error)

	// ListActiveIssues pages through started/unstarted issues with
	// their assignees
	ListActiveIssues(ctx context.Context) (issues []model.Issue, partial bool, err error)
}

// TrackerClientFactory builds a client bound to an access token
type TrackerClientFactory func(accessToken string) TrackerClient

// OAuthClient drives the tracker's authorization-code flow
type OAuthClient interface {
	// AuthorizationURL builds the user-facing authorization URL,
	// omitting PKCE parameters when challenge is empty
	AuthorizationURL(state, challenge string) string

	// Exchange trades an authorization code for a token set
	Exchange(ctx context.Context, code, verifier string) (*model.TokenSet, error)

	// Refresh trades a refresh token for a new token set
	Refresh(ctx context.Context, refreshToken string) (*model.TokenSet, error)
}
