package model

import (
	"time"

	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// DefaultTokenLifetime is assumed when the provider omits expires_in.
// Tracker access tokens live 24 hours.
const DefaultTokenLifetime = 24 * time.Hour

// DefaultRefreshSkew is how long before expiry a token is refreshed
const DefaultRefreshSkew = 60 * time.Minute

// CredentialRecord holds a user's OAuth credential for the tracker
// workspace. Tokens and the ephemeral PKCE verifier are stored only in
// encrypted form.
type CredentialRecord struct {
	UserID        types.UserID
	WorkspaceID   types.WorkspaceID
	WorkspaceName string
	WorkspaceURL  string // URL key of the workspace (e.g. "acme")
	Source        types.TokenSource

	EncAccessToken  string
	EncRefreshToken string // empty when the provider issued no refresh token
	ExpiresAt       time.Time

	// EncVerifier is written once at flow start and cleared after the
	// first successful code exchange.
	EncVerifier string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenSet is the result of a code exchange or token refresh. The
// plaintext tokens are redacted when logged.
type TokenSet struct {
	AccessToken  string `masq:"secret"`
	RefreshToken string `masq:"secret"`
	ExpiresIn    int64  // seconds
}

// Lifetime returns the token lifetime, defaulting when the provider
// omitted expires_in
func (t *TokenSet) Lifetime() time.Duration {
	if t.ExpiresIn <= 0 {
		return DefaultTokenLifetime
	}
	return time.Duration(t.ExpiresIn) * time.Second
}

// NeedsRefresh reports whether the access token should be refreshed
// before use. The skew keeps the token from expiring mid-request.
func (c *CredentialRecord) NeedsRefresh(now time.Time, skew time.Duration) bool {
	if c.ExpiresAt.IsZero() {
		return false
	}
	return !now.Add(skew).Before(c.ExpiresAt)
}

// Connected reports whether the credential completed the auth flow
func (c *CredentialRecord) Connected() bool {
	return !c.WorkspaceID.IsPending() && c.EncAccessToken != ""
}
