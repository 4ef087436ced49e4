package tracker

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/utils/safe"
)

const (
	defaultAuthorizeURL = "https://linear.app/oauth/authorize"
	defaultTokenURL     = "https://api.linear.app/oauth/token"
)

// ErrInvalidGrant is returned when the provider rejects an
// authorization code or refresh token as consumed or revoked
var ErrInvalidGrant = goerr.New("authorization grant is invalid or already used")

// OAuth drives the provider's authorization-code flow with PKCE
type OAuth struct {
	clientID     string
	clientSecret string
	redirectURI  string
	authorizeURL string
	tokenURL     string
	httpClient   *http.Client
}

type OAuthOption func(*OAuth)

// WithAuthorizeURL overrides the authorization endpoint
func WithAuthorizeURL(u string) OAuthOption {
	return func(o *OAuth) {
		o.authorizeURL = u
	}
}

// WithTokenURL overrides the token endpoint
func WithTokenURL(u string) OAuthOption {
	return func(o *OAuth) {
		o.tokenURL = u
	}
}

// WithOAuthHTTPClient overrides the HTTP client used for token requests
func WithOAuthHTTPClient(c *http.Client) OAuthOption {
	return func(o *OAuth) {
		o.httpClient = c
	}
}

func NewOAuth(clientID, clientSecret, redirectURI string, opts ...OAuthOption) *OAuth {
	o := &OAuth{
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		authorizeURL: defaultAuthorizeURL,
		tokenURL:     defaultTokenURL,
		httpClient:   http.DefaultClient,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// AuthorizationURL builds the user-facing authorization URL. When
// challenge is empty the PKCE parameters are omitted entirely so the
// provider falls back to the plain code flow.
func (o *OAuth) AuthorizationURL(state, challenge string) string {
	params := url.Values{}
	params.Set("client_id", o.clientID)
	params.Set("redirect_uri", o.redirectURI)
	params.Set("response_type", "code")
	params.Set("scope", "read")
	params.Set("state", state)
	if challenge != "" {
		params.Set("code_challenge", challenge)
		params.Set("code_challenge_method", "S256")
	}

	return o.authorizeURL + "?" + params.Encode()
}

// Exchange trades an authorization code for a token set. The verifier
// is sent only when present, mirroring AuthorizationURL.
func (o *OAuth) Exchange(ctx context.Context, code, verifier string) (*model.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", o.redirectURI)
	form.Set("client_id", o.clientID)
	form.Set("client_secret", o.clientSecret)
	if verifier != "" {
		form.Set("code_verifier", verifier)
	}

	return o.requestToken(ctx, form)
}

// Refresh trades a refresh token for a new token set
func (o *OAuth) Refresh(ctx context.Context, refreshToken string) (*model.TokenSet, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)
	form.Set("client_id", o.clientID)
	form.Set("client_secret", o.clientSecret)

	return o.requestToken(ctx, form)
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	Error        string `json:"error"`
	ErrorDesc    string `json:"error_description"`
}

func (o *OAuth) requestToken(ctx context.Context, form url.Values) (*model.TokenSet, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build token request")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return nil, goerr.Wrap(err, "token request failed")
	}
	defer safe.Close(ctx, resp.Body)

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read token response")
	}

	var tr tokenResponse
	if err := json.Unmarshal(body, &tr); err != nil {
		return nil, goerr.Wrap(err, "failed to parse token response",
			goerr.V("status", resp.StatusCode))
	}

	if resp.StatusCode != http.StatusOK || tr.Error != "" {
		if tr.Error == "invalid_grant" {
			return nil, goerr.Wrap(ErrInvalidGrant, "token endpoint rejected the grant",
				goerr.V("description", tr.ErrorDesc))
		}
		return nil, goerr.New("token endpoint returned an error",
			goerr.V("status", resp.StatusCode),
			goerr.V("error", tr.Error),
			goerr.V("description", tr.ErrorDesc))
	}

	if tr.AccessToken == "" {
		return nil, goerr.New("token response has no access token")
	}
	if tr.ExpiresIn <= 0 {
		tr.ExpiresIn = int64(model.DefaultTokenLifetime.Seconds())
	}

	return &model.TokenSet{
		AccessToken:  tr.AccessToken,
		RefreshToken: tr.RefreshToken,
		ExpiresIn:    tr.ExpiresIn,
	}, nil
}
