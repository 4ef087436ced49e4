package config

import (
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/service/tracker"
	"github.com/teamsense-lab/argus/pkg/utils/crypto"
	"github.com/urfave/cli/v3"
)

// Tracker holds CLI flags for the tracker OAuth integration
type Tracker struct {
	clientID         string
	clientSecret     string
	redirectURI      string
	authorizeURL     string
	tokenURL         string
	encryptionSecret string
}

func (x *Tracker) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tracker-client-id",
			Usage:       "Tracker OAuth client ID",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TRACKER_CLIENT_ID"),
			Destination: &x.clientID,
		},
		&cli.StringFlag{
			Name:        "tracker-client-secret",
			Usage:       "Tracker OAuth client secret",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TRACKER_CLIENT_SECRET"),
			Destination: &x.clientSecret,
		},
		&cli.StringFlag{
			Name:        "tracker-redirect-uri",
			Usage:       "OAuth redirect URI registered with the tracker",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TRACKER_REDIRECT_URI"),
			Destination: &x.redirectURI,
		},
		&cli.StringFlag{
			Name:        "tracker-authorize-url",
			Usage:       "Override the tracker authorization endpoint",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TRACKER_AUTHORIZE_URL"),
			Destination: &x.authorizeURL,
		},
		&cli.StringFlag{
			Name:        "tracker-token-url",
			Usage:       "Override the tracker token endpoint",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TRACKER_TOKEN_URL"),
			Destination: &x.tokenURL,
		},
		&cli.StringFlag{
			Name:        "token-encryption-secret",
			Usage:       "Secret used to encrypt stored OAuth tokens at rest",
			Category:    "Tracker",
			Sources:     cli.EnvVars("ARGUS_TOKEN_ENCRYPTION_SECRET"),
			Destination: &x.encryptionSecret,
		},
	}
}

func (x Tracker) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("client-id.len", len(x.clientID)),
		slog.Int("client-secret.len", len(x.clientSecret)),
		slog.String("redirect-uri", x.redirectURI),
		slog.Int("encryption-secret.len", len(x.encryptionSecret)),
	)
}

// IsConfigured reports whether the OAuth flow can be served
func (x *Tracker) IsConfigured() bool {
	return x.clientID != "" && x.clientSecret != "" && x.redirectURI != ""
}

// Configure builds the OAuth client from the flags
func (x *Tracker) Configure() (interfaces.OAuthClient, error) {
	if !x.IsConfigured() {
		return nil, goerr.New("tracker OAuth configuration is required: set --tracker-client-id, --tracker-client-secret and --tracker-redirect-uri")
	}

	var opts []tracker.OAuthOption
	if x.authorizeURL != "" {
		opts = append(opts, tracker.WithAuthorizeURL(x.authorizeURL))
	}
	if x.tokenURL != "" {
		opts = append(opts, tracker.WithTokenURL(x.tokenURL))
	}

	return tracker.NewOAuth(x.clientID, x.clientSecret, x.redirectURI, opts...), nil
}

// Cipher builds the token cipher from the encryption secret
func (x *Tracker) Cipher() (*crypto.Cipher, error) {
	if x.encryptionSecret == "" {
		return nil, goerr.New("token-encryption-secret is required to store OAuth tokens")
	}
	return crypto.NewCipher(x.encryptionSecret)
}
