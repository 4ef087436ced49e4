package chat

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/slack-go/slack"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// slackAPI is the subset of the Slack client the service uses
type slackAPI interface {
	GetUsersContext(ctx context.Context, options ...slack.GetUsersOption) ([]slack.User, error)
}

// client implements interfaces.ChatService on top of the Slack Web API
type client struct {
	api slackAPI
}

var _ interfaces.ChatService = &client{}

// Option is a functional option for client configuration
type Option func(*client)

// WithAPI replaces the Slack API client, used by tests
func WithAPI(api slackAPI) Option {
	return func(c *client) {
		c.api = api
	}
}

// New creates a chat service with the provided bot token
func New(token string, opts ...Option) (interfaces.ChatService, error) {
	c := &client{}
	for _, opt := range opts {
		opt(c)
	}

	if c.api == nil {
		if token == "" {
			return nil, goerr.New("Slack bot token is required")
		}
		c.api = slack.New(token)
	}

	return c, nil
}

// ListUsers retrieves the workspace members. Deleted accounts and bots
// are reported inactive so callers can filter on the Active flag.
func (c *client) ListUsers(ctx context.Context) ([]model.ExternalIdentity, error) {
	users, err := c.api.GetUsersContext(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list chat users")
	}

	identities := make([]model.ExternalIdentity, 0, len(users))
	for _, u := range users {
		identities = append(identities, model.ExternalIdentity{
			ID:     types.AccountID(u.ID),
			Email:  u.Profile.Email,
			Name:   displayName(&u),
			Active: !u.Deleted && !u.IsBot && u.ID != "USLACKBOT",
		})
	}

	return identities, nil
}

func displayName(u *slack.User) string {
	if u.Profile.DisplayName != "" {
		return u.Profile.DisplayName
	}
	if u.RealName != "" {
		return u.RealName
	}
	return u.Name
}
