package tracker

import (
	"context"
	"net/http"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/shurcooL/graphql"
	"github.com/teamsense-lab/argus/pkg/domain/interfaces"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"golang.org/x/oauth2"
)

const defaultGraphQLEndpoint = "https://api.linear.app/graphql"

// Client is a tracker GraphQL client bound to one access token
type Client struct {
	gql      *graphql.Client
	pageSize int
	maxPages int
}

var _ interfaces.TrackerClient = &Client{}

type clientConfig struct {
	endpoint   string
	baseClient *http.Client
	pageSize   int
	maxPages   int
}

type ClientOption func(*clientConfig)

// WithEndpoint overrides the GraphQL endpoint
func WithEndpoint(u string) ClientOption {
	return func(c *clientConfig) {
		c.endpoint = u
	}
}

// WithHTTPClient sets the base HTTP client the token transport wraps
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *clientConfig) {
		c.baseClient = hc
	}
}

// WithPageSize sets the per-request page size, capped by the provider
// at 100
func WithPageSize(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.pageSize = n
		}
	}
}

// WithMaxPages bounds the pagination loop
func WithMaxPages(n int) ClientOption {
	return func(c *clientConfig) {
		if n > 0 {
			c.maxPages = n
		}
	}
}

func New(accessToken string, opts ...ClientOption) *Client {
	cfg := &clientConfig{
		endpoint: defaultGraphQLEndpoint,
		pageSize: 100,
		maxPages: 20,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	ctx := context.Background()
	if cfg.baseClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, cfg.baseClient)
	}
	httpClient := oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: accessToken,
		TokenType:   "Bearer",
	}))

	return &Client{
		gql:      graphql.NewClient(cfg.endpoint, httpClient),
		pageSize: cfg.pageSize,
		maxPages: cfg.maxPages,
	}
}

// NewFactory returns a factory that binds clients to access tokens
// with a shared configuration
func NewFactory(opts ...ClientOption) interfaces.TrackerClientFactory {
	return func(accessToken string) interfaces.TrackerClient {
		return New(accessToken, opts...)
	}
}

type userNode struct {
	ID     graphql.String
	Name   graphql.String
	Email  graphql.String
	Active graphql.Boolean
}

func (n *userNode) toIdentity() model.ExternalIdentity {
	return model.ExternalIdentity{
		ID:     types.AccountID(n.ID),
		Name:   string(n.Name),
		Email:  string(n.Email),
		Active: bool(n.Active),
	}
}

type pageInfo struct {
	HasNextPage graphql.Boolean
	EndCursor   graphql.String
}

func (c *Client) Viewer(ctx context.Context) (*model.ExternalIdentity, error) {
	var q struct {
		Viewer userNode
	}
	if err := c.gql.Query(ctx, &q, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to query viewer")
	}

	identity := q.Viewer.toIdentity()
	return &identity, nil
}

func (c *Client) Organization(ctx context.Context) (*model.Workspace, error) {
	var q struct {
		Organization struct {
			ID     graphql.String
			Name   graphql.String
			URLKey graphql.String `graphql:"urlKey"`
		}
	}
	if err := c.gql.Query(ctx, &q, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to query organization")
	}

	return &model.Workspace{
		ID:     types.WorkspaceID(q.Organization.ID),
		Name:   string(q.Organization.Name),
		URLKey: string(q.Organization.URLKey),
	}, nil
}

func (c *Client) Teams(ctx context.Context) ([]*model.Team, error) {
	var q struct {
		Teams struct {
			Nodes []struct {
				ID   graphql.String
				Name graphql.String
				Key  graphql.String
			}
		}
	}
	if err := c.gql.Query(ctx, &q, nil); err != nil {
		return nil, goerr.Wrap(err, "failed to query teams")
	}

	teams := make([]*model.Team, 0, len(q.Teams.Nodes))
	for _, n := range q.Teams.Nodes {
		teams = append(teams, &model.Team{
			ID:   types.TeamID(n.ID),
			Name: string(n.Name),
			Key:  string(n.Key),
		})
	}
	return teams, nil
}

// ListUsers pages through the workspace's members. The partial return
// reports truncation by the page ceiling.
func (c *Client) ListUsers(ctx context.Context) ([]model.ExternalIdentity, bool, error) {
	var users []model.ExternalIdentity
	var after *graphql.String

	for page := 0; page < c.maxPages; page++ {
		var q struct {
			Users struct {
				Nodes    []userNode
				PageInfo pageInfo
			} `graphql:"users(first: $first, after: $after)"`
		}
		vars := map[string]interface{}{
			"first": graphql.Int(c.pageSize),
			"after": after,
		}
		if err := c.gql.Query(ctx, &q, vars); err != nil {
			return nil, false, goerr.Wrap(err, "failed to query users", goerr.V("page", page))
		}

		for i := range q.Users.Nodes {
			users = append(users, q.Users.Nodes[i].toIdentity())
		}

		if !bool(q.Users.PageInfo.HasNextPage) {
			return users, false, nil
		}
		cursor := q.Users.PageInfo.EndCursor
		after = &cursor
	}

	return users, true, nil
}

type issueNode struct {
	ID         graphql.String
	Identifier graphql.String
	Title      graphql.String
	Priority   graphql.Float
	DueDate    *graphql.String
	UpdatedAt  time.Time
	Assignee   *userNode
	State      struct {
		Name graphql.String
		Type graphql.String
	}
}

func (n *issueNode) toIssue() model.Issue {
	issue := model.Issue{
		ID:         string(n.ID),
		Identifier: string(n.Identifier),
		Title:      string(n.Title),
		Priority:   int(n.Priority),
		UpdatedAt:  n.UpdatedAt,
		State:      string(n.State.Name),
		StateType:  string(n.State.Type),
	}
	if n.DueDate != nil {
		issue.DueDate = string(*n.DueDate)
	}
	if n.Assignee != nil {
		assignee := n.Assignee.toIdentity()
		issue.Assignee = &assignee
	}
	return issue
}

// ListActiveIssues pages through started and unstarted issues. The
// partial return reports truncation by the page ceiling.
func (c *Client) ListActiveIssues(ctx context.Context) ([]model.Issue, bool, error) {
	var issues []model.Issue
	var after *graphql.String

	for page := 0; page < c.maxPages; page++ {
		var q struct {
			Issues struct {
				Nodes    []issueNode
				PageInfo pageInfo
			} `graphql:"issues(first: $first, after: $after, filter: {state: {type: {in: [\"started\", \"unstarted\"]}}})"`
		}
		vars := map[string]interface{}{
			"first": graphql.Int(c.pageSize),
			"after": after,
		}
		if err := c.gql.Query(ctx, &q, vars); err != nil {
			return nil, false, goerr.Wrap(err, "failed to query issues", goerr.V("page", page))
		}

		for i := range q.Issues.Nodes {
			issues = append(issues, q.Issues.Nodes[i].toIssue())
		}

		if !bool(q.Issues.PageInfo.HasNextPage) {
			return issues, false, nil
		}
		cursor := q.Issues.PageInfo.EndCursor
		after = &cursor
	}

	return issues, true, nil
}
