package model

import "github.com/teamsense-lab/argus/pkg/domain/types"

// ExternalIdentity is a per-request snapshot of a user account on an
// external platform. It is fetched from the provider and never
// persisted by this engine.
type ExternalIdentity struct {
	ID     types.AccountID
	Email  string
	Name   string
	Active bool
}

// Workspace describes the external tracker organization a credential
// is bound to
type Workspace struct {
	ID     types.WorkspaceID
	Name   string
	URLKey string
}

// Team is an external tracker team
type Team struct {
	ID   types.TeamID
	Name string
	Key  string
}

// AuthFlow is the result of starting an OAuth authorization flow
type AuthFlow struct {
	URL   string
	State string
}
