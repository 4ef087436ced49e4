package types

// UserID represents an internal user identifier
type UserID string

// String returns the string representation of the user ID
func (id UserID) String() string {
	return string(id)
}

// IsValid checks if the user ID is non-empty
func (id UserID) IsValid() bool {
	return id != ""
}

// OrgID represents an internal organization identifier
type OrgID string

// String returns the string representation of the organization ID
func (id OrgID) String() string {
	return string(id)
}

// IsValid checks if the organization ID is non-empty
func (id OrgID) IsValid() bool {
	return id != ""
}

// WorkspaceID represents an external provider workspace identifier
type WorkspaceID string

// PendingWorkspace marks a credential created at flow start, before
// the first successful code exchange resolved the real workspace.
const PendingWorkspace WorkspaceID = "pending"

// String returns the string representation of the workspace ID
func (id WorkspaceID) String() string {
	return string(id)
}

// IsPending reports whether the workspace has not been resolved yet
func (id WorkspaceID) IsPending() bool {
	return id == PendingWorkspace || id == ""
}

// AccountID represents an external platform account identifier
type AccountID string

// String returns the string representation of the account ID
func (id AccountID) String() string {
	return string(id)
}

// IsValid checks if the account ID is non-empty
func (id AccountID) IsValid() bool {
	return id != ""
}

// TeamID represents an external tracker team identifier
type TeamID string

// String returns the string representation of the team ID
func (id TeamID) String() string {
	return string(id)
}
