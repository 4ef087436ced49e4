package types

// Platform represents an external platform a user account belongs to
type Platform string

const (
	PlatformTracker Platform = "linear"
	PlatformChat    Platform = "slack"
)

// AllPlatforms returns all supported platforms
func AllPlatforms() []Platform {
	return []Platform{
		PlatformTracker,
		PlatformChat,
	}
}

// IsValid checks if the platform is supported
func (p Platform) IsValid() bool {
	switch p {
	case PlatformTracker, PlatformChat:
		return true
	default:
		return false
	}
}

// String returns the string representation of the platform
func (p Platform) String() string {
	return string(p)
}

// MappingType represents how an identity mapping was created
type MappingType string

const (
	MappingTypeManual    MappingType = "manual"
	MappingTypeAutomated MappingType = "automated"
)

// IsValid checks if the mapping type is valid
func (t MappingType) IsValid() bool {
	switch t {
	case MappingTypeManual, MappingTypeAutomated:
		return true
	default:
		return false
	}
}

// String returns the string representation of the mapping type
func (t MappingType) String() string {
	return string(t)
}

// TokenSource represents how a credential was obtained
type TokenSource string

const (
	TokenSourceOAuth  TokenSource = "oauth"
	TokenSourceManual TokenSource = "manual"
)

// IsValid checks if the token source is valid
func (s TokenSource) IsValid() bool {
	switch s {
	case TokenSourceOAuth, TokenSourceManual:
		return true
	default:
		return false
	}
}

// String returns the string representation of the token source
func (s TokenSource) String() string {
	return string(s)
}
