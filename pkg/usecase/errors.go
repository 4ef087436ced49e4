package usecase

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for use case layer
var (
	// Configuration errors
	ErrAuthNotConfigured = goerr.New("tracker OAuth client is not configured")
	ErrChatNotConfigured = goerr.New("chat service is not configured")

	// Credential errors
	ErrNotConnected = goerr.New("tracker integration is not connected")
	ErrCodeConsumed = goerr.New("authorization code was already used")
)

// Context keys for error values
const (
	UserIDKey   = "user_id"
	PlatformKey = "platform"
)
