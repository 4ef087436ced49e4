package interfaces

import (
	"context"

	"github.com/teamsense-lab/argus/pkg/domain/model"
)

// ChatService lists the chat workspace's members as identity
// candidates for the chat platform.
type ChatService interface {
	ListUsers(ctx context.Context) ([]model.ExternalIdentity, error)
}
