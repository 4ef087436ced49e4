package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

// RefreshWorkspaceDirectories re-warms the user directory cache for
// every connected workspace. One failing workspace does not abort the
// rest; the first error is reported after all workspaces were tried.
func (uc *UseCases) RefreshWorkspaceDirectories(ctx context.Context) error {
	if uc.factory == nil {
		return goerr.Wrap(ErrAuthNotConfigured, "cannot refresh directories")
	}

	credentials, err := uc.repo.Credential().List(ctx)
	if err != nil {
		return err
	}

	var firstErr error
	seen := make(map[types.WorkspaceID]bool)
	for _, record := range credentials {
		if !record.Connected() || seen[record.WorkspaceID] {
			continue
		}
		seen[record.WorkspaceID] = true

		token, err := uc.GetValidToken(ctx, record.UserID)
		if err != nil {
			logging.From(ctx).Warn("skipping workspace directory refresh",
				"workspace_id", record.WorkspaceID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		users, partial, err := uc.factory(token).ListUsers(ctx)
		if err != nil {
			logging.From(ctx).Warn("failed to refresh workspace directory",
				"workspace_id", record.WorkspaceID, "error", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if partial {
			logging.From(ctx).Warn("workspace directory truncated by page ceiling",
				"workspace_id", record.WorkspaceID, "count", len(users))
		}

		uc.users.Set(record.WorkspaceID, users)
	}

	return firstErr
}
