package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"github.com/teamsense-lab/argus/pkg/service/matcher"
	"github.com/teamsense-lab/argus/pkg/utils/async"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
)

// ResolveIdentity returns the owner's mapping for a source email on a
// platform, driven by the freshness policy: fresh mappings are served
// directly, stale ones are served while a re-match runs in the
// background, recent failures are not retried, and missing or
// retryable entries trigger a synchronous match.
func (uc *UseCases) ResolveIdentity(ctx context.Context, owner types.UserID, orgID types.OrgID, email string, platform types.Platform) (*model.IdentityMapping, error) {
	mapping, err := uc.repo.Mapping().Get(ctx, owner, email, platform)
	if err != nil {
		return nil, err
	}

	switch mapping.Freshness(uc.now()) {
	case types.FreshnessFresh:
		return mapping, nil

	case types.FreshnessStale:
		async.Dispatch(ctx, func(ctx context.Context) error {
			_, err := uc.matchAndStore(ctx, owner, orgID, email, platform)
			return err
		})
		return mapping, nil

	case types.FreshnessFailedRecent:
		return nil, nil

	default: // missing or failed long enough ago to retry
		return uc.matchAndStore(ctx, owner, orgID, email, platform)
	}
}

// AssignManual stores an operator-chosen mapping with full confidence
func (uc *UseCases) AssignManual(ctx context.Context, owner types.UserID, orgID types.OrgID, email string, platform types.Platform, target types.AccountID, targetName string) (*model.IdentityMapping, error) {
	mapping := &model.IdentityMapping{
		Owner:            owner,
		OrgID:            orgID,
		SourceIdentifier: email,
		TargetPlatform:   platform,
		TargetIdentifier: target,
		TargetName:       targetName,
		Type:             types.MappingTypeManual,
		Confidence:       1.0,
		Success:          true,
		LastVerifiedAt:   uc.now(),
	}
	if err := uc.repo.Mapping().Assign(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// Unmap removes one mapping and its correlation entry
func (uc *UseCases) Unmap(ctx context.Context, owner types.UserID, email string, platform types.Platform) error {
	return uc.repo.Mapping().Unmap(ctx, owner, email, platform)
}

// AutoMapResult summarizes a bulk matching run
type AutoMapResult struct {
	Total     int
	Matched   int
	Unmatched int
	Mappings  []*model.IdentityMapping
}

// AutoMapUsers matches member records against the connected tracker
// workspace and stores the outcomes. When members is nil the active
// chat directory is used. Unmatched members are recorded as failures
// so they are not retried until the retry window passes.
func (uc *UseCases) AutoMapUsers(ctx context.Context, owner types.UserID, orgID types.OrgID, members []model.ExternalIdentity) (*AutoMapResult, error) {
	if members == nil {
		if uc.chat == nil {
			return nil, goerr.Wrap(ErrChatNotConfigured, "no member records to match")
		}
		all, err := uc.chat.ListUsers(ctx)
		if err != nil {
			return nil, err
		}
		for _, u := range all {
			if u.Active {
				members = append(members, u)
			}
		}
	}

	candidates, err := uc.trackerUsers(ctx, owner)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	result := &AutoMapResult{}
	for _, member := range members {
		source := member.Email
		if source == "" {
			source = member.Name
		}
		if source == "" {
			continue
		}
		result.Total++

		var m *matcher.Match
		if member.Email != "" {
			m = matcher.MatchEmail(member.Email, candidates, uc.scoring)
		}
		if m == nil && member.Name != "" {
			m = matcher.MatchName(member.Name, candidates, uc.scoring)
		}

		if m == nil {
			result.Unmatched++
			failed := &model.IdentityMapping{
				Owner:            owner,
				OrgID:            orgID,
				SourceIdentifier: source,
				TargetPlatform:   types.PlatformTracker,
				Type:             types.MappingTypeAutomated,
				Success:          false,
				LastVerifiedAt:   now,
			}
			if err := uc.repo.Mapping().RecordFailure(ctx, failed); err != nil {
				return nil, err
			}
			continue
		}

		mapping := &model.IdentityMapping{
			Owner:            owner,
			OrgID:            orgID,
			SourceIdentifier: source,
			TargetPlatform:   types.PlatformTracker,
			TargetIdentifier: m.ID,
			TargetName:       m.Name,
			Type:             types.MappingTypeAutomated,
			Confidence:       m.Confidence,
			Success:          true,
			LastVerifiedAt:   now,
		}
		if err := uc.repo.Mapping().Assign(ctx, mapping); err != nil {
			return nil, err
		}
		result.Matched++
		result.Mappings = append(result.Mappings, mapping)
	}

	logging.From(ctx).Info("auto-map run finished",
		"owner", owner,
		"total", result.Total,
		"matched", result.Matched,
		"unmatched", result.Unmatched,
	)

	return result, nil
}

// ListMappings returns the owner's stored mappings
func (uc *UseCases) ListMappings(ctx context.Context, owner types.UserID) ([]*model.IdentityMapping, error) {
	return uc.repo.Mapping().ListByOwner(ctx, owner)
}

// matchAndStore runs one match attempt and persists the outcome
func (uc *UseCases) matchAndStore(ctx context.Context, owner types.UserID, orgID types.OrgID, email string, platform types.Platform) (*model.IdentityMapping, error) {
	candidates, err := uc.platformUsers(ctx, owner, platform)
	if err != nil {
		return nil, err
	}

	now := uc.now()
	m := matcher.MatchEmail(email, candidates, uc.scoring)
	if m == nil {
		failed := &model.IdentityMapping{
			Owner:            owner,
			OrgID:            orgID,
			SourceIdentifier: email,
			TargetPlatform:   platform,
			Type:             types.MappingTypeAutomated,
			Success:          false,
			LastVerifiedAt:   now,
		}
		if err := uc.repo.Mapping().RecordFailure(ctx, failed); err != nil {
			return nil, err
		}
		return nil, nil
	}

	mapping := &model.IdentityMapping{
		Owner:            owner,
		OrgID:            orgID,
		SourceIdentifier: email,
		TargetPlatform:   platform,
		TargetIdentifier: m.ID,
		TargetName:       m.Name,
		Type:             types.MappingTypeAutomated,
		Confidence:       m.Confidence,
		Success:          true,
		LastVerifiedAt:   now,
	}
	if err := uc.repo.Mapping().Assign(ctx, mapping); err != nil {
		return nil, err
	}
	return mapping, nil
}

// platformUsers returns the candidate directory for a platform
func (uc *UseCases) platformUsers(ctx context.Context, owner types.UserID, platform types.Platform) ([]model.ExternalIdentity, error) {
	switch platform {
	case types.PlatformTracker:
		return uc.trackerUsers(ctx, owner)
	case types.PlatformChat:
		if uc.chat == nil {
			return nil, goerr.Wrap(ErrChatNotConfigured, "cannot list chat users")
		}
		return uc.chat.ListUsers(ctx)
	default:
		return nil, goerr.New("unsupported platform", goerr.V(PlatformKey, platform))
	}
}

// trackerUsers returns the connected workspace's user directory,
// cached per workspace
func (uc *UseCases) trackerUsers(ctx context.Context, owner types.UserID) ([]model.ExternalIdentity, error) {
	if uc.factory == nil {
		return nil, goerr.Wrap(ErrAuthNotConfigured, "cannot list tracker users")
	}

	record, err := uc.repo.Credential().Get(ctx, owner)
	if err != nil {
		return nil, err
	}
	if record == nil || !record.Connected() {
		return nil, goerr.Wrap(ErrNotConnected, "cannot list tracker users", goerr.V(UserIDKey, owner))
	}

	if users, ok := uc.users.Get(record.WorkspaceID); ok {
		return users, nil
	}

	token, err := uc.GetValidToken(ctx, owner)
	if err != nil {
		return nil, err
	}

	users, partial, err := uc.factory(token).ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	if partial {
		logging.From(ctx).Warn("tracker user directory truncated by page ceiling",
			"workspace_id", record.WorkspaceID, "count", len(users))
	}

	uc.users.Set(record.WorkspaceID, users)
	return users, nil
}
