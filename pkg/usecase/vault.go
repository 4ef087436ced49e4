package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
	"github.com/teamsense-lab/argus/pkg/service/tracker"
	"github.com/teamsense-lab/argus/pkg/utils/logging"
	"golang.org/x/sync/errgroup"
)

// IntegrationStatus summarizes a user's tracker connection
type IntegrationStatus struct {
	Connected     bool
	WorkspaceID   types.WorkspaceID
	WorkspaceName string
	WorkspaceURL  string
	Source        types.TokenSource
	ExpiresAt     time.Time
}

// StartAuthFlow begins the OAuth authorization flow. A fresh PKCE pair
// is generated per flow; the verifier is persisted encrypted on a
// pending credential so the callback can complete the exchange.
func (uc *UseCases) StartAuthFlow(ctx context.Context, userID types.UserID) (*model.AuthFlow, error) {
	if uc.oauth == nil {
		return nil, goerr.Wrap(ErrAuthNotConfigured, "cannot start auth flow")
	}
	if uc.cipher == nil {
		return nil, goerr.New("token cipher is not configured")
	}

	verifier, challenge, err := tracker.GeneratePKCE()
	if err != nil {
		return nil, err
	}
	encVerifier, err := uc.cipher.Encrypt(verifier)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encrypt PKCE verifier")
	}

	now := uc.now()
	record, err := uc.repo.Credential().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		record = &model.CredentialRecord{
			UserID:      userID,
			WorkspaceID: types.PendingWorkspace,
			Source:      types.TokenSourceOAuth,
			CreatedAt:   now,
		}
	}
	record.EncVerifier = encVerifier
	record.UpdatedAt = now
	if err := uc.repo.Credential().Put(ctx, record); err != nil {
		return nil, err
	}

	state := uuid.NewString()
	return &model.AuthFlow{
		URL:   uc.oauth.AuthorizationURL(state, challenge),
		State: state,
	}, nil
}

// CompleteAuthFlow exchanges the callback code for tokens, verifies
// workspace access, and persists the connected credential. When the
// code was already consumed and a connected credential exists, that
// credential is returned so callback retries stay idempotent.
func (uc *UseCases) CompleteAuthFlow(ctx context.Context, userID types.UserID, code string) (*model.CredentialRecord, error) {
	if uc.oauth == nil || uc.factory == nil {
		return nil, goerr.Wrap(ErrAuthNotConfigured, "cannot complete auth flow")
	}
	if uc.cipher == nil {
		return nil, goerr.New("token cipher is not configured")
	}

	record, err := uc.repo.Credential().Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	var verifier string
	if record != nil {
		verifier = uc.decrypt(ctx, record.EncVerifier)
	}

	tokens, err := uc.oauth.Exchange(ctx, code, verifier)
	if err != nil {
		if errors.Is(err, tracker.ErrInvalidGrant) {
			latest, gerr := uc.repo.Credential().Get(ctx, userID)
			if gerr == nil && latest != nil && latest.Connected() {
				return latest, nil
			}
			return nil, goerr.Wrap(ErrCodeConsumed, "code exchange rejected", goerr.V(UserIDKey, userID))
		}
		return nil, goerr.Wrap(err, "code exchange failed", goerr.V(UserIDKey, userID))
	}

	client := uc.factory(tokens.AccessToken)

	var viewer *model.ExternalIdentity
	var org *model.Workspace
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		v, err := client.Viewer(egCtx)
		viewer = v
		return err
	})
	eg.Go(func() error {
		o, err := client.Organization(egCtx)
		org = o
		return err
	})
	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "failed to verify workspace access", goerr.V(UserIDKey, userID))
	}

	encAccess, err := uc.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encrypt access token")
	}
	var encRefresh string
	if tokens.RefreshToken != "" {
		if encRefresh, err = uc.cipher.Encrypt(tokens.RefreshToken); err != nil {
			return nil, goerr.Wrap(err, "failed to encrypt refresh token")
		}
	}

	now := uc.now()
	if record == nil {
		record = &model.CredentialRecord{UserID: userID, CreatedAt: now}
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = now
	}
	record.WorkspaceID = org.ID
	record.WorkspaceName = org.Name
	record.WorkspaceURL = org.URLKey
	record.Source = types.TokenSourceOAuth
	record.EncAccessToken = encAccess
	record.EncRefreshToken = encRefresh
	record.ExpiresAt = now.Add(tokens.Lifetime())
	record.EncVerifier = ""
	record.UpdatedAt = now

	if err := uc.repo.Credential().Put(ctx, record); err != nil {
		return nil, err
	}

	uc.users.Invalidate(org.ID)
	logging.From(ctx).Info("tracker workspace connected",
		"user_id", userID,
		"workspace", org.Name,
		"viewer", viewer.Email,
	)

	return record, nil
}

// GetValidToken returns a usable access token, refreshing it when it
// is within the skew window of expiry. When the refresh fails the
// stale token is served rather than failing the caller's request.
func (uc *UseCases) GetValidToken(ctx context.Context, userID types.UserID) (string, error) {
	record, err := uc.repo.Credential().Get(ctx, userID)
	if err != nil {
		return "", err
	}
	if record == nil || !record.Connected() {
		return "", goerr.Wrap(ErrNotConnected, "no usable credential", goerr.V(UserIDKey, userID))
	}

	access := uc.decrypt(ctx, record.EncAccessToken)
	if access != "" && !record.NeedsRefresh(uc.now(), uc.scoring.RefreshSkew()) {
		return access, nil
	}

	refreshed, err := uc.refreshCredential(ctx, record)
	if err != nil {
		if access != "" {
			logging.From(ctx).Warn("token refresh failed, serving stale token",
				"user_id", userID, "error", err)
			return access, nil
		}
		return "", err
	}
	return refreshed, nil
}

// refreshCredential rotates the stored tokens. When the provider
// rejects the refresh token as consumed, another process may have
// rotated it concurrently, so the latest persisted token is retried
// once before giving up.
func (uc *UseCases) refreshCredential(ctx context.Context, record *model.CredentialRecord) (string, error) {
	if uc.oauth == nil {
		return "", goerr.Wrap(ErrAuthNotConfigured, "cannot refresh token")
	}

	refreshToken := uc.decrypt(ctx, record.EncRefreshToken)
	if refreshToken == "" {
		return "", goerr.New("no refresh token available", goerr.V(UserIDKey, record.UserID))
	}

	tokens, err := uc.oauth.Refresh(ctx, refreshToken)
	if err != nil && errors.Is(err, tracker.ErrInvalidGrant) {
		latest, gerr := uc.repo.Credential().Get(ctx, record.UserID)
		if gerr == nil && latest != nil {
			if t := uc.decrypt(ctx, latest.EncRefreshToken); t != "" && t != refreshToken {
				record = latest
				tokens, err = uc.oauth.Refresh(ctx, t)
			}
		}
	}
	if err != nil {
		return "", goerr.Wrap(err, "token refresh failed", goerr.V(UserIDKey, record.UserID))
	}

	encAccess, err := uc.cipher.Encrypt(tokens.AccessToken)
	if err != nil {
		return "", goerr.Wrap(err, "failed to encrypt access token")
	}
	record.EncAccessToken = encAccess
	if tokens.RefreshToken != "" {
		encRefresh, err := uc.cipher.Encrypt(tokens.RefreshToken)
		if err != nil {
			return "", goerr.Wrap(err, "failed to encrypt refresh token")
		}
		record.EncRefreshToken = encRefresh
	}

	now := uc.now()
	record.ExpiresAt = now.Add(tokens.Lifetime())
	record.UpdatedAt = now
	if err := uc.repo.Credential().Put(ctx, record); err != nil {
		return "", err
	}

	return tokens.AccessToken, nil
}

// Disconnect removes the credential and the user's tracker mappings.
// Chat-platform mappings are left in place.
func (uc *UseCases) Disconnect(ctx context.Context, userID types.UserID) error {
	record, err := uc.repo.Credential().Get(ctx, userID)
	if err != nil {
		return err
	}
	if record != nil && !record.WorkspaceID.IsPending() {
		uc.users.Invalidate(record.WorkspaceID)
	}

	if err := uc.repo.Credential().Delete(ctx, userID); err != nil {
		return err
	}

	mappings, err := uc.repo.Mapping().ListByOwner(ctx, userID)
	if err != nil {
		return err
	}
	for _, m := range mappings {
		if m.TargetPlatform != types.PlatformTracker {
			continue
		}
		if err := uc.repo.Mapping().Unmap(ctx, m.Owner, m.SourceIdentifier, m.TargetPlatform); err != nil {
			return err
		}
	}

	return nil
}

// IntegrationStatus reports the connection state without exposing any
// token material
func (uc *UseCases) IntegrationStatus(ctx context.Context, userID types.UserID) (*IntegrationStatus, error) {
	record, err := uc.repo.Credential().Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return &IntegrationStatus{}, nil
	}

	return &IntegrationStatus{
		Connected:     record.Connected(),
		WorkspaceID:   record.WorkspaceID,
		WorkspaceName: record.WorkspaceName,
		WorkspaceURL:  record.WorkspaceURL,
		Source:        record.Source,
		ExpiresAt:     record.ExpiresAt,
	}, nil
}

// ListTeams lists the teams of the connected workspace
func (uc *UseCases) ListTeams(ctx context.Context, userID types.UserID) ([]*model.Team, error) {
	if uc.factory == nil {
		return nil, goerr.Wrap(ErrAuthNotConfigured, "cannot list teams")
	}

	token, err := uc.GetValidToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	return uc.factory(token).Teams(ctx)
}

// decrypt returns the plaintext, or empty when the ciphertext is
// missing or undecryptable. A token encrypted under a rotated secret
// behaves as if it were absent.
func (uc *UseCases) decrypt(ctx context.Context, enc string) string {
	if enc == "" || uc.cipher == nil {
		return ""
	}
	plain, err := uc.cipher.Decrypt(enc)
	if err != nil {
		logging.From(ctx).Warn("failed to decrypt stored secret, treating as absent", "error", err)
		return ""
	}
	return plain
}
