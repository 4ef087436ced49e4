package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

type mappingKey struct {
	owner    types.UserID
	sourceID string
	platform types.Platform
}

type correlationKey struct {
	orgID types.OrgID
	email string
}

// mappingRepository guards mappings and correlations with a single
// mutex so Assign's evict-then-insert is atomic across both.
type mappingRepository struct {
	mu           sync.RWMutex
	mappings     map[mappingKey]*model.IdentityMapping
	correlations map[correlationKey]*model.CorrelationRecord
}

func newMappingRepository() *mappingRepository {
	return &mappingRepository{
		mappings:     make(map[mappingKey]*model.IdentityMapping),
		correlations: make(map[correlationKey]*model.CorrelationRecord),
	}
}

func keyOf(owner types.UserID, sourceID string, platform types.Platform) mappingKey {
	return mappingKey{owner: owner, sourceID: strings.ToLower(sourceID), platform: platform}
}

func corrKeyOf(orgID types.OrgID, email string) correlationKey {
	return correlationKey{orgID: orgID, email: strings.ToLower(email)}
}

func copyMapping(m *model.IdentityMapping) *model.IdentityMapping {
	copied := *m
	return &copied
}

func copyCorrelation(c *model.CorrelationRecord) *model.CorrelationRecord {
	copied := *c
	return &copied
}

func validateMapping(m *model.IdentityMapping) error {
	if !m.Owner.IsValid() {
		return goerr.New("mapping requires an owner")
	}
	if m.SourceIdentifier == "" {
		return goerr.New("mapping requires a source identifier", goerr.V("owner", m.Owner))
	}
	if !m.TargetPlatform.IsValid() {
		return goerr.New("invalid target platform", goerr.V("platform", m.TargetPlatform))
	}
	return nil
}

func (r *mappingRepository) Get(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) (*model.IdentityMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	m, ok := r.mappings[keyOf(owner, sourceID, platform)]
	if !ok {
		return nil, nil
	}
	return copyMapping(m), nil
}

func (r *mappingRepository) ListByOwner(ctx context.Context, owner types.UserID) ([]*model.IdentityMapping, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []*model.IdentityMapping
	for _, m := range r.mappings {
		if m.Owner == owner {
			result = append(result, copyMapping(m))
		}
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].SourceIdentifier != result[j].SourceIdentifier {
			return result[i].SourceIdentifier < result[j].SourceIdentifier
		}
		return result[i].TargetPlatform < result[j].TargetPlatform
	})

	return result, nil
}

func (r *mappingRepository) Assign(ctx context.Context, mapping *model.IdentityMapping) error {
	if err := validateMapping(mapping); err != nil {
		return err
	}
	if !mapping.TargetIdentifier.IsValid() {
		return goerr.New("assign requires a target identifier", goerr.V("owner", mapping.Owner))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Evict every other owner holding the target identifier before
	// inserting, so dual ownership is never observable.
	for k, m := range r.mappings {
		if m.Owner != mapping.Owner &&
			m.TargetPlatform == mapping.TargetPlatform &&
			m.TargetIdentifier == mapping.TargetIdentifier {
			delete(r.mappings, k)
		}
	}
	for _, c := range r.correlations {
		if c.Owner != mapping.Owner && c.Target(mapping.TargetPlatform) == mapping.TargetIdentifier {
			c.ClearTarget(mapping.TargetPlatform)
			c.UpdatedAt = mapping.LastVerifiedAt
		}
	}

	stored := copyMapping(mapping)
	key := keyOf(mapping.Owner, mapping.SourceIdentifier, mapping.TargetPlatform)
	if prev, ok := r.mappings[key]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = prev.CreatedAt
	}
	r.mappings[key] = stored

	corrKey := corrKeyOf(mapping.OrgID, mapping.SourceIdentifier)
	corr, ok := r.correlations[corrKey]
	if !ok {
		corr = &model.CorrelationRecord{
			OrgID: mapping.OrgID,
			Email: strings.ToLower(mapping.SourceIdentifier),
		}
		r.correlations[corrKey] = corr
	}
	corr.Owner = mapping.Owner
	corr.SetTarget(mapping.TargetPlatform, mapping.TargetIdentifier)
	corr.UpdatedAt = mapping.LastVerifiedAt

	return nil
}

func (r *mappingRepository) RecordFailure(ctx context.Context, mapping *model.IdentityMapping) error {
	if err := validateMapping(mapping); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored := copyMapping(mapping)
	stored.Success = false
	stored.TargetIdentifier = ""
	stored.TargetName = ""

	key := keyOf(mapping.Owner, mapping.SourceIdentifier, mapping.TargetPlatform)
	if prev, ok := r.mappings[key]; ok && stored.CreatedAt.IsZero() {
		stored.CreatedAt = prev.CreatedAt
	}
	r.mappings[key] = stored

	return nil
}

func (r *mappingRepository) Unmap(ctx context.Context, owner types.UserID, sourceID string, platform types.Platform) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := keyOf(owner, sourceID, platform)
	m, ok := r.mappings[key]
	if !ok {
		return nil
	}
	delete(r.mappings, key)

	r.clearCorrelationLocked(m, time.Now().UTC())
	return nil
}

func (r *mappingRepository) DeleteByOwner(ctx context.Context, owner types.UserID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for k, m := range r.mappings {
		if m.Owner != owner {
			continue
		}
		delete(r.mappings, k)
		r.clearCorrelationLocked(m, now)
	}

	return nil
}

func (r *mappingRepository) GetCorrelation(ctx context.Context, orgID types.OrgID, email string) (*model.CorrelationRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.correlations[corrKeyOf(orgID, email)]
	if !ok {
		return nil, nil
	}
	return copyCorrelation(c), nil
}

// clearCorrelationLocked pairs a mapping removal with the correlation
// write. Caller must hold the write lock.
func (r *mappingRepository) clearCorrelationLocked(m *model.IdentityMapping, now time.Time) {
	corr, ok := r.correlations[corrKeyOf(m.OrgID, m.SourceIdentifier)]
	if !ok || corr.Owner != m.Owner {
		return
	}
	corr.ClearTarget(m.TargetPlatform)
	corr.UpdatedAt = now
	if corr.Empty() {
		delete(r.correlations, corrKeyOf(m.OrgID, m.SourceIdentifier))
	}
}
