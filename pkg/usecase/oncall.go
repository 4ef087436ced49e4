package usecase

import (
	"context"

	"github.com/teamsense-lab/argus/pkg/domain/model"
)

// OnCallSource fetches today's on-call user identifiers from an
// upstream scheduling system
type OnCallSource func(ctx context.Context) ([]string, error)

// OnCallToday returns today's on-call users through the day cache.
// Entries are keyed by the UTC calendar day and expire at the next UTC
// midnight, so yesterday's schedule is never served today.
func (uc *UseCases) OnCallToday(ctx context.Context, schedule string, source OnCallSource) ([]string, error) {
	now := uc.now()
	key := model.DayCacheKey(schedule, now)

	cached, err := uc.repo.DayCache().Get(ctx, key, now)
	if err != nil {
		return nil, err
	}
	if cached != nil {
		return cached, nil
	}

	values, err := source(ctx)
	if err != nil {
		return nil, err
	}

	if err := uc.repo.DayCache().Put(ctx, key, values, model.NextMidnightUTC(now)); err != nil {
		return nil, err
	}

	return values, nil
}
