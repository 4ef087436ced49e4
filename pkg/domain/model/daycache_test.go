package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/teamsense-lab/argus/pkg/domain/model"
)

func TestDayCacheKey(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	gt.Value(t, model.DayCacheKey("oncall", now)).Equal("oncall:2026-09-01")

	// Key is derived from the UTC day even for non-UTC clocks
	jst := time.FixedZone("JST", 9*3600)
	late := time.Date(2026, 9, 2, 3, 0, 0, 0, jst) // 2026-09-01 18:00 UTC
	gt.Value(t, model.DayCacheKey("oncall", late)).Equal("oncall:2026-09-01")
}

func TestNextMidnightUTC(t *testing.T) {
	now := time.Date(2026, 9, 1, 23, 30, 0, 0, time.UTC)
	midnight := model.NextMidnightUTC(now)
	gt.Value(t, midnight).Equal(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC))
	gt.Value(t, midnight.Sub(now)).Equal(30 * time.Minute)

	early := time.Date(2026, 9, 1, 0, 0, 1, 0, time.UTC)
	gt.Value(t, model.NextMidnightUTC(early)).Equal(time.Date(2026, 9, 2, 0, 0, 0, 0, time.UTC))
}
