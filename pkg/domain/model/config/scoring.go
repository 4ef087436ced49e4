package config

import (
	"time"

	"github.com/m-mizutani/goerr/v2"
)

// Scoring holds the tunable constants of the matching and workload
// scoring pipeline. The defaults are the empirically chosen values the
// risk model was calibrated against; change them only together with a
// recalibration.
type Scoring struct {
	// MatchThreshold is the minimum fuzzy-match confidence (inclusive)
	MatchThreshold float64 `toml:"match_threshold"`
	// ComponentDampening scales first/last-name component matches so a
	// perfect whole-string match still outranks a partial component match
	ComponentDampening float64 `toml:"component_dampening"`
	// SourceDampening scales the workload contribution so one data
	// source cannot dominate the multi-source risk signal
	SourceDampening float64 `toml:"source_dampening"`
	// DeadlineDefault is the deadline score for issues without a due date
	DeadlineDefault float64 `toml:"deadline_default"`
	// LoadCapacity is the issue count at which load saturates
	LoadCapacity int `toml:"load_capacity"`
	// PageSize per collector request, capped by the provider at 100
	PageSize int `toml:"page_size"`
	// MaxPages bounds the pagination loop regardless of what the
	// provider's pagination flags claim
	MaxPages int `toml:"max_pages"`
	// RefreshSkewMinutes is how long before expiry tokens are refreshed
	RefreshSkewMinutes int `toml:"refresh_skew_minutes"`
}

// DefaultScoring returns the calibrated default constants
func DefaultScoring() *Scoring {
	return &Scoring{
		MatchThreshold:     0.70,
		ComponentDampening: 0.85,
		SourceDampening:    0.75,
		DeadlineDefault:    0.3,
		LoadCapacity:       15,
		PageSize:           100,
		MaxPages:           20,
		RefreshSkewMinutes: 60,
	}
}

// Validate checks if the Scoring configuration is valid
func (s *Scoring) Validate() error {
	if s.MatchThreshold < 0 || s.MatchThreshold > 1 {
		return goerr.New("match_threshold must be in [0, 1]", goerr.V("value", s.MatchThreshold))
	}
	if s.ComponentDampening <= 0 || s.ComponentDampening > 1 {
		return goerr.New("component_dampening must be in (0, 1]", goerr.V("value", s.ComponentDampening))
	}
	if s.SourceDampening <= 0 || s.SourceDampening > 1 {
		return goerr.New("source_dampening must be in (0, 1]", goerr.V("value", s.SourceDampening))
	}
	if s.DeadlineDefault < 0 || s.DeadlineDefault > 1 {
		return goerr.New("deadline_default must be in [0, 1]", goerr.V("value", s.DeadlineDefault))
	}
	if s.LoadCapacity <= 0 {
		return goerr.New("load_capacity must be positive", goerr.V("value", s.LoadCapacity))
	}
	if s.PageSize <= 0 || s.PageSize > 100 {
		return goerr.New("page_size must be in (0, 100]", goerr.V("value", s.PageSize))
	}
	if s.MaxPages <= 0 {
		return goerr.New("max_pages must be positive", goerr.V("value", s.MaxPages))
	}
	if s.RefreshSkewMinutes < 0 {
		return goerr.New("refresh_skew_minutes must not be negative", goerr.V("value", s.RefreshSkewMinutes))
	}
	return nil
}

// RefreshSkew returns the refresh skew as a duration
func (s *Scoring) RefreshSkew() time.Duration {
	return time.Duration(s.RefreshSkewMinutes) * time.Minute
}
