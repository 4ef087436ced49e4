package matcher

import (
	"strings"

	"github.com/agnivade/levenshtein"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/model/config"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// Component-match floors. A strong last-name match cannot prove the
// identity on its own, so it raises the score only to a capped floor
// instead of winning outright.
const (
	lastNameThreshold = 0.85
	lastNameFloor     = 0.75
	bothPartsFloor    = 0.80
)

// Match is a candidate account picked by the matcher
type Match struct {
	ID         types.AccountID
	Name       string
	Confidence float64
}

// MatchEmail finds the account for an email address. Exact
// case-insensitive email equality wins immediately with full
// confidence; otherwise the local part of the email is fuzzy-matched
// against candidate display names. Returns nil when nothing clears the
// threshold. Ties keep the earliest candidate.
func MatchEmail(email string, candidates []model.ExternalIdentity, cfg *config.Scoring) *Match {
	if cfg == nil {
		cfg = config.DefaultScoring()
	}
	emailLower := strings.ToLower(email)

	for i := range candidates {
		c := &candidates[i]
		if c.Email != "" && strings.ToLower(c.Email) == emailLower {
			return &Match{ID: c.ID, Name: c.Name, Confidence: 1.0}
		}
	}

	localPart := emailLower
	if at := strings.Index(emailLower, "@"); at >= 0 {
		localPart = emailLower[:at]
	}
	emailParts := strings.Split(localPart, ".")

	var best *Match
	bestScore := 0.0

	for i := range candidates {
		c := &candidates[i]
		name := strings.ToLower(c.Name)
		if name == "" || c.ID == "" {
			continue
		}

		score := similarity(localPart, name)

		nameParts := strings.Fields(name)
		if len(emailParts) >= 1 && len(nameParts) >= 1 && emailParts[0] != "" {
			firstScore := similarity(emailParts[0], nameParts[0]) * cfg.ComponentDampening
			score = max(score, firstScore)
		}
		if len(emailParts) >= 2 && len(nameParts) >= 2 {
			last := emailParts[len(emailParts)-1]
			if last != "" && similarity(last, nameParts[len(nameParts)-1]) > lastNameThreshold {
				score = max(score, lastNameFloor)
			}
		}

		if score > bestScore && score >= cfg.MatchThreshold {
			bestScore = score
			best = &Match{ID: c.ID, Name: c.Name, Confidence: score}
		}
	}

	return best
}

// MatchName finds the account for a display name, used when no email
// is available. Component matching tolerates reordered names such as
// "Doe, John" vs "John Doe". Returns nil when nothing clears the
// threshold.
func MatchName(name string, candidates []model.ExternalIdentity, cfg *config.Scoring) *Match {
	if cfg == nil {
		cfg = config.DefaultScoring()
	}
	nameLower := strings.TrimSpace(strings.ToLower(name))
	nameParts := strings.Fields(nameLower)

	var best *Match
	bestScore := 0.0

	for i := range candidates {
		c := &candidates[i]
		candName := strings.TrimSpace(strings.ToLower(c.Name))
		if candName == "" || c.ID == "" {
			continue
		}

		score := similarity(nameLower, candName)

		candParts := strings.Fields(candName)
		if len(nameParts) >= 2 && len(candParts) >= 2 {
			if strings.Contains(candName, nameParts[len(nameParts)-1]) &&
				strings.Contains(candName, nameParts[0]) {
				score = max(score, bothPartsFloor)
			}
		}

		if score > bestScore && score >= cfg.MatchThreshold {
			bestScore = score
			best = &Match{ID: c.ID, Name: c.Name, Confidence: score}
		}
	}

	return best
}

// similarity is a normalized edit-distance ratio on [0, 1]
func similarity(a, b string) float64 {
	if a == b {
		return 1.0
	}
	longest := max(len(a), len(b))
	if longest == 0 {
		return 1.0
	}
	dist := levenshtein.ComputeDistance(a, b)
	return 1.0 - float64(dist)/float64(longest)
}
