package model

import (
	"math"
	"sort"
	"time"

	"github.com/teamsense-lab/argus/pkg/domain/model/config"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// Tracker priority levels: 0 = none, 1 = urgent .. 4 = low
const (
	PriorityNone   = 0
	PriorityUrgent = 1
	PriorityHigh   = 2
	PriorityMedium = 3
	PriorityLow    = 4
)

// MaxTicketSummaries bounds the per-assignee ticket list in previews
const MaxTicketSummaries = 10

// Weights of the contribution score components. These are part of the
// risk model calibration, not deployment knobs.
const (
	loadWeight     = 0.4
	priorityWeight = 0.35
	deadlineWeight = 0.25
	maxPriorityWt  = 1.2
)

// Issue is a work item fetched from the tracker
type Issue struct {
	ID         string
	Identifier string // human-readable key, e.g. "ENG-123"
	Title      string
	Priority   int
	DueDate    string // "2006-01-02", empty when unset
	UpdatedAt  time.Time
	Assignee   *ExternalIdentity
	State      string
	StateType  string
}

// PriorityName returns the display name for a tracker priority level
func PriorityName(priority int) string {
	switch priority {
	case PriorityUrgent:
		return "Urgent"
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	default:
		return "None"
	}
}

// PriorityWeightOf maps a tracker priority level to its risk weight.
// Unknown levels fall back to the medium weight.
func PriorityWeightOf(priority int) float64 {
	switch priority {
	case PriorityUrgent:
		return 1.2
	case PriorityHigh:
		return 1.0
	case PriorityMedium:
		return 0.7
	case PriorityLow:
		return 0.4
	case PriorityNone:
		return 0.2
	default:
		return 0.7
	}
}

// IssueSummary is a bounded per-ticket view included in previews
type IssueSummary struct {
	ID           string
	Identifier   string
	Title        string
	Priority     int
	PriorityName string
	DueDate      string
	State        string
}

// AssigneeWorkload aggregates a single assignee's issues
type AssigneeWorkload struct {
	AssigneeID types.AccountID
	Name       string
	Email      string
	Count      int
	Priorities map[int]int // priority level -> issue count
	Tickets    []IssueSummary
}

// WorkloadPreview is the result of a workload aggregation run
type WorkloadPreview struct {
	TotalRecords int
	Partial      bool // pagination hit the page ceiling; counts are a lower bound
	Assignees    []*AssigneeWorkload
}

// AggregateByAssignee groups issues by assignee. Issues without an
// assignee are skipped. The result is ordered by descending count,
// ties broken by assignee id for determinism.
func AggregateByAssignee(issues []Issue) []*AssigneeWorkload {
	byAssignee := make(map[types.AccountID]*AssigneeWorkload)

	for _, issue := range issues {
		if issue.Assignee == nil || issue.Assignee.ID == "" {
			continue
		}

		w, ok := byAssignee[issue.Assignee.ID]
		if !ok {
			w = &AssigneeWorkload{
				AssigneeID: issue.Assignee.ID,
				Name:       issue.Assignee.Name,
				Email:      issue.Assignee.Email,
				Priorities: make(map[int]int),
			}
			byAssignee[issue.Assignee.ID] = w
		}

		w.Count++
		w.Priorities[issue.Priority]++
		if len(w.Tickets) < MaxTicketSummaries {
			w.Tickets = append(w.Tickets, IssueSummary{
				ID:           issue.ID,
				Identifier:   issue.Identifier,
				Title:        issue.Title,
				Priority:     issue.Priority,
				PriorityName: PriorityName(issue.Priority),
				DueDate:      issue.DueDate,
				State:        issue.State,
			})
		}
	}

	result := make([]*AssigneeWorkload, 0, len(byAssignee))
	for _, w := range byAssignee {
		result = append(result, w)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].AssigneeID < result[j].AssigneeID
	})

	return result
}

// deadlineScoreOf rates due-date proximity on [0, 1]. Overdue and
// imminent deadlines score highest; issues without a due date score
// the configured default.
func deadlineScoreOf(issue Issue, now time.Time, dflt float64) float64 {
	if issue.DueDate == "" {
		return dflt
	}
	due, err := time.Parse("2006-01-02", issue.DueDate)
	if err != nil {
		return dflt
	}

	days := due.Sub(now.UTC().Truncate(24 * time.Hour)).Hours() / 24
	switch {
	case days <= 2:
		return 1.0
	case days <= 7:
		return 0.7
	case days <= 14:
		return 0.5
	default:
		return 0.3
	}
}

// ContributionScore computes the priority-weighted workload
// contribution on [0, 100], rounded to one decimal. An empty issue set
// contributes zero.
func ContributionScore(issues []Issue, now time.Time, cfg *config.Scoring) float64 {
	if len(issues) == 0 {
		return 0
	}
	if cfg == nil {
		cfg = config.DefaultScoring()
	}

	var weightedSum, deadlineSum float64
	for _, issue := range issues {
		weightedSum += PriorityWeightOf(issue.Priority)
		deadlineSum += deadlineScoreOf(issue, now, cfg.DeadlineDefault)
	}

	count := float64(len(issues))
	priorityScore := math.Min(weightedSum/count/maxPriorityWt, 1.0)
	loadScore := math.Min(count/float64(cfg.LoadCapacity), 1.0)
	deadlineScore := deadlineSum / count

	combined := loadWeight*loadScore + priorityWeight*priorityScore + deadlineWeight*deadlineScore
	score := combined * 100 * cfg.SourceDampening

	return round1(math.Max(0, math.Min(100, score)))
}

// CombineHeadroom folds a contribution score into a baseline score.
// The contribution fills the remaining room up to 100, so it can raise
// the baseline but never lower it.
func CombineHeadroom(base, contribution float64) float64 {
	base = math.Max(0, math.Min(100, base))
	contribution = math.Max(0, math.Min(100, contribution))

	final := base + (100-base)*(contribution/100)
	return math.Max(0, math.Min(100, final))
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
