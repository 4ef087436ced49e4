package usecase

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/teamsense-lab/argus/pkg/domain/model"
	"github.com/teamsense-lab/argus/pkg/domain/types"
)

// WorkloadReport is a workload preview plus the per-assignee
// contribution scores derived from it
type WorkloadReport struct {
	Preview *model.WorkloadPreview
	Scores  map[types.AccountID]float64
}

// GetWorkloadPreview aggregates the workspace's active issues by
// assignee and scores each assignee's contribution. A truncated issue
// list is reported through the Partial flag, not as an error.
func (uc *UseCases) GetWorkloadPreview(ctx context.Context, userID types.UserID) (*WorkloadReport, error) {
	if uc.factory == nil {
		return nil, goerr.Wrap(ErrAuthNotConfigured, "cannot fetch workload")
	}

	token, err := uc.GetValidToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	issues, partial, err := uc.factory(token).ListActiveIssues(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list active issues", goerr.V(UserIDKey, userID))
	}

	now := uc.now()
	byAssignee := make(map[types.AccountID][]model.Issue)
	for _, issue := range issues {
		if issue.Assignee == nil || issue.Assignee.ID == "" {
			continue
		}
		byAssignee[issue.Assignee.ID] = append(byAssignee[issue.Assignee.ID], issue)
	}

	scores := make(map[types.AccountID]float64, len(byAssignee))
	for id, group := range byAssignee {
		scores[id] = model.ContributionScore(group, now, uc.scoring)
	}

	return &WorkloadReport{
		Preview: &model.WorkloadPreview{
			TotalRecords: len(issues),
			Partial:      partial,
			Assignees:    model.AggregateByAssignee(issues),
		},
		Scores: scores,
	}, nil
}
