package task

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/amankumar-in/univance/domain"
	"github.com/amankumar-in/univance/repository"
)

const (
	dueSoonWindowDays = 2
	dashboardListSize = 5
)

// Statistics aggregates tasks along one dimension.
func (uc *UseCase) Statistics(ctx context.Context, p *domain.Principal, groupBy domain.StatsGroupBy, filter domain.StatsFilter) (*domain.TaskStatistics, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	switch p.Role {
	case domain.RoleStudent:
		own := p.ProfileFor(domain.RoleStudent)
		if filter.StudentID == "" {
			filter.StudentID = own
		}
		if filter.StudentID != own {
			return nil, domain.Forbidden("Not authorized to view these statistics")
		}
	case domain.RoleParent:
		if !p.IsParentOf(filter.StudentID) {
			return nil, domain.Forbidden("Parents can only view statistics for their own children")
		}
	case domain.RoleTeacher, domain.RoleSchoolAdmin, domain.RolePlatformAdmin, domain.RoleSubAdmin:
	default:
		return nil, domain.Forbidden("Not authorized to view these statistics")
	}
	if filter.StartDate != nil && filter.EndDate != nil && filter.EndDate.Before(*filter.StartDate) {
		return nil, domain.Invalid("endDate must not be before startDate")
	}

	groups, summary, err := uc.tasks.Statistics(ctx, groupBy, filter)
	if err != nil {
		return nil, err
	}
	return &domain.TaskStatistics{
		Statistics: groups,
		Summary:    summary,
		GroupBy:    groupBy,
		Filters:    filter,
	}, nil
}

// StudentSummary builds a student's dashboard. The independent queries run concurrently.
func (uc *UseCase) StudentSummary(ctx context.Context, p *domain.Principal, studentID string) (*domain.StudentTasksSummary, error) {
	if p == nil {
		return nil, domain.ErrUnauthorized
	}
	if studentID == "" {
		return nil, domain.Invalid("studentId is required")
	}
	if !canReadStudent(p, studentID) {
		return nil, domain.Forbidden("Not authorized to view this student's summary")
	}

	now := uc.now.Now()
	soon := now.AddDate(0, 0, dueSoonWindowDays)
	summary := &domain.StudentTasksSummary{}
	counts := &summary.Summary

	g, gctx := errgroup.WithContext(ctx)
	count := func(dst *int, q repository.StudentTaskQuery) {
		g.Go(func() error {
			n, err := uc.tasks.CountStudentTasks(gctx, studentID, q)
			*dst = n
			return err
		})
	}
	count(&counts.TotalTasks, repository.StudentTaskQuery{})
	count(&counts.PendingTasks, repository.StudentTaskQuery{Status: domain.StatusPending})
	count(&counts.CompletedTasks, repository.StudentTaskQuery{Status: domain.StatusPendingApproval})
	count(&counts.ApprovedTasks, repository.StudentTaskQuery{Status: domain.StatusApproved})
	count(&counts.RejectedTasks, repository.StudentTaskQuery{Status: domain.StatusRejected})
	count(&counts.ExpiredTasks, repository.StudentTaskQuery{Status: domain.StatusPending, DueBefore: &now})
	count(&counts.DueSoonTasks, repository.StudentTaskQuery{Status: domain.StatusPending, DueAfter: &now, DueBefore: &soon})

	g.Go(func() error {
		categories, err := uc.tasks.StudentCategorySummary(gctx, studentID)
		summary.CategorySummary = categories
		return err
	})
	g.Go(func() error {
		upcoming, err := uc.tasks.StudentTasks(gctx, studentID, repository.StudentTaskQuery{
			Status:   domain.StatusPending,
			DueAfter: &now,
			Limit:    dashboardListSize,
		})
		summary.UpcomingTasks = upcoming
		return err
	})
	g.Go(func() error {
		recent, err := uc.tasks.StudentTasks(gctx, studentID, repository.StudentTaskQuery{
			Status: domain.StatusApproved,
			Recent: true,
			Limit:  dashboardListSize,
		})
		summary.RecentlyCompletedTasks = recent
		return err
	})
	g.Go(func() error {
		since := domain.StartOfDay(now).AddDate(0, 0, -domain.StreakWindowDays)
		approvals, err := uc.tasks.StudentApprovalDates(gctx, studentID, since)
		counts.Streak = domain.ComputeStreak(approvals, now)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if summary.CategorySummary == nil {
		summary.CategorySummary = []domain.CategorySummary{}
	}
	if summary.UpcomingTasks == nil {
		summary.UpcomingTasks = []domain.Task{}
	}
	if summary.RecentlyCompletedTasks == nil {
		summary.RecentlyCompletedTasks = []domain.Task{}
	}
	return summary, nil
}
