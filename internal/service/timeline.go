package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/queue/client"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type timelineService struct {
	timelineRepository repository.Timelines
	memberRepository   repository.Members
	projectRepository  repository.Projects
}

func newTimelineService(timelineRepository repository.Timelines,
	memberRepository repository.Members,
	projectRepository repository.Projects,
) *timelineService {
	return &timelineService{
		timelineRepository: timelineRepository,
		memberRepository:   memberRepository,
		projectRepository:  projectRepository,
	}
}

func (s *timelineService) requireMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (*domain.ProjectMember, error) {
	member, err := s.memberRepository.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("get project member failed: %w", err)
	}

	return member, nil
}

func (s *timelineService) requireManager(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) error {
	member, err := s.requireMember(ctx, projectID, userID)
	if err != nil {
		return err
	}
	if !member.Role.CanManage() {
		return ErrPermissionDenied
	}

	return nil
}

func (s *timelineService) Create(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, input CreateTimelineInput) (uuid.UUID, error) {
	if err := s.requireManager(ctx, projectID, actorID); err != nil {
		return uuid.Nil, err
	}

	exists, err := s.timelineRepository.ExistsByProjectID(ctx, projectID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("check timeline exists failed: %w", err)
	}
	if exists {
		return uuid.Nil, ErrTimelineExists
	}

	for _, stage := range input.Stages {
		if stage.Name == "" || stage.PlannedStart.IsZero() || stage.PlannedEnd.IsZero() {
			return uuid.Nil, ErrMissingStageDates
		}
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate timeline id failed: %w", err)
	}

	timeline := &domain.ProjectTimeline{
		ID:           id,
		ProjectID:    projectID,
		CreatedBy:    actorID,
		Title:        input.Title,
		Description:  input.Description,
		PlannedStart: input.PlannedStart,
		PlannedEnd:   input.PlannedEnd,
		Status:       domain.TimelineActive,
		IsActive:     true,
		Notes:        input.Notes,
	}

	stages := make([]domain.TimelineStage, 0, len(input.Stages))
	for i, in := range input.Stages {
		stageID, err := uuid.NewV7()
		if err != nil {
			return uuid.Nil, fmt.Errorf("generate stage id failed: %w", err)
		}

		order := in.Order
		if order == 0 {
			order = i + 1
		}
		priority := in.Priority
		if priority == "" {
			priority = domain.PriorityMedium
		}

		stages = append(stages, domain.TimelineStage{
			ID:            stageID,
			TimelineID:    id,
			Name:          in.Name,
			Description:   in.Description,
			Order:         order,
			PlannedStart:  in.PlannedStart,
			PlannedEnd:    in.PlannedEnd,
			Status:        domain.StageNotStarted,
			AssignedTo:    in.AssignedTo,
			EstimatedCost: in.EstimatedCost,
			Priority:      priority,
			IsMilestone:   in.IsMilestone,
			Notes:         in.Notes,
		})
	}

	if err := s.timelineRepository.CreateWithStages(ctx, timeline, stages); err != nil {
		return uuid.Nil, fmt.Errorf("create timeline failed: %w", err)
	}

	return id, nil
}

func (s *timelineService) GetForProject(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*domain.ProjectTimeline, error) {
	if _, err := s.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	timeline, err := s.timelineRepository.GetActiveByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTimelineNotFound
		}
		return nil, fmt.Errorf("get timeline failed: %w", err)
	}

	progress := overallProgress(timeline.Stages)
	if math.Abs(progress-timeline.Progress) > 0.01 {
		if err := s.timelineRepository.UpdateProgress(ctx, timeline.ID, progress); err != nil {
			logger.Error("refresh timeline progress failed", zap.Error(err))
		}
		timeline.Progress = progress
	}

	return timeline, nil
}

// overallProgress is the plain mean of stage progress, stages weighted equally.
func overallProgress(stages []domain.TimelineStage) float64 {
	if len(stages) == 0 {
		return 0
	}

	var sum float64
	for _, stage := range stages {
		sum += stage.Progress
	}

	return math.Round(sum/float64(len(stages))*100) / 100
}

func (s *timelineService) UpdateStage(ctx context.Context, stageID uuid.UUID, actorID uuid.UUID, input UpdateStageInput) error {
	stage, err := s.timelineRepository.GetStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("get stage failed: %w", err)
	}

	timeline, err := s.timelineRepository.GetOneByID(ctx, stage.TimelineID)
	if err != nil {
		return fmt.Errorf("get timeline failed: %w", err)
	}

	if err := s.requireManager(ctx, timeline.ProjectID, actorID); err != nil {
		return err
	}

	previous := domain.JSONMap{
		"status":              stage.Status,
		"progress_percentage": stage.Progress,
	}

	statusChanged := input.Status != nil && *input.Status != stage.Status
	progressChanged := input.Progress != nil && *input.Progress != stage.Progress

	applyStageInput(stage, input)

	// Completing a stage implies full progress and a completion date.
	if stage.Progress >= 100 && stage.Status != domain.StageCompleted {
		stage.Status = domain.StageCompleted
		statusChanged = true
	}
	if stage.Status == domain.StageCompleted {
		stage.Progress = 100
		if stage.ActualEnd == nil {
			now := time.Now()
			stage.ActualEnd = &now
		}
	}
	if stage.Status == domain.StageInProgress && stage.ActualStart == nil {
		now := time.Now()
		stage.ActualStart = &now
	}

	if err := s.timelineRepository.UpdateStage(ctx, stage); err != nil {
		return fmt.Errorf("update stage failed: %w", err)
	}

	if err := s.refreshProgress(ctx, timeline.ID, actorID); err != nil {
		return err
	}

	if statusChanged || progressChanged {
		updateType := domain.UpdateProgressChange
		message := fmt.Sprintf("Stage %q progress set to %.0f%%", stage.Name, stage.Progress)
		if statusChanged {
			updateType = domain.UpdateStatusChange
			message = fmt.Sprintf("Stage %q moved to %s", stage.Name, stage.Status)
		}

		if statusChanged || stage.Status == domain.StageCompleted {
			s.notifyMembers(ctx, timeline.ProjectID, message)
		}

		s.recordUpdate(ctx, &domain.TimelineUpdate{
			TimelineID:    timeline.ID,
			StageID:       &stage.ID,
			UpdatedBy:     actorID,
			UpdateType:    updateType,
			PreviousValue: previous,
			NewValue: domain.JSONMap{
				"status":              stage.Status,
				"progress_percentage": stage.Progress,
			},
			Message: message,
			IsMajor: statusChanged || stage.Status == domain.StageCompleted,
		})
	}

	return nil
}

func applyStageInput(stage *domain.TimelineStage, input UpdateStageInput) {
	if input.Name != nil {
		stage.Name = *input.Name
	}
	if input.Description != nil {
		stage.Description = input.Description
	}
	if input.PlannedStart != nil {
		stage.PlannedStart = *input.PlannedStart
	}
	if input.PlannedEnd != nil {
		stage.PlannedEnd = *input.PlannedEnd
	}
	if input.ActualStart != nil {
		stage.ActualStart = input.ActualStart
	}
	if input.ActualEnd != nil {
		stage.ActualEnd = input.ActualEnd
	}
	if input.Progress != nil {
		stage.Progress = *input.Progress
	}
	if input.Status != nil {
		stage.Status = *input.Status
	}
	if input.AssignedTo != nil {
		stage.AssignedTo = input.AssignedTo
	}
	if input.EstimatedCost != nil {
		stage.EstimatedCost = input.EstimatedCost
	}
	if input.ActualCost != nil {
		stage.ActualCost = input.ActualCost
	}
	if input.Priority != nil {
		stage.Priority = *input.Priority
	}
	if input.Notes != nil {
		stage.Notes = input.Notes
	}
}

func (s *timelineService) refreshProgress(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID) error {
	timeline, err := s.timelineRepository.GetOneByID(ctx, timelineID)
	if err != nil {
		return fmt.Errorf("get timeline failed: %w", err)
	}

	progress := overallProgress(timeline.Stages)
	if err := s.timelineRepository.UpdateProgress(ctx, timelineID, progress); err != nil {
		return fmt.Errorf("update timeline progress failed: %w", err)
	}

	if err := s.timelineRepository.SetLastUpdatedBy(ctx, timelineID, actorID); err != nil {
		logger.Error("set last updated by failed", zap.Error(err))
	}

	return nil
}

func (s *timelineService) recordUpdate(ctx context.Context, update *domain.TimelineUpdate) {
	id, err := uuid.NewV7()
	if err != nil {
		logger.Error("generate update id failed", zap.Error(err))
		return
	}
	update.ID = id

	if err := s.timelineRepository.CreateUpdate(ctx, update); err != nil {
		logger.Error("record timeline update failed", zap.Error(err))
	}
}

// notifyMembers fans a major-update email out to every project member.
// Best effort, like the rest of the notification path.
func (s *timelineService) notifyMembers(ctx context.Context, projectID uuid.UUID, message string) {
	if client.GetClient(ctx) == nil {
		return
	}

	project, err := s.projectRepository.GetOneByID(ctx, projectID)
	if err != nil {
		logger.Error("get project for notification failed", zap.Error(err))
		return
	}

	members, err := s.memberRepository.List(ctx, projectID)
	if err != nil {
		logger.Error("list members for notification failed", zap.Error(err))
		return
	}

	for _, member := range members {
		if member.UserEmail == "" {
			continue
		}
		enqueueNotification(ctx, member.UserEmail, project.Name, message)
	}
}

func (s *timelineService) UpdateStatus(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, status domain.TimelineStatus, notes *string) error {
	if !status.Valid() {
		return ErrInvalidStatus
	}

	timeline, err := s.timelineRepository.GetOneByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrTimelineNotFound
		}
		return fmt.Errorf("get timeline failed: %w", err)
	}

	if err := s.requireManager(ctx, timeline.ProjectID, actorID); err != nil {
		return err
	}

	previous := timeline.Status
	timeline.Status = status
	timeline.LastUpdatedBy = &actorID
	if notes != nil {
		timeline.Notes = notes
	}

	now := time.Now()
	if status == domain.TimelineActive && timeline.ActualStart == nil {
		timeline.ActualStart = &now
	}
	if status == domain.TimelineCompleted && timeline.ActualEnd == nil {
		timeline.ActualEnd = &now
	}

	if err := s.timelineRepository.UpdateStatus(ctx, timeline); err != nil {
		return fmt.Errorf("update timeline status failed: %w", err)
	}

	message := fmt.Sprintf("Timeline status changed from %s to %s", previous, status)
	s.notifyMembers(ctx, timeline.ProjectID, message)

	s.recordUpdate(ctx, &domain.TimelineUpdate{
		TimelineID:    timelineID,
		UpdatedBy:     actorID,
		UpdateType:    domain.UpdateStatusChange,
		PreviousValue: domain.JSONMap{"status": previous},
		NewValue:      domain.JSONMap{"status": status},
		Message:       message,
		IsMajor:       true,
	})

	return nil
}

func (s *timelineService) AddStage(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, input CreateStageInput) (uuid.UUID, error) {
	timeline, err := s.timelineRepository.GetOneByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, ErrTimelineNotFound
		}
		return uuid.Nil, fmt.Errorf("get timeline failed: %w", err)
	}

	if err := s.requireManager(ctx, timeline.ProjectID, actorID); err != nil {
		return uuid.Nil, err
	}

	if input.Name == "" || input.PlannedStart.IsZero() || input.PlannedEnd.IsZero() {
		return uuid.Nil, ErrMissingStageDates
	}

	order := input.Order
	if order == 0 {
		maxOrder, err := s.timelineRepository.MaxStageOrder(ctx, timelineID)
		if err != nil {
			return uuid.Nil, fmt.Errorf("max stage order failed: %w", err)
		}
		order = maxOrder + 1
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate stage id failed: %w", err)
	}

	priority := input.Priority
	if priority == "" {
		priority = domain.PriorityMedium
	}

	stage := &domain.TimelineStage{
		ID:            id,
		TimelineID:    timelineID,
		Name:          input.Name,
		Description:   input.Description,
		Order:         order,
		PlannedStart:  input.PlannedStart,
		PlannedEnd:    input.PlannedEnd,
		Status:        domain.StageNotStarted,
		AssignedTo:    input.AssignedTo,
		EstimatedCost: input.EstimatedCost,
		Priority:      priority,
		IsMilestone:   input.IsMilestone,
		Notes:         input.Notes,
	}

	if err := s.timelineRepository.AddStage(ctx, stage); err != nil {
		return uuid.Nil, fmt.Errorf("add stage failed: %w", err)
	}

	if err := s.refreshProgress(ctx, timelineID, actorID); err != nil {
		return uuid.Nil, err
	}

	s.recordUpdate(ctx, &domain.TimelineUpdate{
		TimelineID: timelineID,
		StageID:    &stage.ID,
		UpdatedBy:  actorID,
		UpdateType: domain.UpdateGeneral,
		NewValue:   domain.JSONMap{"stage_name": stage.Name},
		Message:    fmt.Sprintf("Stage %q added", stage.Name),
	})

	return id, nil
}

func (s *timelineService) DeleteStage(ctx context.Context, stageID uuid.UUID, actorID uuid.UUID) error {
	stage, err := s.timelineRepository.GetStage(ctx, stageID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrStageNotFound
		}
		return fmt.Errorf("get stage failed: %w", err)
	}

	timeline, err := s.timelineRepository.GetOneByID(ctx, stage.TimelineID)
	if err != nil {
		return fmt.Errorf("get timeline failed: %w", err)
	}

	if err := s.requireManager(ctx, timeline.ProjectID, actorID); err != nil {
		return err
	}

	if stage.Status == domain.StageCompleted {
		return ErrStageCompleted
	}

	if err := s.timelineRepository.DeleteStage(ctx, stageID); err != nil {
		return fmt.Errorf("delete stage failed: %w", err)
	}

	if err := s.refreshProgress(ctx, timeline.ID, actorID); err != nil {
		return err
	}

	s.recordUpdate(ctx, &domain.TimelineUpdate{
		TimelineID:    timeline.ID,
		UpdatedBy:     actorID,
		UpdateType:    domain.UpdateGeneral,
		PreviousValue: domain.JSONMap{"stage_name": stage.Name},
		Message:       fmt.Sprintf("Stage %q removed", stage.Name),
	})

	return nil
}

func (s *timelineService) ListUpdates(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, page, limit int) ([]domain.TimelineUpdate, int64, error) {
	timeline, err := s.timelineRepository.GetOneByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, 0, ErrTimelineNotFound
		}
		return nil, 0, fmt.Errorf("get timeline failed: %w", err)
	}

	if _, err := s.requireMember(ctx, timeline.ProjectID, actorID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	updates, err := s.timelineRepository.ListUpdates(ctx, timelineID, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("list timeline updates failed: %w", err)
	}

	total, err := s.timelineRepository.CountUpdates(ctx, timelineID)
	if err != nil {
		return nil, 0, fmt.Errorf("count timeline updates failed: %w", err)
	}

	return updates, total, nil
}

func (s *timelineService) Analytics(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID) (*TimelineAnalytics, error) {
	timeline, err := s.timelineRepository.GetOneByID(ctx, timelineID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTimelineNotFound
		}
		return nil, fmt.Errorf("get timeline failed: %w", err)
	}

	if _, err := s.requireMember(ctx, timeline.ProjectID, actorID); err != nil {
		return nil, err
	}

	return buildAnalytics(timeline, time.Now()), nil
}

func buildAnalytics(timeline *domain.ProjectTimeline, now time.Time) *TimelineAnalytics {
	overview := OverviewAnalytics{
		TotalStages:     len(timeline.Stages),
		OverallProgress: overallProgress(timeline.Stages),
	}

	byStatus := make(map[domain.StageStatus]int)
	byPriority := make(map[domain.StagePriority]int)
	var estimated, actual float64
	var critical []OverdueStage
	var milestones []UpcomingMilestone

	for _, stage := range timeline.Stages {
		byStatus[stage.Status]++
		byPriority[stage.Priority]++

		switch stage.Status {
		case domain.StageCompleted:
			overview.CompletedStages++
		case domain.StageInProgress:
			overview.InProgressStages++
		case domain.StageDelayed:
			overview.DelayedStages++
		case domain.StageNotStarted:
			overview.NotStartedStages++
		}

		if stage.EstimatedCost != nil {
			estimated += *stage.EstimatedCost
		}
		if stage.ActualCost != nil {
			actual += *stage.ActualCost
		}

		if stage.Status != domain.StageCompleted && stage.Status != domain.StageCancelled {
			if stage.PlannedEnd.Before(now) {
				critical = append(critical, OverdueStage{
					ID:          stage.ID,
					Name:        stage.Name,
					PlannedEnd:  stage.PlannedEnd,
					DaysOverdue: int(now.Sub(stage.PlannedEnd).Hours() / 24),
					Status:      stage.Status,
				})
			} else if stage.IsMilestone && stage.PlannedEnd.Before(now.AddDate(0, 0, 30)) {
				milestones = append(milestones, UpcomingMilestone{
					ID:           stage.ID,
					Name:         stage.Name,
					PlannedEnd:   stage.PlannedEnd,
					DaysUntilDue: int(stage.PlannedEnd.Sub(now).Hours() / 24),
					Progress:     stage.Progress,
				})
			}
		}
	}

	totalPlannedDays := int(timeline.PlannedEnd.Sub(timeline.PlannedStart).Hours() / 24)

	start := timeline.PlannedStart
	if timeline.ActualStart != nil {
		start = *timeline.ActualStart
	}
	daysElapsed := int(now.Sub(start).Hours() / 24)
	if daysElapsed < 0 {
		daysElapsed = 0
	}
	daysRemaining := int(timeline.PlannedEnd.Sub(now).Hours() / 24)

	// Schedule variance compares actual progress against the elapsed share
	// of the planned window.
	var expectedProgress float64
	if totalPlannedDays > 0 {
		expectedProgress = math.Min(float64(daysElapsed)/float64(totalPlannedDays)*100, 100)
	}
	varianceDays := 0.0
	if totalPlannedDays > 0 {
		varianceDays = (overview.OverallProgress - expectedProgress) / 100 * float64(totalPlannedDays)
	}

	cost := CostAnalytics{
		TotalEstimatedCost: estimated,
		TotalActualCost:    actual,
		CostVariance:       actual - estimated,
	}
	if estimated > 0 {
		cost.CostVariancePercentage = math.Round((actual-estimated)/estimated*10000) / 100
	}

	return &TimelineAnalytics{
		ProjectOverview: overview,
		ScheduleAnalytics: ScheduleAnalytics{
			PlannedStart:         timeline.PlannedStart,
			PlannedEnd:           timeline.PlannedEnd,
			ActualStart:          timeline.ActualStart,
			ActualEnd:            timeline.ActualEnd,
			TotalPlannedDays:     totalPlannedDays,
			DaysElapsed:          daysElapsed,
			DaysRemaining:        daysRemaining,
			IsOnSchedule:         len(critical) == 0 && varianceDays >= -float64(totalPlannedDays)*0.1,
			ScheduleVarianceDays: math.Round(varianceDays*10) / 10,
		},
		CostAnalytics: cost,
		CriticalItems: CriticalItems{
			CriticalStages:     critical,
			UpcomingMilestones: milestones,
		},
		StageBreakdown: StageBreakdown{
			ByStatus:   byStatus,
			ByPriority: byPriority,
		},
	}
}

// Summary is the condensed homeowner view: milestones plus whatever major
// updates landed in the last week.
func (s *timelineService) Summary(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*TimelineSummary, error) {
	if _, err := s.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	timeline, err := s.timelineRepository.GetActiveByProjectID(ctx, projectID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrTimelineNotFound
		}
		return nil, fmt.Errorf("get timeline failed: %w", err)
	}

	now := time.Now()

	milestones := make([]domain.TimelineStage, 0)
	for _, stage := range timeline.Stages {
		if stage.IsMilestone {
			milestones = append(milestones, stage)
		}
	}

	recent, err := s.timelineRepository.ListMajorUpdatesSince(ctx, timeline.ID, now.AddDate(0, 0, -7), 10)
	if err != nil {
		return nil, fmt.Errorf("list major updates failed: %w", err)
	}

	daysRemaining := int(timeline.PlannedEnd.Sub(now).Hours() / 24)

	return &TimelineSummary{
		Title:         timeline.Title,
		Status:        timeline.Status,
		Progress:      overallProgress(timeline.Stages),
		PlannedStart:  timeline.PlannedStart,
		PlannedEnd:    timeline.PlannedEnd,
		ActualStart:   timeline.ActualStart,
		DaysRemaining: daysRemaining,
		IsOnSchedule:  daysRemaining >= 0,
		Milestones:    milestones,
		RecentUpdates: recent,
	}, nil
}
