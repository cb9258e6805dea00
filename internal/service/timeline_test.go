package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMemberRepo struct {
	mu      sync.Mutex
	members map[string]*domain.ProjectMember
}

func newFakeMemberRepo() *fakeMemberRepo {
	return &fakeMemberRepo{members: make(map[string]*domain.ProjectMember)}
}

func memberKey(projectID, userID uuid.UUID) string {
	return projectID.String() + "/" + userID.String()
}

func (r *fakeMemberRepo) Get(_ context.Context, projectID uuid.UUID, userID uuid.UUID) (*domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[memberKey(projectID, userID)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return member, nil
}

func (r *fakeMemberRepo) Add(_ context.Context, member *domain.ProjectMember) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey(member.ProjectID, member.UserID)
	if _, ok := r.members[key]; ok {
		return domain.ErrDuplicateEntry
	}
	r.members[key] = member
	return nil
}

func (r *fakeMemberRepo) List(_ context.Context, projectID uuid.UUID) ([]domain.ProjectMember, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.ProjectMember
	for _, member := range r.members {
		if member.ProjectID == projectID {
			out = append(out, *member)
		}
	}
	return out, nil
}

func (r *fakeMemberRepo) UpdateRole(_ context.Context, projectID uuid.UUID, userID uuid.UUID, role domain.MemberRole) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	member, ok := r.members[memberKey(projectID, userID)]
	if !ok || member.Role == domain.RoleOwner {
		return domain.ErrNotFound
	}
	member.Role = role
	return nil
}

func (r *fakeMemberRepo) Remove(_ context.Context, projectID uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := memberKey(projectID, userID)
	member, ok := r.members[key]
	if !ok || member.Role == domain.RoleOwner {
		return domain.ErrNotFound
	}
	delete(r.members, key)
	return nil
}

type fakeTimelineRepo struct {
	mu        sync.Mutex
	timelines map[uuid.UUID]*domain.ProjectTimeline
	stages    map[uuid.UUID]*domain.TimelineStage
	updates   []domain.TimelineUpdate
}

func newFakeTimelineRepo() *fakeTimelineRepo {
	return &fakeTimelineRepo{
		timelines: make(map[uuid.UUID]*domain.ProjectTimeline),
		stages:    make(map[uuid.UUID]*domain.TimelineStage),
	}
}

func (r *fakeTimelineRepo) CreateWithStages(_ context.Context, timeline *domain.ProjectTimeline, stages []domain.TimelineStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.timelines[timeline.ID] = timeline
	for i := range stages {
		stage := stages[i]
		r.stages[stage.ID] = &stage
	}
	return nil
}

func (r *fakeTimelineRepo) stagesFor(timelineID uuid.UUID) []domain.TimelineStage {
	var out []domain.TimelineStage
	for _, stage := range r.stages {
		if stage.TimelineID == timelineID {
			out = append(out, *stage)
		}
	}
	return out
}

func (r *fakeTimelineRepo) GetActiveByProjectID(_ context.Context, projectID uuid.UUID) (*domain.ProjectTimeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, timeline := range r.timelines {
		if timeline.ProjectID == projectID && timeline.IsActive {
			clone := *timeline
			clone.Stages = r.stagesFor(timeline.ID)
			return &clone, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (r *fakeTimelineRepo) GetOneByID(_ context.Context, id uuid.UUID) (*domain.ProjectTimeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeline, ok := r.timelines[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *timeline
	clone.Stages = r.stagesFor(id)
	return &clone, nil
}

func (r *fakeTimelineRepo) ExistsByProjectID(_ context.Context, projectID uuid.UUID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, timeline := range r.timelines {
		if timeline.ProjectID == projectID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeTimelineRepo) UpdateProgress(_ context.Context, id uuid.UUID, progress float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeline, ok := r.timelines[id]
	if !ok {
		return domain.ErrNotFound
	}
	timeline.Progress = progress
	return nil
}

func (r *fakeTimelineRepo) UpdateStatus(_ context.Context, timeline *domain.ProjectTimeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.timelines[timeline.ID]
	if !ok {
		return domain.ErrNotFound
	}
	stored.Status = timeline.Status
	stored.Notes = timeline.Notes
	stored.ActualStart = timeline.ActualStart
	stored.ActualEnd = timeline.ActualEnd
	stored.LastUpdatedBy = timeline.LastUpdatedBy
	return nil
}

func (r *fakeTimelineRepo) SetLastUpdatedBy(_ context.Context, id uuid.UUID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	timeline, ok := r.timelines[id]
	if !ok {
		return domain.ErrNotFound
	}
	timeline.LastUpdatedBy = &userID
	return nil
}

func (r *fakeTimelineRepo) GetStage(_ context.Context, stageID uuid.UUID) (*domain.TimelineStage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stage, ok := r.stages[stageID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	clone := *stage
	return &clone, nil
}

func (r *fakeTimelineRepo) AddStage(_ context.Context, stage *domain.TimelineStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.stages[stage.ID] = stage
	return nil
}

func (r *fakeTimelineRepo) UpdateStage(_ context.Context, stage *domain.TimelineStage) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stages[stage.ID]; !ok {
		return domain.ErrNotFound
	}
	clone := *stage
	r.stages[stage.ID] = &clone
	return nil
}

func (r *fakeTimelineRepo) DeleteStage(_ context.Context, stageID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stages[stageID]; !ok {
		return domain.ErrNotFound
	}
	delete(r.stages, stageID)
	return nil
}

func (r *fakeTimelineRepo) MaxStageOrder(_ context.Context, timelineID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	max := 0
	for _, stage := range r.stages {
		if stage.TimelineID == timelineID && stage.Order > max {
			max = stage.Order
		}
	}
	return max, nil
}

func (r *fakeTimelineRepo) CreateUpdate(_ context.Context, update *domain.TimelineUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	update.CreatedAt = time.Now()
	r.updates = append(r.updates, *update)
	return nil
}

func (r *fakeTimelineRepo) ListUpdates(_ context.Context, timelineID uuid.UUID, limit, offset int) ([]domain.TimelineUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.TimelineUpdate
	for _, update := range r.updates {
		if update.TimelineID == timelineID {
			out = append(out, update)
		}
	}
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakeTimelineRepo) CountUpdates(_ context.Context, timelineID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, update := range r.updates {
		if update.TimelineID == timelineID {
			count++
		}
	}
	return count, nil
}

func (r *fakeTimelineRepo) ListMajorUpdatesSince(_ context.Context, timelineID uuid.UUID, since time.Time, limit int) ([]domain.TimelineUpdate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []domain.TimelineUpdate
	for _, update := range r.updates {
		if update.TimelineID == timelineID && update.IsMajor && update.CreatedAt.After(since) {
			out = append(out, update)
			if len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

type timelineFixture struct {
	service   *timelineService
	repo      *fakeTimelineRepo
	members   *fakeMemberRepo
	projectID uuid.UUID
	managerID uuid.UUID
	memberID  uuid.UUID
}

func newTimelineFixture(t *testing.T) *timelineFixture {
	t.Helper()

	repo := newFakeTimelineRepo()
	members := newFakeMemberRepo()
	projects := newFakeProjectRepo(members)

	projectID := uuid.New()
	managerID := uuid.New()
	memberID := uuid.New()
	ownerID := uuid.New()

	ctx := context.Background()
	require.NoError(t, projects.Create(ctx, &domain.Project{ID: projectID, Name: "Lakeside House"}, ownerID))
	require.NoError(t, members.Add(ctx, &domain.ProjectMember{
		ProjectID: projectID, UserID: managerID, Role: domain.RoleManager,
	}))
	require.NoError(t, members.Add(ctx, &domain.ProjectMember{
		ProjectID: projectID, UserID: memberID, Role: domain.RoleMember,
	}))

	return &timelineFixture{
		service:   newTimelineService(repo, members, projects),
		repo:      repo,
		members:   members,
		projectID: projectID,
		managerID: managerID,
		memberID:  memberID,
	}
}

func defaultTimelineInput() CreateTimelineInput {
	start := time.Now().AddDate(0, 0, -10)
	return CreateTimelineInput{
		Title:        "House Construction",
		PlannedStart: start,
		PlannedEnd:   start.AddDate(0, 6, 0),
		Stages: []CreateStageInput{
			{Name: "Foundation", PlannedStart: start, PlannedEnd: start.AddDate(0, 1, 0), IsMilestone: true},
			{Name: "Framing", PlannedStart: start.AddDate(0, 1, 0), PlannedEnd: start.AddDate(0, 3, 0)},
			{Name: "Finishing", PlannedStart: start.AddDate(0, 3, 0), PlannedEnd: start.AddDate(0, 6, 0)},
		},
	}
}

func TestTimelineCreate(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	id, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	timeline, err := f.service.GetForProject(ctx, f.projectID, f.memberID)
	require.NoError(t, err)
	assert.Equal(t, id, timeline.ID)
	assert.Len(t, timeline.Stages, 3)
	assert.Equal(t, domain.TimelineActive, timeline.Status)
	assert.Zero(t, timeline.Progress)
}

func TestTimelineCreate_RequiresManagerRole(t *testing.T) {
	f := newTimelineFixture(t)

	_, err := f.service.Create(context.Background(), f.projectID, f.memberID, defaultTimelineInput())
	assert.ErrorIs(t, err, ErrPermissionDenied)
}

func TestTimelineCreate_OnePerProject(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	_, err = f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	assert.ErrorIs(t, err, ErrTimelineExists)
}

func TestTimelineCreate_MissingStageDates(t *testing.T) {
	f := newTimelineFixture(t)

	input := defaultTimelineInput()
	input.Stages[1].PlannedEnd = time.Time{}

	_, err := f.service.Create(context.Background(), f.projectID, f.managerID, input)
	assert.ErrorIs(t, err, ErrMissingStageDates)
}

func TestUpdateStage_ProgressRefreshesTimeline(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	timeline, err := f.service.GetForProject(ctx, f.projectID, f.managerID)
	require.NoError(t, err)

	progress := 60.0
	err = f.service.UpdateStage(ctx, timeline.Stages[0].ID, f.managerID, UpdateStageInput{Progress: &progress})
	require.NoError(t, err)

	timeline, err = f.service.GetForProject(ctx, f.projectID, f.managerID)
	require.NoError(t, err)
	assert.InDelta(t, 20.0, timeline.Progress, 0.01)
}

func TestUpdateStage_FullProgressCompletes(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	timeline, err := f.service.GetForProject(ctx, f.projectID, f.managerID)
	require.NoError(t, err)
	stageID := timeline.Stages[0].ID

	progress := 100.0
	err = f.service.UpdateStage(ctx, stageID, f.managerID, UpdateStageInput{Progress: &progress})
	require.NoError(t, err)

	stage, err := f.repo.GetStage(ctx, stageID)
	require.NoError(t, err)
	assert.Equal(t, domain.StageCompleted, stage.Status)
	assert.NotNil(t, stage.ActualEnd)

	// Completion is a major update in the history.
	updates, _, err := f.service.ListUpdates(ctx, timeline.ID, f.memberID, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, updates)
	assert.True(t, updates[0].IsMajor)
}

func TestDeleteStage_CompletedStageRefused(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	_, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	timeline, err := f.service.GetForProject(ctx, f.projectID, f.managerID)
	require.NoError(t, err)
	stageID := timeline.Stages[0].ID

	progress := 100.0
	require.NoError(t, f.service.UpdateStage(ctx, stageID, f.managerID, UpdateStageInput{Progress: &progress}))

	err = f.service.DeleteStage(ctx, stageID, f.managerID)
	assert.ErrorIs(t, err, ErrStageCompleted)
}

func TestUpdateTimelineStatus(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	id, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	err = f.service.UpdateStatus(ctx, id, f.managerID, domain.TimelineCompleted, nil)
	require.NoError(t, err)

	timeline, err := f.repo.GetOneByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, domain.TimelineCompleted, timeline.Status)
	assert.NotNil(t, timeline.ActualEnd)

	err = f.service.UpdateStatus(ctx, id, f.managerID, domain.TimelineStatus("bogus"), nil)
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestAddStage_AppendsAfterLastOrder(t *testing.T) {
	f := newTimelineFixture(t)
	ctx := context.Background()

	id, err := f.service.Create(ctx, f.projectID, f.managerID, defaultTimelineInput())
	require.NoError(t, err)

	start := time.Now()
	stageID, err := f.service.AddStage(ctx, id, f.managerID, CreateStageInput{
		Name:         "Landscaping",
		PlannedStart: start,
		PlannedEnd:   start.AddDate(0, 1, 0),
	})
	require.NoError(t, err)

	stage, err := f.repo.GetStage(ctx, stageID)
	require.NoError(t, err)
	assert.Equal(t, 4, stage.Order)
}

func TestOverallProgress(t *testing.T) {
	assert.Zero(t, overallProgress(nil))

	stages := []domain.TimelineStage{
		{Progress: 100},
		{Progress: 50},
		{Progress: 0},
	}
	assert.InDelta(t, 50.0, overallProgress(stages), 0.01)
}

func TestBuildAnalytics(t *testing.T) {
	now := time.Now()
	estimated := 1000.0
	actual := 1200.0

	timeline := &domain.ProjectTimeline{
		PlannedStart: now.AddDate(0, 0, -30),
		PlannedEnd:   now.AddDate(0, 0, 70),
		Stages: []domain.TimelineStage{
			{Status: domain.StageCompleted, Progress: 100, EstimatedCost: &estimated, ActualCost: &actual},
			{Status: domain.StageInProgress, Progress: 40, PlannedEnd: now.AddDate(0, 0, 10), IsMilestone: true},
			{Status: domain.StageNotStarted, PlannedEnd: now.AddDate(0, 0, -3)},
		},
	}

	analytics := buildAnalytics(timeline, now)

	assert.Equal(t, 3, analytics.ProjectOverview.TotalStages)
	assert.Equal(t, 1, analytics.ProjectOverview.CompletedStages)
	assert.Equal(t, 1, analytics.ProjectOverview.InProgressStages)
	assert.Equal(t, 1, analytics.ProjectOverview.NotStartedStages)

	assert.Equal(t, 100, analytics.ScheduleAnalytics.TotalPlannedDays)
	assert.False(t, analytics.ScheduleAnalytics.IsOnSchedule)

	require.Len(t, analytics.CriticalItems.CriticalStages, 1)
	assert.Equal(t, 3, analytics.CriticalItems.CriticalStages[0].DaysOverdue)
	require.Len(t, analytics.CriticalItems.UpcomingMilestones, 1)

	assert.InDelta(t, 200.0, analytics.CostAnalytics.CostVariance, 0.01)
	assert.InDelta(t, 20.0, analytics.CostAnalytics.CostVariancePercentage, 0.01)
}
