package service

import (
	"context"
	"time"

	"github.com/RandilG/Construction-Management/internal/config"
	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/repository"
	"github.com/RandilG/Construction-Management/pkg/auth"
	emailProvider "github.com/RandilG/Construction-Management/pkg/email"
	"github.com/RandilG/Construction-Management/pkg/hash"
	"github.com/RandilG/Construction-Management/pkg/otp"

	"github.com/google/uuid"
)

type Services struct {
	Users     Users
	Projects  Projects
	Members   Members
	Expenses  Expenses
	Timelines Timelines
}

type Deps struct {
	Config       *config.Config
	Hasher       hash.PasswordHasher
	TokenManager auth.TokenManager
	OtpGenerator otp.Generator
	EmailSender  emailProvider.Sender
	Repos        *repository.Repositories
}

func NewServices(deps Deps) *Services {
	emails := newEmailService(deps.EmailSender, deps.Config.Email)

	return &Services{
		Users: newUserService(deps.Repos.Users,
			deps.Repos.Challenges,
			deps.Hasher,
			deps.TokenManager,
			deps.OtpGenerator,
			emails,
			deps.Config.Auth.OTP,
		),
		Projects:  newProjectService(deps.Repos.Projects, deps.Repos.Members),
		Members:   newMemberService(deps.Repos.Members, deps.Repos.Projects, deps.Repos.Users),
		Expenses:  newExpenseService(deps.Repos.Expenses, deps.Repos.Categories, deps.Repos.Members),
		Timelines: newTimelineService(deps.Repos.Timelines, deps.Repos.Members, deps.Repos.Projects),
	}
}

type Tokens struct {
	AccessToken  string
	AccessTTL    time.Duration
	RefreshToken string
	RefreshTTL   time.Duration
}

type AuthResult struct {
	Tokens

	UserID   uuid.UUID
	Username string
	Email    string
}

type SignUpInput struct {
	Name          string
	Email         string
	NIC           string
	ContactNumber string
	Password      string
}

type Users interface {
	SignUp(ctx context.Context, input SignUpInput) (string, error)
	VerifyOTP(ctx context.Context, email string, code string) (*AuthResult, error)
	SignIn(ctx context.Context, email string, password string) (*AuthResult, error)
	GetProfile(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, email string, name string, contactNumber string) error
}

type CreateProjectInput struct {
	Name             string
	Description      *string
	StartDate        *time.Time
	EstimatedEndDate *time.Time
	ImageURL         *string
}

type Projects interface {
	Create(ctx context.Context, input CreateProjectInput, ownerID uuid.UUID) (uuid.UUID, error)
	GetAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	GetOneByID(ctx context.Context, id uuid.UUID, userID uuid.UUID) (*domain.Project, []domain.ProjectMember, error)
	Delete(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
}

type AddMembersResult struct {
	Added      int
	Duplicates int
	Errors     int
	Total      int
}

type Members interface {
	Add(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userIDs []uuid.UUID) (*AddMembersResult, error)
	List(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) ([]domain.ProjectMember, error)
	UpdateRole(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userID uuid.UUID, role domain.MemberRole) error
	Remove(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, userID uuid.UUID) error
}

type CreateExpenseInput struct {
	ProjectID   uuid.UUID
	CategoryID  uuid.UUID
	Title       string
	Description *string
	Amount      float64
	Currency    string
	ExpenseDate time.Time
	Vendor      *string
	ReceiptPath *string
	Notes       *string
}

type Expenses interface {
	Create(ctx context.Context, input CreateExpenseInput, actorID uuid.UUID) (uuid.UUID, error)
	GetOneByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.Expense, error)
	GetAllForProject(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, page, limit int, filters *repository.ExpenseFilters) ([]domain.Expense, int64, error)
	Update(ctx context.Context, expense *domain.Expense, actorID uuid.UUID) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus, actorID uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error
	Stats(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*ExpenseStats, error)

	CreateCategory(ctx context.Context, name string, color string) (uuid.UUID, error)
	GetCategories(ctx context.Context) ([]domain.ExpenseCategory, error)
}

type ExpenseStats struct {
	StatusBreakdown   []domain.ExpenseStatusStat   `json:"status_breakdown"`
	CategoryBreakdown []domain.ExpenseCategoryStat `json:"category_breakdown"`
}

type CreateStageInput struct {
	Name          string
	Description   *string
	Order         int
	PlannedStart  time.Time
	PlannedEnd    time.Time
	AssignedTo    *uuid.UUID
	EstimatedCost *float64
	Priority      domain.StagePriority
	IsMilestone   bool
	Notes         *string
}

type CreateTimelineInput struct {
	Title        string
	Description  *string
	PlannedStart time.Time
	PlannedEnd   time.Time
	Notes        *string
	Stages       []CreateStageInput
}

type UpdateStageInput struct {
	Name          *string
	Description   *string
	PlannedStart  *time.Time
	PlannedEnd    *time.Time
	ActualStart   *time.Time
	ActualEnd     *time.Time
	Progress      *float64
	Status        *domain.StageStatus
	AssignedTo    *uuid.UUID
	EstimatedCost *float64
	ActualCost    *float64
	Priority      *domain.StagePriority
	Notes         *string
}

type TimelineAnalytics struct {
	ProjectOverview   OverviewAnalytics `json:"project_overview"`
	ScheduleAnalytics ScheduleAnalytics `json:"schedule_analytics"`
	CostAnalytics     CostAnalytics     `json:"cost_analytics"`
	CriticalItems     CriticalItems     `json:"critical_items"`
	StageBreakdown    StageBreakdown    `json:"stage_breakdown"`
}

type OverviewAnalytics struct {
	TotalStages      int     `json:"total_stages"`
	CompletedStages  int     `json:"completed_stages"`
	InProgressStages int     `json:"in_progress_stages"`
	DelayedStages    int     `json:"delayed_stages"`
	NotStartedStages int     `json:"not_started_stages"`
	OverallProgress  float64 `json:"overall_progress"`
}

type ScheduleAnalytics struct {
	PlannedStart         time.Time  `json:"planned_start_date"`
	PlannedEnd           time.Time  `json:"planned_end_date"`
	ActualStart          *time.Time `json:"actual_start_date,omitempty"`
	ActualEnd            *time.Time `json:"actual_end_date,omitempty"`
	TotalPlannedDays     int        `json:"total_planned_days"`
	DaysElapsed          int        `json:"days_elapsed"`
	DaysRemaining        int        `json:"days_remaining"`
	IsOnSchedule         bool       `json:"is_on_schedule"`
	ScheduleVarianceDays float64    `json:"schedule_variance_days"`
}

type CostAnalytics struct {
	TotalEstimatedCost     float64 `json:"total_estimated_cost"`
	TotalActualCost        float64 `json:"total_actual_cost"`
	CostVariance           float64 `json:"cost_variance"`
	CostVariancePercentage float64 `json:"cost_variance_percentage"`
}

type OverdueStage struct {
	ID          uuid.UUID          `json:"id"`
	Name        string             `json:"stage_name"`
	PlannedEnd  time.Time          `json:"planned_end_date"`
	DaysOverdue int                `json:"days_overdue"`
	Status      domain.StageStatus `json:"status"`
}

type UpcomingMilestone struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"stage_name"`
	PlannedEnd   time.Time `json:"planned_end_date"`
	DaysUntilDue int       `json:"days_until_due"`
	Progress     float64   `json:"progress_percentage"`
}

type CriticalItems struct {
	CriticalStages     []OverdueStage      `json:"critical_stages"`
	UpcomingMilestones []UpcomingMilestone `json:"upcoming_milestones"`
}

type StageBreakdown struct {
	ByStatus   map[domain.StageStatus]int   `json:"by_status"`
	ByPriority map[domain.StagePriority]int `json:"by_priority"`
}

type TimelineSummary struct {
	Title         string                  `json:"title"`
	Status        domain.TimelineStatus   `json:"status"`
	Progress      float64                 `json:"progress_percentage"`
	PlannedStart  time.Time               `json:"planned_start_date"`
	PlannedEnd    time.Time               `json:"planned_end_date"`
	ActualStart   *time.Time              `json:"actual_start_date,omitempty"`
	DaysRemaining int                     `json:"days_remaining"`
	IsOnSchedule  bool                    `json:"is_on_schedule"`
	Milestones    []domain.TimelineStage  `json:"milestones"`
	RecentUpdates []domain.TimelineUpdate `json:"recent_updates"`
}

type Timelines interface {
	Create(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, input CreateTimelineInput) (uuid.UUID, error)
	GetForProject(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*domain.ProjectTimeline, error)
	UpdateStage(ctx context.Context, stageID uuid.UUID, actorID uuid.UUID, input UpdateStageInput) error
	UpdateStatus(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, status domain.TimelineStatus, notes *string) error
	AddStage(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, input CreateStageInput) (uuid.UUID, error)
	DeleteStage(ctx context.Context, stageID uuid.UUID, actorID uuid.UUID) error
	ListUpdates(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID, page, limit int) ([]domain.TimelineUpdate, int64, error)
	Analytics(ctx context.Context, timelineID uuid.UUID, actorID uuid.UUID) (*TimelineAnalytics, error)
	Summary(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*TimelineSummary, error)
}
