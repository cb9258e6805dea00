package repository

import (
	"context"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
)

type Repositories struct {
	Users      Users
	Challenges Challenges
	Projects   Projects
	Members    Members
	Expenses   Expenses
	Categories Categories
	Timelines  Timelines
}

func NewRepositories(db *sqlx.DB, rdb redis.UniversalClient, challengeRetention time.Duration) *Repositories {
	return &Repositories{
		Users:      newUserRepository(db),
		Challenges: newChallengeRepository(rdb, challengeRetention),
		Projects:   newProjectRepository(db),
		Members:    newMemberRepository(db),
		Expenses:   newExpenseRepository(db),
		Categories: newCategoryRepository(db),
		Timelines:  newTimelineRepository(db),
	}
}

type Users interface {
	Create(ctx context.Context, user *domain.User) error
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	ExistsByEmailOrNIC(ctx context.Context, email string, nic string) (bool, error)
	UpdateProfile(ctx context.Context, email string, name string, contactNumber string) error
}

type Challenges interface {
	Upsert(ctx context.Context, challenge *domain.Challenge) error
	Get(ctx context.Context, email string) (*domain.Challenge, error)
	Delete(ctx context.Context, email string) error
}

type Projects interface {
	Create(ctx context.Context, project *domain.Project, ownerID uuid.UUID) error
	GetAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Project, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type Members interface {
	Get(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (*domain.ProjectMember, error)
	Add(ctx context.Context, member *domain.ProjectMember) error
	List(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMember, error)
	UpdateRole(ctx context.Context, projectID uuid.UUID, userID uuid.UUID, role domain.MemberRole) error
	Remove(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) error
}

type ExpenseFilters struct {
	Status     *domain.ExpenseStatus
	CategoryID *uuid.UUID
	DateFrom   *time.Time
	DateTo     *time.Time
}

type Expenses interface {
	Create(ctx context.Context, expense *domain.Expense) error
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error)
	GetAllForProject(ctx context.Context, projectID uuid.UUID, limit, offset int, filters *ExpenseFilters) ([]domain.Expense, error)
	Count(ctx context.Context, projectID uuid.UUID, filters *ExpenseFilters) (int64, error)
	Update(ctx context.Context, expense *domain.Expense) error
	SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus, approvedBy uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
	StatusStats(ctx context.Context, projectID uuid.UUID) ([]domain.ExpenseStatusStat, error)
	CategoryStats(ctx context.Context, projectID uuid.UUID) ([]domain.ExpenseCategoryStat, error)
}

type Categories interface {
	Create(ctx context.Context, category *domain.ExpenseCategory) error
	GetAll(ctx context.Context) ([]domain.ExpenseCategory, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.ExpenseCategory, error)
}

type Timelines interface {
	CreateWithStages(ctx context.Context, timeline *domain.ProjectTimeline, stages []domain.TimelineStage) error
	GetActiveByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.ProjectTimeline, error)
	GetOneByID(ctx context.Context, id uuid.UUID) (*domain.ProjectTimeline, error)
	ExistsByProjectID(ctx context.Context, projectID uuid.UUID) (bool, error)
	UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error
	UpdateStatus(ctx context.Context, timeline *domain.ProjectTimeline) error
	SetLastUpdatedBy(ctx context.Context, id uuid.UUID, userID uuid.UUID) error

	GetStage(ctx context.Context, stageID uuid.UUID) (*domain.TimelineStage, error)
	AddStage(ctx context.Context, stage *domain.TimelineStage) error
	UpdateStage(ctx context.Context, stage *domain.TimelineStage) error
	DeleteStage(ctx context.Context, stageID uuid.UUID) error
	MaxStageOrder(ctx context.Context, timelineID uuid.UUID) (int, error)

	CreateUpdate(ctx context.Context, update *domain.TimelineUpdate) error
	ListUpdates(ctx context.Context, timelineID uuid.UUID, limit, offset int) ([]domain.TimelineUpdate, error)
	CountUpdates(ctx context.Context, timelineID uuid.UUID) (int64, error)
	ListMajorUpdatesSince(ctx context.Context, timelineID uuid.UUID, since time.Time, limit int) ([]domain.TimelineUpdate, error)
}
