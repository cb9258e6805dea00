package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type TimelineStatus string

const (
	TimelineDraft     TimelineStatus = "draft"
	TimelineActive    TimelineStatus = "active"
	TimelineCompleted TimelineStatus = "completed"
	TimelineOnHold    TimelineStatus = "on_hold"
	TimelineCancelled TimelineStatus = "cancelled"
)

func (s TimelineStatus) Valid() bool {
	switch s {
	case TimelineDraft, TimelineActive, TimelineCompleted, TimelineOnHold, TimelineCancelled:
		return true
	}
	return false
}

type StageStatus string

const (
	StageNotStarted StageStatus = "not_started"
	StageInProgress StageStatus = "in_progress"
	StageCompleted  StageStatus = "completed"
	StageDelayed    StageStatus = "delayed"
	StageOnHold     StageStatus = "on_hold"
	StageCancelled  StageStatus = "cancelled"
)

type StagePriority string

const (
	PriorityLow      StagePriority = "low"
	PriorityMedium   StagePriority = "medium"
	PriorityHigh     StagePriority = "high"
	PriorityCritical StagePriority = "critical"
)

type UpdateType string

const (
	UpdateGeneral        UpdateType = "general_update"
	UpdateStatusChange   UpdateType = "status_change"
	UpdateProgressChange UpdateType = "progress_update"
)

// JSONMap persists arbitrary update snapshots as a JSON column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported type for JSONMap: %T", value)
	}

	return json.Unmarshal(bytes, m)
}

type ProjectTimeline struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	ProjectID     uuid.UUID      `db:"project_id" json:"project_id"`
	CreatedBy     uuid.UUID      `db:"created_by" json:"created_by"`
	LastUpdatedBy *uuid.UUID     `db:"last_updated_by" json:"last_updated_by,omitempty"`
	Title         string         `db:"title" json:"title"`
	Description   *string        `db:"description" json:"description,omitempty"`
	PlannedStart  time.Time      `db:"planned_start_date" json:"planned_start_date"`
	PlannedEnd    time.Time      `db:"planned_end_date" json:"planned_end_date"`
	ActualStart   *time.Time     `db:"actual_start_date" json:"actual_start_date,omitempty"`
	ActualEnd     *time.Time     `db:"actual_end_date" json:"actual_end_date,omitempty"`
	Status        TimelineStatus `db:"status" json:"status"`
	Progress      float64        `db:"progress_percentage" json:"progress_percentage"`
	IsActive      bool           `db:"is_active" json:"is_active"`
	Notes         *string        `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Stages []TimelineStage `db:"-" json:"stages,omitempty"`
}

type TimelineStage struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	TimelineID    uuid.UUID     `db:"timeline_id" json:"timeline_id"`
	Name          string        `db:"stage_name" json:"stage_name"`
	Description   *string       `db:"description" json:"description,omitempty"`
	Order         int           `db:"stage_order" json:"stage_order"`
	PlannedStart  time.Time     `db:"planned_start_date" json:"planned_start_date"`
	PlannedEnd    time.Time     `db:"planned_end_date" json:"planned_end_date"`
	ActualStart   *time.Time    `db:"actual_start_date" json:"actual_start_date,omitempty"`
	ActualEnd     *time.Time    `db:"actual_end_date" json:"actual_end_date,omitempty"`
	Progress      float64       `db:"progress_percentage" json:"progress_percentage"`
	Status        StageStatus   `db:"status" json:"status"`
	AssignedTo    *uuid.UUID    `db:"assigned_to" json:"assigned_to,omitempty"`
	EstimatedCost *float64      `db:"estimated_cost" json:"estimated_cost,omitempty"`
	ActualCost    *float64      `db:"actual_cost" json:"actual_cost,omitempty"`
	Priority      StagePriority `db:"priority" json:"priority"`
	IsMilestone   bool          `db:"is_milestone" json:"is_milestone"`
	Notes         *string       `db:"notes" json:"notes,omitempty"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

type TimelineUpdate struct {
	ID            uuid.UUID  `db:"id" json:"id"`
	TimelineID    uuid.UUID  `db:"timeline_id" json:"timeline_id"`
	StageID       *uuid.UUID `db:"stage_id" json:"stage_id,omitempty"`
	UpdatedBy     uuid.UUID  `db:"updated_by" json:"updated_by"`
	UpdateType    UpdateType `db:"update_type" json:"update_type"`
	PreviousValue JSONMap    `db:"previous_value" json:"previous_value,omitempty"`
	NewValue      JSONMap    `db:"new_value" json:"new_value,omitempty"`
	Message       string     `db:"update_message" json:"update_message"`
	Impact        *string    `db:"impact_description" json:"impact_description,omitempty"`
	IsMajor       bool       `db:"is_major_update" json:"is_major_update"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Joined attributes for history listings.
	UpdaterName *string `db:"updater_name" json:"updater_name,omitempty"`
	StageName   *string `db:"stage_name" json:"stage_name,omitempty"`
}
