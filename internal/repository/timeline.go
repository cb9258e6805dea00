package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type timelineRepository struct {
	db *sqlx.DB
}

func newTimelineRepository(db *sqlx.DB) *timelineRepository {
	return &timelineRepository{
		db: db,
	}
}

const timelineColumns = `
	id, project_id, created_by, last_updated_by, title, description,
	planned_start_date, planned_end_date, actual_start_date, actual_end_date,
	status, progress_percentage, is_active, notes, created_at, updated_at`

const stageColumns = `
	id, timeline_id, stage_name, description, stage_order,
	planned_start_date, planned_end_date, actual_start_date, actual_end_date,
	progress_percentage, status, assigned_to, estimated_cost, actual_cost,
	priority, is_milestone, notes, created_at, updated_at`

// CreateWithStages inserts the timeline and all of its stages atomically.
func (r *timelineRepository) CreateWithStages(ctx context.Context, timeline *domain.ProjectTimeline, stages []domain.TimelineStage) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertTimeline = `
	INSERT INTO project_timeline
	(id, project_id, created_by, title, description, planned_start_date, planned_end_date, status, is_active, notes)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, insertTimeline,
		timeline.ID,
		timeline.ProjectID,
		timeline.CreatedBy,
		timeline.Title,
		timeline.Description,
		timeline.PlannedStart,
		timeline.PlannedEnd,
		timeline.Status,
		timeline.IsActive,
		timeline.Notes,
	); err != nil {
		return fmt.Errorf("db insert timeline: %w", err)
	}

	const insertStage = `
	INSERT INTO timeline_stage
	(id, timeline_id, stage_name, description, stage_order, planned_start_date, planned_end_date,
	 status, assigned_to, estimated_cost, priority, is_milestone, notes)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?, uuid_to_bin(?), ?, ?, ?, ?);
	`
	for i := range stages {
		stage := &stages[i]
		if _, err := tx.ExecContext(ctx, insertStage,
			stage.ID,
			stage.TimelineID,
			stage.Name,
			stage.Description,
			stage.Order,
			stage.PlannedStart,
			stage.PlannedEnd,
			stage.Status,
			stage.AssignedTo,
			stage.EstimatedCost,
			stage.Priority,
			stage.IsMilestone,
			stage.Notes,
		); err != nil {
			return fmt.Errorf("db insert timeline stage: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx failed: %w", err)
	}

	return nil
}

func (r *timelineRepository) loadStages(ctx context.Context, timeline *domain.ProjectTimeline) error {
	const query = `
	SELECT ` + stageColumns + `
	FROM timeline_stage WHERE timeline_id = uuid_to_bin(?)
	ORDER BY stage_order ASC;
	`
	if err := r.db.SelectContext(ctx, &timeline.Stages, query, timeline.ID); err != nil {
		return fmt.Errorf("select timeline stages failed: %w", err)
	}
	return nil
}

func (r *timelineRepository) GetActiveByProjectID(ctx context.Context, projectID uuid.UUID) (*domain.ProjectTimeline, error) {
	const query = `
	SELECT ` + timelineColumns + `
	FROM project_timeline WHERE project_id = uuid_to_bin(?) AND is_active = true;
	`
	var timeline domain.ProjectTimeline
	if err := r.db.GetContext(ctx, &timeline, query, projectID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select active timeline failed: %w", err)
	}

	if err := r.loadStages(ctx, &timeline); err != nil {
		return nil, err
	}

	return &timeline, nil
}

func (r *timelineRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.ProjectTimeline, error) {
	const query = `
	SELECT ` + timelineColumns + `
	FROM project_timeline WHERE id = uuid_to_bin(?);
	`
	var timeline domain.ProjectTimeline
	if err := r.db.GetContext(ctx, &timeline, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select timeline by id failed: %w", err)
	}

	if err := r.loadStages(ctx, &timeline); err != nil {
		return nil, err
	}

	return &timeline, nil
}

func (r *timelineRepository) ExistsByProjectID(ctx context.Context, projectID uuid.UUID) (bool, error) {
	const query = `SELECT COUNT(*) FROM project_timeline WHERE project_id = uuid_to_bin(?);`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, projectID); err != nil {
		return false, fmt.Errorf("count timelines failed: %w", err)
	}
	return count > 0, nil
}

func (r *timelineRepository) UpdateProgress(ctx context.Context, id uuid.UUID, progress float64) error {
	const query = `UPDATE project_timeline SET progress_percentage = ? WHERE id = uuid_to_bin(?);`

	if _, err := r.db.ExecContext(ctx, query, progress, id); err != nil {
		return fmt.Errorf("update timeline progress failed: %w", err)
	}
	return nil
}

func (r *timelineRepository) UpdateStatus(ctx context.Context, timeline *domain.ProjectTimeline) error {
	const query = `
	UPDATE project_timeline
	SET status = ?, notes = ?, last_updated_by = uuid_to_bin(?), actual_start_date = ?, actual_end_date = ?
	WHERE id = uuid_to_bin(?);
	`
	res, err := r.db.ExecContext(ctx, query,
		timeline.Status,
		timeline.Notes,
		timeline.LastUpdatedBy,
		timeline.ActualStart,
		timeline.ActualEnd,
		timeline.ID,
	)
	if err != nil {
		return fmt.Errorf("update timeline status failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *timelineRepository) SetLastUpdatedBy(ctx context.Context, id uuid.UUID, userID uuid.UUID) error {
	const query = `UPDATE project_timeline SET last_updated_by = uuid_to_bin(?) WHERE id = uuid_to_bin(?);`

	if _, err := r.db.ExecContext(ctx, query, userID, id); err != nil {
		return fmt.Errorf("update timeline last_updated_by failed: %w", err)
	}
	return nil
}

func (r *timelineRepository) GetStage(ctx context.Context, stageID uuid.UUID) (*domain.TimelineStage, error) {
	const query = `
	SELECT ` + stageColumns + `
	FROM timeline_stage WHERE id = uuid_to_bin(?);
	`
	var stage domain.TimelineStage
	if err := r.db.GetContext(ctx, &stage, query, stageID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select timeline stage failed: %w", err)
	}
	return &stage, nil
}

func (r *timelineRepository) AddStage(ctx context.Context, stage *domain.TimelineStage) error {
	const query = `
	INSERT INTO timeline_stage
	(id, timeline_id, stage_name, description, stage_order, planned_start_date, planned_end_date,
	 status, assigned_to, estimated_cost, priority, is_milestone, notes)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?, uuid_to_bin(?), ?, ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, query,
		stage.ID,
		stage.TimelineID,
		stage.Name,
		stage.Description,
		stage.Order,
		stage.PlannedStart,
		stage.PlannedEnd,
		stage.Status,
		stage.AssignedTo,
		stage.EstimatedCost,
		stage.Priority,
		stage.IsMilestone,
		stage.Notes,
	); err != nil {
		return fmt.Errorf("db insert timeline stage: %w", err)
	}
	return nil
}

func (r *timelineRepository) UpdateStage(ctx context.Context, stage *domain.TimelineStage) error {
	const query = `
	UPDATE timeline_stage
	SET stage_name = ?, description = ?, planned_start_date = ?, planned_end_date = ?,
	    actual_start_date = ?, actual_end_date = ?, progress_percentage = ?, status = ?,
	    assigned_to = uuid_to_bin(?), estimated_cost = ?, actual_cost = ?, priority = ?, notes = ?
	WHERE id = uuid_to_bin(?);
	`
	res, err := r.db.ExecContext(ctx, query,
		stage.Name,
		stage.Description,
		stage.PlannedStart,
		stage.PlannedEnd,
		stage.ActualStart,
		stage.ActualEnd,
		stage.Progress,
		stage.Status,
		stage.AssignedTo,
		stage.EstimatedCost,
		stage.ActualCost,
		stage.Priority,
		stage.Notes,
		stage.ID,
	)
	if err != nil {
		return fmt.Errorf("update timeline stage failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rows == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *timelineRepository) DeleteStage(ctx context.Context, stageID uuid.UUID) error {
	const query = `DELETE FROM timeline_stage WHERE id = uuid_to_bin(?);`

	res, err := r.db.ExecContext(ctx, query, stageID)
	if err != nil {
		return fmt.Errorf("delete timeline stage failed: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rows == 0 {
		return domain.ErrNotFound
	}

	return nil
}

func (r *timelineRepository) MaxStageOrder(ctx context.Context, timelineID uuid.UUID) (int, error) {
	const query = `SELECT COALESCE(MAX(stage_order), 0) FROM timeline_stage WHERE timeline_id = uuid_to_bin(?);`

	var maxOrder int
	if err := r.db.GetContext(ctx, &maxOrder, query, timelineID); err != nil {
		return 0, fmt.Errorf("select max stage order failed: %w", err)
	}
	return maxOrder, nil
}

func (r *timelineRepository) CreateUpdate(ctx context.Context, update *domain.TimelineUpdate) error {
	const query = `
	INSERT INTO timeline_update
	(id, timeline_id, stage_id, updated_by, update_type, previous_value, new_value, update_message, impact_description, is_major_update)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?);
	`
	if _, err := r.db.ExecContext(ctx, query,
		update.ID,
		update.TimelineID,
		update.StageID,
		update.UpdatedBy,
		update.UpdateType,
		update.PreviousValue,
		update.NewValue,
		update.Message,
		update.Impact,
		update.IsMajor,
	); err != nil {
		return fmt.Errorf("db insert timeline update: %w", err)
	}
	return nil
}

const timelineUpdateColumns = `
	tu.id, tu.timeline_id, tu.stage_id, tu.updated_by, tu.update_type, tu.previous_value, tu.new_value,
	tu.update_message, tu.impact_description, tu.is_major_update, tu.created_at,
	u.name AS updater_name, ts.stage_name AS stage_name`

func (r *timelineRepository) ListUpdates(ctx context.Context, timelineID uuid.UUID, limit, offset int) ([]domain.TimelineUpdate, error) {
	const query = `
	SELECT ` + timelineUpdateColumns + `
	FROM timeline_update tu
	JOIN user u ON u.id = tu.updated_by
	LEFT JOIN timeline_stage ts ON ts.id = tu.stage_id
	WHERE tu.timeline_id = uuid_to_bin(?)
	ORDER BY tu.created_at DESC
	LIMIT ? OFFSET ?;
	`
	var updates []domain.TimelineUpdate
	if err := r.db.SelectContext(ctx, &updates, query, timelineID, limit, offset); err != nil {
		return nil, fmt.Errorf("select timeline updates failed: %w", err)
	}
	return updates, nil
}

func (r *timelineRepository) CountUpdates(ctx context.Context, timelineID uuid.UUID) (int64, error) {
	const query = `SELECT COUNT(*) FROM timeline_update WHERE timeline_id = uuid_to_bin(?);`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, timelineID); err != nil {
		return 0, fmt.Errorf("count timeline updates failed: %w", err)
	}
	return count, nil
}

func (r *timelineRepository) ListMajorUpdatesSince(ctx context.Context, timelineID uuid.UUID, since time.Time, limit int) ([]domain.TimelineUpdate, error) {
	const query = `
	SELECT ` + timelineUpdateColumns + `
	FROM timeline_update tu
	JOIN user u ON u.id = tu.updated_by
	LEFT JOIN timeline_stage ts ON ts.id = tu.stage_id
	WHERE tu.timeline_id = uuid_to_bin(?) AND tu.is_major_update = true AND tu.created_at >= ?
	ORDER BY tu.created_at DESC
	LIMIT ?;
	`
	var updates []domain.TimelineUpdate
	if err := r.db.SelectContext(ctx, &updates, query, timelineID, since, limit); err != nil {
		return nil, fmt.Errorf("select major timeline updates failed: %w", err)
	}
	return updates, nil
}
