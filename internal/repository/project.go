package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type projectRepository struct {
	db *sqlx.DB
}

func newProjectRepository(db *sqlx.DB) *projectRepository {
	return &projectRepository{
		db: db,
	}
}

// Create inserts the project and its owner membership in one transaction.
func (r *projectRepository) Create(ctx context.Context, project *domain.Project, ownerID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx failed: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const insertProject = `
	INSERT INTO project (id, name, description, start_date, estimated_end_date, image_url)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?);
	`
	if _, err := tx.ExecContext(ctx, insertProject,
		project.ID,
		project.Name,
		project.Description,
		project.StartDate,
		project.EstimatedEndDate,
		project.ImageURL,
	); err != nil {
		return fmt.Errorf("db insert project: %w", err)
	}

	const insertOwner = `
	INSERT INTO project_member (project_id, user_id, role)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?);
	`
	if _, err := tx.ExecContext(ctx, insertOwner, project.ID, ownerID, domain.RoleOwner); err != nil {
		return fmt.Errorf("db insert project owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx failed: %w", err)
	}

	return nil
}

func (r *projectRepository) GetAllForUser(ctx context.Context, userID uuid.UUID) ([]domain.Project, error) {
	const query = `
	SELECT p.id, p.name, p.description, p.start_date, p.estimated_end_date, p.image_url, p.created_at, p.updated_at, p.deleted_at
	FROM project p
	JOIN project_member pm ON pm.project_id = p.id
	WHERE pm.user_id = uuid_to_bin(?) AND p.deleted_at IS NULL
	ORDER BY p.created_at DESC;
	`
	var projects []domain.Project
	if err := r.db.SelectContext(ctx, &projects, query, userID); err != nil {
		return nil, fmt.Errorf("select projects for user failed: %w", err)
	}
	return projects, nil
}

func (r *projectRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Project, error) {
	const query = `
	SELECT id, name, description, start_date, estimated_end_date, image_url, created_at, updated_at, deleted_at
	FROM project WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var project domain.Project
	if err := r.db.GetContext(ctx, &project, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from project by id failed: %w", err)
	}
	return &project, nil
}

func (r *projectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE project SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete project failed: %w", err)
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
