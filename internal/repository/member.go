package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/db"
	"github.com/RandilG/Construction-Management/internal/domain"

	"github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type memberRepository struct {
	db *sqlx.DB
}

func newMemberRepository(db *sqlx.DB) *memberRepository {
	return &memberRepository{
		db: db,
	}
}

func (r *memberRepository) Get(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (*domain.ProjectMember, error) {
	const query = `
	SELECT project_id, user_id, role, created_at
	FROM project_member
	WHERE project_id = uuid_to_bin(?) AND user_id = uuid_to_bin(?);
	`
	var member domain.ProjectMember
	if err := r.db.GetContext(ctx, &member, query, projectID, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select project member failed: %w", err)
	}
	return &member, nil
}

func (r *memberRepository) Add(ctx context.Context, member *domain.ProjectMember) error {
	const query = `
	INSERT INTO project_member (project_id, user_id, role)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), ?);
	`
	_, err := r.db.ExecContext(ctx, query, member.ProjectID, member.UserID, member.Role)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert project member: %w", err)
	}

	return nil
}

func (r *memberRepository) List(ctx context.Context, projectID uuid.UUID) ([]domain.ProjectMember, error) {
	const query = `
	SELECT pm.project_id, pm.user_id, pm.role, pm.created_at, u.name AS user_name, u.email AS user_email
	FROM project_member pm
	JOIN user u ON u.id = pm.user_id
	WHERE pm.project_id = uuid_to_bin(?)
	ORDER BY pm.created_at ASC;
	`
	var members []domain.ProjectMember
	if err := r.db.SelectContext(ctx, &members, query, projectID); err != nil {
		return nil, fmt.Errorf("select project members failed: %w", err)
	}
	return members, nil
}

func (r *memberRepository) UpdateRole(ctx context.Context, projectID uuid.UUID, userID uuid.UUID, role domain.MemberRole) error {
	const query = `
	UPDATE project_member SET role = ?
	WHERE project_id = uuid_to_bin(?) AND user_id = uuid_to_bin(?) AND role != ?;
	`
	res, err := r.db.ExecContext(ctx, query, role, projectID, userID, domain.RoleOwner)
	if err != nil {
		return fmt.Errorf("update project member role failed: %w", err)
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

func (r *memberRepository) Remove(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) error {
	const query = `
	DELETE FROM project_member
	WHERE project_id = uuid_to_bin(?) AND user_id = uuid_to_bin(?) AND role != ?;
	`
	res, err := r.db.ExecContext(ctx, query, projectID, userID, domain.RoleOwner)
	if err != nil {
		return fmt.Errorf("delete project member failed: %w", err)
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
