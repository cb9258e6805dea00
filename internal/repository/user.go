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

type userRepository struct {
	db *sqlx.DB
}

func newUserRepository(db *sqlx.DB) *userRepository {
	return &userRepository{
		db: db,
	}
}

// Create inserts the user row. The unique keys on email and nic are the
// authoritative duplicate check; a prior SELECT is advisory only.
func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
	INSERT INTO user (id, name, email, nic, contact_number, password, verified)
	VALUES (uuid_to_bin(?), ?, ?, ?, ?, ?, ?);
	`

	result, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Email,
		user.NIC,
		user.ContactNumber,
		user.PasswordHash,
		user.Verified,
	)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert user: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected failed: %w", err)
	}

	if rowsAffected == 0 {
		return domain.ErrNoRowsAffected
	}

	return nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	const query = `
	SELECT id, name, email, nic, contact_number, password, verified, created_at, updated_at, deleted_at
	FROM user WHERE email = ? AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by email failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	const query = `
	SELECT id, name, email, nic, contact_number, password, verified, created_at, updated_at, deleted_at
	FROM user WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	var user domain.User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select from user by id failed: %w", err)
	}

	return &user, nil
}

func (r *userRepository) ExistsByEmailOrNIC(ctx context.Context, email string, nic string) (bool, error) {
	const query = `SELECT COUNT(*) FROM user WHERE (email = ? OR nic = ?) AND deleted_at IS NULL;`

	var count int64
	if err := r.db.GetContext(ctx, &count, query, email, nic); err != nil {
		return false, fmt.Errorf("count user by email or nic failed: %w", err)
	}

	return count > 0, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, email string, name string, contactNumber string) error {
	const query = `UPDATE user SET name = ?, contact_number = ? WHERE email = ? AND deleted_at IS NULL;`

	res, err := r.db.ExecContext(ctx, query, name, contactNumber, email)
	if err != nil {
		return fmt.Errorf("update user profile failed: %w", err)
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
