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

type categoryRepository struct {
	db *sqlx.DB
}

func newCategoryRepository(db *sqlx.DB) *categoryRepository {
	return &categoryRepository{
		db: db,
	}
}

func (r *categoryRepository) Create(ctx context.Context, category *domain.ExpenseCategory) error {
	const query = `
	INSERT INTO expense_category (id, name, color)
	VALUES (uuid_to_bin(?), ?, ?);
	`
	_, err := r.db.ExecContext(ctx, query, category.ID, category.Name, category.Color)
	if err != nil {
		//nolint:errorlint
		if mysqlError, ok := err.(*mysql.MySQLError); ok && mysqlError.Number == db.DuplicateEntry {
			return domain.ErrDuplicateEntry
		}
		return fmt.Errorf("db insert expense category: %w", err)
	}
	return nil
}

func (r *categoryRepository) GetAll(ctx context.Context) ([]domain.ExpenseCategory, error) {
	const query = `SELECT id, name, color, created_at FROM expense_category ORDER BY name ASC;`

	var categories []domain.ExpenseCategory
	if err := r.db.SelectContext(ctx, &categories, query); err != nil {
		return nil, fmt.Errorf("select expense categories failed: %w", err)
	}
	return categories, nil
}

func (r *categoryRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.ExpenseCategory, error) {
	const query = `SELECT id, name, color, created_at FROM expense_category WHERE id = uuid_to_bin(?);`

	var category domain.ExpenseCategory
	if err := r.db.GetContext(ctx, &category, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select expense category by id failed: %w", err)
	}
	return &category, nil
}
