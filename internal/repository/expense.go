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

type expenseRepository struct {
	db *sqlx.DB
}

func newExpenseRepository(db *sqlx.DB) *expenseRepository {
	return &expenseRepository{
		db: db,
	}
}

func (r *expenseRepository) Create(ctx context.Context, expense *domain.Expense) error {
	const query = `
	INSERT INTO expense
	(id, project_id, category_id, created_by, title, description, amount, currency, expense_date, vendor, receipt_path, status, notes)
	VALUES (uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), uuid_to_bin(?), ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`
	_, err := r.db.ExecContext(ctx, query,
		expense.ID,
		expense.ProjectID,
		expense.CategoryID,
		expense.CreatedBy,
		expense.Title,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.ExpenseDate,
		expense.Vendor,
		expense.ReceiptPath,
		expense.Status,
		expense.Notes,
	)
	if err != nil {
		return fmt.Errorf("db insert expense: %w", err)
	}
	return nil
}

func (r *expenseRepository) GetOneByID(ctx context.Context, id uuid.UUID) (*domain.Expense, error) {
	const query = `
	SELECT e.id, e.project_id, e.category_id, e.created_by, e.title, e.description, e.amount, e.currency,
	       e.expense_date, e.vendor, e.receipt_path, e.status, e.notes, e.approved_by, e.approved_at,
	       e.created_at, e.updated_at, e.deleted_at,
	       c.name AS category_name, u.name AS creator_name
	FROM expense e
	JOIN expense_category c ON c.id = e.category_id
	JOIN user u ON u.id = e.created_by
	WHERE e.id = uuid_to_bin(?) AND e.deleted_at IS NULL;
	`
	var expense domain.Expense
	if err := r.db.GetContext(ctx, &expense, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("select expense by id failed: %w", err)
	}
	return &expense, nil
}

func buildExpenseFilterClause(filters *ExpenseFilters, args []interface{}) (string, []interface{}) {
	clause := ""
	if filters == nil {
		return clause, args
	}

	if filters.Status != nil {
		clause += " AND e.status = ?"
		args = append(args, *filters.Status)
	}
	if filters.CategoryID != nil {
		clause += " AND e.category_id = uuid_to_bin(?)"
		args = append(args, *filters.CategoryID)
	}
	if filters.DateFrom != nil && filters.DateTo != nil {
		clause += " AND e.expense_date BETWEEN ? AND ?"
		args = append(args, *filters.DateFrom, *filters.DateTo)
	}

	return clause, args
}

func (r *expenseRepository) GetAllForProject(ctx context.Context, projectID uuid.UUID, limit, offset int, filters *ExpenseFilters) ([]domain.Expense, error) {
	query := `
	SELECT e.id, e.project_id, e.category_id, e.created_by, e.title, e.description, e.amount, e.currency,
	       e.expense_date, e.vendor, e.receipt_path, e.status, e.notes, e.approved_by, e.approved_at,
	       e.created_at, e.updated_at, e.deleted_at,
	       c.name AS category_name, u.name AS creator_name
	FROM expense e
	JOIN expense_category c ON c.id = e.category_id
	JOIN user u ON u.id = e.created_by
	WHERE e.project_id = uuid_to_bin(?) AND e.deleted_at IS NULL`

	args := []interface{}{projectID}
	clause, args := buildExpenseFilterClause(filters, args)
	query += clause
	query += " ORDER BY e.expense_date DESC LIMIT ? OFFSET ?"
	args = append(args, limit, offset)

	var expenses []domain.Expense
	if err := r.db.SelectContext(ctx, &expenses, query, args...); err != nil {
		return nil, fmt.Errorf("select project expenses failed: %w", err)
	}
	return expenses, nil
}

func (r *expenseRepository) Count(ctx context.Context, projectID uuid.UUID, filters *ExpenseFilters) (int64, error) {
	query := `SELECT COUNT(*) FROM expense e WHERE e.project_id = uuid_to_bin(?) AND e.deleted_at IS NULL`

	args := []interface{}{projectID}
	clause, args := buildExpenseFilterClause(filters, args)
	query += clause

	var count int64
	if err := r.db.GetContext(ctx, &count, query, args...); err != nil {
		return 0, fmt.Errorf("count project expenses failed: %w", err)
	}
	return count, nil
}

func (r *expenseRepository) Update(ctx context.Context, expense *domain.Expense) error {
	const query = `
	UPDATE expense
	SET category_id = uuid_to_bin(?), title = ?, description = ?, amount = ?, currency = ?,
	    expense_date = ?, vendor = ?, receipt_path = ?, notes = ?
	WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query,
		expense.CategoryID,
		expense.Title,
		expense.Description,
		expense.Amount,
		expense.Currency,
		expense.ExpenseDate,
		expense.Vendor,
		expense.ReceiptPath,
		expense.Notes,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("update expense failed: %w", err)
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

func (r *expenseRepository) SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus, approvedBy uuid.UUID) error {
	const query = `
	UPDATE expense SET status = ?, approved_by = uuid_to_bin(?), approved_at = now()
	WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;
	`
	res, err := r.db.ExecContext(ctx, query, status, approvedBy, id)
	if err != nil {
		return fmt.Errorf("set expense status failed: %w", err)
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

func (r *expenseRepository) StatusStats(ctx context.Context, projectID uuid.UUID) ([]domain.ExpenseStatusStat, error) {
	const query = `
	SELECT status, COUNT(*) AS count, COALESCE(SUM(amount), 0) AS total_amount
	FROM expense
	WHERE project_id = uuid_to_bin(?) AND deleted_at IS NULL
	GROUP BY status;
	`
	var stats []domain.ExpenseStatusStat
	if err := r.db.SelectContext(ctx, &stats, query, projectID); err != nil {
		return nil, fmt.Errorf("select expense status stats failed: %w", err)
	}
	return stats, nil
}

func (r *expenseRepository) CategoryStats(ctx context.Context, projectID uuid.UUID) ([]domain.ExpenseCategoryStat, error) {
	const query = `
	SELECT e.category_id, c.name, c.color, COUNT(*) AS count, COALESCE(SUM(e.amount), 0) AS total_amount
	FROM expense e
	JOIN expense_category c ON c.id = e.category_id
	WHERE e.project_id = uuid_to_bin(?) AND e.deleted_at IS NULL
	GROUP BY e.category_id, c.name, c.color
	ORDER BY total_amount DESC;
	`
	var stats []domain.ExpenseCategoryStat
	if err := r.db.SelectContext(ctx, &stats, query, projectID); err != nil {
		return nil, fmt.Errorf("select expense category stats failed: %w", err)
	}
	return stats, nil
}

func (r *expenseRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `UPDATE expense SET deleted_at = now() WHERE id = uuid_to_bin(?) AND deleted_at IS NULL;`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete expense failed: %w", err)
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
