package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/RandilG/Construction-Management/internal/domain"
	"github.com/RandilG/Construction-Management/internal/repository"

	"github.com/google/uuid"
)

type expenseService struct {
	expenseRepository  repository.Expenses
	categoryRepository repository.Categories
	memberRepository   repository.Members
}

func newExpenseService(expenseRepository repository.Expenses,
	categoryRepository repository.Categories,
	memberRepository repository.Members,
) *expenseService {
	return &expenseService{
		expenseRepository:  expenseRepository,
		categoryRepository: categoryRepository,
		memberRepository:   memberRepository,
	}
}

func (s *expenseService) requireMember(ctx context.Context, projectID uuid.UUID, userID uuid.UUID) (*domain.ProjectMember, error) {
	member, err := s.memberRepository.Get(ctx, projectID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrNotProjectMember
		}
		return nil, fmt.Errorf("get project member failed: %w", err)
	}

	return member, nil
}

func (s *expenseService) Create(ctx context.Context, input CreateExpenseInput, actorID uuid.UUID) (uuid.UUID, error) {
	if _, err := s.requireMember(ctx, input.ProjectID, actorID); err != nil {
		return uuid.Nil, err
	}

	if _, err := s.categoryRepository.GetOneByID(ctx, input.CategoryID); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return uuid.Nil, ErrCategoryNotFound
		}
		return uuid.Nil, fmt.Errorf("get expense category failed: %w", err)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate expense id failed: %w", err)
	}

	currency := input.Currency
	if currency == "" {
		currency = "LKR"
	}

	expense := &domain.Expense{
		ID:          id,
		ProjectID:   input.ProjectID,
		CategoryID:  input.CategoryID,
		CreatedBy:   actorID,
		Title:       input.Title,
		Description: input.Description,
		Amount:      input.Amount,
		Currency:    currency,
		ExpenseDate: input.ExpenseDate,
		Vendor:      input.Vendor,
		ReceiptPath: input.ReceiptPath,
		Status:      domain.ExpensePending,
		Notes:       input.Notes,
	}

	if err := s.expenseRepository.Create(ctx, expense); err != nil {
		return uuid.Nil, fmt.Errorf("create expense failed: %w", err)
	}

	return id, nil
}

func (s *expenseService) GetOneByID(ctx context.Context, id uuid.UUID, actorID uuid.UUID) (*domain.Expense, error) {
	expense, err := s.expenseRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrExpenseNotFound
		}
		return nil, fmt.Errorf("get expense failed: %w", err)
	}

	if _, err := s.requireMember(ctx, expense.ProjectID, actorID); err != nil {
		return nil, err
	}

	return expense, nil
}

func (s *expenseService) GetAllForProject(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID, page, limit int, filters *repository.ExpenseFilters) ([]domain.Expense, int64, error) {
	if _, err := s.requireMember(ctx, projectID, actorID); err != nil {
		return nil, 0, err
	}

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	offset := (page - 1) * limit

	expenses, err := s.expenseRepository.GetAllForProject(ctx, projectID, limit, offset, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("list expenses failed: %w", err)
	}

	total, err := s.expenseRepository.Count(ctx, projectID, filters)
	if err != nil {
		return nil, 0, fmt.Errorf("count expenses failed: %w", err)
	}

	return expenses, total, nil
}

// Update rewrites the mutable fields of an expense. Only the creator or a
// managing member may edit, and approved expenses are frozen.
func (s *expenseService) Stats(ctx context.Context, projectID uuid.UUID, actorID uuid.UUID) (*ExpenseStats, error) {
	if _, err := s.requireMember(ctx, projectID, actorID); err != nil {
		return nil, err
	}

	byStatus, err := s.expenseRepository.StatusStats(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("expense status stats failed: %w", err)
	}

	byCategory, err := s.expenseRepository.CategoryStats(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("expense category stats failed: %w", err)
	}

	return &ExpenseStats{
		StatusBreakdown:   byStatus,
		CategoryBreakdown: byCategory,
	}, nil
}

func (s *expenseService) Update(ctx context.Context, expense *domain.Expense, actorID uuid.UUID) error {
	current, err := s.expenseRepository.GetOneByID(ctx, expense.ID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("get expense failed: %w", err)
	}

	member, err := s.requireMember(ctx, current.ProjectID, actorID)
	if err != nil {
		return err
	}
	if current.CreatedBy != actorID && !member.Role.CanManage() {
		return ErrPermissionDenied
	}
	if current.Status == domain.ExpenseApproved {
		return ErrPermissionDenied
	}

	expense.ProjectID = current.ProjectID
	if err := s.expenseRepository.Update(ctx, expense); err != nil {
		return fmt.Errorf("update expense failed: %w", err)
	}

	return nil
}

func (s *expenseService) SetStatus(ctx context.Context, id uuid.UUID, status domain.ExpenseStatus, actorID uuid.UUID) error {
	if status != domain.ExpenseApproved && status != domain.ExpenseRejected {
		return ErrInvalidStatus
	}

	expense, err := s.expenseRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("get expense failed: %w", err)
	}

	member, err := s.requireMember(ctx, expense.ProjectID, actorID)
	if err != nil {
		return err
	}
	if !member.Role.CanManage() {
		return ErrPermissionDenied
	}

	if err := s.expenseRepository.SetStatus(ctx, id, status, actorID); err != nil {
		return fmt.Errorf("set expense status failed: %w", err)
	}

	return nil
}

func (s *expenseService) Delete(ctx context.Context, id uuid.UUID, actorID uuid.UUID) error {
	expense, err := s.expenseRepository.GetOneByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return ErrExpenseNotFound
		}
		return fmt.Errorf("get expense failed: %w", err)
	}

	member, err := s.requireMember(ctx, expense.ProjectID, actorID)
	if err != nil {
		return err
	}
	if expense.CreatedBy != actorID && !member.Role.CanManage() {
		return ErrPermissionDenied
	}

	if err := s.expenseRepository.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete expense failed: %w", err)
	}

	return nil
}

func (s *expenseService) CreateCategory(ctx context.Context, name string, color string) (uuid.UUID, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.Nil, fmt.Errorf("generate category id failed: %w", err)
	}

	if color == "" {
		color = "#6B7280"
	}

	category := &domain.ExpenseCategory{
		ID:    id,
		Name:  name,
		Color: color,
	}

	if err := s.categoryRepository.Create(ctx, category); err != nil {
		if errors.Is(err, domain.ErrDuplicateEntry) {
			return uuid.Nil, ErrCategoryExists
		}
		return uuid.Nil, fmt.Errorf("create expense category failed: %w", err)
	}

	return id, nil
}

func (s *expenseService) GetCategories(ctx context.Context) ([]domain.ExpenseCategory, error) {
	return s.categoryRepository.GetAll(ctx)
}
