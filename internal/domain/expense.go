package domain

import (
	"time"

	"github.com/google/uuid"
)

type ExpenseStatus string

const (
	ExpensePending  ExpenseStatus = "pending"
	ExpenseApproved ExpenseStatus = "approved"
	ExpenseRejected ExpenseStatus = "rejected"
)

type ExpenseCategory struct {
	ID    uuid.UUID `db:"id" json:"id"`
	Name  string    `db:"name" json:"name"`
	Color string    `db:"color" json:"color"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Expense struct {
	ID          uuid.UUID     `db:"id" json:"id"`
	ProjectID   uuid.UUID     `db:"project_id" json:"project_id"`
	CategoryID  uuid.UUID     `db:"category_id" json:"category_id"`
	CreatedBy   uuid.UUID     `db:"created_by" json:"created_by"`
	Title       string        `db:"title" json:"title"`
	Description *string       `db:"description" json:"description,omitempty"`
	Amount      float64       `db:"amount" json:"amount"`
	Currency    string        `db:"currency" json:"currency"`
	ExpenseDate time.Time     `db:"expense_date" json:"expense_date"`
	Vendor      *string       `db:"vendor" json:"vendor,omitempty"`
	ReceiptPath *string       `db:"receipt_path" json:"receipt_path,omitempty"`
	Status      ExpenseStatus `db:"status" json:"status"`
	Notes       *string       `db:"notes" json:"notes,omitempty"`
	ApprovedBy  *uuid.UUID    `db:"approved_by" json:"approved_by,omitempty"`
	ApprovedAt  *time.Time    `db:"approved_at" json:"approved_at,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`

	// Joined attributes for listings.
	CategoryName *string `db:"category_name" json:"category_name,omitempty"`
	CreatorName  *string `db:"creator_name" json:"creator_name,omitempty"`
}

type ExpenseStatusStat struct {
	Status      ExpenseStatus `db:"status" json:"status"`
	Count       int64         `db:"count" json:"count"`
	TotalAmount float64       `db:"total_amount" json:"total_amount"`
}

type ExpenseCategoryStat struct {
	CategoryID  uuid.UUID `db:"category_id" json:"category_id"`
	Name        string    `db:"name" json:"name"`
	Color       string    `db:"color" json:"color"`
	Count       int64     `db:"count" json:"count"`
	TotalAmount float64   `db:"total_amount" json:"total_amount"`
}
