package domain

import (
	"time"

	"github.com/google/uuid"
)

type Project struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	Description      *string    `db:"description" json:"description,omitempty"`
	StartDate        *time.Time `db:"start_date" json:"start_date,omitempty"`
	EstimatedEndDate *time.Time `db:"estimated_end_date" json:"estimated_end_date,omitempty"`
	ImageURL         *string    `db:"image_url" json:"image_url,omitempty"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}

type MemberRole string

const (
	RoleOwner   MemberRole = "owner"
	RoleAdmin   MemberRole = "admin"
	RoleManager MemberRole = "manager"
	RoleMember  MemberRole = "member"
)

// CanManage reports whether the role may mutate project structure
// (timelines, approvals, membership).
func (r MemberRole) CanManage() bool {
	return r == RoleOwner || r == RoleAdmin || r == RoleManager
}

// CanAdminister reports whether the role may change project membership.
func (r MemberRole) CanAdminister() bool {
	return r == RoleOwner || r == RoleAdmin
}

// Assignable reports whether the role may be granted to a member.
// Ownership is fixed at project creation and never reassigned.
func (r MemberRole) Assignable() bool {
	return r == RoleAdmin || r == RoleManager || r == RoleMember
}

type ProjectMember struct {
	ProjectID uuid.UUID  `db:"project_id" json:"project_id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Role      MemberRole `db:"role" json:"role"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`

	// Joined user attributes, populated by member listings.
	UserName  string `db:"user_name" json:"name,omitempty"`
	UserEmail string `db:"user_email" json:"email,omitempty"`
}
