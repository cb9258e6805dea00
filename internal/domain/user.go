package domain

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `db:"id" json:"id"`
	Name          string    `db:"name" json:"name"`
	Email         string    `db:"email" json:"email"`
	NIC           string    `db:"nic" json:"nic"`
	ContactNumber string    `db:"contact_number" json:"contact_number"`
	PasswordHash  string    `db:"password" json:"-"`
	Verified      bool      `db:"verified" json:"verified"`

	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at" json:"deleted_at,omitempty"`
}
