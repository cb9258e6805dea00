package domain

import "time"

// StagedRegistration is the pending user payload a challenge carries until
// verification materializes it into the user table. The user row does not
// exist before that, so abandoning a signup leaves nothing behind.
type StagedRegistration struct {
	Name          string `json:"name"`
	NIC           string `json:"nic"`
	ContactNumber string `json:"contact_number"`
	PasswordHash  string `json:"password_hash"`
}

// Challenge binds an email to a pending one-time code. At most one live
// challenge exists per email; a new signup replaces the previous one.
type Challenge struct {
	Email        string             `json:"email"`
	Code         string             `json:"code"`
	ExpiresAt    time.Time          `json:"expires_at"`
	Registration StagedRegistration `json:"registration"`
	CreatedAt    time.Time          `json:"created_at"`
}

func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}
