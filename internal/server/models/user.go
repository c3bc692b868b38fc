// Package models defines server-side data models persisted in the database.
package models

import "time"

// User roles. Admin accounts are created out-of-band (cmd/admin), the public
// registration flow always produces RoleUser.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// PlanFree is the default plan code assigned on registration.
const PlanFree = "FREE"

// User is the identity record. Email is stored normalized (lower-case,
// trimmed); uniqueness is enforced by the database.
type User struct {
	ID              string
	Email           string
	PasswordHash    string
	Role            string
	Plan            string
	PlanExpiresAt   *time.Time
	IsEmailVerified bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
