package models

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStatus is the membership approval state.
type ApprovalStatus string

const (
	StatusPending  ApprovalStatus = "pending"
	StatusApproved ApprovalStatus = "approved"
	StatusRejected ApprovalStatus = "rejected"
)

// ValidApprovalStatus reports whether s is one of the closed status set.
func ValidApprovalStatus(s string) bool {
	switch ApprovalStatus(s) {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Membership records one user's participation in a room. At most one exists
// per (room, user) pair, enforced by a storage unique constraint.
type Membership struct {
	ID               uuid.UUID      `json:"id"`
	RoomID           uuid.UUID      `json:"room_id"`
	UserID           uuid.UUID      `json:"user_id"`
	ClassificationID uuid.UUID      `json:"classification_id"`
	Status           ApprovalStatus `json:"approval_status"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}
