package memberships

import "github.com/huddle-app/backend/internal/models"

// InitialStatus is the status a fresh membership gets from its
// classification's approval flag. There is no other path into pending.
func InitialStatus(requiresApproval bool) models.ApprovalStatus {
	if requiresApproval {
		return models.StatusPending
	}
	return models.StatusApproved
}

// CanTransition reports whether an organizer may set a membership from one
// status to another. Pending is entry-only: once decided, a membership can be
// flipped between approved and rejected but never back to pending.
// Re-applying the current decision (approved→approved, rejected→rejected) is
// an idempotent success.
func CanTransition(from, to models.ApprovalStatus) bool {
	switch to {
	case models.StatusApproved, models.StatusRejected:
		return true
	}
	return false
}
