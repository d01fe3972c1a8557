package memberships

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddle-app/backend/internal/models"
)

func TestInitialStatus(t *testing.T) {
	assert.Equal(t, models.StatusPending, InitialStatus(true))
	assert.Equal(t, models.StatusApproved, InitialStatus(false))
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to models.ApprovalStatus
		want     bool
	}{
		{models.StatusPending, models.StatusApproved, true},
		{models.StatusPending, models.StatusRejected, true},
		{models.StatusRejected, models.StatusApproved, true},
		{models.StatusApproved, models.StatusRejected, true},
		{models.StatusApproved, models.StatusPending, false},
		{models.StatusRejected, models.StatusPending, false},
		{models.StatusPending, models.StatusPending, false},
		// repeating the current decision is an idempotent success
		{models.StatusApproved, models.StatusApproved, true},
		{models.StatusRejected, models.StatusRejected, true},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CanTransition(tc.from, tc.to), "%s -> %s", tc.from, tc.to)
	}
}
