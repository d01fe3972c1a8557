package authz

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/huddle-app/backend/internal/models"
)

func TestPolicyForSuperAdmin(t *testing.T) {
	caps := PolicyFor(models.RoleSuperAdmin)
	assert.True(t, caps.Has(ManageOrganizations))
	assert.True(t, caps.Has(CreateRooms))
	assert.True(t, caps.Has(ApproveMembers))
	assert.True(t, caps.Has(ViewAnalytics))
	assert.True(t, caps.Has(ManageClassifications))
}

func TestPolicyForEventOrganizer(t *testing.T) {
	caps := PolicyFor(models.RoleEventOrganizer)
	assert.False(t, caps.Has(ManageOrganizations))
	assert.True(t, caps.Has(CreateRooms))
	assert.True(t, caps.Has(ApproveMembers))
	assert.True(t, caps.Has(ViewAnalytics))
	assert.True(t, caps.Has(ManageClassifications))
}

func TestPolicyForRegularUser(t *testing.T) {
	caps := PolicyFor(models.RoleUser)
	assert.False(t, caps.Has(ManageOrganizations))
	assert.False(t, caps.Has(CreateRooms))
	assert.False(t, caps.Has(ApproveMembers))
	assert.False(t, caps.Has(ViewAnalytics))
	assert.False(t, caps.Has(ManageClassifications))
}

func TestPolicyForUnknownRole(t *testing.T) {
	caps := PolicyFor(models.Role("ghost"))
	assert.Empty(t, caps)
}
