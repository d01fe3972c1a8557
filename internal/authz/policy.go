// Package authz is the single authorization policy for the platform. Every
// entry point consults the capability set returned by PolicyFor instead of
// re-deriving permissions from the raw role string.
package authz

import "github.com/huddle-app/backend/internal/models"

// Capability names one permitted action class.
type Capability string

const (
	// ManageOrganizations covers onboarding organizations, assigning
	// organizers and elevating user roles.
	ManageOrganizations Capability = "manage_organizations"
	// CreateRooms covers room creation with a classification set.
	CreateRooms Capability = "create_rooms"
	// ApproveMembers covers membership status transitions.
	ApproveMembers Capability = "approve_members"
	// ViewAnalytics covers room and organization dashboards.
	ViewAnalytics Capability = "view_analytics"
	// ManageClassifications covers defining room classification sets.
	ManageClassifications Capability = "manage_classifications"
)

// Capabilities is the set of actions a role may perform.
type Capabilities map[Capability]bool

// Has reports whether the capability is granted.
func (c Capabilities) Has(cap Capability) bool {
	return c[cap]
}

// PolicyFor returns the capability set for a role. Unknown roles get no
// capabilities.
func PolicyFor(role models.Role) Capabilities {
	switch role {
	case models.RoleSuperAdmin:
		return Capabilities{
			ManageOrganizations:   true,
			CreateRooms:           true,
			ApproveMembers:        true,
			ViewAnalytics:         true,
			ManageClassifications: true,
		}
	case models.RoleEventOrganizer:
		return Capabilities{
			CreateRooms:           true,
			ApproveMembers:        true,
			ViewAnalytics:         true,
			ManageClassifications: true,
		}
	default:
		return Capabilities{}
	}
}
