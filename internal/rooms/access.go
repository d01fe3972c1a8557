package rooms

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/organizations"
	"github.com/huddle-app/backend/pkg/response"
)

// ContextRoom is the gin context key holding the resolved *models.Room when
// org access is enforced.
const ContextRoom = "room"

// CanManage reports whether the user may manage the room: super admins always,
// organizers of the owning organization, and the creator for rooms without an
// organization.
func CanManage(ctx context.Context, orgRepo *organizations.Repository, room *models.Room, userID uuid.UUID, role models.Role) (bool, error) {
	if role == models.RoleSuperAdmin {
		return true, nil
	}
	if room.OrganizationID != nil {
		return orgRepo.IsOrganizer(ctx, *room.OrganizationID, userID)
	}
	return room.CreatedBy == userID, nil
}

// RequireRoomAccess validates that the user may manage the room in the :id
// param. Call after JWT. Stores the room in context under ContextRoom.
func RequireRoomAccess(roomRepo *Repository, orgRepo *organizations.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		roomID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			response.BadRequest(c, "invalid room id")
			c.Abort()
			return
		}
		room, err := roomRepo.GetByID(c.Request.Context(), roomID)
		if err != nil {
			response.NotFound(c, "room not found")
			c.Abort()
			return
		}
		userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
		role, _ := c.MustGet(middleware.ContextUserRole).(string)
		ok, err := CanManage(c.Request.Context(), orgRepo, room, userID, models.Role(role))
		if err != nil || !ok {
			response.Forbidden(c, "not authorized for this room")
			c.Abort()
			return
		}
		c.Set(ContextRoom, room)
		c.Next()
	}
}
