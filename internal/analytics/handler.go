package analytics

import (
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/engagement"
	"github.com/huddle-app/backend/internal/memberships"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/realtime"
	"github.com/huddle-app/backend/internal/rooms"
	"github.com/huddle-app/backend/pkg/response"
)

// Handler handles GET /rooms/:id/analytics and GET /admin/analytics.
type Handler struct {
	pool           *pgxpool.Pool
	membershipRepo *memberships.Repository
	engagementRepo *engagement.Repository
	hub            *realtime.Hub
	logger         *zap.Logger
}

func NewHandler(pool *pgxpool.Pool, membershipRepo *memberships.Repository, engagementRepo *engagement.Repository, hub *realtime.Hub, logger *zap.Logger) *Handler {
	return &Handler{pool: pool, membershipRepo: membershipRepo, engagementRepo: engagementRepo, hub: hub, logger: logger}
}

// RoomSummaryResponse is the JSON shape for per-room analytics.
type RoomSummaryResponse struct {
	TotalMembers     int `json:"total_members"`
	ApprovedMembers  int `json:"approved_members"`
	PendingMembers   int `json:"pending_members"`
	RejectedMembers  int `json:"rejected_members"`
	EngagementEvents int `json:"engagement_events"`
	ConnectedNow     int `json:"connected_now"`
}

// GetByRoom handles GET /rooms/:id/analytics. Room management access is
// enforced by route middleware.
func (h *Handler) GetByRoom(c *gin.Context) {
	room := c.MustGet(rooms.ContextRoom).(*models.Room)
	ctx := c.Request.Context()

	counts, err := h.membershipRepo.CountByStatus(ctx, room.ID)
	if err != nil {
		h.logger.Error("member counts failed", zap.Error(err))
		response.Internal(c, "failed to load member counts")
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}

	events, err := h.engagementRepo.TotalForRoom(ctx, room.ID)
	if err != nil {
		h.logger.Error("engagement total failed", zap.Error(err))
		response.Internal(c, "failed to load engagement totals")
		return
	}

	connected := 0
	if h.hub != nil {
		connected = h.hub.AudienceCount(room.ID)
	}

	response.OK(c, RoomSummaryResponse{
		TotalMembers:     total,
		ApprovedMembers:  counts[models.StatusApproved],
		PendingMembers:   counts[models.StatusPending],
		RejectedMembers:  counts[models.StatusRejected],
		EngagementEvents: events,
		ConnectedNow:     connected,
	})
}

// PlatformSummaryResponse is the JSON shape for platform-wide analytics.
type PlatformSummaryResponse struct {
	TotalProfiles      int `json:"total_profiles"`
	OnboardedProfiles  int `json:"onboarded_profiles"`
	TotalOrganizations int `json:"total_organizations"`
	TotalRooms         int `json:"total_rooms"`
	LiveRooms          int `json:"live_rooms"`
	TotalMemberships   int `json:"total_memberships"`
	EngagementEvents   int `json:"engagement_events"`
}

// GetPlatform handles GET /admin/analytics. Requires the analytics
// capability, enforced by route middleware.
func (h *Handler) GetPlatform(c *gin.Context) {
	ctx := c.Request.Context()
	const q = `SELECT
		(SELECT COUNT(*) FROM profiles),
		(SELECT COUNT(*) FROM profiles WHERE linkedin_username IS NOT NULL AND linkedin_username <> ''),
		(SELECT COUNT(*) FROM organizations),
		(SELECT COUNT(*) FROM rooms),
		(SELECT COUNT(*) FROM rooms WHERE is_active AND starts_at <= NOW() AND expires_at >= NOW()),
		(SELECT COUNT(*) FROM room_members),
		(SELECT COUNT(*) FROM engagement_events)`

	var out PlatformSummaryResponse
	err := h.pool.QueryRow(ctx, q).Scan(
		&out.TotalProfiles,
		&out.OnboardedProfiles,
		&out.TotalOrganizations,
		&out.TotalRooms,
		&out.LiveRooms,
		&out.TotalMemberships,
		&out.EngagementEvents,
	)
	if err != nil {
		h.logger.Error("platform analytics query failed", zap.Error(err))
		response.Internal(c, "failed to load analytics")
		return
	}
	response.OK(c, out)
}
