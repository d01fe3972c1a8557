package memberships

import (
	"context"
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/organizations"
	"github.com/huddle-app/backend/internal/rooms"
	"github.com/huddle-app/backend/pkg/response"
)

// Broadcaster pushes events to the room's live websocket audience and relays
// them across instances. Satisfied by *realtime.Hub.
type Broadcaster interface {
	BroadcastToRoomAndPublish(roomID uuid.UUID, event string, payload interface{})
}

// MembershipStore is the persistence surface the handler needs. Satisfied by
// *Repository.
type MembershipStore interface {
	Create(ctx context.Context, m *models.Membership) (*models.Membership, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error)
	GetByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.Membership, error)
	ListMembers(ctx context.Context, roomID uuid.UUID, status models.ApprovalStatus) ([]RosterEntry, error)
}

// RoomStore resolves rooms and their classifications. Satisfied by
// *rooms.Repository.
type RoomStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error)
	GetClassification(ctx context.Context, id uuid.UUID) (*models.Classification, error)
}

// EngagementCounter supplies per-member click totals for the engaged sort.
// Satisfied by *engagement.Repository.
type EngagementCounter interface {
	CountsByRoom(ctx context.Context, roomID uuid.UUID) (map[uuid.UUID]int, error)
}

type Handler struct {
	repo           MembershipStore
	roomRepo       RoomStore
	orgRepo        *organizations.Repository
	engagementRepo EngagementCounter
	hub            Broadcaster
	logger         *zap.Logger
}

func NewHandler(repo MembershipStore, roomRepo RoomStore, orgRepo *organizations.Repository, engagementRepo EngagementCounter, hub Broadcaster, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, roomRepo: roomRepo, orgRepo: orgRepo, engagementRepo: engagementRepo, hub: hub, logger: logger}
}

type joinRequest struct {
	ClassificationID uuid.UUID `json:"classification_id" binding:"required"`
}

// Join adds the caller to a room under a classification. The membership's
// initial status comes from the classification's approval flag. Joining an
// ended or deactivated room fails; joining twice reports the existing status.
func (h *Handler) Join(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	var req joinRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)

	room, err := h.roomRepo.GetByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, rooms.ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to join room")
		return
	}
	if room.Ended(time.Now()) || !room.IsActive {
		response.Gone(c, "room has ended")
		return
	}

	classification, err := h.roomRepo.GetClassification(c.Request.Context(), req.ClassificationID)
	if err != nil || classification.RoomID != room.ID {
		response.NotFound(c, "classification not found for this room")
		return
	}

	m := &models.Membership{
		RoomID:           room.ID,
		UserID:           userID,
		ClassificationID: classification.ID,
		Status:           InitialStatus(classification.RequiresApproval),
	}
	saved, err := h.repo.Create(c.Request.Context(), m)
	if err != nil {
		if errors.Is(err, ErrAlreadyMember) {
			response.Conflict(c, "already a member of this room", gin.H{
				"membership": saved,
				"status":     saved.Status,
			})
			return
		}
		h.logger.Error("membership insert failed", zap.Error(err))
		response.Internal(c, "failed to join room")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoomAndPublish(room.ID, "membership_changed", gin.H{
			"room_id":    room.ID,
			"membership": saved,
		})
	}
	h.logger.Info("member joined",
		zap.String("room_id", room.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("status", string(saved.Status)))
	response.Created(c, saved)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// SetStatus moves a membership between approval states. Only room managers
// may call it; pending can never be re-entered.
func (h *Handler) SetStatus(c *gin.Context) {
	membershipID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid membership id")
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	if !models.ValidApprovalStatus(req.Status) {
		response.BadRequest(c, "status must be pending, approved or rejected")
		return
	}
	target := models.ApprovalStatus(req.Status)

	m, err := h.repo.GetByID(c.Request.Context(), membershipID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "membership not found")
			return
		}
		h.logger.Error("membership lookup failed", zap.Error(err))
		response.Internal(c, "failed to update membership")
		return
	}

	room, err := h.roomRepo.GetByID(c.Request.Context(), m.RoomID)
	if err != nil {
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to update membership")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)
	ok, err := rooms.CanManage(c.Request.Context(), h.orgRepo, room, userID, models.Role(role))
	if err != nil || !ok {
		response.Forbidden(c, "not authorized for this room")
		return
	}

	if !CanTransition(m.Status, target) {
		response.UnprocessableEntity(c, "cannot move membership from "+string(m.Status)+" to "+string(target))
		return
	}

	updated, err := h.repo.UpdateStatus(c.Request.Context(), m.ID, target)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "membership not found")
			return
		}
		h.logger.Error("membership update failed", zap.Error(err))
		response.Internal(c, "failed to update membership")
		return
	}

	if h.hub != nil {
		h.hub.BroadcastToRoomAndPublish(room.ID, "membership_changed", gin.H{
			"room_id":    room.ID,
			"membership": updated,
		})
	}
	h.logger.Info("membership status changed",
		zap.String("membership_id", updated.ID.String()),
		zap.String("from", string(m.Status)),
		zap.String("to", string(updated.Status)))
	response.OK(c, updated)
}

// ListRoster returns the approved members of a room, filtered and sorted.
// Only approved members and room managers can browse the roster.
func (h *Handler) ListRoster(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)

	room, err := h.roomRepo.GetByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, rooms.ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to list members")
		return
	}
	if allowed, err := h.canBrowse(c, room, userID, models.Role(role)); err != nil {
		h.logger.Error("roster access check failed", zap.Error(err))
		response.Internal(c, "failed to list members")
		return
	} else if !allowed {
		response.Forbidden(c, "only approved members can browse the roster")
		return
	}

	entries, err := h.repo.ListMembers(c.Request.Context(), room.ID, models.StatusApproved)
	if err != nil {
		h.logger.Error("roster query failed", zap.Error(err))
		response.Internal(c, "failed to list members")
		return
	}

	q := RosterQuery{Search: c.Query("q"), Sort: c.DefaultQuery("sort", SortRecent)}
	if raw := c.Query("classification_id"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			response.BadRequest(c, "invalid classification_id")
			return
		}
		q.ClassificationID = &id
	}
	if q.Sort == SortEngaged {
		counts, err := h.engagementRepo.CountsByRoom(c.Request.Context(), room.ID)
		if err != nil {
			h.logger.Error("engagement counts failed", zap.Error(err))
			response.Internal(c, "failed to list members")
			return
		}
		for i := range entries {
			entries[i].EngagementCount = counts[entries[i].UserID]
		}
	}
	response.OK(c, FilterSort(entries, q))
}

func (h *Handler) canBrowse(c *gin.Context, room *models.Room, userID uuid.UUID, role models.Role) (bool, error) {
	m, err := h.repo.GetByRoomAndUser(c.Request.Context(), room.ID, userID)
	if err == nil && m.Status == models.StatusApproved {
		return true, nil
	}
	if err != nil && !errors.Is(err, ErrNotFound) {
		return false, err
	}
	return rooms.CanManage(c.Request.Context(), h.orgRepo, room, userID, role)
}

// ListAll returns every membership in a room regardless of status, for the
// organizer review queue. Room access is enforced upstream.
func (h *Handler) ListAll(c *gin.Context) {
	room := c.MustGet(rooms.ContextRoom).(*models.Room)
	var status models.ApprovalStatus
	if raw := c.Query("status"); raw != "" {
		if !models.ValidApprovalStatus(raw) {
			response.BadRequest(c, "status must be pending, approved or rejected")
			return
		}
		status = models.ApprovalStatus(raw)
	}
	entries, err := h.repo.ListMembers(c.Request.Context(), room.ID, status)
	if err != nil {
		h.logger.Error("member list failed", zap.Error(err))
		response.Internal(c, "failed to list members")
		return
	}
	response.OK(c, entries)
}

// MyMembership returns the caller's own membership in a room, so pending and
// rejected members can see where they stand.
func (h *Handler) MyMembership(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	m, err := h.repo.GetByRoomAndUser(c.Request.Context(), roomID, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "not a member of this room")
			return
		}
		h.logger.Error("membership lookup failed", zap.Error(err))
		response.Internal(c, "failed to look up membership")
		return
	}
	response.OK(c, m)
}
