package rooms

import (
	"errors"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/config"
	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/organizations"
	"github.com/huddle-app/backend/pkg/response"
)

const (
	// MinDurationHours and MaxDurationHours bound the requested room duration.
	MinDurationHours = 1
	MaxDurationHours = 72

	// createRetries caps retries when a generated code collides on insert.
	createRetries = 5
)

// DefaultClassificationName is used when a room is created without an explicit
// classification list.
const DefaultClassificationName = "Attendee"

type Handler struct {
	repo    *Repository
	orgRepo *organizations.Repository
	cfg     *config.Config
	logger  *zap.Logger
}

func NewHandler(repo *Repository, orgRepo *organizations.Repository, cfg *config.Config, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, orgRepo: orgRepo, cfg: cfg, logger: logger}
}

type createRequest struct {
	Name            string                `json:"name" binding:"required"`
	OrganizationID  *uuid.UUID            `json:"organization_id"`
	StartsAt        time.Time             `json:"starts_at" binding:"required"`
	DurationHours   int                   `json:"duration_hours" binding:"required"`
	Classifications []ClassificationInput `json:"classifications"`
}

type roomResponse struct {
	*models.Room
	Status          models.RoomStatus       `json:"status"`
	Classifications []models.Classification `json:"classifications,omitempty"`
}

// Create makes a new room with a fresh unique code. The creator is recorded
// as an approved member of the first classification.
func (h *Handler) Create(c *gin.Context) {
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		response.BadRequest(c, "name is required")
		return
	}
	if req.DurationHours < MinDurationHours || req.DurationHours > MaxDurationHours {
		response.BadRequest(c, "duration_hours must be between 1 and 72")
		return
	}
	classifications := req.Classifications
	if len(classifications) == 0 {
		classifications = []ClassificationInput{{Name: DefaultClassificationName, RequiresApproval: false}}
	}
	for i := range classifications {
		classifications[i].Name = strings.TrimSpace(classifications[i].Name)
		if classifications[i].Name == "" {
			response.BadRequest(c, "classification name cannot be empty")
			return
		}
	}

	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	role, _ := c.MustGet(middleware.ContextUserRole).(string)

	if req.OrganizationID != nil && models.Role(role) != models.RoleSuperAdmin {
		ok, err := h.orgRepo.IsOrganizer(c.Request.Context(), *req.OrganizationID, userID)
		if err != nil {
			h.logger.Error("organizer check failed", zap.Error(err))
			response.Internal(c, "failed to create room")
			return
		}
		if !ok {
			response.Forbidden(c, "not an organizer of this organization")
			return
		}
	}

	room := &models.Room{
		Name:           req.Name,
		CreatedBy:      userID,
		OrganizationID: req.OrganizationID,
		StartsAt:       req.StartsAt,
		DurationHours:  req.DurationHours,
		ExpiresAt:      models.RoomExpiry(req.StartsAt, req.DurationHours),
		IsActive:       true,
	}

	var created []models.Classification
	for attempt := 0; attempt < createRetries; attempt++ {
		code, err := GenerateUniqueCode(c.Request.Context(), h.repo.CodeExists)
		if err != nil {
			h.logger.Error("code generation failed", zap.Error(err))
			response.Internal(c, "failed to create room")
			return
		}
		room.Code = code
		created, err = h.repo.Create(c.Request.Context(), room, classifications)
		if err == nil {
			break
		}
		if errors.Is(err, ErrCodeConflict) {
			// Lost the race with a concurrent insert of the same code.
			continue
		}
		h.logger.Error("room insert failed", zap.Error(err))
		response.Internal(c, "failed to create room")
		return
	}
	if room.ID == uuid.Nil {
		response.Internal(c, "failed to allocate a room code")
		return
	}

	h.logger.Info("room created",
		zap.String("room_id", room.ID.String()),
		zap.String("code", room.Code),
		zap.String("created_by", userID.String()))
	response.Created(c, roomResponse{Room: room, Status: room.Status(time.Now()), Classifications: created})
}

// ResolveByCode looks up a room by its join code. Public: attendees hit this
// before they have a membership. The code is matched case-insensitively.
func (h *Handler) ResolveByCode(c *gin.Context) {
	code := strings.ToUpper(strings.TrimSpace(c.Param("code")))
	if !ValidCode(code) {
		response.BadRequest(c, "invalid room code")
		return
	}
	room, err := h.repo.GetByCode(c.Request.Context(), code)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to look up room")
		return
	}
	classifications, err := h.repo.ListClassifications(c.Request.Context(), room.ID)
	if err != nil {
		h.logger.Error("classification list failed", zap.Error(err))
		response.Internal(c, "failed to look up room")
		return
	}
	count, err := h.repo.ApprovedMemberCount(c.Request.Context(), room.ID)
	if err != nil {
		h.logger.Error("member count failed", zap.Error(err))
		response.Internal(c, "failed to look up room")
		return
	}
	response.OK(c, gin.H{
		"room":                  roomResponse{Room: room, Status: room.Status(time.Now()), Classifications: classifications},
		"approved_member_count": count,
	})
}

// Get returns a single room by id with its classifications.
func (h *Handler) Get(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	room, err := h.repo.GetByID(c.Request.Context(), roomID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to look up room")
		return
	}
	classifications, err := h.repo.ListClassifications(c.Request.Context(), room.ID)
	if err != nil {
		h.logger.Error("classification list failed", zap.Error(err))
		response.Internal(c, "failed to look up room")
		return
	}
	response.OK(c, roomResponse{Room: room, Status: room.Status(time.Now()), Classifications: classifications})
}

// MyRooms lists rooms the caller belongs to, with their own approval status.
func (h *Handler) MyRooms(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	joined, err := h.repo.ListJoinedRooms(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("joined rooms lookup failed", zap.Error(err))
		response.Internal(c, "failed to list rooms")
		return
	}
	now := time.Now()
	out := make([]gin.H, 0, len(joined))
	for i := range joined {
		out = append(out, gin.H{
			"room":         joined[i].Room,
			"status":       joined[i].Room.Status(now),
			"member_count": joined[i].MemberCount,
			"my_status":    joined[i].MyStatus,
		})
	}
	response.OK(c, out)
}

// ManagedRooms lists rooms the caller created plus all rooms owned by
// organizations they organize.
func (h *Handler) ManagedRooms(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	orgIDs, err := h.orgRepo.ListOrganizationIDsForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("organization list failed", zap.Error(err))
		response.Internal(c, "failed to list rooms")
		return
	}
	managed, err := h.repo.ListManagedRooms(c.Request.Context(), userID, orgIDs)
	if err != nil {
		h.logger.Error("managed rooms lookup failed", zap.Error(err))
		response.Internal(c, "failed to list rooms")
		return
	}
	now := time.Now()
	out := make([]roomResponse, 0, len(managed))
	for i := range managed {
		out = append(out, roomResponse{Room: &managed[i], Status: managed[i].Status(now)})
	}
	response.OK(c, out)
}

type updateRequest struct {
	Name     *string `json:"name"`
	IsActive *bool   `json:"is_active"`
}

// Update renames or deactivates a room. Requires room management access
// (enforced by RequireRoomAccess upstream).
func (h *Handler) Update(c *gin.Context) {
	room := c.MustGet(ContextRoom).(*models.Room)
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	name := room.Name
	if req.Name != nil {
		name = strings.TrimSpace(*req.Name)
		if name == "" {
			response.BadRequest(c, "name cannot be empty")
			return
		}
	}
	isActive := room.IsActive
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	if err := h.repo.Update(c.Request.Context(), room.ID, name, isActive); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room update failed", zap.Error(err))
		response.Internal(c, "failed to update room")
		return
	}
	room.Name = name
	room.IsActive = isActive
	response.OK(c, roomResponse{Room: room, Status: room.Status(time.Now())})
}

// Share returns the shareable join URL and code for a room.
func (h *Handler) Share(c *gin.Context) {
	room := c.MustGet(ContextRoom).(*models.Room)
	response.OK(c, gin.H{
		"code":     room.Code,
		"join_url": strings.TrimRight(h.cfg.Server.PublicOrigin, "/") + "/join/" + room.Code,
	})
}
