package engagement

import (
	"errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/rooms"
	"github.com/huddle-app/backend/pkg/queue"
	"github.com/huddle-app/backend/pkg/response"
)

type Handler struct {
	repo     *Repository
	roomRepo *rooms.Repository
	queue    *queue.Queue
	logger   *zap.Logger
}

func NewHandler(repo *Repository, roomRepo *rooms.Repository, q *queue.Queue, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, roomRepo: roomRepo, queue: q, logger: logger}
}

type recordRequest struct {
	TargetUserID uuid.UUID `json:"target_user_id" binding:"required"`
}

// Record registers a LinkedIn click on another member's profile. The write
// goes through the job queue so the click never blocks the browsing flow;
// the response is 202 before the event is durable.
func (h *Handler) Record(c *gin.Context) {
	roomID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid room id")
		return
	}
	var req recordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request body: "+err.Error())
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	if req.TargetUserID == userID {
		response.BadRequest(c, "cannot record a click on your own profile")
		return
	}

	if _, err := h.roomRepo.GetByID(c.Request.Context(), roomID); err != nil {
		if errors.Is(err, rooms.ErrNotFound) {
			response.NotFound(c, "room not found")
			return
		}
		h.logger.Error("room lookup failed", zap.Error(err))
		response.Internal(c, "failed to record engagement")
		return
	}

	payload := queue.EngagementPayload{
		RoomID:       roomID,
		SourceUserID: userID,
		TargetUserID: req.TargetUserID,
		ClickedAt:    time.Now(),
	}
	if err := h.queue.EnqueueEngagement(c.Request.Context(), payload); err != nil {
		h.logger.Error("engagement enqueue failed", zap.Error(err))
		response.Internal(c, "failed to record engagement")
		return
	}
	response.Accepted(c, gin.H{"queued": true})
}

// Counts returns per-member click totals for a room. Room management access
// is enforced upstream.
func (h *Handler) Counts(c *gin.Context) {
	room := c.MustGet(rooms.ContextRoom).(*models.Room)
	counts, err := h.repo.CountsByRoom(c.Request.Context(), room.ID)
	if err != nil {
		h.logger.Error("engagement counts failed", zap.Error(err))
		response.Internal(c, "failed to load engagement counts")
		return
	}
	out := make(map[string]int, len(counts))
	for id, n := range counts {
		out[id.String()] = n
	}
	response.OK(c, out)
}

// MyCount returns how many clicks the caller's profile has received across
// all rooms.
func (h *Handler) MyCount(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	n, err := h.repo.CountForUser(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("engagement count failed", zap.Error(err))
		response.Internal(c, "failed to load engagement count")
		return
	}
	response.OK(c, gin.H{"count": n})
}
