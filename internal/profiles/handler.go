package profiles

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/pkg/response"
	"github.com/huddle-app/backend/pkg/storage"
)

// LinkedIn public profile handles: letters, digits, hyphens, 3-100 chars.
var linkedinRegex = regexp.MustCompile(`^[a-zA-Z0-9-]{3,100}$`)

// ViewCounter reports how many times a user's profile link was activated.
// Satisfied by *engagement.Repository.
type ViewCounter interface {
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

// Handler handles profile HTTP endpoints.
type Handler struct {
	repo   *Repository
	views  ViewCounter
	s3     *storage.S3
	logger *zap.Logger
}

// NewHandler creates a profiles handler. s3 may be nil when avatar uploads are
// disabled.
func NewHandler(repo *Repository, views ViewCounter, s3 *storage.S3, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, views: views, s3: s3, logger: logger}
}

// NormalizeLinkedIn extracts the bare handle from user input, accepting either
// a handle or a pasted profile URL.
func NormalizeLinkedIn(input string) string {
	s := strings.TrimSpace(input)
	s = strings.TrimPrefix(s, "https://")
	s = strings.TrimPrefix(s, "http://")
	s = strings.TrimPrefix(s, "www.")
	s = strings.TrimPrefix(s, "linkedin.com/in/")
	return strings.Trim(s, "/")
}

// ValidLinkedIn reports whether the normalized handle is well-formed.
func ValidLinkedIn(handle string) bool {
	return linkedinRegex.MatchString(handle)
}

// Me handles GET /me. Returns the caller's profile and onboarding state.
func (h *Handler) Me(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	profile, err := h.repo.GetByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		response.Internal(c, "failed to load profile")
		return
	}
	views := 0
	if h.views != nil {
		if n, err := h.views.CountForUser(c.Request.Context(), userID); err == nil {
			views = n
		}
	}
	response.OK(c, gin.H{"profile": profile, "onboarded": profile.Onboarded(), "profile_views": views})
}

// OnboardingRequest is the body for POST /me/onboarding.
type OnboardingRequest struct {
	FullName         string `json:"full_name" binding:"required"`
	LinkedInUsername string `json:"linkedin_username" binding:"required"`
}

// CompleteOnboarding handles POST /me/onboarding. Sets the required name and
// LinkedIn handle; the profile counts as onboarded afterwards.
func (h *Handler) CompleteOnboarding(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req OnboardingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "full_name and linkedin_username required")
		return
	}
	handle := NormalizeLinkedIn(req.LinkedInUsername)
	if !ValidLinkedIn(handle) {
		response.BadRequest(c, "invalid LinkedIn username")
		return
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		response.BadRequest(c, "full_name required")
		return
	}
	profile, err := h.repo.CompleteOnboarding(c.Request.Context(), userID, name, handle)
	if err != nil {
		h.logger.Error("complete onboarding failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to save profile")
		return
	}
	response.OK(c, profile)
}

// UpdateRequest is the body for PUT /me.
type UpdateRequest struct {
	FullName          string `json:"full_name" binding:"required"`
	LinkedInUsername  string `json:"linkedin_username" binding:"required"`
	OneLiner          string `json:"one_liner"`
	TwitterUsername   string `json:"twitter_username"`
	InstagramUsername string `json:"instagram_username"`
	GitHubUsername    string `json:"github_username"`
	PortfolioURL      string `json:"portfolio_url"`
}

// Update handles PUT /me. Owner-only full profile update.
func (h *Handler) Update(c *gin.Context) {
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "invalid request: "+err.Error())
		return
	}
	handle := NormalizeLinkedIn(req.LinkedInUsername)
	if !ValidLinkedIn(handle) {
		response.BadRequest(c, "invalid LinkedIn username")
		return
	}
	name := strings.TrimSpace(req.FullName)
	if name == "" {
		response.BadRequest(c, "full_name required")
		return
	}
	profile, err := h.repo.Update(c.Request.Context(), userID, UpdateParams{
		FullName:          name,
		LinkedInUsername:  handle,
		OneLiner:          strings.TrimSpace(req.OneLiner),
		TwitterUsername:   strings.TrimSpace(req.TwitterUsername),
		InstagramUsername: strings.TrimSpace(req.InstagramUsername),
		GitHubUsername:    strings.TrimSpace(req.GitHubUsername),
		PortfolioURL:      strings.TrimSpace(req.PortfolioURL),
	})
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "profile not found")
			return
		}
		h.logger.Error("update profile failed", zap.Error(err), zap.String("user_id", userID.String()))
		response.Internal(c, "failed to save profile")
		return
	}
	response.OK(c, profile)
}

// AvatarUploadRequest is the body for POST /me/avatar/upload-url.
type AvatarUploadRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

// AvatarUploadURL handles POST /me/avatar/upload-url. Returns a pre-signed PUT
// URL for direct upload and records the resulting public object URL.
func (h *Handler) AvatarUploadURL(c *gin.Context) {
	if h.s3 == nil {
		response.Internal(c, "avatar uploads not configured")
		return
	}
	userID := c.MustGet(middleware.ContextUserID).(uuid.UUID)
	var req AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "content_type required")
		return
	}
	if !storage.ValidateAvatarType(req.ContentType) {
		response.BadRequest(c, "unsupported avatar content type")
		return
	}
	key := storage.AvatarKey(userID.String(), req.ContentType)
	uploadURL, err := h.s3.GeneratePresignedUploadURL(c.Request.Context(), key, req.ContentType)
	if err != nil {
		h.logger.Error("presign avatar upload failed", zap.Error(err))
		response.Internal(c, "failed to create upload URL")
		return
	}
	avatarURL := h.s3.PublicObjectURL(key)
	if err := h.repo.UpdateAvatarURL(c.Request.Context(), userID, avatarURL); err != nil {
		response.Internal(c, "failed to save avatar")
		return
	}
	response.OK(c, gin.H{
		"upload_url": uploadURL,
		"avatar_url": avatarURL,
		"expires_in": int(h.s3.PresignExpire().Seconds()),
	})
}

// RoleRequest is the body for PATCH /admin/users/:id/role.
type RoleRequest struct {
	Role string `json:"role" binding:"required"`
}

// UpdateRole handles PATCH /admin/users/:id/role. Privileged role elevation;
// the route is gated on the manage-organizations capability.
func (h *Handler) UpdateRole(c *gin.Context) {
	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid user id")
		return
	}
	var req RoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "role required")
		return
	}
	if !models.ValidRole(req.Role) {
		response.BadRequest(c, "invalid role")
		return
	}
	if err := h.repo.UpdateRole(c.Request.Context(), targetID, models.Role(req.Role)); err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "user not found")
			return
		}
		response.Internal(c, "failed to update role")
		return
	}
	response.OK(c, gin.H{"id": targetID, "role": req.Role})
}
