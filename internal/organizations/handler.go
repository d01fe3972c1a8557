package organizations

import (
	"errors"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/profiles"
	"github.com/huddle-app/backend/pkg/response"
)

// Slug must be lowercase alphanumeric and hyphens only, 2-64 chars.
var slugRegex = regexp.MustCompile(`^[a-z0-9][a-z0-9-]{1,63}$`)

// ValidSlug reports whether s is an acceptable organization slug.
func ValidSlug(s string) bool {
	return slugRegex.MatchString(s)
}

// Handler handles organization HTTP endpoints. All routes are gated on the
// manage-organizations capability (super admin).
type Handler struct {
	repo        *Repository
	profileRepo *profiles.Repository
	logger      *zap.Logger
}

// NewHandler creates an organizations handler.
func NewHandler(repo *Repository, profileRepo *profiles.Repository, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{repo: repo, profileRepo: profileRepo, logger: logger}
}

// CreateRequest is the body for POST /admin/organizations.
type CreateRequest struct {
	Name         string `json:"name" binding:"required"`
	Slug         string `json:"slug" binding:"required"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
}

// Create handles POST /admin/organizations.
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name and slug required")
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !ValidSlug(slug) {
		response.BadRequest(c, "slug must be 2-64 chars, lowercase letters, numbers, hyphens only")
		return
	}
	name := strings.TrimSpace(req.Name)
	if len(name) < 1 || len(name) > 255 {
		response.BadRequest(c, "name must be 1-255 characters")
		return
	}
	org := &models.Organization{
		Name:         name,
		Slug:         slug,
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
	}
	if err := h.repo.Create(c.Request.Context(), org); err != nil {
		if errors.Is(err, ErrSlugTaken) {
			response.Conflict(c, "an organization with this slug already exists", nil)
			return
		}
		h.logger.Error("create organization failed", zap.Error(err))
		response.Internal(c, "failed to create organization")
		return
	}
	response.Created(c, org)
}

// List handles GET /admin/organizations. Returns all organizations with
// organizer and room counts.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.ListWithCounts(c.Request.Context())
	if err != nil {
		response.Internal(c, "failed to load organizations")
		return
	}
	response.OK(c, list)
}

// UpdateRequest is the body for PATCH /admin/organizations/:id.
type UpdateRequest struct {
	Name         string `json:"name" binding:"required"`
	ContactName  string `json:"contact_name"`
	ContactEmail string `json:"contact_email"`
	IsActive     *bool  `json:"is_active" binding:"required"`
}

// Update handles PATCH /admin/organizations/:id. Soft-disable goes through the
// is_active flag.
func (h *Handler) Update(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "name and is_active required")
		return
	}
	err = h.repo.Update(c.Request.Context(), orgID, strings.TrimSpace(req.Name),
		strings.TrimSpace(req.ContactName), strings.TrimSpace(req.ContactEmail), *req.IsActive)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.NotFound(c, "organization not found")
			return
		}
		response.Internal(c, "failed to update organization")
		return
	}
	org, err := h.repo.GetByID(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load organization")
		return
	}
	response.OK(c, org)
}

// AddOrganizerRequest is the body for POST /admin/organizations/:id/organizers.
type AddOrganizerRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// AddOrganizer handles POST /admin/organizations/:id/organizers. Links an
// existing user to the organization and elevates their role to
// event_organizer (the privileged role-update path).
func (h *Handler) AddOrganizer(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	var req AddOrganizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "email required")
		return
	}
	if _, err := h.repo.GetByID(c.Request.Context(), orgID); err != nil {
		response.NotFound(c, "organization not found")
		return
	}
	user, err := h.profileRepo.GetByEmail(c.Request.Context(), strings.TrimSpace(req.Email))
	if err != nil {
		response.NotFound(c, "no user with this email has signed in yet")
		return
	}
	if err := h.repo.AddOrganizer(c.Request.Context(), orgID, user.ID); err != nil {
		h.logger.Error("add organizer failed", zap.Error(err), zap.String("org_id", orgID.String()))
		response.Internal(c, "failed to add organizer")
		return
	}
	// Super admins keep their role; plain users are elevated.
	if user.Role == models.RoleUser {
		if err := h.profileRepo.UpdateRole(c.Request.Context(), user.ID, models.RoleEventOrganizer); err != nil {
			response.Internal(c, "failed to elevate user role")
			return
		}
	}
	response.Created(c, gin.H{"organization_id": orgID, "user_id": user.ID})
}

// ListOrganizers handles GET /admin/organizations/:id/organizers.
func (h *Handler) ListOrganizers(c *gin.Context) {
	orgID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "invalid organization id")
		return
	}
	list, err := h.repo.ListOrganizers(c.Request.Context(), orgID)
	if err != nil {
		response.Internal(c, "failed to load organizers")
		return
	}
	response.OK(c, list)
}
