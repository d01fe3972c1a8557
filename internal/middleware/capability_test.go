package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/huddle-app/backend/internal/authz"
)

func performWithRole(t *testing.T, role string, cap authz.Capability) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	router := gin.New()
	router.GET("/guarded",
		func(c *gin.Context) {
			if role != "" {
				c.Set(ContextUserRole, role)
			}
		},
		RequireCapability(cap),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)
	req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
	router.ServeHTTP(w, req)
	return w
}

func TestRequireCapabilityAllowsGrantedRole(t *testing.T) {
	w := performWithRole(t, "event_organizer", authz.ApproveMembers)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireCapabilityForbidsRegularUser(t *testing.T) {
	w := performWithRole(t, "user", authz.CreateRooms)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilityForbidsOrganizerManagingOrgs(t *testing.T) {
	w := performWithRole(t, "event_organizer", authz.ManageOrganizations)
	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestRequireCapabilityRejectsMissingContext(t *testing.T) {
	w := performWithRole(t, "", authz.CreateRooms)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
