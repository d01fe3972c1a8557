package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/pkg/response"
)

const (
	stateCookie = "oauth_state"
	// RedirectOnboarding tells the client to route to onboarding (profile
	// has no LinkedIn handle yet); RedirectHome means the profile is complete.
	RedirectOnboarding = "onboarding"
	RedirectHome       = "home"
)

// TokenResponse is the auth response with the session token.
type TokenResponse struct {
	Token    string          `json:"token"`
	User     *models.Profile `json:"user"`
	Redirect string          `json:"redirect"`
}

// ProfileStore persists provider identities as profiles. Satisfied by
// *profiles.Repository.
type ProfileStore interface {
	UpsertIdentity(ctx context.Context, providerSubject, email, fullName string) (*models.Profile, error)
}

// Handler handles the OAuth sign-in flow.
type Handler struct {
	provider *OAuthProvider
	profiles ProfileStore
	jwt      *JWTService
	logger   *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(provider *OAuthProvider, profileRepo ProfileStore, jwt *JWTService, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{provider: provider, profiles: profileRepo, jwt: jwt, logger: logger}
}

// LoginURL handles GET /auth/login-url. Returns the provider consent URL with
// a fresh state value, also set as a short-lived cookie for callback checking.
func (h *Handler) LoginURL(c *gin.Context) {
	state, err := generateState()
	if err != nil {
		response.Internal(c, "failed to start sign-in")
		return
	}
	c.SetCookie(stateCookie, state, 600, "/", "", false, true)
	response.OK(c, gin.H{"url": h.provider.AuthCodeURL(state), "state": state})
}

// Callback handles GET /auth/callback?code=&state=. Exchanges the code for the
// provider identity, upserts the profile, issues a session token and tells the
// client whether to route to onboarding or home.
func (h *Handler) Callback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		response.BadRequest(c, "code required")
		return
	}
	if cookieState, err := c.Cookie(stateCookie); err == nil && cookieState != "" {
		if c.Query("state") != cookieState {
			response.BadRequest(c, "state mismatch")
			return
		}
	}

	identity, err := h.provider.Exchange(c.Request.Context(), code)
	if err != nil {
		h.logger.Warn("oauth exchange failed", zap.Error(err))
		response.Unauthorized(c, "sign-in failed")
		return
	}

	profile, err := h.profiles.UpsertIdentity(c.Request.Context(), identity.Subject, identity.Email, identity.Name)
	if err != nil {
		h.logger.Error("upsert profile failed", zap.Error(err))
		response.Internal(c, "sign-in failed")
		return
	}

	token, err := h.jwt.Generate(profile.ID, profile.Email, string(profile.Role))
	if err != nil {
		response.Internal(c, "failed to generate session")
		return
	}

	redirect := RedirectHome
	if !profile.Onboarded() {
		redirect = RedirectOnboarding
	}
	response.OK(c, TokenResponse{Token: token, User: profile, Redirect: redirect})
}

func generateState() (string, error) {
	b := make([]byte, 24)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
