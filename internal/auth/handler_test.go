package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/config"
	"github.com/huddle-app/backend/internal/models"
)

type stubProfileStore struct {
	profile *models.Profile
	subject string
}

func (s *stubProfileStore) UpsertIdentity(ctx context.Context, providerSubject, email, fullName string) (*models.Profile, error) {
	s.subject = providerSubject
	return s.profile, nil
}

func newProviderServer(t *testing.T) *httptest.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"access_token":"test-token","token_type":"bearer"}`))
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"sub":"prov-123","name":"Ana Gomez","email":"ana@example.com"}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func runCallback(t *testing.T, store *stubProfileStore) (int, TokenResponse) {
	ts := newProviderServer(t)
	provider := NewOAuthProvider(config.OAuthConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		AuthURL:      ts.URL + "/auth",
		TokenURL:     ts.URL + "/token",
		UserInfoURL:  ts.URL + "/userinfo",
	})
	h := NewHandler(provider, store, NewJWTService("test-secret", 1), zap.NewNop())

	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/auth/callback", h.Callback)
	req := httptest.NewRequest(http.MethodGet, "/auth/callback?code=abc", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var body struct {
		Success bool          `json:"success"`
		Data    TokenResponse `json:"data"`
	}
	if w.Code == http.StatusOK {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	}
	return w.Code, body.Data
}

func TestCallbackNewUserRedirectsToOnboarding(t *testing.T) {
	store := &stubProfileStore{profile: &models.Profile{
		ID:       uuid.New(),
		Email:    "ana@example.com",
		FullName: "Ana Gomez",
		Role:     models.RoleUser,
	}}
	code, resp := runCallback(t, store)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, "prov-123", store.subject)
	assert.Equal(t, RedirectOnboarding, resp.Redirect)
	assert.NotEmpty(t, resp.Token)

	claims, err := NewJWTService("test-secret", 1).Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, store.profile.ID, claims.UserID)
}

func TestCallbackOnboardedUserRedirectsHome(t *testing.T) {
	store := &stubProfileStore{profile: &models.Profile{
		ID:               uuid.New(),
		Email:            "ana@example.com",
		FullName:         "Ana Gomez",
		LinkedInUsername: "ana-gomez",
		Role:             models.RoleUser,
	}}
	code, resp := runCallback(t, store)
	require.Equal(t, http.StatusOK, code)
	assert.Equal(t, RedirectHome, resp.Redirect)
}

func TestCallbackMissingCode(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewHandler(NewOAuthProvider(config.OAuthConfig{}), &stubProfileStore{}, NewJWTService("s", 1), zap.NewNop())
	r := gin.New()
	r.GET("/auth/callback", h.Callback)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/auth/callback", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
