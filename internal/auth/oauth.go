package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"

	"github.com/huddle-app/backend/config"
)

// Identity is the subset of the provider's userinfo response we use.
type Identity struct {
	Subject  string `json:"sub"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Picture  string `json:"picture"`
	Verified bool   `json:"email_verified"`
}

// OAuthProvider exchanges authorization codes with the identity provider
// (LinkedIn OpenID Connect) and fetches the signed-in user's identity.
type OAuthProvider struct {
	oauth       *oauth2.Config
	userInfoURL string
}

// NewOAuthProvider creates the identity provider adapter from config.
func NewOAuthProvider(cfg config.OAuthConfig) *OAuthProvider {
	return &OAuthProvider{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"openid", "profile", "email"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.AuthURL,
				TokenURL: cfg.TokenURL,
			},
		},
		userInfoURL: cfg.UserInfoURL,
	}
}

// AuthCodeURL returns the provider consent URL for the given state.
func (p *OAuthProvider) AuthCodeURL(state string) string {
	return p.oauth.AuthCodeURL(state)
}

// Exchange trades an authorization code for the user's identity.
func (p *OAuthProvider) Exchange(ctx context.Context, code string) (*Identity, error) {
	token, err := p.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}

	client := p.oauth.Client(ctx, token)
	resp, err := client.Get(p.userInfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status: %d", resp.StatusCode)
	}

	var identity Identity
	if err := json.NewDecoder(resp.Body).Decode(&identity); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	if identity.Subject == "" {
		return nil, fmt.Errorf("userinfo missing subject")
	}
	return &identity, nil
}
