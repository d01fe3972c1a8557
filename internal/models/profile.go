package models

import (
	"time"

	"github.com/google/uuid"
)

// Role represents a user's platform role.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleEventOrganizer Role = "event_organizer"
	RoleUser           Role = "user"
)

// ValidRole reports whether s is one of the closed role set.
func ValidRole(s string) bool {
	switch Role(s) {
	case RoleSuperAdmin, RoleEventOrganizer, RoleUser:
		return true
	}
	return false
}

// Profile is the single per-user record. ID equals the identity provider's user id.
// LinkedInUsername is empty until onboarding completes.
type Profile struct {
	ID                uuid.UUID `json:"id"`
	Email             string    `json:"email"`
	FullName          string    `json:"full_name"`
	LinkedInUsername  string    `json:"linkedin_username"`
	OneLiner          string    `json:"one_liner,omitempty"`
	TwitterUsername   string    `json:"twitter_username,omitempty"`
	InstagramUsername string    `json:"instagram_username,omitempty"`
	GitHubUsername    string    `json:"github_username,omitempty"`
	PortfolioURL      string    `json:"portfolio_url,omitempty"`
	AvatarURL         string    `json:"avatar_url,omitempty"`
	Role              Role      `json:"role"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// Onboarded reports whether the profile has completed onboarding.
func (p *Profile) Onboarded() bool {
	return p.LinkedInUsername != ""
}
