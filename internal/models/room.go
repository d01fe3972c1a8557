package models

import (
	"time"

	"github.com/google/uuid"
)

// RoomStatus is the room's position relative to its time window.
type RoomStatus string

const (
	RoomUpcoming RoomStatus = "upcoming"
	RoomLive     RoomStatus = "live"
	RoomEnded    RoomStatus = "ended"
)

// Room is a time-boxed networking space joined via a 6-character code.
// ExpiresAt is computed once at creation as StartsAt + 2x the requested duration
// (rooms stay browsable twice as long as their stated duration) and never
// recalculated.
type Room struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Code           string     `json:"code"`
	CreatedBy      uuid.UUID  `json:"created_by"`
	OrganizationID *uuid.UUID `json:"organization_id,omitempty"`
	StartsAt       time.Time  `json:"starts_at"`
	DurationHours  int        `json:"duration_hours"`
	ExpiresAt      time.Time  `json:"expires_at"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// Status returns upcoming, live or ended for the given instant.
func (r *Room) Status(now time.Time) RoomStatus {
	if now.Before(r.StartsAt) {
		return RoomUpcoming
	}
	if now.After(r.ExpiresAt) {
		return RoomEnded
	}
	return RoomLive
}

// Ended reports whether the room's window has passed. Ended rooms remain
// readable but reject new join requests.
func (r *Room) Ended(now time.Time) bool {
	return now.After(r.ExpiresAt)
}

// RoomExpiry computes the expiry instant from start and requested duration.
func RoomExpiry(startsAt time.Time, durationHours int) time.Time {
	return startsAt.Add(time.Duration(durationHours) * 2 * time.Hour)
}

// Classification is a labeled role a member selects when joining a room.
// The set is defined at room creation and immutable afterwards.
type Classification struct {
	ID               uuid.UUID `json:"id"`
	RoomID           uuid.UUID `json:"room_id"`
	Name             string    `json:"name"`
	RequiresApproval bool      `json:"requires_approval"`
	DisplayOrder     int       `json:"display_order"`
	CreatedAt        time.Time `json:"created_at"`
}
