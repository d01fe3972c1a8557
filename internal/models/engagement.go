package models

import (
	"time"

	"github.com/google/uuid"
)

// EngagementEvent records one member activating another member's outbound
// profile link inside a room. Append-only; never mutated or deleted.
type EngagementEvent struct {
	ID           uuid.UUID `json:"id"`
	RoomID       uuid.UUID `json:"room_id"`
	SourceUserID uuid.UUID `json:"source_user_id"`
	TargetUserID uuid.UUID `json:"target_user_id"`
	CreatedAt    time.Time `json:"created_at"`
}
