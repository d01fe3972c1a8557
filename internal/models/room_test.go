package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRoomExpiryDoublesDuration(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, start.Add(16*time.Hour), RoomExpiry(start, 8))
	assert.Equal(t, start.Add(2*time.Hour), RoomExpiry(start, 1))
	assert.Equal(t, start.Add(144*time.Hour), RoomExpiry(start, 72))
}

func TestRoomStatus(t *testing.T) {
	start := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	room := Room{
		StartsAt:      start,
		DurationHours: 8,
		ExpiresAt:     RoomExpiry(start, 8),
	}

	assert.Equal(t, RoomUpcoming, room.Status(start.Add(-time.Minute)))
	assert.Equal(t, RoomLive, room.Status(start))
	assert.Equal(t, RoomLive, room.Status(start.Add(time.Hour)))
	assert.Equal(t, RoomLive, room.Status(start.Add(16*time.Hour)))
	assert.Equal(t, RoomEnded, room.Status(start.Add(17*time.Hour)))

	assert.False(t, room.Ended(start.Add(16*time.Hour)))
	assert.True(t, room.Ended(start.Add(16*time.Hour+time.Second)))
}
