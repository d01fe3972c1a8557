package realtime

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(roomID uuid.UUID) *Client {
	return &Client{
		ID:     uuid.New().String(),
		RoomID: roomID,
		UserID: uuid.New(),
		send:   make(chan WSMessage, 4),
	}
}

func TestHubRegisterUnregisterAudienceCount(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	roomID := uuid.New()

	a := newTestClient(roomID)
	b := newTestClient(roomID)
	hub.Register(a)
	hub.Register(b)
	assert.Equal(t, 2, hub.AudienceCount(roomID))

	hub.Unregister(a)
	assert.Equal(t, 1, hub.AudienceCount(roomID))
	hub.Unregister(b)
	assert.Equal(t, 0, hub.AudienceCount(roomID))
}

func TestHubBroadcastReachesAllRoomClients(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	roomID := uuid.New()
	otherRoom := uuid.New()

	a := newTestClient(roomID)
	b := newTestClient(roomID)
	outsider := newTestClient(otherRoom)
	hub.Register(a)
	hub.Register(b)
	hub.Register(outsider)

	hub.BroadcastToRoom(roomID, "membership_changed", map[string]string{"approval_status": "approved"})

	for _, c := range []*Client{a, b} {
		select {
		case msg := <-c.send:
			assert.Equal(t, "membership_changed", msg.Event)
			var data map[string]string
			require.NoError(t, json.Unmarshal(msg.Data, &data))
			assert.Equal(t, "approved", data["approval_status"])
		default:
			t.Fatalf("client %s received no message", c.ID)
		}
	}
	select {
	case msg := <-outsider.send:
		t.Fatalf("outsider received %q", msg.Event)
	default:
	}
}

func TestHubAudienceChangeHandler(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil, nil)
	roomID := uuid.New()

	var counts []int
	hub.SetAudienceChangeHandler(func(id uuid.UUID, count int) {
		if id == roomID {
			counts = append(counts, count)
		}
	})

	a := newTestClient(roomID)
	b := newTestClient(roomID)
	hub.Register(a)
	hub.Register(b)
	hub.Unregister(a)
	hub.Unregister(b)
	// the handler hears the room empty out, not just shrink
	assert.Equal(t, []int{1, 2, 1, 0}, counts)
}
