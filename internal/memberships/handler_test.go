package memberships

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/huddle-app/backend/internal/middleware"
	"github.com/huddle-app/backend/internal/models"
	"github.com/huddle-app/backend/internal/rooms"
)

type stubMembershipStore struct {
	existing *models.Membership
	created  *models.Membership
}

func (s *stubMembershipStore) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	if s.existing != nil {
		return s.existing, ErrAlreadyMember
	}
	m.ID = uuid.New()
	m.CreatedAt = time.Now()
	m.UpdatedAt = m.CreatedAt
	s.created = m
	return m, nil
}

func (s *stubMembershipStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	return nil, ErrNotFound
}

func (s *stubMembershipStore) GetByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	return nil, ErrNotFound
}

func (s *stubMembershipStore) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.Membership, error) {
	return nil, ErrNotFound
}

func (s *stubMembershipStore) ListMembers(ctx context.Context, roomID uuid.UUID, status models.ApprovalStatus) ([]RosterEntry, error) {
	return nil, nil
}

type stubRoomStore struct {
	room            *models.Room
	classifications map[uuid.UUID]*models.Classification
}

func (s *stubRoomStore) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	if s.room == nil || s.room.ID != id {
		return nil, rooms.ErrNotFound
	}
	return s.room, nil
}

func (s *stubRoomStore) GetClassification(ctx context.Context, id uuid.UUID) (*models.Classification, error) {
	cl, ok := s.classifications[id]
	if !ok {
		return nil, rooms.ErrNotFound
	}
	return cl, nil
}

type recordingBroadcaster struct {
	events []string
}

func (b *recordingBroadcaster) BroadcastToRoomAndPublish(roomID uuid.UUID, event string, payload interface{}) {
	b.events = append(b.events, event)
}

func liveRoom() *models.Room {
	start := time.Now().Add(-time.Hour)
	return &models.Room{
		ID:            uuid.New(),
		Name:          "Meetup",
		Code:          "ABC234",
		CreatedBy:     uuid.New(),
		StartsAt:      start,
		DurationHours: 8,
		ExpiresAt:     models.RoomExpiry(start, 8),
		IsActive:      true,
	}
}

func postJoin(t *testing.T, h *Handler, userID, roomID, classificationID uuid.UUID) *httptest.ResponseRecorder {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/rooms/:id/join", func(c *gin.Context) {
		c.Set(middleware.ContextUserID, userID)
		c.Set(middleware.ContextUserRole, string(models.RoleUser))
		h.Join(c)
	})
	body, err := json.Marshal(gin.H{"classification_id": classificationID})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/rooms/"+roomID.String()+"/join", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestJoinOpenClassificationIsApproved(t *testing.T) {
	room := liveRoom()
	cl := &models.Classification{ID: uuid.New(), RoomID: room.ID, Name: "Attendee"}
	store := &stubMembershipStore{}
	hub := &recordingBroadcaster{}
	h := NewHandler(store, &stubRoomStore{room: room, classifications: map[uuid.UUID]*models.Classification{cl.ID: cl}}, nil, nil, hub, zap.NewNop())

	w := postJoin(t, h, uuid.New(), room.ID, cl.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Success bool              `json:"success"`
		Data    models.Membership `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.StatusApproved, body.Data.Status)
	assert.Equal(t, []string{"membership_changed"}, hub.events)
}

func TestJoinGatedClassificationIsPending(t *testing.T) {
	room := liveRoom()
	cl := &models.Classification{ID: uuid.New(), RoomID: room.ID, Name: "Speaker", RequiresApproval: true}
	h := NewHandler(&stubMembershipStore{}, &stubRoomStore{room: room, classifications: map[uuid.UUID]*models.Classification{cl.ID: cl}}, nil, nil, nil, zap.NewNop())

	w := postJoin(t, h, uuid.New(), room.ID, cl.ID)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Data models.Membership `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, models.StatusPending, body.Data.Status)
}

func TestJoinDuplicateReportsExistingStatus(t *testing.T) {
	room := liveRoom()
	cl := &models.Classification{ID: uuid.New(), RoomID: room.ID, Name: "Attendee"}
	userID := uuid.New()
	existing := &models.Membership{
		ID:               uuid.New(),
		RoomID:           room.ID,
		UserID:           userID,
		ClassificationID: cl.ID,
		Status:           models.StatusApproved,
	}
	hub := &recordingBroadcaster{}
	h := NewHandler(&stubMembershipStore{existing: existing}, &stubRoomStore{room: room, classifications: map[uuid.UUID]*models.Classification{cl.ID: cl}}, nil, nil, hub, zap.NewNop())

	w := postJoin(t, h, userID, room.ID, cl.ID)
	require.Equal(t, http.StatusConflict, w.Code)

	var body struct {
		Success bool `json:"success"`
		Data    struct {
			Membership models.Membership     `json:"membership"`
			Status     models.ApprovalStatus `json:"status"`
		} `json:"data"`
		Error string `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, models.StatusApproved, body.Data.Status)
	assert.Equal(t, existing.ID, body.Data.Membership.ID)
	assert.Empty(t, hub.events, "a rejected duplicate must not broadcast")
}

func TestJoinEndedRoomIsGone(t *testing.T) {
	room := liveRoom()
	room.StartsAt = time.Now().Add(-48 * time.Hour)
	room.ExpiresAt = models.RoomExpiry(room.StartsAt, 8)
	cl := &models.Classification{ID: uuid.New(), RoomID: room.ID, Name: "Attendee"}
	h := NewHandler(&stubMembershipStore{}, &stubRoomStore{room: room, classifications: map[uuid.UUID]*models.Classification{cl.ID: cl}}, nil, nil, nil, zap.NewNop())

	w := postJoin(t, h, uuid.New(), room.ID, cl.ID)
	assert.Equal(t, http.StatusGone, w.Code)
}

func TestJoinClassificationFromAnotherRoom(t *testing.T) {
	room := liveRoom()
	foreign := &models.Classification{ID: uuid.New(), RoomID: uuid.New(), Name: "Attendee"}
	h := NewHandler(&stubMembershipStore{}, &stubRoomStore{room: room, classifications: map[uuid.UUID]*models.Classification{foreign.ID: foreign}}, nil, nil, nil, zap.NewNop())

	w := postJoin(t, h, uuid.New(), room.ID, foreign.ID)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
