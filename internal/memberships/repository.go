package memberships

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddle-app/backend/internal/models"
)

var (
	ErrNotFound = errors.New("membership not found")
	// ErrAlreadyMember is returned when the (room, user) pair already has a
	// membership. The storage unique constraint is the authoritative check.
	ErrAlreadyMember = errors.New("user is already a member of this room")
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const membershipColumns = `id, room_id, user_id, classification_id, approval_status, created_at, updated_at`

func scanMembership(row pgx.Row) (*models.Membership, error) {
	var m models.Membership
	err := row.Scan(&m.ID, &m.RoomID, &m.UserID, &m.ClassificationID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Create inserts a membership. On a duplicate (room, user) pair it returns
// ErrAlreadyMember along with the existing membership so callers can report
// the current status.
func (r *Repository) Create(ctx context.Context, m *models.Membership) (*models.Membership, error) {
	const q = `INSERT INTO room_members (room_id, user_id, classification_id, approval_status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, m.RoomID, m.UserID, m.ClassificationID, m.Status).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
	if err == nil {
		return m, nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		existing, getErr := r.GetByRoomAndUser(ctx, m.RoomID, m.UserID)
		if getErr != nil {
			return nil, getErr
		}
		return existing, ErrAlreadyMember
	}
	return nil, err
}

// GetByID returns a membership by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM room_members WHERE id = $1`
	return scanMembership(r.pool.QueryRow(ctx, q, id))
}

// GetByRoomAndUser returns the user's membership in the room, if any.
func (r *Repository) GetByRoomAndUser(ctx context.Context, roomID, userID uuid.UUID) (*models.Membership, error) {
	const q = `SELECT ` + membershipColumns + ` FROM room_members WHERE room_id = $1 AND user_id = $2`
	return scanMembership(r.pool.QueryRow(ctx, q, roomID, userID))
}

// UpdateStatus sets a membership's approval status and returns the updated
// row.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.ApprovalStatus) (*models.Membership, error) {
	const q = `UPDATE room_members SET approval_status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + membershipColumns
	return scanMembership(r.pool.QueryRow(ctx, q, id, status))
}

// RosterEntry is one member row joined with the profile fields the roster
// shows. JoinedAt preserves insertion order for stable sorting.
type RosterEntry struct {
	MembershipID       uuid.UUID             `json:"membership_id"`
	UserID             uuid.UUID             `json:"user_id"`
	ClassificationID   uuid.UUID             `json:"classification_id"`
	ClassificationName string                `json:"classification_name"`
	Status             models.ApprovalStatus `json:"approval_status"`
	FullName           string                `json:"full_name"`
	OneLiner           string                `json:"one_liner"`
	LinkedInUsername   string                `json:"linkedin_username"`
	AvatarURL          string                `json:"avatar_url"`
	JoinedAt           time.Time             `json:"joined_at"`
	EngagementCount    int                   `json:"engagement_count"`
}

// ListMembers returns roster entries for a room in insertion order. When
// status is non-empty only memberships with that status are returned.
func (r *Repository) ListMembers(ctx context.Context, roomID uuid.UUID, status models.ApprovalStatus) ([]RosterEntry, error) {
	q := `SELECT m.id, m.user_id, m.classification_id, c.name, m.approval_status,
			p.full_name, COALESCE(p.one_liner, ''), COALESCE(p.linkedin_username, ''), COALESCE(p.avatar_url, ''),
			m.created_at
		FROM room_members m
		INNER JOIN profiles p ON p.id = m.user_id
		INNER JOIN room_classifications c ON c.id = m.classification_id
		WHERE m.room_id = $1`
	args := []interface{}{roomID}
	if status != "" {
		q += ` AND m.approval_status = $2`
		args = append(args, status)
	}
	q += ` ORDER BY m.created_at ASC, m.id ASC`

	rows, err := r.pool.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []RosterEntry
	for rows.Next() {
		var e RosterEntry
		if err := rows.Scan(&e.MembershipID, &e.UserID, &e.ClassificationID, &e.ClassificationName,
			&e.Status, &e.FullName, &e.OneLiner, &e.LinkedInUsername, &e.AvatarURL, &e.JoinedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountByStatus returns the number of members per approval status for a room.
func (r *Repository) CountByStatus(ctx context.Context, roomID uuid.UUID) (map[models.ApprovalStatus]int, error) {
	const q = `SELECT approval_status, COUNT(*) FROM room_members WHERE room_id = $1 GROUP BY approval_status`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[models.ApprovalStatus]int)
	for rows.Next() {
		var status models.ApprovalStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}
