package rooms

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddle-app/backend/internal/models"
)

var (
	// ErrNotFound is returned when no room matches the lookup.
	ErrNotFound = errors.New("room not found")
	// ErrCodeConflict is returned when the unique code constraint rejects an
	// insert; the caller regenerates and retries.
	ErrCodeConflict = errors.New("join code already in use")
)

// ClassificationInput is one classification definition at room creation.
type ClassificationInput struct {
	Name             string
	RequiresApproval bool
}

// Repository handles room and classification persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a rooms repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const roomColumns = `id, name, code, created_by, organization_id, starts_at, duration_hours, expires_at, is_active, created_at, updated_at`

func scanRoom(row pgx.Row) (*models.Room, error) {
	var rm models.Room
	err := row.Scan(&rm.ID, &rm.Name, &rm.Code, &rm.CreatedBy, &rm.OrganizationID,
		&rm.StartsAt, &rm.DurationHours, &rm.ExpiresAt, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

// CodeExists reports whether any room already uses the code.
func (r *Repository) CodeExists(ctx context.Context, code string) (bool, error) {
	const q = `SELECT 1 FROM rooms WHERE code = $1`
	var one int
	err := r.pool.QueryRow(ctx, q, code).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create inserts the room, its classification set, and the creator's
// auto-approved membership in one transaction. A code unique violation maps
// to ErrCodeConflict so the caller can regenerate.
func (r *Repository) Create(ctx context.Context, room *models.Room, classifications []ClassificationInput) ([]models.Classification, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const insertRoom = `INSERT INTO rooms (name, code, created_by, organization_id, starts_at, duration_hours, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, is_active, created_at, updated_at`
	err = tx.QueryRow(ctx, insertRoom, room.Name, room.Code, room.CreatedBy, room.OrganizationID,
		room.StartsAt, room.DurationHours, room.ExpiresAt).
		Scan(&room.ID, &room.IsActive, &room.CreatedAt, &room.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrCodeConflict
		}
		return nil, err
	}

	const insertClass = `INSERT INTO room_classifications (room_id, name, requires_approval, display_order)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	out := make([]models.Classification, 0, len(classifications))
	for i, in := range classifications {
		cl := models.Classification{
			RoomID:           room.ID,
			Name:             in.Name,
			RequiresApproval: in.RequiresApproval,
			DisplayOrder:     i + 1,
		}
		if err := tx.QueryRow(ctx, insertClass, room.ID, cl.Name, cl.RequiresApproval, cl.DisplayOrder).
			Scan(&cl.ID, &cl.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, cl)
	}

	// The creator joins their own room through the first classification,
	// approved regardless of its approval flag.
	const insertCreator = `INSERT INTO room_members (room_id, user_id, classification_id, approval_status)
		VALUES ($1, $2, $3, 'approved')`
	if _, err := tx.Exec(ctx, insertCreator, room.ID, room.CreatedBy, out[0].ID); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a room by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE id = $1`
	return scanRoom(r.pool.QueryRow(ctx, q, id))
}

// GetByCode returns a room by join code.
func (r *Repository) GetByCode(ctx context.Context, code string) (*models.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms WHERE code = $1`
	return scanRoom(r.pool.QueryRow(ctx, q, code))
}

// ListClassifications returns the room's classification set in display order.
func (r *Repository) ListClassifications(ctx context.Context, roomID uuid.UUID) ([]models.Classification, error) {
	const q = `SELECT id, room_id, name, requires_approval, display_order, created_at
		FROM room_classifications WHERE room_id = $1 ORDER BY display_order ASC`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Classification
	for rows.Next() {
		var cl models.Classification
		if err := rows.Scan(&cl.ID, &cl.RoomID, &cl.Name, &cl.RequiresApproval, &cl.DisplayOrder, &cl.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, cl)
	}
	return list, rows.Err()
}

// GetClassification returns one classification by ID.
func (r *Repository) GetClassification(ctx context.Context, id uuid.UUID) (*models.Classification, error) {
	const q = `SELECT id, room_id, name, requires_approval, display_order, created_at
		FROM room_classifications WHERE id = $1`
	var cl models.Classification
	err := r.pool.QueryRow(ctx, q, id).Scan(&cl.ID, &cl.RoomID, &cl.Name, &cl.RequiresApproval, &cl.DisplayOrder, &cl.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &cl, nil
}

// ApprovedMemberCount returns the number of approved members in a room.
func (r *Repository) ApprovedMemberCount(ctx context.Context, roomID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM room_members WHERE room_id = $1 AND approval_status = 'approved'`
	var n int
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&n)
	return n, err
}

// JoinedRoom is a room the user belongs to, with the member count and the
// user's own approval status.
type JoinedRoom struct {
	models.Room
	MemberCount int                   `json:"member_count"`
	MyStatus    models.ApprovalStatus `json:"my_status"`
}

// ListJoinedRooms returns rooms the user has a membership in, newest first.
func (r *Repository) ListJoinedRooms(ctx context.Context, userID uuid.UUID) ([]JoinedRoom, error) {
	const q = `SELECT rm.id, rm.name, rm.code, rm.created_by, rm.organization_id, rm.starts_at, rm.duration_hours, rm.expires_at, rm.is_active, rm.created_at, rm.updated_at,
			(SELECT COUNT(*) FROM room_members c WHERE c.room_id = rm.id AND c.approval_status = 'approved'),
			m.approval_status
		FROM rooms rm
		INNER JOIN room_members m ON m.room_id = rm.id
		WHERE m.user_id = $1
		ORDER BY rm.starts_at DESC`
	rows, err := r.pool.Query(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []JoinedRoom
	for rows.Next() {
		var jr JoinedRoom
		if err := rows.Scan(&jr.ID, &jr.Name, &jr.Code, &jr.CreatedBy, &jr.OrganizationID,
			&jr.StartsAt, &jr.DurationHours, &jr.ExpiresAt, &jr.IsActive, &jr.CreatedAt, &jr.UpdatedAt,
			&jr.MemberCount, &jr.MyStatus); err != nil {
			return nil, err
		}
		list = append(list, jr)
	}
	return list, rows.Err()
}

// ListManagedRooms returns rooms created by the user or owned by any of the
// given organizations, newest first.
func (r *Repository) ListManagedRooms(ctx context.Context, userID uuid.UUID, orgIDs []uuid.UUID) ([]models.Room, error) {
	const q = `SELECT ` + roomColumns + ` FROM rooms
		WHERE created_by = $1 OR organization_id = ANY($2)
		ORDER BY starts_at DESC`
	rows, err := r.pool.Query(ctx, q, userID, orgIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Room
	for rows.Next() {
		var rm models.Room
		if err := rows.Scan(&rm.ID, &rm.Name, &rm.Code, &rm.CreatedBy, &rm.OrganizationID,
			&rm.StartsAt, &rm.DurationHours, &rm.ExpiresAt, &rm.IsActive, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, rm)
	}
	return list, rows.Err()
}

// Update writes the room name and active flag.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name string, isActive bool) error {
	const q = `UPDATE rooms SET name = $1, is_active = $2, updated_at = NOW() WHERE id = $3`
	tag, err := r.pool.Exec(ctx, q, name, isActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
