package engagement

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Insert records one LinkedIn click. Events are append-only.
func (r *Repository) Insert(ctx context.Context, roomID, sourceUserID, targetUserID uuid.UUID, clickedAt time.Time) error {
	const q = `INSERT INTO engagement_events (room_id, source_user_id, target_user_id, created_at)
		VALUES ($1, $2, $3, $4)`
	_, err := r.pool.Exec(ctx, q, roomID, sourceUserID, targetUserID, clickedAt)
	return err
}

// CountsByRoom returns, per target user, how many clicks their profile
// received in the room.
func (r *Repository) CountsByRoom(ctx context.Context, roomID uuid.UUID) (map[uuid.UUID]int, error) {
	const q = `SELECT target_user_id, COUNT(*) FROM engagement_events WHERE room_id = $1 GROUP BY target_user_id`
	rows, err := r.pool.Query(ctx, q, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[uuid.UUID]int)
	for rows.Next() {
		var target uuid.UUID
		var n int
		if err := rows.Scan(&target, &n); err != nil {
			return nil, err
		}
		counts[target] = n
	}
	return counts, rows.Err()
}

// TotalForRoom returns the number of click events recorded in a room.
func (r *Repository) TotalForRoom(ctx context.Context, roomID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM engagement_events WHERE room_id = $1`
	var n int
	err := r.pool.QueryRow(ctx, q, roomID).Scan(&n)
	return n, err
}

// CountForUser returns how many clicks the user's profile has received across
// all rooms.
func (r *Repository) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	const q = `SELECT COUNT(*) FROM engagement_events WHERE target_user_id = $1`
	var n int
	err := r.pool.QueryRow(ctx, q, userID).Scan(&n)
	return n, err
}
