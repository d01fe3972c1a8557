package organizations

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
	// ErrNotFound is returned when no organization matches the lookup.
	ErrNotFound = errors.New("organization not found")
	// ErrSlugTaken is returned when the unique slug constraint rejects an insert.
	ErrSlugTaken = errors.New("slug already in use")
)

// Repository handles organization and organizer-link persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an organizations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Create inserts an organization. The unique slug constraint is the sole
// duplicate detection mechanism.
func (r *Repository) Create(ctx context.Context, org *models.Organization) error {
	const q = `INSERT INTO organizations (name, slug, contact_name, contact_email)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''))
		RETURNING id, is_active, created_at, updated_at`
	err := r.pool.QueryRow(ctx, q, org.Name, org.Slug, org.ContactName, org.ContactEmail).
		Scan(&org.ID, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if isUniqueViolation(err) {
		return ErrSlugTaken
	}
	return err
}

// GetByID returns an organization by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Organization, error) {
	const q = `SELECT id, name, slug, COALESCE(contact_name,''), COALESCE(contact_email,''), is_active, created_at, updated_at
		FROM organizations WHERE id = $1`
	var org models.Organization
	err := r.pool.QueryRow(ctx, q, id).Scan(&org.ID, &org.Name, &org.Slug, &org.ContactName, &org.ContactEmail, &org.IsActive, &org.CreatedAt, &org.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &org, nil
}

// Summary is an organization with aggregate counts for the admin dashboard.
type Summary struct {
	models.Organization
	OrganizerCount int `json:"organizer_count"`
	RoomCount      int `json:"room_count"`
}

// ListWithCounts returns all organizations with organizer and room counts,
// newest first.
func (r *Repository) ListWithCounts(ctx context.Context) ([]Summary, error) {
	const q = `SELECT o.id, o.name, o.slug, COALESCE(o.contact_name,''), COALESCE(o.contact_email,''), o.is_active, o.created_at, o.updated_at,
			(SELECT COUNT(*) FROM organization_organizers oo WHERE oo.organization_id = o.id),
			(SELECT COUNT(*) FROM rooms rm WHERE rm.organization_id = o.id)
		FROM organizations o
		ORDER BY o.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Summary
	for rows.Next() {
		var s Summary
		if err := rows.Scan(&s.ID, &s.Name, &s.Slug, &s.ContactName, &s.ContactEmail, &s.IsActive, &s.CreatedAt, &s.UpdatedAt,
			&s.OrganizerCount, &s.RoomCount); err != nil {
			return nil, err
		}
		list = append(list, s)
	}
	return list, rows.Err()
}

// Update writes name, contact fields and the active flag.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, name, contactName, contactEmail string, isActive bool) error {
	const q = `UPDATE organizations SET name = $1, contact_name = NULLIF($2,''), contact_email = NULLIF($3,''), is_active = $4, updated_at = NOW()
		WHERE id = $5`
	tag, err := r.pool.Exec(ctx, q, name, contactName, contactEmail, isActive, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// AddOrganizer links a user as organizer to an organization. Idempotent.
func (r *Repository) AddOrganizer(ctx context.Context, orgID, userID uuid.UUID) error {
	const q = `INSERT INTO organization_organizers (organization_id, user_id)
		VALUES ($1, $2)
		ON CONFLICT (organization_id, user_id) DO NOTHING`
	_, err := r.pool.Exec(ctx, q, orgID, userID)
	return err
}

// IsOrganizer reports whether the user is linked as organizer of the org.
func (r *Repository) IsOrganizer(ctx context.Context, orgID, userID uuid.UUID) (bool, error) {
	const q = `SELECT 1 FROM organization_organizers WHERE organization_id = $1 AND user_id = $2`
	var one int
	err := r.pool.QueryRow(ctx, q, orgID, userID).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Organizer is one organizer link with profile details.
type Organizer struct {
	ID       uuid.UUID   `json:"id"`
	UserID   uuid.UUID   `json:"user_id"`
	Email    string      `json:"email"`
	FullName string      `json:"full_name"`
	Role     models.Role `json:"role"`
	AddedAt  time.Time   `json:"added_at"`
}

// ListOrganizers returns all organizer links for an organization.
func (r *Repository) ListOrganizers(ctx context.Context, orgID uuid.UUID) ([]Organizer, error) {
	const q = `SELECT oo.id, oo.user_id, p.email, p.full_name, p.role, oo.created_at
		FROM organization_organizers oo
		INNER JOIN profiles p ON p.id = oo.user_id
		WHERE oo.organization_id = $1
		ORDER BY oo.created_at ASC`
	rows, err := r.pool.Query(ctx, q, orgID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []Organizer
	for rows.Next() {
		var o Organizer
		if err := rows.Scan(&o.ID, &o.UserID, &o.Email, &o.FullName, &o.Role, &o.AddedAt); err != nil {
			return nil, err
		}
		list = append(list, o)
	}
	return list, rows.Err()
}

// ListOrganizationIDsForUser returns the organizations the user organizes.
func (r *Repository) ListOrganizationIDsForUser(ctx context.Context, userID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := r.pool.Query(ctx, `SELECT organization_id FROM organization_organizers WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
