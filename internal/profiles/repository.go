package profiles

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/huddle-app/backend/internal/models"
)

// ErrNotFound is returned when no profile matches the lookup.
var ErrNotFound = errors.New("profile not found")

const profileColumns = `id, email, full_name, linkedin_username,
	COALESCE(one_liner,''), COALESCE(twitter_username,''), COALESCE(instagram_username,''),
	COALESCE(github_username,''), COALESCE(portfolio_url,''), COALESCE(avatar_url,''),
	role, created_at, updated_at`

// Repository handles profile persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a profiles repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanProfile(row pgx.Row) (*models.Profile, error) {
	var p models.Profile
	err := row.Scan(&p.ID, &p.Email, &p.FullName, &p.LinkedInUsername,
		&p.OneLiner, &p.TwitterUsername, &p.InstagramUsername,
		&p.GitHubUsername, &p.PortfolioURL, &p.AvatarURL,
		&p.Role, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}

// UpsertIdentity creates the profile row on first sign-in, or refreshes the
// provider-supplied email on subsequent sign-ins. The role and onboarding
// fields are never touched here.
func (r *Repository) UpsertIdentity(ctx context.Context, providerSubject, email, fullName string) (*models.Profile, error) {
	const q = `INSERT INTO profiles (provider_subject, email, full_name)
		VALUES ($1, $2, $3)
		ON CONFLICT (provider_subject) DO UPDATE SET email = EXCLUDED.email, updated_at = NOW()
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, q, providerSubject, email, fullName))
}

// GetByID returns a profile by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE id = $1`
	return scanProfile(r.pool.QueryRow(ctx, q, id))
}

// GetByEmail returns a profile by email (used for organizer assignment).
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.Profile, error) {
	const q = `SELECT ` + profileColumns + ` FROM profiles WHERE email = $1`
	return scanProfile(r.pool.QueryRow(ctx, q, email))
}

// UpdateParams holds owner-editable profile fields. Empty optional fields are
// stored as NULL.
type UpdateParams struct {
	FullName          string
	LinkedInUsername  string
	OneLiner          string
	TwitterUsername   string
	InstagramUsername string
	GitHubUsername    string
	PortfolioURL      string
}

// Update writes the owner-editable fields and returns the updated profile.
func (r *Repository) Update(ctx context.Context, id uuid.UUID, p UpdateParams) (*models.Profile, error) {
	const q = `UPDATE profiles SET
			full_name = $1,
			linkedin_username = $2,
			one_liner = NULLIF($3,''),
			twitter_username = NULLIF($4,''),
			instagram_username = NULLIF($5,''),
			github_username = NULLIF($6,''),
			portfolio_url = NULLIF($7,''),
			updated_at = NOW()
		WHERE id = $8
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, q, p.FullName, p.LinkedInUsername,
		p.OneLiner, p.TwitterUsername, p.InstagramUsername, p.GitHubUsername, p.PortfolioURL, id))
}

// CompleteOnboarding sets the required onboarding fields (name + LinkedIn handle).
func (r *Repository) CompleteOnboarding(ctx context.Context, id uuid.UUID, fullName, linkedinUsername string) (*models.Profile, error) {
	const q = `UPDATE profiles SET full_name = $1, linkedin_username = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING ` + profileColumns
	return scanProfile(r.pool.QueryRow(ctx, q, fullName, linkedinUsername, id))
}

// UpdateAvatarURL stores the avatar object URL after a completed upload.
func (r *Repository) UpdateAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	const q = `UPDATE profiles SET avatar_url = NULLIF($1,''), updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, url, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateRole elevates or demotes a user's role. Privileged path only; an update
// affecting zero rows signals ErrNotFound.
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role models.Role) error {
	const q = `UPDATE profiles SET role = $1, updated_at = NOW() WHERE id = $2`
	tag, err := r.pool.Exec(ctx, q, string(role), id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
