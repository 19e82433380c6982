package meetups

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// Repository handles meetup persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a meetup repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const meetupColumns = `id, title, description, venue, starts_at, ends_at,
	registration_starts_at, registration_ends_at, register_until_end,
	created_by, created_at, updated_at`

func scanMeetup(row interface{ Scan(dest ...any) error }) (*models.Meetup, error) {
	var m models.Meetup
	err := row.Scan(&m.ID, &m.Title, &m.Description, &m.Venue, &m.StartsAt, &m.EndsAt,
		&m.RegistrationStartsAt, &m.RegistrationEndsAt, &m.RegisterUntilEnd,
		&m.CreatedBy, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// Create inserts a new meetup.
func (r *Repository) Create(ctx context.Context, m *models.Meetup) error {
	const q = `INSERT INTO meetups (title, description, venue, starts_at, ends_at,
		registration_starts_at, registration_ends_at, register_until_end, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.Title, m.Description, m.Venue, m.StartsAt, m.EndsAt,
		m.RegistrationStartsAt, m.RegistrationEndsAt, m.RegisterUntilEnd, m.CreatedBy).
		Scan(&m.ID, &m.CreatedAt, &m.UpdatedAt)
}

// GetByID returns a meetup by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Meetup, error) {
	return scanMeetup(r.pool.QueryRow(ctx, `SELECT `+meetupColumns+` FROM meetups WHERE id = $1`, id))
}

// List returns all meetups ordered by start time ascending.
func (r *Repository) List(ctx context.Context) ([]models.Meetup, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+meetupColumns+` FROM meetups ORDER BY starts_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Meetup
	for rows.Next() {
		m, err := scanMeetup(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *m)
	}
	return list, rows.Err()
}

// Update writes the full meetup row after the handler has applied a
// partial patch onto it.
func (r *Repository) Update(ctx context.Context, m *models.Meetup) error {
	const q = `UPDATE meetups SET title = $2, description = $3, venue = $4,
		starts_at = $5, ends_at = $6, registration_starts_at = $7,
		registration_ends_at = $8, register_until_end = $9, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`
	return r.pool.QueryRow(ctx, q, m.ID, m.Title, m.Description, m.Venue,
		m.StartsAt, m.EndsAt, m.RegistrationStartsAt, m.RegistrationEndsAt, m.RegisterUntilEnd).
		Scan(&m.UpdatedAt)
}

// Delete removes a meetup by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM meetups WHERE id = $1`, id)
	return err
}
