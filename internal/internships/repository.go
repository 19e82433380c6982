package internships

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// ErrNotFound is returned when no internship matches.
var ErrNotFound = errors.New("internship not found")

// Repository handles internship persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an internships repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const internshipColumns = `id, company, role_title, COALESCE(location,''), COALESCE(stipend,''),
	COALESCE(apply_url,''), deadline, posted_by, created_at, updated_at`

func scanInternship(row interface{ Scan(dest ...any) error }) (*models.Internship, error) {
	var i models.Internship
	err := row.Scan(&i.ID, &i.Company, &i.RoleTitle, &i.Location, &i.Stipend,
		&i.ApplyURL, &i.Deadline, &i.PostedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Create inserts an internship listing.
func (r *Repository) Create(ctx context.Context, i *models.Internship) error {
	const q = `INSERT INTO internships (company, role_title, location, stipend, apply_url, deadline, posted_by)
		VALUES ($1, $2, NULLIF($3,''), NULLIF($4,''), NULLIF($5,''), $6, $7)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, i.Company, i.RoleTitle, i.Location, i.Stipend, i.ApplyURL, i.Deadline, i.PostedBy).
		Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
}

// GetByID returns an internship by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Internship, error) {
	i, err := scanInternship(r.pool.QueryRow(ctx, `SELECT `+internshipColumns+` FROM internships WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return i, err
}

// List returns all internships, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Internship, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+internshipColumns+` FROM internships ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Internship
	for rows.Next() {
		i, err := scanInternship(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *i)
	}
	return list, rows.Err()
}

// Update updates an internship's fields.
func (r *Repository) Update(ctx context.Context, i *models.Internship) error {
	const q = `UPDATE internships SET company = $2, role_title = $3, location = NULLIF($4,''),
		stipend = NULLIF($5,''), apply_url = NULLIF($6,''), deadline = $7, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, i.ID, i.Company, i.RoleTitle, i.Location, i.Stipend, i.ApplyURL, i.Deadline).Scan(&i.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes an internship by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM internships WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
