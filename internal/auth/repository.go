package auth

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// Repository handles user persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates an auth repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const userColumns = `id, email, password_hash, full_name, role,
	COALESCE(college,''), COALESCE(skills,''), COALESCE(avatar_url,''), COALESCE(resume_key,''),
	admin_approved, created_at, updated_at`

func scanUser(row interface{ Scan(dest ...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.FullName, &u.Role,
		&u.College, &u.Skills, &u.AvatarURL, &u.ResumeKey, &u.AdminApproved, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID returns a user by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

// GetByEmail returns a user by email.
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// CreateUserParams holds optional profile fields for registration.
type CreateUserParams struct {
	College string
	Skills  string
}

// Create inserts a new user.
func (r *Repository) Create(ctx context.Context, email, passwordHash, fullName string, role models.Role, profile *CreateUserParams) (*models.User, error) {
	const q = `INSERT INTO users (email, password_hash, full_name, role, college, skills)
		VALUES ($1, $2, $3, $4, NULLIF($5,''), NULLIF($6,''))
		RETURNING ` + userColumns
	college, skills := "", ""
	if profile != nil {
		college, skills = profile.College, profile.Skills
	}
	return scanUser(r.pool.QueryRow(ctx, q, email, passwordHash, fullName, string(role), college, skills))
}

// UpdateProfile updates mutable profile fields for a user.
func (r *Repository) UpdateProfile(ctx context.Context, id uuid.UUID, fullName, college, skills string) (*models.User, error) {
	const q = `UPDATE users SET
		full_name = COALESCE(NULLIF($2,''), full_name),
		college = COALESCE(NULLIF($3,''), college),
		skills = COALESCE(NULLIF($4,''), skills),
		updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(r.pool.QueryRow(ctx, q, id, fullName, college, skills))
}

// SetAvatarURL stores the avatar URL for a user.
func (r *Repository) SetAvatarURL(ctx context.Context, id uuid.UUID, url string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET avatar_url = $2, updated_at = NOW() WHERE id = $1`, id, url)
	return err
}

// SetResumeKey stores (or clears, with "") the S3 resume key for a user.
func (r *Repository) SetResumeKey(ctx context.Context, id uuid.UUID, key string) error {
	_, err := r.pool.Exec(ctx, `UPDATE users SET resume_key = NULLIF($2,''), updated_at = NOW() WHERE id = $1`, id, key)
	return err
}

// SetApproved updates the admin approval flag for a user.
func (r *Repository) SetApproved(ctx context.Context, id uuid.UUID, approved bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET admin_approved = $2, updated_at = NOW() WHERE id = $1`, id, approved)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// List returns all users ordered by name for the admin console.
func (r *Repository) List(ctx context.Context) ([]models.UserPublic, error) {
	rows, err := r.pool.Query(ctx, `SELECT id, email, full_name, role,
		COALESCE(college,''), COALESCE(skills,''), COALESCE(avatar_url,''), admin_approved, created_at
		FROM users ORDER BY full_name, email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.UserPublic
	for rows.Next() {
		var u models.UserPublic
		var role string
		if err := rows.Scan(&u.ID, &u.Email, &u.FullName, &role,
			&u.College, &u.Skills, &u.AvatarURL, &u.AdminApproved, &u.CreatedAt); err != nil {
			return nil, err
		}
		u.Role = models.Role(role)
		list = append(list, u)
	}
	return list, rows.Err()
}

// ListApprovedStudentEmails returns the email of every approved student,
// used by the broadcast fan-out.
func (r *Repository) ListApprovedStudentEmails(ctx context.Context) ([]string, error) {
	rows, err := r.pool.Query(ctx, `SELECT email FROM users WHERE role = 'student' AND admin_approved ORDER BY email`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var emails []string
	for rows.Next() {
		var e string
		if err := rows.Scan(&e); err != nil {
			return nil, err
		}
		emails = append(emails, e)
	}
	return emails, rows.Err()
}
