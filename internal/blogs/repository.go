package blogs

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// ErrNotFound is returned when no blog matches.
var ErrNotFound = errors.New("blog not found")

// Repository handles blog persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a blogs repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// Create inserts a blog post.
func (r *Repository) Create(ctx context.Context, b *models.Blog) error {
	const q = `INSERT INTO blogs (author_id, title, content, tags, published)
		VALUES ($1, $2, $3, NULLIF($4,''), $5)
		RETURNING id, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, b.AuthorID, b.Title, b.Content, b.Tags, b.Published).
		Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
}

// GetByID returns a blog with its author's name.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	const q = `SELECT b.id, b.author_id, u.full_name, b.title, b.content, COALESCE(b.tags,''), b.published, b.created_at, b.updated_at
		FROM blogs b JOIN users u ON u.id = b.author_id WHERE b.id = $1`
	var b models.Blog
	err := r.pool.QueryRow(ctx, q, id).Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Content, &b.Tags, &b.Published, &b.CreatedAt, &b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns published blogs, newest first.
func (r *Repository) List(ctx context.Context) ([]models.Blog, error) {
	const q = `SELECT b.id, b.author_id, u.full_name, b.title, b.content, COALESCE(b.tags,''), b.published, b.created_at, b.updated_at
		FROM blogs b JOIN users u ON u.id = b.author_id
		WHERE b.published ORDER BY b.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Blog
	for rows.Next() {
		var b models.Blog
		if err := rows.Scan(&b.ID, &b.AuthorID, &b.AuthorName, &b.Title, &b.Content, &b.Tags, &b.Published, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// Update updates a blog's mutable fields.
func (r *Repository) Update(ctx context.Context, b *models.Blog) error {
	const q = `UPDATE blogs SET title = $2, content = $3, tags = NULLIF($4,''), published = $5, updated_at = NOW()
		WHERE id = $1 RETURNING updated_at`
	err := r.pool.QueryRow(ctx, q, b.ID, b.Title, b.Content, b.Tags, b.Published).Scan(&b.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Delete removes a blog by ID.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
