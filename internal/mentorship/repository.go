package mentorship

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// ErrNotFound is returned when no mentorship request matches.
var ErrNotFound = errors.New("mentorship request not found")

// Repository handles mentorship request and feedback persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a mentorship repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreateRequest inserts a mentorship request.
func (r *Repository) CreateRequest(ctx context.Context, m *models.MentorshipRequest) error {
	const q = `INSERT INTO mentorship_requests (user_id, topic, message)
		VALUES ($1, $2, $3)
		RETURNING id, status, created_at, updated_at`
	return r.pool.QueryRow(ctx, q, m.UserID, m.Topic, m.Message).
		Scan(&m.ID, &m.Status, &m.CreatedAt, &m.UpdatedAt)
}

// ListRequests returns all mentorship requests joined with the
// requester's profile, newest first.
func (r *Repository) ListRequests(ctx context.Context) ([]models.MentorshipRequest, error) {
	const q = `SELECT m.id, m.user_id, u.full_name, u.email, m.topic, m.message, m.status, m.created_at, m.updated_at
		FROM mentorship_requests m JOIN users u ON u.id = m.user_id
		ORDER BY m.created_at DESC`
	rows, err := r.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.MentorshipRequest
	for rows.Next() {
		var m models.MentorshipRequest
		if err := rows.Scan(&m.ID, &m.UserID, &m.UserName, &m.UserEmail, &m.Topic, &m.Message, &m.Status, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		list = append(list, m)
	}
	return list, rows.Err()
}

// UpdateStatus sets the status of a mentorship request.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	err := r.pool.QueryRow(ctx,
		`UPDATE mentorship_requests SET status = $2, updated_at = NOW() WHERE id = $1 RETURNING id`,
		id, status).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// CreateFeedback inserts a feedback submission.
func (r *Repository) CreateFeedback(ctx context.Context, f *models.Feedback) error {
	const q = `INSERT INTO feedback (user_id, subject, message)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`
	return r.pool.QueryRow(ctx, q, f.UserID, f.Subject, f.Message).Scan(&f.ID, &f.CreatedAt)
}
