package broadcasts

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

// Repository persists broadcasts and their per-recipient delivery logs.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates a broadcast repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// CreateBroadcast inserts a broadcast record.
func (r *Repository) CreateBroadcast(ctx context.Context, b *models.Broadcast) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO broadcasts (subject, body_html, created_by, recipients)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		b.Subject, b.BodyHTML, b.CreatedBy, b.Recipients,
	).Scan(&b.ID, &b.CreatedAt)
}

// GetBroadcast returns one broadcast by ID.
func (r *Repository) GetBroadcast(ctx context.Context, id uuid.UUID) (*models.Broadcast, error) {
	var b models.Broadcast
	err := r.db.QueryRow(ctx, `
		SELECT id, subject, body_html, created_by, recipients, created_at
		FROM broadcasts WHERE id = $1`, id,
	).Scan(&b.ID, &b.Subject, &b.BodyHTML, &b.CreatedBy, &b.Recipients, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// ListBroadcasts returns all broadcasts, newest first.
func (r *Repository) ListBroadcasts(ctx context.Context) ([]models.Broadcast, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, subject, body_html, created_by, recipients, created_at
		FROM broadcasts ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.Broadcast, 0)
	for rows.Next() {
		var b models.Broadcast
		if err := rows.Scan(&b.ID, &b.Subject, &b.BodyHTML, &b.CreatedBy, &b.Recipients, &b.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, b)
	}
	return list, rows.Err()
}

// CreateEmailLog inserts a pending delivery log for one recipient.
func (r *Repository) CreateEmailLog(ctx context.Context, l *models.EmailLog) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO email_logs (broadcast_id, recipient_email, subject, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`,
		l.BroadcastID, l.RecipientEmail, l.Subject, models.EmailLogStatusPending,
	).Scan(&l.ID, &l.CreatedAt)
}

// ListEmailLogs returns delivery logs for a broadcast, newest first.
func (r *Repository) ListEmailLogs(ctx context.Context, broadcastID uuid.UUID) ([]models.EmailLog, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, broadcast_id, recipient_email, COALESCE(subject, ''), status, sent_at, COALESCE(error_message, ''), created_at
		FROM email_logs WHERE broadcast_id = $1
		ORDER BY created_at DESC`, broadcastID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := make([]models.EmailLog, 0)
	for rows.Next() {
		var l models.EmailLog
		if err := rows.Scan(&l.ID, &l.BroadcastID, &l.RecipientEmail, &l.Subject, &l.Status, &l.SentAt, &l.ErrorMessage, &l.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

// MarkSent records a successful delivery.
func (r *Repository) MarkSent(ctx context.Context, logID uuid.UUID, at time.Time) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_logs SET status = $2, sent_at = $3, error_message = NULL
		WHERE id = $1`,
		logID, models.EmailLogStatusSent, at)
	return err
}

// MarkFailed records a permanently failed delivery.
func (r *Repository) MarkFailed(ctx context.Context, logID uuid.UUID, reason string) error {
	_, err := r.db.Exec(ctx, `
		UPDATE email_logs SET status = $2, error_message = $3
		WHERE id = $1`,
		logID, models.EmailLogStatusFailed, reason)
	return err
}
