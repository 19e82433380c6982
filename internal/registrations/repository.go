package registrations

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campushub/backend/internal/models"
)

var (
	// ErrAlreadyRegistered is returned when the (meetup, user) pair
	// already has a registration.
	ErrAlreadyRegistered = errors.New("already registered for this meetup")
	// ErrNotFound is returned when no registration matches.
	ErrNotFound = errors.New("registration not found")
)

const uniqueViolation = "23505"

// Repository handles registration persistence.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a registrations repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const regColumns = `id, meetup_id, user_id, user_name, user_email, token, is_checked_in, checked_in_at, created_at`

func scanRegistration(row interface{ Scan(dest ...any) error }) (*models.Registration, error) {
	var reg models.Registration
	err := row.Scan(&reg.ID, &reg.MeetupID, &reg.UserID, &reg.UserName, &reg.UserEmail,
		&reg.Token, &reg.IsCheckedIn, &reg.CheckedInAt, &reg.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &reg, nil
}

// Create inserts a registration. The UNIQUE(meetup_id, user_id)
// constraint maps to ErrAlreadyRegistered.
func (r *Repository) Create(ctx context.Context, reg *models.Registration) error {
	const q = `INSERT INTO registrations (meetup_id, user_id, user_name, user_email, token)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_checked_in, checked_in_at, created_at`
	err := r.pool.QueryRow(ctx, q, reg.MeetupID, reg.UserID, reg.UserName, reg.UserEmail, reg.Token).
		Scan(&reg.ID, &reg.IsCheckedIn, &reg.CheckedInAt, &reg.CreatedAt)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ErrAlreadyRegistered
	}
	return err
}

// GetByID returns a registration by ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// GetByToken returns a registration by its ticket token.
func (r *Repository) GetByToken(ctx context.Context, token string) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE token = $1`, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// GetByMeetupAndUser returns the caller's registration for a meetup.
func (r *Repository) GetByMeetupAndUser(ctx context.Context, meetupID, userID uuid.UUID) (*models.Registration, error) {
	reg, err := scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE meetup_id = $1 AND user_id = $2`, meetupID, userID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// ListByUser returns all registrations for a user.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Registration, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var list []models.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *reg)
	}
	return list, rows.Err()
}

// ListByMeetup returns one page of registrations for a meetup joined
// with the registrant's profile, newest first, optionally filtered by a
// case-insensitive search over name and email. Also returns the total
// row count for the filter.
func (r *Repository) ListByMeetup(ctx context.Context, meetupID uuid.UUID, search string, limit, offset int) ([]models.AttendeeRow, int, error) {
	pattern := "%" + search + "%"
	var total int
	err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM registrations
		 WHERE meetup_id = $1 AND (user_name ILIKE $2 OR user_email ILIKE $2)`,
		meetupID, pattern).Scan(&total)
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT r.id, r.meetup_id, r.user_id, r.user_name, r.user_email, r.token,
			r.is_checked_in, r.checked_in_at, r.created_at,
			COALESCE(u.college,''), COALESCE(u.skills,''), COALESCE(u.avatar_url,'')
		 FROM registrations r
		 JOIN users u ON u.id = r.user_id
		 WHERE r.meetup_id = $1 AND (r.user_name ILIKE $2 OR r.user_email ILIKE $2)
		 ORDER BY r.created_at DESC
		 LIMIT $3 OFFSET $4`,
		meetupID, pattern, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.AttendeeRow
	for rows.Next() {
		var row models.AttendeeRow
		if err := rows.Scan(&row.ID, &row.MeetupID, &row.UserID, &row.UserName, &row.UserEmail,
			&row.Token, &row.IsCheckedIn, &row.CheckedInAt, &row.CreatedAt,
			&row.College, &row.Skills, &row.AvatarURL); err != nil {
			return nil, 0, err
		}
		list = append(list, row)
	}
	return list, total, rows.Err()
}

// CountByMeetup returns total registrations and checked-in count for a meetup.
func (r *Repository) CountByMeetup(ctx context.Context, meetupID uuid.UUID) (total, checkedIn int, err error) {
	err = r.pool.QueryRow(ctx,
		`SELECT COUNT(*), COUNT(checked_in_at) FROM registrations WHERE meetup_id = $1`,
		meetupID).Scan(&total, &checkedIn)
	return total, checkedIn, err
}

// ToggleCheckIn flips is_checked_in and sets checked_in_at in one
// statement so the two fields never disagree. Concurrent toggles are
// last-write-wins.
func (r *Repository) ToggleCheckIn(ctx context.Context, id uuid.UUID) (*models.Registration, error) {
	const q = `UPDATE registrations SET
			is_checked_in = NOT is_checked_in,
			checked_in_at = CASE WHEN is_checked_in THEN NULL ELSE NOW() END
		WHERE id = $1
		RETURNING ` + regColumns
	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return reg, err
}

// CheckInByToken marks the registration for a scanned token as checked
// in. Returns the registration and whether it was already checked in
// before this call (a repeated scan is not an error).
func (r *Repository) CheckInByToken(ctx context.Context, meetupID uuid.UUID, token string) (*models.Registration, bool, error) {
	const q = `UPDATE registrations SET is_checked_in = TRUE, checked_in_at = NOW()
		WHERE meetup_id = $1 AND token = $2 AND NOT is_checked_in
		RETURNING ` + regColumns
	reg, err := scanRegistration(r.pool.QueryRow(ctx, q, meetupID, token))
	if err == nil {
		return reg, false, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}
	// Either an unknown token or a repeated scan.
	reg, err = scanRegistration(r.pool.QueryRow(ctx,
		`SELECT `+regColumns+` FROM registrations WHERE meetup_id = $1 AND token = $2`, meetupID, token))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, ErrNotFound
	}
	if err != nil {
		return nil, false, err
	}
	return reg, true, nil
}
