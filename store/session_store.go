package store

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendance-backend/models"
)

const sessionColumns = `id, session_number, date, start_time, end_time, is_active, capacity, access_code, qr_code, created_at`

// SessionStore provides access to session records.
type SessionStore struct {
	pool *pgxpool.Pool
}

func NewSessionStore(pool *pgxpool.Pool) *SessionStore {
	return &SessionStore{pool: pool}
}

// Create inserts a new session. The unique constraint on session_number is
// the authoritative guard against duplicate ordinals.
func (s *SessionStore) Create(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (session_number, date, start_time, end_time, is_active, capacity, access_code, qr_code)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		session.SessionNumber,
		session.Date,
		session.StartTime,
		session.EndTime,
		session.IsActive,
		session.Capacity,
		session.AccessCode,
		session.QRCode,
	).Scan(&session.ID, &session.CreatedAt)

	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (s *SessionStore) GetByID(ctx context.Context, id int64) (*models.Session, error) {
	return s.getWhere(ctx, "id = $1", id)
}

func (s *SessionStore) GetByNumber(ctx context.Context, number int) (*models.Session, error) {
	return s.getWhere(ctx, "session_number = $1", number)
}

func (s *SessionStore) GetByAccessCode(ctx context.Context, code string) (*models.Session, error) {
	return s.getWhere(ctx, "access_code = $1", code)
}

func (s *SessionStore) getWhere(ctx context.Context, where string, arg any) (*models.Session, error) {
	query := `SELECT ` + sessionColumns + `,
		(SELECT COUNT(*) FROM attendances a WHERE a.session_id = sessions.id)
		FROM sessions WHERE ` + where

	var session models.Session
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&session.ID,
		&session.SessionNumber,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.IsActive,
		&session.Capacity,
		&session.AccessCode,
		&session.QRCode,
		&session.CreatedAt,
		&session.AttendeeCount,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return &session, nil
}

// List returns all sessions with attendee counts, newest ordinal first.
func (s *SessionStore) List(ctx context.Context) ([]models.Session, error) {
	query := `
		SELECT ` + sessionColumns + `,
			(SELECT COUNT(*) FROM attendances a WHERE a.session_id = sessions.id)
		FROM sessions
		ORDER BY session_number DESC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []models.Session
	for rows.Next() {
		var session models.Session
		err := rows.Scan(
			&session.ID,
			&session.SessionNumber,
			&session.Date,
			&session.StartTime,
			&session.EndTime,
			&session.IsActive,
			&session.Capacity,
			&session.AccessCode,
			&session.QRCode,
			&session.CreatedAt,
			&session.AttendeeCount,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, session)
	}

	return sessions, rows.Err()
}

// allowedPatchFields maps JSON patch keys to their columns. Anything else in
// the patch body is rejected.
var allowedPatchFields = map[string]string{
	"sessionNumber": "session_number",
	"date":          "date",
	"startTime":     "start_time",
	"endTime":       "end_time",
	"isActive":      "is_active",
	"capacity":      "capacity",
	"accessCode":    "access_code",
	"qrCode":        "qr_code",
}

// Update applies a partial patch to a session and returns the updated row.
func (s *SessionStore) Update(ctx context.Context, id int64, patch map[string]any) (*models.Session, error) {
	if len(patch) == 0 {
		return s.GetByID(ctx, id)
	}

	query := "UPDATE sessions SET "
	args := []any{}
	argIndex := 1

	for key, value := range patch {
		column, ok := allowedPatchFields[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidField, key)
		}
		value, err := normalizePatchValue(column, value)
		if err != nil {
			return nil, err
		}
		if argIndex > 1 {
			query += ", "
		}
		query += column + " = $" + strconv.Itoa(argIndex)
		args = append(args, value)
		argIndex++
	}

	query += " WHERE id = $" + strconv.Itoa(argIndex) + " RETURNING " + sessionColumns
	args = append(args, id)

	var session models.Session
	err := s.pool.QueryRow(ctx, query, args...).Scan(
		&session.ID,
		&session.SessionNumber,
		&session.Date,
		&session.StartTime,
		&session.EndTime,
		&session.IsActive,
		&session.Capacity,
		&session.AccessCode,
		&session.QRCode,
		&session.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, mapPostgresError(err)
	}

	return &session, nil
}

// normalizePatchValue coerces JSON-decoded patch values into types pgx can
// bind against the column: RFC 3339 strings for the timestamps, integers for
// the numeric fields.
func normalizePatchValue(column string, value any) (any, error) {
	switch column {
	case "start_time", "end_time":
		if s, ok := value.(string); ok {
			parsed, err := time.Parse(time.RFC3339, s)
			if err != nil {
				return nil, fmt.Errorf("%w: %s is not a timestamp: %v", ErrInvalidField, column, err)
			}
			return parsed, nil
		}
	case "session_number", "capacity":
		if f, ok := value.(float64); ok {
			return int(f), nil
		}
	}
	return value, nil
}

// SetActive flips the active flag and returns the updated session.
func (s *SessionStore) SetActive(ctx context.Context, id int64, active bool) (*models.Session, error) {
	return s.Update(ctx, id, map[string]any{"isActive": active})
}

// Delete removes a session. Attendance rows cascade at the schema level.
func (s *SessionStore) Delete(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, "DELETE FROM sessions WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSessionNotFound
	}
	return nil
}

// DeactivateExpired flips is_active off for every session whose window has
// closed. Called in bulk before list and stats reads.
func (s *SessionStore) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		"UPDATE sessions SET is_active = FALSE WHERE is_active = TRUE AND end_time < $1", now)
	if err != nil {
		return 0, fmt.Errorf("failed to deactivate expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (s *SessionStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sessions").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count sessions: %w", err)
	}
	return count, nil
}

func (s *SessionStore) ActiveCount(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM sessions WHERE is_active = TRUE").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count active sessions: %w", err)
	}
	return count, nil
}

// MaxSessionNumber returns the highest ordinal in use, 0 when there are none.
func (s *SessionStore) MaxSessionNumber(ctx context.Context) (int, error) {
	var max int
	if err := s.pool.QueryRow(ctx, "SELECT COALESCE(MAX(session_number), 0) FROM sessions").Scan(&max); err != nil {
		return 0, fmt.Errorf("failed to get max session number: %w", err)
	}
	return max, nil
}
