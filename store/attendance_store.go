package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"attendance-backend/models"
)

// AttendanceStore provides access to attendance records. Rows are written
// exactly once per successful check-in and never updated.
type AttendanceStore struct {
	pool *pgxpool.Pool
}

func NewAttendanceStore(pool *pgxpool.Pool) *AttendanceStore {
	return &AttendanceStore{pool: pool}
}

// Insert writes a fully populated attendance row. A unique-index violation on
// (wallet, session) surfaces as ErrDuplicateAttendance.
func (s *AttendanceStore) Insert(ctx context.Context, att *models.Attendance) error {
	query := `
		INSERT INTO attendances (id, wallet_address, session_id, token_id, token_uri, tx_hash, contract_address, chain_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at
	`

	err := s.pool.QueryRow(ctx, query,
		att.ID,
		att.WalletAddress,
		att.SessionID,
		att.TokenID,
		att.TokenURI,
		att.TxHash,
		att.ContractAddress,
		att.ChainID,
	).Scan(&att.CreatedAt)

	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

// Exists reports whether the (wallet, session) pair already checked in. This
// is the coordinator's pre-check; the unique index remains authoritative.
func (s *AttendanceStore) Exists(ctx context.Context, wallet string, sessionID int64) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM attendances WHERE lower(wallet_address) = lower($1) AND session_id = $2)",
		wallet, sessionID,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance: %w", err)
	}
	return exists, nil
}

// ListBySession returns a session's roster in check-in order.
func (s *AttendanceStore) ListBySession(ctx context.Context, sessionID int64) ([]models.Attendance, error) {
	query := `
		SELECT id, wallet_address, session_id, token_id, token_uri, tx_hash, contract_address, chain_id, created_at
		FROM attendances
		WHERE session_id = $1
		ORDER BY created_at ASC
	`

	rows, err := s.pool.Query(ctx, query, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []models.Attendance
	for rows.Next() {
		var att models.Attendance
		err := rows.Scan(
			&att.ID,
			&att.WalletAddress,
			&att.SessionID,
			&att.TokenID,
			&att.TokenURI,
			&att.TxHash,
			&att.ContractAddress,
			&att.ChainID,
			&att.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

// List returns attendance history joined with session details, newest first.
// An empty wallet returns every record.
func (s *AttendanceStore) List(ctx context.Context, wallet string) ([]models.Attendance, error) {
	query := `
		SELECT a.id, a.wallet_address, a.session_id, a.token_id, a.token_uri, a.tx_hash, a.contract_address, a.chain_id, a.created_at,
			s.id, s.session_number, s.date, s.start_time, s.end_time, s.is_active, s.capacity, s.access_code, s.qr_code, s.created_at
		FROM attendances a
		JOIN sessions s ON a.session_id = s.id
		WHERE $1 = '' OR lower(a.wallet_address) = lower($1)
		ORDER BY a.created_at DESC
	`

	rows, err := s.pool.Query(ctx, query, wallet)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendances: %w", err)
	}
	defer rows.Close()

	var attendances []models.Attendance
	for rows.Next() {
		var att models.Attendance
		var session models.Session
		err := rows.Scan(
			&att.ID,
			&att.WalletAddress,
			&att.SessionID,
			&att.TokenID,
			&att.TokenURI,
			&att.TxHash,
			&att.ContractAddress,
			&att.ChainID,
			&att.CreatedAt,
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
			return nil, fmt.Errorf("failed to scan attendance: %w", err)
		}
		att.Session = &session
		attendances = append(attendances, att)
	}

	return attendances, rows.Err()
}

func (s *AttendanceStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(*) FROM attendances").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count attendances: %w", err)
	}
	return count, nil
}

// DistinctWalletCount counts unique participants across all sessions.
func (s *AttendanceStore) DistinctWalletCount(ctx context.Context) (int, error) {
	var count int
	if err := s.pool.QueryRow(ctx, "SELECT COUNT(DISTINCT lower(wallet_address)) FROM attendances").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count distinct wallets: %w", err)
	}
	return count, nil
}
