package store

import (
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrSessionNotFound is returned when no session matches the reference.
	ErrSessionNotFound = errors.New("session not found")

	// ErrDuplicateSession is returned when a session with the same number
	// already exists.
	ErrDuplicateSession = errors.New("session number already exists")

	// ErrDuplicateAttendance is returned when the (wallet, session) pair
	// already has an attendance row. This is the store-level guard that
	// concurrent check-ins cannot bypass.
	ErrDuplicateAttendance = errors.New("attendance already recorded")

	// ErrStudentNotFound is returned when no student profile exists for a
	// wallet address.
	ErrStudentNotFound = errors.New("student not found")

	// ErrInvalidField is returned when a session patch names an unknown
	// field or carries a value of the wrong shape.
	ErrInvalidField = errors.New("invalid session field")
)

// mapPostgresError translates PostgreSQL constraint violations into sentinel
// errors. Anything unrecognized is wrapped with the error code for context.
func mapPostgresError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgerrcode.UniqueViolation:
		switch pgErr.ConstraintName {
		case "attendances_wallet_session_key":
			return ErrDuplicateAttendance
		case "sessions_session_number_key", "sessions_access_code_key":
			return ErrDuplicateSession
		}
		return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, err)

	case pgerrcode.ForeignKeyViolation:
		// Attendance insert referencing a session deleted mid-flight.
		return fmt.Errorf("%w: %s", ErrSessionNotFound, pgErr.Detail)

	default:
		return fmt.Errorf("postgres error [%s]: %s: %w", pgErr.Code, pgErr.Message, err)
	}
}
