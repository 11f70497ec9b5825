package store

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestMapPostgresError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{
			name: "nil passes through",
			err:  nil,
			want: nil,
		},
		{
			name: "non-postgres error passes through",
			err:  errors.New("boom"),
			want: errors.New("boom"),
		},
		{
			name: "attendance unique violation",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "attendances_wallet_session_key"},
			want: ErrDuplicateAttendance,
		},
		{
			name: "session number unique violation",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "sessions_session_number_key"},
			want: ErrDuplicateSession,
		},
		{
			name: "access code unique violation",
			err:  &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "sessions_access_code_key"},
			want: ErrDuplicateSession,
		},
		{
			name: "foreign key violation maps to session not found",
			err:  &pgconn.PgError{Code: pgerrcode.ForeignKeyViolation, Detail: "session 9 is gone"},
			want: ErrSessionNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mapPostgresError(tt.err)
			if tt.want == nil {
				assert.NoError(t, got)
				return
			}

			var sentinel error
			switch {
			case errors.Is(tt.want, ErrDuplicateAttendance),
				errors.Is(tt.want, ErrDuplicateSession),
				errors.Is(tt.want, ErrSessionNotFound):
				sentinel = tt.want
			}

			if sentinel != nil {
				assert.ErrorIs(t, got, sentinel)
			} else {
				assert.EqualError(t, got, tt.want.Error())
			}
		})
	}
}

func TestMapPostgresErrorWrapsUnknownConstraint(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "mystery_key"}

	got := mapPostgresError(pgErr)
	assert.NotErrorIs(t, got, ErrDuplicateAttendance)
	assert.NotErrorIs(t, got, ErrDuplicateSession)
	assert.Contains(t, got.Error(), "mystery_key")

	var unwrapped *pgconn.PgError
	assert.True(t, errors.As(got, &unwrapped))
}

func TestMapPostgresErrorWrapsErrorsDeepInChain(t *testing.T) {
	pgErr := &pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "attendances_wallet_session_key"}
	wrapped := fmt.Errorf("insert failed: %w", pgErr)

	assert.ErrorIs(t, mapPostgresError(wrapped), ErrDuplicateAttendance)
}
