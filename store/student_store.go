package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendance-backend/models"
)

// StudentStore holds optional student profiles keyed by wallet address.
type StudentStore struct {
	pool *pgxpool.Pool
}

func NewStudentStore(pool *pgxpool.Pool) *StudentStore {
	return &StudentStore{pool: pool}
}

// Upsert creates or updates the profile for a wallet.
func (s *StudentStore) Upsert(ctx context.Context, student *models.Student) error {
	if student.ID == uuid.Nil {
		student.ID = uuid.New()
	}
	student.WalletAddress = strings.ToLower(student.WalletAddress)

	query := `
		INSERT INTO students (id, wallet_address, name, student_id, email)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (wallet_address) DO UPDATE SET
			name = EXCLUDED.name,
			student_id = EXCLUDED.student_id,
			email = EXCLUDED.email
		RETURNING id, created_at
	`

	err := s.pool.QueryRow(ctx, query,
		student.ID,
		student.WalletAddress,
		student.Name,
		student.StudentID,
		student.Email,
	).Scan(&student.ID, &student.CreatedAt)

	if err != nil {
		return mapPostgresError(err)
	}

	return nil
}

func (s *StudentStore) GetByWallet(ctx context.Context, wallet string) (*models.Student, error) {
	query := `
		SELECT id, wallet_address, name, student_id, email, created_at
		FROM students
		WHERE wallet_address = $1
	`

	var student models.Student
	err := s.pool.QueryRow(ctx, query, strings.ToLower(wallet)).Scan(
		&student.ID,
		&student.WalletAddress,
		&student.Name,
		&student.StudentID,
		&student.Email,
		&student.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return &student, nil
}

// GetByWallets returns profiles for the given wallets keyed by lowercased
// address. Wallets with no profile are simply absent from the map.
func (s *StudentStore) GetByWallets(ctx context.Context, wallets []string) (map[string]models.Student, error) {
	lowered := make([]string, len(wallets))
	for i, w := range wallets {
		lowered[i] = strings.ToLower(w)
	}

	query := `
		SELECT id, wallet_address, name, student_id, email, created_at
		FROM students
		WHERE wallet_address = ANY($1)
	`

	rows, err := s.pool.Query(ctx, query, lowered)
	if err != nil {
		return nil, fmt.Errorf("failed to get students: %w", err)
	}
	defer rows.Close()

	students := make(map[string]models.Student)
	for rows.Next() {
		var student models.Student
		err := rows.Scan(
			&student.ID,
			&student.WalletAddress,
			&student.Name,
			&student.StudentID,
			&student.Email,
			&student.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students[student.WalletAddress] = student
	}

	return students, rows.Err()
}
