package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"attendance-backend/models"
)

// AdminStore is the administrator registry, keyed case-insensitively on
// wallet address.
type AdminStore struct {
	pool *pgxpool.Pool
}

func NewAdminStore(pool *pgxpool.Pool) *AdminStore {
	return &AdminStore{pool: pool}
}

func (s *AdminStore) IsAdmin(ctx context.Context, wallet string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx,
		"SELECT EXISTS(SELECT 1 FROM admins WHERE wallet_address = $1)",
		strings.ToLower(wallet),
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check admin: %w", err)
	}
	return exists, nil
}

// Add registers an admin wallet. Adding an existing admin is a no-op.
func (s *AdminStore) Add(ctx context.Context, wallet string) error {
	_, err := s.pool.Exec(ctx,
		"INSERT INTO admins (wallet_address) VALUES ($1) ON CONFLICT (wallet_address) DO NOTHING",
		strings.ToLower(wallet),
	)
	if err != nil {
		return fmt.Errorf("failed to add admin: %w", err)
	}
	return nil
}

func (s *AdminStore) List(ctx context.Context) ([]models.Admin, error) {
	rows, err := s.pool.Query(ctx, "SELECT wallet_address, created_at FROM admins ORDER BY created_at ASC")
	if err != nil {
		return nil, fmt.Errorf("failed to list admins: %w", err)
	}
	defer rows.Close()

	var admins []models.Admin
	for rows.Next() {
		var admin models.Admin
		if err := rows.Scan(&admin.WalletAddress, &admin.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan admin: %w", err)
		}
		admins = append(admins, admin)
	}

	return admins, rows.Err()
}
