package models

import "time"

// Admin is a wallet allowed to use the check-in override path. Addresses are
// stored lowercased so the lookup is case-insensitive.
type Admin struct {
	WalletAddress string    `json:"walletAddress" db:"wallet_address"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

type AddAdminRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
}
