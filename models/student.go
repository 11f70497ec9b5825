package models

import (
	"time"

	"github.com/google/uuid"
)

// Student is an optional profile for a wallet, used to enrich roster exports.
type Student struct {
	ID            uuid.UUID `json:"id" db:"id"`
	WalletAddress string    `json:"walletAddress" db:"wallet_address"`
	Name          string    `json:"name" db:"name"`
	StudentID     *string   `json:"studentId" db:"student_id"`
	Email         *string   `json:"email" db:"email"`
	CreatedAt     time.Time `json:"createdAt" db:"created_at"`
}

type UpsertStudentRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	Name          string `json:"name" binding:"required"`
	StudentID     string `json:"studentId"`
	Email         string `json:"email"`
}
