package models

import (
	"time"

	"github.com/google/uuid"
)

// Attendance is one successful check-in. A row only exists once the on-chain
// mint has been confirmed, so the ledger linkage fields are always populated.
type Attendance struct {
	ID              uuid.UUID `json:"id" db:"id"`
	WalletAddress   string    `json:"walletAddress" db:"wallet_address"`
	SessionID       int64     `json:"sessionId" db:"session_id"`
	TokenID         string    `json:"tokenId" db:"token_id"`
	TokenURI        string    `json:"tokenUri" db:"token_uri"`
	TxHash          string    `json:"txHash" db:"tx_hash"`
	ContractAddress string    `json:"contractAddress" db:"contract_address"`
	ChainID         string    `json:"chainId" db:"chain_id"`
	CreatedAt       time.Time `json:"timestamp" db:"created_at"`

	Session *Session `json:"session,omitempty"`
}

type CheckInRequest struct {
	WalletAddress string `json:"walletAddress" binding:"required"`
	SessionID     string `json:"sessionId" binding:"required"`
	AdminWallet   string `json:"adminWallet"`
}
