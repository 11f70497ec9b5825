package checkin

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"attendance-backend/models"
	"attendance-backend/store"
)

// AttendanceSink is the slice of the attendance store the coordinator writes
// through.
type AttendanceSink interface {
	Exists(ctx context.Context, wallet string, sessionID int64) (bool, error)
	Insert(ctx context.Context, att *models.Attendance) error
}

// AdminRegistry answers whether a wallet may use the override path.
type AdminRegistry interface {
	IsAdmin(ctx context.Context, wallet string) (bool, error)
}

// MintResult is the finalized outcome of a ledger mint.
type MintResult struct {
	TokenID         *big.Int
	TxHash          string
	ContractAddress string
	ChainID         string
}

// LedgerGateway is the injected capability for the external ledger. Mint
// blocks until the transaction is finalized or fails; implementations impose
// their own deadline so a hung ledger surfaces as an error rather than a
// stuck request.
type LedgerGateway interface {
	NextTokenID(ctx context.Context) (*big.Int, error)
	Mint(ctx context.Context, recipient, tokenURI string) (*MintResult, error)
}

// Coordinator decides check-in eligibility and performs the mint-then-record
// sequence. It is the only component that spans both stores and the ledger.
//
// Mutual exclusion is delegated entirely to the attendance store's unique
// constraint: concurrent check-ins for the same pair may both reach the mint,
// but at most one insert succeeds. The loser leaves an orphan token on-chain,
// which is logged for manual reconciliation rather than rolled back (on-chain
// mints cannot be undone).
type Coordinator struct {
	lifecycle   *Lifecycle
	attendances AttendanceSink
	admins      AdminRegistry
	ledger      LedgerGateway
	now         func() time.Time
	log         *zap.Logger
}

func NewCoordinator(lifecycle *Lifecycle, attendances AttendanceSink, admins AdminRegistry, ledger LedgerGateway, log *zap.Logger) *Coordinator {
	return &Coordinator{
		lifecycle:   lifecycle,
		attendances: attendances,
		admins:      admins,
		ledger:      ledger,
		now:         time.Now,
		log:         log,
	}
}

// CheckIn records attendance for wallet at the referenced session, minting
// the credential first and committing the local row only after the mint is
// confirmed. A non-empty adminWallet requests the override path: it must
// belong to a registered admin, and it bypasses the active-flag and
// time-window checks but never the uniqueness guarantee.
func (c *Coordinator) CheckIn(ctx context.Context, wallet, sessionRef, adminWallet string) (*models.Attendance, error) {
	session, err := c.lifecycle.Resolve(ctx, sessionRef)
	if err != nil {
		return nil, err
	}

	// Pre-check only: the unique index catches the race where two requests
	// pass this concurrently.
	exists, err := c.attendances.Exists(ctx, wallet, session.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing attendance: %w", err)
	}
	if exists {
		return nil, ErrAlreadyCheckedIn
	}

	override := false
	if adminWallet != "" {
		isAdmin, err := c.admins.IsAdmin(ctx, adminWallet)
		if err != nil {
			return nil, fmt.Errorf("failed to verify admin: %w", err)
		}
		if !isAdmin {
			return nil, ErrNotAuthorized
		}
		override = true
	}

	if !override {
		if !session.IsActive {
			return nil, ErrSessionNotActive
		}
		if !WindowOpen(session, c.now()) {
			return nil, ErrSessionWindowClosed
		}
	}

	if c.ledger == nil {
		return nil, ErrConfigMissing
	}

	// Best-effort pre-read: used if the mint result itself carries no token
	// id. Failure here is not fatal.
	nextID, err := c.ledger.NextTokenID(ctx)
	if err != nil {
		c.log.Warn("failed to read next token id before mint", zap.Error(err))
	}

	tokenURI := buildTokenURI(session, wallet)

	result, err := c.ledger.Mint(ctx, wallet, tokenURI)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMintFailed, err)
	}

	tokenID := result.TokenID
	if tokenID == nil {
		tokenID = nextID
	}
	tokenIDStr := ""
	if tokenID != nil {
		tokenIDStr = tokenID.String()
	}

	att := &models.Attendance{
		ID:              uuid.New(),
		WalletAddress:   wallet,
		SessionID:       session.ID,
		TokenID:         tokenIDStr,
		TokenURI:        tokenURI,
		TxHash:          result.TxHash,
		ContractAddress: result.ContractAddress,
		ChainID:         result.ChainID,
	}

	if err := c.attendances.Insert(ctx, att); err != nil {
		if errors.Is(err, store.ErrDuplicateAttendance) {
			// Lost the uniqueness race after a confirmed mint: the token
			// exists on-chain with no local row. Log everything an operator
			// needs to reconcile it by hand.
			c.log.Error("orphan mint: lost uniqueness race after confirmed mint",
				zap.String("wallet_address", wallet),
				zap.Int64("session_id", session.ID),
				zap.Int("session_number", session.SessionNumber),
				zap.String("token_id", tokenIDStr),
				zap.String("tx_hash", result.TxHash))
			return nil, ErrAlreadyCheckedIn
		}
		return nil, fmt.Errorf("failed to record attendance: %w", err)
	}
	att.Session = session

	c.log.Info("checked in",
		zap.String("wallet_address", wallet),
		zap.Int("session_number", session.SessionNumber),
		zap.String("token_id", tokenIDStr),
		zap.String("tx_hash", result.TxHash),
		zap.Bool("admin_override", override))

	return att, nil
}
