package contracts

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"go.uber.org/zap"

	"attendance-backend/checkin"
)

// AttendanceNFT ABI - only the functions we need
const attendanceNFTABI = `[
	{"inputs":[{"internalType":"address","name":"to","type":"address"},{"internalType":"string","name":"tokenURI","type":"string"}],"name":"mintAttendance","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
	{"inputs":[],"name":"nextTokenId","outputs":[{"internalType":"uint256","name":"","type":"uint256"}],"stateMutability":"view","type":"function"}
]`

// ErrMissingConfig is returned by New when a required connection parameter is
// absent. main treats this as "run without a ledger" and the coordinator
// reports the condition on check-in instead.
var ErrMissingConfig = errors.New("contract address or minter key not configured")

// Config holds the minter-side contract settings.
type Config struct {
	ContractAddress string
	MinterKey       string
	MintTimeout     time.Duration
}

// Complete reports whether every required parameter is set.
func (c Config) Complete() bool {
	return c.ContractAddress != "" && c.MinterKey != ""
}

// AttendanceNFT wraps the attendance credential contract. It implements
// checkin.LedgerGateway.
type AttendanceNFT struct {
	client      *ethclient.Client
	address     common.Address
	abi         abi.ABI
	key         *ecdsa.PrivateKey
	mintTimeout time.Duration
	log         *zap.Logger

	chainID *big.Int // fetched lazily on first mint
}

// NewAttendanceNFT creates a new AttendanceNFT instance. No network call is
// made here; the chain id is resolved on first use.
func NewAttendanceNFT(client *ethclient.Client, cfg Config, log *zap.Logger) (*AttendanceNFT, error) {
	if !cfg.Complete() {
		return nil, ErrMissingConfig
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.MinterKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse minter key: %w", err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(attendanceNFTABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse attendance NFT ABI: %w", err)
	}

	mintTimeout := cfg.MintTimeout
	if mintTimeout <= 0 {
		mintTimeout = 60 * time.Second
	}

	return &AttendanceNFT{
		client:      client,
		address:     common.HexToAddress(cfg.ContractAddress),
		abi:         parsedABI,
		key:         key,
		mintTimeout: mintTimeout,
		log:         log,
	}, nil
}

// NextTokenID calls the nextTokenId() view function on the contract.
func (c *AttendanceNFT) NextTokenID(ctx context.Context) (*big.Int, error) {
	callData, err := c.abi.Pack("nextTokenId")
	if err != nil {
		return nil, fmt.Errorf("failed to pack call data: %w", err)
	}

	result, err := c.client.CallContract(ctx, ethereum.CallMsg{
		To:   &c.address,
		Data: callData,
	}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to call nextTokenId: %w", err)
	}

	var tokenID *big.Int
	err = c.abi.UnpackIntoInterface(&tokenID, "nextTokenId", result)
	if err != nil {
		return nil, fmt.Errorf("failed to unpack result: %w", err)
	}

	return tokenID, nil
}

// Mint submits mintAttendance(to, tokenURI) signed by the minter key and
// blocks until the transaction is mined or the mint timeout elapses. A mined
// but reverted transaction is an error.
func (c *AttendanceNFT) Mint(ctx context.Context, recipient, tokenURI string) (*checkin.MintResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.mintTimeout)
	defer cancel()

	chainID, err := c.resolveChainID(ctx)
	if err != nil {
		return nil, err
	}

	opts, err := bind.NewKeyedTransactorWithChainID(c.key, chainID)
	if err != nil {
		return nil, fmt.Errorf("failed to create transactor: %w", err)
	}
	opts.Context = ctx

	contract := bind.NewBoundContract(c.address, c.abi, c.client, c.client, c.client)

	tx, err := contract.Transact(opts, "mintAttendance", common.HexToAddress(recipient), tokenURI)
	if err != nil {
		return nil, fmt.Errorf("failed to submit mint transaction: %w", err)
	}

	c.log.Info("submitted mint transaction",
		zap.String("recipient", recipient),
		zap.String("tx_hash", tx.Hash().Hex()))

	receipt, err := c.waitMined(ctx, tx.Hash())
	if err != nil {
		return nil, err
	}

	if receipt.Status != types.ReceiptStatusSuccessful {
		return nil, fmt.Errorf("mint transaction %s reverted", tx.Hash().Hex())
	}

	return &checkin.MintResult{
		TokenID:         tokenIDFromReceipt(receipt),
		TxHash:          tx.Hash().Hex(),
		ContractAddress: c.address.Hex(),
		ChainID:         chainID.String(),
	}, nil
}

func (c *AttendanceNFT) resolveChainID(ctx context.Context) (*big.Int, error) {
	if c.chainID != nil {
		return c.chainID, nil
	}

	chainID, err := c.client.ChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get chain id: %w", err)
	}

	c.chainID = chainID
	return chainID, nil
}

// waitMined polls for the transaction receipt with exponential backoff until
// the context deadline.
func (c *AttendanceNFT) waitMined(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	var receipt *types.Receipt

	operation := func() error {
		r, err := c.client.TransactionReceipt(ctx, txHash)
		if err != nil {
			return err
		}
		receipt = r
		return nil
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = time.Second
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = 0 // bounded by ctx, not elapsed time

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("timed out waiting for mint transaction %s: %w", txHash.Hex(), err)
	}

	return receipt, nil
}

// tokenIDFromReceipt extracts the minted token id from the ERC-721 Transfer
// log. Returns nil when no such log is present, in which case the caller
// falls back to the pre-read nextTokenId.
func tokenIDFromReceipt(receipt *types.Receipt) *big.Int {
	transferTopic := common.HexToHash("0xddf252ad1be2c89b69c2b068fc378daa952ba7f163c4a11628f55a4df523b3ef")

	for _, logEntry := range receipt.Logs {
		if len(logEntry.Topics) == 4 && logEntry.Topics[0] == transferTopic {
			return new(big.Int).SetBytes(logEntry.Topics[3].Bytes())
		}
	}
	return nil
}
