// Package consensus implements the header-level validation rules the
// execution strategy requires be true of a block before it drives the
// EVM over it. The DAO irregular state change lives in the executor
// package.
package consensus

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/pkg/errors"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

var logger = log.New("module", "consensus")

// allowedFutureBlockTime bounds how far ahead of wall-clock a header's
// timestamp may be before it is rejected as implausible.
const allowedFutureBlockTime = 15 * time.Second

// ErrFutureBlock, ErrOlderBlockTime, and the rest are sentinel-style
// causes wrapped by VerifyHeader's returned error; callers compare with
// errors.Is.
var (
	ErrFutureBlock       = errors.New("block timestamp is in the future")
	ErrOlderBlockTime    = errors.New("header timestamp older than parent's")
	ErrInvalidNumber     = errors.New("block number does not equal parent's plus one")
	ErrInvalidDifficulty = errors.New("non-zero difficulty post-merge")
	ErrInvalidNonce      = errors.New("non-zero nonce post-merge")
	ErrInvalidUncleHash  = errors.New("non-empty uncle hash")
	ErrGasLimitTooHigh   = errors.New("gas limit exceeds protocol maximum")
	ErrGasUsedTooHigh    = errors.New("gas used exceeds gas limit")
	ErrExtraDataTooLong  = errors.New("extra data exceeds maximum size")
	ErrMissingWithdrawalsRoot = errors.New("withdrawals root required at or after Shanghai")
	ErrUnexpectedWithdrawalsRoot = errors.New("withdrawals root present before Shanghai")
	ErrMissingBlobFields = errors.New("blob gas fields required at or after Cancun")
	ErrUnexpectedBlobFields = errors.New("blob gas fields present before Cancun")
	ErrMissingRequestsHash = errors.New("requests hash required at or after Prague")
	ErrUnexpectedRequestsHash = errors.New("requests hash present before Prague")
	ErrUnexpectedBaseFee = errors.New("base fee present before London")
)

// VerifyHeader checks header against parent and the active fork schedule.
// The timestamp check is deliberately inclusive (header.Time >= parent.Time
// is enough): unlike canonical Ethereum, which requires a strict
// increase, Taiko allows consecutive blocks to share a timestamp.
func VerifyHeader(schedule *params.Schedule, header, parent *types.Header, totalDifficulty uint64, now time.Time) error {
	if header.Time > uint64(now.Add(allowedFutureBlockTime).Unix()) {
		return ErrFutureBlock
	}
	if header.Time < parent.Time {
		return ErrOlderBlockTime
	}
	if header.Number == nil || parent.Number == nil {
		return ErrInvalidNumber
	}
	if new(big.Int).Sub(header.Number, parent.Number).Cmp(big.NewInt(1)) != 0 {
		return ErrInvalidNumber
	}
	if header.Difficulty == nil || header.Difficulty.Sign() != 0 {
		return ErrInvalidDifficulty
	}
	if header.Nonce != (types.BlockNonce{}) {
		return ErrInvalidNonce
	}
	if header.UncleHash != types.EmptyUncleHash {
		return ErrInvalidUncleHash
	}
	if header.GasLimit > params.MaxGasLimit {
		return ErrGasLimitTooHigh
	}
	if header.GasUsed > header.GasLimit {
		return ErrGasUsedTooHigh
	}
	if uint64(len(header.Extra)) > params.MaximumExtraDataSize {
		return ErrExtraDataTooLong
	}

	spec := schedule.ActiveSpec(header.Number.Uint64(), header.Time, totalDifficulty)
	shanghai := schedule.IsActive(params.Shanghai, header.Number.Uint64(), header.Time, totalDifficulty)
	if shanghai && header.WithdrawalsHash == nil {
		return ErrMissingWithdrawalsRoot
	}
	if !shanghai && header.WithdrawalsHash != nil {
		return ErrUnexpectedWithdrawalsRoot
	}

	cancun := schedule.IsActive(params.Cancun, header.Number.Uint64(), header.Time, totalDifficulty)
	if cancun && (header.BlobGasUsed == nil || header.ExcessBlobGas == nil) {
		return ErrMissingBlobFields
	}
	if !cancun && (header.BlobGasUsed != nil || header.ExcessBlobGas != nil) {
		return ErrUnexpectedBlobFields
	}

	prague := schedule.IsActive(params.Prague, header.Number.Uint64(), header.Time, totalDifficulty)
	if prague && header.RequestsHash == nil {
		return ErrMissingRequestsHash
	}
	if !prague && header.RequestsHash != nil {
		return ErrUnexpectedRequestsHash
	}

	london := schedule.IsActive(params.London, header.Number.Uint64(), header.Time, totalDifficulty)
	if !london && header.BaseFee != nil {
		return ErrUnexpectedBaseFee
	}

	logger.Debug("header verified", "number", header.Number, "fork", spec)
	return nil
}
