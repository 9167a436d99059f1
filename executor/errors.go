package executor

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// Kind is one of the five fatal error kinds the strategy and facade can
// surface. Non-fatal transaction errors never reach this type: they are
// absorbed into the skipped-indices list (optimistic mode) or dropped
// silently (the strict user-tx-invalidation rule).
type Kind int

const (
	KindAnchorValidation Kind = iota
	KindTransactionGasLimitMoreThanAvailable
	KindEVM
	KindIncrementBalanceFailed
	KindConsensusPostExec
)

func (k Kind) String() string {
	switch k {
	case KindAnchorValidation:
		return "AnchorValidation"
	case KindTransactionGasLimitMoreThanAvailable:
		return "TransactionGasLimitMoreThanAvailable"
	case KindEVM:
		return "EVM"
	case KindIncrementBalanceFailed:
		return "IncrementBalanceFailed"
	case KindConsensusPostExec:
		return "ConsensusPostExec"
	default:
		return "Unknown"
	}
}

// Error is the strategy's single closed error type, wrapping the
// underlying cause (if any) via pkg/errors so the original context is
// never lost.
type Error struct {
	Kind      Kind
	TxHash    common.Hash
	Requested uint64
	Available uint64
	cause     error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindTransactionGasLimitMoreThanAvailable:
		return fmt.Sprintf("%s: requested %d, available %d", e.Kind, e.Requested, e.Available)
	case KindEVM:
		return fmt.Sprintf("%s: tx %s: %v", e.Kind, e.TxHash, e.cause)
	default:
		if e.cause != nil {
			return fmt.Sprintf("%s: %v", e.Kind, e.cause)
		}
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error { return e.cause }

func newAnchorValidationError(cause error) *Error {
	return &Error{Kind: KindAnchorValidation, cause: errors.Wrap(cause, "anchor validation")}
}

func newGasLimitError(requested, available uint64) *Error {
	return &Error{Kind: KindTransactionGasLimitMoreThanAvailable, Requested: requested, Available: available}
}

func newEVMError(hash common.Hash, cause error) *Error {
	return &Error{Kind: KindEVM, TxHash: hash, cause: errors.Wrap(cause, "evm transact")}
}

func newBalanceIncrementError(cause error) *Error {
	return &Error{Kind: KindIncrementBalanceFailed, cause: errors.Wrap(cause, "balance increment")}
}

func newConsensusPostExecError(cause error) *Error {
	return &Error{Kind: KindConsensusPostExec, cause: errors.Wrap(cause, "post-execution consensus check")}
}
