// Package executor drives a single Taiko L2 block end-to-end over an EVM
// and state-database collaborator: pre-execution system calls, anchor
// validation, optimistic transaction skipping, DAO irregular state
// change, and bundle finalization.
package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/taikoxyz/taiko-geth-executor/consensus/anchor"
)

// StateDB is the narrow state-database surface the strategy needs: the
// go-ethereum vm.StateDB read/write capability used by the EVM itself,
// plus the finalize/root operations the strategy runs between
// transactions and at block end. *state.StateDB (go-ethereum's concrete
// state database) satisfies this directly.
type StateDB interface {
	vm.StateDB
	Finalise(deleteEmptyObjects bool)
	IntermediateRoot(deleteEmptyObjects bool) common.Hash
	GetLogs(txHash common.Hash, blockNumber uint64, blockHash common.Hash) []*types.Log
}

// EVM is the narrow capability the strategy needs from the external EVM
// collaborator: rearm its per-transaction context, and transact a single
// message. A Transact error distinguishes a transaction-validation
// failure (nonce, balance, intrinsic gas, signature — returned as the
// plain `error`) from an in-VM execution/revert outcome, which is
// reported instead on ExecutionResult.Err and still yields a receipt.
type EVM interface {
	Reset(txContext vm.TxContext, statedb vm.StateDB)
	Transact(msg *core.Message) (*core.ExecutionResult, error)
}

// SystemCaller performs the protocol's pre- and post-execution system
// calls: beacon-root/history-contract calls before any user transaction,
// and withdrawal/consolidation calls (EIP-7002/EIP-7251) after the last
// one.
type SystemCaller interface {
	ApplyPreExecutionChanges(header *types.Header, evm EVM, statedb StateDB) error
	ApplyPostExecutionChanges(header *types.Header, evm EVM, statedb StateDB) (requests []byte, err error)
}

// OnStateHook observes the state database after every committed write,
// installed once per executor lifetime.
type OnStateHook func(statedb StateDB)

// TxEnvOverride mutates a prepared message before it is handed to the EVM;
// installed by a caller that needs to override fee or access-list fields
// for a specific run (e.g. simulation, gas estimation).
type TxEnvOverride func(msg *core.Message)

// EnvExt carries the Taiko-specific fields the EVM collaborator needs
// alongside a standard transaction environment.
type EnvExt struct {
	IsAnchor    bool
	BlockNumber uint64
	ExtraData   []byte
}

// Input is everything the strategy needs to execute one block.
type Input struct {
	Header          *types.Header
	ParentHeader    *types.Header
	Transactions    types.Transactions
	Senders         []common.Address // parallel to Transactions; pre-recovered by the external signer
	Withdrawals     types.Withdrawals
	TotalDifficulty *big.Int
	AnchorData      anchor.TaikoData
	EnableAnchor    bool
	Optimistic      bool
	Override        TxEnvOverride
}

// Output is the strategy's result for one block.
type Output struct {
	Receipts       types.Receipts
	GasUsed        uint64
	SkippedIndices []int
	Requests       []byte
}
