package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

// SystemCallExecutor is the default SystemCaller: it runs the EIP-4788
// beacon-root call and the EIP-2935 history-contract call before any user
// transaction, the way go-ethereum's own BlockChain.processBeaconBlockRoot
// does it — as an ordinary (but unsigned, unmetered) message against the
// same EVM/state pair the block's transactions use.
type SystemCallExecutor struct{}

func (SystemCallExecutor) ApplyPreExecutionChanges(header *types.Header, evmCollab EVM, statedb StateDB) error {
	if header.ParentBeaconRoot != nil {
		if err := callSystemContract(evmCollab, statedb, params.BeaconRootsAddress, header.ParentBeaconRoot[:]); err != nil {
			return err
		}
	}
	if statedb.Exist(params.HistoryStorageAddress) {
		if err := callSystemContract(evmCollab, statedb, params.HistoryStorageAddress, header.ParentHash[:]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyPostExecutionChanges would run the EIP-7002 withdrawal and
// EIP-7251 consolidation system calls once Prague is active. None of this
// module's three chain schedules activate Prague, so this is a documented
// no-op rather than dead code guarding an unreachable branch.
func (SystemCallExecutor) ApplyPostExecutionChanges(header *types.Header, evmCollab EVM, statedb StateDB) ([]byte, error) {
	return nil, nil
}

func callSystemContract(evmCollab EVM, statedb StateDB, to common.Address, data []byte) error {
	msg := &core.Message{
		From:              params.SystemAddress,
		To:                &to,
		Value:             new(big.Int),
		GasLimit:          30_000_000,
		GasPrice:          new(big.Int),
		GasFeeCap:         new(big.Int),
		GasTipCap:         new(big.Int),
		Data:              data,
		SkipAccountChecks: true,
	}
	evmCollab.Reset(vm.TxContext{Origin: params.SystemAddress, GasPrice: new(big.Int)}, statedb)
	_, err := evmCollab.Transact(msg)
	return err
}
