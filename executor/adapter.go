package executor

import (
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/vm"
)

// GethEVM adapts a real *vm.EVM, sharing one block-scoped gas pool, to the
// executor.EVM capability interface — the same Reset/ApplyMessage pairing
// go-ethereum's own StateProcessor uses per transaction.
type GethEVM struct {
	VM      *vm.EVM
	GasPool *core.GasPool
}

// NewGethEVM constructs an adapter with a fresh gas pool sized to the
// block's gas limit.
func NewGethEVM(vmenv *vm.EVM, blockGasLimit uint64) *GethEVM {
	return &GethEVM{VM: vmenv, GasPool: new(core.GasPool).AddGas(blockGasLimit)}
}

func (g *GethEVM) Reset(txContext vm.TxContext, statedb vm.StateDB) {
	g.VM.Reset(txContext, statedb)
}

func (g *GethEVM) Transact(msg *core.Message) (*core.ExecutionResult, error) {
	return core.ApplyMessage(g.VM, msg, g.GasPool)
}
