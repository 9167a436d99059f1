package executor

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/tracing"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/trie"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/taikoxyz/taiko-geth-executor/consensus/anchor"
	"github.com/taikoxyz/taiko-geth-executor/params"
)

var strategyLog = log.New("module", "executor")

// The pre-merge block reward schedule, keyed by the fork active at
// execution time; Paris and later pay zero, matching the
// post-merge removal of the proof-of-work issuance.
var (
	frontierBlockReward       = big.NewInt(5e18)
	byzantiumBlockReward      = big.NewInt(3e18)
	constantinopleBlockReward = big.NewInt(2e18)
)

// weiPerGwei converts the 10^9-scaled withdrawal amount (gwei) to wei.
var weiPerGwei = big.NewInt(1e9)

// Strategy drives one block end-to-end: pre-execution system calls,
// per-transaction anchor validation and EVM dispatch with optimistic
// skipping, and post-execution balance increments / DAO drain.
type Strategy struct {
	schedule     *params.Schedule
	evm          EVM
	state        StateDB
	systemCaller SystemCaller
	signer       types.Signer
	onState      OnStateHook
}

// NewStrategy constructs a strategy bound to one block's state database.
// The strategy owns state for the duration of Execute; the Output does not
// carry it, and Executor.ExecuteAndGetState hands it to the caller. It is
// not reusable across blocks.
func NewStrategy(schedule *params.Schedule, evmCollab EVM, state StateDB, systemCaller SystemCaller, signer types.Signer) *Strategy {
	return &Strategy{schedule: schedule, evm: evmCollab, state: state, systemCaller: systemCaller, signer: signer}
}

// WithStateHook installs a per-account state-change observer for the
// remainder of this strategy's lifetime.
func (s *Strategy) WithStateHook(hook OnStateHook) *Strategy {
	s.onState = hook
	return s
}

func (s *Strategy) notify() {
	if s.onState != nil {
		s.onState(s.state)
	}
}

// Execute runs phases A through D over in and returns the aggregated
// receipts, gas usage, skipped-index list, and any EIP-7685 requests.
func (s *Strategy) Execute(in *Input) (*Output, error) {
	headNumber := in.Header.Number.Uint64()
	headTime := in.Header.Time
	var td uint64
	if in.TotalDifficulty != nil {
		td = in.TotalDifficulty.Uint64()
	}
	active := s.schedule.ActiveSpec(headNumber, headTime, td)

	// Phase A — pre-execution.
	if s.systemCaller != nil {
		if err := s.systemCaller.ApplyPreExecutionChanges(in.Header, s.evm, s.state); err != nil {
			return nil, newConsensusPostExecError(err)
		}
	}

	out := &Output{}
	cumulativeGasUsed := uint64(0)

	// Phase B — execute transactions.
	for index, tx := range in.Transactions {
		sender := in.Senders[index]
		isAnchor := index == 0 && in.EnableAnchor

		if isAnchor {
			if err := anchor.Validate(active, tx, sender, in.Header, in.AnchorData, s.signer); err != nil {
				return nil, newAnchorValidationError(err)
			}
		}

		available := in.Header.GasLimit - cumulativeGasUsed
		if tx.Gas() > available {
			if !isAnchor && in.Optimistic {
				out.SkippedIndices = append(out.SkippedIndices, index)
				strategyLog.Debug("skipping gas-oversized transaction", "index", index, "hash", tx.Hash())
				continue
			}
			return nil, newGasLimitError(tx.Gas(), available)
		}

		msg, err := messageFromTx(tx, sender, in.Header.BaseFee)
		if err != nil {
			return nil, newEVMError(tx.Hash(), err)
		}
		if in.Override != nil {
			in.Override(msg)
		}

		snapshot := s.state.Snapshot()
		s.evm.Reset(vm.TxContext{Origin: sender, GasPrice: msg.GasPrice}, s.state)
		result, err := s.evm.Transact(msg)
		if err != nil {
			// The EVM journal may hold a partial write set from this
			// attempt; it must not leak into the next transaction.
			s.state.RevertToSnapshot(snapshot)

			if in.Optimistic {
				out.SkippedIndices = append(out.SkippedIndices, index)
				strategyLog.Debug("skipping erroring transaction", "index", index, "hash", tx.Hash(), "err", err)
				continue
			}
			if isAnchor {
				return nil, newEVMError(tx.Hash(), err)
			}
			if isTxValidationError(err) {
				// Protocol rule: user transactions invalid at the mempool
				// layer (bad nonce, insufficient balance, bad signature,
				// below intrinsic gas) are tolerated by silently dropping
				// them from the block, not by aborting it.
				strategyLog.Debug("dropping invalid user transaction", "index", index, "hash", tx.Hash(), "err", err)
				continue
			}
			return nil, newEVMError(tx.Hash(), err)
		}

		s.notify()
		s.state.Finalise(s.schedule.IsActive(params.SpuriousDragon, headNumber, headTime, td))
		cumulativeGasUsed += result.UsedGas
		out.Receipts = append(out.Receipts, makeReceipt(s.state, tx, msg, result, cumulativeGasUsed, in.Header, uint64(index)))
	}
	out.GasUsed = cumulativeGasUsed

	// Phase C — post-execution.
	if s.systemCaller != nil {
		requests, err := s.systemCaller.ApplyPostExecutionChanges(in.Header, s.evm, s.state)
		if err != nil {
			return nil, newConsensusPostExecError(err)
		}
		out.Requests = requests
	}

	prague := s.schedule.IsActive(params.Prague, headNumber, headTime, td)
	if err := verifyPostExecution(out, in.Header, prague); err != nil {
		return nil, err
	}

	if err := s.applyBalanceIncrements(in, active, headNumber, headTime, td); err != nil {
		return nil, err
	}
	s.notify()

	// Phase D — finalize.
	s.state.Finalise(s.schedule.IsActive(params.SpuriousDragon, headNumber, headTime, td))
	return out, nil
}

// messageFromTx adapts a transaction plus its externally recovered sender
// into the go-ethereum core.Message the EVM collaborator consumes. The
// sender is taken from the caller rather than re-derived from the
// signature, since callers already recover it once against whichever of
// the three anchor-era signer schemes applies to this block.
func messageFromTx(tx *types.Transaction, sender common.Address, baseFee *big.Int) (*core.Message, error) {
	gasFeeCap := new(big.Int).Set(tx.GasFeeCap())
	gasTipCap := new(big.Int).Set(tx.GasTipCap())
	gasPrice := new(big.Int).Set(tx.GasPrice())
	if baseFee != nil {
		gasPrice = new(big.Int).Add(gasTipCap, baseFee)
		if gasPrice.Cmp(gasFeeCap) > 0 {
			gasPrice = gasFeeCap
		}
	}
	return &core.Message{
		From:          sender,
		To:            tx.To(),
		Nonce:         tx.Nonce(),
		Value:         tx.Value(),
		GasLimit:      tx.Gas(),
		GasPrice:      gasPrice,
		GasFeeCap:     gasFeeCap,
		GasTipCap:     gasTipCap,
		Data:          tx.Data(),
		AccessList:    tx.AccessList(),
		BlobHashes:    tx.BlobHashes(),
		BlobGasFeeCap: tx.BlobGasFeeCap(),
	}, nil
}

func makeReceipt(state StateDB, tx *types.Transaction, msg *core.Message, result *core.ExecutionResult, cumulativeGasUsed uint64, header *types.Header, txIndex uint64) *types.Receipt {
	receipt := &types.Receipt{Type: tx.Type(), CumulativeGasUsed: cumulativeGasUsed}
	if result.Failed() {
		receipt.Status = types.ReceiptStatusFailed
	} else {
		receipt.Status = types.ReceiptStatusSuccessful
	}
	receipt.TxHash = tx.Hash()
	receipt.GasUsed = result.UsedGas
	if msg.To == nil {
		addr := crypto.CreateAddress(msg.From, tx.Nonce())
		receipt.ContractAddress = addr
	}
	blockHash := header.Hash()
	receipt.Logs = state.GetLogs(tx.Hash(), header.Number.Uint64(), blockHash)
	receipt.Bloom = types.CreateBloom(types.Receipts{receipt})
	receipt.BlockHash = blockHash
	receipt.BlockNumber = header.Number
	receipt.TransactionIndex = uint(txIndex)
	return receipt
}

// verifyPostExecution recomputes the receipts root, logs bloom, and
// cumulative gas from the freshly built receipt set and checks them
// against the header the caller supplied; when Prague is active it does
// the same for the requests hash. Any disagreement is a consensus
// failure, not a recoverable transaction error.
//
// A zero ReceiptHash means the caller is building a header rather than
// verifying one it already has an expected value for (e.g. assembling a
// new block), so there is nothing yet to cross-check; the verification
// is skipped in that case.
func verifyPostExecution(out *Output, header *types.Header, prague bool) error {
	if header.ReceiptHash == (common.Hash{}) {
		return nil
	}

	gotReceiptRoot := types.DeriveSha(out.Receipts, trie.NewStackTrie(nil))
	if gotReceiptRoot != header.ReceiptHash {
		return newConsensusPostExecError(errors.Errorf("receipts root mismatch: got %s, want %s", gotReceiptRoot, header.ReceiptHash))
	}

	gotBloom := types.CreateBloom(out.Receipts)
	if gotBloom != header.Bloom {
		return newConsensusPostExecError(errors.New("logs bloom mismatch"))
	}

	if out.GasUsed != header.GasUsed {
		return newConsensusPostExecError(errors.Errorf("cumulative gas mismatch: got %d, want %d", out.GasUsed, header.GasUsed))
	}

	if prague {
		if header.RequestsHash == nil {
			return newConsensusPostExecError(errors.New("requests hash missing at Prague"))
		}
		gotRequestsHash := types.CalcRequestsHash([][]byte{out.Requests})
		if gotRequestsHash != *header.RequestsHash {
			return newConsensusPostExecError(errors.Errorf("requests hash mismatch: got %s, want %s", gotRequestsHash, *header.RequestsHash))
		}
	}
	return nil
}

// applyBalanceIncrements computes and applies the block reward (zero
// post-Paris), withdrawal credits, and the DAO drain, in that order.
func (s *Strategy) applyBalanceIncrements(in *Input, active params.Hardfork, headNumber, headTime, td uint64) error {
	if !s.schedule.IsActive(params.Paris, headNumber, headTime, td) {
		reward := blockRewardFor(s.schedule, headNumber, headTime, td)
		if reward != nil && reward.Sign() > 0 {
			addBalance(s.state, in.Header.Coinbase, reward, tracing.BalanceIncreaseRewardMineBlock)
		}
	}

	for _, w := range in.Withdrawals {
		amountWei := new(big.Int).Mul(new(big.Int).SetUint64(w.Amount), weiPerGwei)
		if amountWei.Sign() > 0 {
			addBalance(s.state, w.Address, amountWei, tracing.BalanceIncreaseWithdrawal)
		}
	}

	if in.Header.Number != nil && in.Header.Number.Uint64() == params.DAOForkBlock {
		if err := s.drainDAOAccounts(); err != nil {
			return newBalanceIncrementError(err)
		}
	}
	return nil
}

// drainDAOAccounts atomically zeroes the fixed DAO account list and
// credits the sum to the beneficiary.
func (s *Strategy) drainDAOAccounts() error {
	total := new(big.Int)
	for _, addr := range params.DAOForkAccounts {
		bal := s.state.GetBalance(addr)
		total.Add(total, bal.ToBig())
		s.state.SubBalance(addr, bal, tracing.BalanceDecreaseDaoAccount)
	}
	if total.Sign() > 0 {
		addBalance(s.state, params.DAOForkBeneficiary, total, tracing.BalanceIncreaseDaoContract)
	}
	return nil
}

func addBalance(state StateDB, addr common.Address, amount *big.Int, reason tracing.BalanceChangeReason) {
	u, overflow := uint256.FromBig(amount)
	if overflow {
		return
	}
	state.AddBalance(addr, u, reason)
}

func blockRewardFor(schedule *params.Schedule, headNumber, headTime, td uint64) *big.Int {
	switch {
	case schedule.IsActive(params.Constantinople, headNumber, headTime, td):
		return constantinopleBlockReward
	case schedule.IsActive(params.Byzantium, headNumber, headTime, td):
		return byzantiumBlockReward
	default:
		return frontierBlockReward
	}
}

// isTxValidationError reports whether err is one of the pre-execution
// validation failures (nonce, balance, intrinsic gas, sender identity)
// the protocol tolerates by silently dropping the offending transaction,
// as opposed to a database or VM-internal failure that must abort the
// block.
func isTxValidationError(err error) bool {
	for _, target := range []error{
		core.ErrNonceTooLow, core.ErrNonceTooHigh,
		core.ErrInsufficientFunds, core.ErrIntrinsicGas,
		core.ErrSenderNoEOA, core.ErrGasUintOverflow,
		core.ErrFeeCapTooLow, core.ErrTipAboveFeeCap, core.ErrTipVeryHigh,
		core.ErrFeeCapVeryHigh, core.ErrInsufficientFundsForTransfer,
		core.ErrMaxInitCodeSizeExceeded,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
