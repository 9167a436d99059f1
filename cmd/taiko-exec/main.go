// Command taiko-exec drives one JSON-encoded block fixture through the
// executor facade and prints the resulting receipts, gas usage, and
// skipped-transaction indices. It exists to exercise the library end to
// end, not as a production batch-executor.
package main

import (
	"encoding/json"
	"fmt"
	"math/big"
	"os"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core"
	"github.com/ethereum/go-ethereum/core/rawdb"
	"github.com/ethereum/go-ethereum/core/state"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/core/vm"
	gethparams "github.com/ethereum/go-ethereum/params"
	"github.com/ethereum/go-ethereum/triedb"
	"github.com/urfave/cli/v2"

	"github.com/taikoxyz/taiko-geth-executor/config"
	"github.com/taikoxyz/taiko-geth-executor/consensus/anchor"
	"github.com/taikoxyz/taiko-geth-executor/executor"
)

var (
	configFlag = &cli.StringFlag{
		Name:  "config",
		Usage: "path to a TOML executor config file",
	}
	fixtureFlag = &cli.StringFlag{
		Name:     "fixture",
		Usage:    "path to a JSON block fixture",
		Required: true,
	}
)

// fixture is the on-disk shape of one demo block: a header, its
// transactions and their externally-recovered senders, withdrawals, the
// anchor's TaikoData context, and the total difficulty. The two
// execution-mode flags come from the config, not the fixture.
type fixture struct {
	Header          *types.Header        `json:"header"`
	Transactions    []*types.Transaction `json:"transactions"`
	Senders         []common.Address     `json:"senders"`
	Withdrawals     types.Withdrawals    `json:"withdrawals"`
	AnchorData      anchor.TaikoData     `json:"anchorData"`
	TotalDifficulty *big.Int             `json:"totalDifficulty"`
}

func main() {
	app := &cli.App{
		Name:  "taiko-exec",
		Usage: "execute one Taiko L2 block fixture through the executor facade",
		Flags: []cli.Flag{configFlag, fixtureFlag},
		Action: run,
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run(ctx *cli.Context) error {
	cfg := config.DefaultConfig
	if path := ctx.String(configFlag.Name); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	schedule, err := cfg.Schedule()
	if err != nil {
		return err
	}

	fx, err := loadFixture(ctx.String(fixtureFlag.Name))
	if err != nil {
		return err
	}

	statedb, err := newMemoryState()
	if err != nil {
		return err
	}

	blockCtx := vm.BlockContext{
		CanTransfer: core.CanTransfer,
		Transfer:    core.Transfer,
		Coinbase:    fx.Header.Coinbase,
		BlockNumber: new(big.Int).Set(fx.Header.Number),
		Time:        fx.Header.Time,
		Difficulty:  fx.Header.Difficulty,
		GasLimit:    fx.Header.GasLimit,
		BaseFee:     fx.Header.BaseFee,
	}
	vmenv := vm.NewEVM(blockCtx, statedb, gethparams.AllEthashProtocolChanges, vm.Config{})
	evmCollab := executor.NewGethEVM(vmenv, fx.Header.GasLimit)

	signer := types.LatestSignerForChainID(gethparams.AllEthashProtocolChanges.ChainID)
	strategy := executor.NewStrategy(schedule, evmCollab, statedb, executor.SystemCallExecutor{}, signer)
	ex := executor.NewExecutor(strategy)

	out, err := ex.Execute(&executor.Input{
		Header:          fx.Header,
		Transactions:    fx.Transactions,
		Senders:         fx.Senders,
		Withdrawals:     fx.Withdrawals,
		AnchorData:      fx.AnchorData,
		TotalDifficulty: fx.TotalDifficulty,
		EnableAnchor:    cfg.EnableAnchor,
		Optimistic:      cfg.Optimistic,
	})
	if err != nil {
		return err
	}

	fmt.Printf("gas used:        %d\n", out.GasUsed)
	fmt.Printf("receipts:        %d\n", len(out.Receipts))
	fmt.Printf("skipped indices: %v\n", out.SkippedIndices)
	for _, r := range out.Receipts {
		fmt.Printf("  tx %s: status=%d gasUsed=%d\n", r.TxHash, r.Status, r.GasUsed)
	}
	return nil
}

func loadFixture(path string) (*fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var fx fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, err
	}
	return &fx, nil
}

func newMemoryState() (*state.StateDB, error) {
	memdb := rawdb.NewMemoryDatabase()
	tdb := triedb.NewDatabase(memdb, nil)
	return state.New(types.EmptyRootHash, state.NewDatabase(tdb, nil))
}
