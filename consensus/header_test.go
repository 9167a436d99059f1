package consensus

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

func baseHeaders() (parent, header *types.Header) {
	parent = &types.Header{
		Number:     big.NewInt(100),
		Time:       1000,
		Difficulty: big.NewInt(0),
		UncleHash:  types.EmptyUncleHash,
		GasLimit:   30_000_000,
	}
	header = &types.Header{
		Number:          big.NewInt(101),
		Time:            1000,
		Difficulty:      big.NewInt(0),
		UncleHash:       types.EmptyUncleHash,
		GasLimit:        30_000_000,
		GasUsed:         10,
		WithdrawalsHash: &types.EmptyWithdrawalsHash,
	}
	return parent, header
}

func TestVerifyHeader_AllowsEqualTimestamp(t *testing.T) {
	parent, header := baseHeaders()
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.NoError(t, err)
}

func TestVerifyHeader_RejectsOlderTimestamp(t *testing.T) {
	parent, header := baseHeaders()
	header.Time = parent.Time - 1
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.ErrorIs(t, err, ErrOlderBlockTime)
}

func TestVerifyHeader_RejectsFutureBlock(t *testing.T) {
	parent, header := baseHeaders()
	header.Time = uint64(time.Now().Add(time.Hour).Unix())
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Now())
	assert.ErrorIs(t, err, ErrFutureBlock)
}

func TestVerifyHeader_RejectsNonZeroDifficulty(t *testing.T) {
	parent, header := baseHeaders()
	header.Difficulty = big.NewInt(1)
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.ErrorIs(t, err, ErrInvalidDifficulty)
}

func TestVerifyHeader_RejectsGasUsedAboveLimit(t *testing.T) {
	parent, header := baseHeaders()
	header.GasUsed = header.GasLimit + 1
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.ErrorIs(t, err, ErrGasUsedTooHigh)
}

func TestVerifyHeader_RejectsWrongBlockNumber(t *testing.T) {
	parent, header := baseHeaders()
	header.Number = big.NewInt(200)
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.ErrorIs(t, err, ErrInvalidNumber)
}

func TestVerifyHeader_RejectsExtraDataTooLong(t *testing.T) {
	parent, header := baseHeaders()
	header.Extra = make([]byte, 33)
	sched := params.MainnetSchedule()
	err := VerifyHeader(sched, header, parent, 0, time.Unix(2000, 0))
	assert.ErrorIs(t, err, ErrExtraDataTooLong)
}
