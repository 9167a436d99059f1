// Package params holds the protocol constants shared by the fork registry,
// the anchor validator, and the execution strategy: golden-touch and DAO
// addresses, anchor gas limits, and the header bounds (MaximumExtraDataSize,
// MaxGasLimit) the consensus package checks.
package params

import (
	"github.com/ethereum/go-ethereum/common"
)

// GoldenTouchAddress is the fixed sender every anchor transaction must
// originate from. Its private key is known to the protocol so that anchors
// can be signed deterministically with a fixed-k ECDSA nonce.
var GoldenTouchAddress = common.HexToAddress("0x0000777735367b36bC9B61C50022d9D0700dB4Ec")

const (
	// AnchorGasLimit is the required gas_limit of a Hekla/Ontake anchor transaction.
	AnchorGasLimit uint64 = 250_000
	// AnchorV3GasLimit is the required gas_limit of a Pacaya anchorV3 transaction.
	AnchorV3GasLimit uint64 = 1_000_000
)

// DAOForkBlock is the block number of the Ethereum DAO irregular state
// change, carried forward into every Taiko chain schedule since the Taiko
// forks list Dao alongside the other early Ethereum forks.
const DAOForkBlock uint64 = 0

// DAOForkBeneficiary receives the balance drained from DAOForkAccounts at
// the DAO transition block.
var DAOForkBeneficiary = common.HexToAddress("0xbf4ed7b27f1d666546e30d74d50d173d20bca754")

// DAOForkAccounts is the fixed list of accounts drained at the DAO
// transition. This is carried as pinned data, not re-derived, mirroring
// reth_evm_ethereum::dao_fork::DAO_HARDKFORK_ACCOUNTS.
var DAOForkAccounts = []common.Address{
	common.HexToAddress("0xd4fe7bc31cedb7bfb8a345f31e668033056b2728"),
	common.HexToAddress("0x0b3fb0e5aba0e20e5c49d252dfd7b39c12bd58ae"),
	common.HexToAddress("0x2c19c7f9ae8b751e37aeb2d93a699722395ae18f"),
	common.HexToAddress("0x0ecd135fa4f61a655311e86238c92adcd779555d"),
	common.HexToAddress("0x01975bd06d486162d5dc297798dfc41edd5d160a"),
	common.HexToAddress("0xa3acf3a1e16b1d7c315e23510fdd7847b48da3ca"),
	common.HexToAddress("0x319f70bab6845585f412ec7252b58f3696a6ed98"),
	common.HexToAddress("0x06706dd3f2c9abf0a21ddcc6941d9b86f0596936"),
	common.HexToAddress("0x5c8536898fbb74fc7445814902fd08422eac56d0"),
	common.HexToAddress("0x6966ab0d485353095148a2155858910e33c61534"),
	common.HexToAddress("0x779543a0491a837ca36ce8c635d6154e3c4911a6"),
	common.HexToAddress("0x2a5ed960395e2a49b1c758cef4aa15213cfd874c"),
	common.HexToAddress("0x5c26f4eb4a67e43c79e7fee211f3fbef6ba3fc63"),
	common.HexToAddress("0x09c50426be05db97f5d64fc54bf89eff947f0993"),
}

// MaximumExtraDataSize bounds header.Extra for mainnet-like networks, the
// same bound go-ethereum/params declares for upstream Ethereum.
const MaximumExtraDataSize uint64 = 32

// MaxGasLimit bounds header.GasLimit; post-merge Ethereum-family headers
// never legitimately approach it, so it exists only to reject corrupt or
// adversarial values.
const MaxGasLimit uint64 = 0x7fffffffffffffff

// SystemAddress is the sender used for protocol system calls (EIP-4788
// beacon-root, EIP-2935 history) that are not real user transactions.
var SystemAddress = common.HexToAddress("0xfffffffffffffffffffffffffffffffffffffffe")

// BeaconRootsAddress is the EIP-4788 beacon-roots contract.
var BeaconRootsAddress = common.HexToAddress("0x000F3df6D732807Ef1319fB7B8bB8522d0Beac02")

// HistoryStorageAddress is the EIP-2935 block-hash history contract.
var HistoryStorageAddress = common.HexToAddress("0x0000F90827F1C53a10cb7A02335B175320002935")
