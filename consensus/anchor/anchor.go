// Package anchor implements the Taiko protocol's anchor-transaction
// validator: the fixed-k signature contract and the per-fork ABI checks
// that transaction #0 of every L2 block must satisfy.
package anchor

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/log"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/holiman/uint256"
	"github.com/pkg/errors"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

// BaseFeeConfig mirrors the protocol's BaseFeeConfig ABI struct.
type BaseFeeConfig struct {
	AdjustmentQuotient  uint8
	SharingPctg         uint8
	GasIssuancePerSecond uint32
	MinGasExcess        uint64
	MaxGasIssuancePerBlock uint32
}

// TaikoData is the per-block context the anchor validator checks a
// transaction against.
type TaikoData struct {
	L1Header      *types.Header
	ParentHeader  *types.Header
	L2Contract    common.Address
	BaseFeeConfig BaseFeeConfig
	GasLimit      uint64 // reserved; unused by the checks below
}

// Fixed-k secp256k1 constants pinning the anchor's deterministic
// signature. gx1/gx2 are the generator's x-coordinate for nonce k=1 and
// k=2; n is the curve order; gx1MulPrivateKey is a pinned protocol
// constant.
var (
	gx1              = mustUint256("79be667ef9dcbbac55a06295ce870b07029bfcdb2dce28d959f2815b16f81798")
	gx2              = mustUint256("c6047f9441ed7d6d3045406e95c07cd85c778e4b8cef3ca7abac09b95c709ee5")
	n                = mustUint256("fffffffffffffffffffffffffffffffebaaedce6af48a03bbfd25e8cd0364141")
	gx1MulPrivateKey = mustUint256("4341adf5a780b4a87939938fd7a032f6e6664c7da553c121d3b4947429639122")
)

func mustUint256(hex64 string) *uint256.Int {
	v, err := uint256.FromHex("0x" + hex64)
	if err != nil {
		panic(err)
	}
	return v
}

var log_ = log.New("module", "anchor")

// ErrReason identifies why anchor validation failed.
type ErrReason string

// AnchorValidationError is the error kind this package returns for every
// validation failure; it is fatal for the block (spec error taxonomy:
// AnchorValidation{reason}). A failure to RLP-encode the L1 header in
// ValidateHekla is returned as a wrapped encoding error instead.
type AnchorValidationError struct {
	Reason ErrReason
}

func (e *AnchorValidationError) Error() string {
	return "anchor validation failed: " + string(e.Reason)
}

func fail(reason string) error {
	return &AnchorValidationError{Reason: ErrReason(reason)}
}

// checkSignature enforces the fixed-k acceptance rule: r == GX1 always
// accepts; r == GX2 accepts iff N == (msg_hash + GX1_MUL_PRIVATEKEY) mod
// 2^256; any other r is rejected.
func checkSignature(tx *types.Transaction, signer types.Signer) error {
	_, r, _ := tx.RawSignatureValues()
	if r == nil {
		return fail("missing signature")
	}
	var rInt uint256.Int
	rInt.SetFromBig(r)

	if rInt.Eq(gx1) {
		return nil
	}
	if rInt.Eq(gx2) {
		msgHash := signer.Hash(tx)
		var msgHashInt uint256.Int
		msgHashInt.SetBytes(msgHash[:])

		sum := addMod2to256(&msgHashInt, gx1MulPrivateKey)
		if !sum.Eq(n) {
			return fail("r == GX2 but N != msg_hash + GX1_MUL_PRIVATEKEY")
		}
		return nil
	}
	return fail("signature r is neither GX1 nor GX2")
}

// addMod2to256 adds two uint256 values with wraparound modulo 2^256,
// exactly matching Rust's U256 Add (which is itself mod-2^256 wrapping).
func addMod2to256(a, b *uint256.Int) *uint256.Int {
	var out uint256.Int
	out.Add(a, b)
	return &out
}

// commonChecks validates the fields shared by every anchor fork variant:
// sender identity, call target, value, gas limit, and fee cap.
func commonChecks(tx *types.Transaction, from common.Address, header *types.Header, data TaikoData, expectedGasLimit uint64) error {
	if tx.Type() != types.DynamicFeeTxType {
		return fail("anchor tx is not an EIP-1559 transaction")
	}
	to := tx.To()
	if to == nil {
		return fail("anchor tx is not a contract call")
	}
	if from != params.GoldenTouchAddress {
		return fail("anchor transaction from mismatch")
	}
	if *to != data.L2Contract {
		return fail("anchor transaction to mismatch")
	}
	if tx.Value() == nil || tx.Value().Sign() != 0 {
		return fail("anchor transaction value mismatch")
	}
	if tx.Gas() != expectedGasLimit {
		return fail("anchor transaction gas limit mismatch")
	}
	if header.BaseFee == nil {
		return fail("base fee per gas should be present")
	}
	if tx.GasFeeCap() == nil || tx.GasFeeCap().Cmp(header.BaseFee) != 0 {
		return fail("anchor transaction gas mismatch")
	}
	return nil
}

func rlpHash(h *types.Header) (common.Hash, error) {
	enc, err := rlp.EncodeToBytes(h)
	if err != nil {
		return common.Hash{}, errors.Wrap(err, "rlp-encoding L1 header")
	}
	return crypto.Keccak256Hash(enc), nil
}

// uint64FromSlot reads the last 8 bytes of a 32-byte big-endian ABI slot.
func uint64FromSlot(slot []byte) uint64 {
	if len(slot) < 32 {
		return 0
	}
	var v uint64
	for _, b := range slot[24:32] {
		v = v<<8 | uint64(b)
	}
	return v
}

func uint32FromSlot(slot []byte) uint32 {
	return uint32(uint64FromSlot(slot))
}

func uint8FromSlot(slot []byte) uint8 {
	return uint8(uint64FromSlot(slot))
}

func hashFromSlot(slot []byte) common.Hash {
	var h common.Hash
	copy(h[:], slot[:32])
	return h
}

func slot(data []byte, i int) []byte {
	off := i * 32
	if off+32 > len(data) {
		return make([]byte, 32)
	}
	return data[off : off+32]
}

// decodeBaseFeeConfig reads the five-field BaseFeeConfig tuple starting at
// slot index i; it is always encoded inline since every field is static.
func decodeBaseFeeConfig(data []byte, i int) BaseFeeConfig {
	return BaseFeeConfig{
		AdjustmentQuotient:     uint8FromSlot(slot(data, i)),
		SharingPctg:            uint8FromSlot(slot(data, i+1)),
		GasIssuancePerSecond:   uint32FromSlot(slot(data, i+2)),
		MinGasExcess:           uint64FromSlot(slot(data, i+3)),
		MaxGasIssuancePerBlock: uint32FromSlot(slot(data, i+4)),
	}
}

// abiArgs strips the 4-byte selector from calldata.
func abiArgs(input []byte) []byte {
	if len(input) < 4 {
		return nil
	}
	return input[4:]
}

// ValidateHekla checks the Hekla (v1) anchor call: anchor(bytes32 l1Hash,
// bytes32 l1StateRoot, uint64 l1BlockId, uint32 parentGasUsed).
func ValidateHekla(tx *types.Transaction, from common.Address, header *types.Header, data TaikoData, signer types.Signer) error {
	if err := checkSignature(tx, signer); err != nil {
		return err
	}
	if err := commonChecks(tx, from, header, data, params.AnchorGasLimit); err != nil {
		return err
	}
	args := abiArgs(tx.Data())
	if len(args) < 4*32 {
		return fail("anchor calldata too short")
	}
	l1Hash := hashFromSlot(slot(args, 0))
	l1StateRoot := hashFromSlot(slot(args, 1))
	l1BlockID := uint64FromSlot(slot(args, 2))
	parentGasUsed := uint32FromSlot(slot(args, 3))

	wantHash, err := rlpHash(data.L1Header)
	if err != nil {
		return err
	}
	if l1Hash != wantHash {
		return fail("L1 hash mismatch")
	}
	if l1StateRoot != data.L1Header.Root {
		return fail("L1 state root mismatch")
	}
	if l1BlockID != data.L1Header.Number.Uint64() {
		return fail("L1 block number mismatch")
	}
	if uint64(parentGasUsed) != data.ParentHeader.GasUsed {
		return fail("parentGasUsed mismatch")
	}
	return nil
}

// ValidateOntake checks the Ontake (v2) anchorV2 call.
func ValidateOntake(tx *types.Transaction, from common.Address, header *types.Header, data TaikoData, signer types.Signer) error {
	if err := checkSignature(tx, signer); err != nil {
		return err
	}
	if err := commonChecks(tx, from, header, data, params.AnchorGasLimit); err != nil {
		return err
	}
	args := abiArgs(tx.Data())
	if len(args) < 8*32 {
		return fail("anchorV2 calldata too short")
	}
	anchorBlockID := uint64FromSlot(slot(args, 0))
	anchorStateRoot := hashFromSlot(slot(args, 1))
	parentGasUsed := uint32FromSlot(slot(args, 2))
	cfg := decodeBaseFeeConfig(args, 3)

	if err := checkOntakeLikeArgs(anchorBlockID, anchorStateRoot, parentGasUsed, cfg, data); err != nil {
		return err
	}
	return nil
}

// ValidatePacaya checks the Pacaya (v3) anchorV3 call. signalSlots content
// is intentionally left unvalidated.
func ValidatePacaya(tx *types.Transaction, from common.Address, header *types.Header, data TaikoData, signer types.Signer) error {
	if err := checkSignature(tx, signer); err != nil {
		return err
	}
	if err := commonChecks(tx, from, header, data, params.AnchorV3GasLimit); err != nil {
		return err
	}
	args := abiArgs(tx.Data())
	if len(args) < 9*32 {
		return fail("anchorV3 calldata too short")
	}
	anchorBlockID := uint64FromSlot(slot(args, 0))
	anchorStateRoot := hashFromSlot(slot(args, 1))
	parentGasUsed := uint32FromSlot(slot(args, 2))
	cfg := decodeBaseFeeConfig(args, 3)
	// slot(args, 8) is the offset to signalSlots; content not validated.

	return checkOntakeLikeArgs(anchorBlockID, anchorStateRoot, parentGasUsed, cfg, data)
}

func checkOntakeLikeArgs(anchorBlockID uint64, anchorStateRoot common.Hash, parentGasUsed uint32, cfg BaseFeeConfig, data TaikoData) error {
	if anchorBlockID != data.L1Header.Number.Uint64() {
		return fail("L1 block number mismatch")
	}
	if anchorStateRoot != data.L1Header.Root {
		return fail("L1 state root mismatch")
	}
	if uint64(parentGasUsed) != data.ParentHeader.GasUsed {
		return fail("parentGasUsed mismatch")
	}
	want := data.BaseFeeConfig
	if cfg.GasIssuancePerSecond != want.GasIssuancePerSecond {
		return fail("gas issuance per second mismatch")
	}
	if cfg.AdjustmentQuotient != want.AdjustmentQuotient {
		return fail("basefee adjustment quotient mismatch")
	}
	if cfg.SharingPctg != want.SharingPctg {
		return fail("basefee ratio mismatch")
	}
	if cfg.MinGasExcess != want.MinGasExcess {
		return fail("min gas excess mismatch")
	}
	if cfg.MaxGasIssuancePerBlock != want.MaxGasIssuancePerBlock {
		return fail("max gas issuance per block mismatch")
	}
	return nil
}

// Validate dispatches to the fork-appropriate check based on the active
// hardfork tag.
func Validate(active params.Hardfork, tx *types.Transaction, from common.Address, header *types.Header, data TaikoData, signer types.Signer) error {
	switch active {
	case params.Pacaya:
		return ValidatePacaya(tx, from, header, data, signer)
	case params.Ontake:
		return ValidateOntake(tx, from, header, data, signer)
	case params.Hekla, params.Kalta:
		return ValidateHekla(tx, from, header, data, signer)
	default:
		log_.Debug("anchor validation requested for an unrecognized fork", "fork", active)
		return fail("unknown spec id for anchor")
	}
}
