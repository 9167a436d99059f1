package anchor

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixedHashSigner is a minimal types.Signer whose Hash is pinned by the
// test and whose SignatureValues passes r/s/v straight through, so tests
// can exercise checkSignature's r-based acceptance rule directly without
// real ECDSA signing.
type fixedHashSigner struct {
	hash common.Hash
}

func (s fixedHashSigner) Sender(tx *types.Transaction) (common.Address, error) {
	return common.Address{}, nil
}

func (s fixedHashSigner) SignatureValues(tx *types.Transaction, sig []byte) (r, s2, v *big.Int, err error) {
	r = new(big.Int).SetBytes(sig[:32])
	s2 = new(big.Int).SetBytes(sig[32:64])
	v = new(big.Int).SetBytes(sig[64:65])
	return
}

func (s fixedHashSigner) ChainID() *big.Int { return big.NewInt(1) }

func (s fixedHashSigner) Hash(tx *types.Transaction) common.Hash { return s.hash }

func (s fixedHashSigner) Equal(other types.Signer) bool { return false }

func signWithR(t *testing.T, r *big.Int, hash common.Hash) *types.Transaction {
	t.Helper()
	tx := types.NewTx(&types.DynamicFeeTx{})
	sig := make([]byte, 65)
	r.FillBytes(sig[:32])
	big.NewInt(1).FillBytes(sig[32:64])
	signed, err := tx.WithSignature(fixedHashSigner{hash: hash}, sig)
	require.NoError(t, err)
	return signed
}

func TestCheckSignature_RIsGX1_AlwaysAccepted(t *testing.T) {
	tx := signWithR(t, gx1.ToBig(), common.Hash{})
	err := checkSignature(tx, fixedHashSigner{})
	assert.NoError(t, err)
}

func TestCheckSignature_RIsGX2_AcceptsWhenSumMatchesN(t *testing.T) {
	// msg_hash chosen so msg_hash + gx1MulPrivateKey == n (mod 2^256).
	mod := new(big.Int).Lsh(big.NewInt(1), 256)
	diff := new(big.Int).Sub(n.ToBig(), gx1MulPrivateKey.ToBig())
	diff.Mod(diff, mod)
	var msgHash common.Hash
	diff.FillBytes(msgHash[:])

	tx := signWithR(t, gx2.ToBig(), msgHash)
	err := checkSignature(tx, fixedHashSigner{hash: msgHash})
	assert.NoError(t, err)
}

func TestCheckSignature_RIsGX2_RejectsWhenSumMismatches(t *testing.T) {
	var msgHash common.Hash
	msgHash[31] = 0x01 // arbitrary value that won't satisfy sum == n

	tx := signWithR(t, gx2.ToBig(), msgHash)
	err := checkSignature(tx, fixedHashSigner{hash: msgHash})
	require.Error(t, err)
	var avErr *AnchorValidationError
	require.ErrorAs(t, err, &avErr)
}

func TestCheckSignature_OtherR_Rejected(t *testing.T) {
	tx := signWithR(t, big.NewInt(42), common.Hash{})
	err := checkSignature(tx, fixedHashSigner{})
	require.Error(t, err)
}
