package forkid

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/taikoxyz/taiko-geth-executor/params"
)

func hexHash(t *testing.T, id ID, want string) {
	t.Helper()
	assert.Equal(t, want, hexEncode(id.Hash[:]))
}

func hexEncode(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hextable[c>>4]
		out[i*2+1] = hextable[c&0x0f]
	}
	return string(out)
}

func TestNewID_A7(t *testing.T) {
	sched := params.A7Schedule()

	id := NewID(sched, 0, 0)
	hexHash(t, id, "fcfd4bce")
	assert.Equal(t, uint64(840512), id.Next)

	id = NewID(sched, 840512, 0)
	hexHash(t, id, "bd19325c")
	assert.Equal(t, uint64(0), id.Next)
}

func TestNewID_Dev(t *testing.T) {
	sched := params.DevSchedule()

	id := NewID(sched, 0, 0)
	hexHash(t, id, "fcfd4bce")
	assert.Equal(t, uint64(2000), id.Next)

	id = NewID(sched, 2000, 0)
	hexHash(t, id, "a1585867")
	assert.Equal(t, uint64(0), id.Next)
}

func TestNewID_Mainnet(t *testing.T) {
	sched := params.MainnetSchedule()

	id := NewID(sched, 0, 0)
	hexHash(t, id, "fcfd4bce")
	assert.Equal(t, uint64(538304), id.Next)

	id = NewID(sched, 538304, 0)
	hexHash(t, id, "74a11e09")
	assert.Equal(t, uint64(0), id.Next)
}

func TestID_BytesWireFormat(t *testing.T) {
	id := ID{Hash: [4]byte{0xfc, 0xfd, 0x4b, 0xce}, Next: 840512}
	got := id.Bytes()
	assert.Len(t, got, 12)
	assert.Equal(t, []byte{0xfc, 0xfd, 0x4b, 0xce}, got[:4])
	assert.Equal(t, uint64(840512), uint64(got[4])<<56|uint64(got[5])<<48|uint64(got[6])<<40|uint64(got[7])<<32|uint64(got[8])<<24|uint64(got[9])<<16|uint64(got[10])<<8|uint64(got[11]))
}
