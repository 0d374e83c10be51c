package progpow

import (
	"encoding/binary"
	"testing"

	"git.gammaspectra.live/P2Pool/progpow/types"
)

func testHeaderDigest() (h types.Hash) {
	for i := range h {
		h[i] = byte(i)
	}
	return h
}

const testNonce = 0x123456789ABCDEF0

func TestKeccakF800ZeroState(t *testing.T) {
	var st [25]uint32
	keccakF800(&st)

	expected := [8]uint32{
		0xe531d45d, 0xf404c6fb, 0x23a0bf99, 0xf1f8452f,
		0x51ffd042, 0xe539f578, 0xf00b80a7, 0xaf973664,
	}
	for i, want := range expected {
		if st[i] != want {
			t.Errorf("lane %d: got %#08x, want %#08x", i, st[i], want)
		}
	}
}

func TestKeccakF800Short(t *testing.T) {
	var tail [8]uint32
	seed := keccakF800Short(testHeaderDigest(), testNonce, &tail)
	if seed != 0x03e410fba1aaa56f {
		t.Errorf("got %#016x, want %#016x", seed, uint64(0x03e410fba1aaa56f))
	}
}

func TestKeccakF800Long(t *testing.T) {
	var tail [8]uint32
	digest := keccakF800Long(testHeaderDigest(), testNonce, &tail)
	expected := types.MustHashFromString("03e410fba1aaa56ffba29f451966218e6441ba2940e970811e665793c635ee27")
	if digest != expected {
		t.Errorf("got %s, want %s", digest, expected)
	}
}

// the short form must always be the swapped big-endian packing of the long
// form's first two lanes
func TestKeccakF800ShortMatchesLong(t *testing.T) {
	header := testHeaderDigest()
	var tail [8]uint32
	for i := uint64(0); i < 64; i++ {
		header[i%32] ^= byte(i*0x9d + 1)
		nonce := testNonce ^ (i * 0x0101010101010101)
		tail[i%8] = uint32(i) * 0x45d9f3b

		long := keccakF800Long(header, nonce, &tail)

		var buf [8]byte
		binary.BigEndian.PutUint32(buf[:4], binary.LittleEndian.Uint32(long[4:]))
		binary.BigEndian.PutUint32(buf[4:], binary.LittleEndian.Uint32(long[:4]))
		want := binary.LittleEndian.Uint64(buf[:])

		if got := keccakF800Short(header, nonce, &tail); got != want {
			t.Fatalf("iteration %d: got %#016x, want %#016x", i, got, want)
		}
	}
}
