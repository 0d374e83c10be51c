package progpow

import (
	"encoding/binary"
	"math/bits"

	"git.gammaspectra.live/P2Pool/progpow/types"
)

// Keccak-f[800], the 32-bit lane variant of the Keccak permutation, with the
// reduced round count of 22 used by ProgPoW.

var keccakRoundConstants = [22]uint32{
	0x00000001, 0x00008082, 0x0000808a, 0x80008000,
	0x0000808b, 0x80000001, 0x80008081, 0x00008009,
	0x0000008a, 0x00000088, 0x80008009, 0x8000000a,
	0x8000808b, 0x0000008b, 0x00008089, 0x00008003,
	0x00008002, 0x00000080, 0x0000800a, 0x8000000a,
	0x80008081, 0x00008080,
}

var keccakRotationConstants = [24]int{
	1, 3, 6, 10, 15, 21, 28, 36, 45, 55, 2, 14,
	27, 41, 56, 8, 25, 43, 62, 18, 39, 61, 20, 44,
}

var keccakPiLane = [24]int{
	10, 7, 11, 17, 18, 3, 5, 16, 8, 21, 24, 4,
	15, 23, 19, 13, 12, 2, 20, 14, 22, 9, 6, 1,
}

func keccakF800Round(st *[25]uint32, round int) {
	var bc [5]uint32

	// theta
	for i := 0; i < 5; i++ {
		bc[i] = st[i] ^ st[i+5] ^ st[i+10] ^ st[i+15] ^ st[i+20]
	}
	for i := 0; i < 5; i++ {
		t := bc[(i+4)%5] ^ bits.RotateLeft32(bc[(i+1)%5], 1)
		for j := 0; j < 25; j += 5 {
			st[j+i] ^= t
		}
	}

	// rho pi
	t := st[1]
	for i, j := range keccakPiLane {
		bc[0] = st[j]
		st[j] = bits.RotateLeft32(t, keccakRotationConstants[i])
		t = bc[0]
	}

	// chi
	for j := 0; j < 25; j += 5 {
		bc[0], bc[1], bc[2], bc[3], bc[4] = st[j], st[j+1], st[j+2], st[j+3], st[j+4]
		st[j] ^= ^bc[1] & bc[2]
		st[j+1] ^= ^bc[2] & bc[3]
		st[j+2] ^= ^bc[3] & bc[4]
		st[j+3] ^= ^bc[4] & bc[0]
		st[j+4] ^= ^bc[0] & bc[1]
	}

	// iota
	st[0] ^= keccakRoundConstants[round]
}

func keccakF800(st *[25]uint32) {
	for round := range keccakRoundConstants {
		keccakF800Round(st, round)
	}
}

// keccakF800Absorb lays out header digest words (little-endian), the nonce
// and the eight tail words into the lower lanes; the capacity lanes stay zero
func keccakF800Absorb(st *[25]uint32, headerDigest types.Hash, nonce uint64, tail *[8]uint32) {
	for i := 0; i < 8; i++ {
		st[i] = binary.LittleEndian.Uint32(headerDigest[i*4:])
	}
	st[8] = uint32(nonce)
	st[9] = uint32(nonce >> 32)
	for i := 0; i < 8; i++ {
		st[10+i] = tail[i]
	}
}

// keccakF800Short derives the 64-bit mix seed. The first two lanes are packed
// big-endian in swapped order then read back little-endian, matching the
// reference serialization.
func keccakF800Short(headerDigest types.Hash, nonce uint64, tail *[8]uint32) uint64 {
	var st [25]uint32
	keccakF800Absorb(&st, headerDigest, nonce, tail)
	keccakF800(&st)

	var ret [8]byte
	binary.BigEndian.PutUint32(ret[:4], st[1])
	binary.BigEndian.PutUint32(ret[4:], st[0])
	return binary.LittleEndian.Uint64(ret[:])
}

// keccakF800Long derives the 256-bit final digest from the first eight lanes
func keccakF800Long(headerDigest types.Hash, nonce uint64, tail *[8]uint32) (out types.Hash) {
	var st [25]uint32
	keccakF800Absorb(&st, headerDigest, nonce, tail)
	keccakF800(&st)

	for i := 0; i < 8; i++ {
		binary.LittleEndian.PutUint32(out[i*4:], st[i])
	}
	return out
}
