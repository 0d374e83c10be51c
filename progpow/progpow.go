// Package progpow verifies ProgPoW proofs of work.
//
// ProgPoW extends the ethash dataset lookup with a randomly generated
// inner program that rotates every PeriodLength blocks, so that the
// work performed matches commodity GPU capabilities instead of fixed
// function hardware. This package implements the verification side
// only: it recomputes the mix digest and final digest for a candidate
// (header, nonce, height) against a dataset exposed through Source,
// and never searches nonces or generates dataset contents.
package progpow

import (
	"encoding/binary"

	"git.gammaspectra.live/P2Pool/progpow/types"
)

const (
	// PeriodLength number of blocks sharing one generated program
	PeriodLength = 50

	// ItemBytes size of one dataset item
	ItemBytes = 256
	// CacheBytes size of the low dataset region the program reads wordwise
	CacheBytes = 16 * 1024
	// CacheWords CacheBytes in 32-bit words
	CacheWords = CacheBytes / 4

	progpowLanes = 16
	progpowRegs  = 32
	dagLoads     = 4
	cntCache     = 11
	cntMath      = 18
	// rounds per hash, one dataset item each
	cntDag = 64
)

// hashMix runs the full pipeline with the program and dataset already
// resolved: seed from keccak-f800, lane mix fill, cntDag program rounds,
// FNV reduction, final keccak-f800.
func hashMix(prog *Program, headerDigest types.Hash, nonce uint64, itemCount uint32, cdag *[CacheWords]uint32, fetch func(index uint64) (*[ItemBytes]byte, error)) (mixDigest, result types.Hash, err error) {
	var tail [8]uint32
	seed := keccakF800Short(headerDigest, nonce, &tail)

	var mix mixState
	for lane := uint32(0); lane < progpowLanes; lane++ {
		fillMix(seed, lane, &mix[lane])
	}

	for round := uint32(0); round < cntDag; round++ {
		index := mix[round%progpowLanes][0] % itemCount
		item, err := fetch(uint64(index))
		if err != nil {
			return types.ZeroHash, types.ZeroHash, err
		}
		mix.runRound(prog, round, item, cdag)
	}

	// reduce each lane to a single word, then fold lanes pairwise into
	// the eight digest words
	var laneResults [progpowLanes]uint32
	for lane := uint32(0); lane < progpowLanes; lane++ {
		laneHash := fnvOffsetBasis
		for i := 0; i < progpowRegs; i++ {
			fnv1a(&laneHash, mix[lane][i])
		}
		laneResults[lane] = laneHash
	}
	for i := range tail {
		tail[i] = fnvOffsetBasis
	}
	for lane := uint32(0); lane < progpowLanes; lane++ {
		fnv1a(&tail[lane%8], laneResults[lane])
	}

	result = keccakF800Long(headerDigest, seed, &tail)
	for i := range tail {
		binary.LittleEndian.PutUint32(mixDigest[i*4:], tail[i])
	}
	return mixDigest, result, nil
}
