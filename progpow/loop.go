package progpow

import (
	"encoding/binary"
	"math/bits"
)

// mixState per-hash register file, one row of registers per lane
type mixState [progpowLanes][progpowRegs]uint32

// fillMix seeds one lane's registers from the keccak seed and the lane id
func fillMix(seed uint64, laneID uint32, mix *[progpowRegs]uint32) {
	fnvHash := fnvOffsetBasis
	var randState kiss99State
	randState.z = fnv1a(&fnvHash, uint32(seed))
	randState.w = fnv1a(&fnvHash, uint32(seed>>32))
	randState.jsr = fnv1a(&fnvHash, laneID)
	randState.jcong = fnv1a(&fnvHash, laneID)

	for i := range mix {
		mix[i] = randState.next()
	}
}

// merge folds b into a. Every variant preserves the entropy already in a
// even when b is constant, which is why plain AND/OR are not in the set.
func merge(a, b uint32, op mergeOp, rotate uint8) uint32 {
	switch op {
	case mergeMulAdd:
		return a*33 + b
	case mergeXorMul:
		return (a ^ b) * 33
	case mergeRotlXor:
		return bits.RotateLeft32(a, int(rotate)) ^ b
	case mergeRotrXor:
		return bits.RotateLeft32(a, -int(rotate)) ^ b
	default:
		panic("unreachable")
	}
}

func randomMath(op mathOp, a, b uint32) uint32 {
	switch op {
	case mathAdd:
		return a + b
	case mathMul:
		return a * b
	case mathMulHi:
		return uint32((uint64(a) * uint64(b)) >> 32)
	case mathMin:
		return min(a, b)
	case mathRotl:
		return bits.RotateLeft32(a, int(b&31))
	case mathRotr:
		return bits.RotateLeft32(a, -int(b&31))
	case mathAnd:
		return a & b
	case mathOr:
		return a | b
	case mathXor:
		return a ^ b
	case mathClz:
		return uint32(bits.LeadingZeros32(a) + bits.LeadingZeros32(b))
	case mathPopcount:
		return uint32(bits.OnesCount32(a) + bits.OnesCount32(b))
	default:
		panic("unreachable")
	}
}

// runRound interprets the period program once per lane, folding the fetched
// dataset item and cache region words into the register file. Each lane
// consumes a different four-word window of the item, rotating with the round.
func (mix *mixState) runRound(prog *Program, round uint32, item *[ItemBytes]byte, cdag *[CacheWords]uint32) {
	for l := uint32(0); l < progpowLanes; l++ {
		lane := &mix[l]
		wordBase := ((l ^ round) % progpowLanes) * dagLoads

		for i := range prog.instructions {
			ins := &prog.instructions[i]

			var data uint32
			switch ins.kind {
			case opCacheMerge:
				data = cdag[lane[ins.src1]%CacheWords]
			case opMath:
				data = randomMath(ins.math, lane[ins.src1], lane[ins.src2])
			case opDagMerge:
				data = binary.LittleEndian.Uint32(item[(wordBase+uint32(ins.load))*4:])
			}
			lane[ins.dst] = merge(lane[ins.dst], data, ins.merge, ins.rotate)
		}
	}
}
