package progpow

type opKind uint8

const (
	// opCacheMerge fold a word of the low cache region into a register
	opCacheMerge = opKind(iota)
	// opMath register-to-register random math, result merged into a register
	opMath
	// opDagMerge fold one of the four loaded dataset words into a register
	opDagMerge
)

type mathOp uint8

const (
	// mathAdd a+b
	mathAdd = mathOp(iota)
	// mathMul a*b
	mathMul
	// mathMulHi high 32 bits of a*b
	mathMulHi
	// mathMin smaller of a and b
	mathMin
	// mathRotl rotate left "a" by "b & 31" bits
	mathRotl
	// mathRotr rotate right "a" by "b & 31" bits
	mathRotr
	// mathAnd a&b
	mathAnd
	// mathOr a|b
	mathOr
	// mathXor a^b
	mathXor
	// mathClz leading zero count of a plus leading zero count of b
	mathClz
	// mathPopcount bit count of a plus bit count of b
	mathPopcount

	mathOps = mathPopcount + 1
)

type mergeOp uint8

const (
	// mergeMulAdd a*33 + b
	mergeMulAdd = mergeOp(iota)
	// mergeXorMul (a^b) * 33
	mergeXorMul
	// mergeRotlXor rotl(a, n) ^ b
	mergeRotlXor
	// mergeRotrXor rotr(a, n) ^ b
	mergeRotrXor
)

// instruction one step of a generated program. The same sequence runs on
// every lane; only loaded data diverges between lanes.
type instruction struct {
	kind opKind
	// src1 first math source, or the register addressing the cache region
	src1 uint8
	// src2 second math source, never equal to src1
	src2 uint8
	dst  uint8
	math mathOp
	// merge how the produced word folds into dst
	merge mergeOp
	// rotate rotation amount for the rotating merges, 1 to 31
	rotate uint8
	// load which of the four fetched dataset words (opDagMerge)
	load uint8
}

const programLength = cntCache + cntMath + dagLoads

// Program the instruction sequence shared by every hash of one period.
// Immutable once generated; safe for concurrent interpretation.
type Program struct {
	instructions [programLength]instruction
	period       uint64
}

func (p *Program) Period() uint64 {
	return p.period
}

// mergeSelector picks the merge variant and its rotation from one draw
func mergeSelector(r uint32) (mergeOp, uint8) {
	return mergeOp(r % 4), uint8((r>>16)%31) + 1
}

// progpowInit seeds KISS99 from the period and Fisher-Yates shuffles the
// destination and cache source register orders. Walking shuffled sequences
// guarantees every register is written and no cache read repeats within a
// pass, so no instruction can be optimized away.
func progpowInit(period uint64) (randState kiss99State, seqDst, seqCache [progpowRegs]uint32) {
	fnvHash := fnvOffsetBasis
	randState.z = fnv1a(&fnvHash, uint32(period))
	randState.w = fnv1a(&fnvHash, uint32(period>>32))
	randState.jsr = fnv1a(&fnvHash, uint32(period))
	randState.jcong = fnv1a(&fnvHash, uint32(period>>32))

	for i := uint32(0); i < progpowRegs; i++ {
		seqDst[i] = i
		seqCache[i] = i
	}
	for i := uint32(progpowRegs - 1); i > 0; i-- {
		j := randState.next() % (i + 1)
		seqDst[i], seqDst[j] = seqDst[j], seqDst[i]
		j = randState.next() % (i + 1)
		seqCache[i], seqCache[j] = seqCache[j], seqCache[i]
	}
	return randState, seqDst, seqCache
}

// GenerateProgram derives the instruction sequence for one program period.
// Generation is deterministic, any verifier rebuilds an identical program
// from the period alone. The draw order below is consensus critical.
func GenerateProgram(period uint64) *Program {
	randState, seqDst, seqCache := progpowInit(period)

	p := &Program{
		period: period,
	}
	var n int
	var srcCounter, dstCounter uint32

	for i := 0; i < cntMath; i++ {
		if i < cntCache {
			// cached memory access, lanes access random locations
			src := seqCache[srcCounter%progpowRegs]
			srcCounter++
			dst := seqDst[dstCounter%progpowRegs]
			dstCounter++
			m, rotate := mergeSelector(randState.next())
			p.instructions[n] = instruction{
				kind:   opCacheMerge,
				src1:   uint8(src),
				dst:    uint8(dst),
				merge:  m,
				rotate: rotate,
			}
			n++
		}

		// random math, never mixing a register with itself
		srcRnd := randState.next() % (progpowRegs * (progpowRegs - 1))
		src1 := srcRnd % progpowRegs
		src2 := srcRnd / progpowRegs
		if src2 >= src1 {
			src2++
		}
		op := mathOp(randState.next() % uint32(mathOps))
		dst := seqDst[dstCounter%progpowRegs]
		dstCounter++
		m, rotate := mergeSelector(randState.next())
		p.instructions[n] = instruction{
			kind:   opMath,
			src1:   uint8(src1),
			src2:   uint8(src2),
			dst:    uint8(dst),
			math:   op,
			merge:  m,
			rotate: rotate,
		}
		n++
	}

	// the first loaded word always lands in register 0, feeding the next
	// round's item address
	m, rotate := mergeSelector(randState.next())
	p.instructions[n] = instruction{
		kind:   opDagMerge,
		merge:  m,
		rotate: rotate,
	}
	n++
	for k := uint8(1); k < dagLoads; k++ {
		dst := seqDst[dstCounter%progpowRegs]
		dstCounter++
		m, rotate = mergeSelector(randState.next())
		p.instructions[n] = instruction{
			kind:   opDagMerge,
			dst:    uint8(dst),
			load:   k,
			merge:  m,
			rotate: rotate,
		}
		n++
	}

	return p
}
