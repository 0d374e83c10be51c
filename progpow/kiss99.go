package progpow

const (
	fnvOffsetBasis uint32 = 0x811c9dc5
	fnvPrime       uint32 = 0x1000193
)

// fnv1a mixes d into the running hash h and returns the new value
func fnv1a(h *uint32, d uint32) uint32 {
	*h = (*h ^ d) * fnvPrime
	return *h
}

// kiss99State Marsaglia's KISS99 generator, combining a multiply-with-carry
// pair, a 3-shift register and a linear congruential generator. Period is
// about 2^123. Every random draw in program generation and mix seeding comes
// from here.
type kiss99State struct {
	z, w, jsr, jcong uint32
}

func (st *kiss99State) next() uint32 {
	st.z = 36969*(st.z&65535) + (st.z >> 16)
	st.w = 18000*(st.w&65535) + (st.w >> 16)
	mwc := (st.z << 16) + st.w

	st.jsr ^= st.jsr << 17
	st.jsr ^= st.jsr >> 13
	st.jsr ^= st.jsr << 5

	st.jcong = 69069*st.jcong + 1234567

	return (mwc ^ st.jcong) + st.jsr
}
