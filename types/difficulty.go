package types

import (
	"encoding/binary"
	"errors"
	"math/big"
	"math/bits"
	"strings"

	"git.gammaspectra.live/P2Pool/progpow/utils"
	fasthex "github.com/tmthrgd/go-hex"
	"lukechampine.com/uint128"
)

const DifficultySize = 16

// Difficulty 128-bit unsigned difficulty, serialized as 32-character
// big-endian hex
type Difficulty uint128.Uint128

var ZeroDifficulty = Difficulty(uint128.Zero)
var MaxDifficulty = Difficulty(uint128.Max)

func NewDifficulty(lo, hi uint64) Difficulty {
	return Difficulty(uint128.New(lo, hi))
}

func DifficultyFrom64(v uint64) Difficulty {
	return Difficulty(uint128.From64(v))
}

func MustDifficultyFromString(s string) Difficulty {
	if d, err := DifficultyFromString(s); err != nil {
		panic(err)
	} else {
		return d
	}
}

func DifficultyFromString(s string) (Difficulty, error) {
	if buf, err := fasthex.DecodeString(s); err != nil {
		return ZeroDifficulty, err
	} else {
		if len(buf) != DifficultySize {
			return ZeroDifficulty, errors.New("wrong size")
		}
		return DifficultyFromBytes(buf), nil
	}
}

// DifficultyFromBytes buf must be exactly DifficultySize bytes, big-endian
func DifficultyFromBytes(buf []byte) Difficulty {
	return Difficulty{
		Hi: binary.BigEndian.Uint64(buf),
		Lo: binary.BigEndian.Uint64(buf[8:]),
	}
}

func (d Difficulty) Bytes() []byte {
	var buf [DifficultySize]byte
	binary.BigEndian.PutUint64(buf[:], d.Hi)
	binary.BigEndian.PutUint64(buf[8:], d.Lo)
	return buf[:]
}

func (d Difficulty) String() string {
	return fasthex.EncodeToString(d.Bytes())
}

func (d Difficulty) IsZero() bool {
	return uint128.Uint128(d).IsZero()
}

func (d Difficulty) Equals(v Difficulty) bool {
	return uint128.Uint128(d).Equals(uint128.Uint128(v))
}

func (d Difficulty) Cmp(v Difficulty) int {
	return uint128.Uint128(d).Cmp(uint128.Uint128(v))
}

func (d Difficulty) Add(v Difficulty) Difficulty {
	return Difficulty(uint128.Uint128(d).Add(uint128.Uint128(v)))
}

func (d Difficulty) Sub(v Difficulty) Difficulty {
	return Difficulty(uint128.Uint128(d).Sub(uint128.Uint128(v)))
}

func (d Difficulty) Mul64(v uint64) Difficulty {
	return Difficulty(uint128.Uint128(d).Mul64(v))
}

func (d Difficulty) Div(v Difficulty) Difficulty {
	return Difficulty(uint128.Uint128(d).Div(uint128.Uint128(v)))
}

func (d Difficulty) Big() *big.Int {
	return uint128.Uint128(d).Big()
}

func (d Difficulty) MarshalJSON() ([]byte, error) {
	var buf [DifficultySize*2 + 2]byte
	buf[0] = '"'
	buf[DifficultySize*2+1] = '"'
	fasthex.Encode(buf[1:], d.Bytes())
	return buf[:], nil
}

func (d *Difficulty) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || len(b) == 2 {
		return nil
	}

	if b[0] == '"' && b[len(b)-1] == '"' {
		s := string(b[1 : len(b)-1])
		switch {
		case strings.HasPrefix(s, "0x"):
			i, ok := new(big.Int).SetString(s[2:], 16)
			if !ok || i.Sign() < 0 || i.BitLen() > 128 {
				return errors.New("invalid difficulty")
			}
			*d = Difficulty(uint128.FromBig(i))
			return nil
		case len(s) == DifficultySize*2:
			diff, err := DifficultyFromString(s)
			if err != nil {
				return err
			}
			*d = diff
			return nil
		default:
			b = []byte(s)
		}
	}

	// plain decimal, fits 64 bits in practice
	v, err := utils.ParseUint64(b)
	if err != nil {
		return err
	}
	*d = DifficultyFrom64(v)
	return nil
}

// max256 2^256 - 1
var max256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// powValue pow hashes are compared as little-endian 256-bit integers
func powValue(pow Hash) *big.Int {
	var buf [HashSize]byte
	for i := range buf {
		buf[i] = pow[HashSize-1-i]
	}
	return new(big.Int).SetBytes(buf[:])
}

// DifficultyFromPoW the highest difficulty a given pow hash satisfies,
// floor((2^256 - 1) / hash)
func DifficultyFromPoW(pow Hash) Difficulty {
	if pow == ZeroHash {
		return MaxDifficulty
	}

	q := new(big.Int).Div(max256, powValue(pow))
	if q.BitLen() > 128 {
		return MaxDifficulty
	}
	return Difficulty(uint128.FromBig(q))
}

// CheckPoW verifies that pow satisfies the difficulty, that is,
// hash * difficulty < 2^256. Reference implementation via big.Int, see
// CheckPoW_Native for the allocation-free one.
func (d Difficulty) CheckPoW(pow Hash) bool {
	product := new(big.Int).Mul(powValue(pow), d.Big())
	return product.BitLen() <= 256
}

// CheckPoW_Native same check as CheckPoW, via 64-bit limb multiplication.
// Valid when no carry spills past the fourth product limb.
func (d Difficulty) CheckPoW_Native(pow Hash) bool {
	var h [4]uint64
	for i := range h {
		h[i] = binary.LittleEndian.Uint64(pow[i*8:])
	}

	limbs := [2]uint64{d.Lo, d.Hi}

	var product [6]uint64
	for i := range limbs {
		var carry uint64
		for j := range h {
			hi, lo := bits.Mul64(h[j], limbs[i])
			var c1, c2 uint64
			lo, c1 = bits.Add64(lo, product[i+j], 0)
			lo, c2 = bits.Add64(lo, carry, 0)
			product[i+j] = lo
			carry = hi + c1 + c2
		}
		product[i+4] += carry
	}

	return product[4]|product[5] == 0
}
