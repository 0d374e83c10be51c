package progpow

import (
	"math"
	"sync"
	"sync/atomic"

	"git.gammaspectra.live/P2Pool/progpow/types"
	"git.gammaspectra.live/P2Pool/progpow/utils"
	"golang.org/x/sys/cpu"
)

// VerifyOutcome result of checking one candidate solution
type VerifyOutcome struct {
	// MixDigest digest of the inner mix loop, placed in the sealed header
	MixDigest types.Hash `json:"mix_digest"`
	// Result the final 256-bit proof of work value
	Result types.Hash `json:"result"`
	// Valid whether Result satisfies the target or difficulty
	Valid bool `json:"valid"`
}

// DefaultProgramCacheSize periods kept memoized. Verification workloads
// touch the current and previous period almost exclusively.
const DefaultProgramCacheSize = 4

// Verifier checks ProgPoW solutions against one dataset. Safe for concurrent
// use; parallel verifications share the Source, the period program cache and
// the lazily fetched cache region.
type Verifier struct {
	source   Source
	programs utils.Cache[uint64, *Program]

	_         cpu.CacheLinePad
	cacheLock sync.Mutex
	cdag      atomic.Pointer[[CacheWords]uint32]
}

func NewVerifier(source Source) *Verifier {
	return NewVerifierWithCache(source, utils.NewLRUCache[uint64, *Program](DefaultProgramCacheSize))
}

// NewVerifierWithCache a Verifier with a caller supplied program cache, for
// example utils.NewMapCache when verifying across many periods at once
func NewVerifierWithCache(source Source, programs utils.Cache[uint64, *Program]) *Verifier {
	return &Verifier{
		source:   source,
		programs: programs,
	}
}

// program memoized per-period lookup. Concurrent misses may generate the
// same program twice; the copies are identical and either may be kept.
func (v *Verifier) program(height uint64) *Program {
	period := height / PeriodLength
	if p, ok := v.programs.Get(period); ok {
		return p
	}
	p := GenerateProgram(period)
	v.programs.Set(period, p)
	utils.Debugf("ProgPoW", "generated program for period %d", period)
	return p
}

// cacheRegion fetches the dataset cache region once and keeps it. The warm
// path is a single atomic load, only racing first uses take the lock. Failed
// fetches are not remembered so a Source that was unavailable can recover.
func (v *Verifier) cacheRegion() (*[CacheWords]uint32, error) {
	if cdag := v.cdag.Load(); cdag != nil {
		return cdag, nil
	}

	v.cacheLock.Lock()
	defer v.cacheLock.Unlock()
	if cdag := v.cdag.Load(); cdag != nil {
		return cdag, nil
	}
	cdag, err := v.source.Cache()
	if err != nil {
		return nil, err
	}
	v.cdag.Store(cdag)
	return cdag, nil
}

// Hash computes the mix digest and final value for a candidate without
// judging it against any target.
func (v *Verifier) Hash(headerDigest types.Hash, nonce, height uint64) (mixDigest, result types.Hash, err error) {
	itemCount := v.source.ItemCount()
	if itemCount == 0 {
		return types.ZeroHash, types.ZeroHash, ErrEmptyDataset
	}
	if itemCount > math.MaxUint32 {
		return types.ZeroHash, types.ZeroHash, ErrDatasetTooLarge
	}

	cdag, err := v.cacheRegion()
	if err != nil {
		return types.ZeroHash, types.ZeroHash, err
	}

	return hashMix(v.program(height), headerDigest, nonce, uint32(itemCount), cdag, v.source.Item)
}

// Verify recomputes the hash for the candidate and compares the result
// against target as 256-bit big-endian unsigned values. A result equal to
// the target is valid.
func (v *Verifier) Verify(headerDigest types.Hash, nonce, height uint64, target types.Hash) (VerifyOutcome, error) {
	mixDigest, result, err := v.Hash(headerDigest, nonce, height)
	if err != nil {
		return VerifyOutcome{}, err
	}
	return VerifyOutcome{
		MixDigest: mixDigest,
		Result:    result,
		Valid:     result.Cmp(target) <= 0,
	}, nil
}

// VerifyDifficulty like Verify, judging the result against a pool style
// 128-bit difficulty instead of a target, with the result interpreted
// little-endian.
func (v *Verifier) VerifyDifficulty(headerDigest types.Hash, nonce, height uint64, difficulty types.Difficulty) (VerifyOutcome, error) {
	mixDigest, result, err := v.Hash(headerDigest, nonce, height)
	if err != nil {
		return VerifyOutcome{}, err
	}
	return VerifyOutcome{
		MixDigest: mixDigest,
		Result:    result,
		Valid:     difficulty.CheckPoW_Native(result),
	}, nil
}

// VerifyMany verifies a batch of nonces against one header and target,
// spreading the work across routines. Outcomes are ordered like nonces.
func (v *Verifier) VerifyMany(headerDigest types.Hash, nonces []uint64, height uint64, target types.Hash) ([]VerifyOutcome, error) {
	outcomes := make([]VerifyOutcome, len(nonces))
	if err := utils.SplitWork(0, uint64(len(nonces)), func(workIndex uint64, routineIndex int) error {
		outcome, err := v.Verify(headerDigest, nonces[workIndex], height, target)
		if err != nil {
			return err
		}
		outcomes[workIndex] = outcome
		return nil
	}, nil); err != nil {
		return nil, err
	}
	return outcomes, nil
}
