package progpow

import (
	"encoding/binary"
	"errors"
	"fmt"

	"git.gammaspectra.live/P2Pool/progpow/types"
	"git.gammaspectra.live/P2Pool/progpow/utils"
	"golang.org/x/crypto/sha3"
)

var (
	// ErrOutOfRange a Source was asked for an item index past its dataset.
	// The loop masks indices by ItemCount, so this surfacing from Verify
	// indicates a Source reporting a count larger than it holds.
	ErrOutOfRange = errors.New("dataset index out of range")
	// ErrUnavailable the Source cannot serve reads right now
	ErrUnavailable = errors.New("dataset unavailable")
	// ErrEmptyDataset the Source reports zero items
	ErrEmptyDataset = errors.New("dataset holds no items")
	// ErrDatasetTooLarge the Source reports more items than item addressing
	// can reach
	ErrDatasetTooLarge = errors.New("dataset item count exceeds 32-bit addressing")
)

// Source read access to a precomputed dataset. Implementations must be safe
// for concurrent readers and must not mutate served items while a
// verification is in flight. Generating dataset contents is the caller's
// concern, this package only consumes them.
type Source interface {
	// ItemCount number of ItemBytes sized items in the dataset. Item
	// indices are 32-bit by consensus definition; counts past 2^32-1 are
	// rejected at verification time.
	ItemCount() uint64
	// Item the item at index, index < ItemCount()
	Item(index uint64) (*[ItemBytes]byte, error)
	// Cache the CacheBytes region the generated program addresses wordwise
	Cache() (*[CacheWords]uint32, error)
}

// SliceSource memory backed Source over a caller supplied dataset blob.
// Intended for light verification datasets and tests.
type SliceSource struct {
	data  []byte
	cache [CacheWords]uint32
}

func NewSliceSource(data []byte) (*SliceSource, error) {
	if len(data) == 0 || len(data)%ItemBytes != 0 {
		return nil, fmt.Errorf("dataset size %d is not a positive multiple of %d", len(data), ItemBytes)
	}
	s := &SliceSource{
		data: data,
	}
	// the cache region wraps around on datasets smaller than CacheBytes
	for i := range s.cache {
		s.cache[i] = binary.LittleEndian.Uint32(data[(i*4)%len(data):])
	}
	return s, nil
}

func (s *SliceSource) ItemCount() uint64 {
	return uint64(len(s.data) / ItemBytes)
}

func (s *SliceSource) Item(index uint64) (*[ItemBytes]byte, error) {
	if index >= s.ItemCount() {
		return nil, fmt.Errorf("%w: item %d of %d", ErrOutOfRange, index, s.ItemCount())
	}
	return (*[ItemBytes]byte)(s.data[index*ItemBytes:]), nil
}

func (s *SliceSource) Cache() (*[CacheWords]uint32, error) {
	return &s.cache, nil
}

// EpochLength blocks per dataset epoch
const EpochLength = 30000

// SeedHash the keccak-256 chain seed for the dataset epoch containing
// height. Dataset builders derive cache contents from it; verification
// itself never needs it.
func SeedHash(height uint64) (seed types.Hash) {
	if height < EpochLength {
		return types.ZeroHash
	}
	keccak256 := sha3.NewLegacyKeccak256()
	for i := uint64(0); i < height/EpochLength; i++ {
		keccak256.Reset()
		_, _ = keccak256.Write(seed[:])
		utils.SumNoEscape(keccak256, seed[:0])
	}
	return seed
}
