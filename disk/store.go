// Package disk provides the fixed-capacity block store backing the
// emulated card.
package disk

import (
	"errors"
	"fmt"
	"os"

	"github.com/sarchlab/akita/v4/mem/mem"
)

const (
	// BlockSize is the size of a single card block in bytes.
	BlockSize = 512

	// Capacity is the total size of the backing store in bytes (4 MiB).
	Capacity = 4 * 1024 * 1024

	// NumBlocks is the number of addressable blocks.
	NumBlocks = Capacity / BlockSize
)

// ErrBlockOutOfRange is returned when a block number addresses bytes
// beyond the backing store capacity.
var ErrBlockOutOfRange = errors.New("block number out of range")

// Store is the emulated card's block storage. It is sized at
// construction and never resized; contents are read-only after a
// successful LoadImage.
type Store struct {
	storage *mem.Storage
	loaded  bool
}

// NewStore creates an empty block store of the full card capacity.
func NewStore() *Store {
	return &Store{
		storage: mem.NewStorage(Capacity),
	}
}

// LoadImage reads a card image into the store. The image must exist and
// be exactly Capacity bytes; anything else is a configuration error and
// the store is left unmodified. Loading happens once, synchronously,
// before any command traffic.
func (s *Store) LoadImage(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat card image: %w", err)
	}
	if info.Size() != Capacity {
		return fmt.Errorf(
			"card image %s is %d bytes instead of %d",
			path, info.Size(), Capacity)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read card image: %w", err)
	}

	if err := s.storage.Write(0, data); err != nil {
		return fmt.Errorf("failed to populate backing store: %w", err)
	}

	s.loaded = true
	return nil
}

// Loaded reports whether an image has been loaded.
func (s *Store) Loaded() bool {
	return s.loaded
}

// ReadBlock returns the 512 bytes of the given block. Block numbers at
// or beyond NumBlocks return ErrBlockOutOfRange; there is no wrapping
// or zero-fill.
func (s *Store) ReadBlock(blockNo uint32) ([]byte, error) {
	if uint64(blockNo) >= NumBlocks {
		return nil, fmt.Errorf("%w: block %d (capacity %d blocks)",
			ErrBlockOutOfRange, blockNo, NumBlocks)
	}

	data, err := s.storage.Read(uint64(blockNo)*BlockSize, BlockSize)
	if err != nil {
		return nil, fmt.Errorf("failed to read block %d: %w", blockNo, err)
	}
	return data, nil
}

// WriteBlock replaces the contents of the given block. It exists for
// test fixtures and image preparation; the card protocol itself never
// writes.
func (s *Store) WriteBlock(blockNo uint32, data []byte) error {
	if uint64(blockNo) >= NumBlocks {
		return fmt.Errorf("%w: block %d (capacity %d blocks)",
			ErrBlockOutOfRange, blockNo, NumBlocks)
	}
	if len(data) != BlockSize {
		return fmt.Errorf("block data must be %d bytes, got %d",
			BlockSize, len(data))
	}

	if err := s.storage.Write(uint64(blockNo)*BlockSize, data); err != nil {
		return fmt.Errorf("failed to write block %d: %w", blockNo, err)
	}
	return nil
}
