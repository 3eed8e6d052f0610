package pool

import (
	"log/slog"

	"github.com/joshuapare/flalloc/internal/format"
)

// Addr is a byte offset into a pool's address space.
type Addr uint64

// Nil is the null address. No payload is ever placed at offset 0 because
// a header always precedes it.
const Nil Addr = 0

// Layout constants re-exported for callers sizing their arenas.
const (
	HeaderSize = format.HeaderSize
	MinPayload = format.MinPayload
	MinSplit   = format.MinSplit
	WordSize   = format.WordSize
)

// Block describes one free block as seen by a free-list walk.
type Block struct {
	Header Addr   // address of the block header
	Size   uint64 // payload capacity, header excluded
}

// Payload returns the address the block would be handed out at.
func (b Block) Payload() Addr {
	return b.Header + HeaderSize
}

// End returns the first address past the block.
func (b Block) End() Addr {
	return b.Header + HeaderSize + Addr(b.Size)
}

// Stats is a snapshot of pool usage.
type Stats struct {
	// Capacity is the total number of bytes registered, headers included,
	// after alignment trimming.
	Capacity uint64

	FreeBytes   uint64 // sum of free payload capacities
	FreeBlocks  int    // length of the free list
	LargestFree uint64 // largest free payload capacity

	Live      int    // blocks currently handed out
	LiveBytes uint64 // sum of their payload capacities

	Arenas   uint64 // successful RegisterArena calls
	Allocs   uint64 // successful Alloc calls
	Frees    uint64 // successful non-nil Free calls
	Failures uint64 // Alloc calls that returned ErrNoSpace
	Splits   uint64 // blocks split during Alloc
	Merges   uint64 // adjacent pairs merged during coalescing
}

// Overhead returns the bytes spent on headers across free and live blocks.
func (s Stats) Overhead() uint64 {
	return uint64(s.FreeBlocks+s.Live) * HeaderSize
}

// Options configures a Pool. The zero value is ready to use.
type Options struct {
	// Logger receives a debug record for every operation. Nil discards.
	Logger *slog.Logger

	// Scribble fills released payloads with FreedByte and fresh allocations
	// with AllocatedByte so use of stale memory shows up quickly.
	Scribble bool
}

// Scribble patterns.
const (
	AllocatedByte = 0xCD
	FreedByte     = 0xDD
)

// Allocator is the caller-facing surface of a pool.
//
// Implementations:
//   - *Pool: the single-threaded engine
//   - *Synced: the same engine behind a mutex
type Allocator interface {
	// RegisterArena hands [addr, addr+size) to the allocator.
	RegisterArena(addr Addr, size uint64) error

	// Alloc returns the payload address of a block of at least size bytes.
	Alloc(size uint64) (Addr, error)

	// Free returns a block to the pool. Freeing Nil is a no-op.
	Free(addr Addr) error

	// Head returns the header address of the first free block.
	Head() (Addr, bool)

	// Stats returns a usage snapshot.
	Stats() Stats
}
