// Package pool implements a first-fit free-list allocator over a single
// contiguous address space.
//
// # Overview
//
// A Pool manages a caller-supplied []byte. Callers register one or more
// arenas (ranges of that slice) and then acquire and release blocks from
// them. Addresses are byte offsets into the space, so a Pool never touches
// memory outside the slice it was given and a bad address can be rejected
// instead of dereferenced.
//
// The design follows the classic embedded free-list malloc:
//
//   - one singly linked list of free blocks, ordered by ascending address
//   - first-fit search; no size classes, no best-fit
//   - a block is split when the remainder can hold a header plus 32 bytes
//   - release inserts in address order and then merges every pair of
//     memory-adjacent free blocks in a single pass
//
// # Block Layout
//
// Every block starts with an 8-byte header. The low 63 bits hold the
// payload capacity (header excluded); the top bit is set while the block is
// allocated. While a block is free the first payload word holds the link to
// the next free block.
//
//	[size|tag: 8 bytes][payload: size bytes]
//	                   ^ address returned by Alloc
//
// See internal/format for the exact offsets.
//
// # Usage Example
//
//	space := make([]byte, 1<<16)
//	p := pool.New(space, nil)
//	if err := p.RegisterArena(0, uint64(len(space))); err != nil {
//	    return err
//	}
//
//	addr, err := p.Alloc(100)
//	if errors.Is(err, pool.ErrNoSpace) {
//	    // exhausted
//	}
//	payload, _ := p.Bytes(addr)
//	copy(payload, data)
//
//	_ = p.Free(addr)
//
// # Error Handling
//
// Exhaustion is reported as ErrNoSpace and is always recoverable. Free
// performs O(1) sanity checks (alignment, bounds, allocation tag) and
// returns ErrBadAddr or ErrNotAllocated instead of corrupting the list for
// the common mistakes. Overlapping arena registration and wild writes into
// headers are not detected.
//
// # Thread Safety
//
// Pool is not safe for concurrent use and must not be re-entered, for
// example from a log handler that allocates
// from the same pool. Wrap it with NewSynced when several goroutines
// share one pool.
package pool
