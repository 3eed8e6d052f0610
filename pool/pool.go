package pool

import (
	"fmt"
	"log/slog"

	"github.com/joshuapare/flalloc/internal/buf"
	"github.com/joshuapare/flalloc/internal/format"
)

// Pool is a first-fit free-list allocator over one address space.
//
// NOT thread-safe. See Synced.
type Pool struct {
	space []byte

	// head is the link to the first free block, encoded exactly like the
	// in-band links (payload address, format.NoLink when empty).
	head uint64

	log      *slog.Logger
	scribble bool

	capacity  uint64
	live      int
	liveBytes uint64
	counters  counters
}

type counters struct {
	arenas   uint64
	allocs   uint64
	frees    uint64
	failures uint64
	splits   uint64
	merges   uint64
}

var _ Allocator = (*Pool)(nil)

// New creates an empty pool over space. No memory is usable until an arena
// is registered.
//
// Parameters:
//   - space: the address space; Addr values are offsets into it
//   - opts: logging and debug options (use nil for defaults)
func New(space []byte, opts *Options) *Pool {
	p := &Pool{
		space: space,
		head:  format.NoLink,
		log:   slog.New(slog.DiscardHandler),
	}
	if opts != nil {
		if opts.Logger != nil {
			p.log = opts.Logger
		}
		p.scribble = opts.Scribble
	}
	return p
}

// Space returns the address space the pool manages.
func (p *Pool) Space() []byte {
	return p.space
}

// RegisterArena aligns addr up to the word size, writes a header there and
// releases the rest of the range into the free list. An arena that touches
// a free block already in the pool is merged with it.
//
// Registering overlapping ranges, or a range that is already in use, is
// not detected.
func (p *Pool) RegisterArena(addr Addr, size uint64) error {
	start := uint64(addr)
	end, err := buf.CheckRange(uint64(len(p.space)), start, size)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrArenaBounds, err)
	}
	blk, ok := format.AlignWord(start)
	if !ok || blk > end || end-blk < format.MinSplit {
		return fmt.Errorf("%w: %d bytes at 0x%X", ErrArenaTooSmall, size, start)
	}
	capacity := end - blk - format.HeaderSize

	p.capacity += end - blk
	p.counters.arenas++
	p.log.Debug("register arena", "addr", start, "size", size, "header", blk, "capacity", capacity)

	p.release(blk, capacity)
	return nil
}

// Alloc returns the payload address of a free block holding at least size
// bytes. Requests are rounded up to the word size and to MinPayload.
//
// Returns ErrZeroSize for size 0 and ErrNoSpace when no free block is
// large enough; in both cases the free list is untouched and Nil is
// returned.
func (p *Pool) Alloc(size uint64) (Addr, error) {
	if size == 0 {
		return Nil, ErrZeroSize
	}
	need, ok := format.RoundRequest(size)
	if !ok {
		p.counters.failures++
		return Nil, ErrNoSpace
	}

	prev, hasPrev := uint64(0), false
	blk, found := p.first()
	var have uint64
	for found {
		have = p.sizeAt(blk)
		if have >= need {
			break
		}
		prev, hasPrev = blk, true
		blk, found = p.next(blk)
	}
	if !found {
		p.counters.failures++
		p.log.Debug("alloc failed", "size", size, "need", need)
		return Nil, ErrNoSpace
	}

	next, hasNext := p.next(blk)
	split := have-need >= format.MinSplit
	if split {
		rem := blk + format.HeaderSize + need
		format.PutHeader(p.space, rem, have-need-format.HeaderSize, false)
		format.PutLink(p.space, rem, next, hasNext)
		next, hasNext = rem, true
		have = need
		p.counters.splits++
	}
	p.setLink(prev, hasPrev, next, hasNext)
	format.PutHeader(p.space, blk, have, true)

	payload := blk + format.HeaderSize
	if p.scribble {
		fill(p.space[payload:payload+have], AllocatedByte)
	}

	p.live++
	p.liveBytes += have
	p.counters.allocs++
	p.log.Debug("alloc", "size", size, "addr", payload, "capacity", have, "split", split)
	return Addr(payload), nil
}

// Free returns the block at addr to the free list and merges it with any
// memory-adjacent free neighbours. Freeing Nil is a no-op.
//
// Returns ErrBadAddr for addresses that cannot be a payload of this pool
// and ErrNotAllocated when the block is already free.
func (p *Pool) Free(addr Addr) error {
	if addr == Nil {
		return nil
	}
	blk, size, allocated, err := p.lookup(addr)
	if err != nil {
		return err
	}
	if !allocated {
		return fmt.Errorf("%w: 0x%X", ErrNotAllocated, uint64(addr))
	}

	p.live--
	p.liveBytes -= size
	p.counters.frees++
	p.log.Debug("free", "addr", uint64(addr), "capacity", size)

	p.release(blk, size)
	return nil
}

// SizeOf returns the payload capacity of the allocated block at addr. The
// capacity may exceed the size originally requested.
func (p *Pool) SizeOf(addr Addr) (uint64, error) {
	_, size, allocated, err := p.lookup(addr)
	if err != nil {
		return 0, err
	}
	if !allocated {
		return 0, fmt.Errorf("%w: 0x%X", ErrNotAllocated, uint64(addr))
	}
	return size, nil
}

// Bytes returns the payload of the allocated block at addr. The slice
// aliases the pool's address space and is only valid until the block is
// freed.
func (p *Pool) Bytes(addr Addr) ([]byte, error) {
	size, err := p.SizeOf(addr)
	if err != nil {
		return nil, err
	}
	start := uint64(addr)
	return p.space[start : start+size : start+size], nil
}

// Head returns the header address of the first free block, and false when
// the free list is empty. Intended for diagnostics and tests.
func (p *Pool) Head() (Addr, bool) {
	blk, ok := p.first()
	return Addr(blk), ok
}

// Walk calls fn for every free block in list order until fn returns false.
func (p *Pool) Walk(fn func(Block) bool) {
	// No list can hold more blocks than fit in the space, so a cyclic
	// (corrupted) list still terminates.
	limit := len(p.space)/format.MinSplit + 1
	blk, ok := p.first()
	for i := 0; ok && i < limit; i++ {
		if !fn(Block{Header: Addr(blk), Size: p.sizeAt(blk)}) {
			return
		}
		blk, ok = p.next(blk)
	}
}

// Blocks returns the free list in list order.
func (p *Pool) Blocks() []Block {
	var out []Block
	p.Walk(func(b Block) bool {
		out = append(out, b)
		return true
	})
	return out
}

// Stats walks the free list and returns a usage snapshot.
func (p *Pool) Stats() Stats {
	s := Stats{
		Capacity:  p.capacity,
		Live:      p.live,
		LiveBytes: p.liveBytes,
		Arenas:    p.counters.arenas,
		Allocs:    p.counters.allocs,
		Frees:     p.counters.frees,
		Failures:  p.counters.failures,
		Splits:    p.counters.splits,
		Merges:    p.counters.merges,
	}
	p.Walk(func(b Block) bool {
		s.FreeBlocks++
		s.FreeBytes += b.Size
		if b.Size > s.LargestFree {
			s.LargestFree = b.Size
		}
		return true
	})
	return s
}

// lookup recovers the header of the block whose payload starts at addr.
func (p *Pool) lookup(addr Addr) (blk, size uint64, allocated bool, err error) {
	a := uint64(addr)
	if a < format.HeaderSize || !format.IsWordAligned(a) {
		return 0, 0, false, fmt.Errorf("%w: 0x%X", ErrBadAddr, a)
	}
	blk = a - format.HeaderSize
	if !buf.Has(p.space, blk, format.HeaderSize) {
		return 0, 0, false, fmt.Errorf("%w: 0x%X beyond space of %d bytes", ErrBadAddr, a, len(p.space))
	}
	size, allocated = format.ReadHeader(p.space, blk)
	if size < format.LinkSize || !buf.Has(p.space, a, size) {
		return 0, 0, false, fmt.Errorf("%w: 0x%X has implausible size %d", ErrBadAddr, a, size)
	}
	return blk, size, allocated, nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}
