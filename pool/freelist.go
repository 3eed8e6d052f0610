package pool

import "github.com/joshuapare/flalloc/internal/format"

// Free-list primitives. Block handles are header addresses; links are
// stored in-band through internal/format.

func (p *Pool) first() (uint64, bool) {
	if p.head == format.NoLink {
		return 0, false
	}
	return p.head - format.HeaderSize, true
}

func (p *Pool) next(blk uint64) (uint64, bool) {
	return format.ReadLink(p.space, blk)
}

func (p *Pool) sizeAt(blk uint64) uint64 {
	size, _ := format.ReadHeader(p.space, blk)
	return size
}

// setLink points prev (or the list head when hasPrev is false) at next.
func (p *Pool) setLink(prev uint64, hasPrev bool, next uint64, hasNext bool) {
	if hasPrev {
		format.PutLink(p.space, prev, next, hasNext)
		return
	}
	if hasNext {
		p.head = next + format.HeaderSize
	} else {
		p.head = format.NoLink
	}
}

// release marks blk free, inserts it in address order and coalesces.
func (p *Pool) release(blk, size uint64) {
	payload := blk + format.HeaderSize
	if p.scribble {
		fill(p.space[payload:payload+size], FreedByte)
	}
	format.PutHeader(p.space, blk, size, false)

	prev, hasPrev := uint64(0), false
	cur, ok := p.first()
	for ok && cur <= blk {
		prev, hasPrev = cur, true
		cur, ok = p.next(cur)
	}
	format.PutLink(p.space, blk, cur, ok)
	p.setLink(prev, hasPrev, blk, true)

	p.coalesce()
}

// coalesce makes one pass over the list and merges every block with its
// successor while the two are memory-adjacent. Because a merged block is
// re-checked against its new successor, whole runs collapse in one pass.
func (p *Pool) coalesce() {
	cur, ok := p.first()
	for ok {
		next, hasNext := p.next(cur)
		if !hasNext {
			return
		}
		size := p.sizeAt(cur)
		if cur+format.HeaderSize+size != next {
			cur = next
			continue
		}
		after, hasAfter := p.next(next)
		format.PutHeader(p.space, cur, size+format.HeaderSize+p.sizeAt(next), false)
		format.PutLink(p.space, cur, after, hasAfter)
		p.counters.merges++
	}
}
