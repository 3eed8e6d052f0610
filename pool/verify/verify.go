package verify

import (
	"fmt"
	"sort"

	"github.com/joshuapare/flalloc/pool"
)

// Inspector is the read-only view of a pool the checks need.
// Both *pool.Pool and *pool.Synced satisfy it.
type Inspector interface {
	Space() []byte
	Blocks() []pool.Block
}

// ValidationError describes the first invariant violation found.
type ValidationError struct {
	Type    string
	Message string
	Addr    int64 // header or payload address, -1 when not applicable
	Details map[string]any
}

func (e *ValidationError) Error() string {
	if e.Addr >= 0 {
		return fmt.Sprintf("%s at 0x%X: %s", e.Type, e.Addr, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// AllInvariants validates all free-list invariants in one call.
// Returns the first error encountered, or nil if all checks pass.
func AllInvariants(p Inspector) error {
	blocks := p.Blocks()
	if err := Bounds(p.Space(), blocks); err != nil {
		return err
	}
	if err := Sorted(blocks); err != nil {
		return err
	}
	if err := Coalesced(blocks); err != nil {
		return err
	}
	return Floor(blocks)
}

// Bounds checks that every block, header included, lies inside space.
func Bounds(space []byte, blocks []pool.Block) error {
	limit := uint64(len(space))
	for _, b := range blocks {
		end := uint64(b.End())
		if end < uint64(b.Header) || end > limit {
			return &ValidationError{
				Type:    "Bounds",
				Message: fmt.Sprintf("block of %d bytes ends at 0x%X, space is %d bytes", b.Size, end, limit),
				Addr:    int64(b.Header),
			}
		}
	}
	return nil
}

// Sorted checks that header addresses strictly ascend.
func Sorted(blocks []pool.Block) error {
	for i := 1; i < len(blocks); i++ {
		if blocks[i].Header <= blocks[i-1].Header {
			return &ValidationError{
				Type:    "Sorted",
				Message: fmt.Sprintf("block follows 0x%X but is not above it", uint64(blocks[i-1].Header)),
				Addr:    int64(blocks[i].Header),
				Details: map[string]any{"index": i},
			}
		}
	}
	return nil
}

// Coalesced checks that no two consecutive free blocks touch.
func Coalesced(blocks []pool.Block) error {
	for i := 1; i < len(blocks); i++ {
		if blocks[i-1].End() == blocks[i].Header {
			return &ValidationError{
				Type:    "Coalesced",
				Message: fmt.Sprintf("free block ends where free block 0x%X begins", uint64(blocks[i].Header)),
				Addr:    int64(blocks[i-1].Header),
				Details: map[string]any{"index": i - 1},
			}
		}
	}
	return nil
}

// Floor checks that every free block can satisfy a minimum request.
func Floor(blocks []pool.Block) error {
	for _, b := range blocks {
		if b.Size < pool.MinPayload {
			return &ValidationError{
				Type:    "Floor",
				Message: fmt.Sprintf("free block of %d bytes is below the %d-byte floor", b.Size, pool.MinPayload),
				Addr:    int64(b.Header),
			}
		}
	}
	return nil
}

// Allocation is an outstanding block as the caller sees it.
type Allocation struct {
	Addr pool.Addr // payload address
	Size uint64    // capacity reported by the pool
}

// Live checks that outstanding allocations are at least MinPayload, lie in
// space, and overlap neither each other nor any free block.
func Live(p Inspector, live []Allocation) error {
	type span struct {
		start, end uint64
		free       bool
	}
	limit := uint64(len(p.Space()))
	spans := make([]span, 0, len(live))
	for _, a := range live {
		start := uint64(a.Addr) - pool.HeaderSize
		end := uint64(a.Addr) + a.Size
		if a.Size < pool.MinPayload {
			return &ValidationError{
				Type:    "Live",
				Message: fmt.Sprintf("allocation of %d bytes is below the %d-byte floor", a.Size, pool.MinPayload),
				Addr:    int64(a.Addr),
			}
		}
		if uint64(a.Addr) < pool.HeaderSize || end > limit {
			return &ValidationError{
				Type:    "Live",
				Message: "allocation lies outside the address space",
				Addr:    int64(a.Addr),
			}
		}
		spans = append(spans, span{start: start, end: end})
	}
	for _, b := range p.Blocks() {
		spans = append(spans, span{start: uint64(b.Header), end: uint64(b.End()), free: true})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return &ValidationError{
				Type:    "Live",
				Message: fmt.Sprintf("block [0x%X,0x%X) overlaps [0x%X,0x%X)", spans[i].start, spans[i].end, spans[i-1].start, spans[i-1].end),
				Addr:    int64(spans[i].start),
				Details: map[string]any{"free": spans[i].free, "other_free": spans[i-1].free},
			}
		}
	}
	return nil
}

// Arena is a registered range [Start, End) as the caller passed it.
type Arena struct {
	Start, End pool.Addr
}

// Contained checks that every free block and every outstanding allocation,
// header included, lies entirely inside one of arenas. Touching arenas are
// merged by the pool, so they count as a single range here.
func Contained(p Inspector, live []Allocation, arenas []Arena) error {
	ranges := mergeArenas(arenas)
	inside := func(start, end uint64) bool {
		for _, a := range ranges {
			if start >= uint64(a.Start) && end <= uint64(a.End) {
				return true
			}
		}
		return false
	}
	for _, b := range p.Blocks() {
		if !inside(uint64(b.Header), uint64(b.End())) {
			return &ValidationError{
				Type:    "Contained",
				Message: fmt.Sprintf("free block [0x%X,0x%X) is outside every arena", uint64(b.Header), uint64(b.End())),
				Addr:    int64(b.Header),
			}
		}
	}
	for _, a := range live {
		if uint64(a.Addr) < pool.HeaderSize {
			return &ValidationError{Type: "Contained", Message: "allocation has no room for a header", Addr: int64(a.Addr)}
		}
		start, end := uint64(a.Addr)-pool.HeaderSize, uint64(a.Addr)+a.Size
		if !inside(start, end) {
			return &ValidationError{
				Type:    "Contained",
				Message: fmt.Sprintf("allocation [0x%X,0x%X) is outside every arena", start, end),
				Addr:    int64(a.Addr),
				Details: map[string]any{"size": a.Size},
			}
		}
	}
	return nil
}

func mergeArenas(arenas []Arena) []Arena {
	sorted := append([]Arena(nil), arenas...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Start < sorted[j].Start })
	var out []Arena
	for _, a := range sorted {
		if n := len(out); n > 0 && a.Start <= out[n-1].End {
			out[n-1].End = max(out[n-1].End, a.End)
			continue
		}
		out = append(out, a)
	}
	return out
}
