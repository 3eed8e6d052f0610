// Package format describes the in-band block layout used by the pool
// allocator. Every block in an arena starts with a fixed-size header; while
// the block is free the first word of its payload carries the forward link
// to the next free block.
//
// Layout (little-endian):
//
//	header+0x00  uint64  size | AllocatedBit
//	header+0x08  uint64  link (free blocks only; payload address of next, 0 = end)
//	header+0x08  ...     payload (allocated blocks)
package format

const (
	// WordSize is the pointer width of the address space. Header and
	// payload addresses are always multiples of it. Sizes usually are too,
	// except for blocks carved from an arena whose end is unaligned.
	WordSize = 8

	// WordMask is used by the alignment helpers.
	WordMask = WordSize - 1

	// HeaderSize is the number of bytes preceding every payload address.
	HeaderSize = WordSize

	// SizeOffset is the offset of the size field within the header.
	SizeOffset = 0

	// LinkOffset is the offset of the forward link, relative to the header.
	// It overlaps the first payload word.
	LinkOffset = HeaderSize

	// LinkSize is the width of the forward link.
	LinkSize = WordSize

	// MinPayload is the smallest payload ever handed out. Requests below it
	// are rounded up.
	MinPayload = 32

	// MinSplit is the smallest remainder worth carving off a larger block:
	// a header plus the payload floor.
	MinSplit = HeaderSize + MinPayload

	// AllocatedBit tags the size field of a block that is handed out.
	AllocatedBit = uint64(1) << 63

	// SizeMask strips the tag from a raw size field.
	SizeMask = AllocatedBit - 1

	// NoLink terminates the free list.
	NoLink = 0
)

// Static layout assertions. Each expression fails to compile (negative
// constant converted to uint) if the layout contract is broken.
const (
	// the link word must fit inside the smallest payload
	_ = uint(MinPayload - LinkSize)
	// the header is exactly one word
	_ = uint(HeaderSize - WordSize)
	_ = uint(WordSize - HeaderSize)
	// the floor keeps payloads word aligned
	_ = uint(0 - MinPayload%WordSize)
)
