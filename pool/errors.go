package pool

import "errors"

var (
	// ErrNoSpace indicates that no free block is large enough for the request.
	ErrNoSpace = errors.New("pool: no free block large enough")

	// ErrZeroSize indicates a zero-byte request. Nothing is allocated.
	ErrZeroSize = errors.New("pool: zero-size allocation")

	// ErrBadAddr indicates an address that cannot belong to any block of this pool.
	ErrBadAddr = errors.New("pool: bad block address")

	// ErrNotAllocated indicates a release of a block that is already free.
	ErrNotAllocated = errors.New("pool: block is not allocated")

	// ErrArenaBounds indicates an arena that does not fit inside the address space.
	ErrArenaBounds = errors.New("pool: arena outside address space")

	// ErrArenaTooSmall indicates an arena too small to hold a header and the minimum payload.
	ErrArenaTooSmall = errors.New("pool: arena too small")
)
