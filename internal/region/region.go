// Package region provides the backing memory that pools carve arenas from.
package region

import "fmt"

// Kind names the backing strategy of a region.
type Kind string

const (
	KindHeap Kind = "heap"
	KindMmap Kind = "mmap"
)

// Region is a contiguous, writable address space.
type Region struct {
	data    []byte
	kind    Kind
	release func() error
}

// Heap returns a region backed by an ordinary Go slice.
func Heap(size int) (*Region, error) {
	if size < 0 {
		return nil, fmt.Errorf("region: negative size %d", size)
	}
	return &Region{
		data:    make([]byte, size),
		kind:    KindHeap,
		release: func() error { return nil },
	}, nil
}

// New returns a region of the requested kind.
func New(kind Kind, size int) (*Region, error) {
	switch kind {
	case KindHeap, "":
		return Heap(size)
	case KindMmap:
		return Anonymous(size)
	default:
		return nil, fmt.Errorf("region: unknown backing %q", kind)
	}
}

// Bytes returns the address space. It is nil after Close.
func (r *Region) Bytes() []byte {
	return r.data
}

// Kind reports how the region is backed.
func (r *Region) Kind() Kind {
	return r.kind
}

// Len returns the size of the region in bytes.
func (r *Region) Len() int {
	return len(r.data)
}

// Close releases the backing memory. Closing twice is a no-op.
func (r *Region) Close() error {
	if r.release == nil {
		return nil
	}
	err := r.release()
	r.release = nil
	r.data = nil
	return err
}
