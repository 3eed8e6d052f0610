//go:build !unix

package region

// Anonymous falls back to a heap slice where mmap is not available.
func Anonymous(size int) (*Region, error) {
	return Heap(size)
}
