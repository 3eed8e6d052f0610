//go:build unix

package region

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"
)

// Anonymous maps size bytes of private, zero-filled memory outside the Go
// heap. The garbage collector never scans or moves it.
func Anonymous(size int) (*Region, error) {
	if size < 0 {
		return nil, fmt.Errorf("region: negative size %d", size)
	}
	if size == 0 {
		return &Region{data: []byte{}, kind: KindMmap, release: func() error { return nil }}, nil
	}
	data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return nil, fmt.Errorf("region: mmap %d bytes: %w", size, err)
	}
	release := func() error {
		err := unix.Munmap(data)
		if errors.Is(err, unix.EINVAL) {
			// Treat double-unmap as no-op for callers.
			return nil
		}
		return err
	}
	return &Region{data: data, kind: KindMmap, release: release}, nil
}
