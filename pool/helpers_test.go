package pool

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// newTestPool returns a pool over size bytes with one arena covering all of it.
func newTestPool(t testing.TB, size int) *Pool {
	t.Helper()
	p := New(make([]byte, size), nil)
	require.NoError(t, p.RegisterArena(0, uint64(size)))
	return p
}

// mustAlloc allocates or fails the test.
func mustAlloc(t testing.TB, p *Pool, size uint64) Addr {
	t.Helper()
	addr, err := p.Alloc(size)
	require.NoError(t, err, "Alloc(%d)", size)
	require.NotEqual(t, Nil, addr)
	return addr
}

// freeList flattens the free list into (header, size) pairs for comparisons.
func freeList(p *Pool) [][2]uint64 {
	var out [][2]uint64
	for _, b := range p.Blocks() {
		out = append(out, [2]uint64{uint64(b.Header), b.Size})
	}
	return out
}
