package pool

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFree_DoubleFree(t *testing.T) {
	p := newTestPool(t, 1024)
	a := mustAlloc(t, p, 32)
	_ = mustAlloc(t, p, 32)

	require.NoError(t, p.Free(a))
	before := freeList(p)
	statsBefore := p.Stats()

	err := p.Free(a)
	require.ErrorIs(t, err, ErrNotAllocated)
	assert.Equal(t, before, freeList(p), "a rejected free must not touch the list")
	assert.Equal(t, statsBefore, p.Stats())
}

func TestFree_BadAddr(t *testing.T) {
	p := newTestPool(t, 1024)
	a := mustAlloc(t, p, 32)
	before := freeList(p)

	tests := []struct {
		name string
		addr Addr
	}{
		{"below header", 4},
		{"unaligned", a + 3},
		{"beyond space", 4096},
		{"header past end", Addr(1024 + HeaderSize)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := p.Free(tt.addr)
			require.ErrorIs(t, err, ErrBadAddr)
			assert.Equal(t, before, freeList(p))
		})
	}
}

func TestFree_ImplausibleSize(t *testing.T) {
	p := newTestPool(t, 1024)
	a := mustAlloc(t, p, 32)

	// Forge a header claiming the block runs past the end of the space.
	space := p.Space()
	hdr := uint64(a) - HeaderSize
	space[hdr+7] = 0x8F

	err := p.Free(a)
	require.ErrorIs(t, err, ErrBadAddr)
}

func TestSizeOf_Errors(t *testing.T) {
	p := newTestPool(t, 1024)

	_, err := p.SizeOf(Nil)
	require.ErrorIs(t, err, ErrBadAddr)

	head, ok := p.Head()
	require.True(t, ok)
	_, err = p.SizeOf(head + HeaderSize)
	require.ErrorIs(t, err, ErrNotAllocated, "a free block has no allocation size")
}

func TestRegisterArena_Errors(t *testing.T) {
	tests := []struct {
		name string
		addr Addr
		size uint64
		want error
	}{
		{"past end", 512, 1024, ErrArenaBounds},
		{"overflow", 8, ^uint64(0), ErrArenaBounds},
		{"start beyond space", 2048, 0, ErrArenaBounds},
		{"too small for floor", 0, MinSplit - 1, ErrArenaTooSmall},
		{"alignment eats floor", 1, MinSplit, ErrArenaTooSmall},
		{"empty", 64, 0, ErrArenaTooSmall},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(make([]byte, 1024), nil)
			err := p.RegisterArena(tt.addr, tt.size)
			require.ErrorIs(t, err, tt.want)
			_, ok := p.Head()
			assert.False(t, ok, "a rejected arena must not reach the free list")
			assert.Zero(t, p.Stats().Capacity)
		})
	}
}

func TestRegisterArena_UnalignedStart(t *testing.T) {
	p := New(make([]byte, 1024), nil)
	require.NoError(t, p.RegisterArena(3, 100))

	// Header moves up to 8; capacity loses the 5 alignment bytes and the header.
	assert.Equal(t, [][2]uint64{{8, 103 - 8 - HeaderSize}}, freeList(p))

	addr := mustAlloc(t, p, 1)
	assert.Equal(t, Addr(16), addr)
}

func TestRegisterArena_UnalignedEnd(t *testing.T) {
	p := New(make([]byte, 1024), nil)
	require.NoError(t, p.RegisterArena(0, 101))
	assert.Equal(t, [][2]uint64{{0, 93}}, freeList(p))

	a := mustAlloc(t, p, 40)
	b := mustAlloc(t, p, 1)
	assert.Equal(t, Addr(8), a)
	assert.Equal(t, Addr(56), b)

	// Addresses stay word aligned even though the tail block's size is not.
	size, err := p.SizeOf(b)
	require.NoError(t, err)
	assert.Equal(t, uint64(45), size)
	assert.NotZero(t, size%WordSize)
	assert.Zero(t, uint64(b)%WordSize)
	assert.Empty(t, freeList(p))
}

func TestRegisterArena_Minimal(t *testing.T) {
	p := New(make([]byte, MinSplit), nil)
	require.NoError(t, p.RegisterArena(0, MinSplit))

	addr := mustAlloc(t, p, 1)
	size, err := p.SizeOf(addr)
	require.NoError(t, err)
	assert.Equal(t, uint64(MinPayload), size)

	_, err = p.Alloc(1)
	require.ErrorIs(t, err, ErrNoSpace)
}
