package pool_test

import (
	"errors"
	"math/rand"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flalloc/pool"
	"github.com/joshuapare/flalloc/pool/verify"
)

func TestSynced_ConcurrentAllocFree(t *testing.T) {
	space := make([]byte, 1<<18)
	s := pool.NewSynced(pool.New(space, nil))
	require.NoError(t, s.RegisterArena(0, uint64(len(space))))

	const workers = 8
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for w := range workers {
		wg.Add(1)
		go func(seed int64) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(seed))
			var mine []pool.Addr
			for range 2000 {
				if len(mine) == 0 || rng.Intn(2) == 0 {
					addr, err := s.Alloc(uint64(1 + rng.Intn(256)))
					if errors.Is(err, pool.ErrNoSpace) {
						continue
					}
					if err != nil {
						errs <- err
						return
					}
					mine = append(mine, addr)
					continue
				}
				i := rng.Intn(len(mine))
				if err := s.Free(mine[i]); err != nil {
					errs <- err
					return
				}
				mine = append(mine[:i], mine[i+1:]...)
			}
			for _, a := range mine {
				if err := s.Free(a); err != nil {
					errs <- err
					return
				}
			}
		}(int64(w))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	require.NoError(t, verify.AllInvariants(s))
	st := s.Stats()
	assert.Zero(t, st.Live)
	assert.Equal(t, 1, st.FreeBlocks, "everything freed collapses back into one block")
	head, ok := s.Head()
	require.True(t, ok)
	assert.Equal(t, pool.Addr(0), head)
}

func TestSynced_Do(t *testing.T) {
	s := pool.NewSynced(pool.New(make([]byte, 1024), nil))
	require.NoError(t, s.RegisterArena(0, 1024))

	var addr pool.Addr
	err := s.Do(func(p *pool.Pool) error {
		var err error
		addr, err = p.Alloc(5)
		if err != nil {
			return err
		}
		payload, err := p.Bytes(addr)
		if err != nil {
			return err
		}
		copy(payload, "abcde")
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []byte("abcde"), s.Space()[addr:addr+5])
}
