package pool

import "sync"

// Synced serialises every operation on a Pool with a mutex. The wrapped
// pool must not be used directly once wrapped.
type Synced struct {
	mu sync.Mutex
	p  *Pool
}

var _ Allocator = (*Synced)(nil)

// NewSynced wraps p for use from several goroutines.
func NewSynced(p *Pool) *Synced {
	return &Synced{p: p}
}

func (s *Synced) RegisterArena(addr Addr, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.RegisterArena(addr, size)
}

func (s *Synced) Alloc(size uint64) (Addr, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Alloc(size)
}

func (s *Synced) Free(addr Addr) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Free(addr)
}

func (s *Synced) Head() (Addr, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Head()
}

func (s *Synced) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Stats()
}

// Blocks returns a copy of the free list taken under the lock.
func (s *Synced) Blocks() []Block {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.p.Blocks()
}

// Space returns the address space. Reading it while other goroutines
// allocate is racy; use it for post-mortem inspection only.
func (s *Synced) Space() []byte {
	return s.p.Space()
}

// Do runs fn with exclusive access to the underlying pool, for sequences
// that must be atomic (allocate then fill, for example).
func (s *Synced) Do(fn func(p *Pool) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return fn(s.p)
}
