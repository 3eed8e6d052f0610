package script

import (
	"errors"
	"fmt"
	"io"

	"github.com/joshuapare/flalloc/pool"
	"github.com/joshuapare/flalloc/pool/verify"
)

var (
	// ErrExpectation indicates an expect command whose names differ.
	ErrExpectation = errors.New("script: expectation failed")

	// ErrAlreadyFreed indicates a free of a name whose block was released
	// earlier in the script.
	ErrAlreadyFreed = errors.New("script: allocation already freed")
)

// Target is what a script runs against.
type Target interface {
	pool.Allocator
	verify.Inspector
}

// Result summarises a run.
type Result struct {
	Steps    int
	Failures int // allocations that returned nil

	// Live holds the names whose blocks are still outstanding.
	Live map[string]pool.Addr

	// Bound holds the last address bound to every name, freed or not, so
	// expect can compare a released block with a later allocation.
	Bound map[string]pool.Addr
}

// Exec runs steps against t and writes a transcript to w. Allocation
// failures are part of the transcript; errors stop the run.
func Exec(t Target, steps []Step, w io.Writer) (*Result, error) {
	res := &Result{
		Live:  make(map[string]pool.Addr),
		Bound: make(map[string]pool.Addr),
	}
	for _, st := range steps {
		if err := execStep(t, st.Op, res, w); err != nil {
			return res, fmt.Errorf("script: line %d: %w", st.Line, err)
		}
		res.Steps++
	}
	return res, nil
}

func execStep(t Target, op Op, res *Result, w io.Writer) error {
	switch op := op.(type) {
	case OpArena:
		if err := t.RegisterArena(pool.Addr(op.Addr), op.Size); err != nil {
			return err
		}
		fmt.Fprintf(w, "arena 0x%X %d\n", op.Addr, op.Size)
	case OpAlloc:
		addr, err := t.Alloc(op.Size)
		switch {
		case errors.Is(err, pool.ErrNoSpace), errors.Is(err, pool.ErrZeroSize):
			res.Failures++
			delete(res.Live, op.Name)
			res.Bound[op.Name] = pool.Nil
			fmt.Fprintf(w, "alloc %s %d -> nil\n", op.Name, op.Size)
		case err != nil:
			return err
		default:
			res.Live[op.Name] = addr
			res.Bound[op.Name] = addr
			fmt.Fprintf(w, "alloc %s %d -> 0x%X\n", op.Name, op.Size, uint64(addr))
		}
	case OpFree:
		addr, err := res.freeTarget(op.Name)
		if err != nil {
			return err
		}
		if err := t.Free(addr); err != nil {
			return err
		}
		delete(res.Live, op.Name)
		fmt.Fprintf(w, "free %s\n", op.Name)
	case OpExpect:
		a, ok := res.Bound[op.A]
		if !ok {
			return fmt.Errorf("unknown allocation %q", op.A)
		}
		b, ok := res.Bound[op.B]
		if !ok {
			return fmt.Errorf("unknown allocation %q", op.B)
		}
		if a != b {
			return fmt.Errorf("%w: %s=0x%X %s=0x%X", ErrExpectation, op.A, uint64(a), op.B, uint64(b))
		}
		fmt.Fprintf(w, "expect %s %s ok\n", op.A, op.B)
	case OpDump:
		Dump(w, t.Blocks())
	case OpVerify:
		if err := verify.AllInvariants(t); err != nil {
			return err
		}
		fmt.Fprintln(w, "verify ok")
	default:
		return fmt.Errorf("unsupported op %T", op)
	}
	return nil
}

// freeTarget resolves the address a free command releases. A name whose
// allocation failed releases Nil; a name already released is an error.
func (res *Result) freeTarget(name string) (pool.Addr, error) {
	if isNull(name) {
		return pool.Nil, nil
	}
	if addr, ok := res.Live[name]; ok {
		return addr, nil
	}
	addr, ok := res.Bound[name]
	switch {
	case !ok:
		return pool.Nil, fmt.Errorf("unknown allocation %q", name)
	case addr == pool.Nil:
		return pool.Nil, nil
	default:
		return pool.Nil, fmt.Errorf("%w: %s=0x%X", ErrAlreadyFreed, name, uint64(addr))
	}
}

// Dump writes a free list in the transcript format.
func Dump(w io.Writer, blocks []pool.Block) {
	fmt.Fprintf(w, "free list: %d block(s)\n", len(blocks))
	for i, b := range blocks {
		fmt.Fprintf(w, "  [%d] header=0x%X size=%d end=0x%X\n", i, uint64(b.Header), b.Size, uint64(b.End()))
	}
}
