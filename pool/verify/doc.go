// Package verify checks the structural invariants of a pool's free list.
// These helpers are used in tests and by flctl after every scripted step.
//
// Checks performed by AllInvariants, in order:
//  1. Bounds: every free block lies inside the address space
//  2. Sorted: header addresses strictly ascend along the list
//  3. Coalesced: no block ends where its successor begins
//  4. Floor: no free block is smaller than pool.MinPayload
//
// Live additionally checks a set of outstanding allocations against each
// other and against the free list.
//
// All functions return *ValidationError on failure:
//
//	if err := verify.AllInvariants(p); err != nil {
//	    var verr *verify.ValidationError
//	    if errors.As(err, &verr) {
//	        fmt.Printf("%s at 0x%X\n", verr.Type, verr.Addr)
//	    }
//	}
package verify
