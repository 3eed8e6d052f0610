package main

import (
	"errors"
	"fmt"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flalloc/cmd/flctl/logger"
	"github.com/joshuapare/flalloc/internal/script"
	"github.com/joshuapare/flalloc/pool"
	"github.com/joshuapare/flalloc/pool/verify"
)

var (
	stressOps     int
	stressSeed    int64
	stressMaxSize int
	stressAllocPc int
)

func init() {
	cmd := newStressCmd()
	cmd.Flags().IntVar(&stressOps, "ops", 10000, "Number of random operations")
	cmd.Flags().Int64Var(&stressSeed, "seed", 1, "Random seed")
	cmd.Flags().IntVar(&stressMaxSize, "max-size", 1024, "Largest request in bytes")
	cmd.Flags().IntVar(&stressAllocPc, "alloc-percent", 55, "Share of operations that allocate (0-100)")
	rootCmd.AddCommand(cmd)
}

func newStressCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stress",
		Short: "Run random allocations and check invariants after each step",
		Long: `The stress command registers the whole address space, performs random
allocations and releases, and validates the free list and every live
allocation after each step. It stops at the first violation.

Example:
  flctl stress --ops 100000 --seed 7
  flctl stress --max-size 64 --alloc-percent 70 --metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStress()
		},
	}
	return cmd
}

type stressResult struct {
	Ops      int        `json:"ops"`
	Seed     int64      `json:"seed"`
	Failures int        `json:"failures"`
	Live     int        `json:"live"`
	Stats    pool.Stats `json:"stats"`
}

func runStress() error {
	if stressMaxSize <= 0 {
		return fmt.Errorf("max-size must be positive, got %d", stressMaxSize)
	}
	if stressAllocPc < 0 || stressAllocPc > 100 {
		return fmt.Errorf("alloc-percent must be within 0-100, got %d", stressAllocPc)
	}

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()
	if err := s.registerAll(); err != nil {
		return fmt.Errorf("failed to register arena: %w", err)
	}

	arenas := []verify.Arena{{Start: 0, End: pool.Addr(s.region.Len())}}

	rng := rand.New(rand.NewSource(stressSeed))
	var live []verify.Allocation
	failures := 0

	for i := range stressOps {
		if len(live) == 0 || rng.Intn(100) < stressAllocPc {
			size := uint64(1 + rng.Intn(stressMaxSize))
			addr, err := s.pool.Alloc(size)
			if errors.Is(err, pool.ErrNoSpace) {
				failures++
				continue
			}
			if err != nil {
				return fmt.Errorf("step %d: alloc %d: %w", i, size, err)
			}
			var capacity uint64
			if err := s.pool.Do(func(p *pool.Pool) error {
				capacity, err = p.SizeOf(addr)
				return err
			}); err != nil {
				return fmt.Errorf("step %d: %w", i, err)
			}
			live = append(live, verify.Allocation{Addr: addr, Size: capacity})
		} else {
			j := rng.Intn(len(live))
			if err := s.pool.Free(live[j].Addr); err != nil {
				return fmt.Errorf("step %d: free 0x%X: %w", i, uint64(live[j].Addr), err)
			}
			live = append(live[:j], live[j+1:]...)
		}

		if err := verify.AllInvariants(s.pool); err != nil {
			script.Dump(os.Stderr, s.pool.Blocks())
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := verify.Live(s.pool, live); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if err := verify.Contained(s.pool, live, arenas); err != nil {
			return fmt.Errorf("step %d: %w", i, err)
		}
		if verbose && i > 0 && i%1000 == 0 {
			printVerbose("step %d: %d live, %d free block(s)\n", i, len(live), len(s.pool.Blocks()))
		}
	}
	logger.Info("stress finished", "ops", stressOps, "seed", stressSeed, "failures", failures, "live", len(live))

	if jsonOut {
		if err := printJSON(stressResult{
			Ops:      stressOps,
			Seed:     stressSeed,
			Failures: failures,
			Live:     len(live),
			Stats:    s.pool.Stats(),
		}); err != nil {
			return err
		}
	} else {
		printInfo("Stress passed: %d operations, %d allocation failure(s), %d live\n", stressOps, failures, len(live))
	}
	return s.report()
}
