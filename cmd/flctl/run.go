package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/joshuapare/flalloc/cmd/flctl/logger"
	"github.com/joshuapare/flalloc/internal/script"
	"github.com/joshuapare/flalloc/pool"
)

var (
	runAutoArena bool
)

func init() {
	cmd := newRunCmd()
	cmd.Flags().BoolVar(&runAutoArena, "auto-arena", true, "Register the whole address space when the script has no arena command")
	rootCmd.AddCommand(cmd)
}

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run <script>",
		Short: "Replay an allocation script",
		Long: `The run command replays an allocation script against a fresh pool and
prints a transcript of every step.

Script commands:
  arena <addr> <size>   register an arena
  alloc <name> <size>   allocate and bind the address to name
  free <name|null>      release a block
  expect <a> <b>        fail unless a and b hold the same address
  dump                  print the free list
  verify                check free-list invariants

Example:
  flctl run scenario.txt
  flctl run scenario.txt --arena-size 1048576 --backing mmap
  flctl run - < scenario.txt`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScript(args[0])
		},
	}
	return cmd
}

type runResult struct {
	Script   string               `json:"script"`
	Steps    int                  `json:"steps"`
	Failures int                  `json:"failures"`
	Live     map[string]pool.Addr `json:"live"`
	FreeList []pool.Block         `json:"free_list"`
	Stats    pool.Stats           `json:"stats"`
}

func runScript(path string) error {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("failed to open script: %w", err)
		}
		defer f.Close()
		in = f
	}

	steps, err := script.Parse(in)
	if err != nil {
		return err
	}
	printVerbose("Parsed %d step(s) from %s\n", len(steps), path)

	s, err := newSession(cfg)
	if err != nil {
		return err
	}
	defer s.Close()

	if !hasArena(steps) {
		if !runAutoArena {
			logger.Warn("script registers no arena, every allocation will fail", "script", path)
		} else {
			if err := s.registerAll(); err != nil {
				return fmt.Errorf("failed to register arena: %w", err)
			}
			printVerbose("Registered whole address space (%d bytes)\n", s.region.Len())
		}
	}

	var transcript io.Writer = os.Stdout
	if quiet || jsonOut {
		transcript = io.Discard
	}
	res, err := script.Exec(s.pool, steps, transcript)
	if err != nil {
		logger.Error("script failed", "script", path, "error", err)
		return err
	}
	logger.Info("script finished", "script", path, "steps", res.Steps, "failures", res.Failures)

	if jsonOut {
		if err := printJSON(runResult{
			Script:   path,
			Steps:    res.Steps,
			Failures: res.Failures,
			Live:     res.Live,
			FreeList: s.pool.Blocks(),
			Stats:    s.pool.Stats(),
		}); err != nil {
			return err
		}
	}
	return s.report()
}

func hasArena(steps []script.Step) bool {
	for _, st := range steps {
		if _, ok := st.Op.(script.OpArena); ok {
			return true
		}
	}
	return false
}
