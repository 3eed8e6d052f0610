// Package script parses and replays allocation trace scripts.
//
// A script is line oriented:
//
//	# register 64 KiB at offset 0
//	arena 0 0x10000
//	alloc p1 5
//	alloc p2 2340
//	free p1
//	alloc p3 5
//	expect p1 p3
//	dump
//	verify
package script

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Parse reads a script from r.
func Parse(r io.Reader) ([]Step, error) {
	scanner := bufio.NewScanner(r)
	var steps []Step
	line := 0
	for scanner.Scan() {
		line++
		text := scanner.Text()
		if i := strings.Index(text, CommentPrefix); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		op, err := parseCommand(fields)
		if err != nil {
			return nil, fmt.Errorf("script: line %d: %w", line, err)
		}
		steps = append(steps, Step{Line: line, Op: op})
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return steps, nil
}

func parseCommand(fields []string) (Op, error) {
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case CmdArena:
		if err := wantArgs(cmd, args, 2); err != nil {
			return nil, err
		}
		addr, err := parseNumber(args[0])
		if err != nil {
			return nil, err
		}
		size, err := parseNumber(args[1])
		if err != nil {
			return nil, err
		}
		return OpArena{Addr: addr, Size: size}, nil
	case CmdAlloc:
		if err := wantArgs(cmd, args, 2); err != nil {
			return nil, err
		}
		if err := checkName(args[0]); err != nil {
			return nil, err
		}
		size, err := parseNumber(args[1])
		if err != nil {
			return nil, err
		}
		return OpAlloc{Name: args[0], Size: size}, nil
	case CmdFree:
		if err := wantArgs(cmd, args, 1); err != nil {
			return nil, err
		}
		return OpFree{Name: args[0]}, nil
	case CmdExpect:
		if err := wantArgs(cmd, args, 2); err != nil {
			return nil, err
		}
		return OpExpect{A: args[0], B: args[1]}, nil
	case CmdDump:
		if err := wantArgs(cmd, args, 0); err != nil {
			return nil, err
		}
		return OpDump{}, nil
	case CmdVerify:
		if err := wantArgs(cmd, args, 0); err != nil {
			return nil, err
		}
		return OpVerify{}, nil
	default:
		return nil, fmt.Errorf("unknown command %q", fields[0])
	}
}

func wantArgs(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%s takes %d argument(s), got %d", cmd, n, len(args))
	}
	return nil
}

// isNull reports whether name refers to the nil address.
func isNull(name string) bool {
	return strings.EqualFold(name, NullName)
}

func checkName(name string) error {
	if isNull(name) {
		return fmt.Errorf("%q is reserved", NullName)
	}
	return nil
}

// parseNumber accepts decimal or 0x-prefixed hexadecimal.
func parseNumber(s string) (uint64, error) {
	base := 10
	digits := s
	if strings.HasPrefix(strings.ToLower(s), HexPrefix) {
		base = 16
		digits = s[len(HexPrefix):]
	}
	v, err := strconv.ParseUint(digits, base, 64)
	if err != nil {
		return 0, fmt.Errorf("bad number %q", s)
	}
	return v, nil
}
