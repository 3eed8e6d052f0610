package script

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/flalloc/pool"
)

func run(t *testing.T, space int, src string) (*Result, string, error) {
	t.Helper()
	steps, err := Parse(strings.NewReader(src))
	require.NoError(t, err)
	var out bytes.Buffer
	res, err := Exec(pool.New(make([]byte, space), nil), steps, &out)
	return res, out.String(), err
}

func TestExec_ReuseScenario(t *testing.T) {
	res, out, err := run(t, 1<<16, `
arena 0 65536
alloc p1 5
alloc p2 2340
free p1
alloc p3 5
expect p1 p3
verify
dump
`)
	require.NoError(t, err)
	assert.Equal(t, 8, res.Steps)
	assert.Zero(t, res.Failures)
	assert.Equal(t, pool.Addr(8), res.Live["p3"])
	assert.NotContains(t, res.Live, "p1", "released names are not outstanding")
	assert.Equal(t, pool.Addr(8), res.Bound["p1"])

	want := `arena 0x0 65536
alloc p1 5 -> 0x8
alloc p2 2340 -> 0x30
free p1
alloc p3 5 -> 0x8
expect p1 p3 ok
verify ok
free list: 1 block(s)
  [0] header=0x958 size=63136 end=0x10000
`
	assert.Equal(t, want, out)
}

func TestExec_FailedAllocIsNil(t *testing.T) {
	res, out, err := run(t, 256, `
arena 0 256
alloc big 4096
alloc zero 0
free big
`)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Failures)
	assert.Contains(t, out, "alloc big 4096 -> nil")
	assert.Contains(t, out, "alloc zero 0 -> nil")
	assert.Contains(t, out, "free big")
}

func TestExec_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"unknown name", "arena 0 1024\nfree p9", `line 2: unknown allocation "p9"`},
		{"expect mismatch", "arena 0 1024\nalloc a 5\nalloc b 5\nexpect a b", "line 4: script: expectation failed"},
		{"double free", "arena 0 1024\nalloc a 5\nalloc keep 5\nfree a\nalloc a2 5\nfree a2\nfree a2", "line 7: script: allocation already freed"},
		{"expect unknown name", "arena 0 1024\nalloc a 5\nexpect a b", `line 3: unknown allocation "b"`},
		{"arena out of space", "arena 0 4096", "line 1: pool: arena outside address space"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := run(t, 1024, tt.src)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestExec_ExpectAfterFree(t *testing.T) {
	res, out, err := run(t, 1<<16, `
arena 0 65536
alloc p1 5
alloc p2 2340
free p1
alloc p3 5
expect p1 p3
`)
	require.NoError(t, err)
	assert.Contains(t, out, "expect p1 p3 ok")
	assert.Equal(t, map[string]pool.Addr{"p2": 0x30, "p3": 0x8}, res.Live)
}

func TestExec_ErrorsUnwrap(t *testing.T) {
	_, _, err := run(t, 1024, "arena 0 1024\nalloc a 5\nfree a\nfree a")
	assert.ErrorIs(t, err, ErrAlreadyFreed)

	_, _, err = run(t, 1024, "arena 0 1024\nalloc a 5\nalloc b 5\nexpect a b")
	assert.ErrorIs(t, err, ErrExpectation)
}

func TestExec_FreeNullAnyCase(t *testing.T) {
	for _, name := range []string{"null", "NULL", "Null"} {
		t.Run(name, func(t *testing.T) {
			res, out, err := run(t, 1024, "arena 0 1024\nfree "+name)
			require.NoError(t, err)
			assert.Equal(t, 2, res.Steps)
			assert.Contains(t, out, "free "+name)
			assert.Empty(t, res.Live)
		})
	}
}

func TestExec_FailedAllocFreedTwice(t *testing.T) {
	res, _, err := run(t, 256, "arena 0 256\nalloc big 4096\nfree big\nfree big")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Failures)
	assert.Equal(t, pool.Nil, res.Bound["big"])
}
