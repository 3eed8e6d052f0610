package script

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `# scenario
arena 0 0x10000
alloc p1 5   # rounded to 32
ALLOC p2 2340

free p1
free null
expect p1 p3
dump
verify
`
	steps, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, steps, 8)

	assert.Equal(t, Step{Line: 2, Op: OpArena{Addr: 0, Size: 0x10000}}, steps[0])
	assert.Equal(t, Step{Line: 3, Op: OpAlloc{Name: "p1", Size: 5}}, steps[1])
	assert.Equal(t, OpAlloc{Name: "p2", Size: 2340}, steps[2].Op, "keywords are case-insensitive")
	assert.Equal(t, Step{Line: 6, Op: OpFree{Name: "p1"}}, steps[3])
	assert.Equal(t, OpFree{Name: NullName}, steps[4].Op)
	assert.Equal(t, OpExpect{A: "p1", B: "p3"}, steps[5].Op)
	assert.Equal(t, OpDump{}, steps[6].Op)
	assert.Equal(t, OpVerify{}, steps[7].Op)
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"unknown command", "grow 10", `line 1: unknown command "grow"`},
		{"missing size", "\nalloc p1", "line 2: alloc takes 2 argument(s), got 1"},
		{"bad number", "alloc p1 ten", `line 1: bad number "ten"`},
		{"bad hex", "arena 0xZZ 10", `line 1: bad number "0xZZ"`},
		{"negative", "alloc p1 -5", `line 1: bad number "-5"`},
		{"reserved name", "alloc null 5", `line 1: "null" is reserved`},
		{"dump with args", "dump all", "line 1: dump takes 0 argument(s), got 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want uint64
	}{
		{"0", 0},
		{"65536", 65536},
		{"0x10000", 65536},
		{"0XfF", 255},
	}
	for _, tt := range tests {
		got, err := parseNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}
