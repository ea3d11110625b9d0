package rewrite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTerm_Compare_Shortlex(t *testing.T) {
	g := testGraph(t)

	short := nameTerm("z")
	long := nameTerm("a", "a")
	assert.Equal(t, -1, short.Compare(long, g), "shorter terms are smaller")
	assert.Equal(t, 1, long.Compare(short, g))

	// Equal length compares atom-wise left to right.
	ab := nameTerm("a", "b")
	ac := nameTerm("a", "c")
	assert.Equal(t, -1, ab.Compare(ac, g))
	assert.Equal(t, 0, ab.Compare(nameTerm("a", "b"), g))
}

func TestTerm_FindSubterm(t *testing.T) {
	tests := []struct {
		name     string
		haystack []string
		needle   []string
		wantPos  int
		wantOK   bool
	}{
		{"leftmost match", []string{"a", "b", "a", "b"}, []string{"a", "b"}, 0, true},
		{"interior match", []string{"x", "a", "b", "y"}, []string{"a", "b"}, 1, true},
		{"suffix match", []string{"x", "y", "a"}, []string{"a"}, 2, true},
		{"no match", []string{"a", "b"}, []string{"c"}, 0, false},
		{"needle longer", []string{"a"}, []string{"a", "b"}, 0, false},
		{"whole term", []string{"a", "b"}, []string{"a", "b"}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos, ok := nameTerm(tt.haystack...).FindSubterm(nameTerm(tt.needle...))
			require.Equal(t, tt.wantOK, ok)
			if ok {
				assert.Equal(t, tt.wantPos, pos)
			}
		})
	}
}

func TestTerm_RewriteSubterm_Shortens(t *testing.T) {
	tm := nameTerm("x", "a", "b", "y")

	changed := tm.RewriteSubterm(nameTerm("a", "b"), nameTerm("c"))
	require.True(t, changed)
	assert.True(t, tm.Equal(nameTerm("x", "c", "y")), "got %s", tm)
	assert.Equal(t, 3, tm.Len(), "new length = old - |lhs| + |rhs|")
}

func TestTerm_RewriteSubterm_SameLength(t *testing.T) {
	tm := nameTerm("a", "b")

	changed := tm.RewriteSubterm(nameTerm("a", "b"), nameTerm("b", "a"))
	require.True(t, changed)
	assert.True(t, tm.Equal(nameTerm("b", "a")))
}

func TestTerm_RewriteSubterm_Leftmost(t *testing.T) {
	tm := nameTerm("a", "b", "a", "b")

	require.True(t, tm.RewriteSubterm(nameTerm("a", "b"), nameTerm("c")))
	assert.True(t, tm.Equal(nameTerm("c", "a", "b")), "only the leftmost occurrence rewrites")
}

func TestTerm_RewriteSubterm_Absent(t *testing.T) {
	tm := nameTerm("a", "b")

	changed := tm.RewriteSubterm(nameTerm("z"), nameTerm("y"))
	assert.False(t, changed)
	assert.True(t, tm.Equal(nameTerm("a", "b")), "term unchanged on miss")
}

func TestTerm_RewriteSubterm_LongerRHSPanics(t *testing.T) {
	tm := nameTerm("a")
	assert.Panics(t, func() {
		tm.RewriteSubterm(nameTerm("a"), nameTerm("a", "b"))
	})
}

func TestTerm_CheckForOverlap_Containment(t *testing.T) {
	self := nameTerm("x", "a", "b", "y")
	other := nameTerm("a", "b")

	var result Term
	ok := self.CheckForOverlap(other, &result)
	require.True(t, ok)
	assert.True(t, result.Equal(self), "containment overlap is self")
}

func TestTerm_CheckForOverlap_SuffixPrefix(t *testing.T) {
	self := nameTerm("x", "y")
	other := nameTerm("y", "w")

	var result Term
	ok := self.CheckForOverlap(other, &result)
	require.True(t, ok)
	assert.True(t, result.Equal(nameTerm("x", "y", "w")),
		"overlap is self plus the non-overlapping tail of other, got %s", result)
}

func TestTerm_CheckForOverlap_LongestSuffixWins(t *testing.T) {
	self := nameTerm("x", "a", "b")
	other := nameTerm("a", "b", "c")

	var result Term
	ok := self.CheckForOverlap(other, &result)
	require.True(t, ok)
	assert.True(t, result.Equal(nameTerm("x", "a", "b", "c")), "got %s", result)
}

func TestTerm_CheckForOverlap_None(t *testing.T) {
	var result Term
	ok := nameTerm("a", "b").CheckForOverlap(nameTerm("c", "d"), &result)
	assert.False(t, ok)
	assert.Equal(t, 0, result.Len())
}

func TestTerm_CheckForOverlap_OtherLonger(t *testing.T) {
	// Self occurring inside a strictly longer other is not reported here;
	// that containment is found from the other side, and the worklist
	// enqueues both orders.
	var result Term
	ok := nameTerm("a").CheckForOverlap(nameTerm("a", "b"), &result)
	assert.False(t, ok)
}

func TestTerm_CheckForOverlap_NonEmptyResultPanics(t *testing.T) {
	result := nameTerm("junk")
	assert.Panics(t, func() {
		nameTerm("a").CheckForOverlap(nameTerm("a"), &result)
	})
}

func TestTerm_Clone_Independent(t *testing.T) {
	orig := nameTerm("a", "b", "c")
	clone := orig.Clone()

	require.True(t, clone.RewriteSubterm(nameTerm("b"), nameTerm("z")))
	assert.True(t, orig.Equal(nameTerm("a", "b", "c")), "clone shares no storage")
}

func TestTerm_String(t *testing.T) {
	tm := term(param(0, 0), atomProto("P"), atomName("x"))
	assert.Equal(t, "τ_0_0.[P].x", tm.String())
	assert.Equal(t, "", NewTerm().String())
}

func TestTerm_Back(t *testing.T) {
	assert.Equal(t, "c", nameTerm("a", "c").Back().Name())
	assert.Panics(t, func() { NewTerm().Back() })
}
