package highlight

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/zjrosen/xshell/internal/style"
)

func propertyEngine(t *testing.T) *Engine {
	t.Helper()
	reg := style.NewRegistry()
	for _, n := range []string{"keyword", "number", "operation", "comment"} {
		require.NoError(t, reg.Define(n, "#abcdef", false, false))
	}
	e := NewEngine(reg)
	e.MustRegister(`\b(var|const)\b`, "keyword").
		MustRegister(`\d+`, "number").
		MustRegister(`[+\-]`, "operation").
		MustRegister(`//.*`, "comment")
	return e
}

func blockGen() *rapid.Generator[string] {
	return rapid.StringOf(rapid.RuneFrom([]rune("varconst 0129+-/é\t")))
}

func TestProperty_HighlightIsIdempotent(t *testing.T) {
	e := propertyEngine(t)
	rapid.Check(t, func(rt *rapid.T) {
		block := blockGen().Draw(rt, "block")
		require.Equal(rt, e.Highlight(block), e.Highlight(block))
	})
}

func TestProperty_SpansStayInsideBlock(t *testing.T) {
	e := propertyEngine(t)
	rapid.Check(t, func(rt *rapid.T) {
		block := blockGen().Draw(rt, "block")
		n := utf8.RuneCountInString(block)

		prevEnd := 0
		for _, sp := range e.Highlight(block) {
			require.GreaterOrEqual(rt, sp.Start, prevEnd, "spans are sorted and disjoint")
			require.Positive(rt, sp.Length)
			require.LessOrEqual(rt, sp.End(), n)
			prevEnd = sp.End()
		}
		for _, sp := range e.Matches(block) {
			require.GreaterOrEqual(rt, sp.Start, 0)
			require.LessOrEqual(rt, sp.End(), n)
		}
	})
}

func TestProperty_LastMatchingRuleWinsPerCharacter(t *testing.T) {
	e := propertyEngine(t)
	rapid.Check(t, func(rt *rapid.T) {
		block := blockGen().Draw(rt, "block")
		matches := e.Matches(block)
		effective := e.Highlight(block)

		for i := 0; i < utf8.RuneCountInString(block); i++ {
			require.Equal(rt, StyleAt(matches, i), StyleAt(effective, i), "offset %d", i)
		}
	})
}

func TestProperty_OverlapTakesLaterStyle(t *testing.T) {
	reg := style.NewRegistry()
	require.NoError(t, reg.Define("a", "1", false, false))
	require.NoError(t, reg.Define("b", "2", false, false))

	rapid.Check(t, func(rt *rapid.T) {
		prefix := rapid.IntRange(0, 5).Draw(rt, "prefix")
		overlap := rapid.IntRange(1, 5).Draw(rt, "overlap")
		suffix := rapid.IntRange(0, 5).Draw(rt, "suffix")

		e := NewEngine(reg)
		e.MustRegister(`x+y+`, "a").MustRegister(`y+z+`, "b")

		block := "x" + repeat('x', prefix) + repeat('y', overlap) + "z" + repeat('z', suffix)
		spans := e.Highlight(block)

		xs := 1 + prefix
		for i := 0; i < xs; i++ {
			require.Equal(rt, "a", StyleAt(spans, i))
		}
		for i := xs; i < len(block); i++ {
			require.Equal(rt, "b", StyleAt(spans, i))
		}
	})
}

func repeat(r rune, n int) string {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return string(out)
}
