package highlight

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xshell/internal/style"
)

func newRegistry(t *testing.T, names ...string) *style.Registry {
	t.Helper()
	reg := style.NewRegistry()
	for _, n := range names {
		require.NoError(t, reg.Define(n, "#ffffff", false, false))
	}
	reg.Seal()
	return reg
}

func TestEngine_CommentStopsAtNewline(t *testing.T) {
	e := NewEngine(newRegistry(t, "comment"))
	require.NoError(t, e.Register(`//.*`, "comment"))

	spans := e.Highlight("// note\nx")
	require.Equal(t, []Span{{Start: 0, Length: 7, Style: "comment"}}, spans)
	require.Equal(t, "", StyleAt(spans, 8), "x must stay unstyled")
}

func TestEngine_AdjacentRules(t *testing.T) {
	e := NewEngine(newRegistry(t, "number", "operation"))
	require.NoError(t, e.Register(`\d+`, "number"))
	require.NoError(t, e.Register(`[+-]`, "operation"))

	spans := e.Highlight("1+2")
	require.Equal(t, []Span{
		{Start: 0, Length: 1, Style: "number"},
		{Start: 1, Length: 1, Style: "operation"},
		{Start: 2, Length: 1, Style: "number"},
	}, spans)
}

func TestEngine_LaterRuleWinsOnOverlap(t *testing.T) {
	e := NewEngine(newRegistry(t, "first", "second"))
	require.NoError(t, e.Register(`abc`, "first"))
	require.NoError(t, e.Register(`bcd`, "second"))

	spans := e.Highlight("abcd")
	require.Equal(t, []Span{
		{Start: 0, Length: 1, Style: "first"},
		{Start: 1, Length: 3, Style: "second"},
	}, spans)
}

func TestEngine_EarlierRuleDoesNotOverrideLater(t *testing.T) {
	e := NewEngine(newRegistry(t, "keyword", "comment"))
	require.NoError(t, e.Register(`\bvar\b`, "keyword"))
	require.NoError(t, e.Register(`//[^\n]*`, "comment"))

	spans := e.Highlight("x // var y")
	require.Equal(t, []Span{{Start: 2, Length: 8, Style: "comment"}}, spans)
}

func TestEngine_MatchesKeepApplicationOrder(t *testing.T) {
	e := NewEngine(newRegistry(t, "number", "operation"))
	require.NoError(t, e.Register(`\d+`, "number"))
	require.NoError(t, e.Register(`[+-]`, "operation"))

	require.Equal(t, []Span{
		{Start: 0, Length: 2, Style: "number"},
		{Start: 3, Length: 1, Style: "number"},
		{Start: 2, Length: 1, Style: "operation"},
	}, e.Matches("12-3"))
}

func TestEngine_ZeroLengthMatchesProduceNoSpans(t *testing.T) {
	e := NewEngine(newRegistry(t, "empty"))
	require.NoError(t, e.Register(`x*`, "empty"))

	spans := e.Highlight("abxxc")
	require.Equal(t, []Span{{Start: 2, Length: 2, Style: "empty"}}, spans)
}

func TestEngine_OffsetsCountRunes(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	require.NoError(t, e.Register(`\d+`, "number"))

	spans := e.Highlight("héé 42")
	require.Equal(t, []Span{{Start: 4, Length: 2, Style: "number"}}, spans)
}

func TestEngine_LazyBlockComment(t *testing.T) {
	e := NewEngine(newRegistry(t, "comment"))
	require.NoError(t, e.Register(`\/\*[\s\S]*?\*\/`, "comment"))

	spans := e.Highlight("/* a */ x /* b */")
	require.Equal(t, []Span{
		{Start: 0, Length: 7, Style: "comment"},
		{Start: 10, Length: 7, Style: "comment"},
	}, spans)
}

func TestEngine_UnterminatedBlockCommentIsNotCarried(t *testing.T) {
	e := NewEngine(newRegistry(t, "comment"))
	require.NoError(t, e.Register(`\/\*[\s\S]*?\*\/`, "comment"))

	require.Empty(t, e.Highlight("/* opened here"))
	require.Empty(t, e.Highlight("still inside */"), "no state crosses block boundaries")
}

func TestEngine_EmptyBlock(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	require.NoError(t, e.Register(`\d`, "number"))
	require.Empty(t, e.Highlight(""))
}

func TestEngine_RegisterRejectsUnknownStyle(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	err := e.Register(`\d`, "missing")
	require.ErrorIs(t, err, style.ErrUnknownStyle)
	require.Equal(t, 0, e.Len())
}

func TestEngine_RegisterRejectsBadPattern(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	err := e.Register(`(\d`, "number")
	require.Error(t, err)
	require.Contains(t, err.Error(), "compile pattern")

	require.Error(t, e.Register("", "number"))
}

func TestEngine_RegisterAfterHighlightIsSealed(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	require.NoError(t, e.Register(`\d`, "number"))
	_ = e.Highlight("1")

	err := e.Register(`[a-z]`, "number")
	require.ErrorIs(t, err, ErrSealed)
	require.Equal(t, 1, e.Len())
}

func TestEngine_MustRegisterPanics(t *testing.T) {
	e := NewEngine(newRegistry(t, "number"))
	require.Panics(t, func() { e.MustRegister(`\d`, "nope") })
	require.NotPanics(t, func() { e.MustRegister(`\d`, "number") })
}

func TestEngine_Patterns(t *testing.T) {
	e := NewEngine(newRegistry(t, "number", "operation"))
	e.MustRegister(`\d+`, "number").MustRegister(`[+-]`, "operation")
	require.Equal(t, [][2]string{{`\d+`, "number"}, {`[+-]`, "operation"}}, e.Patterns())
}

func TestEngine_TimeoutAbandonsRule(t *testing.T) {
	e := NewEngine(newRegistry(t, "slow", "number"), WithMatchTimeout(time.Millisecond))
	require.NoError(t, e.Register(`(a+)+$`, "slow"))
	require.NoError(t, e.Register(`\d`, "number"))

	block := "1aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaab"
	spans := e.Highlight(block)
	require.Equal(t, "number", StyleAt(spans, 0), "later rules still apply")
}

func TestEngine_ConcurrentHighlight(t *testing.T) {
	e := NewEngine(newRegistry(t, "number", "operation"))
	e.MustRegister(`\d+`, "number").MustRegister(`[+-]`, "operation")
	e.Seal()

	want := e.Highlight("10 + 20 - 3")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				got := e.Highlight("10 + 20 - 3")
				if len(got) != len(want) {
					t.Errorf("got %d spans, want %d", len(got), len(want))
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name  string
		spans []Span
		n     int
		want  []Span
	}{
		{
			name: "no spans",
			n:    3,
		},
		{
			name:  "merges equal neighbours",
			spans: []Span{{0, 1, "a"}, {1, 1, "a"}},
			n:     3,
			want:  []Span{{0, 2, "a"}},
		},
		{
			name:  "later span splits earlier",
			spans: []Span{{0, 5, "a"}, {2, 1, "b"}},
			n:     5,
			want:  []Span{{0, 2, "a"}, {2, 1, "b"}, {3, 2, "a"}},
		},
		{
			name:  "clamps to block",
			spans: []Span{{-2, 4, "a"}, {3, 10, "b"}},
			n:     4,
			want:  []Span{{0, 2, "a"}, {3, 1, "b"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, Resolve(tt.spans, tt.n))
		})
	}
}
