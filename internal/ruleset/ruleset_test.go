package ruleset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/xshell/internal/highlight"
	"github.com/zjrosen/xshell/internal/style"
)

func TestXSharp_Builds(t *testing.T) {
	e, err := Build(XSharp())
	require.NoError(t, err)
	require.Equal(t, 6, e.Len())
	require.Equal(t, []string{"keyword", "keyword2", "operation", "comment", "multiline_comment", "number"}, e.Registry().Names())
}

func TestXSharp_Highlight(t *testing.T) {
	e, err := Build(XSharp())
	require.NoError(t, err)

	tests := []struct {
		name  string
		block string
		want  []highlight.Span
	}{
		{
			name:  "declaration with comment",
			block: "var x = 10 // c",
			want: []highlight.Span{
				{Start: 0, Length: 3, Style: "keyword"},
				{Start: 8, Length: 2, Style: "number"},
				{Start: 11, Length: 4, Style: "comment"},
			},
		},
		{
			name:  "loop keywords get the second keyword style",
			block: "for i start 1 end 9",
			want: []highlight.Span{
				{Start: 0, Length: 3, Style: "keyword"},
				{Start: 6, Length: 5, Style: "keyword2"},
				{Start: 12, Length: 1, Style: "number"},
				{Start: 14, Length: 3, Style: "keyword2"},
				{Start: 18, Length: 1, Style: "number"},
			},
		},
		{
			name:  "comment hides keywords",
			block: "// var 1",
			want:  []highlight.Span{{Start: 0, Length: 8, Style: "comment"}},
		},
		{
			name:  "operators",
			block: "a-1&b",
			want: []highlight.Span{
				{Start: 1, Length: 1, Style: "operation"},
				{Start: 2, Length: 1, Style: "number"},
				{Start: 3, Length: 1, Style: "operation"},
			},
		},
		{
			name:  "keyword inside identifier is not a keyword",
			block: "variable",
		},
		{
			name:  "block comment on one line",
			block: "x /* y */",
			want:  []highlight.Span{{Start: 2, Length: 7, Style: "multiline_comment"}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, e.Highlight(tt.block))
		})
	}
}

func TestAssembly_Highlight(t *testing.T) {
	e, err := Build(Assembly())
	require.NoError(t, err)

	spans := e.Highlight("LOAD 1")
	require.Equal(t, []highlight.Span{
		{Start: 0, Length: 4, Style: "mnemonic"},
		{Start: 5, Length: 1, Style: "number"},
	}, spans)

	spans = e.Highlight("loop: ADD 2 ; step")
	require.Equal(t, "label", highlight.StyleAt(spans, 0))
	require.Equal(t, "label", highlight.StyleAt(spans, 4))
	require.Equal(t, "number", highlight.StyleAt(spans, 10))
	require.Equal(t, "comment", highlight.StyleAt(spans, 12))
}

func TestBuild_Errors(t *testing.T) {
	tests := []struct {
		name string
		spec Spec
		is   error
	}{
		{
			name: "unknown style",
			spec: Spec{Name: "s", Rules: []RuleSpec{{Pattern: `\d`, Style: "nope"}}},
			is:   style.ErrUnknownStyle,
		},
		{
			name: "duplicate style",
			spec: Spec{Name: "s", Styles: []StyleSpec{{Name: "a", Color: "1"}, {Name: "a", Color: "2"}}},
			is:   style.ErrDuplicateStyle,
		},
		{
			name: "bad color",
			spec: Spec{Name: "s", Styles: []StyleSpec{{Name: "a", Color: "chartreuse-ish"}}},
		},
		{
			name: "bad pattern",
			spec: Spec{
				Name:   "s",
				Styles: []StyleSpec{{Name: "a", Color: "1"}},
				Rules:  []RuleSpec{{Pattern: `[`, Style: "a"}},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Build(tt.spec)
			require.Error(t, err)
			require.Nil(t, e)
			require.Contains(t, err.Error(), `ruleset "s"`)
			if tt.is != nil {
				require.ErrorIs(t, err, tt.is)
			}
		})
	}
}

func TestBuild_PassesEngineOptions(t *testing.T) {
	e, err := Build(Spec{
		Name:   "s",
		Styles: []StyleSpec{{Name: "a", Color: "1"}},
		Rules:  []RuleSpec{{Pattern: `a`, Style: "a"}},
	}, highlight.WithMatchTimeout(0))
	require.NoError(t, err)
	require.Equal(t, [][2]string{{"a", "a"}}, e.Patterns())
}

const yamlRuleset = `
styles:
  - name: number
    color: "#FF0000"
  - name: word
    color: "12"
    bold: true
rules:
  - pattern: '\d+'
    style: number
  - pattern: '[a-z]+'
    style: word
`

const tomlRuleset = `
name = "demo"

[[styles]]
name = "number"
color = "#ff0000"

[[styles]]
name = "word"
color = "12"
bold = true

[[rules]]
pattern = '\d+'
style = "number"

[[rules]]
pattern = '[a-z]+'
style = "word"
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_YAML(t *testing.T) {
	spec, err := Load(writeFile(t, "mine.yaml", yamlRuleset))
	require.NoError(t, err)
	require.Equal(t, "mine", spec.Name)
	require.Equal(t, []StyleSpec{
		{Name: "number", Color: "#FF0000"},
		{Name: "word", Color: "12", Bold: true},
	}, spec.Styles)
	require.Equal(t, []RuleSpec{{Pattern: `\d+`, Style: "number"}, {Pattern: `[a-z]+`, Style: "word"}}, spec.Rules)

	e, err := Build(spec)
	require.NoError(t, err)
	require.Equal(t, []highlight.Span{
		{Start: 0, Length: 2, Style: "number"},
		{Start: 3, Length: 3, Style: "word"},
	}, e.Highlight("42 abc"))
}

func TestLoad_TOML(t *testing.T) {
	spec, err := Load(writeFile(t, "rules.toml", tomlRuleset))
	require.NoError(t, err)
	require.Equal(t, "demo", spec.Name)
	require.Len(t, spec.Styles, 2)
	require.True(t, spec.Styles[1].Bold)
	require.Equal(t, `\d+`, spec.Rules[0].Pattern)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(writeFile(t, "rules.json", "{}"))
	require.ErrorIs(t, err, ErrUnsupportedFormat)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = Load(writeFile(t, "broken.yaml", "styles: [oops"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "parsing ruleset")
}

func TestLoadOr(t *testing.T) {
	spec, err := LoadOr("", Assembly())
	require.NoError(t, err)
	require.Equal(t, "assembly", spec.Name)

	spec, err = LoadOr(writeFile(t, "x.yml", yamlRuleset), Assembly())
	require.NoError(t, err)
	require.Equal(t, "x", spec.Name)
}

func TestEncode_RoundTripsThroughLoad(t *testing.T) {
	for _, format := range []string{"yaml", "toml"} {
		t.Run(format, func(t *testing.T) {
			data, err := XSharp().Encode(format)
			require.NoError(t, err)

			spec, err := Load(writeFile(t, "xsharp."+format, string(data)))
			require.NoError(t, err)
			require.Equal(t, XSharp(), spec)
		})
	}

	_, err := XSharp().Encode("json")
	require.ErrorIs(t, err, ErrUnsupportedFormat)
}
