package ruleset

import (
	"strings"

	"github.com/zjrosen/xshell/internal/style"
	"github.com/zjrosen/xshell/internal/xsharp"
)

// XSharp returns the rule set for X# source.
func XSharp() Spec {
	return Spec{
		Name: "xsharp",
		Styles: []StyleSpec{
			{Name: "keyword", Color: style.RGB(105, 205, 255), Bold: true},
			{Name: "keyword2", Color: style.RGB(255, 170, 0), Bold: true},
			{Name: "operation", Color: style.RGB(150, 150, 150)},
			{Name: "comment", Color: style.RGB(85, 170, 127), Italic: true},
			{Name: "multiline_comment", Color: style.RGB(85, 170, 127), Italic: true},
			{Name: "number", Color: style.RGB(255, 135, 255)},
		},
		Rules: []RuleSpec{
			{Pattern: `\b(` + strings.Join(xsharp.Keywords, "|") + `)\b`, Style: "keyword"},
			{Pattern: `\b(start|end|step)\b`, Style: "keyword2"},
			{Pattern: `\b\d+(\.\d+)?\b`, Style: "number"},
			{Pattern: `(\+|-|&|\||~|\^)`, Style: "operation"},
			{Pattern: `//[^\n]*`, Style: "comment"},
			{Pattern: `\/\*[\s\S]*?\*\/`, Style: "multiline_comment"},
		},
	}
}

// Assembly returns the rule set for the generated assembly view.
func Assembly() Spec {
	return Spec{
		Name: "assembly",
		Styles: []StyleSpec{
			{Name: "mnemonic", Color: style.RGB(105, 205, 255), Bold: true},
			{Name: "register", Color: style.RGB(255, 170, 0)},
			{Name: "number", Color: style.RGB(255, 135, 255)},
			{Name: "label", Color: style.RGB(220, 220, 170), Bold: true},
			{Name: "comment", Color: style.RGB(85, 170, 127), Italic: true},
		},
		Rules: []RuleSpec{
			{Pattern: `^\s*[A-Za-z][A-Za-z0-9]*\b`, Style: "mnemonic"},
			{Pattern: `\b[A-Z]\b|\b[rR]\d+\b`, Style: "register"},
			{Pattern: `(\b0x[0-9A-Fa-f]+\b|-?\b\d+\b)`, Style: "number"},
			{Pattern: `^\s*[A-Za-z_.][A-Za-z0-9_.]*:`, Style: "label"},
			{Pattern: `(//|;).*`, Style: "comment"},
		},
	}
}
