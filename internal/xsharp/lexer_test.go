package xsharp

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func types(tokens []Token) []TokenType {
	out := make([]TokenType, len(tokens))
	for i, t := range tokens {
		out[i] = t.Type
	}
	return out
}

func TestLexer_Tokens(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []TokenType
	}{
		{"empty", "", []TokenType{EOF}},
		{"whitespace only", " \t ", []TokenType{EOF}},
		{"newlines", "\n\r;", []TokenType{NEWLINE, NEWLINE, NEWLINE, EOF}},
		{"bitwise", "& | ~ ^", []TokenType{AND, OR, NOT, XOR, EOF}},
		{"delimiters", "(){}:", []TokenType{LPR, RPR, LBR, RBR, COL, EOF}},
		{"assign", "x = 1", []TokenType{IDENTIFIER, ASSIGN, NUM, EOF}},
		{"add and inc", "a + b++", []TokenType{IDENTIFIER, ADD, IDENTIFIER, INC, EOF}},
		{"sub and dec", "a - b--", []TokenType{IDENTIFIER, SUB, IDENTIFIER, DEC, EOF}},
		{"triple plus", "+++", []TokenType{INC, ADD, EOF}},
		{"comment skipped", "var x // trailing", []TokenType{KEYWORD, IDENTIFIER, EOF}},
		{"comment keeps newline", "// c\nx", []TokenType{NEWLINE, IDENTIFIER, EOF}},
		{"keywords", "const var for start end step while plot", []TokenType{KEYWORD, KEYWORD, KEYWORD, KEYWORD, KEYWORD, KEYWORD, KEYWORD, KEYWORD, EOF}},
		{"identifier with digits", "_x1 y2", []TokenType{IDENTIFIER, IDENTIFIER, EOF}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer("t.xs", tt.input).Tokens()
			require.NoError(t, err)
			require.Equal(t, tt.want, types(tokens))
		})
	}
}

func TestLexer_LiteralsAndPositions(t *testing.T) {
	tokens, err := Lex(context.Background(), "t.xs", "var x = 42\n  plot x")
	require.NoError(t, err)
	require.Equal(t, []Token{
		{Type: KEYWORD, Literal: "var", Line: 1, Column: 1},
		{Type: IDENTIFIER, Literal: "x", Line: 1, Column: 5},
		{Type: ASSIGN, Line: 1, Column: 7},
		{Type: NUM, Literal: "42", Line: 1, Column: 9},
		{Type: NEWLINE, Line: 1, Column: 11},
		{Type: KEYWORD, Literal: "plot", Line: 2, Column: 3},
		{Type: IDENTIFIER, Literal: "x", Line: 2, Column: 8},
		{Type: EOF, Line: 2, Column: 9},
	}, tokens)
}

func TestLexer_NumberThenLetters(t *testing.T) {
	tokens, err := Lex(context.Background(), "t.xs", "12ab")
	require.NoError(t, err)
	require.Equal(t, "NUM:12", tokens[0].String())
	require.Equal(t, "IDENTIFIER:ab", tokens[1].String())
}

func TestLexer_UnexpectedCharacter(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		char      string
		line, col int
	}{
		{"lone slash", "a / b", "/", 1, 3},
		{"slash at end", "a /", "/", 1, 3},
		{"bang", "x\n  !", "!", 2, 3},
		{"comparison is not lexed", "a < b", "<", 1, 3},
		{"non ascii", "é", "é", 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokens, err := NewLexer("bad.xs", tt.input).Tokens()
			require.Nil(t, tokens)

			var syn *SyntaxError
			require.True(t, errors.As(err, &syn))
			require.Equal(t, "bad.xs", syn.SourceID)
			require.Equal(t, tt.char, syn.Char)
			line, col := syn.Location()
			require.Equal(t, tt.line, line)
			require.Equal(t, tt.col, col)
			require.Equal(t, "unexpected character '"+tt.char+"'", err.Error())
		})
	}
}

func TestTokenType_String(t *testing.T) {
	require.Equal(t, "LT", LT.String())
	require.Equal(t, "EOF", EOF.String())
	require.Equal(t, "TokenType(99)", TokenType(99).String())
}

func TestProperty_ValidInputEndsWithSingleEOF(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		input := rapid.StringOf(rapid.RuneFrom([]rune("abvar019 \t\n;+-&|~^(){}:="))).Draw(rt, "input")
		tokens, err := NewLexer("p.xs", input).Tokens()
		require.NoError(rt, err)
		require.NotEmpty(rt, tokens)
		for i, tok := range tokens {
			require.Equal(rt, i == len(tokens)-1, tok.Type == EOF)
			require.GreaterOrEqual(rt, tok.Line, 1)
			require.GreaterOrEqual(rt, tok.Column, 1)
		}
	})
}
