// Package xsharp implements the lexer for X# source files.
package xsharp

import (
	"fmt"
	"slices"
)

// Keywords are the reserved words of X#.
var Keywords = []string{
	"const", "var",
	"for", "start", "end", "step",
	"while",
	"plot",
}

// IsKeyword reports whether word is reserved.
func IsKeyword(word string) bool {
	return slices.Contains(Keywords, word)
}

// TokenType is the kind of a lexical token.
type TokenType int

const (
	// Comparison
	LT TokenType = iota
	LE
	EQ
	NE
	GT
	GE

	// Arithmetic
	ADD
	SUB
	INC // ++
	DEC // --

	// Bitwise
	AND
	OR
	NOT
	XOR

	// Delimiters
	LPR // (
	RPR // )
	LBR // {
	RBR // }
	COL // :

	ASSIGN

	NUM
	IDENTIFIER
	KEYWORD
	NEWLINE
	EOF
)

var tokenNames = [...]string{
	LT: "LT", LE: "LE", EQ: "EQ", NE: "NE", GT: "GT", GE: "GE",
	ADD: "ADD", SUB: "SUB", INC: "INC", DEC: "DEC",
	AND: "AND", OR: "OR", NOT: "NOT", XOR: "XOR",
	LPR: "LPR", RPR: "RPR", LBR: "LBR", RBR: "RBR", COL: "COL",
	ASSIGN:     "ASSIGN",
	NUM:        "NUM",
	IDENTIFIER: "IDENTIFIER",
	KEYWORD:    "KEYWORD",
	NEWLINE:    "NEWLINE",
	EOF:        "EOF",
}

func (t TokenType) String() string {
	if t >= 0 && int(t) < len(tokenNames) {
		return tokenNames[t]
	}
	return fmt.Sprintf("TokenType(%d)", int(t))
}

// Token is a lexical token. Line and Column are 1-based and point at the
// token's first character.
type Token struct {
	Type    TokenType
	Literal string // source text for NUM, IDENTIFIER and KEYWORD; empty otherwise
	Line    int
	Column  int
}

func (t Token) String() string {
	if t.Literal != "" {
		return t.Type.String() + ":" + t.Literal
	}
	return t.Type.String()
}
