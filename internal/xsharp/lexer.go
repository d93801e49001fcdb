package xsharp

import (
	"context"
	"fmt"
	"strings"
)

// SyntaxError reports an unexpected character.
type SyntaxError struct {
	SourceID string
	Line     int
	Column   int
	Char     string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("unexpected character '%s'", e.Char)
}

// Location returns the 1-based line and column of the offending character.
func (e *SyntaxError) Location() (line, column int) {
	return e.Line, e.Column
}

// Lexer tokenizes X# source.
type Lexer struct {
	sourceID string
	input    []rune
	pos      int
	line     int
	col      int
}

// NewLexer creates a lexer over text. sourceID is only used in errors.
func NewLexer(sourceID, text string) *Lexer {
	return &Lexer{sourceID: sourceID, input: []rune(text), line: 1, col: 1}
}

// Lex tokenizes text in one call. It satisfies the pipeline lexer shape.
func Lex(_ context.Context, sourceID, text string) ([]Token, error) {
	return NewLexer(sourceID, text).Tokens()
}

func (l *Lexer) peek() (rune, bool) {
	if l.pos >= len(l.input) {
		return 0, false
	}
	return l.input[l.pos], true
}

func (l *Lexer) advance() {
	if l.input[l.pos] == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	l.pos++
}

func (l *Lexer) token(typ TokenType, line, col int) Token {
	return Token{Type: typ, Line: line, Column: col}
}

// Tokens lexes the whole input. The result always ends with an EOF token.
// Lexing stops at the first unexpected character.
func (l *Lexer) Tokens() ([]Token, error) {
	var tokens []Token

	for {
		ch, ok := l.peek()
		if !ok {
			break
		}
		line, col := l.line, l.col

		switch {
		case ch == ' ' || ch == '\t':
			l.advance()

		case ch == '\n' || ch == '\r' || ch == ';':
			l.advance()
			tokens = append(tokens, l.token(NEWLINE, line, col))

		case strings.ContainsRune("&|~^(){}:=", ch):
			l.advance()
			tokens = append(tokens, l.token(singles[ch], line, col))

		case ch == '+' || ch == '-':
			l.advance()
			typ := ADD
			if ch == '-' {
				typ = SUB
			}
			if next, ok := l.peek(); ok && next == ch {
				l.advance()
				typ = INC
				if ch == '-' {
					typ = DEC
				}
			}
			tokens = append(tokens, l.token(typ, line, col))

		case isDigit(ch):
			start := l.pos
			for next, ok := l.peek(); ok && isDigit(next); next, ok = l.peek() {
				l.advance()
			}
			tok := l.token(NUM, line, col)
			tok.Literal = string(l.input[start:l.pos])
			tokens = append(tokens, tok)

		case isLetter(ch):
			start := l.pos
			for next, ok := l.peek(); ok && (isLetter(next) || isDigit(next)); next, ok = l.peek() {
				l.advance()
			}
			word := string(l.input[start:l.pos])
			tok := l.token(IDENTIFIER, line, col)
			if IsKeyword(word) {
				tok.Type = KEYWORD
			}
			tok.Literal = word
			tokens = append(tokens, tok)

		case ch == '/':
			l.advance()
			if next, ok := l.peek(); !ok || next != '/' {
				return nil, l.unexpected("/", line, col)
			}
			for next, ok := l.peek(); ok && next != '\n' && next != '\r'; next, ok = l.peek() {
				l.advance()
			}

		default:
			return nil, l.unexpected(string(ch), line, col)
		}
	}

	tokens = append(tokens, l.token(EOF, l.line, l.col))
	return tokens, nil
}

func (l *Lexer) unexpected(ch string, line, col int) error {
	return &SyntaxError{SourceID: l.sourceID, Line: line, Column: col, Char: ch}
}

var singles = map[rune]TokenType{
	'&': AND,
	'|': OR,
	'~': NOT,
	'^': XOR,
	'(': LPR,
	')': RPR,
	'{': LBR,
	'}': RBR,
	':': COL,
	'=': ASSIGN,
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

func isLetter(ch rune) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch == '_'
}
