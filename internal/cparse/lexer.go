// Package cparse - byte-offset-accurate lexer for the supported C subset.
//
// The lexer produces tokens whose spans index directly into the original
// source text. Exact spans are what make the textual rewrite step safe:
// the instrumentation engine copies expression text verbatim and replaces
// exact byte ranges, so every offset here must be correct to the byte.
//
// Preprocessor lines are not expanded. Each one is returned as a single
// TokDirective token carrying the raw line, so include directives can be
// observed and everything else passes through the rewrite untouched.
package cparse

import (
	"strings"
)

// Lexer tokenizes C source text.
//
// Zero progress is impossible: every call to Next either consumes at least
// one byte or returns TokEOF.
type Lexer struct {
	src  string
	pos  int // current byte offset
	line int // 1-based
	col  int // 1-based
}

// NewLexer creates a lexer over the given source text.
func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

// Next returns the next token, skipping whitespace and comments.
func (l *Lexer) Next() Token {
	l.skipSpaceAndComments()
	if l.pos >= len(l.src) {
		return Token{Type: TokEOF, Off: l.pos, Line: l.line, Column: l.col}
	}

	start, startLine, startCol := l.pos, l.line, l.col
	c := l.src[l.pos]

	switch {
	case c == '#' && l.atLineStart():
		return l.lexDirective(start, startLine, startCol)

	case isIdentStart(c):
		for l.pos < len(l.src) && isIdentPart(l.src[l.pos]) {
			l.advance()
		}
		lit := l.src[start:l.pos]
		typ := TokIdent
		if keywords[lit] {
			typ = TokKeyword
		}
		return Token{Type: typ, Lit: lit, Off: start, Line: startLine, Column: startCol}

	case isDigit(c) || (c == '.' && l.pos+1 < len(l.src) && isDigit(l.src[l.pos+1])):
		return l.lexNumber(start, startLine, startCol)

	case c == '\'':
		return l.lexQuoted('\'', TokCharLit, start, startLine, startCol)

	case c == '"':
		return l.lexQuoted('"', TokStringLit, start, startLine, startCol)
	}

	// Multi-character operators, greedy longest match.
	rest := l.src[l.pos:]
	for _, op := range multiPuncts {
		if strings.HasPrefix(rest, op) {
			for range op {
				l.advance()
			}
			return Token{Type: TokPunct, Lit: op, Off: start, Line: startLine, Column: startCol}
		}
	}

	// Single-character punctuation. Unknown bytes also land here and are
	// rejected by the parser with a position, not silently skipped.
	l.advance()
	return Token{Type: TokPunct, Lit: l.src[start:l.pos], Off: start, Line: startLine, Column: startCol}
}

// lexDirective consumes a whole preprocessor line, honoring backslash
// continuations, and returns it as one token.
func (l *Lexer) lexDirective(start, line, col int) Token {
	for l.pos < len(l.src) {
		if l.src[l.pos] == '\\' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '\n' {
			l.advance()
			l.advance()
			continue
		}
		if l.src[l.pos] == '\n' {
			break
		}
		l.advance()
	}
	return Token{Type: TokDirective, Lit: l.src[start:l.pos], Off: start, Line: line, Column: col}
}

// lexNumber consumes an integer or floating literal including suffixes.
func (l *Lexer) lexNumber(start, line, col int) Token {
	isFloat := false

	if l.src[l.pos] == '0' && l.pos+1 < len(l.src) && (l.src[l.pos+1] == 'x' || l.src[l.pos+1] == 'X') {
		// Hex literal: 0x1F, suffixes handled below.
		l.advance()
		l.advance()
		for l.pos < len(l.src) && isHexDigit(l.src[l.pos]) {
			l.advance()
		}
	} else {
		for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
			l.advance()
		}
		if l.pos < len(l.src) && l.src[l.pos] == '.' {
			isFloat = true
			l.advance()
			for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
				l.advance()
			}
		}
		if l.pos < len(l.src) && (l.src[l.pos] == 'e' || l.src[l.pos] == 'E') {
			next := l.pos + 1
			if next < len(l.src) && (l.src[next] == '+' || l.src[next] == '-') {
				next++
			}
			if next < len(l.src) && isDigit(l.src[next]) {
				isFloat = true
				l.advance() // e
				if l.src[l.pos] == '+' || l.src[l.pos] == '-' {
					l.advance()
				}
				for l.pos < len(l.src) && isDigit(l.src[l.pos]) {
					l.advance()
				}
			}
		}
	}

	// Suffixes: u/U, l/L, ll/LL for integers; f/F, l/L for floats.
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == 'u' || c == 'U' || c == 'l' || c == 'L' {
			l.advance()
			continue
		}
		if (c == 'f' || c == 'F') && isFloat {
			l.advance()
			continue
		}
		break
	}

	typ := TokIntLit
	if isFloat {
		typ = TokFloatLit
	}
	return Token{Type: typ, Lit: l.src[start:l.pos], Off: start, Line: line, Column: col}
}

// lexQuoted consumes a character or string literal with escape handling.
// An unterminated literal ends at EOF or end of line; the parser reports it.
func (l *Lexer) lexQuoted(quote byte, typ TokenType, start, line, col int) Token {
	l.advance() // opening quote
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		if c == '\\' && l.pos+1 < len(l.src) {
			l.advance()
			l.advance()
			continue
		}
		if c == quote {
			l.advance()
			break
		}
		if c == '\n' {
			break
		}
		l.advance()
	}
	return Token{Type: typ, Lit: l.src[start:l.pos], Off: start, Line: line, Column: col}
}

// skipSpaceAndComments advances past whitespace, // comments and /* */
// comments. An unterminated block comment consumes the rest of the input.
func (l *Lexer) skipSpaceAndComments() {
	for l.pos < len(l.src) {
		c := l.src[l.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\r' || c == '\n':
			l.advance()
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/':
			for l.pos < len(l.src) && l.src[l.pos] != '\n' {
				l.advance()
			}
		case c == '/' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '*':
			l.advance()
			l.advance()
			for l.pos < len(l.src) {
				if l.src[l.pos] == '*' && l.pos+1 < len(l.src) && l.src[l.pos+1] == '/' {
					l.advance()
					l.advance()
					break
				}
				l.advance()
			}
		default:
			return
		}
	}
}

// atLineStart reports whether only whitespace precedes the current position
// on its line. Preprocessor directives must start their line.
func (l *Lexer) atLineStart() bool {
	for i := l.pos - 1; i >= 0; i-- {
		switch l.src[i] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return true
}

// advance moves one byte forward, tracking line and column.
func (l *Lexer) advance() {
	if l.pos < len(l.src) {
		if l.src[l.pos] == '\n' {
			l.line++
			l.col = 1
		} else {
			l.col++
		}
		l.pos++
	}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || isDigit(c)
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

func isHexDigit(c byte) bool {
	return isDigit(c) || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
