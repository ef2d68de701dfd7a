// Package cparse - token definitions for the C lexer.
package cparse

// TokenType classifies lexical tokens.
type TokenType int

const (
	// TokEOF marks the end of input.
	TokEOF TokenType = iota
	// TokIdent is an identifier.
	TokIdent
	// TokKeyword is a reserved C keyword.
	TokKeyword
	// TokIntLit is an integer literal (decimal, octal or hex, with suffixes).
	TokIntLit
	// TokFloatLit is a floating-point literal (with suffixes).
	TokFloatLit
	// TokCharLit is a character literal, including the quotes.
	TokCharLit
	// TokStringLit is a string literal, including the quotes.
	TokStringLit
	// TokPunct is an operator or punctuation token ("+=", "->", "{", ...).
	TokPunct
	// TokDirective is a whole preprocessor line ("#include <stdio.h>", ...).
	// Directives are recorded, never expanded.
	TokDirective
)

// String returns a human-readable token type name for diagnostics.
func (t TokenType) String() string {
	switch t {
	case TokEOF:
		return "end of input"
	case TokIdent:
		return "identifier"
	case TokKeyword:
		return "keyword"
	case TokIntLit:
		return "integer literal"
	case TokFloatLit:
		return "floating literal"
	case TokCharLit:
		return "character literal"
	case TokStringLit:
		return "string literal"
	case TokPunct:
		return "punctuation"
	case TokDirective:
		return "preprocessor directive"
	}
	return "unknown token"
}

// Token is a single lexical token with its exact source span.
//
// Off is the byte offset of the first character in the original source;
// Off+len(Lit) is the end of the span. Line and Column are 1-based and
// used only for diagnostics.
type Token struct {
	Type   TokenType
	Lit    string // exact source text of the token
	Off    int    // byte offset in the source
	Line   int
	Column int
}

// End returns the byte offset one past the last character of the token.
func (t Token) End() int {
	return t.Off + len(t.Lit)
}

// keywords is the closed set of reserved words the frontend understands.
// Anything else lexes as an identifier.
var keywords = map[string]bool{
	"void": true, "char": true, "short": true, "int": true, "long": true,
	"float": true, "double": true, "signed": true, "unsigned": true,
	"_Bool": true, "struct": true, "union": true,
	"if": true, "else": true, "for": true, "while": true, "do": true,
	"return": true, "break": true, "continue": true,
	"static": true, "extern": true, "const": true, "volatile": true,
	"sizeof": true,
}

// multiPuncts lists multi-character operators, longest first, so the lexer
// can use greedy prefix matching.
var multiPuncts = []string{
	"<<=", ">>=", "...",
	"++", "--", "->", "<<", ">>", "<=", ">=", "==", "!=", "&&", "||",
	"+=", "-=", "*=", "/=", "%=", "&=", "|=", "^=",
}
