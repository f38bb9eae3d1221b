// Package lexer implements the tokenizer for call argument lists.
package lexer

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"github.com/thomasrohde/fncall/pkg/ast"
	"github.com/thomasrohde/fncall/pkg/diagnostics"
)

// TokenType identifies the type of a lexer token.
type TokenType int

const (
	// Keywords
	TokTrue TokenType = iota
	TokFalse
	TokNull

	// Literals
	TokIntLit
	TokFloatLit
	TokStringLit

	// Identifiers
	TokIdent

	// Punctuation
	TokLBracket // [
	TokRBracket // ]
	TokLParen   // (
	TokRParen   // )
	TokComma    // ,
	TokDot      // .
	TokEquals   // =

	// Signs, only valid directly before a number
	TokPlus  // +
	TokMinus // -

	// Special
	TokEOF
)

// Token represents a single lexer token.
type Token struct {
	Type  TokenType
	Value string
	Span  ast.Span
}

var punctuation = map[byte]TokenType{
	'[': TokLBracket,
	']': TokRBracket,
	'(': TokLParen,
	')': TokRParen,
	',': TokComma,
	'.': TokDot,
	'=': TokEquals,
	'+': TokPlus,
	'-': TokMinus,
}

// Lower-case and capitalized spellings are both accepted.
var keywords = map[string]TokenType{
	"true":  TokTrue,
	"True":  TokTrue,
	"false": TokFalse,
	"False": TokFalse,
	"null":  TokNull,
	"None":  TokNull,
}

// IsKeyword reports whether s is a reserved literal keyword.
func IsKeyword(s string) bool {
	_, ok := keywords[s]
	return ok
}

type scanner struct {
	source string
	pos    int
	line   int
	col    int
}

func newScanner(source string) *scanner {
	return &scanner{
		source: source,
		pos:    0,
		line:   1,
		col:    1,
	}
}

func (s *scanner) atEnd() bool {
	return s.pos >= len(s.source)
}

func (s *scanner) peek() byte {
	if s.atEnd() {
		return 0
	}
	return s.source[s.pos]
}

func (s *scanner) peekAt(offset int) byte {
	p := s.pos + offset
	if p >= len(s.source) {
		return 0
	}
	return s.source[p]
}

func (s *scanner) advance() byte {
	ch := s.source[s.pos]
	s.pos++
	if ch == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return ch
}

func (s *scanner) span(startLine, startCol int) ast.Span {
	return ast.Span{
		StartLine: startLine,
		StartCol:  startCol,
		EndLine:   s.line,
		EndCol:    s.col,
	}
}

// token builds a token ending at the current position.
func (s *scanner) token(typ TokenType, value string, startLine, startCol int) Token {
	return Token{Type: typ, Value: value, Span: s.span(startLine, startCol)}
}

func (s *scanner) skipWhitespace() {
	for !s.atEnd() && strings.IndexByte(" \t\r\n", s.peek()) >= 0 {
		s.advance()
	}
}

func isAlpha(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isAlphaNumeric(ch byte) bool {
	return isAlpha(ch) || isDigit(ch)
}

// IsIdent reports whether s is a plain identifier.
func IsIdent(s string) bool {
	if s == "" || !isAlpha(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isAlphaNumeric(s[i]) {
			return false
		}
	}
	return true
}

func (s *scanner) scanString() (Token, error) {
	startLine, startCol := s.line, s.col
	quote := s.advance() // consume opening quote

	var buf strings.Builder
	for !s.atEnd() {
		switch ch := s.peek(); {
		case ch == quote:
			s.advance()
			return s.token(TokStringLit, buf.String(), startLine, startCol), nil
		case ch == '\n':
			return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
		case ch == '\\':
			if err := s.scanEscape(&buf, startLine, startCol); err != nil {
				return Token{}, err
			}
		default:
			r, size := utf8.DecodeRuneInString(s.source[s.pos:])
			if r == utf8.RuneError && size == 1 {
				return Token{}, s.lexError(startLine, startCol, "invalid UTF-8 character in string")
			}
			buf.WriteRune(r)
			s.skip(size)
		}
	}
	return Token{}, s.lexError(startLine, startCol, "unterminated string literal")
}

// Single-character escapes and the byte they stand for.
var escapes = map[byte]byte{
	'"':  '"',
	'\'': '\'',
	'\\': '\\',
	'/':  '/',
	'n':  '\n',
	'r':  '\r',
	't':  '\t',
	'0':  0,
}

// scanEscape consumes a backslash escape and writes its value to buf.
func (s *scanner) scanEscape(buf *strings.Builder, startLine, startCol int) error {
	s.advance()
	if s.atEnd() {
		return s.lexError(startLine, startCol, "unterminated string escape")
	}
	esc := s.advance()
	if b, ok := escapes[esc]; ok {
		buf.WriteByte(b)
		return nil
	}
	if esc != 'u' {
		return s.lexError(startLine, startCol, fmt.Sprintf("invalid escape character: \\%c", esc))
	}
	if s.pos+4 > len(s.source) {
		return s.lexError(startLine, startCol, "incomplete unicode escape")
	}
	hex := s.source[s.pos : s.pos+4]
	r, ok := s.hexRune(0)
	if !ok {
		return s.lexError(startLine, startCol, fmt.Sprintf("invalid unicode escape: \\u%s", hex))
	}
	s.skip(4)
	if !utf16.IsSurrogate(r) {
		buf.WriteRune(r)
		return nil
	}

	// Code points outside the BMP are written as a \uD8xx\uDCxx pair.
	if r < 0xdc00 && s.peek() == '\\' && s.peekAt(1) == 'u' {
		if lo, ok := s.hexRune(2); ok {
			if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
				buf.WriteRune(pair)
				s.skip(6)
				return nil
			}
		}
	}
	return s.lexError(startLine, startCol, fmt.Sprintf("invalid unicode escape: lone surrogate \\u%s", hex))
}

// hexRune decodes the four hex digits starting offset bytes ahead.
func (s *scanner) hexRune(offset int) (rune, bool) {
	start := s.pos + offset
	if start+4 > len(s.source) {
		return 0, false
	}
	cp, err := strconv.ParseUint(s.source[start:start+4], 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(cp), true
}

func (s *scanner) skip(n int) {
	for i := 0; i < n && !s.atEnd(); i++ {
		s.advance()
	}
}

// exponentAt returns the length of the exponent marker and sign starting
// offset bytes ahead, or 0 when no digit-bearing exponent starts there.
func (s *scanner) exponentAt(offset int) int {
	if e := s.peekAt(offset); e != 'e' && e != 'E' {
		return 0
	}
	switch next := s.peekAt(offset + 1); {
	case isDigit(next):
		return 1
	case (next == '+' || next == '-') && isDigit(s.peekAt(offset+2)):
		return 2
	}
	return 0
}

func (s *scanner) skipDigits() {
	for !s.atEnd() && isDigit(s.peek()) {
		s.advance()
	}
}

func (s *scanner) scanNumber() (Token, error) {
	startLine, startCol := s.line, s.col
	startPos := s.pos
	isFloat := false

	// 0x, 0o and 0b prefixed integers; digits are checked by the parser.
	if s.peek() == '0' && strings.IndexByte("xXoObB", s.peekAt(1)) >= 0 {
		s.skip(2)
		for !s.atEnd() && isAlphaNumeric(s.peek()) {
			s.advance()
		}
		return s.token(TokIntLit, s.source[startPos:s.pos], startLine, startCol), nil
	}

	s.skipDigits()

	// A '.' directly followed by a letter starts a reference, except for an
	// exponent as in 1.e5.
	if s.peek() == '.' && (!isAlpha(s.peekAt(1)) || s.exponentAt(1) > 0) {
		isFloat = true
		s.advance()
		s.skipDigits()
	}

	if n := s.exponentAt(0); n > 0 {
		isFloat = true
		s.skip(n)
		s.skipDigits()
	}

	text := s.source[startPos:s.pos]
	if text == "." {
		return Token{}, s.lexError(startLine, startCol, "unexpected character '.'")
	}
	if isFloat {
		return s.token(TokFloatLit, text, startLine, startCol), nil
	}
	return s.token(TokIntLit, text, startLine, startCol), nil
}

func (s *scanner) scanIdentOrKeyword() Token {
	startLine, startCol := s.line, s.col
	startPos := s.pos

	for !s.atEnd() && isAlphaNumeric(s.peek()) {
		s.advance()
	}

	text := s.source[startPos:s.pos]
	if typ, ok := keywords[text]; ok {
		return s.token(typ, text, startLine, startCol)
	}
	return s.token(TokIdent, text, startLine, startCol)
}

func (s *scanner) lexError(line, col int, msg string) error {
	diag := diagnostics.MakeDiag(
		diagnostics.ELex,
		msg,
		&ast.Span{StartLine: line, StartCol: col, EndLine: line, EndCol: col + 1},
		"",
	)
	return &LexError{Diag: diag}
}

// LexError wraps a diagnostic for lex errors.
type LexError struct {
	Diag diagnostics.Diagnostic
}

func (e *LexError) Error() string {
	return e.Diag.Message
}

func (s *scanner) nextToken() (Token, error) {
	s.skipWhitespace()

	startLine, startCol := s.line, s.col
	if s.atEnd() {
		return s.token(TokEOF, "", startLine, startCol), nil
	}

	ch := s.peek()
	switch {
	case ch == '"' || ch == '\'':
		return s.scanString()
	case isDigit(ch) || (ch == '.' && isDigit(s.peekAt(1))):
		return s.scanNumber()
	case isAlpha(ch):
		return s.scanIdentOrKeyword(), nil
	}

	if typ, ok := punctuation[ch]; ok {
		s.advance()
		return s.token(typ, string(ch), startLine, startCol), nil
	}

	r, _ := utf8.DecodeRuneInString(s.source[s.pos:])
	s.advance()
	return Token{}, s.lexError(startLine, startCol, fmt.Sprintf("unexpected character %q", r))
}

// Tokenize breaks an argument list into a slice of tokens.
func Tokenize(source string) ([]Token, error) {
	s := newScanner(source)
	var tokens []Token

	for {
		tok, err := s.nextToken()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.Type == TokEOF {
			break
		}
	}

	return tokens, nil
}
