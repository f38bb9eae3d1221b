package parser

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/thomasrohde/fncall/pkg/ast"
	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/validator"
)

// envelope is the name(...) frame around the argument list.
type envelope struct {
	sigil byte
	name  string
	inner string
	// innerStart is the byte offset of inner within the original input.
	innerStart int
}

func (e *envelope) fullName() string {
	if e.sigil == 0 {
		return e.name
	}
	return string(e.sigil) + e.name
}

// colSpan builds a single-line span over input bytes [start, end).
func colSpan(start, end int) *ast.Span {
	if end <= start {
		end = start + 1
	}
	return &ast.Span{StartLine: 1, StartCol: start + 1, EndLine: 1, EndCol: end + 1}
}

func newError(input, code, msg string, span *ast.Span, hint string) *ParseError {
	return &ParseError{
		Input: input,
		Diag:  diagnostics.MakeDiag(code, msg, span, hint),
	}
}

// scanEnvelope validates the name, locates the closing parenthesis that
// matches the call's opening one and rejects anything after it.
func scanEnvelope(input string) (*envelope, *ParseError) {
	lead := len(input) - len(strings.TrimLeftFunc(input, unicode.IsSpace))
	s := strings.TrimSpace(input)
	if s == "" {
		return nil, newError(input, diagnostics.EParse, "empty call string", nil, "expected name(args...)")
	}

	open := strings.IndexByte(s, '(')
	if open < 0 {
		return nil, newError(input, diagnostics.EParse, "missing opening parenthesis",
			colSpan(lead, lead+len(s)), "expected name(args...)")
	}

	rawName := strings.TrimSpace(s[:open])
	sigil, name := validator.SplitSigil(rawName)
	if err := validator.ValidateName(name); err != nil {
		return nil, newError(input, diagnostics.EName, err.Error(),
			colSpan(lead, lead+open), "function names may not contain spaces, quotes or brackets")
	}

	closeIdx := -1
	var quote byte
	depth := 0
scan:
	for i := open; i < len(s); i++ {
		ch := s[i]
		if quote != 0 {
			if ch == '\\' {
				i++
				continue
			}
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '"', '\'':
			quote = ch
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				closeIdx = i
				break scan
			}
		}
	}

	if closeIdx < 0 {
		msg := "unterminated call: missing closing parenthesis"
		if quote != 0 {
			msg = "unterminated call: unclosed string literal"
		}
		return nil, newError(input, diagnostics.EUnterminated, msg,
			colSpan(lead+open, lead+len(s)), "close the argument list with ')'")
	}

	if rest := strings.TrimSpace(s[closeIdx+1:]); rest != "" {
		return nil, newError(input, diagnostics.ETrailing,
			fmt.Sprintf("unexpected content after call: %q", rest),
			colSpan(lead+closeIdx+1, lead+len(s)), "only a single call is allowed")
	}

	return &envelope{
		sigil:      sigil,
		name:       name,
		inner:      s[open+1 : closeIdx],
		innerStart: lead + open + 1,
	}, nil
}
