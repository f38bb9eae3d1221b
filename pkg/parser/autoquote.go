package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/lexer"
	"github.com/thomasrohde/fncall/pkg/validator"
)

// Tokens shaped like numbers are never auto-quoted. The strict re-parse
// either reads them as numbers or rejects them.
var (
	decimalShape  = regexp.MustCompile(`^[+-]?(\d[\d_]*\.?[\d_]*|\.\d[\d_]*)([eE][+-]?\d+)?$`)
	prefixedShape = regexp.MustCompile(`^[+-]?0[xXoObB]\w*$`)
)

func looksNumeric(s string) bool {
	return decimalShape.MatchString(s) || prefixedShape.MatchString(s)
}

// segment is a slice of the argument list with its byte offset in the input.
type segment struct {
	text string
	off  int
}

// trimmed strips surrounding whitespace and keeps the offset in step.
func (s segment) trimmed() segment {
	lead := len(s.text) - len(strings.TrimLeftFunc(s.text, unicode.IsSpace))
	return segment{text: strings.TrimSpace(s.text), off: s.off + lead}
}

// splitTopLevel splits s on commas that are outside quotes, parentheses and
// brackets. Unbalanced nesting or an unclosed quote is an error.
func splitTopLevel(s string, off int) ([]segment, error) {
	var (
		parts []segment
		stack []byte
		quote byte
		begin int
	)
	for i := 0; i < len(s); i++ {
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
		case '(', '[':
			stack = append(stack, ch)
		case ')', ']':
			want := byte('(')
			if ch == ']' {
				want = '['
			}
			if len(stack) == 0 || stack[len(stack)-1] != want {
				return nil, fmt.Errorf("unbalanced %q at offset %d", ch, off+i)
			}
			stack = stack[:len(stack)-1]
		case ',':
			if len(stack) == 0 {
				parts = append(parts, segment{text: s[begin:i], off: off + begin})
				begin = i + 1
			}
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unclosed string literal")
	}
	if len(stack) > 0 {
		return nil, fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return append(parts, segment{text: s[begin:], off: off + begin}), nil
}

// splitKeyValue splits an argument at its first top-level '='.
func splitKeyValue(arg segment) (key, val segment, ok bool) {
	var quote byte
	depth := 0
	for i := 0; i < len(arg.text); i++ {
		ch := arg.text[i]
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
		case '(', '[':
			depth++
		case ')', ']':
			depth--
		case '=':
			if depth == 0 {
				return segment{text: arg.text[:i], off: arg.off},
					segment{text: arg.text[i+1:], off: arg.off + i + 1}, true
			}
		}
	}
	return segment{}, arg, false
}

// dropTrailingEmpty removes the empty segment left by a trailing comma.
func dropTrailingEmpty(parts []segment) []segment {
	if len(parts) > 1 && strings.TrimSpace(parts[len(parts)-1].text) == "" {
		return parts[:len(parts)-1]
	}
	return parts
}

// autoQuoteArgs rewrites the argument list so that every plain token that
// is not already a literal becomes a double-quoted string.
func autoQuoteArgs(input, args string, off int) (string, *ParseError) {
	if strings.TrimSpace(args) == "" {
		return args, nil
	}

	parts, err := splitTopLevel(args, off)
	if err != nil {
		return "", newError(input, diagnostics.EArgSyntax, "invalid argument syntax: "+err.Error(), nil, "")
	}
	parts = dropTrailingEmpty(parts)

	out := make([]string, 0, len(parts))
	for _, part := range parts {
		arg := part.trimmed()
		if arg.text == "" {
			return "", newError(input, diagnostics.EArgSyntax, "invalid argument syntax: empty argument",
				colSpan(arg.off, arg.off+1), "")
		}

		key, val, hasKey := splitKeyValue(arg)
		if hasKey {
			key = key.trimmed()
			if err := validator.ValidateKeyword(key.text); err != nil {
				return "", newError(input, diagnostics.EArgSymbols, err.Error(),
					colSpan(key.off, key.off+len(key.text)), "")
			}
			val = val.trimmed()
			if val.text == "" {
				return "", newError(input, diagnostics.EArgSyntax,
					fmt.Sprintf("invalid argument syntax: missing value for keyword %q", key.text),
					colSpan(val.off, val.off+1), "")
			}
		}

		quoted, perr := quoteValue(input, val)
		if perr != nil {
			return "", perr
		}
		if hasKey {
			out = append(out, key.text+"="+quoted)
		} else {
			out = append(out, quoted)
		}
	}
	return strings.Join(out, ", "), nil
}

// quoteValue keeps strict literals and number-shaped tokens as they are,
// descends into lists and quotes everything else after checking it for
// disallowed symbols.
func quoteValue(input string, val segment) (string, *ParseError) {
	if isLiteral(val.text) || looksNumeric(val.text) {
		return val.text, nil
	}

	if strings.HasPrefix(val.text, "[") && strings.HasSuffix(val.text, "]") {
		inner := val.text[1 : len(val.text)-1]
		if strings.TrimSpace(inner) == "" {
			return "[]", nil
		}
		elems, err := splitTopLevel(inner, val.off+1)
		if err != nil {
			return "", newError(input, diagnostics.EArgSyntax, "invalid argument syntax: "+err.Error(),
				colSpan(val.off, val.off+len(val.text)), "")
		}
		elems = dropTrailingEmpty(elems)
		out := make([]string, 0, len(elems))
		for _, el := range elems {
			el = el.trimmed()
			if el.text == "" {
				return "", newError(input, diagnostics.EArgSyntax, "invalid argument syntax: empty list element",
					colSpan(el.off, el.off+1), "")
			}
			q, perr := quoteValue(input, el)
			if perr != nil {
				return "", perr
			}
			out = append(out, q)
		}
		return "[" + strings.Join(out, ", ") + "]", nil
	}

	if err := validator.ValidateBareToken(val.text); err != nil {
		return "", newError(input, diagnostics.EArgSymbols, err.Error(),
			colSpan(val.off, val.off+len(val.text)), "quote the argument explicitly")
	}
	return `"` + val.text + `"`, nil
}

// isLiteral reports whether s is exactly one strict-tier literal.
func isLiteral(s string) bool {
	tokens, err := lexer.Tokenize(s)
	if err != nil {
		return false
	}
	p := &parser{tokens: tokens, offset: -1}
	expr := p.parseLiteral()
	return expr != nil && len(p.diags) == 0 && p.peek() == lexer.TokEOF
}
