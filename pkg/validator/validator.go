// Package validator holds the character rules that guard call names,
// keyword names and auto-quoted tokens.
package validator

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/thomasrohde/fncall/pkg/lexer"
)

// Sigils are the optional single-character name prefixes kept in the
// parsed name.
const Sigils = "@!?"

// Characters that may never appear in a function name.
const forbiddenNameChars = " \"':;<>{}[]~`(),=\\"

// Characters that may never appear in a token before it is auto-quoted.
// Parentheses block nested calls, quotes block string breakout.
const wrongSymbols = "();:<>{}[]~`\"'\\="

// IsSigil reports whether ch is a name sigil.
func IsSigil(ch byte) bool {
	return strings.IndexByte(Sigils, ch) >= 0
}

// SplitSigil separates a leading sigil from name. The sigil is 0 when absent.
func SplitSigil(name string) (byte, string) {
	if name != "" && IsSigil(name[0]) {
		return name[0], name[1:]
	}
	return 0, name
}

// ValidateName checks a function name with its sigil already removed.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("empty function name")
	}
	if IsSigil(name[0]) {
		return fmt.Errorf("invalid symbols in function name %q: only one sigil is allowed", name)
	}
	if i := strings.IndexFunc(name, unicode.IsSpace); i >= 0 {
		return fmt.Errorf("invalid symbols in function name %q: whitespace at offset %d", name, i)
	}
	if i := strings.IndexAny(name, forbiddenNameChars); i >= 0 {
		return fmt.Errorf("invalid symbols in function name %q: %q", name, name[i])
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return fmt.Errorf("invalid symbols in function name %q: control character", name)
		}
	}
	return nil
}

// ValidateKeyword checks a keyword argument name.
func ValidateKeyword(key string) error {
	if !lexer.IsIdent(key) {
		return fmt.Errorf("invalid keyword argument name %q", key)
	}
	if lexer.IsKeyword(key) {
		return fmt.Errorf("keyword argument name %q is reserved", key)
	}
	return nil
}

// ValidateBareToken checks an unquoted token before it is wrapped in quotes.
func ValidateBareToken(tok string) error {
	if tok == "" {
		return fmt.Errorf("empty argument")
	}
	if i := strings.IndexAny(tok, wrongSymbols); i >= 0 {
		return fmt.Errorf("disallowed symbol %q in argument %q", tok[i], tok)
	}
	for _, r := range tok {
		if r == '\n' || r == '\r' || r == '\t' || unicode.IsControl(r) {
			return fmt.Errorf("disallowed control character in argument %q", tok)
		}
	}
	return nil
}
