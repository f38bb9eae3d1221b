// Package diagnostics defines diagnostic records for rejected call strings.
package diagnostics

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/thomasrohde/fncall/pkg/ast"
)

// Diagnostic code constants.
const (
	ELex          = "E_LEX"
	EParse        = "E_PARSE"
	EName         = "E_NAME"
	EUnterminated = "E_UNTERMINATED"
	ETrailing     = "E_TRAILING"
	EArgSyntax    = "E_ARG_SYNTAX"
	EArgSymbols   = "E_ARG_SYMBOLS"
)

// Diagnostic represents a single rejection reason.
type Diagnostic struct {
	Code    string    `json:"code" yaml:"code"`
	Message string    `json:"message" yaml:"message"`
	Span    *ast.Span `json:"span,omitempty" yaml:"span,omitempty"`
	Hint    string    `json:"hint,omitempty" yaml:"hint,omitempty"`
}

// MakeDiag creates a new Diagnostic.
func MakeDiag(code, message string, span *ast.Span, hint string) Diagnostic {
	return Diagnostic{
		Code:    code,
		Message: message,
		Span:    span,
		Hint:    hint,
	}
}

// FormatDiagnostic formats a single diagnostic for display.
func FormatDiagnostic(d Diagnostic, pretty bool) string {
	if !pretty {
		b, _ := json.Marshal(d)
		return string(b)
	}
	loc := "<unknown>"
	if d.Span != nil {
		file := d.Span.File
		if file == "" {
			file = "<input>"
		}
		loc = fmt.Sprintf("%s:%d:%d", file, d.Span.StartLine, d.Span.StartCol)
	}
	out := fmt.Sprintf("error[%s]: %s\n  --> %s", d.Code, d.Message, loc)
	if d.Hint != "" {
		out += fmt.Sprintf("\n  hint: %s", d.Hint)
	}
	return out
}

// FormatDiagnostics formats a slice of diagnostics for display.
func FormatDiagnostics(diags []Diagnostic, pretty bool) string {
	if !pretty {
		if diags == nil {
			diags = []Diagnostic{}
		}
		b, _ := json.Marshal(diags)
		return string(b)
	}
	parts := make([]string, len(diags))
	for i, d := range diags {
		parts[i] = FormatDiagnostic(d, true)
	}
	return strings.Join(parts, "\n\n")
}
