package parser

import (
	"encoding/json"
	stderrors "errors"
	"sort"

	goerrors "github.com/agilira/go-errors"

	"github.com/thomasrohde/fncall/pkg/diagnostics"
	"github.com/thomasrohde/fncall/pkg/validator"
	"github.com/thomasrohde/fncall/pkg/value"
)

// Call is the result of parsing a function-call string.
type Call struct {
	// Name includes the sigil, if any.
	Name   string
	Args   []value.Value
	Kwargs map[string]value.Value

	autoQuoted bool
}

// AutoQuoted reports whether the arguments only parsed after auto-quoting.
func (c *Call) AutoQuoted() bool {
	return c.autoQuoted
}

// Sigil returns the name prefix sigil, or 0.
func (c *Call) Sigil() byte {
	sigil, _ := validator.SplitSigil(c.Name)
	return sigil
}

// BaseName returns the name without its sigil.
func (c *Call) BaseName() string {
	_, name := validator.SplitSigil(c.Name)
	return name
}

// SortedKeys returns the keyword argument names in lexical order.
func (c *Call) SortedKeys() []string {
	keys := make([]string, 0, len(c.Kwargs))
	for k := range c.Kwargs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a deep copy that shares nothing with c.
func (c *Call) Clone() *Call {
	out := &Call{
		Name:   c.Name,
		Args:   make([]value.Value, len(c.Args)),
		Kwargs: make(map[string]value.Value, len(c.Kwargs)),

		autoQuoted: c.autoQuoted,
	}
	for i, a := range c.Args {
		out.Args[i] = value.Clone(a)
	}
	for k, v := range c.Kwargs {
		out.Kwargs[k] = value.Clone(v)
	}
	return out
}

// Equal reports whether two calls have the same name, args and kwargs.
func (c *Call) Equal(o *Call) bool {
	if c == nil || o == nil {
		return c == o
	}
	if c.Name != o.Name || len(c.Args) != len(o.Args) || len(c.Kwargs) != len(o.Kwargs) {
		return false
	}
	for i := range c.Args {
		if !value.Equal(c.Args[i], o.Args[i]) {
			return false
		}
	}
	for k, v := range c.Kwargs {
		ov, ok := o.Kwargs[k]
		if !ok || !value.Equal(v, ov) {
			return false
		}
	}
	return true
}

// Native returns the call as plain Go data for dispatch.
func (c *Call) Native() (string, []any, map[string]any) {
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = value.Native(a)
	}
	kwargs := make(map[string]any, len(c.Kwargs))
	for k, v := range c.Kwargs {
		kwargs[k] = value.Native(v)
	}
	return c.Name, args, kwargs
}

// nativeCall is the serialized shape of a Call.
type nativeCall struct {
	Name   string         `json:"name" yaml:"name"`
	Args   []any          `json:"args" yaml:"args"`
	Kwargs map[string]any `json:"kwargs" yaml:"kwargs"`
}

// MarshalJSON encodes the call as {"name":..., "args":[...], "kwargs":{...}}.
// Floats keep a fraction or exponent, so 2.0 and 2 encode differently.
func (c *Call) MarshalJSON() ([]byte, error) {
	args := make([]any, len(c.Args))
	for i, a := range c.Args {
		args[i] = value.JSONNative(a)
	}
	kwargs := make(map[string]any, len(c.Kwargs))
	for k, v := range c.Kwargs {
		kwargs[k] = value.JSONNative(v)
	}
	return json.Marshal(nativeCall{Name: c.Name, Args: args, Kwargs: kwargs})
}

// MarshalYAML encodes the call with the same shape as MarshalJSON.
func (c *Call) MarshalYAML() (any, error) {
	name, args, kwargs := c.Native()
	return nativeCall{Name: name, Args: args, Kwargs: kwargs}, nil
}

// ParseError is returned for every rejected input.
type ParseError struct {
	Input string
	Diag  diagnostics.Diagnostic
	cause error
}

func (e *ParseError) Error() string {
	return e.Diag.Message
}

// Unwrap returns the strict-tier error when the auto-quote tier failed too.
func (e *ParseError) Unwrap() error {
	return e.cause
}

// ErrorCode implements go-errors' ErrorCoder.
func (e *ParseError) ErrorCode() goerrors.ErrorCode {
	return goerrors.ErrorCode(e.Diag.Code)
}

// Code returns the diagnostic code.
func (e *ParseError) Code() string {
	return e.Diag.Code
}

// AutoQuoted reports whether the error came from the auto-quote tier.
func (e *ParseError) AutoQuoted() bool {
	return e.cause != nil
}

// IsParseError reports whether err is, or wraps, a *ParseError.
func IsParseError(err error) bool {
	var pe *ParseError
	return stderrors.As(err, &pe)
}

// AsParseError extracts the outermost *ParseError from err.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	ok := stderrors.As(err, &pe)
	return pe, ok
}
