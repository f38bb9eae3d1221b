// Package formatter prints parsed calls back in canonical form.
//
// The canonical form quotes every string, prints keyword arguments in key
// order and always marks floats with a '.' or exponent, so parsing it again
// yields an equal call regardless of auto-quoting.
package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/thomasrohde/fncall/pkg/parser"
	"github.com/thomasrohde/fncall/pkg/value"
)

// Format renders call as name(arg, ..., key=value, ...).
func Format(call *parser.Call) string {
	parts := make([]string, 0, len(call.Args)+len(call.Kwargs))
	for _, a := range call.Args {
		parts = append(parts, FormatValue(a))
	}
	for _, k := range call.SortedKeys() {
		parts = append(parts, k+"="+FormatValue(call.Kwargs[k]))
	}
	return call.Name + "(" + strings.Join(parts, ", ") + ")"
}

// FormatValue renders a single value as a literal.
func FormatValue(v value.Value) string {
	switch val := v.(type) {
	case value.Null:
		return "null"
	case value.Bool:
		if val.Value {
			return "true"
		}
		return "false"
	case value.Int:
		return strconv.FormatInt(val.Value, 10)
	case value.Float:
		return formatFloat(val.Value)
	case value.String:
		return quote(val.Value)
	case value.Ref:
		return val.Path
	case value.List:
		items := make([]string, len(val.Items))
		for i, item := range val.Items {
			items[i] = FormatValue(item)
		}
		return "[" + strings.Join(items, ", ") + "]"
	}
	return "null"
}

func formatFloat(f float64) string {
	if math.IsInf(f, 0) || math.IsNaN(f) {
		// Not representable as a literal; callers only see these from
		// hand-built values.
		return quote(strconv.FormatFloat(f, 'g', -1, 64))
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func quote(s string) string {
	var b strings.Builder
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			if r < 0x20 || r == 0x7f {
				fmt.Fprintf(&b, `\u%04x`, r)
			} else {
				b.WriteRune(r)
			}
		}
	}
	b.WriteByte('"')
	return b.String()
}
