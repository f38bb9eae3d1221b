package value

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Native converts v to plain Go data: nil, bool, int64, float64, string or
// []any. Refs become their dotted text.
func Native(v Value) any {
	if v == nil {
		return nil
	}

	switch val := v.(type) {
	case Null:
		return nil
	case Bool:
		return val.Value
	case Int:
		return val.Value
	case Float:
		return val.Value
	case String:
		return val.Value
	case Ref:
		return val.Path
	case List:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = Native(item)
		}
		return items
	}

	return nil
}

// FromNative converts decoded JSON or YAML data back into a Value.
// Whole float64 numbers stay floats; use integer types for Int.
func FromNative(x any) (Value, error) {
	switch val := x.(type) {
	case nil:
		return NewNull(), nil
	case bool:
		return NewBool(val), nil
	case int:
		return NewInt(int64(val)), nil
	case int64:
		return NewInt(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return nil, fmt.Errorf("integer %d out of range", val)
		}
		return NewInt(int64(val)), nil
	case float64:
		return NewFloat(val), nil
	case string:
		return NewString(val), nil
	case json.Number:
		if n, err := val.Int64(); err == nil {
			return NewInt(n), nil
		}
		f, err := val.Float64()
		if err != nil {
			return nil, err
		}
		return NewFloat(f), nil
	case []any:
		items := make([]Value, len(val))
		for i, item := range val {
			v, err := FromNative(item)
			if err != nil {
				return nil, err
			}
			items[i] = v
		}
		return NewList(items), nil
	}
	return nil, fmt.Errorf("unsupported native type %T", x)
}

// JSONNative is Native for JSON encoding. Floats become json.Number text
// that always carries a '.' or exponent, so 2.0 stays distinct from 2.
// Non-finite floats become strings.
func JSONNative(v Value) any {
	switch val := v.(type) {
	case Float:
		return jsonFloat(val.Value)
	case List:
		items := make([]any, len(val.Items))
		for i, item := range val.Items {
			items[i] = JSONNative(item)
		}
		return items
	}
	return Native(v)
}

func jsonFloat(f float64) any {
	s := strconv.FormatFloat(f, 'g', -1, 64)
	if math.IsInf(f, 0) || math.IsNaN(f) {
		return s
	}
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

// ToJSON marshals a Value to JSON bytes.
func ToJSON(v Value) ([]byte, error) {
	return json.Marshal(JSONNative(v))
}
