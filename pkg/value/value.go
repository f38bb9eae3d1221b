// Package value defines the dynamically typed argument values produced by the
// call parser.
package value

// Value is the interface for all argument values.
// Use the sealed marker method to restrict implementations to this package.
type Value interface {
	Kind() Kind
	value() // sealed marker
}

// Kind identifies the dynamic type of a Value.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindRef
)

var kindNames = [...]string{
	KindNull:   "null",
	KindBool:   "bool",
	KindInt:    "int",
	KindFloat:  "float",
	KindString: "string",
	KindList:   "list",
	KindRef:    "ref",
}

func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return "unknown"
	}
	return kindNames[k]
}

// Null represents a null value.
type Null struct{}

func (Null) Kind() Kind { return KindNull }
func (Null) value()     {}

// Bool represents a boolean value.
type Bool struct {
	Value bool
}

func (Bool) Kind() Kind { return KindBool }
func (Bool) value()     {}

// Int represents an integer value.
type Int struct {
	Value int64
}

func (Int) Kind() Kind { return KindInt }
func (Int) value()     {}

// Float represents a floating point value.
type Float struct {
	Value float64
}

func (Float) Kind() Kind { return KindFloat }
func (Float) value()     {}

// String represents a string value.
type String struct {
	Value string
}

func (String) Kind() Kind { return KindString }
func (String) value()     {}

// List represents an ordered list of values.
type List struct {
	Items []Value
}

func (List) Kind() Kind { return KindList }
func (List) value()     {}

// Ref is a dotted identifier reference such as a.b. It is never resolved;
// callers see it as its dotted text.
type Ref struct {
	Path string
}

func (Ref) Kind() Kind { return KindRef }
func (Ref) value()     {}

// NewNull creates a null value.
func NewNull() Value {
	return Null{}
}

// NewBool creates a boolean value.
func NewBool(b bool) Value {
	return Bool{Value: b}
}

// NewInt creates an integer value.
func NewInt(n int64) Value {
	return Int{Value: n}
}

// NewFloat creates a float value.
func NewFloat(f float64) Value {
	return Float{Value: f}
}

// NewString creates a string value.
func NewString(s string) Value {
	return String{Value: s}
}

// NewList creates a list value.
func NewList(items []Value) Value {
	return List{Items: items}
}

// NewRef creates a dotted reference value.
func NewRef(path string) Value {
	return Ref{Path: path}
}

// Equal reports whether a and b have the same kind and contents.
// Int and Float never compare equal to each other.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av.Value == b.(Bool).Value
	case Int:
		return av.Value == b.(Int).Value
	case Float:
		return av.Value == b.(Float).Value
	case String:
		return av.Value == b.(String).Value
	case Ref:
		return av.Path == b.(Ref).Path
	case List:
		bl := b.(List)
		if len(av.Items) != len(bl.Items) {
			return false
		}
		for i := range av.Items {
			if !Equal(av.Items[i], bl.Items[i]) {
				return false
			}
		}
		return true
	}
	return false
}

// Clone returns a deep copy of v. Only lists carry shared state.
func Clone(v Value) Value {
	l, ok := v.(List)
	if !ok {
		return v
	}
	items := make([]Value, len(l.Items))
	for i, item := range l.Items {
		items[i] = Clone(item)
	}
	return List{Items: items}
}
