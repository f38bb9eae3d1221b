package value

import (
	"math"
	"testing"

	goerrors "github.com/agilira/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindString(t *testing.T) {
	assert.Equal(t, "null", KindNull.String())
	assert.Equal(t, "ref", KindRef.String())
	assert.Equal(t, "unknown", Kind(99).String())
}

func TestEqual(t *testing.T) {
	list := NewList([]Value{NewInt(1), NewString("a"), NewList([]Value{NewNull()})})
	same := NewList([]Value{NewInt(1), NewString("a"), NewList([]Value{NewNull()})})
	other := NewList([]Value{NewInt(1), NewString("b"), NewList([]Value{NewNull()})})

	assert.True(t, Equal(list, same))
	assert.False(t, Equal(list, other))
	assert.False(t, Equal(NewInt(1), NewFloat(1)), "int and float are distinct kinds")
	assert.False(t, Equal(NewString("a.b"), NewRef("a.b")))
	assert.True(t, Equal(NewRef("a.b"), NewRef("a.b")))
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(nil, NewNull()))
}

func TestCloneIsDeep(t *testing.T) {
	inner := []Value{NewInt(1)}
	orig := NewList([]Value{NewList(inner)})
	cp := Clone(orig)
	inner[0] = NewInt(2)

	got := cp.(List).Items[0].(List).Items[0]
	assert.True(t, Equal(got, NewInt(1)))
}

func TestNative(t *testing.T) {
	v := NewList([]Value{
		NewNull(), NewBool(true), NewInt(3), NewFloat(1.5), NewString("s"), NewRef("a.b"),
	})
	assert.Equal(t, []any{nil, true, int64(3), 1.5, "s", "a.b"}, Native(v))
}

func TestFromNativeRoundTrip(t *testing.T) {
	in := []any{nil, true, 3, int64(4), 1.5, "s", []any{1, "x"}}
	v, err := FromNative(in)
	require.NoError(t, err)

	want := NewList([]Value{
		NewNull(), NewBool(true), NewInt(3), NewInt(4), NewFloat(1.5), NewString("s"),
		NewList([]Value{NewInt(1), NewString("x")}),
	})
	assert.True(t, Equal(want, v))

	_, err = FromNative(map[string]any{})
	assert.Error(t, err)
}

func TestToJSON(t *testing.T) {
	b, err := ToJSON(NewList([]Value{NewInt(1), NewString("x"), NewNull(), NewRef("a.b")}))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,"x",null,"a.b"]`, string(b))
}

func TestToJSONKeepsFloatKind(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{NewFloat(2), `2.0`},
		{NewInt(2), `2`},
		{NewFloat(-0.5), `-0.5`},
		{NewFloat(1e21), `1e+21`},
		{NewFloat(math.Inf(1)), `"+Inf"`},
		{NewList([]Value{NewInt(1), NewFloat(1)}), `[1,1.0]`},
	}
	for _, tt := range tests {
		b, err := ToJSON(tt.v)
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(b))
	}
}

func TestToBool(t *testing.T) {
	for _, s := range []string{"True", "true", "Yes", "on", "y", "t", "1"} {
		b, err := ToBool(NewString(s))
		require.NoError(t, err, s)
		assert.True(t, b, s)
	}
	for _, s := range []string{"False", "false", "no", "OFF", "n", "f", "0"} {
		b, err := ToBool(NewString(s))
		require.NoError(t, err, s)
		assert.False(t, b, s)
	}
	for _, s := range []string{"Falsex", "falsex", "ano", "xOFF", "z"} {
		_, err := ToBool(NewString(s))
		assert.Error(t, err, s)
	}

	b, err := ToBool(NewInt(1))
	require.NoError(t, err)
	assert.True(t, b)
	b, err = ToBool(NewBool(false))
	require.NoError(t, err)
	assert.False(t, b)

	_, err = ToBool(NewInt(2))
	assert.Error(t, err)
	_, err = ToBool(NewNull())
	require.Error(t, err)

	coder, ok := err.(goerrors.ErrorCoder)
	require.True(t, ok)
	assert.Equal(t, ErrCodeConvert, string(coder.ErrorCode()))
}

func TestToInt(t *testing.T) {
	tests := []struct {
		in   Value
		want int64
	}{
		{NewInt(20), 20},
		{NewString("20"), 20},
		{NewString("0xFF"), 255},
		{NewString("0b11101"), 29},
		{NewString("0o17"), 15},
		{NewString("010"), 10},
		{NewFloat(3.9), 3},
		{NewBool(true), 1},
	}
	for _, tt := range tests {
		got, err := ToInt(tt.in)
		require.NoError(t, err, "%v", Native(tt.in))
		assert.Equal(t, tt.want, got)
	}

	for _, bad := range []Value{NewString("0xFZ"), NewString("0b12345"), NewString("abc"), NewNull()} {
		_, err := ToInt(bad)
		assert.Error(t, err, "%v", Native(bad))
	}
}

func TestParseNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"123.45", 123.45},
		{" 123 456.78", 123456.78},
		{"123 456.789", 123456.789},
		{" 123,456,789.222", 123456789.222},
		{"123.456.789,222", 123456789.222},
		{"123456789,22", 123456789.22},
	}

	for _, tt := range tests {
		got, err := ParseNumber(tt.in)
		require.NoError(t, err, tt.in)
		assert.InDelta(t, tt.want, got, 1e-9, tt.in)

		neg, err := ParseNumber("-" + trimSpace(tt.in))
		require.NoError(t, err, tt.in)
		assert.InDelta(t, -tt.want, neg, 1e-9, tt.in)
	}

	_, err := ParseNumber("twelve")
	assert.Error(t, err)
}

func TestToFloat(t *testing.T) {
	f, err := ToFloat(NewInt(2))
	require.NoError(t, err)
	assert.Equal(t, 2.0, f)

	f, err = ToFloat(NewString("1,5"))
	require.NoError(t, err)
	assert.Equal(t, 1.5, f)

	_, err = ToFloat(NewList(nil))
	assert.Error(t, err)
}

func trimSpace(s string) string {
	for len(s) > 0 && s[0] == ' ' {
		s = s[1:]
	}
	return s
}
