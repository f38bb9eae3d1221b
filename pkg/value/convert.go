package value

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/agilira/go-errors"
)

// ErrCodeConvert is the go-errors code of failed lenient conversions.
const ErrCodeConvert = "FNCALL_CONVERT"

var (
	trueWords  = map[string]bool{"1": true, "t": true, "true": true, "yes": true, "on": true, "y": true}
	falseWords = map[string]bool{"0": true, "f": true, "false": true, "no": true, "off": true, "n": true}
)

func convertError(v Value, target string) error {
	return errors.New(ErrCodeConvert, fmt.Sprintf("cannot convert %s %v to %s", v.Kind(), Native(v), target))
}

// ToBool interprets v as a boolean. Integers 1/0 and the case-insensitive
// words 1,t,true,yes,on,y / 0,f,false,no,off,n are accepted.
func ToBool(v Value) (bool, error) {
	switch val := v.(type) {
	case Bool:
		return val.Value, nil
	case Int:
		switch val.Value {
		case 1:
			return true, nil
		case 0:
			return false, nil
		}
	case String:
		s := strings.ToLower(strings.TrimSpace(val.Value))
		if trueWords[s] {
			return true, nil
		}
		if falseWords[s] {
			return false, nil
		}
	}
	return false, convertError(v, "bool")
}

// ToInt interprets v as an integer. Strings may carry 0x, 0b or 0o prefixes;
// floats are truncated toward zero.
func ToInt(v Value) (int64, error) {
	switch val := v.(type) {
	case Int:
		return val.Value, nil
	case Bool:
		if val.Value {
			return 1, nil
		}
		return 0, nil
	case Float:
		if math.IsNaN(val.Value) || math.IsInf(val.Value, 0) {
			return 0, convertError(v, "int")
		}
		return int64(val.Value), nil
	case String:
		s := strings.TrimSpace(val.Value)
		base := 10
		if strings.ContainsAny(strings.ToLower(s), "xbo") {
			base = 0
		}
		n, err := strconv.ParseInt(s, base, 64)
		if err != nil {
			return 0, errors.Wrap(err, ErrCodeConvert, fmt.Sprintf("cannot convert string %q to int", val.Value))
		}
		return n, nil
	}
	return 0, convertError(v, "int")
}

// ToFloat interprets v as a number. Strings go through ParseNumber.
func ToFloat(v Value) (float64, error) {
	switch val := v.(type) {
	case Int:
		return float64(val.Value), nil
	case Float:
		return val.Value, nil
	case String:
		return ParseNumber(val.Value)
	}
	return 0, convertError(v, "float")
}

// ParseNumber parses a human-written number with optional digit grouping:
// "123 456.78", "123,456.789", "123.456,82" and "123456,22" are all valid.
func ParseNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	spaces := strings.Count(s, " ")
	commas := strings.Count(s, ",")
	dots := strings.Count(s, ".")

	var norm string
	switch {
	case spaces > 0:
		norm = strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), ",", ".")
	case commas > 1:
		norm = strings.ReplaceAll(s, ",", "")
	case commas == 1 && commas <= dots:
		if strings.Index(s, ",") < strings.Index(s, ".") {
			norm = strings.ReplaceAll(s, ",", "")
		} else {
			norm = strings.ReplaceAll(strings.ReplaceAll(s, ".", ""), ",", ".")
		}
	default:
		norm = strings.ReplaceAll(s, ",", ".")
	}

	f, err := strconv.ParseFloat(norm, 64)
	if err != nil {
		return 0, errors.Wrap(err, ErrCodeConvert, fmt.Sprintf("cannot parse number %q", s))
	}
	return f, nil
}
