package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrNonNumeric reports a string with no leading number used where a number
// is required.
var ErrNonNumeric = errors.New("non-numeric value")

// ToString converts v the way string concatenation does.
func ToString(v Value) (string, error) {
	switch v := v.(type) {
	case nil, NullValue:
		return "", nil
	case BoolValue:
		if v.Val {
			return "1", nil
		}
		return "", nil
	case IntegerValue:
		return strconv.FormatInt(v.Val, 10), nil
	case FloatValue:
		return FormatFloat(v.Val), nil
	case StringValue:
		return v.Val, nil
	case *ArrayValue:
		return "Array", nil
	case *ObjectValue:
		return "", fmt.Errorf("object of class %s could not be converted to string", v.Class)
	default:
		return "", fmt.Errorf("%s could not be converted to string", v.Kind())
	}
}

// ToInt converts v the way the integer operators do.
func ToInt(v Value) (int64, error) {
	switch v := v.(type) {
	case nil, NullValue:
		return 0, nil
	case BoolValue:
		if v.Val {
			return 1, nil
		}
		return 0, nil
	case IntegerValue:
		return v.Val, nil
	case FloatValue:
		return FloatToInt(v.Val), nil
	case StringValue:
		num, _, ok := ParseNumericPrefix(v.Val)
		if !ok {
			return 0, fmt.Errorf("%q: %w", v.Val, ErrNonNumeric)
		}
		return ToInt(num)
	default:
		return 0, fmt.Errorf("%s: %w", v.Kind(), ErrNonNumeric)
	}
}

// FloatToInt truncates toward zero; NaN, infinities and out-of-range values
// become 0.
func FloatToInt(f float64) int64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f >= math.MaxInt64 || f < math.MinInt64 {
		return 0
	}
	return int64(f)
}

// FormatFloat renders f with 14 significant digits, the default precision
// used for string conversion.
func FormatFloat(f float64) string {
	switch {
	case math.IsInf(f, 1):
		return "INF"
	case math.IsInf(f, -1):
		return "-INF"
	case math.IsNaN(f):
		return "NAN"
	case f == 0:
		if math.Signbit(f) {
			return "-0"
		}
		return "0"
	}
	s := strconv.FormatFloat(f, 'G', 14, 64)
	mant, exp, ok := strings.Cut(s, "E")
	if !ok {
		return s
	}
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	sign, digits := exp[:1], strings.TrimLeft(exp[1:], "0")
	if digits == "" {
		digits = "0"
	}
	return mant + "E" + sign + digits
}

// ParseNumericPrefix reads the leading number of s. whole reports whether
// nothing but trailing whitespace follows it; ok is false when s does not
// start with a number at all.
func ParseNumericPrefix(s string) (num Value, whole bool, ok bool) {
	i := 0
	for i < len(s) && isSpace(s[i]) {
		i++
	}
	start := i
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	isFloat := false
	if i < len(s) && s[i] == '.' {
		j := i + 1
		frac := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			frac++
		}
		if digits+frac > 0 {
			i = j
			digits += frac
			isFloat = true
		}
	}
	if digits == 0 {
		return nil, false, false
	}
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		expDigits := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			expDigits++
		}
		if expDigits > 0 {
			i = j
			isFloat = true
		}
	}
	text := s[start:i]
	rest := i
	for rest < len(s) && isSpace(s[rest]) {
		rest++
	}
	whole = rest == len(s)
	if !isFloat {
		if n, err := strconv.ParseInt(text, 10, 64); err == nil {
			return IntegerValue{Val: n}, whole, true
		}
	}
	f, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return nil, false, false
	}
	return FloatValue{Val: f}, whole, true
}

func isDigit(c byte) bool { return c >= '0' && c <= '9' }

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
