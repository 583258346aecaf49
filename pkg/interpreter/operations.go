package interpreter

import (
	"errors"
	"fmt"

	"phpfk/encoder-go/pkg/runtime"
)

// applyXor implements '^'. Two strings xor byte-wise, truncated to the
// shorter operand; anything else is coerced to integers.
func applyXor(left, right runtime.Value) (runtime.Value, error) {
	if ls, ok := left.(runtime.StringValue); ok {
		if rs, ok := right.(runtime.StringValue); ok {
			return runtime.StringValue{Val: xorStrings(ls.Val, rs.Val)}, nil
		}
	}
	l, err := runtime.ToInt(left)
	if err != nil {
		return nil, unsupportedOperands(left, right, err)
	}
	r, err := runtime.ToInt(right)
	if err != nil {
		return nil, unsupportedOperands(left, right, err)
	}
	return runtime.IntegerValue{Val: l ^ r}, nil
}

func xorStrings(a, b string) string {
	n := min(len(a), len(b))
	out := make([]byte, n)
	for k := 0; k < n; k++ {
		out[k] = a[k] ^ b[k]
	}
	return string(out)
}

func unsupportedOperands(left, right runtime.Value, cause error) error {
	if errors.Is(cause, runtime.ErrNonNumeric) {
		return fmt.Errorf("interpreter: unsupported operand types: %s ^ %s: %w", left.Kind(), right.Kind(), cause)
	}
	return cause
}
