package encoder

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/expr"
)

// IntNode returns an expression evaluating to the integer n.
//
// Digits come straight from the library. Larger values concatenate their
// digit expressions into a numeric string and xor it with zero, which the
// engine coerces back to an integer.
func (e *Encoder) IntNode(n int64) (expr.Node, error) {
	if n < 0 {
		return nil, fmt.Errorf("encoder: %d: %w", n, ErrNegativeInteger)
	}
	if n >= 10 {
		e.log.Debug("integer decomposed", zap.Int64("value", n), zap.Int("digits", len(strconv.FormatInt(n, 10))))
	}
	return e.digitsNode(n)
}

// digitsNode builds the expression for a non-negative n without logging.
func (e *Encoder) digitsNode(n int64) (expr.Node, error) {
	if n < 10 {
		ref, ok := e.lib.Digit(int(n))
		if !ok {
			return nil, fmt.Errorf("encoder: %s: no entry for digit %d", e.profile.Name, n)
		}
		return ref, nil
	}
	digits := strconv.FormatInt(n, 10)
	parts := make([]expr.Node, len(digits))
	for i := 0; i < len(digits); i++ {
		ref, ok := e.lib.Digit(int(digits[i] - '0'))
		if !ok {
			return nil, fmt.Errorf("encoder: %s: no entry for digit %c", e.profile.Name, digits[i])
		}
		parts[i] = ref
	}
	return expr.Xor{Operands: []expr.Node{expr.Concat{Parts: parts}, e.lib.Zero()}}, nil
}

// Int renders IntNode(n).
func (e *Encoder) Int(n int64) (string, error) {
	node, err := e.IntNode(n)
	if err != nil {
		return "", err
	}
	return expr.Render(node), nil
}
