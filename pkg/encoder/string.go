package encoder

import (
	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/expr"
)

// StringNode returns an expression evaluating to s byte for byte. The empty
// string encodes as expr.Empty.
func (e *Encoder) StringNode(s string) (expr.Node, error) {
	if s == "" {
		return expr.Empty{}, nil
	}
	parts := make([]expr.Node, 0, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if ref, ok := e.lib.Char(c); ok {
			parts = append(parts, ref)
			continue
		}
		node := e.bytes[c]
		if node == nil {
			return nil, &UnsupportedCharError{Char: c, Offset: i}
		}
		e.log.Debug("char fallback", zap.Uint8("byte", c))
		parts = append(parts, node)
	}
	if len(parts) == 1 {
		return parts[0], nil
	}
	return expr.Concat{Parts: parts}, nil
}

// String renders StringNode(s).
func (e *Encoder) String(s string) (string, error) {
	node, err := e.StringNode(s)
	if err != nil {
		return "", err
	}
	return expr.Render(node), nil
}

// Supports reports whether every byte of s can be encoded.
func (e *Encoder) Supports(s string) bool {
	for i := 0; i < len(s); i++ {
		if e.bytes[s[i]] == nil {
			return false
		}
	}
	return true
}
