// Package expr models restricted-alphabet expressions as a small tagged tree.
// Nodes render to PHP expression text; every composite node owns its
// parentheses so that rendered fragments can be spliced into any operand
// position without precedence surprises.
package expr

import (
	"fmt"
	"strings"
)

// Kind identifies the node variant.
type Kind int

const (
	KindEmpty Kind = iota
	KindLit
	KindConcat
	KindXor
	KindCall
	KindSpread
	KindRef
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "empty"
	case KindLit:
		return "lit"
	case KindConcat:
		return "concat"
	case KindXor:
		return "xor"
	case KindCall:
		return "call"
	case KindSpread:
		return "spread"
	case KindRef:
		return "ref"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Node is the shared behaviour for all expression nodes.
type Node interface {
	Kind() Kind
}

// Empty renders as nothing. It only appears as a whole expression.
type Empty struct{}

func (Empty) Kind() Kind { return KindEmpty }

// Lit is a numeric literal written verbatim, e.g. "9" or "99".
type Lit struct {
	Text string
}

func (Lit) Kind() Kind { return KindLit }

// Concat joins its parts with the string concatenation operator.
type Concat struct {
	Parts []Node
}

func (Concat) Kind() Kind { return KindConcat }

// Xor left-folds its operands with the xor operator.
type Xor struct {
	Operands []Node
}

func (Xor) Kind() Kind { return KindXor }

// Call invokes Callee with Args. Callee is usually an expression producing a
// function name.
type Call struct {
	Callee Node
	Args   []Node
}

func (Call) Kind() Kind { return KindCall }

// Spread unpacks an array into call arguments.
type Spread struct {
	X Node
}

func (Spread) Kind() Kind { return KindSpread }

// Ref names a memoised table entry. Rendering a Ref writes the text cached
// when the entry was created.
type Ref struct {
	Name   string
	Target Node
	text   string
}

// NewRef wraps target under name and caches its rendering.
func NewRef(name string, target Node) *Ref {
	return &Ref{Name: name, Target: target, text: Render(target)}
}

func (*Ref) Kind() Kind { return KindRef }

// Text returns the cached rendering of the referenced node.
func (r *Ref) Text() string {
	if r == nil {
		return ""
	}
	if r.text == "" && r.Target != nil {
		return Render(r.Target)
	}
	return r.text
}

// Render returns the expression text for n.
func Render(n Node) string {
	var b strings.Builder
	write(&b, n)
	return b.String()
}

// WriteTo renders n into b.
func WriteTo(b *strings.Builder, n Node) {
	write(b, n)
}

func write(b *strings.Builder, n Node) {
	switch n := n.(type) {
	case nil, Empty:
	case Lit:
		b.WriteString(n.Text)
	case *Ref:
		b.WriteString(n.Text())
	case Concat:
		b.WriteByte('(')
		for i, part := range n.Parts {
			if i > 0 {
				b.WriteByte('.')
			}
			// "9.9" would lex as a float literal.
			if isLit(part) {
				b.WriteByte('(')
				write(b, part)
				b.WriteByte(')')
				continue
			}
			write(b, part)
		}
		b.WriteByte(')')
	case Xor:
		b.WriteByte('(')
		for i, op := range n.Operands {
			if i > 0 {
				b.WriteByte('^')
			}
			write(b, op)
		}
		b.WriteByte(')')
	case Call:
		b.WriteByte('(')
		write(b, n.Callee)
		b.WriteString(")(")
		for i, arg := range n.Args {
			if i > 0 {
				b.WriteByte(',')
			}
			write(b, arg)
		}
		b.WriteByte(')')
	case Spread:
		b.WriteString("...")
		write(b, n.X)
	}
}

func isLit(n Node) bool {
	for {
		switch v := n.(type) {
		case Lit:
			return true
		case *Ref:
			n = v.Target
		default:
			return false
		}
	}
}

// Walk visits n and its children in pre-order. Ref targets are not entered;
// a Ref is a leaf from the point of view of the tree that mentions it.
// Returning false from visit skips the children of that node.
func Walk(n Node, visit func(Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	switch n := n.(type) {
	case Concat:
		for _, part := range n.Parts {
			Walk(part, visit)
		}
	case Xor:
		for _, op := range n.Operands {
			Walk(op, visit)
		}
	case Call:
		Walk(n.Callee, visit)
		for _, arg := range n.Args {
			Walk(arg, visit)
		}
	case Spread:
		Walk(n.X, visit)
	}
}

// Refs returns the references mentioned directly by n, in visit order.
func Refs(n Node) []*Ref {
	var refs []*Ref
	Walk(n, func(node Node) bool {
		if ref, ok := node.(*Ref); ok {
			refs = append(refs, ref)
		}
		return true
	})
	return refs
}
