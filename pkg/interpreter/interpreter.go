// Package interpreter evaluates restricted-alphabet expression trees with the
// value semantics of the PHP 8 engine: byte-wise string xor, numeric-string
// coercion, integer literals overflowing to float and case-insensitive
// function names. It exists so encoded output can be checked without a PHP
// binary; the native "evaluate raw code" entry point is injected as a
// CodeEvaluator rather than reimplemented.
package interpreter

import (
	"fmt"
	"strconv"
	"strings"

	"phpfk/encoder-go/pkg/expr"
	"phpfk/encoder-go/pkg/parser"
	"phpfk/encoder-go/pkg/runtime"
)

// CodeEvaluator executes raw program text handed to the native eval entry
// point.
type CodeEvaluator interface {
	EvalString(code string) error
}

// CodeEvaluatorFunc adapts a function to CodeEvaluator.
type CodeEvaluatorFunc func(code string) error

func (f CodeEvaluatorFunc) EvalString(code string) error { return f(code) }

type Options struct {
	// Evaluator backs zend_eval_string on objects returned by FFI::cdef.
	// Without one, FFI::cdef fails.
	Evaluator CodeEvaluator
	// Builtins are added to, or override, the default functions. Keys are
	// matched case-insensitively.
	Builtins map[string]runtime.NativeFunction
}

// Interpreter is safe for concurrent use once constructed.
type Interpreter struct {
	builtins  map[string]runtime.NativeFunction
	evaluator CodeEvaluator
}

func New(opts Options) *Interpreter {
	i := &Interpreter{evaluator: opts.Evaluator}
	i.builtins = i.defaultBuiltins()
	for name, fn := range opts.Builtins {
		i.builtins[strings.ToLower(name)] = fn
	}
	return i
}

// EvalString parses and evaluates src.
func (i *Interpreter) EvalString(src string) (runtime.Value, error) {
	node, err := parser.Parse(src)
	if err != nil {
		return nil, err
	}
	return i.Eval(node)
}

// Eval evaluates node.
func (i *Interpreter) Eval(node expr.Node) (runtime.Value, error) {
	switch n := node.(type) {
	case nil, expr.Empty:
		return runtime.NullValue{}, nil
	case expr.Lit:
		return evalLiteral(n.Text)
	case *expr.Ref:
		return i.Eval(n.Target)
	case expr.Concat:
		var b strings.Builder
		for _, part := range n.Parts {
			val, err := i.Eval(part)
			if err != nil {
				return nil, err
			}
			s, err := runtime.ToString(val)
			if err != nil {
				return nil, err
			}
			b.WriteString(s)
		}
		return runtime.StringValue{Val: b.String()}, nil
	case expr.Xor:
		if len(n.Operands) == 0 {
			return nil, fmt.Errorf("interpreter: xor without operands")
		}
		acc, err := i.Eval(n.Operands[0])
		if err != nil {
			return nil, err
		}
		for _, op := range n.Operands[1:] {
			right, err := i.Eval(op)
			if err != nil {
				return nil, err
			}
			acc, err = applyXor(acc, right)
			if err != nil {
				return nil, err
			}
		}
		return acc, nil
	case expr.Call:
		callee, err := i.Eval(n.Callee)
		if err != nil {
			return nil, err
		}
		args, err := i.evalArgs(n.Args)
		if err != nil {
			return nil, err
		}
		return i.Call(callee, args)
	case expr.Spread:
		return nil, fmt.Errorf("interpreter: argument unpacking outside a call")
	default:
		return nil, fmt.Errorf("interpreter: unsupported node %s", node.Kind())
	}
}

func (i *Interpreter) evalArgs(nodes []expr.Node) ([]runtime.Value, error) {
	args := make([]runtime.Value, 0, len(nodes))
	for _, node := range nodes {
		if spread, ok := node.(expr.Spread); ok {
			val, err := i.Eval(spread.X)
			if err != nil {
				return nil, err
			}
			arr, ok := val.(*runtime.ArrayValue)
			if !ok {
				return nil, fmt.Errorf("interpreter: only arrays can be unpacked, got %s", val.Kind())
			}
			args = append(args, arr.Elements...)
			continue
		}
		val, err := i.Eval(node)
		if err != nil {
			return nil, err
		}
		args = append(args, val)
	}
	return args, nil
}

// Call invokes a callable value: a function name, a native function, or a
// two-element [object, method] array.
func (i *Interpreter) Call(callee runtime.Value, args []runtime.Value) (runtime.Value, error) {
	var fn runtime.NativeFunction
	switch c := callee.(type) {
	case runtime.StringValue:
		found, ok := i.builtins[strings.ToLower(c.Val)]
		if !ok {
			return nil, fmt.Errorf("interpreter: call to undefined function %s()", c.Val)
		}
		fn = found
	case runtime.NativeFunction:
		fn = c
	case *runtime.ArrayValue:
		method, err := boundMethod(c)
		if err != nil {
			return nil, err
		}
		fn = method
	default:
		return nil, fmt.Errorf("interpreter: value of type %s is not callable", callee.Kind())
	}
	if fn.Arity >= 0 && len(args) < fn.Arity {
		return nil, fmt.Errorf("interpreter: too few arguments to function %s(), %d passed and at least %d expected", fn.Name, len(args), fn.Arity)
	}
	return fn.Impl(args)
}

func boundMethod(arr *runtime.ArrayValue) (runtime.NativeFunction, error) {
	if len(arr.Elements) != 2 {
		return runtime.NativeFunction{}, fmt.Errorf("interpreter: array callback must have exactly two elements")
	}
	obj, ok := arr.Elements[0].(*runtime.ObjectValue)
	if !ok {
		return runtime.NativeFunction{}, fmt.Errorf("interpreter: array callback must start with an object, got %s", arr.Elements[0].Kind())
	}
	name, ok := arr.Elements[1].(runtime.StringValue)
	if !ok {
		return runtime.NativeFunction{}, fmt.Errorf("interpreter: array callback method must be a string")
	}
	method, ok := obj.Method(name.Val)
	if !ok {
		return runtime.NativeFunction{}, fmt.Errorf("interpreter: call to undefined method %s::%s()", obj.Class, name.Val)
	}
	return method, nil
}

func evalLiteral(text string) (runtime.Value, error) {
	if strings.ContainsAny(text, ".eE") {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, fmt.Errorf("interpreter: invalid numeric literal %q", text)
		}
		return runtime.FloatValue{Val: f}, nil
	}
	if len(text) > 1 && text[0] == '0' {
		n, err := strconv.ParseInt(text[1:], 8, 64)
		if err != nil {
			return nil, fmt.Errorf("interpreter: invalid numeric literal %q", text)
		}
		return runtime.IntegerValue{Val: n}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err == nil {
		return runtime.IntegerValue{Val: n}, nil
	}
	// Integer literals too large for int64 become floats, possibly INF.
	f, _ := strconv.ParseFloat(text, 64)
	return runtime.FloatValue{Val: f}, nil
}
