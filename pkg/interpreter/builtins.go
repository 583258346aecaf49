package interpreter

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"

	"phpfk/encoder-go/pkg/runtime"
)

// EvalEntryPoint is the native function FFI::cdef can bind to the injected
// CodeEvaluator.
const EvalEntryPoint = "zend_eval_string"

func (i *Interpreter) defaultBuiltins() map[string]runtime.NativeFunction {
	fns := []runtime.NativeFunction{
		{Name: "chr", Arity: 1, Impl: builtinChr},
		{Name: "ord", Arity: 1, Impl: builtinOrd},
		{Name: "strval", Arity: 1, Impl: builtinStrval},
		{Name: "intval", Arity: 1, Impl: builtinIntval},
		{Name: "json_encode", Arity: 1, Impl: builtinJSONEncode},
		{Name: "json_decode", Arity: 1, Impl: builtinJSONDecode},
		{Name: "array_map", Arity: 2, Impl: i.builtinArrayMap},
		{Name: "call_user_func", Arity: 1, Impl: i.builtinCallUserFunc},
		{Name: "FFI::cdef", Arity: 0, Impl: i.builtinFFICdef},
	}
	out := make(map[string]runtime.NativeFunction, len(fns))
	for _, fn := range fns {
		out[strings.ToLower(fn.Name)] = fn
	}
	return out
}

func builtinChr(args []runtime.Value) (runtime.Value, error) {
	n, err := runtime.ToInt(args[0])
	if err != nil {
		return nil, fmt.Errorf("interpreter: chr(): %w", err)
	}
	return runtime.StringValue{Val: string([]byte{byte(((n % 256) + 256) % 256)})}, nil
}

func builtinOrd(args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.ToString(args[0])
	if err != nil {
		return nil, err
	}
	if s == "" {
		return runtime.IntegerValue{Val: 0}, nil
	}
	return runtime.IntegerValue{Val: int64(s[0])}, nil
}

func builtinStrval(args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.ToString(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.StringValue{Val: s}, nil
}

func builtinIntval(args []runtime.Value) (runtime.Value, error) {
	if s, ok := args[0].(runtime.StringValue); ok {
		num, _, ok := runtime.ParseNumericPrefix(s.Val)
		if !ok {
			return runtime.IntegerValue{Val: 0}, nil
		}
		n, _ := runtime.ToInt(num)
		return runtime.IntegerValue{Val: n}, nil
	}
	n, err := runtime.ToInt(args[0])
	if err != nil {
		return nil, err
	}
	return runtime.IntegerValue{Val: n}, nil
}

// builtinJSONEncode follows the engine's default flags: slashes and non-ASCII
// characters are escaped, and invalid UTF-8 makes the call return false.
func builtinJSONEncode(args []runtime.Value) (runtime.Value, error) {
	var b strings.Builder
	if !encodeJSON(&b, args[0]) {
		return runtime.BoolValue{Val: false}, nil
	}
	return runtime.StringValue{Val: b.String()}, nil
}

func encodeJSON(b *strings.Builder, v runtime.Value) bool {
	switch v := v.(type) {
	case nil, runtime.NullValue:
		b.WriteString("null")
	case runtime.BoolValue:
		b.WriteString(strconv.FormatBool(v.Val))
	case runtime.IntegerValue:
		b.WriteString(strconv.FormatInt(v.Val, 10))
	case runtime.FloatValue:
		if math.IsInf(v.Val, 0) || math.IsNaN(v.Val) {
			return false
		}
		s := strconv.FormatFloat(v.Val, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		b.WriteString(s)
	case runtime.StringValue:
		return encodeJSONString(b, v.Val)
	case *runtime.ArrayValue:
		b.WriteByte('[')
		for k, elem := range v.Elements {
			if k > 0 {
				b.WriteByte(',')
			}
			if !encodeJSON(b, elem) {
				return false
			}
		}
		b.WriteByte(']')
	default:
		return false
	}
	return true
}

func encodeJSONString(b *strings.Builder, s string) bool {
	if !utf8.ValidString(s) {
		return false
	}
	b.WriteByte('"')
	for _, r := range s {
		switch r {
		case '"':
			b.WriteString(`\"`)
		case '\\':
			b.WriteString(`\\`)
		case '/':
			b.WriteString(`\/`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		default:
			switch {
			case r < 0x20:
				fmt.Fprintf(b, `\u%04x`, r)
			case r < utf8.RuneSelf:
				b.WriteRune(r)
			case r > 0xffff:
				hi, lo := utf16.EncodeRune(r)
				fmt.Fprintf(b, `\u%04x\u%04x`, hi, lo)
			default:
				fmt.Fprintf(b, `\u%04x`, r)
			}
		}
	}
	b.WriteByte('"')
	return true
}

// builtinJSONDecode returns null for malformed input. Objects decode to
// opaque stdClass values.
func builtinJSONDecode(args []runtime.Value) (runtime.Value, error) {
	s, err := runtime.ToString(args[0])
	if err != nil {
		return nil, err
	}
	dec := json.NewDecoder(strings.NewReader(s))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return runtime.NullValue{}, nil
	}
	if _, err := dec.Token(); err != io.EOF {
		return runtime.NullValue{}, nil
	}
	return fromJSON(raw), nil
}

func fromJSON(raw any) runtime.Value {
	switch v := raw.(type) {
	case nil:
		return runtime.NullValue{}
	case bool:
		return runtime.BoolValue{Val: v}
	case json.Number:
		if n, err := v.Int64(); err == nil {
			return runtime.IntegerValue{Val: n}
		}
		f, _ := v.Float64()
		return runtime.FloatValue{Val: f}
	case string:
		return runtime.StringValue{Val: v}
	case []any:
		elems := make([]runtime.Value, 0, len(v))
		for _, elem := range v {
			elems = append(elems, fromJSON(elem))
		}
		return &runtime.ArrayValue{Elements: elems}
	default:
		return &runtime.ObjectValue{Class: "stdClass"}
	}
}

func (i *Interpreter) builtinArrayMap(args []runtime.Value) (runtime.Value, error) {
	callback := args[0]
	arrays := make([]*runtime.ArrayValue, 0, len(args)-1)
	longest := 0
	for k, arg := range args[1:] {
		arr, ok := arg.(*runtime.ArrayValue)
		if !ok {
			return nil, fmt.Errorf("interpreter: array_map(): argument #%d must be of type array, %s given", k+2, arg.Kind())
		}
		arrays = append(arrays, arr)
		longest = max(longest, len(arr.Elements))
	}
	out := make([]runtime.Value, 0, longest)
	for idx := 0; idx < longest; idx++ {
		callArgs := make([]runtime.Value, len(arrays))
		for k, arr := range arrays {
			if idx < len(arr.Elements) {
				callArgs[k] = arr.Elements[idx]
			} else {
				callArgs[k] = runtime.NullValue{}
			}
		}
		if _, isNull := callback.(runtime.NullValue); isNull {
			out = append(out, &runtime.ArrayValue{Elements: callArgs})
			continue
		}
		result, err := i.Call(callback, callArgs)
		if err != nil {
			return nil, err
		}
		out = append(out, result)
	}
	return &runtime.ArrayValue{Elements: out}, nil
}

func (i *Interpreter) builtinCallUserFunc(args []runtime.Value) (runtime.Value, error) {
	return i.Call(args[0], args[1:])
}

var cdefFunction = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*\(`)

// builtinFFICdef returns an object exposing the functions declared in its
// first argument. Only EvalEntryPoint is backed, by the injected evaluator.
func (i *Interpreter) builtinFFICdef(args []runtime.Value) (runtime.Value, error) {
	if i.evaluator == nil {
		return nil, fmt.Errorf("interpreter: FFI::cdef(): no code evaluator configured")
	}
	decls := ""
	if len(args) > 0 {
		s, err := runtime.ToString(args[0])
		if err != nil {
			return nil, err
		}
		decls = s
	}
	obj := &runtime.ObjectValue{Class: "FFI", Methods: make(map[string]runtime.NativeFunction)}
	for _, decl := range strings.Split(decls, ";") {
		match := cdefFunction.FindStringSubmatch(decl)
		if match == nil {
			continue
		}
		name := match[1]
		if name != EvalEntryPoint {
			obj.Methods[strings.ToLower(name)] = runtime.NativeFunction{
				Name:  name,
				Arity: -1,
				Impl: func([]runtime.Value) (runtime.Value, error) {
					return nil, fmt.Errorf("interpreter: FFI symbol %s is not available", name)
				},
			}
			continue
		}
		obj.Methods[strings.ToLower(name)] = runtime.NativeFunction{
			Name:  name,
			Arity: 1,
			Impl: func(args []runtime.Value) (runtime.Value, error) {
				code, err := runtime.ToString(args[0])
				if err != nil {
					return nil, err
				}
				if err := i.evaluator.EvalString(code); err != nil {
					return nil, fmt.Errorf("interpreter: %s: %w", EvalEntryPoint, err)
				}
				return runtime.IntegerValue{Val: 0}, nil
			},
		}
	}
	return obj, nil
}
