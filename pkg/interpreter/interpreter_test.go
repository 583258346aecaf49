package interpreter

import (
	"errors"
	"strings"
	"testing"

	"phpfk/encoder-go/pkg/runtime"
)

func mustEval(t *testing.T, interp *Interpreter, src string) runtime.Value {
	t.Helper()
	val, err := interp.EvalString(src)
	if err != nil {
		t.Fatalf("EvalString(%q) returned error: %v", src, err)
	}
	return val
}

func assertString(t *testing.T, val runtime.Value, want string) {
	t.Helper()
	s, ok := val.(runtime.StringValue)
	if !ok {
		t.Fatalf("expected string %q, got %#v", want, val)
	}
	if s.Val != want {
		t.Fatalf("string = %q, want %q", s.Val, want)
	}
}

func assertInt(t *testing.T, val runtime.Value, want int64) {
	t.Helper()
	n, ok := val.(runtime.IntegerValue)
	if !ok {
		t.Fatalf("expected int %d, got %#v", want, val)
	}
	if n.Val != want {
		t.Fatalf("int = %d, want %d", n.Val, want)
	}
}

func TestLiteralsAndConcat(t *testing.T) {
	interp := New(Options{})
	assertInt(t, mustEval(t, interp, "99"), 99)
	assertString(t, mustEval(t, interp, "(9).(9)"), "99")
	assertString(t, mustEval(t, interp, "(9.9).(9)"), "9.99")
	inf := "(" + strings.Repeat("9", 309) + ").(9)"
	assertString(t, mustEval(t, interp, inf), "INF9")
}

func TestXorSemantics(t *testing.T) {
	interp := New(Options{})
	assertInt(t, mustEval(t, interp, "9^9"), 0)
	assertInt(t, mustEval(t, interp, "9^99"), 106)
	// string ^ int coerces the string.
	assertInt(t, mustEval(t, interp, "9^((9).(9^9))"), 83)
	// string ^ string truncates to the shorter operand.
	assertString(t, mustEval(t, interp, "((9).(9))^((9).(9).(9))"), "\x00\x00")
	assertString(t, mustEval(t, interp, "((9^9).(9))^((9^99).(9))^((9).(9))"), "80")
}

func TestXorRejectsNonNumericStrings(t *testing.T) {
	interp := New(Options{})
	_, err := interp.EvalString("(((9).(9))^((9).(9)))^9")
	if !errors.Is(err, runtime.ErrNonNumeric) {
		t.Fatalf("expected ErrNonNumeric, got %v", err)
	}
}

func TestOctalLiteral(t *testing.T) {
	interp := New(Options{})
	if _, err := interp.EvalString("099"); err == nil {
		t.Fatalf("expected invalid octal literal error")
	}
}

func TestCallByComputedName(t *testing.T) {
	interp := New(Options{Builtins: map[string]runtime.NativeFunction{
		"99": {Name: "99", Arity: 1, Impl: func(args []runtime.Value) (runtime.Value, error) {
			return args[0], nil
		}},
	}})
	assertInt(t, mustEval(t, interp, "((9).(9))(9)"), 9)
	if _, err := interp.EvalString("((9).(9).(9))(9)"); err == nil || !strings.Contains(err.Error(), "undefined function 999()") {
		t.Fatalf("expected undefined function error, got %v", err)
	}
}

func TestBuiltinsByName(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Call(runtime.StringValue{Val: "CHr"}, []runtime.Value{runtime.IntegerValue{Val: 65}})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	assertString(t, val, "A")
	val, err = interp.Call(runtime.StringValue{Val: "chr"}, []runtime.Value{runtime.IntegerValue{Val: 321}})
	if err != nil {
		t.Fatalf("Call returned error: %v", err)
	}
	assertString(t, val, "A")
	if _, err := interp.Call(runtime.StringValue{Val: "chr"}, nil); err == nil {
		t.Fatalf("expected arity error")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	interp := New(Options{})
	source := "echo \"😼/\\\"\";\n\x01"
	encoded, err := interp.Call(runtime.StringValue{Val: "json_encode"}, []runtime.Value{runtime.StringValue{Val: source}})
	if err != nil {
		t.Fatalf("json_encode returned error: %v", err)
	}
	assertString(t, encoded, `"echo \"\ud83d\ude3c\/\\\"\";\n\u0001"`)
	decoded, err := interp.Call(runtime.StringValue{Val: "json_decode"}, []runtime.Value{encoded})
	if err != nil {
		t.Fatalf("json_decode returned error: %v", err)
	}
	assertString(t, decoded, source)
}

func TestJSONEncodeRejectsInvalidUTF8(t *testing.T) {
	interp := New(Options{})
	val, err := interp.Call(runtime.StringValue{Val: "json_encode"}, []runtime.Value{runtime.StringValue{Val: "\xff"}})
	if err != nil {
		t.Fatalf("json_encode returned error: %v", err)
	}
	if b, ok := val.(runtime.BoolValue); !ok || b.Val {
		t.Fatalf("expected false, got %#v", val)
	}
}

func TestJSONDecodeMalformed(t *testing.T) {
	interp := New(Options{})
	for _, src := range []string{"[", "[1] x", ""} {
		val, err := interp.Call(runtime.StringValue{Val: "json_decode"}, []runtime.Value{runtime.StringValue{Val: src}})
		if err != nil {
			t.Fatalf("json_decode(%q) returned error: %v", src, err)
		}
		if val.Kind() != runtime.KindNull {
			t.Fatalf("json_decode(%q) = %#v, want null", src, val)
		}
	}
}

func TestArrayMapZipsArrays(t *testing.T) {
	interp := New(Options{})
	names := &runtime.ArrayValue{Elements: []runtime.Value{runtime.StringValue{Val: "chr"}, runtime.StringValue{Val: "strval"}}}
	args := &runtime.ArrayValue{Elements: []runtime.Value{runtime.IntegerValue{Val: 104}, runtime.IntegerValue{Val: 7}}}
	val, err := interp.Call(runtime.StringValue{Val: "array_map"}, []runtime.Value{runtime.StringValue{Val: "call_user_func"}, names, args})
	if err != nil {
		t.Fatalf("array_map returned error: %v", err)
	}
	arr, ok := val.(*runtime.ArrayValue)
	if !ok || len(arr.Elements) != 2 {
		t.Fatalf("unexpected result %#v", val)
	}
	assertString(t, arr.Elements[0], "h")
	assertString(t, arr.Elements[1], "7")
}

func TestFFIEvalEntryPoint(t *testing.T) {
	var got []string
	interp := New(Options{Evaluator: CodeEvaluatorFunc(func(code string) error {
		got = append(got, code)
		return nil
	})})
	ffi, err := interp.Call(runtime.StringValue{Val: "FFI::cdef"}, []runtime.Value{
		runtime.StringValue{Val: "char zend_eval_string(const char*,int,const char*);"},
	})
	if err != nil {
		t.Fatalf("FFI::cdef returned error: %v", err)
	}
	callable := &runtime.ArrayValue{Elements: []runtime.Value{ffi, runtime.StringValue{Val: EvalEntryPoint}}}
	if _, err := interp.Call(callable, []runtime.Value{
		runtime.StringValue{Val: "echo 1;"}, runtime.IntegerValue{Val: 0}, runtime.StringValue{Val: ""},
	}); err != nil {
		t.Fatalf("zend_eval_string returned error: %v", err)
	}
	if len(got) != 1 || got[0] != "echo 1;" {
		t.Fatalf("evaluator received %q", got)
	}
}

func TestFFIWithoutEvaluator(t *testing.T) {
	interp := New(Options{})
	if _, err := interp.Call(runtime.StringValue{Val: "FFI::cdef"}, nil); err == nil {
		t.Fatalf("expected FFI::cdef to fail without an evaluator")
	}
}

func TestSpreadRequiresArray(t *testing.T) {
	interp := New(Options{})
	if _, err := interp.EvalString("((9).(9))(...9)"); err == nil || !strings.Contains(err.Error(), "only arrays can be unpacked") {
		t.Fatalf("expected unpack error, got %v", err)
	}
}
