package symbols_test

import (
	"strings"
	"testing"

	"phpfk/encoder-go/pkg/interpreter"
	"phpfk/encoder-go/pkg/parser"
	"phpfk/encoder-go/pkg/runtime"
	"phpfk/encoder-go/pkg/symbols"
)

// Every entry is evaluated from its rendered text, so the check covers the
// rendering as well as the construction.
func evalText(t *testing.T, text string) runtime.Value {
	t.Helper()
	node, err := parser.Parse(text)
	if err != nil {
		t.Fatalf("Parse(%q) returned error: %v", text, err)
	}
	val, err := interpreter.New(interpreter.Options{}).Eval(node)
	if err != nil {
		t.Fatalf("Eval(%q) returned error: %v", text, err)
	}
	return val
}

func TestNineDigitsEvaluate(t *testing.T) {
	lib, err := symbols.Nine()
	if err != nil {
		t.Fatalf("Nine returned error: %v", err)
	}
	for d := 0; d < 10; d++ {
		ref, _ := lib.Digit(d)
		val := evalText(t, ref.Text())
		n, ok := val.(runtime.IntegerValue)
		if !ok || n.Val != int64(d) {
			t.Fatalf("digit %d evaluates to %#v", d, val)
		}
	}
}

func TestNineIntermediateEntries(t *testing.T) {
	lib, err := symbols.Nine()
	if err != nil {
		t.Fatalf("Nine returned error: %v", err)
	}
	want := map[string]runtime.Value{
		`"99"`:   runtime.StringValue{Val: "99"},
		`"00"`:   runtime.StringValue{Val: "00"},
		"106":    runtime.IntegerValue{Val: 106},
		`"80"`:   runtime.StringValue{Val: "80"},
		"80":     runtime.IntegerValue{Val: 80},
		"83":     runtime.IntegerValue{Val: 83},
		"823":    runtime.IntegerValue{Val: 823},
		"861":    runtime.IntegerValue{Val: 861},
		`"980"`:  runtime.StringValue{Val: "980"},
		"51":     runtime.IntegerValue{Val: 51},
		`"INF9"`: runtime.StringValue{Val: "INF9"},
		`"\0\0"`: runtime.StringValue{Val: "\x00\x00"},
		`"CHr"`:  runtime.StringValue{Val: "CHr"},
	}
	for name, expected := range want {
		ref, ok := lib.Table().Lookup(name)
		if !ok {
			t.Fatalf("entry %s missing", name)
		}
		if got := evalText(t, ref.Text()); got != expected {
			t.Fatalf("entry %s evaluates to %#v, want %#v", name, got, expected)
		}
	}
}

func TestNineChrNameIsCallable(t *testing.T) {
	lib, err := symbols.Nine()
	if err != nil {
		t.Fatalf("Nine returned error: %v", err)
	}
	chr, _ := lib.Operation(symbols.NameChr)
	val := evalText(t, chr.Text())
	name, ok := val.(runtime.StringValue)
	if !ok || !strings.EqualFold(name.Val, "chr") {
		t.Fatalf("chr entry evaluates to %#v", val)
	}
	nine, _ := lib.Digit(9)
	seven, _ := lib.Digit(7)
	call := "(" + chr.Text() + ")((((" + seven.Text() + ").(" + nine.Text() + "))^(9^9)))"
	got := evalText(t, call)
	if s, ok := got.(runtime.StringValue); !ok || s.Val != "O" {
		t.Fatalf("chr(79) evaluates to %#v", got)
	}
}
