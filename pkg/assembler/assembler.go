// Package assembler builds the self-executing expression for a whole
// program.
//
// The output decodes a JSON header into the argument lists of array_map,
// which yields the callable [FFI::cdef(decl), "zend_eval_string"]. That
// callable is then invoked with the arguments decoded from
// "[" . json_encode(source) . ",0,\"\"]", so the engine evaluates the source
// text verbatim.
//
// Sources must be valid UTF-8. The source travels through json_encode, which
// fails on other byte sequences, so Obfuscate returns ErrInvalidUTF8 for
// them. Encoder.String has no such limit and encodes arbitrary bytes.
package assembler

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/encoder"
	"phpfk/encoder-go/pkg/expr"
	"phpfk/encoder-go/pkg/profile"
)

var (
	ErrEmptySource = errors.New("empty source")
	// ErrInvalidUTF8 is returned for sources json_encode would refuse.
	ErrInvalidUTF8 = errors.New("source is not valid UTF-8")
)

// Helper function names spelled into every program.
const (
	FuncArrayMap     = "array_map"
	FuncJSONDecode   = "json_decode"
	FuncJSONEncode   = "json_encode"
	FuncCallUserFunc = "call_user_func"
	FuncFFICdef      = "FFI::cdef"
	FuncStrval       = "strval"
	EvalEntryPoint   = "zend_eval_string"
	EvalDeclaration  = "char zend_eval_string(const char*,int,const char*);"
)

// argsOpen and argsClose wrap the JSON-encoded source into the argument list
// (source, 0, "").
const (
	argsOpen  = "["
	argsClose = `,0,""]`
)

type Options struct {
	Logger *zap.Logger
}

// Assembler is read-only after New and safe for concurrent use.
type Assembler struct {
	enc *encoder.Encoder
	log *zap.Logger

	arrayMap   expr.Node
	jsonDecode expr.Node
	jsonEncode expr.Node
	header     expr.Node
	open       expr.Node
	tail       expr.Node
}

// Header returns the JSON text decoded into array_map's arguments.
func Header() (string, error) {
	header := []any{
		FuncCallUserFunc,
		[]string{FuncFFICdef, FuncStrval},
		[]string{EvalDeclaration, EvalEntryPoint},
	}
	data, err := json.Marshal(header)
	if err != nil {
		return "", fmt.Errorf("assembler: encode header: %w", err)
	}
	return string(data), nil
}

// New encodes the fixed vocabulary once.
func New(enc *encoder.Encoder, opts Options) (*Assembler, error) {
	if enc == nil {
		return nil, fmt.Errorf("assembler: missing encoder")
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if err := enc.Profile().Require(profile.PrimCall, profile.PrimSpread); err != nil {
		return nil, fmt.Errorf("assembler: %w", err)
	}
	header, err := Header()
	if err != nil {
		return nil, err
	}
	a := &Assembler{enc: enc, log: log.Named("assembler")}
	fixed := []struct {
		dst  *expr.Node
		text string
	}{
		{&a.arrayMap, FuncArrayMap},
		{&a.jsonDecode, FuncJSONDecode},
		{&a.jsonEncode, FuncJSONEncode},
		{&a.header, header},
		{&a.open, argsOpen},
		{&a.tail, argsClose},
	}
	for _, f := range fixed {
		node, err := enc.StringNode(f.text)
		if err != nil {
			return nil, fmt.Errorf("assembler: encode %q: %w", f.text, err)
		}
		*f.dst = node
	}
	return a, nil
}

var (
	defaultOnce sync.Once
	defaultAsm  *Assembler
	defaultErr  error
)

// Default returns an assembler for the default profile.
func Default() (*Assembler, error) {
	defaultOnce.Do(func() {
		enc, err := encoder.Default(encoder.Options{})
		if err != nil {
			defaultErr = err
			return
		}
		defaultAsm, defaultErr = New(enc, Options{})
	})
	return defaultAsm, defaultErr
}

// Obfuscate encodes source with the default profile.
func Obfuscate(source string) (string, error) {
	a, err := Default()
	if err != nil {
		return "", err
	}
	return a.Obfuscate(source)
}

// Encoder returns the encoder the assembler writes with.
func (a *Assembler) Encoder() *encoder.Encoder { return a.enc }

// ProgramNode returns the expression tree that evaluates source.
func (a *Assembler) ProgramNode(source string) (expr.Node, error) {
	switch {
	case source == "":
		return nil, fmt.Errorf("assembler: %w", ErrEmptySource)
	case !utf8.ValidString(source):
		return nil, fmt.Errorf("assembler: %w", ErrInvalidUTF8)
	}
	src, err := a.enc.StringNode(source)
	if err != nil {
		return nil, fmt.Errorf("assembler: %w", err)
	}
	callable := expr.Call{
		Callee: a.arrayMap,
		Args:   []expr.Node{expr.Spread{X: expr.Call{Callee: a.jsonDecode, Args: []expr.Node{a.header}}}},
	}
	args := expr.Concat{Parts: []expr.Node{
		a.open,
		expr.Call{Callee: a.jsonEncode, Args: []expr.Node{src}},
		a.tail,
	}}
	return expr.Call{
		Callee: callable,
		Args:   []expr.Node{expr.Spread{X: expr.Call{Callee: a.jsonDecode, Args: []expr.Node{args}}}},
	}, nil
}

// Obfuscate renders ProgramNode(source) and checks the result against the
// profile alphabet.
func (a *Assembler) Obfuscate(source string) (string, error) {
	node, err := a.ProgramNode(source)
	if err != nil {
		return "", err
	}
	out := expr.Render(node)
	if err := a.enc.Profile().Check(out); err != nil {
		return "", fmt.Errorf("assembler: %w", err)
	}
	a.log.Debug("program assembled",
		zap.Int("source_bytes", len(source)),
		zap.Int("output_bytes", len(out)))
	return out, nil
}
