package runtime

import (
	"fmt"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindInteger
	KindFloat
	KindString
	KindArray
	KindObject
	KindNativeFunction
)

func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindInteger:
		return "int"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindArray:
		return "array"
	case KindObject:
		return "object"
	case KindNativeFunction:
		return "native_function"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NullValue struct{}

func (NullValue) Kind() Kind { return KindNull }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type IntegerValue struct {
	Val int64
}

func (v IntegerValue) Kind() Kind { return KindInteger }

type FloatValue struct {
	Val float64
}

func (v FloatValue) Kind() Kind { return KindFloat }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

//-----------------------------------------------------------------------------
// Compound values
//-----------------------------------------------------------------------------

// ArrayValue is a list; keys are the positions 0..n-1.
type ArrayValue struct {
	Elements []Value
}

func (v *ArrayValue) Kind() Kind { return KindArray }

// NativeFunction is a host-provided callable.
type NativeFunction struct {
	Name  string
	Arity int // -1 for variadic
	Impl  func(args []Value) (Value, error)
}

func (v NativeFunction) Kind() Kind { return KindNativeFunction }

// ObjectValue is an opaque host object exposing native methods.
type ObjectValue struct {
	Class   string
	Methods map[string]NativeFunction
}

func (v *ObjectValue) Kind() Kind { return KindObject }

// Method finds a method by case-insensitive name.
func (v *ObjectValue) Method(name string) (NativeFunction, bool) {
	if v == nil {
		return NativeFunction{}, false
	}
	fn, ok := v.Methods[strings.ToLower(name)]
	return fn, ok
}
