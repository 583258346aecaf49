package symbols

import (
	"fmt"

	"phpfk/encoder-go/pkg/expr"
)

// NameChr is the operation name of the code-point-to-character primitive.
const NameChr = "chr"

// Bindings maps lookup keys to table entry names.
type Bindings struct {
	// Digits[d] evaluates to the integer d.
	Digits [10]string
	// Zero evaluates to integer zero; xor-ing a numeric string with it
	// coerces the string to an integer.
	Zero string
	// Chars are direct one-character string entries.
	Chars map[byte]string
	// Names are callable operation names keyed by their lowercase spelling.
	Names map[string]string
}

// Library is the bootstrap table of a profile plus its lookups. It is
// read-only once built.
type Library struct {
	name   string
	table  *Table
	digits [10]*expr.Ref
	zero   *expr.Ref
	chars  map[byte]*expr.Ref
	names  map[string]*expr.Ref
}

// NewLibrary resolves b against t.
func NewLibrary(name string, t *Table, b Bindings) (*Library, error) {
	if t == nil {
		return nil, fmt.Errorf("symbols: %s: nil table", name)
	}
	if err := t.Check(); err != nil {
		return nil, err
	}
	resolve := func(key, entry string) (*expr.Ref, error) {
		ref, ok := t.Lookup(entry)
		if !ok {
			return nil, fmt.Errorf("symbols: %s: %s bound to %q: %w", name, key, entry, ErrUnknownEntry)
		}
		return ref, nil
	}
	lib := &Library{
		name:  name,
		table: t,
		chars: make(map[byte]*expr.Ref, len(b.Chars)),
		names: make(map[string]*expr.Ref, len(b.Names)),
	}
	for d, entry := range b.Digits {
		ref, err := resolve(fmt.Sprintf("digit %d", d), entry)
		if err != nil {
			return nil, err
		}
		lib.digits[d] = ref
	}
	zero, err := resolve("zero", b.Zero)
	if err != nil {
		return nil, err
	}
	lib.zero = zero
	for c, entry := range b.Chars {
		ref, err := resolve(fmt.Sprintf("char %q", c), entry)
		if err != nil {
			return nil, err
		}
		lib.chars[c] = ref
	}
	for op, entry := range b.Names {
		ref, err := resolve("name "+op, entry)
		if err != nil {
			return nil, err
		}
		lib.names[op] = ref
	}
	return lib, nil
}

func (l *Library) Name() string { return l.name }

func (l *Library) Table() *Table { return l.table }

// Digit returns the entry evaluating to the integer d.
func (l *Library) Digit(d int) (*expr.Ref, bool) {
	if d < 0 || d > 9 || l.digits[d] == nil {
		return nil, false
	}
	return l.digits[d], true
}

func (l *Library) Zero() *expr.Ref { return l.zero }

// Char returns the direct one-character entry for c.
func (l *Library) Char(c byte) (*expr.Ref, bool) {
	ref, ok := l.chars[c]
	return ref, ok
}

// Operation returns the entry spelling the callable name op.
func (l *Library) Operation(op string) (*expr.Ref, bool) {
	ref, ok := l.names[op]
	return ref, ok
}
