package symbols

import (
	"errors"
	"fmt"

	"phpfk/encoder-go/pkg/expr"
)

var (
	ErrDuplicateEntry   = errors.New("duplicate table entry")
	ErrForwardReference = errors.New("forward reference")
	ErrUnknownEntry     = errors.New("unknown table entry")
)

// Table is an ordered set of named expressions. Each entry may only refer to
// entries defined before it, so the table is a DAG whose topological order is
// its definition order.
type Table struct {
	order   []*expr.Ref
	entries map[string]int
}

func NewTable() *Table {
	return &Table{entries: make(map[string]int)}
}

// Define adds name → node. Every Ref mentioned by node must already be an
// entry of this table.
func (t *Table) Define(name string, node expr.Node) (*expr.Ref, error) {
	if name == "" {
		return nil, fmt.Errorf("symbols: empty entry name")
	}
	if _, exists := t.entries[name]; exists {
		return nil, fmt.Errorf("symbols: %s: %w", name, ErrDuplicateEntry)
	}
	if err := t.checkRefs(name, node, len(t.order)); err != nil {
		return nil, err
	}
	ref := expr.NewRef(name, node)
	t.entries[name] = len(t.order)
	t.order = append(t.order, ref)
	return ref, nil
}

// Lookup returns the entry called name.
func (t *Table) Lookup(name string) (*expr.Ref, bool) {
	idx, ok := t.entries[name]
	if !ok {
		return nil, false
	}
	return t.order[idx], true
}

// Entries returns the entries in definition order.
func (t *Table) Entries() []*expr.Ref {
	out := make([]*expr.Ref, len(t.order))
	copy(out, t.order)
	return out
}

func (t *Table) Len() int { return len(t.order) }

// Check re-verifies the no-forward-reference invariant over the whole table.
func (t *Table) Check() error {
	for idx, ref := range t.order {
		if err := t.checkRefs(ref.Name, ref.Target, idx); err != nil {
			return err
		}
	}
	return nil
}

func (t *Table) checkRefs(name string, node expr.Node, limit int) error {
	for _, dep := range expr.Refs(node) {
		idx, ok := t.entries[dep.Name]
		if ok && t.order[idx] != dep {
			return fmt.Errorf("symbols: %s refers to a foreign %s: %w", name, dep.Name, ErrUnknownEntry)
		}
		if !ok || idx >= limit {
			return fmt.Errorf("symbols: %s refers to %s: %w", name, dep.Name, ErrForwardReference)
		}
	}
	return nil
}
