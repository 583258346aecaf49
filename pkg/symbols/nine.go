package symbols

import (
	"strings"

	"phpfk/encoder-go/pkg/expr"
)

// infinityDigits is long enough for the literal to overflow float64, so it
// converts to the string "INF".
const infinityDigits = 309

type chain struct {
	table *Table
	err   error
}

func (c *chain) def(name string, node expr.Node) *expr.Ref {
	if c.err != nil {
		return nil
	}
	ref, err := c.table.Define(name, node)
	if err != nil {
		c.err = err
	}
	return ref
}

func lit(text string) expr.Lit { return expr.Lit{Text: text} }

func xor(ops ...expr.Node) expr.Xor { return expr.Xor{Operands: ops} }

func cat(parts ...expr.Node) expr.Concat { return expr.Concat{Parts: parts} }

// Nine builds the library for the alphabet 9 ( ) . ^
//
// Strings xor byte-wise and truncate to the shorter operand; a string xor an
// integer coerces the string to an integer. Digit strings are assembled with
// concatenation, xor-ed into the wanted digit in their leading positions, and
// turned back into integers by xor with zero.
func Nine() (*Library, error) {
	c := &chain{table: NewTable()}

	nine := c.def("9", lit("9"))
	zero := c.def("0", xor(nine, nine))
	s99 := c.def(`"99"`, cat(nine, nine))
	n99 := c.def("99", lit("99"))
	s00 := c.def(`"00"`, cat(zero, zero))
	n106 := c.def("106", xor(nine, n99))
	s80 := c.def(`"80"`, xor(cat(zero, nine), cat(n106, nine), s99))
	n80 := c.def("80", xor(s80, zero))
	n83 := c.def("83", xor(nine, xor(zero, cat(nine, zero))))
	n823 := c.def("823", xor(nine, cat(n83, zero)))
	n861 := c.def("861", xor(n99, cat(n83, zero)))
	s980 := c.def(`"980"`, cat(nine, s80))
	n51 := c.def("51", xor(n99, n80))

	d8 := c.def("8", xor(xor(cat(nine, s80), cat(nine, zero), s00), zero))
	d1 := c.def("1", xor(xor(s99, s980, s00), zero))
	d2 := c.def("2", xor(xor(cat(n823, nine), cat(d8, zero), s00), zero))
	c.def("3", xor(cat(n83, nine), xor(cat(d8, zero), s00), zero))
	d4 := c.def("4", xor(xor(cat(nine, n51), cat(nine, n106), s00), zero))
	c.def("5", xor(xor(cat(nine, n51), cat(nine, zero), s00), zero))
	d6 := c.def("6", xor(xor(cat(n861, nine), cat(d8, zero), s00), zero))
	c.def("7", xor(xor(cat(nine, d6), cat(nine, d1), cat(zero, zero)), zero))

	inf9 := c.def(`"INF9"`, cat(lit(strings.Repeat("9", infinityDigits)), nine))
	nul2 := c.def(`"\0\0"`, xor(s99, s99))
	// "INF9" ^ "864" ^ "20\0\0" = "CHr"; function names are case-insensitive.
	c.def(`"CHr"`, xor(inf9, cat(d8, d6, d4), cat(d2, zero, nul2)))

	if c.err != nil {
		return nil, c.err
	}
	return NewLibrary("nine", c.table, Bindings{
		Digits: [10]string{"0", "1", "2", "3", "4", "5", "6", "7", "8", "9"},
		Zero:   "0",
		Names:  map[string]string{NameChr: `"CHr"`},
	})
}
