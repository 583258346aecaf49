package expr

import (
	"errors"
	"fmt"
)

// ErrOutsideAlphabet reports text that uses a character the alphabet lacks.
var ErrOutsideAlphabet = errors.New("character outside alphabet")

// AlphabetError pinpoints the first offending character.
type AlphabetError struct {
	Char   byte
	Offset int
}

func (e *AlphabetError) Error() string {
	return fmt.Sprintf("expr: character %q at offset %d is outside the alphabet", e.Char, e.Offset)
}

func (e *AlphabetError) Unwrap() error { return ErrOutsideAlphabet }

// Alphabet is a byte set.
type Alphabet [256]bool

// NewAlphabet builds the set of bytes in chars.
func NewAlphabet(chars string) Alphabet {
	var a Alphabet
	for i := 0; i < len(chars); i++ {
		a[chars[i]] = true
	}
	return a
}

// Contains reports whether c is in the set.
func (a *Alphabet) Contains(c byte) bool {
	return a[c]
}

// Check returns an *AlphabetError for the first byte of text outside a.
func (a *Alphabet) Check(text string) error {
	for i := 0; i < len(text); i++ {
		if !a[text[i]] {
			return &AlphabetError{Char: text[i], Offset: i}
		}
	}
	return nil
}

// CheckAlphabet is a convenience for one-off checks.
func CheckAlphabet(text, chars string) error {
	a := NewAlphabet(chars)
	return a.Check(text)
}
