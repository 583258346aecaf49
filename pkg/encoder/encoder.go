// Package encoder turns integers and byte strings into expressions over a
// profile's alphabet.
package encoder

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/expr"
	"phpfk/encoder-go/pkg/profile"
	"phpfk/encoder-go/pkg/symbols"
)

var (
	ErrNegativeInteger = errors.New("negative integer")
	ErrUnsupportedChar = errors.New("unsupported character")
)

// UnsupportedCharError reports a byte that has neither a direct table entry
// nor a code-point fallback under the active profile.
type UnsupportedCharError struct {
	Char   byte
	Offset int
}

func (e *UnsupportedCharError) Error() string {
	return fmt.Sprintf("encoder: byte 0x%02x at offset %d cannot be encoded", e.Char, e.Offset)
}

func (e *UnsupportedCharError) Unwrap() error { return ErrUnsupportedChar }

type Options struct {
	Logger *zap.Logger
}

// Encoder is read-only after New and safe for concurrent use.
type Encoder struct {
	profile *profile.Profile
	lib     *symbols.Library
	log     *zap.Logger
	chr     *expr.Ref
	// bytes[c] is the memoised expression for the one-byte string c, or nil
	// when c cannot be encoded.
	bytes [256]expr.Node
}

func New(p *profile.Profile, opts Options) (*Encoder, error) {
	if p == nil || p.Library == nil {
		return nil, fmt.Errorf("encoder: missing profile")
	}
	if p.IntegerJoin != profile.JoinNumericParse {
		return nil, fmt.Errorf("encoder: %s: unsupported integer join %q", p.Name, p.IntegerJoin)
	}
	if err := p.Require(profile.PrimXor, profile.PrimConcat, profile.PrimNumericCoercion); err != nil {
		return nil, fmt.Errorf("encoder: %w", err)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	e := &Encoder{profile: p, lib: p.Library, log: log.Named("encoder")}
	if p.Has(profile.PrimCall) {
		e.chr, _ = e.lib.Operation(symbols.NameChr)
	}
	direct, fallback := 0, 0
	for c := 0; c < len(e.bytes); c++ {
		if ref, ok := e.lib.Char(byte(c)); ok {
			e.bytes[c] = ref
			direct++
			continue
		}
		if e.chr == nil {
			continue
		}
		code, err := e.digitsNode(int64(c))
		if err != nil {
			return nil, err
		}
		e.bytes[c] = expr.Call{Callee: e.chr, Args: []expr.Node{code}}
		fallback++
	}
	e.log.Debug("byte table built",
		zap.String("profile", p.Name),
		zap.Int("direct", direct),
		zap.Int("fallback", fallback))
	return e, nil
}

// Default returns an encoder for the default profile.
func Default(opts Options) (*Encoder, error) {
	p, err := profile.Default()
	if err != nil {
		return nil, err
	}
	return New(p, opts)
}

func (e *Encoder) Profile() *profile.Profile { return e.profile }
