// Package profile holds the alphabet profiles compiled into the encoder.
// Profiles are declared in profiles.yml, embedded at build time, and each is
// bound to a symbol library builder. The registry is built once and is
// read-only afterwards.
package profile

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"phpfk/encoder-go/pkg/expr"
	"phpfk/encoder-go/pkg/symbols"
)

// DefaultName is the profile used when none is requested.
const DefaultName = "nine"

// Integer joins: how multi-digit integers are assembled from digit entries.
const (
	// JoinNumericParse concatenates digit expressions into a numeric string
	// and xors it with integer zero.
	JoinNumericParse = "numeric-parse"
)

// Primitive operations a profile's alphabet can express.
const (
	PrimCall            = "call"
	PrimXor             = "xor"
	PrimConcat          = "concat"
	PrimNumericCoercion = "numeric-coercion"
	PrimSpread          = "spread"
	PrimIndex           = "index"
)

var knownPrimitives = map[string]bool{
	PrimCall:            true,
	PrimXor:             true,
	PrimConcat:          true,
	PrimNumericCoercion: true,
	PrimSpread:          true,
	PrimIndex:           true,
}

var ErrUnknownProfile = errors.New("unknown profile")

//go:embed profiles.yml
var descriptorsYAML []byte

// Builder constructs the symbol library of a profile.
type Builder func() (*symbols.Library, error)

var builders = map[string]Builder{
	"nine": symbols.Nine,
}

// Profile is an alphabet plus the library that targets it.
type Profile struct {
	Name        string
	Description string
	Alphabet    string
	Seeds       string
	Primitives  []string
	IntegerJoin string
	Library     *symbols.Library

	set expr.Alphabet
}

// Contains reports whether c may appear in output for this profile.
func (p *Profile) Contains(c byte) bool {
	return p.set.Contains(c)
}

// Has reports whether the profile declares the primitive op.
func (p *Profile) Has(op string) bool {
	for _, prim := range p.Primitives {
		if prim == op {
			return true
		}
	}
	return false
}

// Require returns an error naming the first of ops the profile lacks.
func (p *Profile) Require(ops ...string) error {
	for _, op := range ops {
		if !p.Has(op) {
			return fmt.Errorf("profile: %s: primitive %q not available", p.Name, op)
		}
	}
	return nil
}

// Check returns an *expr.AlphabetError if text leaves the alphabet.
func (p *Profile) Check(text string) error {
	return p.set.Check(text)
}

type descriptorFile struct {
	Profiles []descriptor `yaml:"profiles"`
}

type descriptor struct {
	Name        string   `yaml:"name"`
	Description string   `yaml:"description"`
	Alphabet    string   `yaml:"alphabet"`
	Seeds       string   `yaml:"seeds"`
	Primitives  []string `yaml:"primitives"`
	IntegerJoin string   `yaml:"integer_join"`
	Library     string   `yaml:"library"`
}

var (
	registryOnce sync.Once
	registry     map[string]*Profile
	registryErr  error
)

func loadRegistry() (map[string]*Profile, error) {
	registryOnce.Do(func() {
		profiles, err := load(descriptorsYAML, builders)
		if err != nil {
			registryErr = err
			return
		}
		registry = make(map[string]*Profile, len(profiles))
		for _, p := range profiles {
			registry[p.Name] = p
		}
	})
	return registry, registryErr
}

// Lookup returns the profile called name.
func Lookup(name string) (*Profile, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	p, ok := reg[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("profile: %q: %w", name, ErrUnknownProfile)
	}
	return p, nil
}

// Default returns the DefaultName profile.
func Default() (*Profile, error) {
	return Lookup(DefaultName)
}

// All returns every profile sorted by name.
func All() ([]*Profile, error) {
	reg, err := loadRegistry()
	if err != nil {
		return nil, err
	}
	out := make([]*Profile, 0, len(reg))
	for _, p := range reg {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func load(data []byte, libs map[string]Builder) ([]*Profile, error) {
	var raw descriptorFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("profile: parse descriptors: %w", err)
	}
	seen := make(map[string]struct{}, len(raw.Profiles))
	out := make([]*Profile, 0, len(raw.Profiles))
	for _, d := range raw.Profiles {
		p, err := d.build(libs)
		if err != nil {
			return nil, err
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("profile: %s declared twice", p.Name)
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}
	return out, nil
}

func (d descriptor) build(libs map[string]Builder) (*Profile, error) {
	name := strings.TrimSpace(d.Name)
	if name == "" {
		return nil, fmt.Errorf("profile: descriptor without a name")
	}
	if d.Alphabet == "" {
		return nil, fmt.Errorf("profile: %s: empty alphabet", name)
	}
	if d.Seeds == "" {
		return nil, fmt.Errorf("profile: %s: empty seed set", name)
	}
	for _, prim := range d.Primitives {
		if !knownPrimitives[prim] {
			return nil, fmt.Errorf("profile: %s: unknown primitive %q", name, prim)
		}
	}
	switch d.IntegerJoin {
	case JoinNumericParse:
	default:
		return nil, fmt.Errorf("profile: %s: unsupported integer join %q", name, d.IntegerJoin)
	}
	builder, ok := libs[d.Library]
	if !ok {
		return nil, fmt.Errorf("profile: %s: no symbol library %q", name, d.Library)
	}
	lib, err := builder()
	if err != nil {
		return nil, fmt.Errorf("profile: %s: %w", name, err)
	}
	p := &Profile{
		Name:        name,
		Description: strings.TrimSpace(d.Description),
		Alphabet:    d.Alphabet,
		Seeds:       d.Seeds,
		Primitives:  d.Primitives,
		IntegerJoin: d.IntegerJoin,
		Library:     lib,
		set:         expr.NewAlphabet(d.Alphabet),
	}
	for _, entry := range lib.Table().Entries() {
		if err := p.Check(entry.Text()); err != nil {
			return nil, fmt.Errorf("profile: %s: entry %s: %w", name, entry.Name, err)
		}
	}
	return p, nil
}
