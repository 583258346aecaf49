// Package solver searches a seed alphabet for the shortest xor combination
// producing each printable byte, and reports which built-in function names
// can be spelled from the result.
//
// The search visits every non-empty subset of the seeds, so its cost doubles
// with each seed. MaxSeeds bounds it.
package solver

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MaxSeeds is the default bound on the seed alphabet size. Thirty seeds
// already mean about a billion subsets.
const MaxSeeds = 30

// MinByte is the smallest byte kept in a Basis; control characters are
// never emitted.
const MinByte = 32

var (
	ErrNoSeeds      = errors.New("empty seed alphabet")
	ErrTooManySeeds = errors.New("seed alphabet too large")
)

type Options struct {
	Logger *zap.Logger
	// MaxSeeds overrides the package default when positive.
	MaxSeeds int
	// Workers bounds the number of concurrent partitions. Zero means
	// GOMAXPROCS.
	Workers int
}

// Combination is a seed sequence whose left-folded xor is Char. Seeds are in
// listing order: the innermost choice first, the outermost last.
type Combination struct {
	Char  byte
	Seeds []byte
}

// String renders the combination as a quoted xor chain, e.g. ('F'^'4').
func (c Combination) String() string {
	var b strings.Builder
	b.WriteByte('(')
	for i, s := range c.Seeds {
		if i > 0 {
			b.WriteByte('^')
		}
		b.WriteByte('\'')
		b.WriteString(quoteByte(s))
		b.WriteByte('\'')
	}
	b.WriteByte(')')
	return b.String()
}

// Value folds the seeds with xor.
func (c Combination) Value() byte {
	var v byte
	for _, s := range c.Seeds {
		v ^= s
	}
	return v
}

// Basis is the best combination per reachable byte.
type Basis struct {
	Seeds string
	best  [256]*Combination
}

// Lookup returns the combination for c.
func (b *Basis) Lookup(c byte) (Combination, bool) {
	if b.best[c] == nil {
		return Combination{}, false
	}
	return *b.best[c], true
}

// Has reports whether c is reachable.
func (b *Basis) Has(c byte) bool {
	return b.best[c] != nil
}

// Combinations lists every reachable byte in ascending order.
func (b *Basis) Combinations() []Combination {
	out := make([]Combination, 0, len(b.best))
	for _, c := range b.best {
		if c != nil {
			out = append(out, *c)
		}
	}
	return out
}

// Len is the number of reachable bytes.
func (b *Basis) Len() int {
	n := 0
	for _, c := range b.best {
		if c != nil {
			n++
		}
	}
	return n
}

// Solve runs the subset search over seeds.
//
// Subsets are visited as increasing index chains in pre-order: seed i, then
// every chain starting with i, before seed i+1. A byte keeps the first
// combination found unless a strictly shorter one turns up later. Each top
// level index is searched in its own partition and the partitions are merged
// in index order, which gives the same result as a sequential search.
func Solve(ctx context.Context, seeds string, opts Options) (*Basis, error) {
	if err := CheckSeeds(seeds, opts.MaxSeeds); err != nil {
		return nil, err
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("solver")
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	list := []byte(seeds)
	log.Debug("search started",
		zap.String("seeds", seeds),
		zap.Uint64("subsets", (uint64(1)<<len(list))-1),
		zap.Int("workers", workers))

	partitions := make([]*[256]*Combination, len(list))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i := range list {
		i := i
		g.Go(func() error {
			part := &[256]*Combination{}
			s := &search{ctx: gctx, seeds: list, best: part}
			if err := s.visit([]int{i}, list[i]); err != nil {
				return err
			}
			partitions[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("solver: %w", err)
	}

	basis := &Basis{Seeds: seeds}
	for _, part := range partitions {
		for c, cand := range part {
			if cand == nil {
				continue
			}
			if cur := basis.best[c]; cur == nil || len(cand.Seeds) < len(cur.Seeds) {
				basis.best[c] = cand
			}
		}
	}
	log.Debug("search finished", zap.Int("reachable", basis.Len()))
	return basis, nil
}

// CheckSeeds validates the seed alphabet against limit, or against MaxSeeds
// when limit is not positive.
func CheckSeeds(seeds string, limit int) error {
	if limit <= 0 {
		limit = MaxSeeds
	}
	switch {
	case seeds == "":
		return fmt.Errorf("solver: %w", ErrNoSeeds)
	case len(seeds) > limit:
		return fmt.Errorf("solver: %d seeds, limit is %d: %w", len(seeds), limit, ErrTooManySeeds)
	}
	return nil
}

type search struct {
	ctx   context.Context
	seeds []byte
	best  *[256]*Combination
	steps int
}

// cancelCheckInterval is how many visits pass between context checks.
const cancelCheckInterval = 4096

func (s *search) visit(chain []int, acc byte) error {
	s.steps++
	if s.steps%cancelCheckInterval == 1 {
		if err := s.ctx.Err(); err != nil {
			return err
		}
	}
	if acc >= MinByte {
		if cur := s.best[acc]; cur == nil || len(chain) < len(cur.Seeds) {
			s.best[acc] = s.record(chain, acc)
		}
	}
	for j := chain[len(chain)-1] + 1; j < len(s.seeds); j++ {
		if err := s.visit(append(chain, j), acc^s.seeds[j]); err != nil {
			return err
		}
	}
	return nil
}

func (s *search) record(chain []int, acc byte) *Combination {
	out := make([]byte, len(chain))
	for k, idx := range chain {
		out[len(chain)-1-k] = s.seeds[idx]
	}
	return &Combination{Char: acc, Seeds: out}
}

// Spell writes name using reachable bytes, preferring each character as
// given and falling back to its upper-case form. It reports false when some
// character is reachable in neither case.
func (b *Basis) Spell(name string) (string, bool) {
	out := make([]byte, len(name))
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case b.Has(c):
			out[i] = c
		case b.Has(upper(c)):
			out[i] = upper(c)
		default:
			return "", false
		}
	}
	return string(out), true
}

// Spellable returns the spellings of every name Spell accepts, in input
// order.
func (b *Basis) Spellable(names []string) []string {
	var out []string
	for _, name := range names {
		if spelled, ok := b.Spell(name); ok {
			out = append(out, spelled)
		}
	}
	return out
}

func upper(c byte) byte {
	if c >= 'a' && c <= 'z' {
		return c - 'a' + 'A'
	}
	return c
}

func quoteByte(c byte) string {
	if c >= MinByte && c < 0x7f {
		return string(c)
	}
	return fmt.Sprintf(`\x%02x`, c)
}
