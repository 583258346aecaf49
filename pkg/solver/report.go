package solver

import (
	"bufio"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Report is a solved basis plus the function names it can spell.
type Report struct {
	Basis     *Basis
	Functions []string
}

// NewReport spells every name in functions against b.
func NewReport(b *Basis, functions []string) *Report {
	return &Report{Basis: b, Functions: b.Spellable(functions)}
}

// WriteText writes one `'c' => "(expr)",` line per reachable byte, then the
// spellable names between section markers.
func (r *Report) WriteText(w io.Writer) error {
	bw := bufio.NewWriter(w)
	for _, c := range r.Basis.Combinations() {
		fmt.Fprintf(bw, "'%s' => \"%s\",\n", quoteByte(c.Char), c)
	}
	bw.WriteString("== found functions ==\n")
	for _, name := range r.Functions {
		bw.WriteString(name)
		bw.WriteByte('\n')
	}
	bw.WriteString("== done ==\n")
	return bw.Flush()
}

type yamlReport struct {
	Seeds        string            `yaml:"seeds"`
	Combinations []yamlCombination `yaml:"combinations"`
	Functions    []string          `yaml:"functions"`
}

type yamlCombination struct {
	Char       string `yaml:"char"`
	Code       int    `yaml:"code"`
	Expression string `yaml:"expression"`
}

// WriteYAML writes the report as a YAML document.
func (r *Report) WriteYAML(w io.Writer) error {
	doc := yamlReport{Seeds: r.Basis.Seeds, Functions: r.Functions}
	if doc.Functions == nil {
		doc.Functions = []string{}
	}
	for _, c := range r.Basis.Combinations() {
		doc.Combinations = append(doc.Combinations, yamlCombination{
			Char:       quoteByte(c.Char),
			Code:       int(c.Char),
			Expression: c.String(),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("solver: encode report: %w", err)
	}
	return enc.Close()
}
