package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"phpfk/encoder-go/pkg/profile"
	"phpfk/encoder-go/pkg/solver"
)

var (
	basisFunctions string
	basisPHP       string
	basisFormat    string
	basisMaxSeeds  int
)

var basisCmd = &cobra.Command{
	Use:   "basis [seeds]",
	Short: "Search xor combinations of seed characters",
	Long: `Finds, for every printable byte, the shortest xor combination of the seed
characters that produces it, then lists the built-in function names that can be
spelled with the reachable bytes.

Without seeds, the seed characters of the built-in profile are searched.
Function names come from the embedded list unless --functions or --php is
given. The search is exponential in the number of seeds; --max-seeds raises
the bound.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runBasis,
}

func init() {
	basisCmd.Flags().StringVar(&basisFunctions, "functions", "", "file with one function name per line")
	basisCmd.Flags().StringVar(&basisPHP, "php", "", "ask this php binary for its function names")
	basisCmd.Flags().StringVar(&basisFormat, "format", "text", "output format: text or yaml")
	basisCmd.Flags().IntVar(&basisMaxSeeds, "max-seeds", solver.MaxSeeds, "largest seed alphabet to search")
}

func runBasis(cmd *cobra.Command, args []string) error {
	if basisFunctions != "" && basisPHP != "" {
		return fmt.Errorf("pass either --functions or --php, not both")
	}
	if basisFormat != "text" && basisFormat != "yaml" {
		return fmt.Errorf("unknown format %q", basisFormat)
	}
	seeds := optionalArg(args)
	if seeds == "" {
		p, err := profile.Default()
		if err != nil {
			return err
		}
		seeds = p.Seeds
	}
	if err := solver.CheckSeeds(seeds, basisMaxSeeds); err != nil {
		return err
	}
	names, err := functionNames(cmd)
	if err != nil {
		return err
	}
	basis, err := solver.Solve(cmd.Context(), seeds, solver.Options{
		Logger:   currentLogger(),
		MaxSeeds: basisMaxSeeds,
	})
	if err != nil {
		return err
	}
	report := solver.NewReport(basis, names)
	currentLogger().Debug("basis solved",
		zap.Int("reachable", basis.Len()),
		zap.Int("functions", len(report.Functions)))
	if basisFormat == "yaml" {
		return report.WriteYAML(cmd.OutOrStdout())
	}
	return report.WriteText(cmd.OutOrStdout())
}

func functionNames(cmd *cobra.Command) ([]string, error) {
	switch {
	case basisPHP != "":
		return solver.PHPFunctions(cmd.Context(), basisPHP)
	case basisFunctions != "":
		source, err := readSource(cmd, basisFunctions)
		if err != nil {
			return nil, err
		}
		return solver.LoadFunctions(strings.NewReader(source))
	default:
		return solver.BuiltinFunctions(), nil
	}
}
