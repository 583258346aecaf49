package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"phpfk/encoder-go/pkg/profile"
)

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List the compiled-in alphabet profiles",
	Long: `Lists the alphabet profiles compiled into the binary. The one marked with *
is the profile every encoding command uses.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		all, err := profile.All()
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "\tNAME\tALPHABET\tSEEDS\tPRIMITIVES\tENTRIES\tDESCRIPTION")
		for _, p := range all {
			mark := ""
			if p.Name == profile.DefaultName {
				mark = "*"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
				mark, p.Name, p.Alphabet, p.Seeds, strings.Join(p.Primitives, ","),
				p.Library.Table().Len(), p.Description)
		}
		return w.Flush()
	},
}
