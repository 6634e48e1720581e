package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/phyten/usagex/internal/analyze"
	"github.com/phyten/usagex/internal/model"
)

func newCategoriesCmd(a *app) *cobra.Command {
	var rules bool
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List categories in display order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := tabwriter.NewWriter(a.stdout, 2, 4, 2, ' ', 0)
			if rules {
				fmt.Fprintln(w, "ORDER\tRULE")
				for i, name := range analyze.RuleNames() {
					fmt.Fprintf(w, "%d\t%s\n", i+1, name)
				}
				return w.Flush()
			}
			fmt.Fprintln(w, "CATEGORY\tLABEL")
			for _, c := range model.Categories() {
				fmt.Fprintf(w, "%s\t%s\n", c, c.Label())
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&rules, "rules", false, "list classification rules in evaluation order instead")
	return cmd
}
