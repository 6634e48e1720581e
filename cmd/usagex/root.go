package main

import (
	"github.com/spf13/cobra"
)

var version = "dev"

func newRootCmd(a *app) *cobra.Command {
	root := newSearchCmd(a)
	root.Use = "usagex [TERM]"
	root.Short = "Find and categorize usages of a term in source code"
	root.Long = `usagex finds every occurrence of a term under a directory and tells you
how it is used: imported, exported, defined, called, declared, read,
accessed as a property, mentioned in a comment or a string, and so on.

Without a subcommand usagex runs "search". Use "usagex search TERM" when
TERM is the name of a subcommand.`
	root.Example = `  usagex getTotal
  usagex search total --langs typescript -c function-definition,import
  usagex export total --out report.md --open
  usagex serve --port 8080 --open`
	root.Args = cobra.MaximumNArgs(1)
	root.Version = version
	root.SilenceUsage = true
	root.SilenceErrors = true
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.AddCommand(newSearchCmd(a), newExportCmd(a), newServeCmd(a), newCategoriesCmd(a))
	return root
}
