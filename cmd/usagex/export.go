package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/phyten/usagex/internal/engine/opts"
)

var exportFormats = map[string]string{
	".md":       "markdown",
	".markdown": "markdown",
	".json":     "json",
	".ndjson":   "ndjson",
	".jsonl":    "ndjson",
	".csv":      "csv",
	".tsv":      "tsv",
}

// exportFormat は --format が空なら出力先の拡張子から形式を決めます。既定は markdown です。
func exportFormat(format, path string) (string, error) {
	if strings.TrimSpace(format) == "" {
		if f, ok := exportFormats[strings.ToLower(filepath.Ext(path))]; ok {
			return f, nil
		}
		return "markdown", nil
	}
	f, err := opts.NormalizeOutput(format)
	if err != nil {
		return "", err
	}
	switch f {
	case "table", "summary":
		return "", fmt.Errorf("invalid --format: %s (export writes markdown, json, ndjson, csv or tsv)", format)
	}
	return f, nil
}

func newExportCmd(a *app) *cobra.Command {
	var (
		f      searchFlags
		format string
		out    string
		open   bool
	)
	cmd := &cobra.Command{
		Use:   "export TERM",
		Short: "Write the search result as a markdown report or a data file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if open && out == "" {
				return usageError{fmt.Errorf("--open requires --out")}
			}
			fmtName, err := exportFormat(format, out)
			if err != nil {
				return usageError{err}
			}
			s, err := a.resolveSettings(cmd, &f, f.uiLayer(cmd))
			if err != nil {
				return err
			}
			s.search.Output = fmtName
			s.opts.Term = args[0]
			if err := opts.NormalizeAndValidate(&s.opts); err != nil {
				return usageError{err}
			}
			r, err := a.newRenderer(s, false)
			if err != nil {
				return err
			}
			res, err := a.runner.Run(cmd.Context(), s.opts)
			if err != nil {
				return searchError(err)
			}
			a.reportErrors(res)

			if out == "" {
				return r.render(a.stdout, res)
			}
			file, err := os.Create(out)
			if err != nil {
				return err
			}
			w := bufio.NewWriter(file)
			if err := r.render(w, res); err != nil {
				_ = file.Close()
				return err
			}
			if err := w.Flush(); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return err
			}
			fmt.Fprintf(a.stderr, "wrote %d matches (%s) to %s\n", len(res.Items), fmtName, out)
			if open {
				if err := a.openFile(out); err != nil {
					return fmt.Errorf("open %s: %w", out, err)
				}
			}
			return nil
		},
	}
	addSearchFlags(cmd, &f)
	cmd.Flags().StringVarP(&format, "format", "f", "", "markdown|json|ndjson|csv|tsv (default: from --out extension, else markdown)")
	cmd.Flags().StringVarP(&out, "out", "O", "", "write to this file instead of stdout")
	cmd.Flags().BoolVar(&open, "open", false, "open the written file with the default application")
	return cmd
}
