package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/phyten/usagex/internal/config"
	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/engine/opts"
	"github.com/phyten/usagex/internal/output"
	"github.com/phyten/usagex/internal/progress"
	"github.com/phyten/usagex/internal/watch"
)

// searchFlags は search / export / serve で共通の検索フラグです。
// 設定レイヤーに渡すのは明示的に指定されたフラグだけです。
type searchFlags struct {
	configPath     string
	root           string
	caseSensitive  bool
	wholeWord      bool
	include        []string
	exclude        []string
	langs          []string
	categories     []string
	maxResults     int
	maxFileBytes   int
	excludeTypical bool
	jobs           int
	withLinks      bool
	output         string
	color          string
	fields         string
	sort           string
	context        bool
	style          string
	progress       bool
	noProgress     bool
}

func addSearchFlags(cmd *cobra.Command, f *searchFlags) {
	fs := cmd.Flags()
	fs.StringVar(&f.configPath, "config", "", "config file (default: search .usagex.{yaml,yml,toml,json})")
	fs.StringVar(&f.root, "root", ".", "directory to search")
	fs.BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "match case")
	fs.BoolVarP(&f.wholeWord, "word", "w", false, "match whole words only")
	fs.StringSliceVar(&f.include, "include", nil, "only search paths matching these globs (doublestar)")
	fs.StringSliceVar(&f.exclude, "exclude", nil, "skip paths matching these globs (doublestar)")
	fs.StringSliceVar(&f.langs, "langs", nil, "only search these languages (e.g. typescript,python)")
	fs.StringSliceVarP(&f.categories, "categories", "c", nil, "only show these categories")
	fs.IntVarP(&f.maxResults, "max-results", "m", 0, "stop after N matches (0 = unlimited)")
	fs.IntVar(&f.maxFileBytes, "max-file-bytes", 1<<20, "skip files larger than N bytes (0 = unlimited)")
	fs.BoolVar(&f.excludeTypical, "exclude-typical", true, "skip node_modules, vendor, dist, build ...")
	fs.IntVarP(&f.jobs, "jobs", "j", 0, "max parallel workers (default: number of CPUs)")
	fs.BoolVar(&f.withLinks, "with-links", false, "add permalinks from the git remote and HEAD")
	fs.StringVarP(&f.output, "output", "o", "table", "table|summary|json|ndjson|csv|tsv|markdown")
	fs.StringVar(&f.color, "color", "auto", "auto|always|never")
	fs.StringVar(&f.fields, "fields", "", "columns for csv/tsv: "+strings.Join(output.FieldKeys, ","))
	fs.StringVar(&f.sort, "sort", "", "sort keys, prefix - for descending: "+strings.Join(output.SortKeys, ","))
	fs.BoolVarP(&f.context, "context", "C", false, "print surrounding lines with syntax highlighting")
	fs.StringVar(&f.style, "style", "", "chroma style for --context (default: monokai)")
	fs.BoolVar(&f.progress, "progress", false, "force progress output on stderr")
	fs.BoolVar(&f.noProgress, "no-progress", false, "disable progress output")
}

func (f *searchFlags) searchLayer(cmd *cobra.Command) config.SearchConfig {
	fs := cmd.Flags()
	var layer config.SearchConfig
	if fs.Changed("root") {
		layer.Root = &f.root
	}
	if fs.Changed("case-sensitive") {
		layer.CaseSensitive = &f.caseSensitive
	}
	if fs.Changed("word") {
		layer.WholeWord = &f.wholeWord
	}
	if fs.Changed("include") {
		layer.Include = &f.include
	}
	if fs.Changed("exclude") {
		layer.Exclude = &f.exclude
	}
	if fs.Changed("langs") {
		layer.Langs = &f.langs
	}
	if fs.Changed("categories") {
		layer.Categories = &f.categories
	}
	if fs.Changed("max-results") {
		layer.MaxResults = &f.maxResults
	}
	if fs.Changed("max-file-bytes") {
		layer.MaxFileBytes = &f.maxFileBytes
	}
	if fs.Changed("exclude-typical") {
		layer.ExcludeTypical = &f.excludeTypical
	}
	if fs.Changed("jobs") {
		layer.Jobs = &f.jobs
	}
	if fs.Changed("with-links") {
		layer.WithLinks = &f.withLinks
	}
	if fs.Changed("output") {
		layer.Output = &f.output
	}
	if fs.Changed("color") {
		layer.Color = &f.color
	}
	return layer
}

func (f *searchFlags) uiLayer(cmd *cobra.Command) config.UIConfig {
	fs := cmd.Flags()
	var layer config.UIConfig
	if fs.Changed("fields") {
		layer.Fields = &f.fields
	}
	if fs.Changed("sort") {
		layer.Sort = &f.sort
	}
	if fs.Changed("context") {
		layer.Context = &f.context
	}
	if fs.Changed("style") {
		layer.Style = &f.style
	}
	return layer
}

// settings はフラグ・環境変数・設定ファイル・既定値を合成した結果です。
type settings struct {
	opts   engine.Options
	search config.SearchSettings
	ui     config.UISettings
	source string // 読み込んだ設定ファイル
}

func (a *app) resolveSettings(cmd *cobra.Command, f *searchFlags, uiLayer config.UIConfig) (settings, error) {
	var s settings
	startDir := "."
	if cmd.Flags().Changed("root") {
		startDir = f.root
	} else if v := strings.TrimSpace(a.getenv(config.EnvPrefix + "ROOT")); v != "" {
		startDir = v
	}
	layers, err := config.Discover(startDir, f.configPath, a.getenv)
	if err != nil {
		return s, usageError{fmt.Errorf("config: %w", err)}
	}
	s.source = layers.Path

	base := config.SearchSettingsFromOptions(opts.Defaults("."))
	search := config.MergeSearch(base, layers.File.Search, layers.Env.Search, f.searchLayer(cmd))
	if s.search, err = config.NormalizeSearch(search); err != nil {
		return s, usageError{err}
	}
	ui := config.MergeUI(config.DefaultUISettings(), layers.File.UI, layers.Env.UI, uiLayer)
	if s.ui, err = config.NormalizeUI(ui); err != nil {
		return s, usageError{err}
	}

	s.opts = opts.Defaults(s.search.Root)
	if err := s.search.ApplyToOptions(&s.opts); err != nil {
		return s, usageError{err}
	}
	if s.opts.Jobs == 0 {
		s.opts.Jobs = opts.Defaults(".").Jobs
	}
	return s, nil
}

func newSearchCmd(a *app) *cobra.Command {
	var (
		f       searchFlags
		explain bool
		watchOn bool
	)
	cmd := &cobra.Command{
		Use:   "search TERM",
		Short: "Find usages of TERM and group them by category",
		Long: `Search every file under --root for TERM and classify each occurrence
(import, function definition, property access, comment, ...).

Matches are grouped by category in display order. Use --output to export
json, ndjson, csv, tsv or a markdown report.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return a.runSearch(cmd, &f, args[0], explain, watchOn)
		},
	}
	addSearchFlags(cmd, &f)
	cmd.Flags().BoolVar(&explain, "explain", false, "show which classification rule matched (table output)")
	cmd.Flags().BoolVar(&watchOn, "watch", false, "re-run the search when files change")
	return cmd
}

func (a *app) runSearch(cmd *cobra.Command, f *searchFlags, term string, explain, watchOn bool) error {
	s, err := a.resolveSettings(cmd, f, f.uiLayer(cmd))
	if err != nil {
		return err
	}
	s.opts.Term = term
	if err := opts.NormalizeAndValidate(&s.opts); err != nil {
		return usageError{err}
	}
	r, err := a.newRenderer(s, explain)
	if err != nil {
		return err
	}
	if progress.ShouldShowProgress(f.progress, f.noProgress) {
		s.opts.ProgressObserver = progress.NewAutoObserver(a.stderr)
	}

	ctx := cmd.Context()
	res, err := a.runner.Run(ctx, s.opts)
	if err != nil {
		return searchError(err)
	}
	if err := r.render(a.stdout, res); err != nil {
		return err
	}
	a.reportErrors(res)
	if !watchOn {
		return nil
	}

	fmt.Fprintf(a.stderr, "watching %s for changes (Ctrl-C to stop)\n", s.opts.Root)
	err = watch.Run(ctx, watch.Options{
		Root:           s.opts.Root,
		ExcludeTypical: s.opts.ExcludeTypical,
		OnError:        func(err error) { fmt.Fprintf(a.stderr, "watch: %v\n", err) },
	}, func(ctx context.Context, changed []string) error {
		res, err := a.runner.Run(ctx, s.opts)
		if err != nil {
			return searchError(err)
		}
		fmt.Fprintf(a.stdout, "\n── %s  %s\n\n", time.Now().Format("15:04:05"), summarizeChanges(changed))
		if err := r.render(a.stdout, res); err != nil {
			return err
		}
		a.reportErrors(res)
		return nil
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func searchError(err error) error {
	if errors.Is(err, engine.ErrEmptyTerm) || errors.Is(err, engine.ErrInvalidPattern) {
		return usageError{err}
	}
	return err
}

func (a *app) reportErrors(res *engine.Result) {
	for _, e := range res.Errors {
		if e.Line > 0 {
			fmt.Fprintf(a.stderr, "warning: %s:%d: %s: %s\n", e.File, e.Line, e.Stage, e.Message)
			continue
		}
		fmt.Fprintf(a.stderr, "warning: %s: %s: %s\n", e.File, e.Stage, e.Message)
	}
}

func summarizeChanges(changed []string) string {
	const shown = 3
	if len(changed) <= shown {
		return strings.Join(changed, ", ")
	}
	return fmt.Sprintf("%s and %d more", strings.Join(changed[:shown], ", "), len(changed)-shown)
}
