package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/phyten/usagex/internal/gitremote"
	"github.com/phyten/usagex/internal/link"
	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/progress"
)

// ErrEmptyTerm は検索語が空 (空白のみ) のときに返る
var ErrEmptyTerm = errors.New("search term is empty")

// ErrInvalidPattern は include / exclude の glob が不正なときに返ります。
var ErrInvalidPattern = errors.New("invalid glob pattern")

// Runner は検索を繰り返し実行するためのもので、ファイルごとの解析結果をキャッシュします。
// watch モードのように同じルートを何度も検索する場合、内容が変わっていないファイルは再解析しません。
// 同時に複数の Run を呼んでも安全です。
type Runner struct {
	cache *fileCache
}

func NewRunner() *Runner {
	return &Runner{cache: newFileCache()}
}

// CachedFiles はキャッシュ済みのファイル数を返します。
func (r *Runner) CachedFiles() int {
	return r.cache.count()
}

// Run はキャッシュを使わずに 1 回だけ検索します。
func Run(ctx context.Context, opts Options) (*Result, error) {
	return (&Runner{}).Run(ctx, opts)
}

// Run は opts.Root 配下のファイルから検索語の出現をすべて探し、1 件ずつ周辺情報と
// 用途カテゴリを付けて返します。
//
// ファイル単位の読み込み失敗は Result.Errors に集約して処理を続けます。
// ctx がキャンセルされた場合は途中結果を捨てて ctx.Err() を返します。
func (r *Runner) Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	if strings.TrimSpace(opts.Term) == "" {
		return nil, ErrEmptyTerm
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if strings.TrimSpace(opts.Root) == "" {
		opts.Root = "."
	}
	root, err := filepath.Abs(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	re, err := CompileTerm(opts.Term, opts.CaseSensitive, opts.WholeWord)
	if err != nil {
		return nil, err
	}
	matcher, err := newPathMatcher(opts.Include, opts.Exclude)
	if err != nil {
		return nil, err
	}
	obs := opts.ProgressObserver
	if obs == nil {
		obs = progress.NoopObserver{}
	}
	tracker := progress.NewTracker(progress.Config{})

	files, errs, err := walk(ctx, root, opts.ExcludeTypical, matcher, func() {
		if snap, notify := tracker.Advance(1, 0); notify {
			obs.Publish(snap)
		}
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("walk %s: %w", opts.Root, err)
	}
	obs.Publish(tracker.Begin(len(files)))

	scanner := &fileScanner{
		re:           re,
		term:         opts.Term,
		sig:          signature(opts.Term, opts.CaseSensitive, opts.WholeWord),
		langs:        opts.Langs,
		maxFileBytes: opts.MaxFileBytes,
		cache:        r.cache,
	}
	outcomes := make([]scanOutcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.Jobs)
	for i, f := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = scanner.scan(f)
			if snap, notify := tracker.Advance(1, len(outcomes[i].matches)); notify {
				obs.Publish(snap)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	obs.Done(tracker.Snapshot())

	keep := make(map[string]struct{}, len(files))
	for _, f := range files {
		keep[f.rel] = struct{}{}
	}
	r.cache.retain(keep)

	searchID := uuid.NewString()
	allowCat := categorySet(opts.Categories)
	var items []model.Match
	scanned := 0
	for _, out := range outcomes {
		if out.err != nil {
			errs = append(errs, *out.err)
			continue
		}
		if out.skipped {
			continue
		}
		scanned++
		for _, m := range out.matches {
			if allowCat != nil {
				if _, ok := allowCat[m.Category]; !ok {
					continue
				}
			}
			m.SearchID = searchID
			items = append(items, m)
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		if a.File != b.File {
			return a.File < b.File
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Column < b.Column
	})
	total := len(items)
	truncated := false
	if opts.MaxResults > 0 && len(items) > opts.MaxResults {
		items = items[:opts.MaxResults]
		truncated = true
	}

	hasURL := false
	if opts.WithLinks && len(items) > 0 {
		linkErr := attachLinks(ctx, opts, root, items)
		if linkErr != nil {
			errs = append(errs, *linkErr)
		} else {
			hasURL = true
		}
	}

	sortItemErrors(errs)
	if items == nil {
		items = []model.Match{}
	}
	return &Result{
		SearchID:     searchID,
		Term:         opts.Term,
		Items:        items,
		Groups:       model.GroupByCategory(items),
		Total:        total,
		FileCount:    countFiles(items),
		ScannedFiles: scanned,
		Truncated:    truncated,
		HasURL:       hasURL,
		ElapsedMS:    msSince(start),
		Errors:       errs,
		ErrorCount:   len(errs),
	}, nil
}

// attachLinks は HEAD 時点の blob URL を各マッチに設定します。
// リモートや HEAD が取れない場合は 1 件の ItemError を返し、URL は空のままにします。
func attachLinks(ctx context.Context, opts Options, root string, items []model.Match) *ItemError {
	repo, err := gitremote.Resolve(ctx, opts.GitRunner, root)
	if err != nil {
		return ptrErr(newItemError("", 0, "link", err))
	}
	base := root
	if resolved, err := filepath.EvalSymlinks(root); err == nil {
		base = resolved
	}
	if resolved, err := filepath.EvalSymlinks(repo.Root); err == nil {
		repo.Root = resolved
	}
	for i := range items {
		rel, ok := repo.RelPath(filepath.Join(base, filepath.FromSlash(items[i].File)))
		if !ok {
			continue
		}
		items[i].URL = link.Blob(repo.Info, repo.Revision, rel, items[i].Line+1)
	}
	return nil
}

func categorySet(cats []model.Category) map[model.Category]struct{} {
	if len(cats) == 0 {
		return nil
	}
	set := make(map[model.Category]struct{}, len(cats))
	for _, c := range cats {
		set[c] = struct{}{}
	}
	return set
}

func countFiles(items []model.Match) int {
	seen := make(map[string]struct{})
	for _, it := range items {
		seen[it.File] = struct{}{}
	}
	return len(seen)
}

func newItemError(file string, line int, stage string, err error) ItemError {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return ItemError{File: file, Line: line, Stage: stage, Message: msg}
}

func sortItemErrors(errs []ItemError) {
	sort.Slice(errs, func(i, j int) bool {
		if errs[i].File == errs[j].File {
			if errs[i].Line == errs[j].Line {
				return errs[i].Stage < errs[j].Stage
			}
			return errs[i].Line < errs[j].Line
		}
		return errs[i].File < errs[j].File
	})
}

func msSince(t time.Time) int64 { return time.Since(t).Milliseconds() }
