// Package watch はファイルの変更を監視し、落ち着いたところで検索をやり直すための仕組みです。
package watch

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/phyten/usagex/internal/engine"
)

// DefaultDebounce は最後のイベントから再実行までの待ち時間です。
const DefaultDebounce = 300 * time.Millisecond

type Options struct {
	Root           string
	Debounce       time.Duration
	ExcludeTypical bool
	// OnError は fsnotify のエラーを受け取ります。nil なら捨てます。
	OnError func(error)
}

// ChangeFunc は変更されたパス (Root からの相対、スラッシュ区切り、昇順) を受け取ります。
// エラーを返すと Run はそのエラーで終了します。
type ChangeFunc func(ctx context.Context, changed []string) error

// Run は Root 以下を監視し、Write / Create / Remove / Rename のイベントが
// Debounce の間途切れたら onChange を呼びます。ctx が終わるまで戻りません。
func Run(ctx context.Context, opt Options, onChange ChangeFunc) error {
	if opt.Debounce <= 0 {
		opt.Debounce = DefaultDebounce
	}
	root, err := filepath.Abs(opt.Root)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := addRecursive(w, root, opt.ExcludeTypical); err != nil {
		return err
	}

	timer := time.NewTimer(opt.Debounce)
	timer.Stop()
	defer timer.Stop()
	pending := make(map[string]struct{})

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !relevant(ev.Op) {
				continue
			}
			rel, skip := relPath(root, ev.Name, opt.ExcludeTypical)
			if skip {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() && !skipDir(info.Name(), opt.ExcludeTypical) {
					_ = addRecursive(w, ev.Name, opt.ExcludeTypical)
				}
			}
			pending[rel] = struct{}{}
			timer.Reset(opt.Debounce)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			if opt.OnError != nil {
				opt.OnError(err)
			}

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			sort.Strings(changed)
			clear(pending)
			if err := onChange(ctx, changed); err != nil {
				if errors.Is(err, context.Canceled) && ctx.Err() != nil {
					return ctx.Err()
				}
				return err
			}
		}
	}
}

func relevant(op fsnotify.Op) bool {
	return op.Has(fsnotify.Write) || op.Has(fsnotify.Create) || op.Has(fsnotify.Remove) || op.Has(fsnotify.Rename)
}

// relPath は監視対象外のディレクトリ配下なら skip=true を返します。
func relPath(root, name string, excludeTypical bool) (string, bool) {
	rel, err := filepath.Rel(root, name)
	if err != nil {
		return "", true
	}
	rel = filepath.ToSlash(rel)
	dir := filepath.Dir(filepath.FromSlash(rel))
	for dir != "." && dir != string(filepath.Separator) && dir != "" {
		if skipDir(filepath.Base(dir), excludeTypical) {
			return "", true
		}
		dir = filepath.Dir(dir)
	}
	return rel, false
}

func skipDir(name string, excludeTypical bool) bool {
	if excludeTypical {
		return engine.TypicalExcludeDir(name)
	}
	return engine.VCSDir(name)
}

func addRecursive(w *fsnotify.Watcher, dir string, excludeTypical bool) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == dir {
				return err
			}
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != dir && skipDir(d.Name(), excludeTypical) {
			return filepath.SkipDir
		}
		// 権限のないディレクトリなどは監視せずに続ける
		_ = w.Add(path)
		return nil
	})
}
