package engine

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// ExcludeTypical で飛ばすディレクトリ名
var typicalExcludeDirs = map[string]struct{}{
	"node_modules": {},
	"vendor":       {},
	"dist":         {},
	"build":        {},
	"out":          {},
	".next":        {},
	"coverage":     {},
	"__pycache__":  {},
}

// VCS のメタデータは常に走査しない
var vcsDirs = map[string]struct{}{".git": {}, ".hg": {}, ".svn": {}}

// VCSDir は name が常に走査しない VCS ディレクトリかを返します。
func VCSDir(name string) bool {
	_, ok := vcsDirs[name]
	return ok
}

// TypicalExcludeDir は name が ExcludeTypical で除外されるディレクトリ名かを返します。
func TypicalExcludeDir(name string) bool {
	if _, ok := vcsDirs[name]; ok {
		return true
	}
	_, ok := typicalExcludeDirs[name]
	return ok
}

type fileRef struct {
	abs string
	rel string // Root からの相対パス (スラッシュ区切り)
}

// pathMatcher は include / exclude の doublestar パターンを保持します。
// "/" を含まないパターンはベース名にも適用する (例: "*.ts" は全階層の .ts に当たる)。
type pathMatcher struct {
	include []string
	exclude []string
}

func newPathMatcher(include, exclude []string) (*pathMatcher, error) {
	for _, group := range [][]string{include, exclude} {
		for _, p := range group {
			if !doublestar.ValidatePattern(p) {
				return nil, fmt.Errorf("%w: %q", ErrInvalidPattern, p)
			}
		}
	}
	return &pathMatcher{include: cleanPatterns(include), exclude: cleanPatterns(exclude)}, nil
}

func cleanPatterns(patterns []string) []string {
	out := make([]string, 0, len(patterns))
	for _, p := range patterns {
		p = strings.TrimPrefix(filepath.ToSlash(strings.TrimSpace(p)), "./")
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

func matchAny(patterns []string, rel string) bool {
	base := path.Base(rel)
	for _, p := range patterns {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.Contains(p, "/") {
			if ok, _ := doublestar.Match(p, base); ok {
				return true
			}
		}
	}
	return false
}

// allowFile は include (空なら全件) に当たり、exclude に当たらないファイルかを返します。
func (m *pathMatcher) allowFile(rel string) bool {
	if matchAny(m.exclude, rel) {
		return false
	}
	return len(m.include) == 0 || matchAny(m.include, rel)
}

// pruneDir は exclude がディレクトリ自体、または配下全体 (dir/**) に当たるかを返します。
func (m *pathMatcher) pruneDir(rel string) bool {
	return matchAny(m.exclude, rel) || matchAny(m.exclude, rel+"/")
}

// walk は root 配下の通常ファイルを辞書順に列挙します。
// onFile は列挙の進捗通知用で、nil でもよい。
func walk(ctx context.Context, root string, excludeTypical bool, m *pathMatcher, onFile func()) ([]fileRef, []ItemError, error) {
	var files []fileRef
	var errs []ItemError
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		rel, relErr := filepath.Rel(root, p)
		if relErr != nil {
			return relErr
		}
		rel = filepath.ToSlash(rel)
		if err != nil {
			if p == root {
				return err
			}
			errs = append(errs, newItemError(rel, 0, "walk", err))
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p == root {
				return nil
			}
			name := d.Name()
			if _, ok := vcsDirs[name]; ok {
				return fs.SkipDir
			}
			if excludeTypical {
				if _, ok := typicalExcludeDirs[name]; ok {
					return fs.SkipDir
				}
			}
			if m.pruneDir(rel) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if !m.allowFile(rel) {
			return nil
		}
		files = append(files, fileRef{abs: p, rel: rel})
		if onFile != nil {
			onFile()
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return files, errs, nil
}
