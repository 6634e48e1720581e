package engine

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/cespare/xxhash/v2"

	"github.com/phyten/usagex/internal/analyze"
	"github.com/phyten/usagex/internal/detect"
	"github.com/phyten/usagex/internal/model"
)

// バイナリ判定で先頭から調べるバイト数
const binarySniffBytes = 8000

// CompileTerm は検索語をリテラルとして扱う正規表現を作ります。
// wholeWord のとき、語の端が単語文字である側にだけ \b を付けます。
func CompileTerm(term string, caseSensitive, wholeWord bool) (*regexp.Regexp, error) {
	if strings.TrimSpace(term) == "" {
		return nil, ErrEmptyTerm
	}
	pattern := regexp.QuoteMeta(term)
	if wholeWord {
		if isWordByte(term[0]) {
			pattern = `\b` + pattern
		}
		if isWordByte(term[len(term)-1]) {
			pattern += `\b`
		}
	}
	if !caseSensitive {
		pattern = "(?i)" + pattern
	}
	return regexp.Compile(pattern)
}

func isWordByte(b byte) bool {
	return b == '_' || ('0' <= b && b <= '9') || ('a' <= b && b <= 'z') || ('A' <= b && b <= 'Z')
}

// signature は検索語と照合条件の組で、キャッシュの有効性判定に使う
func signature(term string, caseSensitive, wholeWord bool) string {
	return fmt.Sprintf("%s\x00%t\x00%t", term, caseSensitive, wholeWord)
}

// scanOutcome は 1 ファイル分の処理結果
type scanOutcome struct {
	lang    string
	skipped bool // サイズ超過・バイナリ・言語フィルタで解析しなかった
	matches []model.Match
	err     *ItemError
}

// fileScanner は 1 回の検索で共有する不変の設定です。
type fileScanner struct {
	re           *regexp.Regexp
	term         string
	sig          string
	langs        []string
	maxFileBytes int
	cache        *fileCache
}

func (s *fileScanner) scan(ref fileRef) scanOutcome {
	info, err := os.Stat(ref.abs)
	if err != nil {
		return scanOutcome{err: ptrErr(newItemError(ref.rel, 0, "stat", err))}
	}
	if s.maxFileBytes > 0 && info.Size() > int64(s.maxFileBytes) {
		return scanOutcome{skipped: true}
	}
	if entry, ok := s.cache.lookupStat(ref.rel, s.sig, info); ok && s.reusable(entry) {
		return s.fromEntry(entry)
	}
	readAt := s.cache.stamp()
	data, err := os.ReadFile(ref.abs)
	if err != nil {
		return scanOutcome{err: ptrErr(newItemError(ref.rel, 0, "read", err))}
	}
	sum := xxhash.Sum64(data)
	if entry, ok := s.cache.lookupSum(ref.rel, s.sig, sum, info, readAt); ok && s.reusable(entry) {
		return s.fromEntry(entry)
	}
	entry := cacheEntry{sig: s.sig, sum: sum, size: info.Size(), modTime: info.ModTime(), checked: readAt}
	if isBinary(data) {
		entry.binary = true
	} else {
		entry.lang = detect.FromPathAndContent(ref.rel, data).Name
		if detect.MatchesLang(detect.Info{Name: entry.lang}, s.langs) {
			entry.matches = s.findMatches(ref.rel, entry.lang, data)
			entry.analyzed = true
		}
	}
	s.cache.store(ref.rel, entry)
	return s.fromEntry(entry)
}

// reusable は前回言語フィルタで解析を省いたエントリが、今回の条件でも使えるかを返す
func (s *fileScanner) reusable(e cacheEntry) bool {
	return e.binary || e.analyzed || !detect.MatchesLang(detect.Info{Name: e.lang}, s.langs)
}

// fromEntry は言語フィルタを今回の条件で評価し直してから結果を返す
func (s *fileScanner) fromEntry(e cacheEntry) scanOutcome {
	if e.binary || !e.analyzed || !detect.MatchesLang(detect.Info{Name: e.lang}, s.langs) {
		return scanOutcome{lang: e.lang, skipped: true}
	}
	return scanOutcome{lang: e.lang, matches: e.matches}
}

func (s *fileScanner) findMatches(rel, lang string, data []byte) []model.Match {
	lines := strings.Split(string(data), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	var out []model.Match
	for n, line := range lines {
		for _, loc := range s.re.FindAllStringIndex(line, -1) {
			if loc[0] == loc[1] {
				continue
			}
			matched := line[loc[0]:loc[1]]
			ctx := analyze.Context(line, loc[0], lines, n)
			out = append(out, model.Match{
				Term:     s.term,
				File:     rel,
				Lang:     lang,
				Line:     n,
				Column:   loc[0],
				Text:     line,
				Category: analyze.Categorize(line, loc[0], matched, ctx, lines, n, lang),
				Context:  ctx,
				Span:     model.Span{StartLine: n, StartCol: loc[0], EndLine: n, EndCol: loc[1]},
			})
		}
	}
	return out
}

func isBinary(data []byte) bool {
	sample := data
	if len(sample) > binarySniffBytes {
		sample = sample[:binarySniffBytes]
	}
	return bytes.IndexByte(sample, 0) >= 0
}

func ptrErr(e ItemError) *ItemError { return &e }
