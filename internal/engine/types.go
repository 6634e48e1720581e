package engine

import (
	"github.com/phyten/usagex/internal/execx"
	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/progress"
)

// ItemError は 1 ファイル (または 1 行) の処理に失敗した際の情報を表す
type ItemError struct {
	File    string `json:"file"`
	Line    int    `json:"line,omitempty"`
	Stage   string `json:"stage"`
	Message string `json:"message"`
}

// Options は検索の実行オプション
type Options struct {
	Term           string
	Root           string
	CaseSensitive  bool
	WholeWord      bool
	Include        []string // doublestar パターン (Root からの相対パスに適用)
	Exclude        []string
	Langs          []string // 空なら全言語
	Categories     []model.Category
	MaxResults     int // 0 は無制限
	MaxFileBytes   int // 0 は無制限
	ExcludeTypical bool
	Jobs           int
	WithLinks      bool
	Progress       bool

	ProgressObserver progress.Observer `json:"-"`
	// GitRunner は WithLinks 時の git 呼び出しに使う。nil なら実コマンド。
	GitRunner execx.Runner `json:"-"`
}

// Result は出力
type Result struct {
	SearchID     string        `json:"search_id"`
	Term         string        `json:"term"`
	Items        []model.Match `json:"items"`
	Groups       []model.Group `json:"groups"`
	Total        int           `json:"total"`
	FileCount    int           `json:"file_count"`
	ScannedFiles int           `json:"scanned_files"`
	Truncated    bool          `json:"truncated"`
	HasURL       bool          `json:"has_url"`
	ElapsedMS    int64         `json:"elapsed_ms"`
	Errors       []ItemError   `json:"errors,omitempty"`
	ErrorCount   int           `json:"error_count"`
}

// CategoryCounts はカテゴリごとの件数を表示順で返します (0 件のカテゴリは含めない)。
func (r *Result) CategoryCounts() []model.Group {
	out := make([]model.Group, 0, len(r.Groups))
	for _, g := range r.Groups {
		out = append(out, model.Group{Category: g.Category, Label: g.Label, Count: g.Count})
	}
	return out
}
