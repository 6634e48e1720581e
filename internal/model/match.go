package model

// MatchContext は 1 件のマッチについて算出した周辺情報です。
// FunctionName / ClassName は見つからなければ nil、ImportedItems は
// import 文の行でのみ非 nil になります。JSON では import 以外の行は
// imported_items が null、識別子のない import 行は [] です。
type MatchContext struct {
	IsInComment      bool     `json:"is_in_comment"`
	IsInString       bool     `json:"is_in_string"`
	FunctionName     *string  `json:"function_name,omitempty"`
	ClassName        *string  `json:"class_name,omitempty"`
	SurroundingLines []string `json:"surrounding_lines"`
	ImportedItems    []string `json:"imported_items"`
}

// Span は 1 件の検出範囲を 0 始まりの行・桁 (バイト単位) で表します。
type Span struct {
	StartLine int `json:"start_line"`
	StartCol  int `json:"start_col"`
	EndLine   int `json:"end_line"`
	EndCol    int `json:"end_col"`
}

// Match は検索語の 1 出現を表すレコードです。生成後は変更しません。
type Match struct {
	SearchID string       `json:"search_id"`
	Term     string       `json:"term"`
	File     string       `json:"file"`
	Lang     string       `json:"lang,omitempty"`
	Line     int          `json:"line"`
	Column   int          `json:"column"`
	Text     string       `json:"text"`
	Category Category     `json:"category"`
	Context  MatchContext `json:"context"`
	Span     Span         `json:"span"`
	URL      string       `json:"url,omitempty"`
}

// Group はカテゴリごとにまとめたマッチ一覧です。
type Group struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
	Items    []Match  `json:"items"`
}

// GroupByCategory は表示順でグループを作ります。空のカテゴリは含めません。
func GroupByCategory(items []Match) []Group {
	buckets := make(map[Category][]Match)
	for _, it := range items {
		buckets[it.Category] = append(buckets[it.Category], it)
	}
	groups := make([]Group, 0, len(buckets))
	for _, cat := range categoryOrder {
		list := buckets[cat]
		if len(list) == 0 {
			continue
		}
		groups = append(groups, Group{Category: cat, Label: cat.Label(), Count: len(list), Items: list})
		delete(buckets, cat)
	}
	return groups
}

func (c MatchContext) Function() string {
	if c.FunctionName == nil {
		return ""
	}
	return *c.FunctionName
}

func (c MatchContext) Class() string {
	if c.ClassName == nil {
		return ""
	}
	return *c.ClassName
}
