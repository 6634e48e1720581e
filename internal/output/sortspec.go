package output

import (
	"cmp"
	"fmt"
	"sort"
	"strings"

	"github.com/phyten/usagex/internal/model"
)

type SortKey struct {
	Name string
	Desc bool
}

type SortSpec struct {
	Keys []SortKey
}

// SortKeys は --sort で指定できるキーです。location は file,line,column の省略形です。
var SortKeys = []string{"category", "file", "line", "column", "lang", "location"}

// ParseSortSpec は "category,-file" のようなカンマ区切りの指定を解釈します。
// 先頭の + は昇順 (既定)、- は降順です。
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortSpec{}, nil
	}
	var keys []SortKey
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: empty segment")
		}
		desc := false
		switch token[0] {
		case '+':
			token = token[1:]
		case '-':
			desc = true
			token = token[1:]
		}
		name := strings.ToLower(strings.TrimSpace(token))
		switch name {
		case "":
			return SortSpec{}, fmt.Errorf("invalid sort key: sign without name")
		case "location":
			keys = append(keys, SortKey{"file", desc}, SortKey{"line", desc}, SortKey{"column", desc})
		case "col":
			keys = append(keys, SortKey{"column", desc})
		case "category", "file", "line", "column", "lang":
			keys = append(keys, SortKey{name, desc})
		default:
			return SortSpec{}, fmt.Errorf("invalid sort key: %s", strings.TrimSpace(token))
		}
	}
	return SortSpec{Keys: keys}, nil
}

func (s SortSpec) String() string {
	parts := make([]string, len(s.Keys))
	for i, k := range s.Keys {
		if k.Desc {
			parts[i] = "-" + k.Name
		} else {
			parts[i] = k.Name
		}
	}
	return strings.Join(parts, ",")
}

// ApplySort は items を安定ソートします。指定キーで決まらない場合は file,line,column の昇順です。
// category はカテゴリの表示順で比べます。
func ApplySort(items []model.Match, spec SortSpec) {
	keys := append(append([]SortKey{}, spec.Keys...), SortKey{Name: "file"}, SortKey{Name: "line"}, SortKey{Name: "column"})
	sort.SliceStable(items, func(i, j int) bool {
		a, b := &items[i], &items[j]
		for _, key := range keys {
			var c int
			switch key.Name {
			case "category":
				c = cmp.Compare(a.Category.Rank(), b.Category.Rank())
			case "file":
				c = strings.Compare(a.File, b.File)
			case "line":
				c = cmp.Compare(a.Line, b.Line)
			case "column":
				c = cmp.Compare(a.Column, b.Column)
			case "lang":
				c = strings.Compare(a.Lang, b.Lang)
			}
			if c == 0 {
				continue
			}
			if key.Desc {
				return c > 0
			}
			return c < 0
		}
		return false
	})
}
