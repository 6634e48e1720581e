package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/usagex/internal/model"
)

type Field struct {
	Key    string
	Header string
}

type FieldSelection struct {
	Fields  []Field
	ShowURL bool
}

// FieldKeys は --fields で指定できるキーの一覧 (表示順) です。
var FieldKeys = []string{"category", "location", "file", "line", "column", "lang", "function", "class", "imports", "text", "url"}

var fieldHeaders = map[string]string{
	"category": "CATEGORY",
	"location": "LOCATION",
	"file":     "FILE",
	"line":     "LINE",
	"column":   "COLUMN",
	"lang":     "LANG",
	"function": "FUNCTION",
	"class":    "CLASS",
	"imports":  "IMPORTS",
	"text":     "TEXT",
	"url":      "URL",
}

// 別名
var fieldAliases = map[string]string{
	"col":      "column",
	"language": "lang",
	"func":     "function",
	"kind":     "category",
	"loc":      "location",
}

// ResolveFields は --fields の値 (カンマ区切り) を解釈します。
// 空なら category,location,function,class,text に、withURL のとき url を加えたものです。
func ResolveFields(raw string, withURL bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	var keys []string
	if raw == "" {
		keys = []string{"category", "location", "function", "class", "text"}
		if withURL {
			keys = append(keys, "url")
		}
	} else {
		for _, part := range strings.Split(raw, ",") {
			name := strings.ToLower(strings.TrimSpace(part))
			if name == "" {
				return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
			}
			if canonical, ok := fieldAliases[name]; ok {
				name = canonical
			}
			if _, ok := fieldHeaders[name]; !ok {
				return FieldSelection{}, fmt.Errorf("unknown field: %s", strings.TrimSpace(part))
			}
			keys = append(keys, name)
		}
	}
	sel := FieldSelection{Fields: make([]Field, 0, len(keys))}
	for _, key := range keys {
		sel.Fields = append(sel.Fields, Field{Key: key, Header: fieldHeaders[key]})
		if key == "url" {
			sel.ShowURL = true
		}
	}
	return sel, nil
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(m model.Match, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = FieldValue(m, f.Key)
	}
	return out
}

// Location は file:line:col を 1 始まりで返します。
func Location(m model.Match) string {
	return fmt.Sprintf("%s:%d:%d", m.File, m.Line+1, m.Column+1)
}

// FieldValue はテキスト系の出力で使う値を返します。行・桁は人が読む前提で 1 始まりです。
func FieldValue(m model.Match, key string) string {
	switch key {
	case "category":
		return string(m.Category)
	case "location":
		return Location(m)
	case "file":
		return m.File
	case "line":
		return strconv.Itoa(m.Line + 1)
	case "column":
		return strconv.Itoa(m.Column + 1)
	case "lang":
		return m.Lang
	case "function":
		return m.Context.Function()
	case "class":
		return m.Context.Class()
	case "imports":
		return strings.Join(m.Context.ImportedItems, ", ")
	case "text":
		return strings.TrimSpace(m.Text)
	case "url":
		return m.URL
	default:
		return ""
	}
}
