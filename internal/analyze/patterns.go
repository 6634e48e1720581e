package analyze

import (
	"fmt"
	"regexp"
	"strings"
	"sync"
)

// languageFamily は定義・宣言判定に使うパターン集合の種別です。
type languageFamily int

const (
	familyScript languageFamily = iota // JavaScript / TypeScript (既定)
	familyPython
	familyJavaLike
)

func (f languageFamily) String() string {
	switch f {
	case familyPython:
		return "python"
	case familyJavaLike:
		return "java"
	default:
		return "script"
	}
}

func familyOf(languageID string) languageFamily {
	switch normalizeLanguageID(languageID) {
	case "python":
		return familyPython
	case "java", "csharp":
		return familyJavaLike
	default:
		return familyScript
	}
}

func normalizeLanguageID(languageID string) string {
	return strings.ToLower(strings.TrimSpace(languageID))
}

// patternTemplate の %[1]s には QuoteMeta 済みの検索語が入る。
// %[1]s を含まないテンプレートは行の形だけを見るので、検索語によらずそのまま使う。
type patternTemplate struct {
	definitions  []string
	declarations []string
	// exclude に当たる行は definitions / declarations の対象外
	exclude string
}

var familyTemplates = map[languageFamily]patternTemplate{
	familyScript: {
		definitions: []string{
			`^(export\s+)?(default\s+)?(async\s+)?function\s*\*?\s*%[1]s\s*\(`,
			`^(export\s+)?(const|let|var)\s+%[1]s\s*=\s*(async\s+)?(\([^)]*\)|\w+)\s*(:\s*[^=]+)?=>`,
			`^(export\s+)?(const|let|var)\s+%[1]s\s*=\s*(async\s+)?function\b`,
			`^((public|private|protected|static|async|get|set|override|readonly)\s+)*%[1]s\s*(<[^>]*>)?\s*\([^)]*\)\s*(:\s*[^{]+)?\{`,
			`^%[1]s\s*:\s*(async\s+)?function\b`,
		},
		declarations: []string{
			// 宣言キーワードの直後が検索語のときだけ。const a = b.c の c は property-access に回す
			`^(export\s+)?(const|let|var)\s+%[1]s\b`,
			`^.*:\s*[A-Za-z]`,
		},
	},
	familyPython: {
		definitions: []string{
			`^(async\s+)?def\s+%[1]s\s*\(`,
			`^%[1]s\s*=\s*lambda\b`,
		},
		declarations: []string{
			`^\s*\w+\s*=`,
		},
	},
	familyJavaLike: {
		definitions: []string{
			`^((public|private|protected|internal|static|final|abstract|override|virtual|async|synchronized|native|sealed|extern|partial|unsafe|new)\s+)*[\w<>\[\],.?]+\s+%[1]s\s*(<[^>]*>)?\s*\(`,
			`^(public|private|protected|internal)\s+%[1]s\s*\(`,
		},
		declarations: []string{
			`^((public|private|protected|internal|static|final|readonly|const|volatile|transient)\s+)*[\w<>\[\],.?]+\s+%[1]s\s*(=|;)`,
			`^var\s+%[1]s\b`,
		},
		exclude: `^(return|throw|yield|await|new|case|else|goto)\b`,
	},
}

// patternSet は検索語ごとにコンパイル済みのパターン集合です。
type patternSet struct {
	definitions  []*regexp.Regexp
	declarations []*regexp.Regexp
	exclude      *regexp.Regexp
	component    []*regexp.Regexp
}

func (ps *patternSet) excluded(trimmed string) bool {
	return ps.exclude != nil && ps.exclude.MatchString(trimmed)
}

// 同じ検索語で何千回も呼ばれるため、コンパイル結果を保持する。
// 値は不変なので読み取りは並行で安全。
var patternCache sync.Map

func patternsFor(family languageFamily, term string) *patternSet {
	key := family.String() + "\x00" + term
	if cached, ok := patternCache.Load(key); ok {
		return cached.(*patternSet)
	}
	quoted := regexp.QuoteMeta(term)
	tpl := familyTemplates[family]
	ps := &patternSet{
		definitions:  compileAll(tpl.definitions, quoted),
		declarations: compileAll(tpl.declarations, quoted),
		component: []*regexp.Regexp{
			regexp.MustCompile(`<` + quoted + `[\s/>]`),
			regexp.MustCompile(`</` + quoted + `>`),
		},
	}
	if tpl.exclude != "" {
		ps.exclude = regexp.MustCompile(tpl.exclude)
	}
	actual, _ := patternCache.LoadOrStore(key, ps)
	return actual.(*patternSet)
}

func compileAll(templates []string, quoted string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(templates))
	for _, tpl := range templates {
		if strings.Contains(tpl, "%[1]s") {
			tpl = fmt.Sprintf(tpl, quoted)
		}
		out = append(out, regexp.MustCompile(tpl))
	}
	return out
}
