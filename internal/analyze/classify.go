package analyze

import (
	"regexp"
	"strings"

	"github.com/phyten/usagex/internal/model"
)

var (
	reTypeDef      = []*regexp.Regexp{regexp.MustCompile(`^type\s+`), regexp.MustCompile(`^export\s+type\s+`)}
	reInterfaceDef = []*regexp.Regexp{regexp.MustCompile(`^interface\s+`), regexp.MustCompile(`^export\s+interface\s+`)}
	reClassDef     = []*regexp.Regexp{
		regexp.MustCompile(`^class\s+`),
		regexp.MustCompile(`^export\s+class\s+`),
		regexp.MustCompile(`^abstract\s+class\s+`),
		regexp.MustCompile(`^public\s+class\s+`),
		regexp.MustCompile(`^private\s+class\s+`),
	}
	reBareKeyword = regexp.MustCompile(`^(const|let|var|function)\s*$`)
)

var (
	componentLanguages = map[string]struct{}{"typescriptreact": {}, "javascriptreact": {}, "vue": {}}
	typedLanguages     = map[string]struct{}{"typescript": {}, "typescriptreact": {}}
)

// subject は 1 回の判定で各ルールが参照する値をまとめたものです。
type subject struct {
	line       string
	trimmed    string
	before     string
	after      string
	ctx        model.MatchContext
	languageID string
	patterns   *patternSet
}

func (s *subject) afterStartsWith(prefix string) bool {
	return strings.HasPrefix(strings.TrimLeft(s.after, " \t"), prefix)
}

func (s *subject) beforeEndsWith(suffix string) bool {
	return strings.HasSuffix(strings.TrimRight(s.before, " \t"), suffix)
}

func (s *subject) inLanguages(set map[string]struct{}) bool {
	_, ok := set[s.languageID]
	return ok
}

type rule struct {
	name     string
	category model.Category
	test     func(*subject) bool
}

// rules は先頭から順に評価し、最初に成立したものを採用する。
// 並び順そのものが判定仕様なので入れ替えないこと。
// function-call は function-definition と同じ "(" 判定を含むが、順序を保つため残している。
var rules = []rule{
	{"comment", model.CategoryComment, func(s *subject) bool { return s.ctx.IsInComment }},
	{"string", model.CategoryStringLiteral, func(s *subject) bool { return s.ctx.IsInString }},
	{"import", model.CategoryImport, func(s *subject) bool { return IsImportLine(s.trimmed) }},
	{"export", model.CategoryExport, func(s *subject) bool { return IsExportLine(s.trimmed) }},
	{"function-definition", model.CategoryFunctionDefinition, isFunctionDefinition},
	{"variable-declaration", model.CategoryVariableDeclaration, isVariableDeclaration},
	{"function-call", model.CategoryFunctionCall, func(s *subject) bool { return s.afterStartsWith("(") }},
	{"component-usage", model.CategoryComponentUsage, func(s *subject) bool {
		return s.inLanguages(componentLanguages) && matchAnyPattern(s.patterns.component, s.line)
	}},
	{"type-definition", model.CategoryTypeDefinition, func(s *subject) bool {
		return s.inLanguages(typedLanguages) && matchAnyPattern(reTypeDef, s.trimmed)
	}},
	{"interface-definition", model.CategoryInterfaceDefinition, func(s *subject) bool {
		return s.inLanguages(typedLanguages) && matchAnyPattern(reInterfaceDef, s.trimmed)
	}},
	{"class-definition", model.CategoryClassDefinition, func(s *subject) bool { return matchAnyPattern(reClassDef, s.trimmed) }},
	{"property-access", model.CategoryPropertyAccess, isPropertyAccess},
	{"variable-usage", model.CategoryVariableUsage, isVariableUsage},
}

func isFunctionDefinition(s *subject) bool {
	if strings.HasPrefix(strings.TrimSpace(s.after), "(") {
		return true
	}
	return !s.patterns.excluded(s.trimmed) && matchAnyPattern(s.patterns.definitions, s.trimmed)
}

// isVariableDeclaration の = / : は空白を読み飛ばさず、マッチの直後の文字だけを見る。
func isVariableDeclaration(s *subject) bool {
	if strings.HasPrefix(s.after, "=") || strings.HasPrefix(s.after, ":") {
		return true
	}
	return !s.patterns.excluded(s.trimmed) && matchAnyPattern(s.patterns.declarations, s.trimmed)
}

// isPropertyAccess は前側だけ末尾の空白を除いて見る。後ろ側はマッチの直後から見る。
func isPropertyAccess(s *subject) bool {
	if s.beforeEndsWith(".") || strings.HasPrefix(s.after, ".") {
		return true
	}
	return s.beforeEndsWith("[") && strings.HasPrefix(s.after, "]")
}

func isVariableUsage(s *subject) bool {
	if reBareKeyword.MatchString(strings.TrimLeft(s.before, " \t")) {
		return false
	}
	if s.afterStartsWith("(") {
		return false
	}
	return !s.beforeEndsWith(".") && !s.beforeEndsWith("[")
}

// Categorize はマッチの用途カテゴリを 1 つ返します。必ず何らかの値を返し、
// どのルールにも当たらなければ CategoryOther です。
//
// lines と lineNumber は呼び出し規約を揃えるために受け取りますが、
// 判定は line と ctx だけで完結します。
func Categorize(line string, column int, term string, ctx model.MatchContext, lines []string, lineNumber int, languageID string) model.Category {
	cat, _ := CategorizeWithRule(line, column, term, ctx, lines, lineNumber, languageID)
	return cat
}

// CategorizeWithRule は Categorize と同じ判定を行い、成立したルール名も返します。
// どのルールにも当たらなかった場合のルール名は "default" です。
func CategorizeWithRule(line string, column int, term string, ctx model.MatchContext, _ []string, _ int, languageID string) (model.Category, string) {
	s := newSubject(line, column, term, ctx, languageID)
	for _, r := range rules {
		if r.test(s) {
			return r.category, r.name
		}
	}
	return model.CategoryOther, "default"
}

func newSubject(line string, column int, term string, ctx model.MatchContext, languageID string) *subject {
	column = clampColumn(line, column)
	end := clampColumn(line, column+len(term))
	lang := normalizeLanguageID(languageID)
	return &subject{
		line:       line,
		trimmed:    strings.TrimSpace(line),
		before:     line[:column],
		after:      line[end:],
		ctx:        ctx,
		languageID: lang,
		patterns:   patternsFor(familyOf(lang), term),
	}
}

// RuleNames は評価順のルール名を返します。
func RuleNames() []string {
	names := make([]string, 0, len(rules)+1)
	for _, r := range rules {
		names = append(names, r.name)
	}
	return append(names, "default")
}
