package analyze

import (
	"regexp"
	"strings"
)

var importPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^import\s+.*\bfrom\b`),
	regexp.MustCompile(`^import\s+.*=\s*require\b`),
	regexp.MustCompile(`^const\s+.*=\s*require\b`),
	regexp.MustCompile(`^from\s+.*\bimport\b`),
	regexp.MustCompile(`^#include\s`),
	regexp.MustCompile(`^using\s`),
}

var exportPatterns = []*regexp.Regexp{
	regexp.MustCompile(`^export\s+(default\s+)?`),
	regexp.MustCompile(`^export\s*\{`),
	regexp.MustCompile(`^module\.exports\s*=`),
}

var (
	reNamedImports    = regexp.MustCompile(`import\s+(?:type\s+)?(?:\w+\s*,\s*)?\{([^}]*)\}\s*from`)
	reDefaultImport   = regexp.MustCompile(`import\s+(\w+)\s+from`)
	reNamespaceImport = regexp.MustCompile(`import\s+\*\s+as\s+(\w+)\s+from`)
)

// IsImportLine は行 (前後の空白を除去) が import 文の形をしているかを返します。
func IsImportLine(line string) bool {
	return matchAnyPattern(importPatterns, strings.TrimSpace(line))
}

// IsExportLine は行が export 文の形をしているかを返します。
func IsExportLine(line string) bool {
	return matchAnyPattern(exportPatterns, strings.TrimSpace(line))
}

// ImportedItems は import 文から取り込まれる識別子を取り出します。
//
// 優先順は { a, b } の名前付き import、既定 import (import X from)、
// 名前空間 import (import * as X from) の順で、最初に当たったものだけを使います。
// どれにも当たらなければ空のスライスを返します。
func ImportedItems(line string) []string {
	if m := reNamedImports.FindStringSubmatch(line); m != nil {
		parts := strings.Split(m[1], ",")
		items := make([]string, 0, len(parts))
		for _, part := range parts {
			if item := strings.TrimSpace(part); item != "" {
				items = append(items, item)
			}
		}
		return items
	}
	if m := reDefaultImport.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	if m := reNamespaceImport.FindStringSubmatch(line); m != nil {
		return []string{m[1]}
	}
	return []string{}
}

func matchAnyPattern(patterns []*regexp.Regexp, text string) bool {
	for _, re := range patterns {
		if re.MatchString(text) {
			return true
		}
	}
	return false
}
