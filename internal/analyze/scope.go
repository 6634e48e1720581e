package analyze

import (
	"regexp"
	"strings"
)

var (
	reFunctionDecl = regexp.MustCompile(`^(async\s+)?function\s+(\w+)\s*\(`)
	reArrowDecl    = regexp.MustCompile(`^(const|let|var)\s+(\w+)\s*=\s*.*=>`)
	reCallShape    = regexp.MustCompile(`^(\w+)\s*\(`)
	reClassDecl    = regexp.MustCompile(`^(export\s+)?(abstract\s+)?class\s+(\w+)`)
)

// FunctionContext は lineNumber から先頭行に向かって走査し、最初に見つかった
// 関数名を返します。マッチした行自身も走査対象です。見つからなければ nil。
func FunctionContext(lines []string, lineNumber int) *string {
	for i := scanStart(lines, lineNumber); i >= 0; i-- {
		if name, ok := functionName(strings.TrimSpace(lines[i])); ok {
			return &name
		}
	}
	return nil
}

func functionName(trimmed string) (string, bool) {
	if m := reFunctionDecl.FindStringSubmatch(trimmed); m != nil {
		return m[2], true
	}
	if m := reArrowDecl.FindStringSubmatch(trimmed); m != nil {
		return m[2], true
	}
	// method-ish "name(" lines, minus control statements (substring check)
	if m := reCallShape.FindStringSubmatch(trimmed); m != nil {
		if !strings.Contains(trimmed, "if") && !strings.Contains(trimmed, "for") && !strings.Contains(trimmed, "while") {
			return m[1], true
		}
	}
	return "", false
}

// ClassContext は FunctionContext と同じ走査でクラス名を探します。
func ClassContext(lines []string, lineNumber int) *string {
	for i := scanStart(lines, lineNumber); i >= 0; i-- {
		if m := reClassDecl.FindStringSubmatch(strings.TrimSpace(lines[i])); m != nil {
			name := m[3]
			return &name
		}
	}
	return nil
}

func scanStart(lines []string, lineNumber int) int {
	if lineNumber >= len(lines) {
		return len(lines) - 1
	}
	return lineNumber
}
