// Package analyze は 1 行のテキストとマッチ位置から、マッチの周辺情報と
// 用途カテゴリを求めるヒューリスティック判定を提供します。
//
// 行単位の近似判定であり、字句解析器や構文木は使いません。
// すべての関数は入力だけを読み、I/O や共有状態を持たないため、
// 複数のゴルーチンから同時に呼び出せます。
package analyze

import (
	"strings"

	"github.com/phyten/usagex/internal/model"
)

// DefaultRadius は SurroundingLines で前後に含める行数です。
const DefaultRadius = 2

// Context は 1 件のマッチについて MatchContext を組み立てます。
// column は line 内の 0 始まりのバイトオフセット、lineNumber は lines の添字です。
func Context(line string, column int, lines []string, lineNumber int) model.MatchContext {
	ctx := model.MatchContext{
		IsInComment:      IsInComment(line, column),
		IsInString:       IsInString(line, column),
		FunctionName:     FunctionContext(lines, lineNumber),
		ClassName:        ClassContext(lines, lineNumber),
		SurroundingLines: SurroundingLines(lines, lineNumber, DefaultRadius),
	}
	if IsImportLine(line) {
		ctx.ImportedItems = ImportedItems(line)
	}
	return ctx
}

// IsInComment は column が行コメント・ブロックコメントの内側にあるかを判定します。
//
// 判定は 3 通り:
//  1. 行内の最初の "//" が column 以前にある
//  2. column より前の最初の "/*" と、column 以降の最初の "*/" が両方ある
//  3. 行頭 (空白除去後) が "#"
//
// 文字列中の "//" も区別しません (例: URL)。1 行に複数のブロックコメントが
// あるケースも近似のままです。
func IsInComment(line string, column int) bool {
	column = clampColumn(line, column)
	if idx := strings.Index(line, "//"); idx >= 0 && idx <= column {
		return true
	}
	if strings.Contains(line[:column], "/*") && strings.Contains(line[column:], "*/") {
		return true
	}
	return strings.HasPrefix(strings.TrimSpace(line), "#")
}

// IsInString は column より前にある ' " ` の個数の偶奇から、文字列リテラルの
// 内側かどうかを推定します。直前がバックスラッシュの引用符は数えません。
// どれか 1 種類でも奇数なら true です。
func IsInString(line string, column int) bool {
	column = clampColumn(line, column)
	var single, double, backtick int
	for i := 0; i < column; i++ {
		if i > 0 && line[i-1] == '\\' {
			continue
		}
		switch line[i] {
		case '\'':
			single++
		case '"':
			double++
		case '`':
			backtick++
		}
	}
	return single%2 == 1 || double%2 == 1 || backtick%2 == 1
}

// SurroundingLines は lineNumber の前後 radius 行を返します。ファイル端では切り詰めます。
func SurroundingLines(lines []string, lineNumber, radius int) []string {
	if radius < 0 {
		radius = 0
	}
	start := lineNumber - radius
	if start < 0 {
		start = 0
	}
	end := lineNumber + radius + 1
	if end > len(lines) {
		end = len(lines)
	}
	if start >= end {
		return []string{}
	}
	out := make([]string, end-start)
	copy(out, lines[start:end])
	return out
}

func clampColumn(line string, column int) int {
	if column < 0 {
		return 0
	}
	if column > len(line) {
		return len(line)
	}
	return column
}
