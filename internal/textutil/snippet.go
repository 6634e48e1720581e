package textutil

import "strings"

// ExpandTabs はタブを tabWidth 桁ごとのタブ位置まで空白に展開します。
// 返り値とあわせて、元のバイト位置を展開後のバイト位置に写す関数を返します。
func ExpandTabs(line string, tabWidth int) (string, func(int) int) {
	if tabWidth <= 0 || !strings.Contains(line, "\t") {
		return line, func(i int) int { return i }
	}
	var b strings.Builder
	offsets := make([]int, len(line)+1)
	col := 0
	for i := 0; i < len(line); i++ {
		offsets[i] = b.Len()
		if line[i] == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteByte(line[i])
		// UTF-8 の継続バイトは桁に数えない
		if line[i]&0xC0 != 0x80 {
			col++
		}
	}
	offsets[len(line)] = b.Len()
	return b.String(), func(i int) int {
		if i < 0 {
			i = 0
		}
		if i > len(line) {
			i = len(line)
		}
		return offsets[i]
	}
}

// Snippet は line のうち [start, end) のバイト範囲が中央付近に来るように、
// 表示幅 width に収まる部分を切り出します。切った側には ellipsis を付けます。
// 範囲外の start / end は行内に丸めます。
func Snippet(line string, start, end, width int, ellipsis string) string {
	before, match, after := SnippetParts(line, start, end, width, ellipsis)
	return before + match + after
}

// SnippetParts は Snippet と同じ切り出しを、一致部分の前・一致部分・後ろに分けて返します。
// 一致部分だけ色を付けたい場合に使います。
func SnippetParts(line string, start, end, width int, ellipsis string) (string, string, string) {
	if width <= 0 {
		return "", "", ""
	}
	start = clamp(start, 0, len(line))
	end = clamp(end, start, len(line))
	prefix, match, suffix := line[:start], line[start:end], line[end:]
	if VisibleWidth(line) <= width {
		return prefix, match, suffix
	}
	matchW := VisibleWidth(match)
	if matchW >= width {
		return "", TruncateByWidth(match, width, ellipsis), ""
	}
	prefixW, suffixW := VisibleWidth(prefix), VisibleWidth(suffix)

	budget := width - matchW
	left := budget / 2
	right := budget - left
	if prefixW < left {
		right += left - prefixW
		left = prefixW
	}
	if suffixW < right {
		left += right - suffixW
		right = suffixW
	}
	return TruncateLeftByWidth(prefix, left, ellipsis), match, TruncateByWidth(suffix, right, ellipsis)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
