// Package textutil は端末表示幅を考慮した文字列処理をまとめたものです。
// 幅は go-runewidth、区切りは uniseg の書記素クラスタ単位で数えます。
package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// CSI と OSC 形式のエスケープシーケンス
var ansiRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripANSI は色付けなどのエスケープシーケンスを取り除きます。
func StripANSI(s string) string {
	if !strings.ContainsRune(s, 0x1b) {
		return s
	}
	return ansiRe.ReplaceAllString(s, "")
}

type cluster struct {
	text  string
	width int
}

func clusters(s string) []cluster {
	var out []cluster
	g := uniseg.NewGraphemes(StripANSI(s))
	for g.Next() {
		seg := g.Str()
		out = append(out, cluster{text: seg, width: runewidth.StringWidth(seg)})
	}
	return out
}

func joinClusters(cs []cluster) string {
	var b strings.Builder
	for _, c := range cs {
		b.WriteString(c.text)
	}
	return b.String()
}

// VisibleWidth は端末上の表示幅を返します (エスケープシーケンスは数えない)。
func VisibleWidth(s string) int {
	width := 0
	for _, c := range clusters(s) {
		width += c.width
	}
	return width
}

// TruncateByWidth は書記素を壊さずに s を幅 w に収めます。
// 切り詰めが起きて ellipsis が収まる場合は末尾に付けます。
func TruncateByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	return fitClusters(clusters(s), w, ellipsis, false)
}

// TruncateLeftByWidth は先頭側を落として s を幅 w に収めます。ellipsis は先頭に付きます。
func TruncateLeftByWidth(s string, w int, ellipsis string) string {
	if s == "" || w <= 0 {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	return fitClusters(clusters(s), w, ellipsis, true)
}

func fitClusters(cs []cluster, w int, ellipsis string, fromLeft bool) string {
	ellW := runewidth.StringWidth(ellipsis)
	if ellW > w {
		ellipsis, ellW = "", 0
	}
	budget := w - ellW
	used := 0
	kept := 0
	for i := range cs {
		c := cs[i]
		if fromLeft {
			c = cs[len(cs)-1-i]
		}
		if used+c.width > budget {
			break
		}
		used += c.width
		kept++
	}
	if fromLeft {
		return ellipsis + joinClusters(cs[len(cs)-kept:])
	}
	return joinClusters(cs[:kept]) + ellipsis
}

// PadRight は表示幅が w になるまで右に空白を足します。
func PadRight(s string, w int) string {
	pad := w - VisibleWidth(s)
	if pad <= 0 {
		return s
	}
	return s + strings.Repeat(" ", pad)
}

// PadLeft は表示幅が w になるまで左に空白を足します。
func PadLeft(s string, w int) string {
	pad := w - VisibleWidth(s)
	if pad <= 0 {
		return s
	}
	return strings.Repeat(" ", pad) + s
}
