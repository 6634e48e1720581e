package output

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/phyten/usagex/internal/analyze"
	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/termcolor"
	"github.com/phyten/usagex/internal/textutil"
)

const (
	tabWidth = 4
	ellipsis = "…"
)

// TableOptions はカテゴリ別の端末表示の設定です。
type TableOptions struct {
	Painter termcolor.Painter
	// Width は 1 行の表示幅。0 以下なら切り詰めない
	Width int
	// Context が true なら各マッチの周辺行も出す
	Context     bool
	Highlighter Highlighter
	// Explain は行ごとに採用した判定規則を返す。nil なら出さない
	Explain func(model.Match) string
}

// WriteTable はマッチをカテゴリごとにまとめて書きます。
// カテゴリの並びは表示順、カテゴリ内は items の順です。
func WriteTable(w io.Writer, res *engine.Result, items []model.Match, opt TableOptions) error {
	p := opt.Painter
	if len(items) == 0 {
		_, err := fmt.Fprintf(w, "No usages of %q found (%d files scanned).\n", res.Term, res.ScannedFiles)
		return err
	}

	locW := 0
	for _, it := range items {
		if n := textutil.VisibleWidth(Location(it)); n > locW {
			locW = n
		}
	}

	byCat := groupItems(items)
	first := true
	for _, cat := range model.Categories() {
		group := byCat[cat]
		if len(group) == 0 {
			continue
		}
		if !first {
			if _, err := io.WriteString(w, "\n"); err != nil {
				return err
			}
		}
		first = false

		header := p.Paint(termcolor.CategoryStyle(cat, p.Scheme, p.Profile), cat.Label())
		if _, err := fmt.Fprintf(w, "%s (%d)\n", header, len(group)); err != nil {
			return err
		}
		for _, it := range group {
			if err := writeTableRow(w, it, locW, opt); err != nil {
				return err
			}
		}
	}

	footer := fmt.Sprintf("\n%d matches in %d files (%d scanned)", len(items), res.FileCount, res.ScannedFiles)
	if res.Truncated {
		footer += fmt.Sprintf(", truncated from %d", res.Total)
	}
	if res.ErrorCount > 0 {
		footer += fmt.Sprintf(", %d errors", res.ErrorCount)
	}
	_, err := io.WriteString(w, p.Paint(termcolor.LocationStyle(), footer)+"\n")
	return err
}

func writeTableRow(w io.Writer, it model.Match, locW int, opt TableOptions) error {
	p := opt.Painter
	loc := textutil.PadRight(Location(it), locW)
	line := "  " + p.Paint(termcolor.LocationStyle(), loc) + "  "

	scope := scopeLabel(it.Context)
	textW := 0
	if opt.Width > 0 {
		textW = opt.Width - 2 - locW - 2
		if scope != "" {
			textW -= textutil.VisibleWidth(scope) + 2
		}
		if textW < 10 {
			textW = 10
		}
	}
	before, match, after := matchParts(it, textW)
	line += before + p.Paint(termcolor.MatchStyle(), match) + after
	if scope != "" {
		line += "  " + p.Paint(termcolor.LocationStyle(), scope)
	}
	if opt.Explain != nil {
		if rule := opt.Explain(it); rule != "" {
			line += "  " + p.Paint(termcolor.LocationStyle(), "["+rule+"]")
		}
	}
	if _, err := io.WriteString(w, line+"\n"); err != nil {
		return err
	}
	if opt.Context {
		return writeContext(w, it, opt)
	}
	return nil
}

// matchParts は行の先頭の空白を落とし、一致箇所を中心に width へ収めます。
func matchParts(it model.Match, width int) (string, string, string) {
	text, pos := textutil.ExpandTabs(it.Text, tabWidth)
	start := pos(it.Column)
	end := pos(matchEnd(it))
	trimmed := strings.TrimLeft(text, " ")
	shift := len(text) - len(trimmed)
	start -= shift
	end -= shift
	if start < 0 {
		start = 0
	}
	if end < start {
		end = start
	}
	if width <= 0 {
		width = textutil.VisibleWidth(trimmed)
		if width == 0 {
			return "", "", ""
		}
	}
	return textutil.SnippetParts(trimmed, start, end, width, ellipsis)
}

func matchEnd(it model.Match) int {
	if it.Span.EndLine == it.Line && it.Span.EndCol > it.Column {
		return it.Span.EndCol
	}
	return it.Column + len(it.Term)
}

func scopeLabel(ctx model.MatchContext) string {
	fn, cls := ctx.Function(), ctx.Class()
	switch {
	case fn != "" && cls != "":
		return cls + "." + fn
	case fn != "":
		return fn + "()"
	default:
		return cls
	}
}

func writeContext(w io.Writer, it model.Match, opt TableOptions) error {
	lines := it.Context.SurroundingLines
	if len(lines) == 0 {
		return nil
	}
	first := it.Line - analyze.DefaultRadius
	if first < 0 {
		first = 0
	}
	code := opt.Highlighter.Highlight(strings.Join(lines, "\n"), it.Lang, it.File)
	numW := len(strconv.Itoa(first + len(lines)))
	out := strings.Split(code, "\n")
	if len(out) > len(lines) {
		out = out[:len(lines)]
	}
	for i, text := range out {
		if opt.Painter.Enabled {
			text += "\x1b[0m"
		}
		n := first + i
		marker := " "
		if n == it.Line {
			marker = ">"
		}
		gutter := fmt.Sprintf("%s %s │ ", marker, textutil.PadLeft(strconv.Itoa(n+1), numW))
		if _, err := io.WriteString(w, "      "+opt.Painter.Paint(termcolor.LocationStyle(), gutter)+text+"\n"); err != nil {
			return err
		}
	}
	return nil
}
