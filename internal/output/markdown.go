package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
)

// WriteMarkdownTable は選択したフィールドで GitHub Flavored Markdown の表を書きます。
func WriteMarkdownTable(w io.Writer, items []model.Match, sel FieldSelection) error {
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		rows = append(rows, RowValues(it, sel.Fields))
	}
	return writeMarkdownRows(w, Headers(sel.Fields), rows)
}

// WriteMarkdownReport は検索結果をレポート形式で書きます。
// 見出し、カテゴリ別件数の表、空でないカテゴリごとの節の順に並びます。
func WriteMarkdownReport(w io.Writer, res *engine.Result) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# Usages of `%s`\n\n", strings.ReplaceAll(res.Term, "`", "'"))
	fmt.Fprintf(&b, "- Search ID: `%s`\n", res.SearchID)
	fmt.Fprintf(&b, "- Matches: %d in %d files (%d scanned)\n", len(res.Items), res.FileCount, res.ScannedFiles)
	if res.Truncated {
		fmt.Fprintf(&b, "- Truncated: showing %d of %d\n", len(res.Items), res.Total)
	}
	if res.ErrorCount > 0 {
		fmt.Fprintf(&b, "- Errors: %d\n", res.ErrorCount)
	}
	b.WriteString("\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return err
	}

	counts := make([][]string, 0, len(res.Groups)+1)
	for _, g := range res.Groups {
		counts = append(counts, []string{g.Label, fmt.Sprint(g.Count)})
	}
	counts = append(counts, []string{"**Total**", fmt.Sprintf("**%d**", len(res.Items))})
	if err := writeMarkdownRows(w, []string{"Category", "Count"}, counts); err != nil {
		return err
	}

	byCat := groupItems(res.Items)
	for _, cat := range model.Categories() {
		items := byCat[cat]
		if len(items) == 0 {
			continue
		}
		if _, err := fmt.Fprintf(w, "\n## %s (%d)\n\n", cat.Label(), len(items)); err != nil {
			return err
		}
		rows := make([][]string, 0, len(items))
		for _, it := range items {
			loc := Location(it)
			if it.URL != "" {
				loc = fmt.Sprintf("[%s](%s)", loc, it.URL)
			}
			rows = append(rows, []string{loc, it.Context.Function(), it.Context.Class(), codeSpan(strings.TrimSpace(it.Text))})
		}
		if err := writeMarkdownRows(w, []string{"Location", "Function", "Class", "Text"}, rows); err != nil {
			return err
		}
	}
	return nil
}

func writeMarkdownRows(w io.Writer, headers []string, rows [][]string) error {
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(headers, " | ")); err != nil {
		return err
	}
	sep := make([]string, len(headers))
	for i := range sep {
		sep[i] = "---"
	}
	if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(sep, " | ")); err != nil {
		return err
	}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i := range row {
			cells[i] = escapeMarkdownCell(row[i])
		}
		if _, err := fmt.Fprintf(w, "| %s |\n", strings.Join(cells, " | ")); err != nil {
			return err
		}
	}
	return nil
}

// groupItems は入力順を保ったままカテゴリごとに分けます。
func groupItems(items []model.Match) map[model.Category][]model.Match {
	out := make(map[model.Category][]model.Match)
	for _, it := range items {
		out[it.Category] = append(out[it.Category], it)
	}
	return out
}

func codeSpan(s string) string {
	if s == "" {
		return ""
	}
	if strings.Contains(s, "`") {
		return "`` " + s + " ``"
	}
	return "`" + s + "`"
}

func escapeMarkdownCell(s string) string {
	if s == "" {
		return ""
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "<br>")
	s = strings.ReplaceAll(s, "|", "\\|")
	return s
}
