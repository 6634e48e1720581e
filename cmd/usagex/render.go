package main

import (
	"io"

	"github.com/phyten/usagex/internal/analyze"
	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
	"github.com/phyten/usagex/internal/output"
)

// renderer は解決済みの設定で結果を書き出します。フィールドや並び順の誤りは検索前に検出します。
type renderer struct {
	format string
	fields string
	sort   output.SortSpec
	table  output.TableOptions
}

func (a *app) newRenderer(s settings, explain bool) (*renderer, error) {
	spec, err := output.ParseSortSpec(s.ui.Sort)
	if err != nil {
		return nil, usageError{err}
	}
	if _, err := output.ResolveFields(s.ui.Fields, s.opts.WithLinks); err != nil {
		return nil, usageError{err}
	}
	p, err := a.painter(s.search.Color)
	if err != nil {
		return nil, err
	}
	r := &renderer{
		format: s.search.Output,
		fields: s.ui.Fields,
		sort:   spec,
		table: output.TableOptions{
			Painter:     p,
			Width:       a.width(),
			Context:     s.ui.Context,
			Highlighter: output.Highlighter{Painter: p, Style: s.ui.Style},
		},
	}
	if explain {
		r.table.Explain = explainRule
	}
	return r, nil
}

func (r *renderer) render(w io.Writer, res *engine.Result) error {
	items := make([]model.Match, len(res.Items))
	copy(items, res.Items)
	if len(r.sort.Keys) > 0 {
		output.ApplySort(items, r.sort)
	}

	switch r.format {
	case "json":
		sorted := *res
		sorted.Items = items
		return output.WriteJSON(w, &sorted)
	case "ndjson":
		return output.WriteNDJSON(w, items)
	case "csv", "tsv":
		sel, err := output.ResolveFields(r.fields, res.HasURL)
		if err != nil {
			return usageError{err}
		}
		if r.format == "csv" {
			return output.WriteCSV(w, items, sel)
		}
		return output.WriteTSV(w, items, sel)
	case "markdown":
		sorted := *res
		sorted.Items = items
		return output.WriteMarkdownReport(w, &sorted)
	case "summary":
		return output.WriteSummary(w, res)
	default:
		return output.WriteTable(w, res, items, r.table)
	}
}

// explainRule はマッチに対してどの判定規則が成立したかを返します。
func explainRule(m model.Match) string {
	end := m.Column + len(m.Term)
	if m.Span.EndLine == m.Line && m.Span.EndCol > m.Column {
		end = m.Span.EndCol
	}
	start := min(max(m.Column, 0), len(m.Text))
	end = min(max(end, start), len(m.Text))
	_, rule := analyze.CategorizeWithRule(m.Text, m.Column, m.Text[start:end], m.Context, nil, m.Line, m.Lang)
	return rule
}
