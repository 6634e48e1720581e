package output

import (
	"bytes"
	"fmt"
	"io"

	"github.com/olekukonko/tablewriter"

	"github.com/phyten/usagex/internal/engine"
)

// WriteSummary はカテゴリごとの件数を表にして書きます。フッターは合計です。
func WriteSummary(w io.Writer, res *engine.Result) error {
	var buf bytes.Buffer

	table := tablewriter.NewWriter(&buf)
	table.SetHeader([]string{"Category", "Matches"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT})

	total := 0
	for _, g := range res.Groups {
		table.Append([]string{string(g.Category), fmt.Sprintf("%d", g.Count)})
		total += g.Count
	}
	table.SetFooter([]string{
		fmt.Sprintf("Total Files %d", res.FileCount),
		fmt.Sprintf("%d", total),
	})
	table.Render()

	_, err := io.Copy(w, &buf)
	return err
}
