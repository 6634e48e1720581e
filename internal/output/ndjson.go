package output

import (
	"encoding/json"
	"io"

	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
)

// WriteNDJSON は 1 行 1 マッチの JSON を書きます。HTML 文字はエスケープしません。
func WriteNDJSON(w io.Writer, items []model.Match) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}

// WriteJSON は Result 全体をインデント付きで書きます。
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}
