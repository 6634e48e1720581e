package output

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"

	"github.com/phyten/usagex/internal/termcolor"
)

// エディタ形式の言語 ID のうち chroma の名前と一致しないもの
var chromaLexerNames = map[string]string{
	"typescriptreact": "tsx",
	"javascriptreact": "jsx",
	"shellscript":     "bash",
	"dockerfile":      "docker",
}

// Highlighter は --context で表示する周辺行に色を付けます。
type Highlighter struct {
	Painter termcolor.Painter
	// Style は chroma のスタイル名。見つからなければ styles.Fallback を使います。
	Style string
}

// Highlight は code を lang (なければ file の拡張子) に合わせて色付けします。
// 色が無効なときや字句解析に失敗したときは code をそのまま返します。
func (h Highlighter) Highlight(code, lang, file string) string {
	if !h.Painter.Enabled || code == "" {
		return code
	}
	lexer := lookupLexer(lang, file, code)
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get(h.Style)
	if style == nil {
		style = chromaStyles.Fallback
	}
	formatter := formatters.Get(formatterName(h.Painter.Profile))
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}
	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func lookupLexer(lang, file, code string) chroma.Lexer {
	name := lang
	if alias, ok := chromaLexerNames[lang]; ok {
		name = alias
	}
	var lexer chroma.Lexer
	if name != "" {
		lexer = lexers.Get(name)
	}
	if lexer == nil && file != "" {
		lexer = lexers.Match(file)
	}
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	return lexer
}

func formatterName(p termcolor.Profile) string {
	switch p {
	case termcolor.ProfileTrueColor:
		return "terminal16m"
	case termcolor.ProfileANSI256:
		return "terminal256"
	default:
		return "terminal8"
	}
}
