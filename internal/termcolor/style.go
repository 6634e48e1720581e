package termcolor

import (
	"fmt"
	"strings"
)

// Style は SGR 属性の組です。前景色は FGTrue > FG256 > FGBasic の順に採用します。
type Style struct {
	Bold      bool
	Dim       bool
	Italic    bool
	Underline bool
	FGBasic   *int
	FG256     *int
	FGTrue    *[3]uint8
}

func (s Style) IsZero() bool {
	return len(sgrCodes(s)) == 0
}

func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	codes := sgrCodes(s)
	if len(codes) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(codes, ";") + "m" + text + "\x1b[0m"
}

// Painter は有効/無効の判定を保持して Apply を呼ぶだけの薄いラッパーです。
type Painter struct {
	Enabled bool
	Scheme  Scheme
	Profile Profile
}

func (p Painter) Paint(s Style, text string) string {
	return Apply(s, text, p.Enabled)
}

func sgrCodes(s Style) []string {
	codes := make([]string, 0, 6)
	if s.Bold {
		codes = append(codes, "1")
	}
	if s.Dim {
		codes = append(codes, "2")
	}
	if s.Italic {
		codes = append(codes, "3")
	}
	if s.Underline {
		codes = append(codes, "4")
	}
	switch {
	case s.FGTrue != nil:
		rgb := *s.FGTrue
		codes = append(codes, fmt.Sprintf("38;2;%d;%d;%d", rgb[0], rgb[1], rgb[2]))
	case s.FG256 != nil:
		codes = append(codes, fmt.Sprintf("38;5;%d", *s.FG256))
	case s.FGBasic != nil:
		codes = append(codes, fmt.Sprintf("3%d", *s.FGBasic))
	}
	return codes
}
