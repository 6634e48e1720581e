package termcolor

import (
	"strconv"
	"strings"
)

type Scheme int

const (
	SchemeUnknown Scheme = iota
	SchemeDark
	SchemeLight
)

// 背景色の想定値。コントラスト補正の基準に使う
var (
	darkBackground  = RGB{17, 24, 39}
	lightBackground = RGB{249, 250, 251}
)

func (s Scheme) Background() RGB {
	if s == SchemeLight {
		return lightBackground
	}
	return darkBackground
}

// DetectScheme は COLORFGBG の背景色番号 (7 以上なら明るい) と TERM 名から
// 端末の配色を推定します。判断できなければ暗い背景とみなします。
func DetectScheme(env map[string]string) Scheme {
	if env == nil {
		return SchemeDark
	}
	if raw := strings.TrimSpace(env["COLORFGBG"]); raw != "" {
		parts := strings.Split(raw, ";")
		bgRaw := strings.TrimSpace(parts[len(parts)-1])
		if bgRaw == "" && len(parts) >= 2 {
			bgRaw = strings.TrimSpace(parts[len(parts)-2])
		}
		if bg, err := strconv.Atoi(bgRaw); err == nil && bg >= 0 {
			if bg >= 7 {
				return SchemeLight
			}
			return SchemeDark
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "light") {
		return SchemeLight
	}
	return SchemeDark
}
