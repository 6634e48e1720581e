// Package termcolor は端末の色設定の判定と、カテゴリごとの配色を扱います。
package termcolor

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/term"
)

type ColorMode int

const (
	ModeAuto ColorMode = iota
	ModeAlways
	ModeNever
)

func (m ColorMode) String() string {
	switch m {
	case ModeAlways:
		return "always"
	case ModeNever:
		return "never"
	default:
		return "auto"
	}
}

// ParseMode は --color の値 (auto / always / never) を解釈します。
func ParseMode(v string) (ColorMode, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "auto":
		return ModeAuto, nil
	case "always":
		return ModeAlways, nil
	case "never":
		return ModeNever, nil
	default:
		return ModeAuto, fmt.Errorf("unknown color mode: %s", v)
	}
}

type Profile int

const (
	ProfileBasic8 Profile = iota
	ProfileANSI256
	ProfileTrueColor
)

// DetectMode は auto のときの実際のモードを決めます。上から順に評価します。
//
//  1. TERM=dumb なら色なし
//  2. NO_COLOR が空でなければ色なし
//  3. CLICOLOR=0 なら色なし
//  4. CLICOLOR_FORCE / FORCE_COLOR が 0 以外なら色あり
//  5. それ以外は stdout が端末のときだけ色あり
func DetectMode(stdout *os.File, env map[string]string) ColorMode {
	if stdout == nil {
		return ModeNever
	}
	switch {
	case strings.EqualFold(strings.TrimSpace(env["TERM"]), "dumb"):
		return ModeNever
	case strings.TrimSpace(env["NO_COLOR"]) != "":
		return ModeNever
	case strings.TrimSpace(env["CLICOLOR"]) == "0":
		return ModeNever
	case forceColor(env["CLICOLOR_FORCE"]), forceColor(env["FORCE_COLOR"]):
		return ModeAlways
	}
	if isTerminal(stdout) {
		return ModeAlways
	}
	return ModeNever
}

// DetectProfile は COLORTERM / TERM から使える色数を推定します。
func DetectProfile(env map[string]string) Profile {
	if v := strings.ToLower(strings.TrimSpace(env["COLORTERM"])); v != "" {
		if strings.Contains(v, "truecolor") || strings.Contains(v, "24bit") || strings.Contains(v, "24-bit") {
			return ProfileTrueColor
		}
	}
	if strings.Contains(strings.ToLower(env["TERM"]), "256color") {
		return ProfileANSI256
	}
	return ProfileBasic8
}

// NewPainter は --color の指定と環境から Painter を組み立てます。
// mode が auto のときは DetectMode の結果に従います。
func NewPainter(mode ColorMode, stdout *os.File, env map[string]string) Painter {
	if mode == ModeAuto {
		mode = DetectMode(stdout, env)
	}
	return Painter{
		Enabled: mode == ModeAlways,
		Scheme:  DetectScheme(env),
		Profile: DetectProfile(env),
	}
}

func isTerminal(f *os.File) bool {
	if f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func forceColor(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && v != "0"
}
