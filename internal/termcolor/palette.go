package termcolor

import (
	"github.com/phyten/usagex/internal/model"
)

type categoryColor struct {
	rgb   RGB
	basic int // SGR 30+n の n
}

// カテゴリごとの基本色。暗い背景を前提にした値で、明るい背景では EnsureContrast で補正する
var categoryPalette = map[model.Category]categoryColor{
	model.CategoryImport:              {RGB{59, 130, 246}, 4},
	model.CategoryExport:              {RGB{6, 182, 212}, 6},
	model.CategoryFunctionDefinition:  {RGB{34, 197, 94}, 2},
	model.CategoryFunctionCall:        {RGB{132, 204, 22}, 2},
	model.CategoryVariableDeclaration: {RGB{245, 158, 11}, 3},
	model.CategoryVariableUsage:       {RGB{234, 179, 8}, 3},
	model.CategoryComponentUsage:      {RGB{236, 72, 153}, 5},
	model.CategoryTypeDefinition:      {RGB{139, 92, 246}, 5},
	model.CategoryInterfaceDefinition: {RGB{168, 85, 247}, 5},
	model.CategoryClassDefinition:     {RGB{249, 115, 22}, 1},
	model.CategoryPropertyAccess:      {RGB{20, 184, 166}, 6},
	model.CategoryStringLiteral:       {RGB{239, 68, 68}, 1},
}

// 本文の最低コントラスト比 (WCAG AA)
const minContrast = 4.5

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// LocationStyle は file:line:col の表示に使います。
func LocationStyle() Style {
	return Style{Dim: true}
}

// MatchStyle は行の中の検索語そのものを強調します。
func MatchStyle() Style {
	return Style{Bold: true, Underline: true}
}

// CategoryStyle はカテゴリ見出しとラベルの色を返します。
// comment は色を付けず薄く、other は装飾なしです。
func CategoryStyle(cat model.Category, scheme Scheme, profile Profile) Style {
	if cat == model.CategoryComment {
		return Style{Dim: true, Italic: true}
	}
	c, ok := categoryPalette[cat]
	if !ok {
		return Style{}
	}
	switch profile {
	case ProfileTrueColor:
		rgb := EnsureContrast(c.rgb, scheme.Background(), minContrast)
		v := [3]uint8{rgb.R, rgb.G, rgb.B}
		return Style{Bold: true, FGTrue: &v}
	case ProfileANSI256:
		rgb := EnsureContrast(c.rgb, scheme.Background(), minContrast)
		idx := rgbToANSI256(rgb.R, rgb.G, rgb.B)
		return Style{Bold: true, FG256: &idx}
	default:
		basic := c.basic
		return Style{Bold: true, FGBasic: &basic}
	}
}

// CategoryRGB は Web UI などで使う、暗い背景向けの基本色を返します。
func CategoryRGB(cat model.Category) (RGB, bool) {
	c, ok := categoryPalette[cat]
	return c.rgb, ok
}

func rgbToANSI256(r, g, b uint8) int {
	if r == g && g == b {
		if r < 8 {
			return 16
		}
		if r > 248 {
			return 231
		}
		return 232 + (int(r)-8)*24/247
	}
	rr := int(r) * 5 / 255
	gg := int(g) * 5 / 255
	bb := int(b) * 5 / 255
	return 16 + 36*rr + 6*gg + bb
}
