package termcolor

import "math"

type RGB struct {
	R uint8
	G uint8
	B uint8
}

var (
	black = RGB{0, 0, 0}
	white = RGB{255, 255, 255}
)

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

func luminance(rgb RGB) float64 {
	r := srgbToLinear(float64(rgb.R) / 255.0)
	g := srgbToLinear(float64(rgb.G) / 255.0)
	b := srgbToLinear(float64(rgb.B) / 255.0)
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// ContrastRatio は WCAG 2.x のコントラスト比 (1〜21) を返します。
func ContrastRatio(fg, bg RGB) float64 {
	l1 := luminance(fg)
	l2 := luminance(bg)
	if l1 < l2 {
		l1, l2 = l2, l1
	}
	return (l1 + 0.05) / (l2 + 0.05)
}

// EnsureContrast は fg が bg に対して minRatio に届くまで、色相を残したまま
// 黒 (明るい背景) または白 (暗い背景) に向けて段階的に寄せます。
func EnsureContrast(fg, bg RGB, minRatio float64) RGB {
	if minRatio <= 0 {
		minRatio = 4.5
	}
	if ContrastRatio(fg, bg) >= minRatio {
		return fg
	}
	target := white
	if ContrastRatio(black, bg) >= ContrastRatio(white, bg) {
		target = black
	}
	for step := 1; step <= 10; step++ {
		candidate := mix(fg, target, float64(step)/10)
		if ContrastRatio(candidate, bg) >= minRatio {
			return candidate
		}
	}
	return target
}

func mix(a, b RGB, t float64) RGB {
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return RGB{lerp(a.R, b.R), lerp(a.G, b.G), lerp(a.B, b.B)}
}
