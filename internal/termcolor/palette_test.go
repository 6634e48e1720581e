package termcolor

import (
	"testing"

	"github.com/phyten/usagex/internal/model"
)

func TestHeaderStyle(t *testing.T) {
	s := HeaderStyle()
	if !s.Bold || !s.Underline {
		t.Fatalf("header style should enable bold+underline: %+v", s)
	}
}

func TestCategoryStyleCoversEveryCategory(t *testing.T) {
	for _, cat := range model.Categories() {
		basic := CategoryStyle(cat, SchemeDark, ProfileBasic8)
		switch cat {
		case model.CategoryOther:
			if !basic.IsZero() {
				t.Fatalf("other should be undecorated: %+v", basic)
			}
		case model.CategoryComment:
			if !basic.Dim || basic.FGBasic != nil {
				t.Fatalf("comment should be dim without color: %+v", basic)
			}
		default:
			if basic.FGBasic == nil || *basic.FGBasic < 0 || *basic.FGBasic > 7 {
				t.Fatalf("%s: basic color missing: %+v", cat, basic)
			}
			s256 := CategoryStyle(cat, SchemeDark, ProfileANSI256)
			if s256.FG256 == nil || *s256.FG256 < 16 || *s256.FG256 > 255 {
				t.Fatalf("%s: 256 color out of range: %+v", cat, s256)
			}
		}
	}
}

func TestCategoryStyleContrast(t *testing.T) {
	for _, scheme := range []Scheme{SchemeDark, SchemeLight} {
		for _, cat := range model.Categories() {
			s := CategoryStyle(cat, scheme, ProfileTrueColor)
			if s.FGTrue == nil {
				continue
			}
			rgb := *s.FGTrue
			ratio := ContrastRatio(RGB{rgb[0], rgb[1], rgb[2]}, scheme.Background())
			if ratio < minContrast {
				t.Fatalf("%s on scheme %d: contrast %.2f < %.1f (rgb=%v)", cat, scheme, ratio, minContrast, rgb)
			}
		}
	}
}

func TestCategoryRGB(t *testing.T) {
	if _, ok := CategoryRGB(model.CategoryImport); !ok {
		t.Fatal("import should have a base color")
	}
	if _, ok := CategoryRGB(model.CategoryOther); ok {
		t.Fatal("other has no base color")
	}
}

func TestRGBToANSI256(t *testing.T) {
	if got := rgbToANSI256(0, 255, 0); got != 46 {
		t.Fatalf("green = %d, want 46", got)
	}
	if got := rgbToANSI256(0, 0, 0); got != 16 {
		t.Fatalf("black = %d, want 16", got)
	}
	if got := rgbToANSI256(255, 255, 255); got != 231 {
		t.Fatalf("white = %d, want 231", got)
	}
}
