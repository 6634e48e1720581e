package termcolor

import (
	"os"
	"testing"
)

func TestParseMode(t *testing.T) {
	cases := []struct {
		input string
		want  ColorMode
		err   bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"always", ModeAlways, false},
		{"never", ModeNever, false},
		{"ALWAYS", ModeAlways, false},
		{"invalid", ModeAuto, true},
	}
	for _, tc := range cases {
		got, err := ParseMode(tc.input)
		if tc.err {
			if err == nil {
				t.Fatalf("ParseMode(%q) expected error", tc.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseMode(%q) unexpected error: %v", tc.input, err)
		}
		if got != tc.want {
			t.Fatalf("ParseMode(%q)=%v want %v", tc.input, got, tc.want)
		}
	}
}

func TestDetectModeは環境変数を優先順に評価する(t *testing.T) {
	_, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer func() {
		_ = w.Close()
	}()

	cases := []struct {
		name string
		env  map[string]string
		want ColorMode
	}{
		{"NO_COLOR", map[string]string{"NO_COLOR": "1"}, ModeNever},
		{"CLICOLOR=0", map[string]string{"CLICOLOR": "0"}, ModeNever},
		{"CLICOLOR_FORCE", map[string]string{"CLICOLOR_FORCE": "2"}, ModeAlways},
		{"FORCE_COLOR", map[string]string{"FORCE_COLOR": "1"}, ModeAlways},
		{"FORCE_COLOR=0", map[string]string{"FORCE_COLOR": "0"}, ModeNever},
		{"NO_COLOR wins over force", map[string]string{"NO_COLOR": "1", "CLICOLOR_FORCE": "1"}, ModeNever},
		{"dumb wins over force", map[string]string{"TERM": "dumb", "FORCE_COLOR": "1"}, ModeNever},
		{"pipe", nil, ModeNever},
	}
	for _, tc := range cases {
		if got := DetectMode(w, tc.env); got != tc.want {
			t.Fatalf("%s: DetectMode=%v, want %v", tc.name, got, tc.want)
		}
	}
	if got := DetectMode(nil, map[string]string{"FORCE_COLOR": "1"}); got != ModeNever {
		t.Fatalf("stdout が nil なら色なしになるはずです: %v", got)
	}
}

func TestNewPainter(t *testing.T) {
	_, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	defer func() {
		_ = w.Close()
	}()

	if p := NewPainter(ModeAlways, nil, nil); !p.Enabled {
		t.Fatal("ModeAlways should be enabled even with nil stdout")
	}
	if p := NewPainter(ModeNever, w, map[string]string{"FORCE_COLOR": "1"}); p.Enabled {
		t.Fatal("ModeNever should be disabled")
	}
	if p := NewPainter(ModeAuto, w, nil); p.Enabled {
		t.Fatal("ModeAuto with non-tty stdout should be disabled")
	}
	p := NewPainter(ModeAuto, w, map[string]string{"FORCE_COLOR": "1", "COLORTERM": "truecolor", "COLORFGBG": "0;15"})
	if !p.Enabled || p.Profile != ProfileTrueColor || p.Scheme != SchemeLight {
		t.Fatalf("unexpected painter: %+v", p)
	}
	if got := p.Paint(Style{Bold: true}, "x"); got != "\x1b[1mx\x1b[0m" {
		t.Fatalf("Paint = %q", got)
	}
}

func TestDetectProfile(t *testing.T) {
	env := map[string]string{"COLORTERM": "truecolor"}
	if got := DetectProfile(env); got != ProfileTrueColor {
		t.Fatalf("COLORTERM truecolor should yield TrueColor, got %v", got)
	}
	env = map[string]string{"TERM": "xterm-256color"}
	if got := DetectProfile(env); got != ProfileANSI256 {
		t.Fatalf("TERM 256color should yield ANSI256, got %v", got)
	}
	env = map[string]string{}
	if got := DetectProfile(env); got != ProfileBasic8 {
		t.Fatalf("default profile should be Basic8, got %v", got)
	}
}
