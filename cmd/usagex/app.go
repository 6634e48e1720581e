package main

import (
	"errors"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/browser"
	"golang.org/x/term"

	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/termcolor"
)

// usageError はフラグや設定値の誤りで、終了コード 2 になります。
type usageError struct{ err error }

func (e usageError) Error() string { return e.err.Error() }
func (e usageError) Unwrap() error { return e.err }

func exitCode(err error) int {
	var ue usageError
	if errors.As(err, &ue) {
		return 2
	}
	return 1
}

// app はコマンド間で共有する入出力と外部依存です。テストでは差し替えます。
type app struct {
	stdout io.Writer
	stderr io.Writer
	getenv func(string) string
	runner *engine.Runner

	openURL  func(string) error
	openFile func(string) error
}

func newApp(stdout, stderr io.Writer, getenv func(string) string) *app {
	browser.Stdout = stderr
	browser.Stderr = stderr
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		getenv:   getenv,
		runner:   engine.NewRunner(),
		openURL:  browser.OpenURL,
		openFile: browser.OpenFile,
	}
}

// stdoutFile は stdout が実ファイル (端末判定できるもの) ならそれを返します。
func (a *app) stdoutFile() *os.File {
	f, _ := a.stdout.(*os.File)
	return f
}

func (a *app) env() map[string]string {
	keys := []string{"TERM", "NO_COLOR", "CLICOLOR", "CLICOLOR_FORCE", "FORCE_COLOR", "COLORTERM", "COLORFGBG"}
	out := make(map[string]string, len(keys))
	for _, k := range keys {
		if v := a.getenv(k); v != "" {
			out[k] = v
		}
	}
	return out
}

func (a *app) painter(color string) (termcolor.Painter, error) {
	mode, err := termcolor.ParseMode(color)
	if err != nil {
		return termcolor.Painter{}, usageError{err}
	}
	return termcolor.NewPainter(mode, a.stdoutFile(), a.env()), nil
}

// width は表の折り返し幅です。端末ならその幅、そうでなければ COLUMNS、どちらもなければ 0 です。
func (a *app) width() int {
	if f := a.stdoutFile(); f != nil && term.IsTerminal(int(f.Fd())) {
		if w, _, err := term.GetSize(int(f.Fd())); err == nil && w > 0 {
			return w
		}
	}
	if n, err := strconv.Atoi(strings.TrimSpace(a.getenv("COLUMNS"))); err == nil && n > 0 {
		return n
	}
	return 0
}
