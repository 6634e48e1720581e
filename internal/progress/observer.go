package progress

import (
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"golang.org/x/term"
)

type Observer interface {
	Publish(Snapshot)
	Done(Snapshot)
}

type NoopObserver struct{}

func (NoopObserver) Publish(Snapshot) {}
func (NoopObserver) Done(Snapshot)    {}

type ObserverFunc func(Snapshot)

func (f ObserverFunc) Publish(s Snapshot) { f(s) }
func (f ObserverFunc) Done(s Snapshot)    { f(s) }

// ShouldShowProgress は --progress / --no-progress と TTY 判定から表示可否を決めます。
// 標準出力がパイプなら (JSON を流している等) 既定では表示しません。
func ShouldShowProgress(force, no bool) bool {
	if no {
		return false
	}
	if force {
		return true
	}
	return isTTY(os.Stdout) && isTTY(os.Stderr)
}

type writerObserver struct {
	w      io.Writer
	mu     sync.Mutex
	inline bool
}

// NewAutoObserver は w が端末なら 1 行を上書きする表示、そうでなければ 1 通知 1 行の
// key=value 形式を選びます。
func NewAutoObserver(w io.Writer) Observer {
	if w == nil {
		w = os.Stderr
	}
	f, ok := w.(*os.File)
	return &writerObserver{w: w, inline: ok && isTTY(f)}
}

func NewLineObserver(w io.Writer) Observer {
	return &writerObserver{w: w}
}

func (o *writerObserver) Publish(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inline {
		_, _ = fmt.Fprintf(o.w, "\r\033[K%s", renderTTY(s))
		return
	}
	_, _ = fmt.Fprintln(o.w, renderLine(s))
}

func (o *writerObserver) Done(s Snapshot) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.inline {
		_, _ = fmt.Fprint(o.w, "\r\033[K")
		return
	}
	_, _ = fmt.Fprintln(o.w, renderLine(s)+" done=true")
}

func renderTTY(s Snapshot) string {
	if s.Stage == StageWalk {
		return fmt.Sprintf("[usagex] scanning files... %d", s.Done)
	}
	eta := "--:--"
	if !s.Warmup && s.ETA > 0 {
		eta = formatETA(s.ETA)
	}
	return fmt.Sprintf("[usagex] %3d%% %d/%d files, %d matches, ETA %s", percent(s.Done, s.Total), s.Done, s.Total, s.Matches, eta)
}

func renderLine(s Snapshot) string {
	eta := -1.0
	if s.ETA > 0 {
		eta = s.ETA.Seconds()
	}
	return fmt.Sprintf("progress stage=%s total=%d done=%d matches=%d rate=%.3f eta=%g warmup=%t updated_at=%s",
		s.Stage, s.Total, s.Done, s.Matches, s.Rate, eta, s.Warmup, s.UpdatedAt.Format(time.RFC3339Nano))
}

func formatETA(d time.Duration) string {
	total := int(math.Round(d.Seconds()))
	if total < 0 {
		total = 0
	}
	hours := total / 3600
	if hours > 99 {
		hours = 99
	}
	return fmt.Sprintf("%02d:%02d:%02d", hours, (total%3600)/60, total%60)
}

func percent(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	if a >= b {
		return 100
	}
	return a * 100 / b
}

func isTTY(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}
