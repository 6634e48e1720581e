package progress

import (
	"math"
	"sync"
	"time"
)

type Stage string

const (
	StageWalk    Stage = "walk"
	StageAnalyze Stage = "analyze"
)

// Snapshot は通知 1 回分の進捗です。Total は走査対象ファイル数で、
// 列挙が終わるまでは 0 のままです。
type Snapshot struct {
	Stage     Stage         `json:"stage"`
	Total     int           `json:"total"`
	Done      int           `json:"done"`
	Matches   int           `json:"matches"`
	Remaining int           `json:"remaining"`
	Rate      float64       `json:"files_per_sec"`
	ETA       time.Duration `json:"eta"`
	Warmup    bool          `json:"warmup"`
	StartedAt time.Time     `json:"started_at"`
	UpdatedAt time.Time     `json:"updated_at"`
	Elapsed   time.Duration `json:"elapsed"`
}

type Config struct {
	Alpha          float64
	WarmupSamples  int
	NotifyInterval time.Duration
}

func DefaultConfig() Config {
	return Config{
		Alpha:          0.2,
		WarmupSamples:  16,
		NotifyInterval: 200 * time.Millisecond,
	}
}

// Tracker はファイル単位の処理数とマッチ数を集計し、通知の間引きを行います。
// すべてのメソッドは並行に呼び出せます。
type Tracker struct {
	mu         sync.Mutex
	cfg        Config
	start      time.Time
	lastUpdate time.Time
	lastNotify time.Time
	stage      Stage
	total      int
	done       int
	matches    int
	rate       float64
}

func NewTracker(cfg Config) *Tracker {
	base := DefaultConfig()
	if cfg.Alpha > 0 && cfg.Alpha <= 1 {
		base.Alpha = cfg.Alpha
	}
	if cfg.WarmupSamples > 0 {
		base.WarmupSamples = cfg.WarmupSamples
	}
	if cfg.NotifyInterval > 0 {
		base.NotifyInterval = cfg.NotifyInterval
	}
	now := time.Now()
	return &Tracker{cfg: base, start: now, lastUpdate: now, stage: StageWalk}
}

// Begin は列挙を終えてファイル総数が確定したときに呼び、解析段階へ移ります。
// 列挙中に数えた件数と速度はここで捨てます。
func (t *Tracker) Begin(total int) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	t.stage = StageAnalyze
	t.total = total
	t.done = 0
	t.matches = 0
	t.rate = 0
	t.lastUpdate = now
	t.lastNotify = now
	return t.snapshotLocked(now)
}

// Advance は処理済みファイル数とマッチ数を加算します。
// 戻り値の bool は前回の通知から NotifyInterval 以上経過したか、完了したかを表します。
func (t *Tracker) Advance(files, matches int) (Snapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if files > 0 {
		dt := now.Sub(t.lastUpdate).Seconds()
		if dt <= 0 {
			dt = 1e-6
		}
		instant := float64(files) / dt
		if math.IsNaN(instant) || math.IsInf(instant, 0) {
			instant = 0
		}
		if t.rate == 0 {
			t.rate = instant
		} else {
			t.rate = t.cfg.Alpha*instant + (1-t.cfg.Alpha)*t.rate
		}
		t.done += files
		t.lastUpdate = now
	}
	if matches > 0 {
		t.matches += matches
	}
	snap := t.snapshotLocked(now)
	notify := now.Sub(t.lastNotify) >= t.cfg.NotifyInterval || (t.total > 0 && snap.Remaining == 0)
	if notify {
		t.lastNotify = now
	}
	return snap, notify
}

func (t *Tracker) Snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked(time.Now())
}

func (t *Tracker) snapshotLocked(now time.Time) Snapshot {
	remaining := t.total - t.done
	if remaining < 0 {
		remaining = 0
	}
	warmup := t.done < t.cfg.WarmupSamples
	var eta time.Duration
	if !warmup && remaining > 0 && t.rate > 0 {
		eta = time.Duration(float64(remaining) / t.rate * float64(time.Second))
	}
	return Snapshot{
		Stage:     t.stage,
		Total:     t.total,
		Done:      t.done,
		Matches:   t.matches,
		Remaining: remaining,
		Rate:      t.rate,
		ETA:       eta,
		Warmup:    warmup,
		StartedAt: t.start,
		UpdatedAt: now,
		Elapsed:   now.Sub(t.start),
	}
}
