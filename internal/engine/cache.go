package engine

import (
	"io/fs"
	"sync"
	"time"

	"github.com/phyten/usagex/internal/model"
)

// cacheEntry は 1 ファイル分の解析結果です。matches の SearchID と URL は空のまま保持し、
// 実行ごとに複製して埋めます。
type cacheEntry struct {
	sig      string
	sum      uint64
	size     int64
	modTime  time.Time
	checked  time.Time // 内容を読んでハッシュした時刻
	lang     string
	binary   bool
	analyzed bool
	matches  []model.Match
}

// fileCache はパスごとの解析結果を保持します。内容の xxhash と検索条件が
// 一致する場合だけ再利用します。nil レシーバは常にミスとして振る舞います。
type fileCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	now     func() time.Time
}

// racyWindow より新しい更新時刻は信用しない。タイムスタンプの粒度の中で
// 同じサイズのまま書き換えられても、更新時刻が変わらないことがある。
const racyWindow = time.Second

func newFileCache() *fileCache {
	return &fileCache{entries: make(map[string]cacheEntry), now: time.Now}
}

// lookupStat はサイズと更新時刻が前回と同じなら読み込みを省いて再利用します。
// 前回読んだ時点で更新から racyWindow 経っていなかったエントリは対象外で、
// 呼び出し側は内容を読み直して lookupSum で確かめます。
func (c *fileCache) lookupStat(rel, sig string, info fs.FileInfo) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[rel]
	if !ok || e.sig != sig || e.size != info.Size() || !e.modTime.Equal(info.ModTime()) {
		return cacheEntry{}, false
	}
	if e.checked.Sub(e.modTime) < racyWindow {
		return cacheEntry{}, false
	}
	return e, true
}

// lookupSum は更新時刻だけが変わった (touch 等) 場合に内容ハッシュで再利用します。
func (c *fileCache) lookupSum(rel, sig string, sum uint64, info fs.FileInfo, readAt time.Time) (cacheEntry, bool) {
	if c == nil {
		return cacheEntry{}, false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[rel]
	if !ok || e.sig != sig || e.sum != sum {
		return cacheEntry{}, false
	}
	e.size = info.Size()
	e.modTime = info.ModTime()
	e.checked = readAt
	c.entries[rel] = e
	return e, true
}

// stamp は読み込み直前の時刻です。checked にはこの値を入れます。
func (c *fileCache) stamp() time.Time {
	if c == nil || c.now == nil {
		return time.Now()
	}
	return c.now()
}

func (c *fileCache) store(rel string, e cacheEntry) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[rel] = e
}

// retain は keep に含まれないパスを捨てます (削除・除外されたファイル)。
func (c *fileCache) retain(keep map[string]struct{}) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for rel := range c.entries {
		if _, ok := keep[rel]; !ok {
			delete(c.entries, rel)
		}
	}
}

func (c *fileCache) count() int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
