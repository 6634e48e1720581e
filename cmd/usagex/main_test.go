package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/usagex/internal/engine"
	"github.com/phyten/usagex/internal/model"
)

// syncBuffer は watch / serve のように別ゴルーチンから書かれる出力を読むためのものです。
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type harness struct {
	app    *app
	stdout *syncBuffer
	stderr *syncBuffer
	env    map[string]string
	opened []string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{stdout: &syncBuffer{}, stderr: &syncBuffer{}, env: map[string]string{"HOME": t.TempDir()}}
	h.app = newApp(h.stdout, h.stderr, func(k string) string { return h.env[k] })
	h.app.openURL = func(u string) error { h.opened = append(h.opened, u); return nil }
	h.app.openFile = func(p string) error { h.opened = append(h.opened, p); return nil }
	return h
}

func (h *harness) run(ctx context.Context, args ...string) error {
	cmd := newRootCmd(h.app)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func writeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/cart.ts": "import { total } from './math'\nexport function getTotal() {\n  return total(1)\n}\n",
		"src/util.py": "def total(items):\n    return sum(items)\n",
	}
	for rel, body := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	}
	return root
}

func TestSearchはカテゴリごとに表示する(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "total", "-s", "--root", root))

	out := h.stdout.String()
	assert.Contains(t, out, "Imports (1)\n")
	assert.Contains(t, out, "Function Definitions (2)\n")
	assert.Contains(t, out, "src/util.py:1:5")
	assert.Contains(t, out, "3 matches in 2 files (2 scanned)")
	assert.NotContains(t, out, "\x1b[")
	if strings.Index(out, "Imports") > strings.Index(out, "Function Definitions") {
		t.Fatalf("カテゴリの順序が不正です:\n%s", out)
	}
}

func TestSearchサブコマンドはJSONを出力する(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "search", "total", "-s", "--root", root, "-o", "json"))

	var res engine.Result
	require.NoError(t, json.Unmarshal([]byte(h.stdout.String()), &res))
	require.Len(t, res.Items, 3)
	assert.Equal(t, "total", res.Term)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, model.CategoryImport, res.Groups[0].Category)
	assert.Equal(t, 1, res.Groups[0].Count)
	assert.Equal(t, model.CategoryFunctionDefinition, res.Groups[1].Category)
	assert.Equal(t, "Function Definitions", res.Groups[1].Label)
	assert.Len(t, res.Groups[1].Items, 2)
}

func TestSearchはフィールドと並び順を反映する(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "total", "-s", "--root", root,
		"-o", "csv", "--fields", "file,line,category", "--sort", "-line"))

	want := "FILE,LINE,CATEGORY\r\n" +
		"src/cart.ts,3,function-definition\r\n" +
		"src/cart.ts,1,import\r\n" +
		"src/util.py,1,function-definition\r\n"
	assert.Equal(t, want, h.stdout.String())
}

func TestSearchは設定ファイルと環境変数を重ねる(t *testing.T) {
	root := writeRepo(t)
	cfg := "search:\n  output: ndjson\n  case_sensitive: true\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".usagex.yaml"), []byte(cfg), 0o644))

	// ファイルのみ
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "total", "--root", root))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	assert.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "{"))

	// 環境変数がファイルに勝つ
	h = newHarness(t)
	h.env["USAGEX_OUTPUT"] = "csv"
	require.NoError(t, h.run(context.Background(), "total", "--root", root))
	assert.True(t, strings.HasPrefix(h.stdout.String(), "CATEGORY,LOCATION,FUNCTION,CLASS,TEXT\r\n"))

	// フラグが環境変数に勝つ
	h = newHarness(t)
	h.env["USAGEX_OUTPUT"] = "csv"
	require.NoError(t, h.run(context.Background(), "total", "--root", root, "-o", "summary"))
	assert.Contains(t, h.stdout.String(), "TOTAL FILES 2")
}

func TestSearchは不正な指定で終了コード2を返す(t *testing.T) {
	root := writeRepo(t)
	cases := map[string][]string{
		"output":   {"total", "--root", root, "-o", "xml"},
		"color":    {"total", "--root", root, "--color", "sometimes"},
		"fields":   {"total", "--root", root, "--fields", "author"},
		"sort":     {"total", "--root", root, "--sort", "date"},
		"category": {"total", "--root", root, "-c", "nope"},
		"glob":     {"total", "--root", root, "--include", "src/[a"},
		"jobs":     {"total", "--root", root, "--jobs", "1000"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			h := newHarness(t)
			err := h.run(context.Background(), args...)
			require.Error(t, err)
			assert.Equal(t, 2, exitCode(err), "err=%v", err)
		})
	}

	h := newHarness(t)
	err := h.run(context.Background(), "search", "--root", root)
	require.Error(t, err)
}

func TestSearchは色と判定規則を表示できる(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "total", "-s", "--root", root, "--color", "always", "--explain"))
	out := h.stdout.String()
	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "[import]")
	assert.Contains(t, out, "[function-definition]")
}

func TestSearchは結果がなくても成功する(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "nothing_here", "--root", root))
	assert.Contains(t, h.stdout.String(), `No usages of "nothing_here" found`)
}

func TestExportはファイルに書き出して開く(t *testing.T) {
	root := writeRepo(t)
	out := filepath.Join(t.TempDir(), "report.md")
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "export", "total", "-s", "--root", root, "--out", out, "--open"))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(body), "# Usages of `total`")
	assert.Contains(t, string(body), "## Function Definitions (2)")
	assert.Equal(t, []string{out}, h.opened)
	assert.Contains(t, h.stderr.String(), "wrote 3 matches (markdown) to "+out)
}

func TestExportは拡張子から形式を決める(t *testing.T) {
	root := writeRepo(t)
	out := filepath.Join(t.TempDir(), "report.json")
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "export", "total", "-s", "--root", root, "--out", out))

	body, err := os.ReadFile(out)
	require.NoError(t, err)
	var res engine.Result
	require.NoError(t, json.Unmarshal(body, &res))
	assert.Len(t, res.Items, 3)
	assert.Empty(t, h.opened)
}

func TestExportの引数検証(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)
	err := h.run(context.Background(), "export", "total", "--root", root, "--open")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))

	err = h.run(context.Background(), "export", "total", "--root", root, "--format", "table")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestExportFormat(t *testing.T) {
	cases := []struct {
		format, path, want string
	}{
		{"", "a.md", "markdown"},
		{"", "a.JSONL", "ndjson"},
		{"", "a.csv", "csv"},
		{"", "", "markdown"},
		{"", "a.txt", "markdown"},
		{"md", "a.json", "markdown"},
		{"TSV", "", "tsv"},
	}
	for _, tc := range cases {
		got, err := exportFormat(tc.format, tc.path)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, "format=%q path=%q", tc.format, tc.path)
	}
	_, err := exportFormat("summary", "")
	assert.Error(t, err)
}

func TestCategoriesは表示順に一覧する(t *testing.T) {
	h := newHarness(t)
	require.NoError(t, h.run(context.Background(), "categories"))
	out := h.stdout.String()
	assert.True(t, strings.HasPrefix(out, "CATEGORY"))
	assert.Contains(t, out, "function-definition")
	assert.Contains(t, out, "Function Definitions")
	assert.Less(t, strings.Index(out, "import"), strings.Index(out, "comment"))

	h = newHarness(t)
	require.NoError(t, h.run(context.Background(), "categories", "--rules"))
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	assert.Equal(t, []string{"1", "comment"}, strings.Fields(lines[1]))
	assert.Equal(t, "default", strings.Fields(lines[len(lines)-1])[1])
}

func TestSummarizeChanges(t *testing.T) {
	assert.Equal(t, "a, b", summarizeChanges([]string{"a", "b"}))
	assert.Equal(t, "a, b, c and 2 more", summarizeChanges([]string{"a", "b", "c", "d", "e"}))
}

func freePort(t *testing.T) int {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	port := ln.Addr().(*net.TCPAddr).Port
	require.NoError(t, ln.Close())
	return port
}

func TestServeはAPIを提供して終了する(t *testing.T) {
	root := writeRepo(t)
	port := freePort(t)
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- h.run(ctx, "serve", "--root", root, "--port", strconv.Itoa(port))
	}()

	url := "http://127.0.0.1:" + strconv.Itoa(port) + "/api/search?term=total&case_sensitive=1"
	var res engine.Result
	deadline := time.Now().Add(5 * time.Second)
	for {
		resp, err := http.Get(url)
		if err == nil {
			require.Equal(t, http.StatusOK, resp.StatusCode)
			require.NoError(t, json.NewDecoder(resp.Body).Decode(&res))
			resp.Body.Close()
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("サーバーが起動しませんでした: %v", err)
		}
		time.Sleep(20 * time.Millisecond)
	}
	assert.Len(t, res.Items, 3)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("serve が終了しませんでした")
	}
}

func TestServeは不正なポートを拒否する(t *testing.T) {
	h := newHarness(t)
	err := h.run(context.Background(), "serve", "--root", t.TempDir(), "--port", "70000")
	require.Error(t, err)
	assert.Equal(t, 2, exitCode(err))
}

func TestSearchWatchは変更で再検索する(t *testing.T) {
	root := writeRepo(t)
	h := newHarness(t)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan error, 1)
	go func() {
		done <- h.run(ctx, "total", "-s", "--root", root, "-o", "summary", "--watch")
	}()

	waitFor := func(cond func() bool, touch func()) {
		deadline := time.Now().Add(10 * time.Second)
		for !cond() {
			if time.Now().After(deadline) {
				t.Fatalf("待機がタイムアウトしました\nstdout:\n%s\nstderr:\n%s", h.stdout.String(), h.stderr.String())
			}
			if touch != nil {
				touch()
			}
			time.Sleep(400 * time.Millisecond)
		}
	}
	waitFor(func() bool { return strings.Contains(h.stderr.String(), "watching ") }, nil)

	extra := filepath.Join(root, "src", "extra.ts")
	waitFor(func() bool { return strings.Contains(h.stdout.String(), "── ") }, func() {
		require.NoError(t, os.WriteFile(extra, []byte("const total = 2\n"), 0o644))
	})
	assert.Contains(t, h.stdout.String(), "src/extra.ts")
	assert.Contains(t, h.stdout.String(), "TOTAL FILES 3")

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("watch が終了しませんでした")
	}
}
