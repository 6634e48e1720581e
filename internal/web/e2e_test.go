//go:build e2e

package web

import (
	"context"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"
)

func TestRenderはブラウザ上でXSSを防止する(t *testing.T) {
	if !hasBrowser() {
		t.Skip("Chrome/Chromiumが見つからないためスキップします")
	}

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	// CI では起動に時間がかかることがある
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	var location, text, textHTML string
	var nodeCount int
	err := chromedp.Run(ctx,
		chromedp.Navigate(srv.URL),
		chromedp.WaitVisible(`#out`, chromedp.ByID),
		chromedp.Evaluate(`document.getElementById('out').innerHTML = render(`+uiFixture+`);`, nil),
		chromedp.Text(`#out section.cat-import tbody tr td:nth-child(1) code`, &location, chromedp.ByQuery),
		chromedp.Text(`#out section.cat-import tbody tr td:nth-child(3)`, &text, chromedp.ByQuery),
		chromedp.InnerHTML(`#out section.cat-import tbody tr td:nth-child(3)`, &textHTML, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll('#out img, #out script, #out a[href^="javascript"]').length`, &nodeCount),
	)
	if err != nil {
		t.Fatalf("chromedpの操作に失敗しました: %v", err)
	}
	if location != "src/<x>&.ts:1:10" {
		t.Fatalf("ロケーションが期待値と異なります: %q", location)
	}
	if !strings.Contains(text, `"<script>alert(1)</script>"`) {
		t.Fatalf("本文のテキストが期待値と異なります: %q", text)
	}
	if !strings.Contains(textHTML, "&lt;script&gt;") || !strings.Contains(textHTML, "<mark>total</mark>") {
		t.Fatalf("本文セルのHTMLが期待値と異なります: %q", textHTML)
	}
	if nodeCount != 0 {
		t.Fatalf("危険なノードが挿入されています: %d", nodeCount)
	}
}

func TestSearchフォームで検索できる(t *testing.T) {
	if !hasBrowser() {
		t.Skip("Chrome/Chromiumが見つからないためスキップします")
	}

	s, _ := newTestServer(t)
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	var header string
	err := chromedp.Run(ctx,
		chromedp.Navigate(srv.URL),
		chromedp.SendKeys(`input[name=term]`, "total", chromedp.ByQuery),
		chromedp.Click(`#f button`, chromedp.ByQuery),
		chromedp.WaitVisible(`#out section.cat-import h3`, chromedp.ByQuery),
		chromedp.Text(`#out section.cat-import h3`, &header, chromedp.ByQuery),
	)
	if err != nil {
		t.Fatalf("chromedpの操作に失敗しました: %v", err)
	}
	if header != "Imports (1)" {
		t.Fatalf("見出しが期待値と異なります: %q", header)
	}
}

func hasBrowser() bool {
	candidates := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
