package link

import (
	"strings"
	"testing"

	"github.com/phyten/usagex/internal/gitremote"
)

func TestBlobMarkdownAddsPlain(t *testing.T) {
	info := gitremote.Info{Host: "github.com", Owner: "owner", Repo: "repo"}
	got := Blob(info, "abcdef", "docs/readme.md", 10)
	if got != "https://github.com/owner/repo/blob/abcdef/docs/readme.md?plain=1#L10" {
		t.Fatalf("unexpected markdown link: %s", got)
	}
}

func TestBlobUsesCustomSchemeAndPort(t *testing.T) {
	info := gitremote.Info{Host: "ghes.local:8443", Owner: "team", Repo: "demo", Scheme: "http"}
	got := Blob(info, "abcdef", "src/components/Button.tsx", 42)
	if got != "http://ghes.local:8443/team/demo/blob/abcdef/src/components/Button.tsx#L42" {
		t.Fatalf("unexpected blob URL: %s", got)
	}
}

func TestBlobReturnsEmptyForInvalidInput(t *testing.T) {
	info := gitremote.Info{Host: "github.com", Owner: "org", Repo: "repo"}
	if got := Blob(info, "", "file.ts", 10); got != "" {
		t.Fatalf("empty revision should yield empty link: %s", got)
	}
	if got := Blob(info, "abcdef", "", 10); got != "" {
		t.Fatalf("empty file should yield empty link: %s", got)
	}
	if got := Blob(info, "abcdef", "file.ts", 0); got != "" {
		t.Fatalf("non-positive line should yield empty link: %s", got)
	}
}

func TestTree(t *testing.T) {
	info := gitremote.Info{Host: "github.com", Owner: "org", Repo: "repo"}
	if got := Tree(info, "abc", ""); got != "https://github.com/org/repo/tree/abc" {
		t.Fatalf("unexpected root tree: %s", got)
	}
	if got := Tree(info, "abc", "/src/my dir/"); !strings.HasSuffix(got, "/tree/abc/src/my%20dir") {
		t.Fatalf("unexpected tree: %s", got)
	}
	if got := Tree(info, "", "src"); got != "" {
		t.Fatalf("empty revision should yield empty link: %s", got)
	}
}
