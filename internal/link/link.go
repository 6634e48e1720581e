package link

import (
	"fmt"
	"strings"

	"github.com/phyten/usagex/internal/gitremote"
)

// Blob はリビジョンとファイルパス、1 始まりの行番号から GitHub 互換の blob URL を生成します。
// Markdown はレンダリングされると行アンカーが効かないため ?plain=1 を付けます。
func Blob(info gitremote.Info, rev, file string, line int) string {
	if rev == "" || file == "" || line <= 0 {
		return ""
	}
	u := fmt.Sprintf("%s/blob/%s/%s", info.WebURL(), rev, gitremote.BlobPath(file))
	if isMarkdown(file) {
		u += "?plain=1"
	}
	return fmt.Sprintf("%s#L%d", u, line)
}

// Tree はリビジョン時点のディレクトリ URL を返します。dir が空ならリポジトリのルートです。
func Tree(info gitremote.Info, rev, dir string) string {
	if rev == "" {
		return ""
	}
	dir = strings.Trim(dir, "/")
	if dir == "" || dir == "." {
		return fmt.Sprintf("%s/tree/%s", info.WebURL(), rev)
	}
	return fmt.Sprintf("%s/tree/%s/%s", info.WebURL(), rev, gitremote.BlobPath(dir))
}

func isMarkdown(file string) bool {
	lower := strings.ToLower(file)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".markdown") || strings.HasSuffix(lower, ".mdx")
}
