package gitremote

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/phyten/usagex/internal/execx"
)

// Info は Git リモートから抽出したホスト・オーナー・リポジトリ情報です。
type Info struct {
	Host   string
	Owner  string
	Repo   string
	Scheme string
}

// Repo はパーマリンク生成に必要な情報一式です。
// Root はリポジトリのトップレベル、Revision は HEAD のコミット SHA です。
type Repo struct {
	Info     Info
	Root     string
	Revision string
}

// Detect は dir を含むリポジトリのリモート (既定は origin、USAGEX_LINK_REMOTE で変更可) を解析します。
func Detect(ctx context.Context, runner execx.Runner, dir string) (Info, error) {
	remoteName := strings.TrimSpace(os.Getenv("USAGEX_LINK_REMOTE"))
	if remoteName == "" {
		remoteName = "origin"
	}
	key := "remote." + remoteName + ".url"
	remote, err := execx.Line(ctx, runner, dir, "git", "config", "--get", key)
	if err != nil {
		return Info{}, err
	}
	if remote == "" {
		return Info{}, fmt.Errorf("%s is empty", key)
	}
	info, err := Parse(remote)
	if err != nil {
		return Info{}, err
	}
	if override := schemeOverride(); override != "" {
		info.Scheme = override
	}
	return info, nil
}

// Resolve はリモート情報に加えてトップレベルと HEAD のリビジョンをまとめて取得します。
func Resolve(ctx context.Context, runner execx.Runner, dir string) (Repo, error) {
	info, err := Detect(ctx, runner, dir)
	if err != nil {
		return Repo{}, err
	}
	root, err := execx.Line(ctx, runner, dir, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return Repo{}, err
	}
	rev, err := execx.Line(ctx, runner, dir, "git", "rev-parse", "HEAD")
	if err != nil {
		return Repo{}, err
	}
	if rev == "" {
		return Repo{}, errors.New("HEAD revision is empty")
	}
	return Repo{Info: info, Root: filepath.Clean(root), Revision: rev}, nil
}

// RelPath は絶対パス abs をリポジトリルートからの相対パス (スラッシュ区切り) に変換します。
// ルート外なら ok=false です。
func (r Repo) RelPath(abs string) (string, bool) {
	rel, err := filepath.Rel(r.Root, abs)
	if err != nil || rel == "." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) || rel == ".." {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

// Parse は remote.<name>.url の値 (scp 形式 / ssh:// / git:// / http(s)://) を解析します。
func Parse(raw string) (Info, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Info{}, errors.New("empty remote url")
	}
	if !strings.Contains(raw, "://") {
		// git@github.com:owner/repo.git
		at := strings.LastIndex(raw, "@")
		hostAndPath := raw[at+1:]
		host, p, ok := strings.Cut(hostAndPath, ":")
		if !ok {
			return Info{}, fmt.Errorf("unsupported remote url: %s", raw)
		}
		owner, repo, err := splitOwnerRepo(p)
		if err != nil {
			return Info{}, err
		}
		return Info{Host: strings.ToLower(host), Owner: owner, Repo: repo}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "ssh", "git", "http", "https":
	default:
		return Info{}, fmt.Errorf("unsupported remote url: %s", raw)
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return Info{}, fmt.Errorf("invalid remote path: %w", err)
	}
	owner, repo, err := splitOwnerRepo(p)
	if err != nil {
		return Info{}, err
	}
	info := Info{Host: strings.ToLower(u.Host), Owner: owner, Repo: repo}
	if scheme == "http" || scheme == "https" {
		info.Scheme = scheme
	}
	return info, nil
}

func splitOwnerRepo(p string) (string, string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	cleaned = strings.Trim(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".git")
	segments := strings.Split(cleaned, "/")
	if len(segments) < 2 {
		return "", "", errors.New("remote url must include owner and repo")
	}
	owner, repo := segments[len(segments)-2], segments[len(segments)-1]
	if owner == "" || repo == "" {
		return "", "", errors.New("invalid owner or repo in remote url")
	}
	return owner, repo, nil
}

// WebURL はリポジトリのブラウズ用ベース URL を返します。
func (i Info) WebURL() string {
	return fmt.Sprintf("%s://%s/%s/%s", i.NormalizedScheme(), strings.TrimSuffix(i.Host, "/"), url.PathEscape(i.Owner), url.PathEscape(i.Repo))
}

// BlobPath は各セグメントを URL エスケープしたパスを返します。
func BlobPath(file string) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	for idx, part := range parts {
		parts[idx] = url.PathEscape(part)
	}
	return path.Join(parts...)
}

// NormalizedScheme はリンク用のスキーム (http か https、既定は https) を返します。
func (i Info) NormalizedScheme() string {
	if override := schemeOverride(); override != "" {
		return override
	}
	if strings.EqualFold(strings.TrimSpace(i.Scheme), "http") {
		return "http"
	}
	return "https"
}

func schemeOverride() string {
	switch scheme := strings.ToLower(strings.TrimSpace(os.Getenv("USAGEX_LINK_SCHEME"))); scheme {
	case "http", "https":
		return scheme
	}
	return ""
}
