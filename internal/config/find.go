package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 探索場所を表す Find の 2 番目の戻り値
const (
	SourceExplicit = "explicit"
	SourceUpward   = "cwd-up"
	SourceXDG      = "xdg"
	SourceHome     = "home"
)

var (
	configExts      = []string{".yaml", ".yml", ".toml", ".json"}
	configFilenames = withExts(".usagex")
	xdgFilenames    = withExts("config")
)

func withExts(stem string) []string {
	out := make([]string, 0, len(configExts))
	for _, ext := range configExts {
		out = append(out, stem+ext)
	}
	return out
}

// Find は設定ファイルを次の順に探し、最初に見つかったパスと探索場所を返します。
//
//  1. explicitPath (--config / USAGEX_CONFIG)
//  2. startDir から上位ディレクトリへ .usagex.{yaml,yml,toml,json}
//  3. $XDG_CONFIG_HOME/usagex/config.* (未設定なら ~/.config)
//  4. $HOME/.usagex.*
//
// 見つからなければ空文字と nil を返します。
func Find(startDir, explicitPath, xdgHome, home string) (string, string, error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		candidate, err := filepath.Abs(explicit)
		if err != nil {
			return "", "", err
		}
		info, err := os.Stat(candidate)
		if err != nil {
			return "", "", err
		}
		if info.IsDir() {
			return "", "", fmt.Errorf("config %q points to a directory", candidate)
		}
		return candidate, SourceExplicit, nil
	}

	start := strings.TrimSpace(startDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", "", err
	}
	for {
		if found := firstExisting(dir, configFilenames); found != "" {
			return found, SourceUpward, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	homeDir := strings.TrimSpace(home)
	if homeDir == "" {
		if h, err := os.UserHomeDir(); err == nil {
			homeDir = h
		}
	}
	xdgRoot := strings.TrimSpace(xdgHome)
	if xdgRoot == "" && homeDir != "" {
		xdgRoot = filepath.Join(homeDir, ".config")
	}
	if xdgRoot != "" {
		if found := firstExisting(filepath.Join(xdgRoot, "usagex"), xdgFilenames); found != "" {
			return found, SourceXDG, nil
		}
	}
	if homeDir != "" {
		if found := firstExisting(homeDir, configFilenames); found != "" {
			return found, SourceHome, nil
		}
	}
	return "", "", nil
}

func firstExisting(dir string, names []string) string {
	for _, name := range names {
		candidate := filepath.Join(dir, name)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
	}
	return ""
}
