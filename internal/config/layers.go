package config

import "os"

// Layers はファイルと環境変数から読み込んだ設定レイヤーです。
type Layers struct {
	Path  string // 読み込んだ設定ファイル (なければ空)
	Where string // Find の探索場所
	File  Config
	Env   Config
}

// Discover は explicitPath (空なら USAGEX_CONFIG) と startDir から設定ファイルを探し、
// 環境変数レイヤーとあわせて読み込みます。getenv が nil なら os.Getenv を使います。
func Discover(startDir, explicitPath string, getenv func(string) string) (Layers, error) {
	if getenv == nil {
		getenv = os.Getenv
	}
	if explicitPath == "" {
		explicitPath = getenv(EnvPrefix + "CONFIG")
	}
	var layers Layers
	path, where, err := Find(startDir, explicitPath, getenv("XDG_CONFIG_HOME"), getenv("HOME"))
	if err != nil {
		return layers, err
	}
	layers.Path, layers.Where = path, where
	if layers.File, err = Load(path); err != nil {
		return layers, err
	}
	if layers.Env, err = FromEnv(getenv); err != nil {
		return layers, err
	}
	return layers, nil
}
