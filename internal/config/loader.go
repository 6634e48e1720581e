package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	engineopts "github.com/phyten/usagex/internal/engine/opts"
)

// セクション名 (別名を含む) から正規名への対応
var sectionNames = map[string]string{
	"search": "search",
	"engine": "search",
	"ui":     "ui",
}

var searchKeyMap = map[string]string{
	"root":            "root",
	"dir":             "root",
	"repo":            "root",
	"case_sensitive":  "case_sensitive",
	"whole_word":      "whole_word",
	"word":            "whole_word",
	"include":         "include",
	"includes":        "include",
	"path":            "include",
	"paths":           "include",
	"exclude":         "exclude",
	"excludes":        "exclude",
	"langs":           "langs",
	"lang":            "langs",
	"languages":       "langs",
	"categories":      "categories",
	"category":        "categories",
	"max_results":     "max_results",
	"limit":           "max_results",
	"max_file_bytes":  "max_file_bytes",
	"max_bytes":       "max_file_bytes",
	"exclude_typical": "exclude_typical",
	"jobs":            "jobs",
	"with_links":      "with_links",
	"links":           "with_links",
	"output":          "output",
	"format":          "output",
	"color":           "color",
}

var uiKeyMap = map[string]string{
	"fields":       "fields",
	"sort":         "sort",
	"context":      "context",
	"with_context": "context",
	"style":        "style",
	"theme":        "style",
	"port":         "port",
}

type assignFunc func(cfg *Config, value any, field string) error

func stringKey(get func(*Config) **string) assignFunc {
	return func(cfg *Config, value any, field string) error {
		s, err := expectString(value, field)
		if err != nil {
			return err
		}
		s = strings.TrimSpace(s)
		*get(cfg) = &s
		return nil
	}
}

func boolKey(get func(*Config) **bool) assignFunc {
	return func(cfg *Config, value any, field string) error {
		b, err := expectBool(value, field)
		if err != nil {
			return err
		}
		*get(cfg) = &b
		return nil
	}
}

func intKey(get func(*Config) **int) assignFunc {
	return func(cfg *Config, value any, field string) error {
		n, err := expectInt(value, field)
		if err != nil {
			return err
		}
		*get(cfg) = &n
		return nil
	}
}

func listKey(get func(*Config) **[]string) assignFunc {
	return func(cfg *Config, value any, field string) error {
		list, err := expectStringList(value, field)
		if err != nil {
			return err
		}
		*get(cfg) = &list
		return nil
	}
}

// "section.key" ごとの代入処理
var assigners = map[string]assignFunc{
	"search.root":            stringKey(func(c *Config) **string { return &c.Search.Root }),
	"search.case_sensitive":  boolKey(func(c *Config) **bool { return &c.Search.CaseSensitive }),
	"search.whole_word":      boolKey(func(c *Config) **bool { return &c.Search.WholeWord }),
	"search.include":         listKey(func(c *Config) **[]string { return &c.Search.Include }),
	"search.exclude":         listKey(func(c *Config) **[]string { return &c.Search.Exclude }),
	"search.langs":           listKey(func(c *Config) **[]string { return &c.Search.Langs }),
	"search.categories":      listKey(func(c *Config) **[]string { return &c.Search.Categories }),
	"search.max_results":     intKey(func(c *Config) **int { return &c.Search.MaxResults }),
	"search.max_file_bytes":  intKey(func(c *Config) **int { return &c.Search.MaxFileBytes }),
	"search.exclude_typical": boolKey(func(c *Config) **bool { return &c.Search.ExcludeTypical }),
	"search.jobs":            intKey(func(c *Config) **int { return &c.Search.Jobs }),
	"search.with_links":      boolKey(func(c *Config) **bool { return &c.Search.WithLinks }),
	"search.output":          stringKey(func(c *Config) **string { return &c.Search.Output }),
	"search.color":           stringKey(func(c *Config) **string { return &c.Search.Color }),
	"ui.fields":              stringKey(func(c *Config) **string { return &c.UI.Fields }),
	"ui.sort":                stringKey(func(c *Config) **string { return &c.UI.Sort }),
	"ui.context":             boolKey(func(c *Config) **bool { return &c.UI.Context }),
	"ui.style":               stringKey(func(c *Config) **string { return &c.UI.Style }),
	"ui.port":                intKey(func(c *Config) **int { return &c.UI.Port }),
}

// Load は拡張子 (.yaml/.yml/.toml/.json) で形式を決めて設定ファイルを読み込みます。
// 未知のキーはエラーです。path が空なら空の Config を返します。
func Load(path string) (Config, error) {
	var cfg Config
	path = strings.TrimSpace(path)
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	raw, err := decodeRaw(filepath.Ext(path), data)
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	if raw == nil {
		return cfg, nil
	}
	if err := decodeConfigMap(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func decodeRaw(ext string, data []byte) (map[string]any, error) {
	var raw map[string]any
	var err error
	switch strings.ToLower(ext) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	case ".toml":
		err = toml.Unmarshal(data, &raw)
	case ".json":
		err = json.Unmarshal(data, &raw)
	default:
		return nil, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return raw, err
}

// decodeConfigMap はトップレベルのキーを検索設定か UI 設定のどちらかに振り分けます。
// セクションの中でもトップレベルでも同じキーを書けます。
func decodeConfigMap(raw map[string]any, cfg *Config) error {
	for key, value := range raw {
		norm := normalizeKey(key)
		if section, ok := sectionNames[norm]; ok {
			sub, err := toStringKeyMap(value)
			if err != nil {
				return fmt.Errorf("%s: %w", section, err)
			}
			for subKey, subValue := range sub {
				if err := assignKey(cfg, section, subKey, subValue); err != nil {
					return fmt.Errorf("%s: %w", section, err)
				}
			}
			continue
		}
		section := ""
		if _, ok := searchKeyMap[norm]; ok {
			section = "search"
		} else if _, ok := uiKeyMap[norm]; ok {
			section = "ui"
		} else {
			return fmt.Errorf("unknown config key: %s", key)
		}
		if err := assignKey(cfg, section, key, value); err != nil {
			return err
		}
	}
	return nil
}

func assignKey(cfg *Config, section, key string, value any) error {
	keys := searchKeyMap
	if section == "ui" {
		keys = uiKeyMap
	}
	canonical, ok := keys[normalizeKey(key)]
	if !ok {
		return fmt.Errorf("unknown %s key: %s", section, key)
	}
	return assigners[section+"."+canonical](cfg, value, canonical)
}

func expectString(value any, field string) (string, error) {
	if value == nil {
		return "", fmt.Errorf("%s cannot be null", field)
	}
	if s, ok := value.(string); ok {
		return s, nil
	}
	return "", fmt.Errorf("expected string for %s, got %T", field, value)
}

func expectBool(value any, field string) (bool, error) {
	switch v := value.(type) {
	case bool:
		return v, nil
	case string:
		return engineopts.ParseBool(v, field)
	default:
		return false, fmt.Errorf("expected bool for %s, got %T", field, value)
	}
}

func expectInt(value any, field string) (int, error) {
	switch v := value.(type) {
	case int:
		return v, nil
	case int64:
		return int(v), nil
	case uint64:
		return int(v), nil
	case float64:
		if v != float64(int(v)) {
			return 0, fmt.Errorf("expected integer for %s, got %v", field, value)
		}
		return int(v), nil
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return 0, fmt.Errorf("invalid integer value for %s: %q", field, v)
		}
		return n, nil
	default:
		return 0, fmt.Errorf("expected integer for %s, got %T", field, value)
	}
}

// 文字列ならカンマ区切り、配列なら要素ごと。空要素は捨てる
func expectStringList(value any, field string) ([]string, error) {
	var items []string
	switch v := value.(type) {
	case string:
		items = engineopts.SplitMulti([]string{v})
	case []any:
		for _, item := range v {
			str, err := expectString(item, field)
			if err != nil {
				return nil, err
			}
			items = append(items, str)
		}
	case []string:
		items = v
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", field, value)
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if trimmed := strings.TrimSpace(item); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out, nil
}

func toStringKeyMap(v any) (map[string]any, error) {
	switch typed := v.(type) {
	case map[string]any:
		return typed, nil
	case map[any]any:
		out := make(map[string]any, len(typed))
		for k, value := range typed {
			key, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string key: %v", k)
			}
			out[key] = value
		}
		return out, nil
	default:
		return nil, fmt.Errorf("expected map, got %T", v)
	}
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}
