// Package config は設定ファイル・環境変数・フラグの各レイヤーを読み込み、
// 優先順位 (defaults < file < env < flags) に従って合成します。
package config

import (
	"strings"

	"github.com/phyten/usagex/internal/engine"
	engineopts "github.com/phyten/usagex/internal/engine/opts"
	"github.com/phyten/usagex/internal/model"
)

// SearchConfig は 1 レイヤー分の検索設定です。nil は「このレイヤーでは未指定」を表します。
type SearchConfig struct {
	Root           *string   `yaml:"root" toml:"root" json:"root"`
	CaseSensitive  *bool     `yaml:"case_sensitive" toml:"case_sensitive" json:"case_sensitive"`
	WholeWord      *bool     `yaml:"whole_word" toml:"whole_word" json:"whole_word"`
	Include        *[]string `yaml:"include" toml:"include" json:"include"`
	Exclude        *[]string `yaml:"exclude" toml:"exclude" json:"exclude"`
	Langs          *[]string `yaml:"langs" toml:"langs" json:"langs"`
	Categories     *[]string `yaml:"categories" toml:"categories" json:"categories"`
	MaxResults     *int      `yaml:"max_results" toml:"max_results" json:"max_results"`
	MaxFileBytes   *int      `yaml:"max_file_bytes" toml:"max_file_bytes" json:"max_file_bytes"`
	ExcludeTypical *bool     `yaml:"exclude_typical" toml:"exclude_typical" json:"exclude_typical"`
	Jobs           *int      `yaml:"jobs" toml:"jobs" json:"jobs"`
	WithLinks      *bool     `yaml:"with_links" toml:"with_links" json:"with_links"`
	Output         *string   `yaml:"output" toml:"output" json:"output"`
	Color          *string   `yaml:"color" toml:"color" json:"color"`
}

type UIConfig struct {
	Fields  *string `yaml:"fields" toml:"fields" json:"fields"`
	Sort    *string `yaml:"sort" toml:"sort" json:"sort"`
	Context *bool   `yaml:"context" toml:"context" json:"context"`
	Style   *string `yaml:"style" toml:"style" json:"style"`
	Port    *int    `yaml:"port" toml:"port" json:"port"`
}

type Config struct {
	Search SearchConfig `yaml:"search" toml:"search" json:"search"`
	UI     UIConfig     `yaml:"ui" toml:"ui" json:"ui"`
}

// SearchSettings は全レイヤーを合成した後の検索設定です。
type SearchSettings struct {
	Root           string
	CaseSensitive  bool
	WholeWord      bool
	Include        []string
	Exclude        []string
	Langs          []string
	Categories     []string
	MaxResults     int
	MaxFileBytes   int
	ExcludeTypical bool
	Jobs           int
	WithLinks      bool
	Output         string
	Color          string
}

type UISettings struct {
	Fields  string
	Sort    string
	Context bool
	Style   string
	Port    int
}

func SearchSettingsFromOptions(opts engine.Options) SearchSettings {
	cats := make([]string, 0, len(opts.Categories))
	for _, c := range opts.Categories {
		cats = append(cats, string(c))
	}
	return SearchSettings{
		Root:           opts.Root,
		CaseSensitive:  opts.CaseSensitive,
		WholeWord:      opts.WholeWord,
		Include:        cloneStrings(opts.Include),
		Exclude:        cloneStrings(opts.Exclude),
		Langs:          cloneStrings(opts.Langs),
		Categories:     cloneStrings(cats),
		MaxResults:     opts.MaxResults,
		MaxFileBytes:   opts.MaxFileBytes,
		ExcludeTypical: opts.ExcludeTypical,
		Jobs:           opts.Jobs,
		WithLinks:      opts.WithLinks,
		Output:         "table",
		Color:          "auto",
	}
}

// ApplyToOptions は合成済みの設定を engine.Options に書き戻します。
// 検索語とプログレス関連のフィールドには触れません。
func (s SearchSettings) ApplyToOptions(opts *engine.Options) error {
	if opts == nil {
		return nil
	}
	var cats []model.Category
	if len(s.Categories) > 0 {
		parsed, err := engineopts.ParseCategories(s.Categories)
		if err != nil {
			return err
		}
		cats = parsed
	}
	if trimmed := strings.TrimSpace(s.Root); trimmed != "" {
		opts.Root = trimmed
	}
	opts.CaseSensitive = s.CaseSensitive
	opts.WholeWord = s.WholeWord
	opts.Include = cloneStrings(s.Include)
	opts.Exclude = cloneStrings(s.Exclude)
	opts.Langs = cloneStrings(s.Langs)
	opts.Categories = cats
	opts.MaxResults = s.MaxResults
	opts.MaxFileBytes = s.MaxFileBytes
	opts.ExcludeTypical = s.ExcludeTypical
	opts.Jobs = s.Jobs
	opts.WithLinks = s.WithLinks
	return nil
}

func DefaultUISettings() UISettings {
	return UISettings{Style: "monokai", Port: 8080}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
