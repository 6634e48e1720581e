package config

import (
	"errors"
	"math"
	"strings"

	engineopts "github.com/phyten/usagex/internal/engine/opts"
)

// EnvPrefix は環境変数レイヤーのキーの接頭辞です。
const EnvPrefix = "USAGEX_"

// FromEnv は USAGEX_* 環境変数からレイヤーを作ります。空文字の変数は未指定として扱います。
// 不正な値はすべてまとめて返します。
func FromEnv(getenv func(string) string) (Config, error) {
	if getenv == nil {
		getenv = func(string) string { return "" }
	}
	var cfg Config
	var errs []error

	lookup := func(name string) (string, string, bool) {
		key := EnvPrefix + name
		raw := strings.TrimSpace(getenv(key))
		return key, raw, raw != ""
	}
	setString := func(target **string, name string) {
		if _, raw, ok := lookup(name); ok {
			value := raw
			*target = &value
		}
	}
	setList := func(target **[]string, name string) {
		if _, raw, ok := lookup(name); ok {
			list := engineopts.SplitMulti([]string{raw})
			if list == nil {
				list = []string{}
			}
			*target = &list
		}
	}
	setBool := func(target **bool, name string) {
		key, raw, ok := lookup(name)
		if !ok {
			return
		}
		v, err := engineopts.ParseBool(raw, key)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = &v
	}
	setInt := func(target **int, name string, min, max int) {
		key, raw, ok := lookup(name)
		if !ok {
			return
		}
		v, err := engineopts.ParseIntInRange(raw, key, min, max)
		if err != nil {
			errs = append(errs, err)
			return
		}
		*target = &v
	}

	s := &cfg.Search
	setString(&s.Root, "ROOT")
	setBool(&s.CaseSensitive, "CASE_SENSITIVE")
	setBool(&s.WholeWord, "WHOLE_WORD")
	setList(&s.Include, "INCLUDE")
	setList(&s.Exclude, "EXCLUDE")
	setList(&s.Langs, "LANGS")
	setList(&s.Categories, "CATEGORIES")
	setInt(&s.MaxResults, "MAX_RESULTS", 0, math.MaxInt)
	setInt(&s.MaxFileBytes, "MAX_FILE_BYTES", 0, math.MaxInt)
	setBool(&s.ExcludeTypical, "EXCLUDE_TYPICAL")
	// 上限は NormalizeAndValidate でまとめて検査する
	setInt(&s.Jobs, "JOBS", 0, math.MaxInt)
	setBool(&s.WithLinks, "WITH_LINKS")
	setString(&s.Output, "OUTPUT")
	setString(&s.Color, "COLOR")

	u := &cfg.UI
	setString(&u.Fields, "FIELDS")
	setString(&u.Sort, "SORT")
	setBool(&u.Context, "CONTEXT")
	setString(&u.Style, "STYLE")
	setInt(&u.Port, "PORT", 1, 65535)

	return cfg, errors.Join(errs...)
}
